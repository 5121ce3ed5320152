package logic

import (
	"errors"
)

// Kind 业务错误类别
type Kind int

const (
	KindValidation    Kind = iota + 1 // 参数校验错误
	KindAuthorization                 // 权限错误
	KindState                         // 状态错误
	KindExternal                      // 外部协作方失败
)

// Error 业务错误，所有对外操作返回的错误都带类别
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError 参数校验错误，在任何状态变更前返回
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewAuthorizationError 权限错误，在任何状态变更前返回
func NewAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NewStateError 状态错误（不在进行中、已完成、重复操作等）
func NewStateError(message string) *Error {
	return &Error{Kind: KindState, Message: message}
}

// NewExternalError 外部协作方失败，必须使触发操作整体回滚
func NewExternalError(message string, err error) *Error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

// KindOf 提取错误类别，非业务错误返回 0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
