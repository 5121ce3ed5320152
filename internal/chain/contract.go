package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Contract 合约工具类
// 封装 ABI 解析、只读调用、交易发送与事件日志解析
type Contract struct {
	address  common.Address
	abi      abi.ABI
	name     string
	blockNum int64 // 合约部署的区块号
	chainId  int64
	bound    *bind.BoundContract
}

// NewContract 创建合约实例
func NewContract(client *ethclient.Client, name string, contractCfg config.ContractConfig, chainCfg config.ChainConfig) (*Contract, error) {
	abiData, err := os.ReadFile(contractCfg.ABIPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ABI from %s: %w", contractCfg.ABIPath, err)
	}

	// ABI 文件可以是完整编译输出，也可以是裸 ABI 数组
	var compiledOutput struct {
		ABI json.RawMessage `json:"abi"`
	}

	var parsedABI abi.ABI
	if err := json.Unmarshal(abiData, &compiledOutput); err == nil && compiledOutput.ABI != nil {
		parsedABI, err = abi.JSON(bytes.NewReader(compiledOutput.ABI))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI from compiled output: %w", err)
		}
	} else {
		parsedABI, err = abi.JSON(bytes.NewReader(abiData))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI: %w", err)
		}
	}

	contractAddr := common.HexToAddress(contractCfg.Address)

	return &Contract{
		address:  contractAddr,
		abi:      parsedABI,
		name:     name,
		blockNum: contractCfg.BlockNum,
		chainId:  chainCfg.ChainId,
		bound:    bind.NewBoundContract(contractAddr, parsedABI, client, client, client),
	}, nil
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// GetABI 获取合约ABI
func (c *Contract) GetABI() abi.ABI {
	return c.abi
}

// GetName 获取合约名称
func (c *Contract) GetName() string {
	return c.name
}

// GetBlockNum 获取合约部署区块号
func (c *Contract) GetBlockNum() int64 {
	return c.blockNum
}

// GetChainId 获取链ID
func (c *Contract) GetChainId() int64 {
	return c.chainId
}

// Call 只读调用合约方法
func (c *Contract) Call(method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("call %s.%s failed: %w", c.name, method, err)
	}
	return out, nil
}

// CallBigInt 只读调用返回单个 uint256 的合约方法
func (c *Contract) CallBigInt(method string, args ...interface{}) (*big.Int, error) {
	out, err := c.Call(method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s.%s returned no values", c.name, method)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("call %s.%s returned unexpected type %T", c.name, method, out[0])
	}
	return value, nil
}

// Transact 发送合约交易
func (c *Contract) Transact(auth *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	tx, err := c.bound.Transact(auth, method, args...)
	if err != nil {
		return nil, fmt.Errorf("transact %s.%s failed: %w", c.name, method, err)
	}
	return tx, nil
}

// ParseEvent 解析事件日志
func (c *Contract) ParseEvent(log types.Log) (map[string]interface{}, error) {
	eventSignature := log.Topics[0].Hex()

	for eventName, event := range c.abi.Events {
		if event.ID.Hex() == eventSignature {
			return c.parseEvent(eventName, log, event)
		}
	}

	logger.Warn("Unknown event signature: %s in contract %s", eventSignature, c.name)
	return map[string]interface{}{
		"eventName":   "Unknown",
		"signature":   eventSignature,
		"contract":    c.name,
		"txHash":      log.TxHash.Hex(),
		"blockNumber": log.BlockNumber,
		"logIndex":    log.Index,
	}, nil
}

// parseEvent 解析单个事件的索引与非索引参数
func (c *Contract) parseEvent(eventName string, log types.Log, event abi.Event) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	result["eventName"] = eventName
	result["contract"] = c.name
	result["txHash"] = log.TxHash.Hex()
	result["blockNumber"] = log.BlockNumber
	result["logIndex"] = log.Index

	if len(log.Topics) > 1 {
		topicIndex := 1
		for _, input := range event.Inputs {
			if !input.Indexed || topicIndex >= len(log.Topics) {
				continue
			}
			value, err := c.parseTopicValue(log.Topics[topicIndex], input.Type)
			if err != nil {
				logger.Warn("Failed to parse indexed parameter %s: %v", input.Name, err)
			} else {
				result[input.Name] = value
			}
			topicIndex++
		}
	}

	if len(log.Data) > 0 {
		nonIndexedInputs := make([]abi.Argument, 0)
		for _, input := range event.Inputs {
			if !input.Indexed {
				nonIndexedInputs = append(nonIndexedInputs, input)
			}
		}

		if len(nonIndexedInputs) > 0 {
			values, err := c.abi.Unpack(eventName, log.Data)
			if err != nil {
				logger.Warn("Failed to unpack non-indexed parameters: %v", err)
			} else {
				for i, input := range nonIndexedInputs {
					if i < len(values) {
						result[input.Name] = values[i]
					}
				}
			}
		}
	}

	return result, nil
}

// parseTopicValue 解析主题值
func (c *Contract) parseTopicValue(topic common.Hash, t abi.Type) (interface{}, error) {
	switch t.T {
	case abi.UintTy:
		return new(big.Int).SetBytes(topic.Bytes()), nil
	case abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes()), nil
	case abi.AddressTy:
		return common.BytesToAddress(topic.Bytes()), nil
	case abi.BoolTy:
		return new(big.Int).SetBytes(topic.Bytes()).Cmp(big.NewInt(0)) > 0, nil
	case abi.BytesTy:
		return topic.Bytes(), nil
	default:
		return topic.Hex(), nil
	}
}
