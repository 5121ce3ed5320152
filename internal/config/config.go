package config

import (
	"github.com/blues/lps/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Funding  FundingConfig  `mapstructure:"funding"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 单链配置
type ChainConfig struct {
	ChainType  string                    `mapstructure:"chain_type"`  // 链类型 (ethereum, polygon, etc.)
	ChainId    int64                     `mapstructure:"chain_id"`    // 链ID
	RpcUrl     string                    `mapstructure:"rpc_url"`     // RPC节点URL
	PrivateKey string                    `mapstructure:"private_key"` // 私钥
	Contracts  map[string]ContractConfig `mapstructure:"contracts"`   // 协作方合约配置
}

// ContractConfig 单个合约配置
type ContractConfig struct {
	Address  string `mapstructure:"address"`   // 合约地址
	ABIPath  string `mapstructure:"abi_path"`  // ABI文件路径
	Enabled  bool   `mapstructure:"enabled"`   // 是否启用此合约
	BlockNum int64  `mapstructure:"block_num"` // 合约部署区块号
}

// FundingConfig 融资参数配置
type FundingConfig struct {
	MinTarget        int64  `mapstructure:"min_target"`         // 最小融资目标
	MaxTarget        int64  `mapstructure:"max_target"`         // 最大融资目标
	MinSupply        int64  `mapstructure:"min_supply"`         // 最小代币总量
	MaxSupply        int64  `mapstructure:"max_supply"`         // 最大代币总量
	MinDurationHours int    `mapstructure:"min_duration_hours"` // 最短融资时长（小时）
	MaxDurationHours int    `mapstructure:"max_duration_hours"` // 最长融资时长（小时）
	SponsorFee       int64  `mapstructure:"sponsor_fee"`        // 赞助费
	PointsBank       int64  `mapstructure:"points_bank"`        // 赞助积分池大小
	VestingDays      int    `mapstructure:"vesting_days"`       // 线性释放周期（天）
	MinHarvest       int64  `mapstructure:"min_harvest"`        // 最小归集收益
	StableSymbol     string `mapstructure:"stable_symbol"`      // 稳定币符号
	PlatformAddress  string `mapstructure:"platform_address"`   // 平台地址
	AdminAddress     string `mapstructure:"admin_address"`      // 管理员地址
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/lps")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "launchpad")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("funding.min_target", 1000)
	viper.SetDefault("funding.max_target", 100000000)
	viper.SetDefault("funding.min_supply", 100000)
	viper.SetDefault("funding.max_supply", 10000000000)
	viper.SetDefault("funding.min_duration_hours", 24)
	viper.SetDefault("funding.max_duration_hours", 2160)
	viper.SetDefault("funding.sponsor_fee", 500)
	viper.SetDefault("funding.points_bank", 10000)
	viper.SetDefault("funding.vesting_days", 90)
	viper.SetDefault("funding.min_harvest", 10)
	viper.SetDefault("funding.stable_symbol", "USDC")
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
