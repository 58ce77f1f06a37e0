package config

import (
	"github.com/bakoushin/celo-box/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseUrl string `mapstructure:"base_url"` // 对外可访问的基础URL（分享链接、钱包回调）
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置（按网络名划分）
type ChainConfig struct {
	Networks        map[string]NetworkConfig `mapstructure:"networks"`         // 网络配置: "mainnet"/"alfajores" -> NetworkConfig
	CreationTimeout int                      `mapstructure:"creation_timeout"` // 等待BoxCreated事件的超时时间（秒）
}

// NetworkConfig 单个网络配置
type NetworkConfig struct {
	RpcUrl         string `mapstructure:"rpc_url"`         // WebSocket JSON-RPC节点URL
	FactoryAddress string `mapstructure:"factory_address"` // BoxFactory合约地址
	GoldToken      string `mapstructure:"gold_token"`      // CELO代币合约地址
	StableToken    string `mapstructure:"stable_token"`    // cUSD代币合约地址
	ExplorerUrl    string `mapstructure:"explorer_url"`    // 区块浏览器地址
}

// WalletConfig 外部钱包签名配置
type WalletConfig struct {
	DappName    string `mapstructure:"dapp_name"`    // 发给钱包的应用名称
	Scheme      string `mapstructure:"scheme"`       // 钱包深链scheme
	CallbackUrl string `mapstructure:"callback_url"` // 钱包回调URL
	RequestTTL  int    `mapstructure:"request_ttl"`  // 签名请求过期时间（秒）
}

// StorageConfig 对象存储配置（封面图片）
type StorageConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	CDNBaseUrl string `mapstructure:"cdn_base_url"` // 返回给客户端的图片URL前缀
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
	viper.AddConfigPath("/etc/celo-box")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "celobox")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.creation_timeout", 120)
	viper.SetDefault("chain.networks.mainnet.rpc_url", "wss://forno.celo.org/ws")
	viper.SetDefault("chain.networks.mainnet.gold_token", "0x471EcE3750Da237f93B8E339c536989b8978a438")
	viper.SetDefault("chain.networks.mainnet.stable_token", "0x765DE816845861e75A25fCA122bb6898B8B1282a")
	viper.SetDefault("chain.networks.mainnet.explorer_url", "https://explorer.celo.org")
	viper.SetDefault("chain.networks.alfajores.rpc_url", "wss://alfajores-forno.celo-testnet.org/ws")
	viper.SetDefault("chain.networks.alfajores.gold_token", "0xF194afDf50B03e69Bd7D057c1Aa9e10c9954E4C9")
	viper.SetDefault("chain.networks.alfajores.stable_token", "0x874069Fa1Eb16D44d622F2e0Ca25eeA172369bC1")
	viper.SetDefault("chain.networks.alfajores.explorer_url", "https://alfajores-blockscout.celo-testnet.org")
	viper.SetDefault("wallet.dapp_name", "Boxes")
	viper.SetDefault("wallet.scheme", "celo://wallet/dappkit")
	viper.SetDefault("wallet.callback_url", "http://localhost:8080/wallet/callback")
	viper.SetDefault("wallet.request_ttl", 600)
	viper.SetDefault("storage.region", "auto")
	viper.SetDefault("storage.bucket", "celo-box")
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
