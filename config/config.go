package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// one database one instance
type PostgresqlConfig struct {
	Host       string
	Port       int64
	Account    string
	Password   string
	DBName     string
	SchemaName string
}

type RedisConfig struct {
	Host         string `mapstructure:"Host"`
	DB           int64  `mapstructure:"DB"`
	Password     string `mapstructure:"Password"`
	MinIdleConns int64  `mapstructure:"MinIdleConns"`
}

type KafkaConfig struct {
	Host          string
	SignalTopic   string
	SignalGroupID string
	HistoryTopic  string
	Protocol      string
	Username      string
	Password      string
	CAPath        string
}

type EndpointConfig struct {
	URL          string
	WebsocketURL string
}

type RPCConfig struct {
	Endpoints         []EndpointConfig
	ProbeIntervalSec  int64
	ProbeTimeoutMs    int64
	RequestTimeoutMs  int64
	ConfirmTimeoutSec int64
	ConfirmPollMs     int64
}

type TradeConfig struct {
	MinTradeAmount      float64
	MaxTradeAmount      float64
	MaxPriorityFeeMicro uint64
	MaxComputeUnits     uint32
	MaxRetries          int64
	ConfigCacheTTLSec   int64
	WalletPrivateKey    string
	RouteAccount        string
}

// struct decode must has tag
type Config struct {
	PostgresqlConfig PostgresqlConfig `mapstructure:"PostgresqlConfig"`
	RedisConf        RedisConfig      `mapstructure:"RedisConfig"`
	KafkaConf        KafkaConfig      `mapstructure:"KafkaConfig"`
	RPCConf          RPCConfig        `mapstructure:"RPCConfig"`
	TradeConf        TradeConfig      `mapstructure:"TradeConfig"`
}

var (
	configMutex = sync.RWMutex{}
	config      Config

	configViper     *viper.Viper
	configFlyChange []chan bool
)

func RegistConfChange(c chan bool) {
	configFlyChange = append(configFlyChange, c)
}

func notifyConfChange() {
	for i := 0; i < len(configFlyChange); i++ {
		configFlyChange[i] <- true
	}
}

func watchConfig(c *viper.Viper) error {
	c.WatchConfig()
	cfn := func(e fsnotify.Event) {
		logger.Logrus.WithFields(logrus.Fields{"change": e.String()}).Info("config change and reload it")
		reloadConfig(c)
		notifyConfChange()
	}

	c.OnConfigChange(cfn)
	return nil
}

func LoadConf(configFilePath string) error {
	config = Config{}
	configMutex.Lock()
	defer configMutex.Unlock()

	configViper = viper.New()
	configViper.SetConfigName("config")
	configViper.AddConfigPath(configFilePath) //endwith "/"
	configViper.SetConfigType("yaml")

	if err := configViper.ReadInConfig(); err != nil {
		return err
	}
	if err := configViper.Unmarshal(&config); err != nil {
		return err
	}

	applyDefaults(&config)

	logger.Logrus.WithFields(logrus.Fields{"Config": config}).Info("Load config success")

	if err := watchConfig(configViper); err != nil {
		return err
	}
	return nil
}

func reloadConfig(c *viper.Viper) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if err := c.ReadInConfig(); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("config ReLoad failed")
	}

	if err := configViper.Unmarshal(&config); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("unmarshal config failed")
	}

	applyDefaults(&config)

	logger.Logrus.WithFields(logrus.Fields{"config": config}).Info("Config ReLoad Success")
}

func applyDefaults(c *Config) {
	if c.RPCConf.ProbeIntervalSec <= 0 {
		c.RPCConf.ProbeIntervalSec = 5
	}
	if c.RPCConf.ProbeTimeoutMs <= 0 {
		c.RPCConf.ProbeTimeoutMs = 2000
	}
	if c.RPCConf.RequestTimeoutMs <= 0 {
		c.RPCConf.RequestTimeoutMs = 2000
	}
	if c.RPCConf.ConfirmTimeoutSec <= 0 {
		c.RPCConf.ConfirmTimeoutSec = 20
	}
	if c.RPCConf.ConfirmPollMs <= 0 {
		c.RPCConf.ConfirmPollMs = 400
	}
	if c.TradeConf.MinTradeAmount <= 0 {
		c.TradeConf.MinTradeAmount = 0.001
	}
	if c.TradeConf.MaxTradeAmount <= 0 {
		c.TradeConf.MaxTradeAmount = 100
	}
	if c.TradeConf.MaxPriorityFeeMicro == 0 {
		c.TradeConf.MaxPriorityFeeMicro = 1000000
	}
	if c.TradeConf.MaxComputeUnits == 0 {
		c.TradeConf.MaxComputeUnits = 1400000
	}
	if c.TradeConf.MaxRetries <= 0 {
		c.TradeConf.MaxRetries = 3
	}
	if c.TradeConf.ConfigCacheTTLSec <= 0 {
		c.TradeConf.ConfigCacheTTLSec = 3600
	}
}

func GetPostgresqlConfig() PostgresqlConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.PostgresqlConfig
}

func GetRedisConfig() RedisConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.RedisConf
}

func GetKafkaConfig() KafkaConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.KafkaConf
}

func GetRPCConfig() RPCConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.RPCConf
}

func GetTradeConfig() TradeConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.TradeConf
}

func GetProbeInterval() time.Duration {
	return time.Duration(GetRPCConfig().ProbeIntervalSec) * time.Second
}

func GetProbeTimeout() time.Duration {
	return time.Duration(GetRPCConfig().ProbeTimeoutMs) * time.Millisecond
}
