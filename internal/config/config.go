package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init config跟read config分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取  需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	DbDriver  string `mapstructure:"DB_DRIVER"`
	DbName    string `mapstructure:"POSTGRES_DB"`
	DbHost    string `mapstructure:"POSTGRES_HOST"`
	DbPort    string `mapstructure:"POSTGRES_PORT"`
	DbUser    string `mapstructure:"POSTGRES_USER"`
	DbPas     string `mapstructure:"POSTGRES_PASSWORD"`
	SqliteDsn string `mapstructure:"SQLITE_DSN"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"` // 逗號分隔，空字串時通知只寫 log
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	NotifyTimeout        time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	RateLimitCapacity    int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRPS         float64       `mapstructure:"RATE_LIMIT_RPS"`
	AvailabilityCacheTTL time.Duration `mapstructure:"AVAILABILITY_CACHE_TTL"`
	CartTTL              time.Duration `mapstructure:"CART_TTL"`
	DefaultShippingCost  float64       `mapstructure:"DEFAULT_SHIPPING_COST"`
	OrderCodeRetry       int           `mapstructure:"ORDER_CODE_RETRY"`
}

func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

var defaults = map[string]any{
	"SERVICE_NAME":           "roundsale",
	"ENV":                    "development",
	"LOG_LEVEL":              "info",
	"SERVER_PORT":            "8080",
	"DB_DRIVER":              "postgres",
	"POSTGRES_DB":            "roundsale",
	"POSTGRES_HOST":          "localhost",
	"POSTGRES_PORT":          "5432",
	"POSTGRES_USER":          "postgres",
	"POSTGRES_PASSWORD":      "",
	"SQLITE_DSN":             "file:roundsale.db",
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"KAFKA_BROKERS":          "",
	"KAFKA_ORDER_TOPIC":      "roundsale.orders",
	"NOTIFY_TIMEOUT":         "5s",
	"RATE_LIMIT_CAPACITY":    20,
	"RATE_LIMIT_RPS":         5,
	"AVAILABILITY_CACHE_TTL": "10s",
	"CART_TTL":               "72h",
	"DEFAULT_SHIPPING_COST":  50,
	"ORDER_CODE_RETRY":       3,
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	muonce.Do(func() {
		config_singleton = &ConfigSingleTon{}
		v := viper.New()
		cf, err := loadConfig(v, configFilePath())
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		config_singleton.Config = cf

		if v.ConfigFileUsed() == "" {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf, err := loadConfig(v, configFilePath())
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			config_singleton.mu.Lock()
			config_singleton.Config = cf
			config_singleton.mu.Unlock()
		})
		v.WatchConfig()
	})
}

func configFilePath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	return "./.env"
}

// LoadConfig 讀取 .env 再由環境變數覆蓋，檔案不存在時只用環境變數
func LoadConfig(path string) (*Config, error) {
	return loadConfig(viper.New(), path)
}

/*
單純回傳錯誤  由外部決定要不要Fatal
*/
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
		v.SetConfigFile("")
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}
