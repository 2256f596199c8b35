package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

// DataConfig selects where the app loads airports and flights from. The
// worker always reads the files and writes them to the database.
type DataConfig struct {
	Source                string `yaml:"source" validate:"oneof=file postgres"`
	AirportsFile          string `yaml:"airports_file" validate:"required_if=Source file"`
	FlightsFile           string `yaml:"flights_file" validate:"required_if=Source file"`
	ReloadIntervalSeconds int    `yaml:"reload_interval_seconds" validate:"gte=0"`
}

func (d DataConfig) ReloadInterval() time.Duration {
	return time.Duration(d.ReloadIntervalSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type CacheConfig struct {
	Driver     string `yaml:"driver" validate:"oneof=none memory redis"`
	TTLSeconds int    `yaml:"ttl_seconds" validate:"gte=0"`
	Size       int    `yaml:"size" validate:"gte=0"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	DatasetTopic string   `yaml:"dataset_topic"`
	// GroupID is a prefix; each process appends its hostname and a random suffix.
	GroupID      string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.DatasetTopic != ""
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Data.Source == "" {
		c.Data.Source = "file"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 1024
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "airroutes"
	}
}
