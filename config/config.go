package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Defaults DefaultsConfig
	Events   EventsConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port               string
	Env                string
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	URL      string
}

type DefaultsConfig struct {
	OrderPrefix   string `mapstructure:"order_prefix"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	SeedDemoData  bool   `mapstructure:"seed_demo_data"`
}

type EventsConfig struct {
	Broker           string // none, kafka or rabbitmq
	KafkaBrokers     []string
	KafkaTopic       string
	RabbitMQURL      string
	RabbitMQExchange string
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

var AppConfig *Config

// LoadConfig fills AppConfig from .env in the working directory and the
// process environment.
func LoadConfig() error {
	cfg, err := Load(".env")
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Load reads envFile (optional) and lets OS environment variables override
// it.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		slog.Warn("env file not found, using environment variables", slog.String("file", envFile), slog.String("error", err.Error()))
	}

	v.AutomaticEnv()

	if err := v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind SERVER_PORT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetString("SERVER_PORT"),
			Env:                v.GetString("SERVER_ENV"),
			JWTSecret:          v.GetString("JWT_SECRET"),
			JWTExpirationHours: v.GetInt("JWT_EXPIRATION_HOURS"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			URL:      v.GetString("DATABASE_URL"),
		},
		Defaults: DefaultsConfig{
			OrderPrefix:   v.GetString("ORDER_PREFIX"),
			AdminUsername: v.GetString("ADMIN_USERNAME"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
			SeedDemoData:  v.GetBool("SEED_DEMO_DATA"),
		},
		Events: EventsConfig{
			Broker:           strings.ToLower(v.GetString("EVENTS_BROKER")),
			KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
			KafkaTopic:       v.GetString("KAFKA_TOPIC"),
			RabbitMQURL:      v.GetString("RABBITMQ_URL"),
			RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Cache: CacheConfig{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "production")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("ORDER_PREFIX", "ORD")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("EVENTS_BROKER", "none")
	v.SetDefault("KAFKA_TOPIC", "order-events")
	v.SetDefault("RABBITMQ_EXCHANGE", "orders_topic")
	v.SetDefault("CACHE_TTL_SECONDS", 300)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Events.Broker {
	case "none", "":
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("EVENTS_BROKER=kafka requires KAFKA_BROKERS")
		}
	case "rabbitmq":
		if c.Events.RabbitMQURL == "" {
			return fmt.Errorf("EVENTS_BROKER=rabbitmq requires RABBITMQ_URL")
		}
	default:
		return fmt.Errorf("unsupported EVENTS_BROKER %q", c.Events.Broker)
	}

	if c.Server.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.Server.JWTExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LogSummary prints the loaded settings with secrets masked.
func (c *Config) LogSummary(log *slog.Logger) {
	set := func(s string) string {
		if s != "" {
			return "SET"
		}
		return "NOT SET"
	}

	log.Info("configuration loaded",
		slog.String("server_port", c.Server.Port),
		slog.String("server_env", c.Server.Env),
		slog.String("jwt_secret", set(c.Server.JWTSecret)),
		slog.String("db_driver", c.Database.Driver),
		slog.String("db_host", c.Database.Host),
		slog.String("db_port", c.Database.Port),
		slog.String("db_name", c.Database.Name),
		slog.String("database_url", set(c.Database.URL)),
		slog.String("events_broker", c.Events.Broker),
		slog.String("redis_addr", c.Cache.RedisAddr),
	)
}
