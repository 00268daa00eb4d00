package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig `mapstructure:"server"`
	MySQL      MySQLConfig  `mapstructure:"mysql"`
	Redis      RedisConfig  `mapstructure:"redis"`
	VisitorAPI ExternalAPI  `mapstructure:"visitor_api"`
	InvoiceAPI ExternalAPI  `mapstructure:"invoice_api"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// MySQLConfig selects the persistent visit store. An empty DSN keeps the
// in-memory repositories.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig enables the visitor lookup cache. An empty addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ExternalAPI struct {
	BaseURL    string `mapstructure:"base_url"`
	AuthToken  string `mapstructure:"auth_token"`
	WorkshopID string `mapstructure:"workshop_id"`
}

// Load reads configuration from an optional config.yaml and PRICING_*
// environment variables, falling back to defaults.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("mysql.dsn", "")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("visitor_api.base_url", "https://ddd-in-language.aardling.eu")
	viper.SetDefault("visitor_api.auth_token", "")
	viper.SetDefault("visitor_api.workshop_id", "")
	viper.SetDefault("invoice_api.base_url", "https://ddd-in-language.aardling.eu")
	viper.SetDefault("invoice_api.auth_token", "")
	viper.SetDefault("invoice_api.workshop_id", "")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PRICING")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
