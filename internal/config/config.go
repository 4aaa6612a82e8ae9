package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "PRODUCTS_CONFIG_FILE"

// Config holds every setting the service reads at startup.
type Config struct {
	AppPort       string `mapstructure:"APP_PORT"`
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DatabaseDSN   string `mapstructure:"DATABASE_DSN"`
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue string `mapstructure:"RABBITMQ_QUEUE"`
	FrontendURL   string `mapstructure:"FRONTEND_URL"`
	BasePath      string `mapstructure:"API_BASE_PATH"`
}

// Defaults returns a viper instance with every key and its default value set.
func Defaults() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=products port=5432 sslmode=disable")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")
	v.SetDefault("FRONTEND_URL", "")
	v.SetDefault("API_BASE_PATH", "/api/products")
	return v
}

// Load reads configuration from, in increasing priority: defaults, the optional
// config file (--config flag or PRODUCTS_CONFIG_FILE), and environment variables.
// A .env file in the working directory is loaded into the environment first.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	v := Defaults()
	v.AutomaticEnv()

	path, err := configFilePath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func configFilePath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("products-api", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "config file (yaml, json or toml)")
	if err := cmdLine.Parse(args); err != nil {
		return "", fmt.Errorf("failed to parse flags: %w", err)
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok && *arg == "" {
		return env, nil
	}
	return *arg, nil
}
