package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SHOPIFY_ACCESS_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in several locations so the loader works from the
// repo root, cmd directories, and test packages alike.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars substitutes ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)
		if s, ok := val.(string); ok && strings.Contains(s, "${") {
			v.Set(key, os.ExpandEnv(s))
		}
	}
}

// normalize reconciles alternate spellings of the same setting. The
// elasticsearch url key is shorthand for a single-node addresses list.
func normalize(cfg *Config) {
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL != "" {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "smartshopper"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Catalog.Adapter == "" {
		cfg.Catalog.Adapter = "elasticsearch"
	}
	if cfg.Catalog.Index == "" {
		cfg.Catalog.Index = "products"
	}
	if cfg.Catalog.PageSize == 0 {
		cfg.Catalog.PageSize = 5
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 10000
	}
	if cfg.Catalog.Shopify.APIVersion == "" {
		cfg.Catalog.Shopify.APIVersion = "2024-01"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 30
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "chat:session:"
	}
	if cfg.Assistant.Greeting == "" {
		cfg.Assistant.Greeting = "Hi! What are you looking for today?"
	}
	if cfg.Assistant.Questions.Category == "" {
		cfg.Assistant.Questions.Category = "What type of product are you looking for? (e.g., pants, shoes, dress)"
	}
	if cfg.Assistant.Questions.Color == "" {
		cfg.Assistant.Questions.Color = "Do you have a preferred color?"
	}
	if cfg.Assistant.Questions.Size == "" {
		cfg.Assistant.Questions.Size = "What size do you need? (e.g., S, M, L)"
	}
	if cfg.Assistant.Questions.PriceMax == "" {
		cfg.Assistant.Questions.PriceMax = "What is your maximum price?"
	}
	if len(cfg.Assistant.Vocabulary.Sizes) == 0 {
		cfg.Assistant.Vocabulary.Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Catalog.Adapter {
	case "elasticsearch", "shopify", "memory":
	default:
		return fmt.Errorf("unknown catalog adapter %q", cfg.Catalog.Adapter)
	}

	if cfg.Catalog.Adapter == "shopify" {
		if cfg.Catalog.Shopify.StoreURL == "" {
			return fmt.Errorf("catalog.shopify.store_url is required for the shopify adapter")
		}
		if cfg.Catalog.Shopify.AccessToken == "" {
			return fmt.Errorf("catalog.shopify.access_token is required for the shopify adapter")
		}
	}

	if cfg.Catalog.PageSize < 1 || cfg.Catalog.PageSize > 50 {
		return fmt.Errorf("catalog.page_size must be between 1 and 50, got %d", cfg.Catalog.PageSize)
	}

	return nil
}
