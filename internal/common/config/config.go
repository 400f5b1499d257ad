package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Session   SessionConfig   `mapstructure:"session"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single-node shorthand, folded into Addresses on load
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Catalog Config ---

// CatalogConfig selects and configures the product catalog backend.
type CatalogConfig struct {
	Adapter   string        `mapstructure:"adapter"` // elasticsearch | shopify | memory
	Index     string        `mapstructure:"index"`
	PageSize  int           `mapstructure:"page_size"`
	Timeout   int           `mapstructure:"timeout"`    // milliseconds
	ItemsFile string        `mapstructure:"items_file"` // memory adapter only
	Shopify   ShopifyConfig `mapstructure:"shopify"`
}

type ShopifyConfig struct {
	StoreURL    string `mapstructure:"store_url"`
	AccessToken string `mapstructure:"access_token"`
	APIVersion  string `mapstructure:"api_version"`
}

// --- Session Config ---

type SessionConfig struct {
	TTL       int    `mapstructure:"ttl"` // minutes of idle time before a session expires
	KeyPrefix string `mapstructure:"key_prefix"`
}

// --- Assistant Config ---

// AssistantConfig carries the dialogue data the core treats as input:
// keyword vocabularies, the size token set, and the question/response texts.
type AssistantConfig struct {
	Greeting   string           `mapstructure:"greeting"`
	Questions  QuestionsConfig  `mapstructure:"questions"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
}

type QuestionsConfig struct {
	Category string `mapstructure:"category"`
	Color    string `mapstructure:"color"`
	Size     string `mapstructure:"size"`
	PriceMax string `mapstructure:"price_max"`
}

// VocabularyConfig maps canonical terms to their matching patterns per field.
// PackPath, when set, loads the vocabularies from a pack file instead.
type VocabularyConfig struct {
	PackPath   string              `mapstructure:"pack_path"`
	Categories map[string][]string `mapstructure:"categories"`
	Styles     map[string][]string `mapstructure:"styles"`
	Colors     map[string][]string `mapstructure:"colors"`
	Sizes      []string            `mapstructure:"sizes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
