// Package config handles loading and validation of service configuration.
// Supports both development (env vars, optional .env file) and production
// (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"golang.org/x/mod/semver"
)

// Defaults applied when a value is not configured.
const (
	DefaultPort               = "8080"
	DefaultWidgetTemplateName = "Product Table"
	DefaultUpstreamTransport  = "chrome"
)

// Config holds all service configuration.
// Environment determines whether store secrets load from env vars
// (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string

	// StoreHash identifies the BigCommerce store and names its secret.
	StoreHash string

	// MinWidgetVersion rejects storefront bundles older than this semver.
	// Empty accepts every version.
	MinWidgetVersion string

	// AllowedOrigins lists storefront origins allowed by CORS. Empty allows any.
	AllowedOrigins []string

	// UpstreamTransport is "chrome" or "standard".
	UpstreamTransport string

	// PublicURL is the proxy's externally reachable base URL, baked into
	// the storefront widget template.
	PublicURL string

	// Store-specific configuration (loaded from secrets)
	Store StoreConfig
}

// StoreConfig contains store-specific settings.
// In production, this is loaded from Secret Manager as JSON.
// In development, loaded from individual env vars or CONFIG_FILE.
type StoreConfig struct {
	AccessToken string `json:"access_token"`
	ClientID    string `json:"client_id,omitempty"`
	APIURL      string `json:"api_url,omitempty"` // overrides https://api.bigcommerce.com/stores/{hash}
	Currency    string `json:"currency,omitempty"`

	// CustomerTagsAttributeID is the customer attribute holding tags.
	CustomerTagsAttributeID int `json:"customer_tags_attribute_id,omitempty"`

	// DatabaseURL selects the Postgres widget store; empty uses memory.
	DatabaseURL string `json:"database_url,omitempty"`

	LoaderScriptURL    string `json:"loader_script_url,omitempty"`
	WidgetTemplateName string `json:"widget_template_name,omitempty"`

	// AdminToken is the bearer token guarding /api/admin/. Required in
	// production; empty leaves the admin routes open in development.
	AdminToken string `json:"admin_token,omitempty"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Outside production a .env file (ENV_FILE, default ".env") is read first
// without overriding variables already set.
func Load(ctx context.Context) (*Config, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	if envOrDefault("ENVIRONMENT", "development") != "production" {
		if err := loadDotEnv(envOrDefault("ENV_FILE", ".env")); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:              envOrDefault("PORT", DefaultPort),
		Environment:       envOrDefault("ENVIRONMENT", "development"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		GCPProject:        os.Getenv("GCP_PROJECT"),
		StoreHash:         os.Getenv("STORE_HASH"),
		MinWidgetVersion:  os.Getenv("MIN_WIDGET_VERSION"),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		UpstreamTransport: envOrDefault("UPSTREAM_TRANSPORT", DefaultUpstreamTransport),
		PublicURL:         os.Getenv("PUBLIC_URL"),
	}

	if cfg.StoreHash == "" {
		return nil, fmt.Errorf("STORE_HASH environment variable required")
	}

	var err error
	if cfg.IsProduction() {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port              string      `json:"port"`
		Environment       string      `json:"environment"`
		LogLevel          string      `json:"log_level"`
		StoreHash         string      `json:"store_hash"`
		MinWidgetVersion  string      `json:"min_widget_version"`
		AllowedOrigins    []string    `json:"allowed_origins"`
		UpstreamTransport string      `json:"upstream_transport"`
		PublicURL         string      `json:"public_url"`
		Store             StoreConfig `json:"store"`
	}
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:              withDefault(fileConfig.Port, DefaultPort),
		Environment:       withDefault(fileConfig.Environment, "development"),
		LogLevel:          withDefault(fileConfig.LogLevel, "info"),
		StoreHash:         fileConfig.StoreHash,
		MinWidgetVersion:  fileConfig.MinWidgetVersion,
		AllowedOrigins:    fileConfig.AllowedOrigins,
		UpstreamTransport: withDefault(fileConfig.UpstreamTransport, DefaultUpstreamTransport),
		PublicURL:         fileConfig.PublicURL,
		Store:             fileConfig.Store,
	}

	if cfg.StoreHash == "" {
		return nil, fmt.Errorf("store_hash is required")
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromSecretManager fetches store config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{store_hash}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := SecretName(c.GCPProject, c.StoreHash)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Store); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	return nil
}

// SecretName returns the Secret Manager resource holding a store's config.
func SecretName(project, storeHash string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, storeHash)
}

// loadFromEnv reads store config from individual environment variables.
func (c *Config) loadFromEnv() error {
	c.Store = StoreConfig{
		AccessToken:        os.Getenv("BIGCOMMERCE_ACCESS_TOKEN"),
		ClientID:           os.Getenv("BIGCOMMERCE_CLIENT_ID"),
		APIURL:             os.Getenv("BIGCOMMERCE_API_URL"),
		Currency:           os.Getenv("STORE_CURRENCY"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LoaderScriptURL:    os.Getenv("LOADER_SCRIPT_URL"),
		WidgetTemplateName: os.Getenv("WIDGET_TEMPLATE_NAME"),
		AdminToken:         os.Getenv("ADMIN_TOKEN"),
	}

	if raw := os.Getenv("CUSTOMER_TAGS_ATTRIBUTE_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parsing CUSTOMER_TAGS_ATTRIBUTE_ID: %w", err)
		}
		c.Store.CustomerTagsAttributeID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Store.WidgetTemplateName = withDefault(c.Store.WidgetTemplateName, DefaultWidgetTemplateName)
	c.Store.Currency = strings.ToUpper(c.Store.Currency)
	c.UpstreamTransport = strings.ToLower(c.UpstreamTransport)
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Store.AccessToken == "" {
		return fmt.Errorf("access_token is required")
	}
	if c.IsProduction() && c.Store.AdminToken == "" {
		return fmt.Errorf("admin_token is required in production")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.Store.APIURL != "" {
		u, err := url.Parse(c.Store.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid api_url %q", c.Store.APIURL)
		}
	}
	if c.PublicURL != "" {
		u, err := url.Parse(c.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid public_url %q", c.PublicURL)
		}
	}
	if c.Store.LoaderScriptURL != "" {
		if _, err := url.Parse(c.Store.LoaderScriptURL); err != nil {
			return fmt.Errorf("invalid loader_script_url: %w", err)
		}
	}
	if c.Store.CustomerTagsAttributeID < 0 {
		return fmt.Errorf("customer_tags_attribute_id must not be negative")
	}
	if c.MinWidgetVersion != "" && !semver.IsValid(canonicalVersion(c.MinWidgetVersion)) {
		return fmt.Errorf("invalid min_widget_version %q", c.MinWidgetVersion)
	}
	switch c.UpstreamTransport {
	case "chrome", "standard":
	default:
		return fmt.Errorf("upstream_transport must be chrome or standard, got %q", c.UpstreamTransport)
	}
	return nil
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
