package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"CONFIG_FILE", "ENV_FILE", "PORT", "ENVIRONMENT", "LOG_LEVEL", "GCP_PROJECT",
	"STORE_HASH", "BIGCOMMERCE_ACCESS_TOKEN", "BIGCOMMERCE_CLIENT_ID", "BIGCOMMERCE_API_URL",
	"STORE_CURRENCY", "CUSTOMER_TAGS_ATTRIBUTE_ID", "DATABASE_URL", "MIN_WIDGET_VERSION",
	"ALLOWED_ORIGINS", "LOADER_SCRIPT_URL", "WIDGET_TEMPLATE_NAME", "UPSTREAM_TRANSPORT",
	"PUBLIC_URL", "ADMIN_TOKEN",
}

// setEnv clears every config variable for the test, then applies vals.
func setEnv(t *testing.T, vals map[string]string) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for k, v := range vals {
		t.Setenv(k, v)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromEnv(t *testing.T) {
	setEnv(t, map[string]string{
		"STORE_HASH":                 "abc123",
		"BIGCOMMERCE_ACCESS_TOKEN":   "tok",
		"BIGCOMMERCE_CLIENT_ID":      "client",
		"STORE_CURRENCY":             "cad",
		"CUSTOMER_TAGS_ATTRIBUTE_ID": "4",
		"PORT":                       "9090",
		"LOG_LEVEL":                  "debug",
		"ALLOWED_ORIGINS":            "https://shop.example.com, ,https://www.example.com",
		"MIN_WIDGET_VERSION":         "1.2.0",
		"UPSTREAM_TRANSPORT":         "Standard",
		"ADMIN_TOKEN":                "admin-secret",
	})

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "abc123", cfg.StoreHash)
	assert.Equal(t, "tok", cfg.Store.AccessToken)
	assert.Equal(t, "CAD", cfg.Store.Currency)
	assert.Equal(t, 4, cfg.Store.CustomerTagsAttributeID)
	assert.Equal(t, DefaultWidgetTemplateName, cfg.Store.WidgetTemplateName)
	assert.Equal(t, []string{"https://shop.example.com", "https://www.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "standard", cfg.UpstreamTransport)
	assert.Equal(t, "admin-secret", cfg.Store.AdminToken)
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"STORE_HASH":               "abc123",
		"BIGCOMMERCE_ACCESS_TOKEN": "tok",
	})

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultUpstreamTransport, cfg.UpstreamTransport)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.Store.DatabaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	setEnv(t, map[string]string{
		"STORE_HASH": "from-env",
	})
	t.Setenv("ENV_FILE", writeFile(t, ".env", "STORE_HASH=from-file\nBIGCOMMERCE_ACCESS_TOKEN=dotenv-token\n"))
	t.Cleanup(func() { os.Unsetenv("BIGCOMMERCE_ACCESS_TOKEN") })
	os.Unsetenv("BIGCOMMERCE_ACCESS_TOKEN")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.StoreHash, "existing variables win over .env")
	assert.Equal(t, "dotenv-token", cfg.Store.AccessToken)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing store hash", map[string]string{"BIGCOMMERCE_ACCESS_TOKEN": "tok"}},
		{"missing access token", map[string]string{"STORE_HASH": "abc"}},
		{"production without project", map[string]string{"STORE_HASH": "abc", "ENVIRONMENT": "production"}},
		{"bad attribute id", map[string]string{"STORE_HASH": "abc", "BIGCOMMERCE_ACCESS_TOKEN": "tok", "CUSTOMER_TAGS_ATTRIBUTE_ID": "tags"}},
		{"bad port", map[string]string{"STORE_HASH": "abc", "BIGCOMMERCE_ACCESS_TOKEN": "tok", "PORT": "http"}},
		{"bad api url", map[string]string{"STORE_HASH": "abc", "BIGCOMMERCE_ACCESS_TOKEN": "tok", "BIGCOMMERCE_API_URL": "not a url"}},
		{"bad widget version", map[string]string{"STORE_HASH": "abc", "BIGCOMMERCE_ACCESS_TOKEN": "tok", "MIN_WIDGET_VERSION": "latest"}},
		{"bad transport", map[string]string{"STORE_HASH": "abc", "BIGCOMMERCE_ACCESS_TOKEN": "tok", "UPSTREAM_TRANSPORT": "curl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	setEnv(t, nil)
	t.Setenv("CONFIG_FILE", writeFile(t, "config.json", `{
		"port": "3000",
		"store_hash": "abc123",
		"allowed_origins": ["https://shop.example.com"],
		"min_widget_version": "v2.0.0",
		"store": {
			"access_token": "tok",
			"api_url": "http://localhost:9999/stores/abc123",
			"customer_tags_attribute_id": 7,
			"database_url": "postgres://localhost/widgets"
		}
	}`))

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "abc123", cfg.StoreHash)
	assert.Equal(t, "http://localhost:9999/stores/abc123", cfg.Store.APIURL)
	assert.Equal(t, 7, cfg.Store.CustomerTagsAttributeID)
	assert.Equal(t, "postgres://localhost/widgets", cfg.Store.DatabaseURL)
	assert.Equal(t, DefaultUpstreamTransport, cfg.UpstreamTransport)
}

func TestLoadFromFile_ProductionAdminToken(t *testing.T) {
	setEnv(t, nil)
	t.Setenv("CONFIG_FILE", writeFile(t, "config.json",
		`{"environment":"production","store_hash":"abc","store":{"access_token":"tok","admin_token":"admin-secret"}}`))

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "admin-secret", cfg.Store.AdminToken)
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		setEnv(t, map[string]string{"CONFIG_FILE": "/nonexistent/config.json"})
		_, err := Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		setEnv(t, nil)
		t.Setenv("CONFIG_FILE", writeFile(t, "config.json", "{not json"))
		_, err := Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing store hash", func(t *testing.T) {
		setEnv(t, nil)
		t.Setenv("CONFIG_FILE", writeFile(t, "config.json", `{"store":{"access_token":"tok"}}`))
		_, err := Load(context.Background())
		assert.ErrorContains(t, err, "store_hash")
	})

	t.Run("production without admin token", func(t *testing.T) {
		setEnv(t, nil)
		t.Setenv("CONFIG_FILE", writeFile(t, "config.json",
			`{"environment":"production","store_hash":"abc","store":{"access_token":"tok"}}`))
		_, err := Load(context.Background())
		assert.ErrorContains(t, err, "admin_token")
	})
}

func TestSecretName(t *testing.T) {
	assert.Equal(t, "projects/p1/secrets/abc123/versions/latest", SecretName("p1", "abc123"))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a,,b ,"))
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "custom")
	assert.Equal(t, "custom", envOrDefault("TEST_ENV_VAR", "default"))
	assert.Equal(t, "default", envOrDefault("TEST_ENV_VAR_UNSET_XYZ", "default"))
}

func TestWithDefault(t *testing.T) {
	assert.Equal(t, "value", withDefault("value", "default"))
	assert.Equal(t, "default", withDefault("", "default"))
}
