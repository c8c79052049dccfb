package testsupport

import (
	"path/filepath"
	"testing"

	"curtail/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.PublicBaseURL = "http://links.test"
	cfgVal.Server.AdminToken = "test-admin-token"
	cfgVal.Collector.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCollector points the config at a collector endpoint with test
// credentials and enables shipping.
func WithCollector(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Collector.Enabled = true
		b.cfg.Collector.BaseURL = baseURL
		b.cfg.Collector.Email = "dev@example.com"
		b.cfg.Collector.Name = "dev"
		b.cfg.Collector.RollNo = "42"
		b.cfg.Collector.AccessCode = "test-access"
		b.cfg.Collector.ClientID = "test-client"
		b.cfg.Collector.ClientSecret = "test-secret"
	}
}

// WithAdminToken overrides the admin bearer token on the test config.
func WithAdminToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.AdminToken = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
