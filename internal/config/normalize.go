package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeCollector()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Server.PublicBaseURL), "/")
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = defaultPublicBaseURL
	}
	c.Server.AdminToken = strings.TrimSpace(c.Server.AdminToken)
	if c.Server.AdminToken == "" {
		if value, ok := os.LookupEnv("CURTAIL_ADMIN_TOKEN"); ok {
			c.Server.AdminToken = strings.TrimSpace(value)
		}
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
}

func (c *Config) normalizeCollector() {
	c.Collector.BaseURL = strings.TrimRight(strings.TrimSpace(c.Collector.BaseURL), "/")
	c.Collector.Email = strings.TrimSpace(c.Collector.Email)
	c.Collector.Name = strings.TrimSpace(c.Collector.Name)
	c.Collector.RollNo = strings.TrimSpace(c.Collector.RollNo)
	c.Collector.AccessCode = strings.TrimSpace(c.Collector.AccessCode)
	c.Collector.ClientID = strings.TrimSpace(c.Collector.ClientID)
	c.Collector.ClientSecret = strings.TrimSpace(c.Collector.ClientSecret)
	if c.Collector.AccessCode == "" {
		if value, ok := os.LookupEnv("CURTAIL_ACCESS_CODE"); ok {
			c.Collector.AccessCode = strings.TrimSpace(value)
		}
	}
	if c.Collector.ClientSecret == "" {
		if value, ok := os.LookupEnv("CURTAIL_CLIENT_SECRET"); ok {
			c.Collector.ClientSecret = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
