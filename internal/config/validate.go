package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCollector(); err != nil {
		return err
	}
	if err := c.validateShortener(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	parsed, err := url.Parse(c.Server.PublicBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.public_base_url must be an absolute http(s) URL, got %q", c.Server.PublicBaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.public_base_url must use http or https, got %q", parsed.Scheme)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateCollector() error {
	if !c.Collector.Enabled {
		return nil
	}
	if c.Collector.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/curtail/config.toml"
		}
		return fmt.Errorf("collector.base_url is required when collector.enabled is true. Edit %s (create with 'curtail config init')", defaultPath)
	}
	required := map[string]string{
		"collector.email":         c.Collector.Email,
		"collector.name":          c.Collector.Name,
		"collector.roll_no":       c.Collector.RollNo,
		"collector.access_code":   c.Collector.AccessCode,
		"collector.client_id":     c.Collector.ClientID,
		"collector.client_secret": c.Collector.ClientSecret,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set when collector.enabled is true", key)
		}
	}
	if err := ensurePositiveMap(map[string]int{
		"collector.request_timeout":  c.Collector.RequestTimeout,
		"collector.max_attempts":     c.Collector.MaxAttempts,
		"collector.retry_backoff_ms": c.Collector.RetryBackoffMS,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShortener() error {
	if c.Shortener.DefaultValidityMinutes <= 0 {
		return errors.New("shortener.default_validity_minutes must be positive")
	}
	if c.Shortener.CacheTTLSeconds < 0 {
		return errors.New("shortener.cache_ttl_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.SweepInterval <= 0 {
		return errors.New("workflow.sweep_interval must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
