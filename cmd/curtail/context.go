package main

import (
	"strings"
	"sync"

	"curtail/internal/api"
	"curtail/internal/config"
)

type commandContext struct {
	configFlag *string
	serverFlag *string
	tokenFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, serverFlag, tokenFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		serverFlag: serverFlag,
		tokenFlag:  tokenFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// serverBaseURL resolves the daemon API base URL, preferring the --server
// flag over the configured bind address.
func (c *commandContext) serverBaseURL() string {
	if c.serverFlag != nil {
		if flag := strings.TrimSpace(*c.serverFlag); flag != "" {
			if !strings.Contains(flag, "://") {
				return "http://" + flag
			}
			return flag
		}
	}
	if cfg := c.configValue(); cfg != nil {
		return "http://" + cfg.Server.Bind
	}
	return ""
}

func (c *commandContext) adminToken() string {
	if c.tokenFlag != nil {
		if flag := strings.TrimSpace(*c.tokenFlag); flag != "" {
			return flag
		}
	}
	if cfg := c.configValue(); cfg != nil {
		return cfg.Server.AdminToken
	}
	return ""
}

func (c *commandContext) apiClient() (*api.Client, error) {
	return api.NewClient(c.serverBaseURL(), api.WithAdminToken(c.adminToken()))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
