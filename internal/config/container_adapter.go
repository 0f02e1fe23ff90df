package config

import (
	"github.com/garyjia/procurement-portal/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
			AllowOrigins: c.CORS.AllowOrigins,
		},
		Auth: container.AuthConfig{
			JWTSecret: c.Auth.JWTSecret,
		},
		Lark: container.LarkConfig{
			Enabled:       c.Lark.Enabled,
			AppID:         c.Lark.AppID,
			AppSecret:     c.Lark.AppSecret,
			PortalBaseURL: c.Lark.PortalBaseURL,
		},
		Notification: container.NotificationConfig{
			MaxAttempts:  c.Notification.MaxAttempts,
			PollInterval: c.Notification.PollInterval,
			BatchSize:    c.Notification.BatchSize,
		},
		Numbering: container.NumberingConfig{
			Year: c.Numbering.Year,
		},
	}
}
