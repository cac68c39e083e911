package config

import "time"

// ConfigProvider defines the interface for configuration access
type ConfigProvider interface {
	GetSender() string
	GetReceiver() string
	GetPassword() string
	GetServer() string
	GetPort() int
	GetAuthor() string
	GetStorePath() string
	GetSpoolPath() string
	GetCheckInterval() int
	IsDaemonEnabled() bool
	GetLogPath() string
	GetPidFile() string
	GetListenAddr() string
	GetMailTimeout() time.Duration
	Validate() error
}

// ConfigImpl implements ConfigProvider interface
type ConfigImpl struct {
	cfg *config
}

// NewConfigProvider creates a new ConfigProvider instance
func NewConfigProvider(cfg *config) ConfigProvider {
	return &ConfigImpl{cfg: cfg}
}

func (c *ConfigImpl) GetSender() string {
	return c.cfg.Sender
}

func (c *ConfigImpl) GetReceiver() string {
	return c.cfg.Receiver
}

func (c *ConfigImpl) GetPassword() string {
	return c.cfg.Password
}

func (c *ConfigImpl) GetServer() string {
	return c.cfg.Server
}

func (c *ConfigImpl) GetPort() int {
	return c.cfg.Port
}

func (c *ConfigImpl) GetAuthor() string {
	return c.cfg.Author
}

func (c *ConfigImpl) GetStorePath() string {
	return c.cfg.StorePath
}

func (c *ConfigImpl) GetSpoolPath() string {
	return c.cfg.SpoolPath
}

func (c *ConfigImpl) GetCheckInterval() int {
	return c.cfg.CheckInterval
}

func (c *ConfigImpl) IsDaemonEnabled() bool {
	return c.cfg.DaemonEnabled
}

func (c *ConfigImpl) GetLogPath() string {
	return c.cfg.LogPath
}

func (c *ConfigImpl) GetPidFile() string {
	return c.cfg.PidFile
}

func (c *ConfigImpl) GetListenAddr() string {
	return c.cfg.ListenAddr
}

func (c *ConfigImpl) GetMailTimeout() time.Duration {
	return time.Duration(c.cfg.MailTimeout) * time.Second
}

func (c *ConfigImpl) Validate() error {
	return c.cfg.Validate()
}
