package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

type config struct {
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Password  string `json:"password"`
	Server    string `json:"server"`
	Port      int    `json:"port"`
	Author    string `json:"author"`
	StorePath string `json:"storepath"`

	SpoolPath     string `json:"spool_path"`
	CheckInterval int    `json:"check_interval_minutes"`
	DaemonEnabled bool   `json:"daemon_enabled"`
	LogPath       string `json:"log_path"`
	PidFile       string `json:"pid_file"`

	ListenAddr  string `json:"listen_addr"`
	MailTimeout int    `json:"mail_timeout_seconds"`
}

// envOverrides are read from the process environment (and .env) and win over the file
type envOverrides struct {
	Receiver   string `envconfig:"KINDLE_EMAIL"`
	Sender     string `envconfig:"SENDER_EMAIL"`
	Password   string `envconfig:"APP_PASSWORD"`
	Server     string `envconfig:"SMTP_SERVER"`
	Port       int    `envconfig:"SMTP_PORT"`
	Author     string `envconfig:"KINDLE_AUTHOR"`
	ListenAddr string `envconfig:"LISTEN_ADDR"`
}

const DefaultTimeout = 120
const DefaultServer = "smtp.protonmail.ch"
const DefaultPort = 587
const DefaultListenAddr = ":8080"
const XdgConfigHome = "XDG_CONFIG_HOME"
const ConfigFolderName = "smtp-to-kindle"

func DefaultConfigPath() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("couldn't get current user: %w", err)
	}
	xdgConfigHome := os.Getenv(XdgConfigHome)
	var configFolder string
	if len(xdgConfigHome) == 0 {
		configFolder = path.Join(user.HomeDir, ".config")
		configFolder = path.Join(configFolder, ConfigFolderName)
	} else {
		configFolder = path.Join(xdgConfigHome, ConfigFolderName)
	}
	if err := os.MkdirAll(configFolder, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return path.Join(configFolder, "KindleConfig.json"), nil
}

// SetDaemonDefaults puts the log, pid and state files next to the config file
func SetDaemonDefaults(c *config, configPath string) {
	configDir := path.Dir(configPath)
	if c.LogPath == "" {
		c.LogPath = path.Join(configDir, "smtp-to-kindle.log")
	}
	if c.PidFile == "" {
		c.PidFile = path.Join(configDir, "smtp-to-kindle.pid")
	}
}

func NewConfig() *config {
	config := config{}
	config.Server = DefaultServer
	config.Port = DefaultPort

	config.CheckInterval = 15
	config.DaemonEnabled = false
	config.SpoolPath = ""
	config.LogPath = ""
	config.PidFile = ""
	config.ListenAddr = DefaultListenAddr
	config.MailTimeout = DefaultTimeout
	return &config
}

func CreateConfig() (*config, error) {
	util.CyanBold.Println("CONFIGURE SMTP-TO-KINDLE")

	configuration := NewConfig()
	util.Cyan.Printf("Email of your device and press enter (eg. ryan@kindle.com) : ")
	configuration.Receiver = util.ScanlineTrim()
	util.Cyan.Printf("Email that'll be used to send documents to device (must be approved for your Kindle) : ")
	configuration.Sender = util.ScanlineTrim()

	util.Cyan.Printf("Enter SMTP Server Address (empty for %s) : ", DefaultServer)
	if server := util.ScanlineTrim(); server != "" {
		configuration.Server = server
	}
	for {
		util.Cyan.Printf("Enter SMTP port, STARTTLS is used (empty for %d) : ", DefaultPort)
		portStr := util.ScanlineTrim()
		if portStr == "" {
			break
		}
		portInt, err := strconv.Atoi(portStr)
		if err != nil || portInt < 1 || portInt > 65535 {
			util.Red.Println("Entered port number is either invalid or not an integer, please try again")
			continue
		}
		configuration.Port = portInt
		break
	}

	util.Cyan.Printf("Enter password or app token for Sender %s (password remains encrypted in your machine) : ", configuration.Sender)
	configuration.Password = util.ScanlineTrim()

	util.Cyan.Printf("Default author for books (empty is ok) :")
	configuration.Author = util.ScanlineTrim()

	util.Cyan.Printf("File path to store built documents on your computer (empty is ok) :")
	configuration.StorePath = util.ScanlineTrim()

	util.CyanBold.Println("\nDAEMON CONFIGURATION")
	util.Cyan.Printf("Spool folder to watch for HTML files (empty to disable daemon) :")
	configuration.SpoolPath = util.ScanlineTrim()
	if configuration.SpoolPath != "" {
		configuration.DaemonEnabled = true
		util.Cyan.Printf("Check interval in minutes (default 15) :")
		intervalStr := util.ScanlineTrim()
		if intervalStr != "" {
			if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
				configuration.CheckInterval = interval
			}
		}
	}

	return configuration, nil
}

func LoadProvider(filename string) (ConfigProvider, error) {
	cfg, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return NewConfigProvider(&cfg), nil
}

// Load reads the config file if it exists, falls back to defaults otherwise,
// then applies environment overrides
func Load(filename string) (config, error) {
	c, err := LoadFile(filename)
	if err != nil {
		return config{}, err
	}
	if err := ApplyEnv(&c); err != nil {
		return config{}, err
	}
	return c, nil
}

// LoadFile reads only the config file and defaults. Use it before Save so
// environment overrides never end up on disk.
func LoadFile(filename string) (config, error) {
	c := *NewConfig()
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		util.Magenta.Printf("No configuration at %s, using defaults and environment\n", filename)
	case err != nil:
		return config{}, util.Wrap(util.ConfigError, "reading config", err)
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return config{}, util.Wrap(util.ConfigError, "parsing config", err)
		}
		decryptedPass, err := Decrypt(c.Sender, c.Password)
		if err != nil {
			return config{}, util.Wrap(util.ConfigError, "decrypting password", err)
		}
		c.Password = decryptedPass
	}

	if c.MailTimeout <= 0 {
		c.MailTimeout = DefaultTimeout
	}
	SetDaemonDefaults(&c, filename)
	return c, nil
}

// ApplyEnv loads a .env file from the working directory when present and
// overrides c with any variables that are set
func ApplyEnv(c *config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return util.Wrap(util.ConfigError, "loading .env", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return util.Wrap(util.ConfigError, "processing environment", err)
	}

	if env.Receiver != "" {
		c.Receiver = env.Receiver
	}
	if env.Sender != "" {
		c.Sender = env.Sender
	}
	if env.Password != "" {
		c.Password = env.Password
	}
	if env.Server != "" {
		c.Server = env.Server
	}
	if env.Port != 0 {
		c.Port = env.Port
	}
	if env.Author != "" {
		c.Author = env.Author
	}
	if env.ListenAddr != "" {
		c.ListenAddr = env.ListenAddr
	}
	return nil
}

// Validate checks the settings a delivery cannot do without
func (c *config) Validate() error {
	if c.Receiver == "" {
		return util.Errorf(util.ConfigError, "validating config", "kindle email is not set")
	}
	if c.Sender == "" {
		return util.Errorf(util.ConfigError, "validating config", "sender email is not set")
	}
	if c.Server == "" {
		return util.Errorf(util.ConfigError, "validating config", "smtp server is not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return util.Errorf(util.ConfigError, "validating config", "smtp port %d must be between 1 and 65535", c.Port)
	}
	if c.DaemonEnabled && c.CheckInterval <= 0 {
		return util.Errorf(util.ConfigError, "validating config", "check interval must be positive")
	}
	return nil
}

// Save writes the config with the password encrypted
func Save(c config, filename string) error {
	encryptedPass, err := Encrypt(c.Sender, c.Password)
	if err != nil {
		return util.Wrap(util.ConfigError, "encrypting password", err)
	}
	c.Password = encryptedPass

	data, err := json.MarshalIndent(c, "", "	")
	if err != nil {
		util.Red.Println("Error parsing configuration for writing")
		return err
	}
	return os.WriteFile(filename, data, 0600)
}
