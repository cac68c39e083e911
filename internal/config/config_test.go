package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"KINDLE_EMAIL", "SENDER_EMAIL", "APP_PASSWORD", "SMTP_SERVER", "SMTP_PORT", "KINDLE_AUTHOR", "LISTEN_ADDR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// keep godotenv away from any .env in the package directory
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestNewConfig_Defaults(t *testing.T) {
	c := NewConfig()

	assert.Equal(t, "smtp.protonmail.ch", c.Server)
	assert.Equal(t, 587, c.Port)
	assert.Equal(t, 15, c.CheckInterval)
	assert.Equal(t, DefaultListenAddr, c.ListenAddr)
	assert.Equal(t, DefaultTimeout, c.MailTimeout)
	assert.False(t, c.DaemonEnabled)
}

func TestEncryptDecrypt(t *testing.T) {
	sealed, err := Encrypt("me@proton.me", "app-token")
	require.NoError(t, err)
	assert.NotEqual(t, "app-token", sealed)

	plain, err := Decrypt("me@proton.me", sealed)
	require.NoError(t, err)
	assert.Equal(t, "app-token", plain)

	_, err = Decrypt("someone@else.com", sealed)
	assert.Error(t, err)
}

func TestEncrypt_EmptyPassword(t *testing.T) {
	sealed, err := Encrypt("me@proton.me", "")
	require.NoError(t, err)
	assert.Empty(t, sealed)
}

func TestSaveLoad_RoundTripEncryptsPassword(t *testing.T) {
	clearEnv(t)
	filename := filepath.Join(t.TempDir(), "KindleConfig.json")

	c := NewConfig()
	c.Sender = "me@proton.me"
	c.Receiver = "x@kindle.com"
	c.Password = "secret"
	require.NoError(t, Save(*c, filename))

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	var onDisk config
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.NotEqual(t, "secret", onDisk.Password)

	loaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.Password)
	assert.Equal(t, "x@kindle.com", loaded.Receiver)
	assert.Equal(t, filepath.Join(filepath.Dir(filename), "smtp-to-kindle.pid"), loaded.PidFile)
	assert.Equal(t, filepath.Join(filepath.Dir(filename), "smtp-to-kindle.log"), loaded.LogPath)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("KINDLE_EMAIL", "x@kindle.com")
	t.Setenv("SENDER_EMAIL", "me@proton.me")
	t.Setenv("APP_PASSWORD", "token")
	t.Setenv("SMTP_PORT", "2525")

	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "x@kindle.com", loaded.Receiver)
	assert.Equal(t, "me@proton.me", loaded.Sender)
	assert.Equal(t, "token", loaded.Password)
	assert.Equal(t, DefaultServer, loaded.Server)
	assert.Equal(t, 2525, loaded.Port)
}

func TestLoadFile_IgnoresEnvironment(t *testing.T) {
	clearEnv(t)
	filename := filepath.Join(t.TempDir(), "KindleConfig.json")

	c := NewConfig()
	c.Sender = "me@proton.me"
	c.Receiver = "x@kindle.com"
	c.Password = "secret"
	require.NoError(t, Save(*c, filename))

	t.Setenv("APP_PASSWORD", "from-env")
	t.Setenv("KINDLE_EMAIL", "env@kindle.com")

	merged, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "from-env", merged.Password)
	assert.Equal(t, "env@kindle.com", merged.Receiver)

	fileOnly, err := LoadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "secret", fileOnly.Password)
	assert.Equal(t, "x@kindle.com", fileOnly.Receiver)

	// updating the file keeps environment values out of it
	fileOnly.CheckInterval = 30
	require.NoError(t, Save(fileOnly, filename))
	os.Unsetenv("APP_PASSWORD")
	os.Unsetenv("KINDLE_EMAIL")

	reloaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "secret", reloaded.Password)
	assert.Equal(t, "x@kindle.com", reloaded.Receiver)
	assert.Equal(t, 30, reloaded.CheckInterval)
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	filename := filepath.Join(t.TempDir(), "KindleConfig.json")
	require.NoError(t, os.WriteFile(filename, []byte("{not json"), 0600))

	_, err := Load(filename)
	require.Error(t, err)
	assert.Equal(t, util.ConfigError, util.ContextOf(err))
}

func TestValidate(t *testing.T) {
	c := NewConfig()
	c.Sender = "me@proton.me"
	c.Receiver = "x@kindle.com"
	assert.NoError(t, c.Validate())

	c.Port = 70000
	assert.ErrorContains(t, c.Validate(), "smtp port 70000")

	c.Port = 587
	c.Receiver = ""
	assert.ErrorContains(t, c.Validate(), "kindle email is not set")
}

func TestProvider(t *testing.T) {
	c := NewConfig()
	c.MailTimeout = 30
	c.Author = "Bot"
	p := NewConfigProvider(c)

	assert.Equal(t, 30*time.Second, p.GetMailTimeout())
	assert.Equal(t, "Bot", p.GetAuthor())
	assert.Equal(t, DefaultServer, p.GetServer())
}
