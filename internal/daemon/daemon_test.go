package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/kindle"
	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	requests  []kindle.Request
	fail      map[string]bool
	onDeliver func()
}

func (f *fakeDeliverer) Deliver(ctx context.Context, req kindle.Request) kindle.Result {
	f.requests = append(f.requests, req)
	if f.onDeliver != nil {
		f.onDeliver()
	}
	if f.fail[req.Title] {
		return kindle.Result{Message: "Failed to send to Kindle: boom"}
	}
	return kindle.Result{OK: true, Message: "Successfully sent '" + req.Filename() + "' to " + req.KindleEmail}
}

func testConfig(t *testing.T) (config.ConfigProvider, string) {
	t.Helper()
	root := t.TempDir()
	spool := filepath.Join(root, "spool")
	require.NoError(t, os.MkdirAll(spool, 0755))

	c := config.NewConfig()
	c.Receiver = "x@kindle.com"
	c.Sender = "me@proton.me"
	c.Password = "token"
	c.Author = "Configured Author"
	c.SpoolPath = spool
	c.DaemonEnabled = true
	c.PidFile = filepath.Join(root, "smtp-to-kindle.pid")
	return config.NewConfigProvider(c), spool
}

func writeSpoolFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestRunOnce_DeliversNewDocumentsOnce(t *testing.T) {
	cfg, spool := testConfig(t)
	writeSpoolFile(t, spool, "digest.html", "<html><head><title>Weekly Digest</title></head><body><p>Hello</p></body></html>")
	writeSpoolFile(t, spool, "notes.htm", "<p>Notes</p>")
	writeSpoolFile(t, spool, "ignored.txt", "not html")

	deliverer := &fakeDeliverer{}
	d, err := NewDaemon(cfg, deliverer, logger.Nop())
	require.NoError(t, err)

	delivered, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, delivered, 2)
	require.Len(t, deliverer.requests, 2)

	byTitle := make(map[string]kindle.Request)
	for _, r := range deliverer.requests {
		byTitle[r.Title] = r
	}
	digest := byTitle["Weekly Digest"]
	assert.Equal(t, "<p>Hello</p>", digest.Content)
	assert.Equal(t, "Configured Author", digest.Author)
	assert.Equal(t, "x@kindle.com", digest.KindleEmail)
	assert.Equal(t, "587", digest.SMTPPort)
	assert.Equal(t, "smtp.protonmail.ch", digest.SMTPServer)
	assert.Equal(t, "<p>Notes</p>", byTitle["notes"].Content)

	delivered, err = d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, delivered)
	assert.Len(t, deliverer.requests, 2)
}

func TestRunOnce_StateSurvivesRestart(t *testing.T) {
	cfg, spool := testConfig(t)
	writeSpoolFile(t, spool, "digest.html", "<p>Hello</p>")

	first := &fakeDeliverer{}
	d, err := NewDaemon(cfg, first, logger.Nop())
	require.NoError(t, err)
	_, err = d.RunOnce(context.Background())
	require.NoError(t, err)

	second := &fakeDeliverer{}
	restarted, err := NewDaemon(cfg, second, logger.Nop())
	require.NoError(t, err)
	delivered, err := restarted.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Empty(t, delivered)
	assert.Empty(t, second.requests)
}

func TestRunOnce_FailedDocumentsAreRetried(t *testing.T) {
	cfg, spool := testConfig(t)
	writeSpoolFile(t, spool, "digest.html", "<p>Hello</p>")

	deliverer := &fakeDeliverer{fail: map[string]bool{"digest": true}}
	d, err := NewDaemon(cfg, deliverer, logger.Nop())
	require.NoError(t, err)

	delivered, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, delivered)

	deliverer.fail = nil
	delivered, err = d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, delivered, 1)
}

func TestRunOnce_MissingSpool(t *testing.T) {
	cfg, spool := testConfig(t)
	require.NoError(t, os.RemoveAll(spool))

	d, err := NewDaemon(cfg, &fakeDeliverer{}, logger.Nop())
	require.NoError(t, err)

	_, err = d.RunOnce(context.Background())
	assert.ErrorContains(t, err, "spool path does not exist")
}

func TestStatus(t *testing.T) {
	cfg, _ := testConfig(t)
	d, err := NewDaemon(cfg, &fakeDeliverer{}, logger.Nop())
	require.NoError(t, err)

	assert.Error(t, d.Status())

	require.NoError(t, os.WriteFile(cfg.GetPidFile(), []byte(strconv.Itoa(os.Getpid())), 0644))
	assert.NoError(t, d.Status())

	d.cleanup()
	_, err = os.Stat(cfg.GetPidFile())
	assert.True(t, os.IsNotExist(err))
}

func TestValidateConfiguration(t *testing.T) {
	cfg, _ := testConfig(t)
	d, err := NewDaemon(cfg, &fakeDeliverer{}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, d.validateConfiguration())

	c := config.NewConfig()
	c.PidFile = filepath.Join(t.TempDir(), "x.pid")
	disabled, err := NewDaemon(config.NewConfigProvider(c), &fakeDeliverer{}, logger.Nop())
	require.NoError(t, err)
	assert.ErrorContains(t, disabled.validateConfiguration(), "not enabled")
}

func TestStart_RemovesPidFileOnShutdown(t *testing.T) {
	cfg, spool := testConfig(t)
	writeSpoolFile(t, spool, "digest.html", "<p>Hello</p>")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	deliverer := &fakeDeliverer{onDeliver: cancel}
	d, err := NewDaemon(cfg, deliverer, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, d.Start(ctx))

	assert.Len(t, deliverer.requests, 1)
	_, err = os.Stat(cfg.GetPidFile())
	assert.True(t, os.IsNotExist(err))
	assert.Len(t, d.processor.State().Documents, 1)
}

func TestStart_RefusesWhenAlreadyRunning(t *testing.T) {
	cfg, _ := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.GetPidFile(), []byte(strconv.Itoa(os.Getpid())), 0644))

	d, err := NewDaemon(cfg, &fakeDeliverer{}, logger.Nop())
	require.NoError(t, err)

	err = d.Start(context.Background())
	assert.ErrorContains(t, err, "already running")
	_, statErr := os.Stat(cfg.GetPidFile())
	assert.NoError(t, statErr)
}
