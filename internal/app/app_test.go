package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/pricegate/internal/config"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	"github.com/dmitrijs2005/pricegate/internal/transport/sqltable"
	"github.com/dmitrijs2005/pricegate/internal/transport/yamlfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(transport string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Transport = transport
	c.LogLevel = "error"
	return c
}

func TestDefaultOpenTransport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c := testConfig(config.TransportFile)
	c.FilePath = filepath.Join(dir, "conf", "users.yaml")
	tr, err := defaultOpenTransport(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, &yamlfile.File{}, tr)

	c = testConfig(config.TransportSQLite)
	c.SQLitePath = filepath.Join(dir, "var", "users.db")
	tr, err = defaultOpenTransport(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, &sqltable.Table{}, tr)
	require.NoError(t, tr.Close())

	tr, err = defaultOpenTransport(ctx, testConfig(config.TransportMemory))
	require.NoError(t, err)
	assert.IsType(t, &directory.MemoryTransport{}, tr)

	_, err = defaultOpenTransport(ctx, testConfig("gsheet"))
	require.Error(t, err)
}

func TestNewApp_TransportError(t *testing.T) {
	orig := openTransport
	openTransport = func(context.Context, *config.Config) (directory.Transport, error) {
		return nil, errors.New("bucket not reachable")
	}
	t.Cleanup(func() { openTransport = orig })

	_, err := NewApp(context.Background(), testConfig(config.TransportS3), strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorContains(t, err, "transport init error")
}

func TestNewApp_UnknownDigest(t *testing.T) {
	c := testConfig(config.TransportMemory)
	c.Digest = "md5"
	_, err := NewApp(context.Background(), c, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestRun_SQLiteRoundTrip(t *testing.T) {
	c := testConfig(config.TransportSQLite)
	c.SQLitePath = filepath.Join(t.TempDir(), "users.db")

	script := strings.Join([]string{
		"login", "admin", "admin123",
		"adduser", "bob", "bob-pw", "Bob", "Builder", "bob@example.org", "",
		"exit",
	}, "\n") + "\n"

	var out, logs bytes.Buffer
	a, err := NewApp(context.Background(), c, strings.NewReader(script), &out, &logs)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "User bob created")

	// A second process sees the persisted row.
	out.Reset()
	a, err = NewApp(context.Background(), c, strings.NewReader("login\nbob\nbob-pw\nwhoami\nexit\n"), &out, &logs)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Welcome, Bob!")
	assert.Contains(t, out.String(), "Bob (bob), role user")
}

func TestRun_CancelledContext(t *testing.T) {
	c := testConfig(config.TransportMemory)
	c.LogLevel = "info"

	var out, logs bytes.Buffer
	a, err := NewApp(context.Background(), c, strings.NewReader(""), &out, &logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Run(ctx))
	assert.Contains(t, logs.String(), "emergency admin login is enabled")
}
