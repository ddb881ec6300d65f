package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJson_Overlay(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	path := writeConfigFile(t, `{
		"endpoint_addr": ":7070",
		"store_driver": "postgres",
		"database_dsn": "postgres://u:p@db:5432/filehub"
	}`)
	os.Args = []string{"test", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":7070", c.EndpointAddr)
	assert.Equal(t, "postgres", c.StoreDriver)
	assert.Equal(t, "postgres://u:p@db:5432/filehub", c.DatabaseDSN)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "filehub.db", c.BoltPath)
}

func TestParseJson_NoFileFlag(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"test"}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8080", c.EndpointAddr)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	path := writeConfigFile(t, `{not json`)
	os.Args = []string{"test", "-c", path}

	var c Config
	c.LoadDefaults()
	assert.Panics(t, func() { parseJson(&c) })
}
