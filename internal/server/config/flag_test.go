package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"test",
		"-a", ":9090",
		"-s", "bolt",
		"-b", "/tmp/test.db",
		"-k", "root-pw",
		"-unrelated", "ignored",
	}

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, ":9090", c.EndpointAddr)
	assert.Equal(t, "bolt", c.StoreDriver)
	assert.Equal(t, "/tmp/test.db", c.BoltPath)
	assert.Equal(t, "root-pw", c.AdminCredential)
	// Untouched flags keep their defaults.
	assert.Equal(t, "mongodb://127.0.0.1:27017", c.MongoURI)
}

func TestParseFlags_NoFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"test"}

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, "memory", c.StoreDriver)
}
