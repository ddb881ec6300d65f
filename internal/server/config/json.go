package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filehub/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, non-empty fields are copied into the runtime
// Config.
type JsonConfig struct {
	EndpointAddr    string `json:"endpoint_addr"`
	StoreDriver     string `json:"store_driver"`
	DatabaseDSN     string `json:"database_dsn"`
	BoltPath        string `json:"bolt_path"`
	MongoURI        string `json:"mongo_uri"`
	MongoDatabase   string `json:"mongo_database"`
	AdminCredential string `json:"admin_credential"`
}

// parseJson loads configuration values from the JSON file given via the
// -c or -config command-line flags. If no file is given, nothing is loaded.
// If the file cannot be read or contains invalid JSON, the function panics.
// Fields left empty in the file keep their current (default) values.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.StoreDriver != "" {
		config.StoreDriver = c.StoreDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.BoltPath != "" {
		config.BoltPath = c.BoltPath
	}
	if c.MongoURI != "" {
		config.MongoURI = c.MongoURI
	}
	if c.MongoDatabase != "" {
		config.MongoDatabase = c.MongoDatabase
	}
	if c.AdminCredential != "" {
		config.AdminCredential = c.AdminCredential
	}
}
