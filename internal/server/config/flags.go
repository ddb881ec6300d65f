package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/filehub/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   record store driver (memory, postgres, bolt, mongo)
//	-d string   PostgreSQL DSN
//	-b string   Bolt database file path
//	-m string   MongoDB URI
//	-n string   MongoDB database name
//	-k string   kernel superuser credential
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-b", "-m", "-n", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.StoreDriver, "s", config.StoreDriver, "record store driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BoltPath, "b", config.BoltPath, "bolt database file")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongodb URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "mongodb database name")
	fs.StringVar(&config.AdminCredential, "k", config.AdminCredential, "kernel superuser credential")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
