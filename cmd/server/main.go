package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/filehub/internal/server"
	"github.com/dmitrijs2005/filehub/internal/server/config"
	"github.com/dmitrijs2005/filehub/internal/shared"
)

func main() {

	ctx := context.Background()

	cfg := config.LoadConfig()

	// Without a configured admin credential the kernel account has no
	// password. Offer an interactive prompt when one is possible.
	if cfg.AdminCredential == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("kernel credential (empty to leave unset): ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			log.Printf("reading credential: %v", err)
			return
		}
		cfg.AdminCredential = string(pw)
		shared.WipeByteArray(pw)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
