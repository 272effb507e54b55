// Command client is the interactive gophgate chat client.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophgate/internal/client/cli"
	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
	"github.com/dmitrijs2005/gophgate/internal/client/session"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	pc, err := client.NewPresenceClient(cfg.PresenceAddr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer pc.Close()

	connect := cli.ConnectorFunc(func(ctx context.Context, token string) (cli.EventStream, error) {
		return pc.Connect(ctx, token)
	})

	app := cli.NewApp(cfg, client.NewAuthClient(cfg.ServerURL, cfg.RequestTimeout), connect, os.Stdin, os.Stdout)

	if cfg.SessionFile != "" {
		store, err := session.Open(ctx, cfg.SessionFile)
		if err != nil {
			log.Printf("session cache disabled: %v", err)
		} else {
			defer store.Close()
			app.WithSessionCache(store)
		}
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
