// Command server runs the gophgate HTTP API and presence gateway.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/gophgate/internal/server"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("start: %v", err)
	}

	app.Run(ctx)
}
