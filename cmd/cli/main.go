package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/bookapi/internal/buildinfo"
	"github.com/dmitrijs2005/bookapi/internal/client/cli"
	"github.com/dmitrijs2005/bookapi/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
