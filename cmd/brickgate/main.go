// Package main is the entry point for brickgate.
//
//	@title						Brickgate - Brick Payment Gateway Adapter
//	@version					1.0
//	@description				Tokenized-card payment gateway adapter for Brick subscriptions and one-time charges.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				API key for platform authentication
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/merchantkit/brickgate/bootstrap"
	"github.com/merchantkit/brickgate/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "brickgate.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	hotReload := flag.Bool("hot-reload", true, "Enable hot reload of configuration")
	flag.Parse()

	if *showVersion {
		fmt.Printf("brickgate %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if *validate {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration valid\n")
		fmt.Printf("  Brick API: %s\n", cfg.Brick.BaseURL)
		fmt.Printf("  Store: %s\n", cfg.Store.Driver)
		fmt.Printf("  Return URL: %s\n", cfg.Site.ReturnURL)
		os.Exit(0)
	}

	var app *bootstrap.App
	var err error
	if *hotReload {
		app, err = bootstrap.NewWithHotReload(*configPath)
	} else {
		app, err = bootstrap.New(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
