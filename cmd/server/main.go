// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/server"
	"github.com/pagesnap/pagesnap/internal/utils"
)

// Version information (set by build flags)
var version = "dev"

func main() {
	configFile := flag.String("config", "", "path to YAML configuration file")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	var (
		cfg *config.ServiceConfig
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFromFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg = config.DefaultConfig(config.ProfileHardened)
	}
	if *addr != "" {
		cfg.Server.ListenAddress = *addr
	}

	logger := utils.NewLoggerWithLevel(utils.ParseLevel(cfg.LogLevel))

	srv, cleanup, err := server.Assemble(cfg, version, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
