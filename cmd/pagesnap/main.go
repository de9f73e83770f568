// cmd/pagesnap/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pagesnap/pagesnap/internal/capture"
	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/server"
	"github.com/pagesnap/pagesnap/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "serve":
		runServe(os.Args[2:])

	case "capture":
		runCapture(os.Args[2:])

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: pagesnap validate <config.yaml>\n")
			os.Exit(1)
		}
		validateConfig(os.Args[2])

	case "version", "--version", "-v":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runServe starts the HTTP service, optionally from a config file.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFile := fs.String("config", "", "path to YAML configuration file")
	addr := fs.String("addr", "", "listen address override")
	profile := fs.String("profile", "", "profile override: hardened or permissive")
	fs.Parse(args)

	cfg, err := loadConfig(*configFile, *profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
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

// runCapture performs a one-shot capture to a file, using the same
// pipeline as the service.
func runCapture(args []string) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	out := fs.String("o", "screenshot.png", "output file")
	width := fs.Int("width", 0, "viewport width")
	height := fs.Int("height", 0, "viewport height")
	format := fs.String("format", "", "image format: png, jpeg, webp")
	quality := fs.Int("quality", 0, "quality 1-100 for lossy formats")
	delay := fs.Int("delay", 0, "settle delay in milliseconds")
	fullPage := fs.Bool("full-page", false, "capture the entire page")
	mobile := fs.Bool("mobile", false, "emulate a mobile device")
	darkMode := fs.Bool("dark-mode", false, "prefer dark color scheme")
	selector := fs.String("selector", "", "capture only the first matching element")
	profile := fs.String("profile", "permissive", "profile: hardened or permissive")
	verbose := fs.Bool("verbose", false, "debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: target URL required\n")
		fmt.Fprintf(os.Stderr, "Usage: pagesnap capture [flags] <url>\n")
		os.Exit(1)
	}
	target := fs.Arg(0)

	cfg := config.DefaultConfig(config.Profile(*profile))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := utils.InfoLevel
	if *verbose {
		level = utils.DebugLevel
	}
	logger := utils.NewLoggerWithLevel(level)

	manager := capture.NewManager(cfg.Browser, cfg.Capture.LaunchTimeout(), logger)
	pipeline := capture.NewPipeline(capture.PipelineConfig{
		Service:  cfg,
		Sessions: manager,
		Logger:   logger,
	})

	q := url.Values{"url": {target}}
	setIfPositive(q, "width", *width)
	setIfPositive(q, "height", *height)
	setIfPositive(q, "quality", *quality)
	setIfPositive(q, "delay", *delay)
	if *format != "" {
		q.Set("format", *format)
	}
	if *fullPage {
		q.Set("fullPage", "true")
	}
	if *mobile {
		q.Set("mobile", "true")
	}
	if *darkMode {
		q.Set("darkMode", "true")
	}
	if *selector != "" {
		q.Set("selector", *selector)
	}

	result, err := pipeline.Execute(context.Background(), q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, result.Image, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("✓ Captured %s (%dx%d, %d bytes, %s) to %s\n",
		target, result.Width, result.Height, result.Size(),
		result.Elapsed.Round(10*time.Millisecond), *out)
}

// validateConfig checks a config file and reports the result.
func validateConfig(configFile string) {
	if _, err := config.LoadFromFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Configuration file '%s' is valid\n", configFile)
}

func loadConfig(configFile, profileOverride string) (*config.ServiceConfig, error) {
	var cfg *config.ServiceConfig
	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig(config.ProfileHardened)
	}

	if profileOverride != "" {
		cfg.SetProfile(config.Profile(profileOverride))
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func setIfPositive(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func printVersion() {
	fmt.Printf("pagesnap version %s\n", version)
	fmt.Printf("  build time: %s\n", buildTime)
	fmt.Printf("  git commit: %s\n", gitCommit)
}

func printUsage() {
	fmt.Println(`pagesnap - headless browser screenshot service

Usage:
  pagesnap serve [-config file.yaml] [-addr :8080] [-profile hardened|permissive]
  pagesnap capture [flags] <url>
  pagesnap validate <config.yaml>
  pagesnap version
  pagesnap help

Capture flags:
  -o file          output file (default screenshot.png)
  -width n         viewport width
  -height n        viewport height
  -format f        png, jpeg or webp
  -quality n       1-100, lossy formats only
  -delay ms        extra settle time after load
  -full-page       capture the entire page
  -mobile          emulate a mobile device
  -dark-mode       prefer dark color scheme
  -selector css    capture only the first matching element
  -profile p       hardened or permissive (default permissive)
  -verbose         debug logging`)
}
