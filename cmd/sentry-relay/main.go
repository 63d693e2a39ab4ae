package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkbright/sentry-relay/internal/config"
	"github.com/mkbright/sentry-relay/internal/log"
	"github.com/mkbright/sentry-relay/internal/relay"
	"github.com/mkbright/sentry-relay/internal/sentry"
	"github.com/mkbright/sentry-relay/internal/transport"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "version":
		fmt.Printf("sentry-relay version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`sentry-relay - Relays signed Sentry webhook events to chat channels

Usage:
  sentry-relay <command> [flags]

Commands:
  start             Start the relay service in foreground
  config check      Validate configuration syntax, rules, and integrity
  config lock       Authorize current config state (update integrity hash)
  version           Show version information
  help              Show this help message

Flags:
  --config PATH     Path to config.yaml or its directory. When omitted,
                    standard locations are checked ($SENTRY_RELAY_CONFIG,
                    ~/.config/sentry-relay, /etc/sentry-relay, ./config.yaml)
`)
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sentry-relay config <check|lock> [flags]")
		return 1
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		return runConfigCheck(actionArgs)
	case "lock":
		return runConfigLock(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func resolveConfigPath(fs *flag.FlagSet, args []string) (string, error) {
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	if *configPath != "" {
		return *configPath, nil
	}

	discovered, err := config.DiscoverConfigPath()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", discovered)
	return discovered, nil
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("config check", flag.ExitOnError)
	path, err := resolveConfigPath(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve config: %v\n", err)
		return 1
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check failed: %v\n", err)
		return 1
	}

	fmt.Printf("Config OK: %d token rule(s), %d ignore pattern(s), relaying %s/{channel}\n",
		len(cfg.Relay.Tokens), len(cfg.Relay.Ignore), cfg.Relay.Path)
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("config lock", flag.ExitOnError)
	path, err := resolveConfigPath(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve config: %v\n", err)
		return 1
	}

	checksumPath, err := config.LockConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config lock failed: %v\n", err)
		return 1
	}

	fmt.Printf("Wrote %s\n", checksumPath)
	return 0
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	path, err := resolveConfigPath(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve config: %v\n", err)
		return 1
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("sentry-relay starting", "version", version, "config", path)

	maxBodySize, err := config.ParseMaxBodySize(cfg.Relay.MaxBodySize)
	if err != nil {
		logger.Error("invalid max_body_size", "value", cfg.Relay.MaxBodySize, "error", err)
		return 1
	}

	router, err := relay.NewRouter(cfg.Relay.Tokens, cfg.Relay.Ignore)
	if err != nil {
		logger.Error("failed to compile routing rules", "error", err)
		return 1
	}

	issues := sentry.NewClient(cfg.Sentry.APIBase, cfg.Sentry.Timeout.Std())
	messenger := transport.NewGateway(cfg.Gateway.BaseURL, cfg.Gateway.AuthToken, cfg.Gateway.Timeout.Std())

	server := relay.New(relay.Config{
		Listen:          cfg.Listen,
		Path:            cfg.Relay.Path,
		Secret:          cfg.Relay.Secret,
		SignatureHeader: cfg.Relay.SignatureHeader,
		MaxBodySize:     maxBodySize,
	}, router, issues, messenger, log.WithComponent("relay"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("relay server exited", "error", err)
		return 1
	}

	logger.Info("sentry-relay stopped")
	return 0
}
