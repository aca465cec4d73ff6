package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mattjoyce/voicegw/internal/artifact"
	"github.com/mattjoyce/voicegw/internal/config"
	"github.com/mattjoyce/voicegw/internal/log"
	"github.com/mattjoyce/voicegw/internal/remote"
	"github.com/mattjoyce/voicegw/internal/submit"
	"github.com/mattjoyce/voicegw/internal/webhook"
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
	case "serve":
		os.Exit(runServe(args))
	case "upload":
		os.Exit(runUpload(args))
	case "version":
		fmt.Printf("voicegw version %s\n", version)
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
	fmt.Print(`voicegw - Webhook bridge between an audio-intelligence service and local storage

Usage:
  voicegw <command> [flags]

Commands:
  serve                     Run the callback server in foreground
  upload <url> [--tag t]    Submit audio for processing from a source URL
  version                   Show version information
  help                      Show this help message

Flags:
  --config <path>           Config file (default: config.yaml)

The serve command registers the completion webhook on startup, then accepts
signed callbacks: finished transloads trigger classification, finished
classifications stream their transcript to the storage directory.
`)
}

// tagList collects repeatable --tag flags.
type tagList []string

func (t *tagList) String() string { return strings.Join(*t, ",") }

func (t *tagList) Set(value string) error {
	*t = append(*t, value)
	return nil
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := remote.NewHTTPClient(cfg.Remote)

	registrar := webhook.NewRegistrar(client, cfg.Webhook.Secret)
	sub, err := registrar.EnsureWebhook(ctx, cfg.Webhook.CallbackURL)
	if err != nil {
		logger.Error("webhook registration failed", "error", err)
		return 1
	}
	logger.Info("callback delivery ensured", "subscription_id", sub.ID)

	serverCfg, err := webhook.FromGlobalConfig(cfg)
	if err != nil {
		logger.Error("invalid webhook configuration", "error", err)
		return 1
	}

	initiator := submit.NewInitiator(client, cfg.Classification)
	downloader := artifact.NewDownloader(client, cfg.Storage)
	dispatcher := webhook.NewDispatcher(initiator, downloader)
	server := webhook.NewServer(serverCfg, dispatcher)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exited", "error", err)
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}

func runUpload(args []string) int {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	var tags tagList
	fs.Var(&tags, "tag", "tag to attach to the upload (repeatable)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: upload requires a source URL")
		return 1
	}
	sourceURL := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)

	client := remote.NewHTTPClient(cfg.Remote)
	initiator := submit.NewInitiator(client, cfg.Classification)

	result, err := initiator.Upload(context.Background(), sourceURL, tags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	out, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}
