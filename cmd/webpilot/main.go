// Command webpilot automates a chat-style web document assistant: it
// uploads a document as a source, inserts an analysis prompt and prints the
// assistant's stabilised response to stdout.
//
// Usage:
//
//	webpilot -config webpilot.yaml -doc transcript.txt -prompt prompt.txt
//	webpilot -url https://assistant.example.com/notebook/x -doc t.txt -prompt p.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fussbanana/webpilot"
)

func main() {
	configPath := flag.String("config", "", "path to webpilot.yaml config file")
	pageURL := flag.String("url", "", "assistant page URL (overrides config)")
	docPath := flag.String("doc", "", "file with the document text to upload")
	promptPath := flag.String("prompt", "", "file with the prompt text to send")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *pageURL, *docPath, *promptPath); err != nil {
		logger.Error("webpilot: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, pageURL, docPath, promptPath string) error {
	cfg := &webpilot.Config{}
	if configPath != "" {
		var err error
		if cfg, err = webpilot.LoadConfigFile(configPath); err != nil {
			return err
		}
	}
	if pageURL != "" {
		cfg.URL = pageURL
	}
	if docPath == "" || promptPath == "" {
		fmt.Fprintln(os.Stderr, "usage: webpilot [-config <file>] [-url <url>] -doc <file> -prompt <file>")
		return fmt.Errorf("both -doc and -prompt are required")
	}

	doc, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	prompt, err := os.ReadFile(promptPath)
	if err != nil {
		return fmt.Errorf("read prompt: %w", err)
	}

	pilot, err := webpilot.New(cfg, logger)
	if err != nil {
		return err
	}

	extracted := make(chan string, 1)
	failed := make(chan string, 1)
	pilot.OnSequenceFinished = func(name string) {
		logger.Info("sequence finished", "sequence", name)
	}
	pilot.OnSequenceFailed = func(message string) {
		select {
		case failed <- message:
		default:
		}
	}
	pilot.OnTextExtracted = func(result string) {
		select {
		case extracted <- result:
		default:
		}
	}

	if err := pilot.Start(ctx); err != nil {
		return err
	}
	defer pilot.Close()

	if err := pilot.UploadDocument(string(doc), string(prompt)); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case message := <-failed:
		return fmt.Errorf("automation failed: %s", message)
	case result := <-extracted:
		fmt.Println(result)
		return nil
	}
}
