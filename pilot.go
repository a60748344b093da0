// Package webpilot drives a chat-style web document assistant by injecting
// probe scripts into its page and reacting to their asynchronous callbacks.
// The Pilot is the per-window orchestrator: it owns the browser tab, the
// bridge and the sequence controller, and wires the built-in
// upload → prompt → extract workflow.
package webpilot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/fussbanana/webpilot/automation"
	"github.com/fussbanana/webpilot/bridge"
	"github.com/fussbanana/webpilot/internal/browser"
	"github.com/fussbanana/webpilot/internal/config"
	"github.com/fussbanana/webpilot/selector"
)

// Config re-exports. Loaded from YAML, see LoadConfigFile.
type (
	Config         = config.Config
	BrowserConfig  = config.BrowserConfig
	TimeoutsConfig = config.TimeoutsConfig
)

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// Sequence names of the built-in workflow. Chaining between them is a
// static dependency: upload starts prompt insertion, prompt insertion
// starts response extraction.
const (
	SeqUploadDocument  = "upload_document"
	SeqInsertPrompt    = "insert_prompt"
	SeqExtractResponse = "extract_response"
)

// Pilot automates one assistant window. Create one per window; the
// selector catalog and probe runtime underneath are shared and read-only.
type Pilot struct {
	cfg    *Config
	cat    selector.Catalog
	logger *slog.Logger

	mgr  *browser.Manager
	page *rod.Page
	br   *bridge.Bridge
	ctrl *automation.Controller

	// Host-facing callbacks. Set before Start; nil callbacks are skipped.
	OnSequenceFinished func(name string)
	OnSequenceFailed   func(message string)
	OnTextExtracted    func(result string)
}

// New creates a Pilot from configuration. Call Start to open the window.
func New(cfg *Config, logger *slog.Logger) (*Pilot, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("webpilot: configuration with a url is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()

	cat := selector.Default()
	if cfg.Selectors != "" {
		var err error
		if cat, err = selector.Load(cfg.Selectors); err != nil {
			return nil, fmt.Errorf("webpilot: selector catalog: %w", err)
		}
	}

	return &Pilot{
		cfg:    cfg,
		cat:    cat,
		logger: logger,
		mgr: browser.NewManager(browser.Config{
			RemoteURL: cfg.Browser.Remote,
			Headless:  cfg.Browser.Headless,
			Logger:    logger,
		}),
	}, nil
}

// Start launches the browser, opens the assistant page and initialises the
// bridge. The controller becomes usable as soon as the remote side confirms
// the handshake; sequences started earlier are deferred until then.
func (p *Pilot) Start(ctx context.Context) error {
	if err := p.mgr.Start(ctx); err != nil {
		return fmt.Errorf("webpilot: %w", err)
	}

	page, err := p.mgr.OpenPage(ctx, p.cfg.URL)
	if err != nil {
		return fmt.Errorf("webpilot: %w", err)
	}
	p.page = page

	p.br = bridge.New(page, p.logger)
	p.ctrl = automation.New(automation.Config{
		Runner: p.br,
		Logger: p.logger,
		OnFinished: func(name string) {
			if p.OnSequenceFinished != nil {
				p.OnSequenceFinished(name)
			}
		},
		OnFailed: func(message string) {
			if p.OnSequenceFailed != nil {
				p.OnSequenceFailed(message)
			}
		},
		OnExtracted: func(result string) {
			if p.OnTextExtracted != nil {
				p.OnTextExtracted(result)
			}
		},
	})
	p.br.OnReady(p.ctrl.BridgeReady)
	p.br.OnOutcome(p.ctrl.HandleOutcome)

	if err := p.br.Init(ctx); err != nil {
		return fmt.Errorf("webpilot: %w", err)
	}

	p.logger.Info("webpilot: window started", "url", p.cfg.URL)
	return nil
}

// UploadDocument runs the full workflow: upload docText as a source, then
// (chained) insert promptText into the chat and send it, then (chained)
// extract the stabilised response. The result arrives via OnTextExtracted;
// any failure via OnSequenceFailed.
func (p *Pilot) UploadDocument(docText, promptText string) error {
	if p.ctrl == nil {
		return fmt.Errorf("webpilot: not started")
	}

	p.ctrl.Chain(SeqUploadDocument, func() (*automation.Sequence, error) {
		return buildPromptSequence(p.cat, promptText, p.cfg.Timeouts), nil
	})
	p.ctrl.Chain(SeqInsertPrompt, func() (*automation.Sequence, error) {
		return buildExtractSequence(p.cat, p.cfg.Timeouts), nil
	})

	return p.ctrl.Start(buildUploadSequence(p.cat, docText, p.cfg.Timeouts))
}

// InsertPrompt inserts and sends promptText without uploading a source
// first, chained into response extraction.
func (p *Pilot) InsertPrompt(promptText string) error {
	if p.ctrl == nil {
		return fmt.Errorf("webpilot: not started")
	}
	p.ctrl.Chain(SeqInsertPrompt, func() (*automation.Sequence, error) {
		return buildExtractSequence(p.cat, p.cfg.Timeouts), nil
	})
	return p.ctrl.Start(buildPromptSequence(p.cat, promptText, p.cfg.Timeouts))
}

// StartSequence runs an ad-hoc named sequence of steps.
func (p *Pilot) StartSequence(name string, steps ...automation.Step) error {
	if p.ctrl == nil {
		return fmt.Errorf("webpilot: not started")
	}
	return p.ctrl.StartSequence(name, steps...)
}

// Catalog returns the active selector catalog.
func (p *Pilot) Catalog() selector.Catalog { return p.cat }

// Close cancels outstanding remote wait conditions, then shuts the tab and
// the browser down.
func (p *Pilot) Close() {
	if p.br != nil {
		p.br.Close()
	}
	if p.page != nil {
		p.page.Close()
	}
	p.mgr.Close()
	p.logger.Info("webpilot: window closed")
}
