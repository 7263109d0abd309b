// Package app assembles a MindfulU session: configuration, services, the
// state store and the orchestrator that drives it. The shell, batch and HTTP
// surfaces all run on top of an App.
package app

import (
	"fmt"

	"mindfulu/internal/config"
	"mindfulu/internal/identity"
	"mindfulu/internal/logger"
	"mindfulu/internal/metrics"
	"mindfulu/internal/orchestration"
	"mindfulu/internal/services"
	"mindfulu/internal/store"
	"mindfulu/pkg/mindtypes"
)

// App is one assembled MindfulU session.
type App struct {
	Config       *config.Config
	Registry     *services.Registry
	Store        *store.Store
	Orchestrator *orchestration.Orchestrator
	Metrics      *metrics.Collector
	Clock        mindtypes.Clock

	Analysis     *services.AnalysisService
	Conversation *services.ConversationService
	Auth         *services.AuthService
	Insight      *services.InsightService
	Export       *services.ExportService
	Markdown     *services.MarkdownService

	unsubscribe []func()
}

// Option customizes how an App is assembled.
type Option func(*assembly)

type assembly struct {
	clock   mindtypes.Clock
	ids     mindtypes.IDGenerator
	metrics *metrics.Collector
}

// WithClock replaces the system clock.
func WithClock(clock mindtypes.Clock) Option {
	return func(a *assembly) {
		a.clock = clock
	}
}

// WithIDs replaces the UUID generator.
func WithIDs(ids mindtypes.IDGenerator) Option {
	return func(a *assembly) {
		a.ids = ids
	}
}

// WithMetrics shares a metrics collector instead of creating one.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *assembly) {
		a.metrics = c
	}
}

// New registers and initializes the services, creates the store and wires the
// orchestrator according to cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	asm := &assembly{
		clock: identity.SystemClock{},
		ids:   identity.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(asm)
	}
	if asm.metrics == nil {
		asm.metrics = metrics.NewCollector("")
	}

	a := &App{
		Config:       cfg,
		Registry:     services.NewRegistry(),
		Metrics:      asm.metrics,
		Clock:        asm.clock,
		Analysis:     services.NewAnalysisService(),
		Conversation: services.NewConversationService(),
		Auth:         services.NewAuthService(asm.ids),
		Insight:      services.NewInsightService(),
		Export:       services.NewExportService(cfg.ExportFormat),
		Markdown:     services.NewMarkdownService(cfg.MarkdownStyle),
	}

	for _, svc := range []mindtypes.Service{a.Analysis, a.Conversation, a.Auth, a.Insight, a.Export, a.Markdown} {
		if err := a.Registry.RegisterService(svc); err != nil {
			return nil, err
		}
	}
	if err := a.Registry.InitializeAll(); err != nil {
		return nil, err
	}

	a.Analysis.SetObserver(a.Metrics)
	a.Conversation.SetObserver(a.Metrics)

	a.Store = store.New()
	a.unsubscribe = append(a.unsubscribe,
		a.Store.Subscribe(func(action store.Action, _, next mindtypes.AppState) {
			if action == nil {
				return
			}
			a.Metrics.ObserveAction(string(action.Type()))
			logger.ActionDispatched(string(action.Type()), len(next.JournalEntries), len(next.ChatHistory))
		}),
		a.Store.Subscribe(store.TraceListener(logger.NewStyledLogger("Trace"))),
	)

	orch, err := orchestration.New(a.Store, orchestration.Options{
		Analysis:     a.Analysis,
		Conversation: a.Conversation,
		Auth:         a.Auth,
		Clock:        asm.clock,
		IDs:          asm.ids,
		Delays: orchestration.Delays{
			Chat:    cfg.Delays.Chat,
			Journal: cfg.Delays.Journal,
			SignIn:  cfg.Delays.SignIn,
		},
		Metrics: a.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	a.Orchestrator = orch

	logger.Debug("MindfulU assembled", "services", len(a.Registry.GetAllServices()), "test_mode", cfg.TestMode)
	return a, nil
}

// Close cancels outstanding interactions and detaches store listeners.
func (a *App) Close() {
	a.Orchestrator.Close()
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil
}

// Summary computes the insight summary of the current state.
func (a *App) Summary() services.Summary {
	return a.Insight.Summarize(a.Store.State(), a.Clock.Now())
}
