package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/baserah/baserah/internal/agent"
	"github.com/baserah/baserah/internal/analyzer"
	"github.com/baserah/baserah/internal/config"
	"github.com/baserah/baserah/internal/fluency"
	"github.com/baserah/baserah/internal/inference"
	"github.com/baserah/baserah/internal/knowledge"
	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/memory"
	"github.com/baserah/baserah/internal/seed"
	"go.uber.org/zap"
)

// App is a fully wired assistant
type App struct {
	Config    *config.Config
	Engine    *agent.Engine
	Lexicon   *lexicon.Lexicon
	Knowledge *knowledge.Store
	History   *memory.Service
	Facts     memory.FactStore // nil unless Dgraph is enabled

	logger *zap.Logger
}

// Build seeds the lexicon and knowledge base and assembles the response engine
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, logger: logger}

	if cfg.History.DgraphEnabled || cfg.Seed.Dgraph || cfg.Seed.Mirror {
		facts, err := memory.NewDgraphFactStore(ctx, cfg.History)
		if err != nil {
			return nil, fmt.Errorf("failed to connect fact mirror: %w", err)
		}
		a.Facts = facts
	}

	a.Lexicon = lexicon.New(lexicon.NewCharVectorizer(cfg.Lexicon.Dimensions), logger.Named("lexicon"))
	a.Knowledge = knowledge.NewStore(a.Lexicon, cfg.Knowledge, logger.Named("knowledge"))

	doc, err := seed.LoadAll(ctx, a.sources()...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}
	if err := seed.Apply(doc, a.Lexicon, a.Knowledge); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to apply seed: %w", err)
	}
	if cfg.Seed.Mirror && a.Facts != nil {
		if err := a.Facts.StoreFacts(ctx, a.Knowledge.All()); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to mirror facts: %w", err)
		}
	}

	logger.Info("knowledge seeded",
		zap.Int("lexicon", a.Lexicon.Len()),
		zap.Int("facts", a.Knowledge.Len()))

	a.History, err = memory.Open(cfg.History, logger.Named("history"))
	if err != nil {
		a.Close()
		return nil, err
	}

	scorer := inference.NewScorer(
		analyzer.New(a.Lexicon, cfg.Analyzer, logger.Named("analyzer")),
		cfg.Intent,
		logger.Named("intent"))

	// Components are toggled per turn by the engine settings
	opts := []agent.GeneratorOption{
		agent.WithReasoner(inference.NewReasoner(a.Knowledge, cfg.Intent, logger.Named("reasoner"))),
		agent.WithRecorder(a.History),
	}

	a.Engine, err = agent.NewEngine(agent.EngineDeps{
		Lexicon:   a.Lexicon,
		Knowledge: a.Knowledge,
		Generator: agent.NewGenerator(scorer, cfg.Generator, logger.Named("generator"), opts...),
		Enhancer:  fluency.NewEnhancer(logger.Named("fluency")),
		History:   a.History,
	}, cfg.Settings, logger.Named("engine"))
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) sources() []seed.Source {
	var sources []seed.Source
	if a.Config.Seed.Builtin {
		sources = append(sources, seed.DefaultSource)
	}
	for _, path := range a.Config.Seed.Files {
		sources = append(sources, seed.FileSource(path))
	}
	for _, src := range a.Config.Seed.SQL {
		sources = append(sources, src)
	}
	if a.Config.Seed.Dgraph && a.Facts != nil {
		facts := a.Facts
		sources = append(sources, seed.SourceFunc(func(ctx context.Context) (*seed.Document, error) {
			loaded, err := facts.LoadFacts(ctx)
			if err != nil {
				return nil, err
			}
			return seed.FromFacts(loaded), nil
		}))
	}
	return sources
}

// Close releases the history backends and the fact mirror
func (a *App) Close() error {
	var errs []error
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	if a.Facts != nil {
		errs = append(errs, a.Facts.Close())
	}
	return errors.Join(errs...)
}
