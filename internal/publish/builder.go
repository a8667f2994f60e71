// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/deckbuilder/deckbuilder/internal/module"
	"github.com/deckbuilder/deckbuilder/internal/runtime"

	"github.com/charmbracelet/log"
)

type (
	// Logger narrates the run. *log.Logger from charmbracelet/log satisfies it.
	Logger interface {
		Debug(msg any, keyvals ...any)
		Info(msg any, keyvals ...any)
		Warn(msg any, keyvals ...any)
	}

	// BuildInvoker builds the resolved modules. *build.Invoker satisfies it.
	BuildInvoker interface {
		Build(ctx context.Context, executor runtime.Executor, repoRoot string, modules []string) error
	}

	// Builder runs the publish pipeline for one release.
	Builder struct {
		cfg      Config
		modules  module.Handler
		executor runtime.Executor
		invoker  BuildInvoker
		logger   Logger
	}
)

// New validates cfg and returns a Builder. The version is checked before
// anything else happens, so an invalid version has no side effects.
// A nil logger discards all narration.
func New(cfg Config, modules module.Handler, executor runtime.Executor, invoker BuildInvoker, logger Logger) (*Builder, error) {
	if err := ValidateVersion(cfg.Version); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg.Layout = cfg.Layout.WithDefaults()

	return &Builder{
		cfg:      cfg,
		modules:  modules,
		executor: executor,
		invoker:  invoker,
		logger:   logger,
	}, nil
}

// Config returns the configuration the builder was created with, including
// layout defaults.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build runs the whole pipeline. The returned error is a *StepError naming
// the state that failed.
func (b *Builder) Build(ctx context.Context) error {
	if err := b.writeGlobalArtifactoryAuth(ctx); err != nil {
		return &StepError{Step: StepConfigureAuth, Err: err}
	}

	b.logger.Info("Resolving modules...")
	mods, err := b.ResolveModules()
	if err != nil {
		return &StepError{Step: StepResolveModules, Err: err}
	}
	names := module.Names(mods)
	b.logger.Info(fmt.Sprintf("Resolved %d modules: %s", len(mods), strings.Join(names, ", ")))

	b.logger.Info("Running 'yarn'")
	if err := b.yarnInstall(ctx); err != nil {
		return &StepError{Step: StepInstall, Err: err}
	}
	b.logger.Info("Done running 'yarn'")

	b.logger.Info("Building modules...")
	if err := b.invoker.Build(ctx, b.executor, b.cfg.DeckPath, names); err != nil {
		return &StepError{Step: StepBuild, Err: err}
	}
	b.logger.Info("Done building modules")

	for _, m := range mods {
		b.logger.Info(fmt.Sprintf("Publishing %s...", m.Name))
		if err := b.publish(ctx, m); err != nil {
			return &StepError{Step: StepPublishModule, Module: m.Name, Err: err}
		}
	}

	b.logger.Info("Collecting build info...")
	if err := b.collectBuildInfo(ctx); err != nil {
		return &StepError{Step: StepCollectBuildInfo, Err: err}
	}

	b.logger.Info("Publishing build info...")
	if err := b.publishBuildInfo(ctx); err != nil {
		return &StepError{Step: StepPublishBuildInfo, Err: err}
	}
	b.logger.Info("Done")

	return nil
}

// ResolveModules applies the layout policy: modules under the primary root,
// followed, for legacy release versions, by legacy-root modules whose names
// the primary root does not already provide. Each root keeps its listing
// order. Finding no module at all returns ErrNoModulesResolved.
func (b *Builder) ResolveModules() ([]module.Module, error) {
	layout := b.cfg.Layout

	primary, err := b.modules.Resolve(layout.PrimaryDir(b.cfg.DeckPath), layout.Excluded)
	if err != nil {
		return nil, err
	}

	mods := make([]module.Module, 0, len(primary))
	seen := make(map[string]bool, len(primary))
	for _, name := range primary {
		if seen[name] {
			continue
		}
		seen[name] = true
		mods = append(mods, module.Module{Name: name, Root: layout.PrimaryRoot})
	}

	if layout.IsLegacyVersion(b.cfg.Version) {
		b.logger.Info("Version targets a legacy release branch, resolving legacy modules too", "root", layout.LegacyRoot)
		legacy, err := b.modules.Resolve(layout.LegacyDir(b.cfg.DeckPath), layout.Excluded)
		if err != nil {
			return nil, err
		}
		for _, name := range legacy {
			if seen[name] {
				b.logger.Debug("Legacy module shadowed by primary layout", "module", name)
				continue
			}
			seen[name] = true
			mods = append(mods, module.Module{Name: name, Root: layout.LegacyRoot})
		}
	}

	if len(mods) == 0 {
		return nil, ErrNoModulesResolved
	}
	return mods, nil
}

func (b *Builder) publish(ctx context.Context, m module.Module) error {
	dir := m.Dir(b.cfg.DeckPath)
	if err := b.writeNPMAuth(ctx, dir); err != nil {
		return err
	}
	if err := b.modules.WriteVersion(dir, b.cfg.Version); err != nil {
		return err
	}
	return b.publishModule(ctx, dir)
}
