// SPDX-License-Identifier: MPL-2.0

// Package build runs the module build for a deck checkout.
//
// Repositories that declare a "modules" script in their root package.json are
// built with `yarn modules`; older checkouts fall back to the legacy
// build_modules.sh script, which receives the module names as arguments.
package build

import (
	"context"
	"fmt"

	"github.com/deckbuilder/deckbuilder/internal/module"
	"github.com/deckbuilder/deckbuilder/internal/runtime"
)

const (
	// StrategyLegacyScript builds with LegacyScriptPath.
	StrategyLegacyScript Strategy = iota
	// StrategyScript builds with the package manager's "modules" script.
	StrategyScript
)

const (
	// PackageManager is the package-manager client used for the script hook.
	PackageManager = "yarn"
	// ModulesScript is the root package.json script that builds all modules.
	ModulesScript = "modules"
	// LegacyScriptPath is the legacy build script, relative to the repository root.
	LegacyScriptPath = "app/scripts/modules/build_modules.sh"
)

type (
	// Strategy selects how modules are built. It is resolved once per run.
	Strategy int

	// LineLogger receives every line the build writes.
	// *log.Logger from charmbracelet/log satisfies it.
	LineLogger interface {
		Info(msg any, keyvals ...any)
	}

	// Invoker builds the resolved modules of a repository.
	Invoker struct {
		// Logger receives the build output line by line (optional).
		Logger LineLogger
	}
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyScript:
		return "script"
	case StrategyLegacyScript:
		return "legacy-script"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Detect inspects repoRoot/package.json for the "modules" script.
func Detect(repoRoot string) (Strategy, error) {
	ok, err := module.HasScript(repoRoot, ModulesScript)
	if err != nil {
		return StrategyLegacyScript, fmt.Errorf("failed to detect build strategy: %w", err)
	}
	if ok {
		return StrategyScript, nil
	}
	return StrategyLegacyScript, nil
}

// Command returns the program and arguments the strategy runs for modules.
func (s Strategy) Command(modules []string) (string, []string) {
	if s == StrategyScript {
		return PackageManager, []string{ModulesScript}
	}
	return LegacyScriptPath, append([]string(nil), modules...)
}

// Build detects the strategy for repoRoot and runs it with repoRoot as the
// working directory. Any failure, including a non-zero exit, is returned.
func (i *Invoker) Build(ctx context.Context, executor runtime.Executor, repoRoot string, modules []string) error {
	strategy, err := Detect(repoRoot)
	if err != nil {
		return err
	}

	name, args := strategy.Command(modules)
	opts := runtime.ExecOptions{
		Dir:          repoRoot,
		OnStdoutLine: i.logLine,
		OnStderrLine: i.logLine,
	}
	if _, err := executor.Exec(ctx, name, args, opts); err != nil {
		return fmt.Errorf("module build (%s) failed: %w", strategy, err)
	}
	return nil
}

func (i *Invoker) logLine(line string) {
	if i.Logger != nil {
		i.Logger.Info(line)
	}
}
