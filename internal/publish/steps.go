// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/deckbuilder/deckbuilder/internal/runtime"
)

const (
	// ServerAlias is the jfrog CLI server ID registered by every run and
	// referenced by all later jfrog invocations.
	ServerAlias = "armory-artifactory-deck"

	jfrog = "jfrog"
	yarn  = "yarn"

	redacted = "***"
)

// writeGlobalArtifactoryAuth registers ServerAlias with the jfrog CLI.
func (b *Builder) writeGlobalArtifactoryAuth(ctx context.Context) error {
	var stderr strings.Builder
	err := b.exec(ctx, jfrog, []string{
		"config",
		"add",
		ServerAlias,
		"--artifactory-url=" + b.cfg.ArtifactoryURL,
		"--access-token=" + b.cfg.ArtifactoryToken,
		"--interactive=false",
	}, runtime.ExecOptions{
		OnStderrLine: func(line string) {
			stderr.WriteString(line)
			stderr.WriteString("\n")
		},
	})
	if err == nil {
		return nil
	}
	if isServerAliasExists(stderr.String()) {
		b.logger.Info("Artifactory was already configured.")
		return nil
	}
	if out := strings.TrimSpace(stderr.String()); out != "" {
		return fmt.Errorf("%w: %s", err, out)
	}
	return err
}

// yarnInstall installs dependencies with the lockfile frozen. A missing yarn
// binary is tolerated so hosts that ship node_modules pre-installed still work.
func (b *Builder) yarnInstall(ctx context.Context) error {
	err := b.exec(ctx, yarn, []string{"--frozen-lockfile"}, runtime.ExecOptions{Dir: b.cfg.DeckPath})
	if err == nil {
		return nil
	}
	if !isCommandNotFound(err) {
		return err
	}
	b.logger.Warn(fmt.Sprintf("Non-fatal error running 'yarn': %v", err))
	return nil
}

func (b *Builder) writeNPMAuth(ctx context.Context, moduleDir string) error {
	return b.exec(ctx, jfrog, []string{
		"rt",
		"npmc",
		"--server-id-deploy=" + ServerAlias,
		"--server-id-resolve=" + ServerAlias,
		"--repo-resolve=" + b.cfg.ResolveRepo,
		"--repo-deploy=" + b.cfg.DeployRepo,
	}, runtime.ExecOptions{Dir: moduleDir})
}

func (b *Builder) publishModule(ctx context.Context, moduleDir string) error {
	return b.exec(ctx, jfrog, []string{
		"rt",
		"npmp",
		"--build-name=" + b.cfg.BuildName,
		"--build-number=" + b.cfg.BuildNumber,
	}, runtime.ExecOptions{Dir: moduleDir})
}

func (b *Builder) collectBuildInfo(ctx context.Context) error {
	return b.exec(ctx, jfrog, []string{"rt", "bag", b.cfg.BuildName, b.cfg.BuildNumber},
		runtime.ExecOptions{Dir: b.cfg.DeckPath})
}

func (b *Builder) publishBuildInfo(ctx context.Context) error {
	return b.exec(ctx, jfrog, []string{"rt", "bp", b.cfg.BuildName, b.cfg.BuildNumber, "--build-url=" + b.cfg.BuildURL},
		runtime.ExecOptions{Dir: b.cfg.DeckPath})
}

// exec runs one step and discards the exit code; failures surface as errors.
func (b *Builder) exec(ctx context.Context, name string, args []string, opts runtime.ExecOptions) error {
	b.logger.Debug("exec", "cmd", runtime.QuoteCommand(name, b.redact(args)), "dir", opts.Dir)
	_, err := b.executor.Exec(ctx, name, args, opts)
	return err
}

// redact hides the access token from logged command lines.
func (b *Builder) redact(args []string) []string {
	if b.cfg.ArtifactoryToken == "" {
		return args
	}
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = strings.ReplaceAll(arg, b.cfg.ArtifactoryToken, redacted)
	}
	return out
}

// isServerAliasExists reports whether `jfrog config add` failed only because
// ServerAlias is already registered. It matches the CLI's message text; if a
// jfrog release rewords the message, the match fails and the step becomes
// fatal instead of silently succeeding.
func isServerAliasExists(stderr string) bool {
	return strings.Contains(stderr, fmt.Sprintf("Server ID '%s' already exists.", ServerAlias))
}

// isCommandNotFound reports whether err means the executable was not installed.
func isCommandNotFound(err error) bool {
	return runtime.IsCommandNotFound(err)
}
