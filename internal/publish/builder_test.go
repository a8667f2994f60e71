// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deckbuilder/deckbuilder/internal/build"
	"github.com/deckbuilder/deckbuilder/internal/module"
	"github.com/deckbuilder/deckbuilder/internal/runtime"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

const testVersion = "2021.4.28-21.37.41.master"

// fakeHandler serves module listings from memory and records stamped versions.
type fakeHandler struct {
	listings  map[string][]string
	writeErrs map[string]error
	written   []string
}

func (h *fakeHandler) Resolve(baseDir string, _ []string) ([]string, error) {
	names, ok := h.listings[baseDir]
	if !ok {
		return nil, fmt.Errorf("failed to list modules in %s: %w", baseDir, fs.ErrNotExist)
	}
	return names, nil
}

func (h *fakeHandler) WriteVersion(moduleDir, version string) error {
	if err := h.writeErrs[moduleDir]; err != nil {
		return err
	}
	h.written = append(h.written, moduleDir+"@"+version)
	return nil
}

func testConfig() Config {
	return Config{
		DeckPath:         "deck",
		Version:          testVersion,
		ArtifactoryURL:   "https://artifactory.example.com",
		ArtifactoryToken: "s3cr3t",
		ResolveRepo:      "npm-remote",
		DeployRepo:       "npm-local",
		BuildName:        "deck",
		BuildNumber:      "42",
		BuildURL:         "https://ci.example.com/deck/42",
	}
}

func primaryHandler(names ...string) *fakeHandler {
	return &fakeHandler{listings: map[string][]string{
		filepath.Join("deck", "packages"): names,
	}}
}

func newTestBuilder(t *testing.T, cfg Config, h module.Handler, rec *runtime.Recorder) (*Builder, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	b, err := New(cfg, h, rec, &build.Invoker{Logger: logger}, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b, &buf
}

func authInvocation() runtime.Invocation {
	return runtime.Invocation{
		Command: "jfrog",
		Args: []string{
			"config", "add", "armory-artifactory-deck",
			"--artifactory-url=https://artifactory.example.com",
			"--access-token=s3cr3t",
			"--interactive=false",
		},
	}
}

func moduleInvocations(dir string) []runtime.Invocation {
	return []runtime.Invocation{
		{
			Command: "jfrog",
			Args: []string{
				"rt", "npmc",
				"--server-id-deploy=armory-artifactory-deck",
				"--server-id-resolve=armory-artifactory-deck",
				"--repo-resolve=npm-remote",
				"--repo-deploy=npm-local",
			},
			Dir: dir,
		},
		{
			Command: "jfrog",
			Args:    []string{"rt", "npmp", "--build-name=deck", "--build-number=42"},
			Dir:     dir,
		},
	}
}

func TestBuildInvocationSequence(t *testing.T) {
	t.Parallel()

	h := primaryHandler("core", "amazon")
	rec := runtime.NewRecorder(nil)
	b, _ := newTestBuilder(t, testConfig(), h, rec)

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []runtime.Invocation{
		authInvocation(),
		{Command: "yarn", Args: []string{"--frozen-lockfile"}, Dir: "deck"},
		{Command: "app/scripts/modules/build_modules.sh", Args: []string{"core", "amazon"}, Dir: "deck"},
	}
	want = append(want, moduleInvocations(filepath.Join("deck", "packages", "core"))...)
	want = append(want, moduleInvocations(filepath.Join("deck", "packages", "amazon"))...)
	want = append(want,
		runtime.Invocation{Command: "jfrog", Args: []string{"rt", "bag", "deck", "42"}, Dir: "deck"},
		runtime.Invocation{Command: "jfrog", Args: []string{"rt", "bp", "deck", "42", "--build-url=https://ci.example.com/deck/42"}, Dir: "deck"},
	)

	if diff := cmp.Diff(want, rec.Invocations()); diff != "" {
		t.Errorf("invocations mismatch (-want +got):\n%s", diff)
	}

	wantWritten := []string{
		filepath.Join("deck", "packages", "core") + "@" + testVersion,
		filepath.Join("deck", "packages", "amazon") + "@" + testVersion,
	}
	if diff := cmp.Diff(wantWritten, h.written); diff != "" {
		t.Errorf("stamped versions mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUsesModulesScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := writeManifest(dir, `{"scripts": {"modules": "lerna run build"}}`); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.DeckPath = dir
	h := &fakeHandler{listings: map[string][]string{filepath.Join(dir, "packages"): {"core"}}}
	rec := runtime.NewRecorder(nil)
	b, _ := newTestBuilder(t, cfg, h, rec)

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := rec.Invocations()[2]
	want := runtime.Invocation{Command: "yarn", Args: []string{"modules"}, Dir: dir}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("build invocation mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildToleratesExistingServerAlias(t *testing.T) {
	t.Parallel()

	rec := &runtime.Recorder{Hook: func(inv runtime.Invocation, opts runtime.ExecOptions) (runtime.ExitCode, error) {
		if inv.Command == "jfrog" && inv.Args[0] == "config" {
			opts.OnStderrLine("[Error] Server ID 'armory-artifactory-deck' already exists.")
			return 1, &runtime.ExitError{Command: "jfrog", Code: 1}
		}
		return 0, nil
	}}
	b, logs := newTestBuilder(t, testConfig(), primaryHandler("core"), rec)

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if n := len(rec.Invocations()); n != 7 {
		t.Errorf("got %d invocations, want 7", n)
	}
	if !strings.Contains(logs.String(), "Artifactory was already configured.") {
		t.Errorf("expected already-configured notice, logs:\n%s", logs)
	}
}

func TestBuildAuthFailureIsFatal(t *testing.T) {
	t.Parallel()

	rec := &runtime.Recorder{Hook: func(inv runtime.Invocation, opts runtime.ExecOptions) (runtime.ExitCode, error) {
		if inv.Command == "jfrog" {
			opts.OnStderrLine("[Error] invalid access token")
			return 1, &runtime.ExitError{Command: "jfrog", Code: 1}
		}
		return 0, nil
	}}
	b, _ := newTestBuilder(t, testConfig(), primaryHandler("core"), rec)

	err := b.Build(context.Background())

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepConfigureAuth {
		t.Fatalf("Build() error = %v, want StepConfigureAuth failure", err)
	}
	if !strings.Contains(err.Error(), "invalid access token") {
		t.Errorf("error %q does not carry stderr", err)
	}
	if n := len(rec.Invocations()); n != 1 {
		t.Errorf("got %d invocations, want 1", n)
	}
}

func TestBuildToleratesMissingYarn(t *testing.T) {
	t.Parallel()

	rec := &runtime.Recorder{Hook: func(inv runtime.Invocation, _ runtime.ExecOptions) (runtime.ExitCode, error) {
		if inv.Command == "yarn" {
			return runtime.ExitCommandNotFound, &runtime.ExitError{
				Command: "yarn",
				Code:    runtime.ExitCommandNotFound,
				Err:     runtime.ErrCommandNotFound,
			}
		}
		return 0, nil
	}}
	b, logs := newTestBuilder(t, testConfig(), primaryHandler("core"), rec)

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	invs := rec.Invocations()
	if len(invs) < 3 || invs[2].Command != "app/scripts/modules/build_modules.sh" {
		t.Errorf("build did not follow the tolerated install failure: %v", invs)
	}
	if !strings.Contains(logs.String(), "Non-fatal error running 'yarn'") {
		t.Errorf("expected install warning, logs:\n%s", logs)
	}
}

func TestBuildInstallFailureIsFatal(t *testing.T) {
	t.Parallel()

	rec := &runtime.Recorder{Hook: func(inv runtime.Invocation, _ runtime.ExecOptions) (runtime.ExitCode, error) {
		if inv.Command == "yarn" {
			return 1, &runtime.ExitError{Command: "yarn", Code: 1}
		}
		return 0, nil
	}}
	b, _ := newTestBuilder(t, testConfig(), primaryHandler("core"), rec)

	err := b.Build(context.Background())

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepInstall {
		t.Fatalf("Build() error = %v, want StepInstall failure", err)
	}
	if n := len(rec.Invocations()); n != 2 {
		t.Errorf("got %d invocations, want 2", n)
	}
}

func TestBuildNoModulesHaltsBeforeInstall(t *testing.T) {
	t.Parallel()

	rec := runtime.NewRecorder(nil)
	b, _ := newTestBuilder(t, testConfig(), primaryHandler(), rec)

	err := b.Build(context.Background())
	if !errors.Is(err, ErrNoModulesResolved) {
		t.Fatalf("Build() error = %v, want ErrNoModulesResolved", err)
	}
	want := []runtime.Invocation{authInvocation()}
	if diff := cmp.Diff(want, rec.Invocations()); diff != "" {
		t.Errorf("invocations mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildModuleFailureAbortsLoop(t *testing.T) {
	t.Parallel()

	coreDir := filepath.Join("deck", "packages", "core")
	rec := &runtime.Recorder{Hook: func(inv runtime.Invocation, _ runtime.ExecOptions) (runtime.ExitCode, error) {
		if inv.Dir == coreDir && inv.Args[1] == "npmp" {
			return 1, &runtime.ExitError{Command: "jfrog", Code: 1}
		}
		return 0, nil
	}}
	b, _ := newTestBuilder(t, testConfig(), primaryHandler("core", "amazon"), rec)

	err := b.Build(context.Background())

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Build() error = %v, want *StepError", err)
	}
	if stepErr.Step != StepPublishModule || stepErr.Module != "core" {
		t.Errorf("StepError = {%v %q}, want {%v %q}", stepErr.Step, stepErr.Module, StepPublishModule, "core")
	}
	for _, inv := range rec.Invocations() {
		if strings.Contains(inv.Dir, "amazon") || inv.String() == "jfrog rt bag deck 42" {
			t.Errorf("unexpected invocation after failure: %v", inv)
		}
	}
}

func TestBuildVersionWriteFailureIsFatal(t *testing.T) {
	t.Parallel()

	coreDir := filepath.Join("deck", "packages", "core")
	h := primaryHandler("core")
	h.writeErrs = map[string]error{coreDir: module.ErrManifestNotFound}
	rec := runtime.NewRecorder(nil)
	b, _ := newTestBuilder(t, testConfig(), h, rec)

	err := b.Build(context.Background())
	if !errors.Is(err, module.ErrManifestNotFound) {
		t.Fatalf("Build() error = %v, want ErrManifestNotFound", err)
	}
	last := rec.Invocations()[len(rec.Invocations())-1]
	if last.Args[1] != "npmc" {
		t.Errorf("last invocation = %v, want module auth before the failed stamp", last)
	}
}

func TestNewRejectsInvalidVersion(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Version = "not-a-version"
	rec := runtime.NewRecorder(nil)

	_, err := New(cfg, primaryHandler("core"), rec, &build.Invoker{}, nil)

	if !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("New() error = %v, want ErrInvalidVersion", err)
	}
	if err.Error() != "not-a-version is not valid semver." {
		t.Errorf("New() error = %q", err)
	}
	if n := len(rec.Invocations()); n != 0 {
		t.Errorf("got %d invocations, want 0", n)
	}
}

func TestResolveModules(t *testing.T) {
	t.Parallel()

	primary := filepath.Join("deck", "packages")
	legacy := filepath.Join("deck", "app", "scripts", "modules")

	tests := []struct {
		name     string
		version  string
		listings map[string][]string
		want     []module.Module
		wantErr  error
	}{
		{
			name:     "primary only",
			version:  "2.28.0",
			listings: map[string][]string{primary: {"core", "amazon"}, legacy: {"docker"}},
			want: []module.Module{
				{Name: "core", Root: "packages"},
				{Name: "amazon", Root: "packages"},
			},
		},
		{
			name:     "legacy release merges both roots",
			version:  "2.27.3-release-2.27.x",
			listings: map[string][]string{primary: {"core", "amazon"}, legacy: {"amazon", "docker", "kubernetes"}},
			want: []module.Module{
				{Name: "core", Root: "packages"},
				{Name: "amazon", Root: "packages"},
				{Name: "docker", Root: "app/scripts/modules"},
				{Name: "kubernetes", Root: "app/scripts/modules"},
			},
		},
		{
			name:     "legacy release with empty primary root",
			version:  "2.26.1-release-2.26.x",
			listings: map[string][]string{primary: {}, legacy: {"core"}},
			want:     []module.Module{{Name: "core", Root: "app/scripts/modules"}},
		},
		{
			name:     "nothing found",
			version:  "2.28.0",
			listings: map[string][]string{primary: {}},
			wantErr:  ErrNoModulesResolved,
		},
		{
			name:     "missing primary root",
			version:  "2.28.0",
			listings: map[string][]string{},
			wantErr:  fs.ErrNotExist,
		},
		{
			name:     "missing legacy root for legacy release",
			version:  "2.27.0-release-2.27.x",
			listings: map[string][]string{primary: {"core"}},
			wantErr:  fs.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.Version = tt.version
			b, _ := newTestBuilder(t, cfg, &fakeHandler{listings: tt.listings}, runtime.NewRecorder(nil))

			got, err := b.ResolveModules()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveModules() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveModules() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveModules() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildRedactsTokenInLogs(t *testing.T) {
	t.Parallel()

	b, logs := newTestBuilder(t, testConfig(), primaryHandler("core"), runtime.NewRecorder(nil))
	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if strings.Contains(logs.String(), "s3cr3t") {
		t.Errorf("token leaked into logs:\n%s", logs)
	}
	if !strings.Contains(logs.String(), "--access-token=***") {
		t.Errorf("expected redacted auth command in debug logs:\n%s", logs)
	}
}
