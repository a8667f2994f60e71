// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/deckbuilder/deckbuilder/internal/issue"
	"github.com/deckbuilder/deckbuilder/internal/publish"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "deckbuilder"
	// ConfigFileName is the config file looked up in the working directory
	// when no explicit path is given.
	ConfigFileName = AppName + ".cue"
	// DotEnvFileName is the dotenv file looked up in the working directory.
	DotEnvFileName = ".env"
	// EnvPrefix prefixes the environment variable of every input.
	EnvPrefix = "INPUT"
)

var (
	// ErrMissingInput is wrapped by MissingInputError.
	ErrMissingInput = errors.New("missing required input")
	// ErrConfigNotFound is returned when an explicit config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
)

type (
	// LoadOptions selects the configuration sources.
	LoadOptions struct {
		// ConfigFilePath forces a specific CUE file. When empty, ConfigFileName
		// is used if it exists in the working directory.
		ConfigFilePath string
		// EnvFiles are dotenv files read for INPUT_* entries. Nil means
		// DotEnvFileName; missing files are skipped.
		EnvFiles []string
		// Flags, when set, are bound by their input flag names.
		Flags *pflag.FlagSet
		// Required restricts validation to the named inputs. Nil validates
		// every input the action metadata marks as required.
		Required []string
	}

	// MissingInputError names a required input nobody provided.
	MissingInputError struct {
		Input Input
	}

	// Result is a loaded configuration together with where it came from.
	Result struct {
		Config publish.Config
		// ConfigFile is the CUE file that was merged, if any.
		ConfigFile string
	}
)

// Error implements the error interface.
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s (--%s or %s)", e.Input.Name, e.Input.FlagName(), e.Input.EnvName())
}

// Unwrap returns ErrMissingInput for errors.Is() compatibility.
func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// Load builds the run configuration. Sources, lowest precedence first:
// defaults, the CUE config file, dotenv files, INPUT_* environment variables
// and flags. Every missing required input is reported at once.
func Load(ctx context.Context, opts LoadOptions) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	inputs, err := Inputs()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, inputs)

	res := &Result{}
	if res.ConfigFile, err = mergeConfigFile(v, opts.ConfigFilePath); err != nil {
		return nil, err
	}

	if err := mergeDotEnv(v, inputs, opts.EnvFiles); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, in := range inputs {
		if err := v.BindEnv(in.Name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", in.EnvName(), err)
		}
	}

	if opts.Flags != nil {
		for _, in := range inputs {
			if f := opts.Flags.Lookup(in.FlagName()); f != nil {
				if err := v.BindPFlag(in.Name, f); err != nil {
					return nil, fmt.Errorf("failed to bind --%s: %w", in.FlagName(), err)
				}
			}
		}
	}

	if err := validate(v, inputs, opts.Required); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read inputs").
			WithSuggestion("Pass each missing input as a flag or an " + EnvPrefix + "_<NAME> variable").
			WithIssue(issue.MissingInputId).
			Wrap(err).
			BuildError()
	}

	res.Config = publish.Config{
		DeckPath:         v.GetString("deck_path"),
		Version:          v.GetString("version"),
		ArtifactoryURL:   v.GetString("artifactory_url"),
		ArtifactoryToken: v.GetString("artifactory_token"),
		ResolveRepo:      v.GetString("artifactory_resolve_repo"),
		DeployRepo:       v.GetString("artifactory_deploy_repo"),
		BuildName:        v.GetString("build_name"),
		BuildNumber:      v.GetString("build_number"),
		BuildURL:         v.GetString("build_url"),
		Layout: publish.Layout{
			PrimaryRoot:   v.GetString("layout.primary_root"),
			LegacyRoot:    v.GetString("layout.legacy_root"),
			LegacyMarkers: v.GetStringSlice("layout.legacy_markers"),
			Excluded:      v.GetStringSlice("layout.excluded"),
		},
	}
	return res, nil
}

func setDefaults(v *viper.Viper, inputs []Input) {
	layout := publish.DefaultLayout()
	v.SetDefault("layout.primary_root", layout.PrimaryRoot)
	v.SetDefault("layout.legacy_root", layout.LegacyRoot)
	v.SetDefault("layout.legacy_markers", layout.LegacyMarkers)
	v.SetDefault("layout.excluded", layout.Excluded)

	for _, in := range inputs {
		if in.Default != "" {
			v.SetDefault(in.Name, in.Default)
		}
	}
}

// mergeConfigFile merges the explicit config file, or the working-directory
// one when present, and returns the path it used.
func mergeConfigFile(v *viper.Viper, explicit string) (string, error) {
	path := explicit
	if path == "" {
		if !fileExists(ConfigFileName) {
			return "", nil
		}
		path = ConfigFileName
	} else if !fileExists(path) {
		return "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("%w: %s", ErrConfigNotFound, path)).
			BuildError()
	}

	if err := loadCUEIntoViper(v, path); err != nil {
		return "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the configuration values match the expected schema").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return path, nil
}

// mergeDotEnv merges INPUT_* entries of the dotenv files above the config
// file layer. Real environment variables still win over them.
func mergeDotEnv(v *viper.Viper, inputs []Input, files []string) error {
	if files == nil {
		files = []string{DotEnvFileName}
	}

	values := make(map[string]any)
	for _, f := range files {
		if !fileExists(f) {
			continue
		}
		env, err := godotenv.Read(f)
		if err != nil {
			return issue.NewErrorContext().
				WithOperation("read dotenv file").
				WithResource(f).
				WithSuggestion("Use KEY=value lines, one per variable").
				Wrap(err).
				BuildError()
		}
		for _, in := range inputs {
			if val, ok := env[in.EnvName()]; ok {
				values[in.Name] = val
			}
		}
	}

	if len(values) == 0 {
		return nil
	}
	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge dotenv values: %w", err)
	}
	return nil
}

func validate(v *viper.Viper, inputs []Input, only []string) error {
	var result *multierror.Error
	for _, in := range inputs {
		required := in.Required
		if only != nil {
			required = slices.Contains(only, in.Name)
		}
		if required && strings.TrimSpace(v.GetString(in.Name)) == "" {
			result = multierror.Append(result, &MissingInputError{Input: in})
		}
	}
	if result != nil {
		result.ErrorFormat = formatMissing
	}
	return result.ErrorOrNil()
}

func formatMissing(errs []error) string {
	names := make([]string, len(errs))
	for i, err := range errs {
		names[i] = err.Error()
	}
	return fmt.Sprintf("%d required input(s) missing:\n  %s", len(errs), strings.Join(names, "\n  "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
