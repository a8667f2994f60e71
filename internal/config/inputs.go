// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed action.yml
var actionMetadata []byte

type (
	// Input is one entry of the action's input list.
	Input struct {
		// Name is the snake_case input name, e.g. "deck_path".
		Name        string
		Description string
		Required    bool
		Default     string
		// Secret inputs are masked when printed.
		Secret bool
	}

	inputMeta struct {
		Description string `yaml:"description"`
		Required    bool   `yaml:"required"`
		Default     string `yaml:"default"`
	}

	actionFile struct {
		Name        string    `yaml:"name"`
		Description string    `yaml:"description"`
		Inputs      yaml.Node `yaml:"inputs"`
	}
)

// FlagName returns the kebab-case CLI flag name.
func (i Input) FlagName() string {
	return strings.ReplaceAll(i.Name, "_", "-")
}

// EnvName returns the GitHub Actions environment variable, e.g. INPUT_DECK_PATH.
func (i Input) EnvName() string {
	return EnvPrefix + "_" + strings.ToUpper(i.Name)
}

// Inputs returns the inputs declared by the embedded action metadata, in
// declaration order.
func Inputs() ([]Input, error) {
	return parseInputs(actionMetadata)
}

func parseInputs(data []byte) ([]Input, error) {
	var action actionFile
	if err := yaml.Unmarshal(data, &action); err != nil {
		return nil, fmt.Errorf("failed to parse action metadata: %w", err)
	}
	node := action.Inputs
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse action metadata: inputs must be a mapping")
	}

	inputs := make([]Input, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var meta inputMeta
		if err := node.Content[i+1].Decode(&meta); err != nil {
			return nil, fmt.Errorf("failed to parse input %q: %w", name, err)
		}
		inputs = append(inputs, Input{
			Name:        name,
			Description: meta.Description,
			Required:    meta.Required,
			Default:     meta.Default,
			Secret:      strings.HasSuffix(name, "_token"),
		})
	}
	return inputs, nil
}
