package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var errUnknownScriptFormat = errors.New("unknown script format")

// script is a batch of edits applied to one recording, in order.
//
//	input = "take1.wav"
//	output = "take1-clean.wav"
//	undo_depth = 2
//
//	[[edit]]
//	op = "fade-in"
//	start = 0
//	end = 0.5
type script struct {
	Input     string `toml:"input" yaml:"input"`
	Output    string `toml:"output" yaml:"output"`
	AIFF      string `toml:"aiff" yaml:"aiff"`
	UndoDepth *int   `toml:"undo_depth" yaml:"undo_depth"`
	Edits     []step `toml:"edit" yaml:"edit"`
}

type step struct {
	Op    string  `toml:"op" yaml:"op"`
	Start float64 `toml:"start" yaml:"start"`
	End   float64 `toml:"end" yaml:"end"`
	Level int     `toml:"level" yaml:"level"`
}

// loadScript parses a TOML or YAML script, picked by file extension.
func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	sc := &script{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), sc)
		if err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode TOML: unknown keys %v", undecoded)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, sc); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownScriptFormat, ext)
	}

	return sc, nil
}
