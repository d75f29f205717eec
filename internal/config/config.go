// Package config loads and validates the agentline configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration file shape. YAML is the primary
// format; JSON files are accepted by extension.
type Config struct {
	Engine     EngineConfig     `json:"engine,omitempty" yaml:"engine,omitempty"`
	Approval   ApprovalConfig   `json:"approval,omitempty" yaml:"approval,omitempty"`
	Transcript TranscriptConfig `json:"transcript,omitempty" yaml:"transcript,omitempty"`
	Log        LogConfig        `json:"log,omitempty" yaml:"log,omitempty"`
}

// EngineConfig selects and parameterizes the engine backend.
type EngineConfig struct {
	// Kind is "echo" or "scripted". Empty means echo.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Steps is the scripted engine's playbook; ignored for other kinds.
	Steps []StepConfig `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// StepConfig is one scripted engine step.
type StepConfig struct {
	Type    string `json:"type" yaml:"type"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	Tool    string `json:"tool,omitempty" yaml:"tool,omitempty"`
	Args    string `json:"args,omitempty" yaml:"args,omitempty"`
	Result  string `json:"result,omitempty" yaml:"result,omitempty"`
	IsError bool   `json:"is_error,omitempty" yaml:"is_error,omitempty"`
}

// ApprovalConfig holds the tool auto-approval patterns.
type ApprovalConfig struct {
	AutoApprove []string `json:"auto_approve,omitempty" yaml:"auto_approve,omitempty"`
}

// TranscriptConfig controls session transcript persistence.
type TranscriptConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LogConfig controls slog output.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error". Empty means info.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// File receives logs instead of stderr when set.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, decodes, and validates a configuration file. Unknown fields are
// rejected by the decoder; value constraints are checked against the embedded
// JSON schema.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := decodeJSONStrict(b, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		if err := decodeYAMLStrict(b, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Validate checks cfg against the embedded schema.
func Validate(cfg *Config) error {
	// Round-trip through JSON so the schema validator sees canonical types
	// regardless of the source format.
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := configSchema.Validate(doc); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Engine.Kind == "" {
		cfg.Engine.Kind = "echo"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func decodeJSONStrict(b []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("json: multiple top-level values are not allowed")
		}
		return err
	}
	return nil
}

func decodeYAMLStrict(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("yaml: multiple documents are not allowed")
		}
		return err
	}
	return nil
}

const schemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "engine": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "kind": {"enum": ["", "echo", "scripted"]},
        "steps": {
          "type": "array",
          "items": {
            "type": "object",
            "additionalProperties": false,
            "required": ["type"],
            "properties": {
              "type": {"enum": ["chunk", "tool_call"]},
              "text": {"type": "string"},
              "tool": {"type": "string"},
              "args": {"type": "string"},
              "result": {"type": "string"},
              "is_error": {"type": "boolean"}
            }
          }
        }
      }
    },
    "approval": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "auto_approve": {"type": "array", "items": {"type": "string", "minLength": 1}}
      }
    },
    "transcript": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "path": {"type": "string"}
      }
    },
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"enum": ["", "debug", "info", "warn", "error"]},
        "file": {"type": "string"}
      }
    }
  }
}`

var configSchema = jsonschema.MustCompileString("config.schema.json", schemaJSON)
