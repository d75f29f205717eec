package main

import (
	"testing"

	"github.com/danshapiro/agentline/internal/config"
	"github.com/danshapiro/agentline/internal/engine"
)

func TestParseRunArgs(t *testing.T) {
	opts, err := parseRunArgs([]string{
		"--config", "a.yaml",
		"--engine", "scripted",
		"--log-file", "agent.log",
		"--debug",
		"--transcript", "t.jsonl",
	})
	if err != nil {
		t.Fatalf("parseRunArgs: %v", err)
	}
	if opts.configPath != "a.yaml" || opts.engineKind != "scripted" ||
		opts.logFile != "agent.log" || !opts.debug || opts.transcriptPath != "t.jsonl" {
		t.Fatalf("opts: %+v", opts)
	}
}

func TestParseRunArgs_Errors(t *testing.T) {
	cases := [][]string{
		{"--config"},
		{"--engine"},
		{"--log-file"},
		{"--transcript"},
		{"--nope"},
	}
	for _, args := range cases {
		if _, err := parseRunArgs(args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestBuildEngine(t *testing.T) {
	eng, err := buildEngine(config.EngineConfig{Kind: "echo"})
	if err != nil {
		t.Fatalf("buildEngine echo: %v", err)
	}
	if _, ok := eng.(*engine.Echo); !ok {
		t.Fatalf("expected *engine.Echo, got %T", eng)
	}

	eng, err = buildEngine(config.EngineConfig{
		Kind: "scripted",
		Steps: []config.StepConfig{
			{Type: "chunk", Text: "hi"},
			{Type: "tool_call", Tool: "search", Args: "{}", Result: "ok"},
		},
	})
	if err != nil {
		t.Fatalf("buildEngine scripted: %v", err)
	}
	if _, ok := eng.(*engine.Scripted); !ok {
		t.Fatalf("expected *engine.Scripted, got %T", eng)
	}

	if _, err := buildEngine(config.EngineConfig{Kind: "llm"}); err == nil {
		t.Fatal("expected error for unknown engine kind")
	}
}
