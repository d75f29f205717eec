// Command agentline mediates a conversational session between a client on
// stdin/stdout and a tool-using agent engine, speaking newline-delimited JSON
// with a synchronous tool-approval gate.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/danshapiro/agentline/internal/approval"
	"github.com/danshapiro/agentline/internal/config"
	"github.com/danshapiro/agentline/internal/engine"
	"github.com/danshapiro/agentline/internal/session"
	"github.com/danshapiro/agentline/internal/transcript"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "validate":
		os.Exit(cmdValidate(os.Args[2:]))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  agentline run [--config <file.yaml>] [--engine echo|scripted] [--log-file <path>] [--debug] [--transcript <path>]")
	fmt.Fprintln(os.Stderr, "  agentline validate --config <file.yaml>")
}

// runOptions are the command-line overrides for the run subcommand. Flags win
// over the config file.
type runOptions struct {
	configPath     string
	engineKind     string
	logFile        string
	debug          bool
	transcriptPath string
}

func parseRunArgs(args []string) (runOptions, error) {
	var opts runOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--debug":
			opts.debug = true
		case "--config":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--config requires a value")
			}
			opts.configPath = args[i]
		case "--engine":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--engine requires a value")
			}
			opts.engineKind = args[i]
		case "--log-file":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--log-file requires a value")
			}
			opts.logFile = args[i]
		case "--transcript":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--transcript requires a value")
			}
			opts.transcriptPath = args[i]
		default:
			return opts, fmt.Errorf("unknown arg: %s", args[i])
		}
	}
	return opts, nil
}

func cmdRun(args []string) int {
	opts, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return 1
	}

	cfg := config.Default()
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if opts.engineKind != "" {
		cfg.Engine.Kind = opts.engineKind
	}
	if opts.transcriptPath != "" {
		cfg.Transcript.Path = opts.transcriptPath
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}

	log, closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(log)

	eng, err := buildEngine(cfg.Engine)
	if err != nil {
		log.Error("building engine", "error", err)
		return 1
	}

	policy, err := approval.NewPolicy(cfg.Approval.AutoApprove)
	if err != nil {
		log.Error("building approval policy", "error", err)
		return 1
	}

	loop, err := session.NewLoop(os.Stdin, os.Stdout, eng, policy, nil, log)
	if err != nil {
		log.Error("building session loop", "error", err)
		return 1
	}

	var sink *transcript.Sink
	if cfg.Transcript.Path != "" {
		sink, err = transcript.Open(cfg.Transcript.Path, loop.ID())
		if err != nil {
			log.Error("opening transcript", "error", err)
			return 1
		}
		defer func() {
			if err := sink.Close(); err != nil {
				log.Warn("closing transcript", "error", err)
			}
		}()
		loop.SetTranscript(sink)
	}

	if err := loop.Run(context.Background()); err != nil {
		log.Error("session loop", "error", err)
		return 1
	}
	return 0
}

func cmdValidate(args []string) int {
	var configPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a value")
				return 1
			}
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
			return 1
		}
	}
	if configPath == "" {
		usage()
		return 1
	}
	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s: ok\n", configPath)
	return 0
}

func buildEngine(cfg config.EngineConfig) (engine.Engine, error) {
	kind, err := engine.ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case engine.KindScripted:
		steps := make([]engine.Step, 0, len(cfg.Steps))
		for _, st := range cfg.Steps {
			steps = append(steps, engine.Step{
				Type:     engine.StepType(st.Type),
				Text:     st.Text,
				ToolName: st.Tool,
				ToolArgs: st.Args,
				Result:   st.Result,
				IsError:  st.IsError,
			})
		}
		return engine.NewScripted(steps), nil
	default:
		return engine.NewEcho(), nil
	}
}

// setupLogger builds the process logger. Logs go to stderr unless a file is
// configured; the protocol owns stdout.
func setupLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	w := os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.Create(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
