package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	service "github.com/sigmotoa/plantilla/internal/app"
	"github.com/sigmotoa/plantilla/internal/adapters/document"
	"github.com/sigmotoa/plantilla/internal/config"
	"github.com/sigmotoa/plantilla/internal/domain/model"
	"github.com/sigmotoa/plantilla/pkg/logger"
	"github.com/sigmotoa/plantilla/pkg/metrics"
)

const (
	logLevelFlag = "log-level"
	logJSONFlag  = "log-json"
	metricsFlag  = "metrics"
	formatFlag   = "format"
	workersFlag  = "workers"
	kindFlag     = "kind"
	trackedFlag  = "tracked"
	opponentFlag = "opponent"
)

// Exit codes.
const (
	exitRejected = 1
	exitFailure  = 2
)

var build string
var semanticVersion = "v0.1.0-dev" + build

// errRejected marks a run in which at least one document failed validation.
var errRejected = errors.New("documents rejected")

// runtimeEnv carries what the Before hook builds for the commands.
type runtimeEnv struct {
	svc     *service.Service
	log     logger.Logger
	format  document.Format
	metrics *metrics.Manager
}

func newApp(stdout, stderr io.Writer) *cli.App {
	env := &runtimeEnv{}

	return &cli.App{
		Name:      "plantilla",
		Usage:     "Validate soccer player and match documents",
		Version:   semanticVersion,
		Writer:    stdout,
		ErrWriter: stderr,

		// main reports the error and picks the exit status.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "Log level: debug, info, warn or error (overrides PLANTILLA_LOG_LEVEL)",
			},
			&cli.BoolFlag{
				Name:  logJSONFlag,
				Usage: "Emit logs as JSON lines",
			},
			&cli.BoolFlag{
				Name:  metricsFlag,
				Usage: "Print a metrics summary to stderr when done",
			},
			&cli.StringFlag{
				Name:    formatFlag,
				Aliases: []string{"f"},
				Usage:   "Output format: json or yaml",
				Value:   string(document.FormatJSON),
			},
			&cli.IntFlag{
				Name:  workersFlag,
				Usage: "Files validated concurrently (overrides PLANTILLA_WORKERS)",
			},
		},
		Before: func(cCtx *cli.Context) error {
			return env.setup(cCtx, stderr)
		},
		After: func(cCtx *cli.Context) error {
			if !cCtx.Bool(metricsFlag) || env.metrics == nil {
				return nil
			}
			return printMetrics(stderr, env.metrics)
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate player or match documents",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     kindFlag,
						Aliases:  []string{"k"},
						Usage:    "Entity kind: player or match",
						Required: true,
					},
				},
				Action: env.validate,
			},
			{
				Name:      "outcome",
				Usage:     "Print the tracked team's result for each match",
				ArgsUsage: "FILE...",
				Action:    env.outcome,
			},
			{
				Name:      "penalties",
				Usage:     "Record a penalty shootout on every match in FILE",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     trackedFlag,
						Usage:    "Penalties scored by the tracked team",
						Required: true,
					},
					&cli.IntFlag{
						Name:     opponentFlag,
						Usage:    "Penalties scored by the opponent",
						Required: true,
					},
				},
				Action: env.penalties,
			},
		},
	}
}

func (e *runtimeEnv) setup(cCtx *cli.Context, stderr io.Writer) error {
	ctx := cCtx.Context

	cfg, err := config.Load(ctx)
	if err != nil {
		return cli.Exit("failed to load config: "+err.Error(), exitFailure)
	}
	if cCtx.IsSet(logJSONFlag) {
		cfg.LogFormat = "text"
		if cCtx.Bool(logJSONFlag) {
			cfg.LogFormat = "json"
		}
	}
	if n := cCtx.Int(workersFlag); n > 0 {
		cfg.Workers = n
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithJSON(cfg.JSONLogs())); err != nil {
		return cli.Exit("failed to initialize logging: "+err.Error(), exitFailure)
	}
	e.log = logger.Get()

	level := cfg.LogLevel
	if cCtx.IsSet(logLevelFlag) {
		level = cCtx.String(logLevelFlag)
	}
	// Fallback to info on invalid input.
	if err := logger.SetLevelString(level); err != nil {
		e.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	format, err := document.ParseFormat(cCtx.String(formatFlag))
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	loc, err := cfg.Location()
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	factory := model.NewFactory(
		model.WithLocation(loc),
		model.WithPlayerSequence(model.NewSequence(cfg.PlayerIDStart)),
		model.WithMatchSequence(model.NewSequence(cfg.MatchIDStart)),
	)

	e.format = format
	e.metrics = metrics.Default()
	e.svc = service.New(
		service.WithFactory(factory),
		service.WithLogger(e.log),
		service.WithMetrics(e.metrics),
		service.WithWorkers(cfg.Workers),
		service.WithPenaltyKeys(cfg.TrackedKey, cfg.OpponentKey),
	)
	e.log.Debug(ctx, "configuration loaded",
		logger.String("run_id", e.svc.RunID()),
		logger.Int("workers", cfg.Workers),
		logger.String("timezone", loc.String()),
	)
	return nil
}

func (e *runtimeEnv) validate(cCtx *cli.Context) error {
	kind, err := service.ParseKind(cCtx.String(kindFlag))
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	paths, err := fileArgs(cCtx, false)
	if err != nil {
		return err
	}

	results, err := e.svc.ValidateFiles(cCtx.Context, kind, paths)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	reports := make([]map[string]any, 0, len(results))
	for _, r := range results {
		reports = append(reports, r.Report())
	}
	sum := service.Summarize(results)
	if err := e.write(cCtx, map[string]any{
		"run_id":     e.svc.RunID(),
		"resultados": reports,
		"resumen":    map[string]any{"validos": sum.Accepted, "invalidos": sum.Rejected},
	}); err != nil {
		return err
	}
	if sum.Rejected > 0 {
		return cli.Exit(fmt.Sprintf("%v: %d of %d", errRejected, sum.Rejected, len(results)), exitRejected)
	}
	return nil
}

func (e *runtimeEnv) outcome(cCtx *cli.Context) error {
	paths, err := fileArgs(cCtx, false)
	if err != nil {
		return err
	}
	results, err := e.svc.ValidateFiles(cCtx.Context, service.KindMatch, paths)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	rows := make([]map[string]any, 0, len(results))
	rejected := 0
	for _, r := range results {
		if !r.OK() {
			rejected++
			rows = append(rows, r.Report())
			continue
		}
		row := map[string]any{
			"archivo":   r.File,
			"indice":    r.Index,
			"tipo":      string(r.Kind),
			"valido":    true,
			"id":        r.Match.ID,
			"resultado": nil,
		}
		if outcome, ok := e.svc.Outcome(cCtx.Context, r.Match); ok {
			row["resultado"] = string(outcome)
		}
		rows = append(rows, row)
	}
	if err := e.write(cCtx, rows); err != nil {
		return err
	}
	if rejected > 0 {
		return cli.Exit(fmt.Sprintf("%v: %d of %d", errRejected, rejected, len(results)), exitRejected)
	}
	return nil
}

func (e *runtimeEnv) penalties(cCtx *cli.Context) error {
	paths, err := fileArgs(cCtx, true)
	if err != nil {
		return err
	}
	results, err := e.svc.ValidateFiles(cCtx.Context, service.KindMatch, paths)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	tracked, opponent := cCtx.Int(trackedFlag), cCtx.Int(opponentFlag)
	out := make([]map[string]any, 0, len(results))
	for i, r := range results {
		if r.OK() {
			if err := e.svc.RecordPenalties(cCtx.Context, r.Match, tracked, opponent); err != nil {
				results[i].Err = err
				results[i].Match = nil
			}
		}
		out = append(out, results[i].Report())
	}
	if err := e.write(cCtx, out); err != nil {
		return err
	}
	if sum := service.Summarize(results); sum.Rejected > 0 {
		return cli.Exit(fmt.Sprintf("%v: %d of %d", errRejected, sum.Rejected, len(results)), exitRejected)
	}
	return nil
}

func (e *runtimeEnv) write(cCtx *cli.Context, v any) error {
	if err := document.Encode(cCtx.App.Writer, e.format, v); err != nil {
		return cli.Exit("failed to write output: "+err.Error(), exitFailure)
	}
	return nil
}

func fileArgs(cCtx *cli.Context, single bool) ([]string, error) {
	paths := cCtx.Args().Slice()
	switch {
	case len(paths) == 0:
		return nil, cli.Exit("at least one FILE is required", exitFailure)
	case single && len(paths) > 1:
		return nil, cli.Exit("exactly one FILE is required", exitFailure)
	}
	return paths, nil
}

func printMetrics(w io.Writer, m *metrics.Manager) error {
	samples, err := m.Snapshot()
	if err != nil {
		return err
	}
	for _, s := range samples {
		if s.Labels == "" {
			fmt.Fprintf(w, "%s %g\n", s.Name, s.Value)
			continue
		}
		fmt.Fprintf(w, "%s{%s} %g\n", s.Name, s.Labels, s.Value)
	}
	return nil
}

// exitCode maps an error returned by the app to a process exit status.
func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return exitFailure
}
