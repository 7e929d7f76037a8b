// Package service wires the boundary schema, the entity factory, logging and
// metrics into the operations exposed by the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sigmotoa/plantilla/internal/adapters/document"
	"github.com/sigmotoa/plantilla/internal/domain/model"
	"github.com/sigmotoa/plantilla/internal/domain/schema"
	"github.com/sigmotoa/plantilla/pkg/logger"
	"github.com/sigmotoa/plantilla/pkg/metrics"
)

// Entity labels used in logs and metrics.
const (
	entityPlayer    = "player"
	entityMatch     = "match"
	entityStat      = "player_match_stat"
	entitySporting  = "sporting_data"
	entityPenalties = "penalties"
)

// Service validates documents into entities.
type Service struct {
	factory   *model.Factory
	validator *schema.Validator

	// Configuration
	workers     int
	trackedKey  string
	opponentKey string
	runID       string

	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFactory sets the entity factory and with it the id sequences and clock.
func WithFactory(f *model.Factory) Option {
	return func(s *Service) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithWorkers bounds how many files ValidateFiles processes at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPenaltyKeys sets the penalty result keys used by RecordPenalties.
func WithPenaltyKeys(tracked, opponent string) Option {
	return func(s *Service) {
		s.trackedKey = tracked
		s.opponentKey = opponent
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to metrics.Default().
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service. The global logger is used unless WithLogger is
// given, so logger.Init must have run.
func New(opts ...Option) *Service {
	s := &Service{
		workers:     runtime.NumCPU(),
		trackedKey:  model.DefaultTrackedKey,
		opponentKey: model.DefaultOpponentKey,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.factory == nil {
		s.factory = model.NewFactory()
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	s.validator = schema.NewValidator(s.factory.Today)
	s.logger = s.logger.Named("validation")

	return s
}

// RunID identifies this service instance in logs and reports.
func (s *Service) RunID() string { return s.runID }

// Factory returns the entity factory.
func (s *Service) Factory() *model.Factory { return s.factory }

// Player validates doc at the boundary and then builds the entity.
func (s *Service) Player(ctx context.Context, doc map[string]any) (*model.Player, error) {
	start := time.Now()
	defer s.observe(entityPlayer, start)

	in, err := s.validator.Player(doc)
	if err != nil {
		return nil, s.reject(ctx, metrics.LayerSchema, entityPlayer, err)
	}
	s.metrics.RecordAccepted(metrics.LayerSchema, entityPlayer)

	var sporting *model.SportingData
	if in.SportingData != nil {
		sporting, err = model.NewSportingData(in.SportingData.Params())
		if err != nil {
			return nil, s.reject(ctx, metrics.LayerModel, entitySporting, prefixField("datos_deportivos", err))
		}
		s.metrics.RecordAccepted(metrics.LayerModel, entitySporting)
	}

	p, err := s.factory.NewPlayer(in.Params(sporting))
	if err != nil {
		return nil, s.reject(ctx, metrics.LayerModel, entityPlayer, err)
	}
	s.accept(ctx, entityPlayer, p.ID, p.AutoAssignedID())
	return p, nil
}

// Match validates doc at the boundary, builds each statistic and then the
// match itself.
func (s *Service) Match(ctx context.Context, doc map[string]any) (*model.Match, error) {
	start := time.Now()
	defer s.observe(entityMatch, start)

	in, err := s.validator.Match(doc)
	if err != nil {
		return nil, s.reject(ctx, metrics.LayerSchema, entityMatch, err)
	}
	s.metrics.RecordAccepted(metrics.LayerSchema, entityMatch)

	stats := make([]*model.PlayerMatchStat, 0, len(in.PlayerStats))
	for i, raw := range in.PlayerStats {
		st, err := model.NewPlayerMatchStat(raw.Entity())
		if err != nil {
			return nil, s.reject(ctx, metrics.LayerModel, entityStat, prefixField(fmt.Sprintf("estadisticas_jugadores[%d]", i), err))
		}
		s.metrics.RecordAccepted(metrics.LayerModel, entityStat)
		stats = append(stats, st)
	}

	m, err := s.factory.NewMatch(in.Params(stats))
	if err != nil {
		return nil, s.reject(ctx, metrics.LayerModel, entityMatch, err)
	}
	s.accept(ctx, entityMatch, m.ID, m.AutoAssignedID())
	return m, nil
}

// Outcome reports the tracked team's result and counts it.
func (s *Service) Outcome(ctx context.Context, m *model.Match) (model.Outcome, bool) {
	outcome, ok := m.TrackedOutcome()
	label := string(outcome)
	if !ok {
		label = "unknown"
	}
	s.metrics.RecordOutcome(label)
	s.logger.Debug(ctx, "match outcome",
		logger.Int("match_id", m.ID),
		logger.String("outcome", label),
	)
	return outcome, ok
}

// RecordPenalties stores a shootout score on m under the configured keys.
// A rejected score leaves m untouched.
func (s *Service) RecordPenalties(ctx context.Context, m *model.Match, tracked, opponent int) error {
	if err := m.SetPenaltiesWithKeys(tracked, opponent, s.trackedKey, s.opponentKey); err != nil {
		return s.reject(ctx, metrics.LayerModel, entityPenalties, err)
	}
	s.metrics.RecordPenalties()
	s.logger.Info(ctx, "penalties recorded",
		logger.String("run_id", s.runID),
		logger.Int("match_id", m.ID),
		logger.Int(s.trackedKey, tracked),
		logger.Int(s.opponentKey, opponent),
	)
	return nil
}

func (s *Service) accept(ctx context.Context, entity string, id int, auto bool) {
	s.metrics.RecordAccepted(metrics.LayerModel, entity)
	if auto {
		s.metrics.RecordIDAssigned(entity)
	}
	s.logger.Debug(ctx, "entity accepted",
		logger.String("run_id", s.runID),
		logger.String("entity", entity),
		logger.Int("id", id),
		logger.Bool("auto_id", auto),
	)
}

func (s *Service) reject(ctx context.Context, layer, entity string, err error) error {
	for _, v := range violationsOf(err) {
		s.metrics.RecordRejected(layer, entity, model.KindLabel(v))
	}
	s.logger.Warn(ctx, "entity rejected",
		logger.String("run_id", s.runID),
		logger.String("layer", layer),
		logger.String("entity", entity),
		logger.Error(err),
	)
	return err
}

func (s *Service) observe(entity string, start time.Time) {
	s.metrics.RecordValidationLatency(entity, float64(time.Since(start).Microseconds())/1000)
}

// violationsOf returns the individual violations of err, or err itself when
// it carries none.
func violationsOf(err error) []error {
	vs := schema.Violations(err)
	if len(vs) == 0 {
		return []error{err}
	}
	out := make([]error, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// prefixField qualifies a validation error's field with its position in the
// enclosing document.
func prefixField(prefix string, err error) error {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	field := prefix
	if verr.Field != "" {
		field = prefix + "." + verr.Field
	}
	return &model.ValidationError{Field: field, Kind: verr.Kind, Message: verr.Message}
}

// ValidateFiles decodes every file and validates each document as kind.
// Files are processed concurrently up to the worker limit; documents within
// a file are validated in order, so ids follow file order when workers is 1.
// Results keep input order. Validation failures are reported per Result; a
// file that cannot be read or decoded aborts the batch.
func (s *Service) ValidateFiles(ctx context.Context, kind Kind, paths []string) ([]Result, error) {
	if err := kind.validate(); err != nil {
		return nil, err
	}

	perFile := make([][]Result, len(paths))
	s.metrics.UpdateBatchWorkers(s.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			results, err := s.validateFile(gctx, kind, path)
			if err != nil {
				return err
			}
			perFile[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, "batch aborted",
			logger.String("run_id", s.runID),
			logger.Error(err),
		)
		return nil, err
	}

	var out []Result
	for _, results := range perFile {
		out = append(out, results...)
	}
	sum := Summarize(out)
	s.logger.Info(ctx, "batch validated",
		logger.String("run_id", s.runID),
		logger.String("kind", string(kind)),
		logger.Int("files", len(paths)),
		logger.Int("accepted", sum.Accepted),
		logger.Int("rejected", sum.Rejected),
	)
	return out, nil
}

func (s *Service) validateFile(ctx context.Context, kind Kind, path string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, format, err := document.DecodeFile(path)
	if err != nil {
		if format != "" {
			s.metrics.RecordDecodeError(string(format))
		}
		return nil, err
	}
	s.metrics.RecordDocuments(string(format), len(docs))

	results := make([]Result, 0, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := Result{File: path, Index: i, Kind: kind}
		switch kind {
		case KindPlayer:
			r.Player, r.Err = s.Player(ctx, doc)
		case KindMatch:
			r.Match, r.Err = s.Match(ctx, doc)
		}
		results = append(results, r)
	}
	return results, nil
}
