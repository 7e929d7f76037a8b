package service

import (
	"fmt"
	"strings"

	"github.com/sigmotoa/plantilla/internal/domain/model"
	"github.com/sigmotoa/plantilla/internal/domain/schema"
)

// Kind selects which entity a document describes.
type Kind string

const (
	KindPlayer Kind = "player"
	KindMatch  Kind = "match"
)

// ParseKind accepts "player"/"jugador" and "match"/"partido" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "jugador":
		return KindPlayer, nil
	case "match", "partido":
		return KindMatch, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func (k Kind) validate() error {
	switch k {
	case KindPlayer, KindMatch:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// Result is the outcome of validating one document.
type Result struct {
	File  string
	Index int
	Kind  Kind

	Player *model.Player
	Match  *model.Match
	Err    error
}

// OK reports whether the document produced an entity.
func (r Result) OK() bool { return r.Err == nil }

// Entity returns the built entity as a mapping, or nil when rejected.
func (r Result) Entity() map[string]any {
	switch {
	case r.Player != nil:
		return r.Player.ToMap()
	case r.Match != nil:
		return r.Match.ToMap()
	default:
		return nil
	}
}

// Violations lists the field errors behind Err.
func (r Result) Violations() []*model.ValidationError {
	return schema.Violations(r.Err)
}

// Report is the serializable form of a Result.
func (r Result) Report() map[string]any {
	out := map[string]any{
		"archivo": r.File,
		"indice":  r.Index,
		"tipo":    string(r.Kind),
		"valido":  r.OK(),
	}
	if r.OK() {
		out["entidad"] = r.Entity()
		return out
	}
	var errs []map[string]any
	for _, v := range r.Violations() {
		errs = append(errs, map[string]any{
			"campo":   v.Field,
			"tipo":    model.KindLabel(v),
			"mensaje": v.Message,
		})
	}
	if len(errs) == 0 {
		errs = append(errs, map[string]any{"mensaje": r.Err.Error()})
	}
	out["errores"] = errs
	return out
}

// Summary counts accepted and rejected documents.
type Summary struct {
	Accepted int
	Rejected int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.OK() {
			s.Accepted++
		} else {
			s.Rejected++
		}
	}
	return s
}
