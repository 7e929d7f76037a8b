// Package schema validates untrusted documents at the system boundary
// before they are turned into model entities.
//
// Documents are generic mappings as produced by JSON or YAML decoders.
// Unlike the model constructors, every field is checked and all violations
// are returned together, joined with errors.Join. Unknown keys are ignored.
//
// Defaults intentionally differ from the model layer in one place:
// fue_tiempo_extra and fue_penales default to false here, while the model
// leaves them unset.
package schema

import (
	"errors"
	"fmt"

	"github.com/sigmotoa/plantilla/internal/domain/model"
)

// SportingData is the validated boundary shape of datos_deportivos.
// DominantFoot is not checked against the accepted set at this layer.
type SportingData struct {
	HeightCM     float64 `json:"altura_cm"`
	WeightKG     float64 `json:"peso_kg"`
	DominantFoot string  `json:"pie_dominante"`
	Position     string  `json:"posicion"`
	Active       bool    `json:"activo"`
}

// Player is the validated boundary shape of a player. It carries no id.
type Player struct {
	FullName     string        `json:"nombre_completo"`
	JerseyNumber int           `json:"numero_camiseta"`
	BirthDate    *model.Date   `json:"fecha_nacimiento"`
	Nationality  string        `json:"nacionalidad"`
	PhotoPath    *string       `json:"foto_ruta"`
	SportingData *SportingData `json:"datos_deportivos"`
}

// PlayerMatchStat is the validated boundary shape of one player's match counters.
type PlayerMatchStat struct {
	PlayerID      int            `json:"jugador_id"`
	Offsides      int            `json:"fuera_de_lugar"`
	YellowCards   int            `json:"tarjetas_amarillas"`
	RedCards      int            `json:"tarjetas_rojas"`
	ShotsOnTarget int            `json:"tiros_al_arco"`
	Goals         int            `json:"goles"`
	PositionStats map[string]int `json:"posicion_stats"`
}

// Match is the validated boundary shape of a match. It carries no id.
type Match struct {
	Date            *model.Date       `json:"fecha"`
	HomeTeam        string            `json:"equipo_local"`
	AwayTeam        string            `json:"equipo_visitante"`
	TrackedIsHome   *bool             `json:"sigmotoa_es_local"`
	HomeGoals       int               `json:"goles_local"`
	AwayGoals       int               `json:"goles_visitante"`
	DrewAtFullTime  bool              `json:"empate_al_final"`
	WentToExtraTime *bool             `json:"fue_tiempo_extra"`
	WentToPenalties *bool             `json:"fue_penales"`
	PenaltyResult   map[string]int    `json:"penales_resultado"`
	PlayerStats     []PlayerMatchStat `json:"estadisticas_jugadores"`
}

// Validator decodes documents. Today is consulted for birth dates.
type Validator struct {
	today func() model.Date
}

// NewValidator returns a Validator that uses today for "not in the future"
// checks, typically (*model.Factory).Today.
func NewValidator(today func() model.Date) *Validator {
	return &Validator{today: today}
}

// SportingData validates a datos_deportivos document.
func (v *Validator) SportingData(doc map[string]any) (*SportingData, error) {
	c := &collector{}
	out := decodeSportingData(c, doc)
	if err := c.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Player validates a player document.
func (v *Validator) Player(doc map[string]any) (*Player, error) {
	c := &collector{}
	today := v.today()

	out := &Player{
		FullName:     c.requiredText(doc, "nombre_completo"),
		JerseyNumber: c.jerseyNumber(doc),
		BirthDate:    c.optionalDate(doc, "fecha_nacimiento", &today),
	}
	out.Nationality, _ = c.requiredString(doc, "nacionalidad")
	out.PhotoPath = c.optionalString(doc, "foto_ruta")

	if raw, ok := lookup(doc, "datos_deportivos"); ok && raw != nil {
		nested, ok := toMap(raw)
		if !ok {
			c.typeMismatch("datos_deportivos", "expected a mapping or null, got %s", kindName(raw))
		} else {
			c.nested("datos_deportivos", func(cc *collector) {
				out.SportingData = decodeSportingData(cc, nested)
			})
		}
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PlayerMatchStat validates one statistics document.
func (v *Validator) PlayerMatchStat(doc map[string]any) (*PlayerMatchStat, error) {
	c := &collector{}
	out := decodePlayerMatchStat(c, doc)
	if err := c.err(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Match validates a match document including its statistics list.
func (v *Validator) Match(doc map[string]any) (*Match, error) {
	c := &collector{}
	notPlayed := false

	out := &Match{
		Date:            c.optionalDate(doc, "fecha", nil),
		HomeTeam:        c.requiredText(doc, "equipo_local"),
		AwayTeam:        c.requiredText(doc, "equipo_visitante"),
		TrackedIsHome:   c.nullableBool(doc, "sigmotoa_es_local", nil),
		HomeGoals:       c.intField(doc, "goles_local", true, 0, 0),
		AwayGoals:       c.intField(doc, "goles_visitante", true, 0, 0),
		DrewAtFullTime:  c.boolField(doc, "empate_al_final", false),
		WentToExtraTime: c.nullableBool(doc, "fue_tiempo_extra", &notPlayed),
		WentToPenalties: c.nullableBool(doc, "fue_penales", &notPlayed),
		PenaltyResult:   c.optionalIntMap(doc, "penales_resultado"),
		PlayerStats:     []PlayerMatchStat{},
	}
	// Each default gets its own pointer.
	out.WentToExtraTime = model.CloneBool(out.WentToExtraTime)
	out.WentToPenalties = model.CloneBool(out.WentToPenalties)

	if raw, ok := lookup(doc, "estadisticas_jugadores"); ok {
		items, ok := raw.([]any)
		if !ok {
			c.typeMismatch("estadisticas_jugadores", "expected a list, got %s", kindName(raw))
		} else {
			for i, item := range items {
				field := fmt.Sprintf("estadisticas_jugadores[%d]", i)
				m, ok := toMap(item)
				if !ok {
					c.typeMismatch(field, "expected a mapping, got %s", kindName(item))
					continue
				}
				c.nested(field, func(cc *collector) {
					out.PlayerStats = append(out.PlayerStats, decodePlayerMatchStat(cc, m))
				})
			}
		}
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collector) jerseyNumber(doc map[string]any) int {
	n := c.intField(doc, "numero_camiseta", true, 0, model.MinJerseyNumber)
	if n > model.MaxJerseyNumber {
		c.violation("numero_camiseta", "must be less than or equal to %d, got %d", model.MaxJerseyNumber, n)
	}
	return n
}

func decodeSportingData(c *collector, doc map[string]any) *SportingData {
	out := &SportingData{
		HeightCM: c.positiveFloat(doc, "altura_cm"),
		WeightKG: c.positiveFloat(doc, "peso_kg"),
	}
	out.DominantFoot, _ = c.requiredString(doc, "pie_dominante")
	out.Position, _ = c.requiredString(doc, "posicion")
	out.Active = c.boolField(doc, "activo", true)
	return out
}

func decodePlayerMatchStat(c *collector, doc map[string]any) PlayerMatchStat {
	return PlayerMatchStat{
		PlayerID:      c.intField(doc, "jugador_id", true, 0, 1),
		Offsides:      c.intField(doc, "fuera_de_lugar", false, 0, 0),
		YellowCards:   c.intField(doc, "tarjetas_amarillas", false, 0, 0),
		RedCards:      c.intField(doc, "tarjetas_rojas", false, 0, 0),
		ShotsOnTarget: c.intField(doc, "tiros_al_arco", false, 0, 0),
		Goals:         c.intField(doc, "goles", false, 0, 0),
		PositionStats: c.optionalIntMap(doc, "posicion_stats"),
	}
}

// Violations flattens an error returned by this package into its individual
// field violations.
func Violations(err error) []*model.ValidationError {
	if err == nil {
		return nil
	}
	var out []*model.ValidationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, Violations(e)...)
		}
		return out
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		out = append(out, verr)
	}
	return out
}
