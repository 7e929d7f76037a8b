package model

import (
	"math"
	"strings"
)

// Jersey number bounds, inclusive.
const (
	MinJerseyNumber = 0
	MaxJerseyNumber = 99
)

// Canonical dominant foot values.
const (
	FootRight = "Derecho"
	FootLeft  = "Izquierdo"
	FootBoth  = "Ambidiestro"
)

// footAliases maps lowercased input to the canonical form.
var footAliases = map[string]string{
	"derecho":     FootRight,
	"right":       FootRight,
	"izquierdo":   FootLeft,
	"left":        FootLeft,
	"ambidiestro": FootBoth,
	"both":        FootBoth,
}

// NormalizeFoot trims and case-folds a dominant foot value and returns its
// canonical capitalised form. ok is false for unknown values.
func NormalizeFoot(in string) (string, bool) {
	canon, ok := footAliases[strings.ToLower(strings.TrimSpace(in))]
	return canon, ok
}

// SportingData holds a player's physical and positional attributes.
type SportingData struct {
	HeightCM     float64 `json:"altura_cm"`
	WeightKG     float64 `json:"peso_kg"`
	DominantFoot string  `json:"pie_dominante"`
	Position     string  `json:"posicion"`
	Active       bool    `json:"activo"`
}

// SportingDataParams are the raw inputs for NewSportingData.
// A nil Active means true.
type SportingDataParams struct {
	HeightCM     float64
	WeightKG     float64
	DominantFoot string
	Position     string
	Active       *bool
}

// NewSportingData validates p and returns the value with the dominant foot
// normalised.
func NewSportingData(p SportingDataParams) (*SportingData, error) {
	if !(p.HeightCM > 0) || math.IsInf(p.HeightCM, 1) {
		return nil, ConstraintViolation("altura_cm", "must be a finite number greater than 0, got %v", p.HeightCM)
	}
	if !(p.WeightKG > 0) || math.IsInf(p.WeightKG, 1) {
		return nil, ConstraintViolation("peso_kg", "must be a finite number greater than 0, got %v", p.WeightKG)
	}
	foot, ok := NormalizeFoot(p.DominantFoot)
	if !ok {
		return nil, ConstraintViolation("pie_dominante", "must be one of %s, %s, %s; got %q", FootRight, FootLeft, FootBoth, p.DominantFoot)
	}
	if strings.TrimSpace(p.Position) == "" {
		return nil, ConstraintViolation("posicion", "must not be empty")
	}
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return &SportingData{
		HeightCM:     p.HeightCM,
		WeightKG:     p.WeightKG,
		DominantFoot: foot,
		Position:     p.Position,
		Active:       active,
	}, nil
}

// ToMap flattens the sporting data into a plain mapping.
func (s *SportingData) ToMap() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"altura_cm":     s.HeightCM,
		"peso_kg":       s.WeightKG,
		"pie_dominante": s.DominantFoot,
		"posicion":      s.Position,
		"activo":        s.Active,
	}
}

// Player is a tracked athlete.
type Player struct {
	ID           int           `json:"id"`
	FullName     string        `json:"nombre_completo"`
	JerseyNumber int           `json:"numero_camiseta"`
	BirthDate    *Date         `json:"fecha_nacimiento"`
	Nationality  string        `json:"nacionalidad"`
	PhotoPath    *string       `json:"foto_ruta"`
	SportingData *SportingData `json:"datos_deportivos"`

	autoID bool
}

// PlayerParams are the raw inputs for NewPlayer. An ID below 1 requests an
// auto-assigned id.
type PlayerParams struct {
	ID           int
	FullName     string
	JerseyNumber int
	BirthDate    *Date
	Nationality  string
	PhotoPath    *string
	SportingData *SportingData
}

// NewPlayer validates p field by field and returns the first failure.
//
// The id is resolved before anything else, so a player rejected for a later
// field still consumes a sequence value.
func (f *Factory) NewPlayer(p PlayerParams) (*Player, error) {
	id, drawn := f.players.resolveID(p.ID)

	if strings.TrimSpace(p.FullName) == "" {
		return nil, ConstraintViolation("nombre_completo", "must be a non-empty string")
	}
	if p.JerseyNumber < MinJerseyNumber || p.JerseyNumber > MaxJerseyNumber {
		return nil, ConstraintViolation("numero_camiseta", "must be between %d and %d inclusive, got %d",
			MinJerseyNumber, MaxJerseyNumber, p.JerseyNumber)
	}
	if p.BirthDate != nil {
		if today := f.Today(); p.BirthDate.After(today) {
			return nil, ConstraintViolation("fecha_nacimiento", "must not be in the future (%s > %s)", p.BirthDate, today)
		}
	}

	pl := &Player{
		ID:           id,
		FullName:     p.FullName,
		JerseyNumber: p.JerseyNumber,
		Nationality:  p.Nationality,
		SportingData: p.SportingData,
		autoID:       drawn,
	}
	if p.BirthDate != nil {
		d := *p.BirthDate
		pl.BirthDate = &d
	}
	if p.PhotoPath != nil {
		path := *p.PhotoPath
		pl.PhotoPath = &path
	}
	return pl, nil
}

// AutoAssignedID reports whether the id came from the player sequence.
func (p *Player) AutoAssignedID() bool { return p.autoID }

// ToMap serialises the player with its wire field names. Dates are ISO text
// and absent optional values are nil.
func (p *Player) ToMap() map[string]any {
	var photo any
	if p.PhotoPath != nil {
		photo = *p.PhotoPath
	}
	var sporting any
	if p.SportingData != nil {
		sporting = p.SportingData.ToMap()
	}
	return map[string]any{
		"id":               p.ID,
		"nombre_completo":  p.FullName,
		"numero_camiseta":  p.JerseyNumber,
		"fecha_nacimiento": isoOrNil(p.BirthDate),
		"nacionalidad":     p.Nationality,
		"foto_ruta":        photo,
		"datos_deportivos": sporting,
	}
}
