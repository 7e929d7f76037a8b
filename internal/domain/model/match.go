package model

import "fmt"

// Default penalty-shootout result keys.
const (
	DefaultTrackedKey  = "sigmotoa"
	DefaultOpponentKey = "oponente"
)

// Outcome is the result of a match from the tracked team's perspective.
type Outcome string

const (
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
	OutcomeDrew Outcome = "DREW"
)

// PlayerMatchStat holds one player's counters for one match. PlayerID is a
// plain reference; it is not checked against any player registry.
type PlayerMatchStat struct {
	PlayerID      int            `json:"jugador_id"`
	Offsides      int            `json:"fuera_de_lugar"`
	YellowCards   int            `json:"tarjetas_amarillas"`
	RedCards      int            `json:"tarjetas_rojas"`
	ShotsOnTarget int            `json:"tiros_al_arco"`
	Goals         int            `json:"goles"`
	PositionStats map[string]any `json:"posicion_stats"`
}

// NewPlayerMatchStat validates s and returns a copy of it.
func NewPlayerMatchStat(s PlayerMatchStat) (*PlayerMatchStat, error) {
	if s.PlayerID < 1 {
		return nil, ConstraintViolation("jugador_id", "must be a positive integer, got %d", s.PlayerID)
	}
	counters := []struct {
		field string
		value int
	}{
		{"fuera_de_lugar", s.Offsides},
		{"tarjetas_amarillas", s.YellowCards},
		{"tarjetas_rojas", s.RedCards},
		{"tiros_al_arco", s.ShotsOnTarget},
		{"goles", s.Goals},
	}
	for _, c := range counters {
		if c.value < 0 {
			return nil, ConstraintViolation(c.field, "must not be negative, got %d", c.value)
		}
	}
	out := s
	if s.PositionStats != nil {
		out.PositionStats = make(map[string]any, len(s.PositionStats))
		for k, v := range s.PositionStats {
			out.PositionStats[k] = v
		}
	}
	return &out, nil
}

// ToMap serialises the statistic with its wire field names.
func (s *PlayerMatchStat) ToMap() map[string]any {
	var stats any
	if s.PositionStats != nil {
		stats = s.PositionStats
	}
	return map[string]any{
		"jugador_id":         s.PlayerID,
		"fuera_de_lugar":     s.Offsides,
		"tarjetas_amarillas": s.YellowCards,
		"tarjetas_rojas":     s.RedCards,
		"tiros_al_arco":      s.ShotsOnTarget,
		"goles":              s.Goals,
		"posicion_stats":     stats,
	}
}

// Match is a single game record.
//
// TrackedIsHome, WentToExtraTime and WentToPenalties are tri-state: nil
// means unknown.
type Match struct {
	ID              int                `json:"id"`
	Date            *Date              `json:"fecha"`
	HomeTeam        string             `json:"equipo_local"`
	AwayTeam        string             `json:"equipo_visitante"`
	TrackedIsHome   *bool              `json:"sigmotoa_es_local"`
	HomeGoals       int                `json:"goles_local"`
	AwayGoals       int                `json:"goles_visitante"`
	DrewAtFullTime  bool               `json:"empate_al_final"`
	WentToExtraTime *bool              `json:"fue_tiempo_extra"`
	WentToPenalties *bool              `json:"fue_penales"`
	PenaltyResult   map[string]int     `json:"penales_resultado"`
	PlayerStats     []*PlayerMatchStat `json:"estadisticas_jugadores"`

	autoID bool
}

// MatchParams are the raw inputs for NewMatch. An ID below 1 requests an
// auto-assigned id.
type MatchParams struct {
	ID              int
	Date            *Date
	HomeTeam        string
	AwayTeam        string
	TrackedIsHome   *bool
	HomeGoals       int
	AwayGoals       int
	DrewAtFullTime  bool
	WentToExtraTime *bool
	WentToPenalties *bool
	PenaltyResult   map[string]int
	PlayerStats     []*PlayerMatchStat
}

// NewMatch validates p field by field and returns the first failure.
// Statistics are expected to come from NewPlayerMatchStat and are only
// checked for presence here.
func (f *Factory) NewMatch(p MatchParams) (*Match, error) {
	id, drawn := f.matches.resolveID(p.ID)

	if p.HomeGoals < 0 {
		return nil, ConstraintViolation("goles_local", "must not be negative, got %d", p.HomeGoals)
	}
	if p.AwayGoals < 0 {
		return nil, ConstraintViolation("goles_visitante", "must not be negative, got %d", p.AwayGoals)
	}
	for k, v := range p.PenaltyResult {
		if v < 0 {
			return nil, ConstraintViolation("penales_resultado", "score for %q must not be negative, got %d", k, v)
		}
	}
	for i, st := range p.PlayerStats {
		if st == nil {
			return nil, TypeMismatch(fmt.Sprintf("estadisticas_jugadores[%d]", i), "must be a player match statistic, got nil")
		}
	}

	m := &Match{
		ID:              id,
		HomeTeam:        p.HomeTeam,
		AwayTeam:        p.AwayTeam,
		TrackedIsHome:   CloneBool(p.TrackedIsHome),
		HomeGoals:       p.HomeGoals,
		AwayGoals:       p.AwayGoals,
		DrewAtFullTime:  p.DrewAtFullTime,
		WentToExtraTime: CloneBool(p.WentToExtraTime),
		WentToPenalties: CloneBool(p.WentToPenalties),
		PlayerStats:     make([]*PlayerMatchStat, len(p.PlayerStats)),
		autoID:          drawn,
	}
	if p.Date != nil {
		d := *p.Date
		m.Date = &d
	}
	if p.PenaltyResult != nil {
		m.PenaltyResult = make(map[string]int, len(p.PenaltyResult))
		for k, v := range p.PenaltyResult {
			m.PenaltyResult[k] = v
		}
	}
	copy(m.PlayerStats, p.PlayerStats)
	return m, nil
}

// AutoAssignedID reports whether the id came from the match sequence.
func (m *Match) AutoAssignedID() bool { return m.autoID }

// TrackedOutcome compares the tracked team's goals with the opponent's.
// ok is false when it is unknown which side the tracked team played on.
func (m *Match) TrackedOutcome() (Outcome, bool) {
	if m.TrackedIsHome == nil {
		return "", false
	}
	ours, theirs := m.HomeGoals, m.AwayGoals
	if !*m.TrackedIsHome {
		ours, theirs = theirs, ours
	}
	switch {
	case ours > theirs:
		return OutcomeWon, true
	case ours < theirs:
		return OutcomeLost, true
	default:
		return OutcomeDrew, true
	}
}

// SetPenalties records a shootout under the default keys.
func (m *Match) SetPenalties(tracked, opponent int) error {
	return m.SetPenaltiesWithKeys(tracked, opponent, DefaultTrackedKey, DefaultOpponentKey)
}

// SetPenaltiesWithKeys records a shootout, replacing any previous result
// with exactly two entries. Empty keys fall back to the defaults. Only the
// scores are checked; the match is left untouched on error.
func (m *Match) SetPenaltiesWithKeys(tracked, opponent int, trackedKey, opponentKey string) error {
	if tracked < 0 {
		return ConstraintViolation("penales_resultado", "tracked score must not be negative, got %d", tracked)
	}
	if opponent < 0 {
		return ConstraintViolation("penales_resultado", "opponent score must not be negative, got %d", opponent)
	}
	if trackedKey == "" {
		trackedKey = DefaultTrackedKey
	}
	if opponentKey == "" {
		opponentKey = DefaultOpponentKey
	}
	if trackedKey == opponentKey {
		return ConstraintViolation("penales_resultado", "tracked and opponent keys must differ, both are %q", trackedKey)
	}
	went := true
	m.WentToPenalties = &went
	m.PenaltyResult = map[string]int{
		trackedKey:  tracked,
		opponentKey: opponent,
	}
	return nil
}

// ToMap serialises the match with its wire field names, adding the derived
// "resultado" (nil when unknown).
func (m *Match) ToMap() map[string]any {
	stats := make([]any, len(m.PlayerStats))
	for i, st := range m.PlayerStats {
		stats[i] = st.ToMap()
	}
	var penalties any
	if m.PenaltyResult != nil {
		penalties = m.PenaltyResult
	}
	var result any
	if outcome, ok := m.TrackedOutcome(); ok {
		result = string(outcome)
	}
	return map[string]any{
		"id":                     m.ID,
		"fecha":                  isoOrNil(m.Date),
		"equipo_local":           m.HomeTeam,
		"equipo_visitante":       m.AwayTeam,
		"sigmotoa_es_local":      boolOrNil(m.TrackedIsHome),
		"goles_local":            m.HomeGoals,
		"goles_visitante":        m.AwayGoals,
		"empate_al_final":        m.DrewAtFullTime,
		"fue_tiempo_extra":       boolOrNil(m.WentToExtraTime),
		"fue_penales":            boolOrNil(m.WentToPenalties),
		"penales_resultado":      penalties,
		"estadisticas_jugadores": stats,
		"resultado":              result,
	}
}

// Bool returns a pointer to b, for filling tri-state fields.
func Bool(b bool) *bool { return &b }

// CloneBool copies a tri-state value so callers never share the pointer.
func CloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
