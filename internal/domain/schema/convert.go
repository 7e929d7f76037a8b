package schema

import "github.com/sigmotoa/plantilla/internal/domain/model"

// Params maps the boundary shape onto model constructor inputs.
func (s *SportingData) Params() model.SportingDataParams {
	active := s.Active
	return model.SportingDataParams{
		HeightCM:     s.HeightCM,
		WeightKG:     s.WeightKG,
		DominantFoot: s.DominantFoot,
		Position:     s.Position,
		Active:       &active,
	}
}

// Params maps the boundary shape onto model constructor inputs. The
// sporting data must already have been built by the caller; the id is left
// for the factory to assign.
func (p *Player) Params(sporting *model.SportingData) model.PlayerParams {
	return model.PlayerParams{
		FullName:     p.FullName,
		JerseyNumber: p.JerseyNumber,
		BirthDate:    p.BirthDate,
		Nationality:  p.Nationality,
		PhotoPath:    p.PhotoPath,
		SportingData: sporting,
	}
}

// Entity maps the boundary shape onto the model value. Integer position
// stats are widened to the model's opaque mapping.
func (s PlayerMatchStat) Entity() model.PlayerMatchStat {
	var stats map[string]any
	if s.PositionStats != nil {
		stats = make(map[string]any, len(s.PositionStats))
		for k, v := range s.PositionStats {
			stats[k] = v
		}
	}
	return model.PlayerMatchStat{
		PlayerID:      s.PlayerID,
		Offsides:      s.Offsides,
		YellowCards:   s.YellowCards,
		RedCards:      s.RedCards,
		ShotsOnTarget: s.ShotsOnTarget,
		Goals:         s.Goals,
		PositionStats: stats,
	}
}

// Params maps the boundary shape onto model constructor inputs using
// statistics the caller already built. The boundary's false defaults for
// fue_tiempo_extra and fue_penales are passed through as explicit values.
func (m *Match) Params(stats []*model.PlayerMatchStat) model.MatchParams {
	return model.MatchParams{
		Date:            m.Date,
		HomeTeam:        m.HomeTeam,
		AwayTeam:        m.AwayTeam,
		TrackedIsHome:   m.TrackedIsHome,
		HomeGoals:       m.HomeGoals,
		AwayGoals:       m.AwayGoals,
		DrewAtFullTime:  m.DrewAtFullTime,
		WentToExtraTime: m.WentToExtraTime,
		WentToPenalties: m.WentToPenalties,
		PenaltyResult:   m.PenaltyResult,
		PlayerStats:     stats,
	}
}
