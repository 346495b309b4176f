package service

import "skillpath_backend/internal/model"

// Outcome gathers what the engine changed for a learner during one request.
type Outcome struct {
	PointsAwarded int               `json:"pointsAwarded"`
	TotalPoints   int               `json:"totalPoints"`
	Awards        []PointsAward     `json:"awards,omitempty"`
	LevelUps      []model.UserLevel `json:"levelUps,omitempty"`
	Streak        *model.UserStreak `json:"streak,omitempty"`
	BadgesAwarded []model.Badge     `json:"badgesAwarded,omitempty"`
}

func (o *Outcome) addPoints(award *PointsAward) {
	if award == nil {
		return
	}
	o.PointsAwarded += award.Delta
	o.TotalPoints = award.Total
	o.Awards = append(o.Awards, *award)
	if award.LevelUp != nil {
		o.LevelUps = append(o.LevelUps, *award.LevelUp)
	}
}

func (o *Outcome) addStreak(update *StreakUpdate) {
	if update == nil {
		return
	}
	streak := update.Streak
	o.Streak = &streak
	o.addPoints(update.Bonus)
}

func (o *Outcome) addBadge(award *model.UserBadge) {
	if award == nil || award.Badge == nil {
		return
	}
	o.BadgesAwarded = append(o.BadgesAwarded, *award.Badge)
}

func (o *Outcome) empty() bool {
	return len(o.LevelUps) == 0 && len(o.BadgesAwarded) == 0
}
