package service

import (
	"fmt"
	"math"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
)

// QuizPassThreshold is the minimum score that counts as a pass.
const QuizPassThreshold = 0.70

const (
	perfectScoreBonusScale = 5
	failedQuizRewardShare  = 0.5
	submissionCreditShare  = 0.25
	highGradeThreshold     = 0.9
	highGradeBonusShare    = 0.1
)

// ScoreQuiz returns the share of questions whose selected keys equal the correct keys as sets.
// A quiz without questions scores 0.
func ScoreQuiz(questions []model.QuizQuestion, answers map[string][]string) float64 {
	if len(questions) == 0 {
		return 0
	}

	correct := 0
	for _, q := range questions {
		if sameKeySet(answers[q.ID], q.CorrectOptionKeys) {
			correct++
		}
	}
	return float64(correct) / float64(len(questions))
}

func sameKeySet(selected, expected []string) bool {
	want := make(map[string]struct{}, len(expected))
	for _, k := range expected {
		want[k] = struct{}{}
	}
	got := make(map[string]struct{}, len(selected))
	for _, k := range selected {
		if _, ok := want[k]; !ok {
			return false
		}
		got[k] = struct{}{}
	}
	return len(got) == len(want)
}

// QuizPoints: a pass earns the reward plus up to 5 bonus points, a partial fail earns half the
// reward scaled by score.
func QuizPoints(score float64, passed bool, reward int) int {
	switch {
	case passed:
		return reward + int(math.Floor(score*perfectScoreBonusScale))
	case score > 0:
		return int(math.Floor(score * float64(reward) * failedQuizRewardShare))
	default:
		return 0
	}
}

// SubmissionCredit is granted when an assignment is handed in, ahead of grading.
func SubmissionCredit(reward int) int {
	return int(math.Floor(float64(reward) * submissionCreditShare))
}

// GradingPoints is what a passed assignment still owes after the submission credit.
func GradingPoints(reward int, grade *float64) int {
	points := reward - SubmissionCredit(reward)
	if grade != nil && *grade >= highGradeThreshold {
		points += int(math.Floor(float64(reward) * highGradeBonusShare))
	}
	return points
}

// ValidateAnswers rejects answer maps that reference unknown questions or carry blank keys.
func ValidateAnswers(questions []model.QuizQuestion, answers map[string][]string) error {
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}

	for questionID, keys := range answers {
		if questionID == "" {
			return fmt.Errorf("%w: empty question id", util.ErrInvalidAnswers)
		}
		if _, ok := known[questionID]; !ok {
			return fmt.Errorf("%w: question %s is not part of this quiz", util.ErrInvalidAnswers, questionID)
		}
		for _, k := range keys {
			if k == "" {
				return fmt.Errorf("%w: empty option key for question %s", util.ErrInvalidAnswers, questionID)
			}
		}
	}
	return nil
}
