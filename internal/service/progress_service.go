package service

import (
	"context"
	"encoding/json"
	"fmt"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"
	"skillpath_backend/pkg/monitoring"
	"skillpath_backend/pkg/tracing"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressService struct {
	db           *gorm.DB
	users        *repository.UserRepository
	roadmaps     *repository.RoadmapRepository
	progress     *repository.ProgressRepository
	submissions  *repository.SubmissionRepository
	gamification *GamificationService
	notifier     Notifier
	cfg          config.GamificationConfig
	clock        func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	users *repository.UserRepository,
	roadmaps *repository.RoadmapRepository,
	progress *repository.ProgressRepository,
	submissions *repository.SubmissionRepository,
	gamification *GamificationService,
	notifier Notifier,
	cfg config.GamificationConfig,
) *ProgressService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ProgressService{
		db:           db,
		users:        users,
		roadmaps:     roadmaps,
		progress:     progress,
		submissions:  submissions,
		gamification: gamification,
		notifier:     notifier,
		cfg:          cfg,
		clock:        time.Now,
	}
}

type CompletionResult struct {
	Progress       *model.UserProgress `json:"progress"`
	NewlyCompleted bool                `json:"newlyCompleted"`
	Outcome        *Outcome            `json:"outcome"`
}

type QuizResult struct {
	Attempt *model.UserQuizAttempt `json:"attempt"`
	Outcome *Outcome               `json:"outcome"`
}

type SubmissionResult struct {
	Submission *model.UserAssignmentSubmission `json:"submission"`
	Outcome    *Outcome                        `json:"outcome"`
}

// GradeInput is the grading decision for one submission.
type GradeInput struct {
	Status   string   `json:"status" binding:"required"`
	Grade    *float64 `json:"grade"`
	Feedback *string  `json:"feedback"`
}

func (in GradeInput) Validate() error {
	if in.Status == "" {
		return util.Validation("status is required")
	}
	if in.Status == model.SubmissionSubmitted {
		return util.Validation("status %q is not a grading outcome", in.Status)
	}
	if in.Grade != nil && (*in.Grade < 0 || *in.Grade > 1) {
		return util.Validation("grade must be between 0 and 1")
	}
	return nil
}

// upsertProgress creates the record for (user, item, type) or fills a missing completion on the
// existing one. A completion already set is never overwritten. It reports whether this call
// completed the item.
func upsertProgress(repo *repository.ProgressRepository, userID, itemID string, itemType model.ItemType, completedAt time.Time, meta map[string]interface{}) (*model.UserProgress, bool, error) {
	existing, err := repo.FindForItem(userID, itemID, itemType)
	if err != nil && !isNotFound(err) {
		return nil, false, util.Persistence("load progress", err)
	}

	if existing == nil {
		record := &model.UserProgress{
			UserID:      userID,
			ItemID:      itemID,
			ItemType:    itemType,
			CompletedAt: &completedAt,
			MetaData:    meta,
		}
		if err := repo.Create(record); err != nil {
			return nil, false, util.Persistence("create progress", err)
		}
		return record, true, nil
	}

	if existing.CompletedAt != nil {
		return existing, false, nil
	}

	existing.CompletedAt = &completedAt
	if meta != nil {
		existing.MetaData = meta
	}
	if err := repo.UpdateCompletion(existing); err != nil {
		return nil, false, util.Persistence("update progress", err)
	}
	return existing, true, nil
}

// MarkItemComplete records a module or resource as done, counts the day towards the streak and,
// for modules, pays the completion points the first time only.
func (s *ProgressService) MarkItemComplete(ctx context.Context, user *model.User, itemID string, itemType model.ItemType) (result *CompletionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "progress.MarkItemComplete",
		attribute.String("item.id", itemID),
		attribute.String("item.type", string(itemType)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	var title string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roadmaps := s.roadmaps.WithTx(tx)
		switch itemType {
		case model.ItemModule:
			module, err := roadmaps.FindModule(itemID)
			if err != nil {
				return lookupErr(err, util.ErrModuleNotFound, "load module")
			}
			title = module.Title
		case model.ItemResource:
			resource, err := roadmaps.FindResource(itemID)
			if err != nil {
				return lookupErr(err, util.ErrResourceNotFound, "load resource")
			}
			title = resource.Title
		default:
			return util.Validation("item type %q is completed through its own submission flow", itemType)
		}

		record, newly, err := upsertProgress(s.progress.WithTx(tx), user.ID, itemID, itemType, s.clock().UTC(), nil)
		if err != nil {
			return err
		}

		g := s.gamification.WithTx(tx)
		outcome := &Outcome{}

		streak, err := g.recordActivity(user)
		if err != nil {
			return err
		}
		outcome.addStreak(streak)

		if itemType == model.ItemModule && newly && s.cfg.ModuleCompletionPoints > 0 {
			award, err := g.awardPoints(user, s.cfg.ModuleCompletionPoints, Reason{
				Kind: ReasonModule,
				Text: fmt.Sprintf("Module completed: %s", title),
			})
			if err != nil {
				return err
			}
			outcome.addPoints(award)
		}

		result = &CompletionResult{Progress: record, NewlyCompleted: newly, Outcome: outcome}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.finish(ctx, user, result.Outcome)
	return result, nil
}

// SubmitQuiz scores the answers, stores the attempt and pays points, streak and badges in one transaction.
func (s *ProgressService) SubmitQuiz(ctx context.Context, user *model.User, quizID string, answers map[string][]string) (result *QuizResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "progress.SubmitQuiz", attribute.String("quiz.id", quizID))
	defer func() { tracing.EndSpan(span, err) }()

	if answers == nil {
		answers = map[string][]string{}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiz, err := s.roadmaps.WithTx(tx).FindQuizWithQuestions(quizID)
		if err != nil {
			return lookupErr(err, util.ErrQuizNotFound, "load quiz")
		}
		if err := ValidateAnswers(quiz.Questions, answers); err != nil {
			return err
		}

		if len(quiz.Questions) == 0 {
			logger.Log.Warn("Quiz has no questions, scoring as zero", zap.String("quiz_id", quiz.ID))
		}
		score := ScoreQuiz(quiz.Questions, answers)
		passed := score >= QuizPassThreshold

		raw, err := json.Marshal(answers)
		if err != nil {
			return util.Validation("answers are not serialisable: %v", err)
		}

		now := s.clock().UTC()
		attempt := &model.UserQuizAttempt{
			UserID:      user.ID,
			QuizID:      quiz.ID,
			Score:       score,
			Answers:     datatypes.JSON(raw),
			Passed:      passed,
			StartedAt:   now,
			CompletedAt: &now,
		}
		progress := s.progress.WithTx(tx)
		if err := progress.CreateAttempt(attempt); err != nil {
			return util.Persistence("create quiz attempt", err)
		}

		_, _, err = upsertProgress(progress, user.ID, quiz.ID, model.ItemQuiz, now, map[string]interface{}{
			"attempt_id": attempt.ID,
			"score":      score,
			"passed":     passed,
		})
		if err != nil {
			return err
		}

		g := s.gamification.WithTx(tx)
		outcome := &Outcome{}

		if points := QuizPoints(score, passed, quiz.PointsReward); points > 0 {
			text := fmt.Sprintf("Quiz passed: %s", quiz.Title)
			if !passed {
				text = fmt.Sprintf("Quiz partial score: %s", quiz.Title)
			}
			award, err := g.awardPoints(user, points, Reason{Kind: ReasonQuiz, Text: text})
			if err != nil {
				return err
			}
			outcome.addPoints(award)
		}

		streak, err := g.recordActivity(user)
		if err != nil {
			return err
		}
		outcome.addStreak(streak)

		if passed {
			badges := []string{BadgeQuizTaker}
			if score == 1.0 {
				badges = append(badges, BadgePerfectScore)
			}
			for _, name := range badges {
				award, err := g.checkAndAwardBadge(user, name, true)
				if err != nil {
					return err
				}
				outcome.addBadge(award)
			}
		}

		logger.Log.Info("Quiz submitted",
			zap.String("user_id", user.ID),
			zap.String("quiz_id", quiz.ID),
			zap.Float64("score", score),
			zap.Bool("passed", passed),
		)
		result = &QuizResult{Attempt: attempt, Outcome: outcome}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.QuizAttempts.WithLabelValues(strconv.FormatBool(result.Attempt.Passed)).Inc()
	s.finish(ctx, user, result.Outcome)
	return result, nil
}

// SubmitAssignment stores a submission awaiting grading and pays the submission credit.
func (s *ProgressService) SubmitAssignment(ctx context.Context, user *model.User, assignmentID string, content *string) (result *SubmissionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "progress.SubmitAssignment", attribute.String("assignment.id", assignmentID))
	defer func() { tracing.EndSpan(span, err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignment, err := s.roadmaps.WithTx(tx).FindAssignment(assignmentID)
		if err != nil {
			return lookupErr(err, util.ErrAssignmentNotFound, "load assignment")
		}

		now := s.clock().UTC()
		submission := &model.UserAssignmentSubmission{
			UserID:            user.ID,
			AssignmentID:      assignment.ID,
			SubmittedAt:       now,
			SubmissionContent: content,
			Status:            model.SubmissionSubmitted,
		}
		if err := s.submissions.WithTx(tx).Create(submission); err != nil {
			return util.Persistence("create submission", err)
		}

		_, _, err = upsertProgress(s.progress.WithTx(tx), user.ID, assignment.ID, model.ItemAssignment, now, map[string]interface{}{
			"submission_id": submission.ID,
			"status":        model.SubmissionSubmitted,
		})
		if err != nil {
			return err
		}

		g := s.gamification.WithTx(tx)
		outcome := &Outcome{}

		if credit := SubmissionCredit(assignment.PointsReward); credit > 0 {
			award, err := g.awardPoints(user, credit, Reason{
				Kind: ReasonAssignment,
				Text: fmt.Sprintf("Assignment submitted: %s", assignment.Title),
			})
			if err != nil {
				return err
			}
			outcome.addPoints(award)
		}

		streak, err := g.recordActivity(user)
		if err != nil {
			return err
		}
		outcome.addStreak(streak)

		result = &SubmissionResult{Submission: submission, Outcome: outcome}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.finish(ctx, user, result.Outcome)
	return result, nil
}

// GradeAssignment moves a submission out of the submitted state exactly once. A passed grade pays
// the rest of the reward, the high-grade bonus and the assignment badges.
func (s *ProgressService) GradeAssignment(ctx context.Context, submissionID string, in GradeInput) (result *SubmissionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "progress.GradeAssignment",
		attribute.String("submission.id", submissionID),
		attribute.String("grade.status", in.Status),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	var learner *model.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := s.submissions.WithTx(tx)
		submission, err := submissions.FindByID(submissionID)
		if err != nil {
			return lookupErr(err, util.ErrSubmissionNotFound, "load submission")
		}
		if submission.Status != model.SubmissionSubmitted {
			return util.ErrSubmissionAlreadyGraded
		}

		now := s.clock().UTC()
		submission.Status = in.Status
		submission.Grade = in.Grade
		submission.Feedback = in.Feedback
		submission.GradedAt = &now

		updated, err := submissions.MarkGraded(submission)
		if err != nil {
			return util.Persistence("grade submission", err)
		}
		if !updated {
			return util.ErrSubmissionAlreadyGraded
		}

		progress := s.progress.WithTx(tx)
		record, err := progress.FindForItem(submission.UserID, submission.AssignmentID, model.ItemAssignment)
		switch {
		case err == nil:
			if record.MetaData == nil {
				record.MetaData = datatypes.JSONMap{}
			}
			record.MetaData["status"] = in.Status
			record.MetaData["grade"] = in.Grade
			if err := progress.UpdateMeta(record); err != nil {
				return util.Persistence("update progress meta", err)
			}
		case isNotFound(err):
			logger.Log.Warn("No progress record for graded assignment",
				zap.String("assignment_id", submission.AssignmentID),
				zap.String("user_id", submission.UserID),
			)
		default:
			return util.Persistence("load progress", err)
		}

		outcome := &Outcome{}
		result = &SubmissionResult{Submission: submission, Outcome: outcome}
		if in.Status != model.SubmissionPassed {
			return nil
		}

		user, err := s.users.WithTx(tx).FindByID(submission.UserID)
		if err != nil {
			if isNotFound(err) {
				logger.Log.Warn("Graded submission belongs to a missing user", zap.String("submission_id", submission.ID))
				return nil
			}
			return util.Persistence("load user", err)
		}
		assignment, err := s.roadmaps.WithTx(tx).FindAssignment(submission.AssignmentID)
		if err != nil {
			if isNotFound(err) {
				logger.Log.Warn("Graded submission references a missing assignment", zap.String("submission_id", submission.ID))
				return nil
			}
			return util.Persistence("load assignment", err)
		}
		learner = user

		g := s.gamification.WithTx(tx)
		if points := GradingPoints(assignment.PointsReward, in.Grade); points > 0 {
			award, err := g.awardPoints(user, points, Reason{
				Kind: ReasonAssignment,
				Text: fmt.Sprintf("Assignment passed: %s", assignment.Title),
			})
			if err != nil {
				return err
			}
			outcome.addPoints(award)
		}

		badges := []string{BadgeAssignmentComplete}
		if in.Grade != nil && *in.Grade == 1.0 {
			badges = append(badges, BadgeTopMarks)
		}
		for _, name := range badges {
			award, err := g.checkAndAwardBadge(user, name, true)
			if err != nil {
				return err
			}
			outcome.addBadge(award)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if learner != nil {
		s.finish(ctx, learner, result.Outcome)
	}
	return result, nil
}

// finish runs after commit.
func (s *ProgressService) finish(ctx context.Context, user *model.User, outcome *Outcome) {
	if outcome == nil {
		return
	}
	outcome.TotalPoints = user.Points
	s.notifier.Notify(ctx, user, outcome)
}

func (s *ProgressService) ListProgress(ctx context.Context, userID string, itemType model.ItemType) ([]model.UserProgress, error) {
	if itemType != "" && !itemType.Valid() {
		return nil, util.Validation("unknown item type %q", itemType)
	}
	records, err := s.progress.WithTx(s.db.WithContext(ctx)).ListByUser(userID, itemType)
	if err != nil {
		return nil, util.Persistence("list progress", err)
	}
	return records, nil
}

func (s *ProgressService) ListQuizAttempts(ctx context.Context, userID, quizID string) ([]model.UserQuizAttempt, error) {
	attempts, err := s.progress.WithTx(s.db.WithContext(ctx)).ListAttempts(userID, quizID)
	if err != nil {
		return nil, util.Persistence("list quiz attempts", err)
	}
	return attempts, nil
}

func (s *ProgressService) ListSubmissions(ctx context.Context, userID, assignmentID string) ([]model.UserAssignmentSubmission, error) {
	submissions, err := s.submissions.WithTx(s.db.WithContext(ctx)).ListByUser(userID, assignmentID)
	if err != nil {
		return nil, util.Persistence("list submissions", err)
	}
	return submissions, nil
}

// PendingSubmissions lists submissions waiting for a grader, oldest first.
func (s *ProgressService) PendingSubmissions(ctx context.Context, offset, limit int) ([]model.UserAssignmentSubmission, error) {
	submissions, err := s.submissions.WithTx(s.db.WithContext(ctx)).ListByStatus(model.SubmissionSubmitted, offset, limit)
	if err != nil {
		return nil, util.Persistence("list pending submissions", err)
	}
	return submissions, nil
}
