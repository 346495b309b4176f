package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	secondsPerQuestion = 60
	maxExtractedTags   = 10
)

const quizDraftSystemPrompt = `You write technical screening quizzes from job descriptions.
Respond ONLY with a JSON object of this shape:
{"title": "string", "description": "string or null", "difficulty": "easy|medium|hard",
 "tags": ["string"],
 "questions": [{"text": "string", "question_type": "single_choice|multiple_choice",
   "difficulty": "easy|medium|hard", "answers": [{"text": "string", "is_correct": true}]}]}
Use 5 to 10 lowercase tags for the core skills and seniority. Write exactly 7 questions with 3 or 4 answers each.`

const tagExtractionSystemPrompt = `Extract the most relevant technical skills, tools, concepts or seniority keywords from the text.
Respond ONLY with a JSON array of at most %d lowercase strings.`

type DraftAnswer struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type DraftQuestion struct {
	Text         string             `json:"text" validate:"required"`
	QuestionType model.QuestionType `json:"question_type" validate:"required,oneof=single_choice multiple_choice"`
	Difficulty   model.Difficulty   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Answers      []DraftAnswer      `json:"answers" validate:"required,min=2,dive"`
}

// QuizDraft is the shape the model is asked to produce.
type QuizDraft struct {
	Title       string           `json:"title" validate:"required"`
	Description *string          `json:"description"`
	Difficulty  model.Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Tags        []string         `json:"tags" validate:"required,min=1,dive,required"`
	Questions   []DraftQuestion  `json:"questions" validate:"required,min=1,dive"`
}

var draftValidator = validator.New()

// stripFence unwraps a ```json fenced block if the model added one.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ParseQuizDraft decodes and validates model output. Enum values are lower-cased first.
func ParseQuizDraft(text string) (*QuizDraft, error) {
	var draft QuizDraft
	if err := json.Unmarshal([]byte(stripFence(text)), &draft); err != nil {
		return nil, fmt.Errorf("%w: quiz draft is not valid json: %w", util.ErrUpstream, err)
	}

	draft.Difficulty = model.Difficulty(strings.ToLower(string(draft.Difficulty)))
	for i := range draft.Questions {
		q := &draft.Questions[i]
		q.Difficulty = model.Difficulty(strings.ToLower(string(q.Difficulty)))
		q.QuestionType = model.QuestionType(strings.ToLower(string(q.QuestionType)))
	}
	draft.Tags = normalizeTags(draft.Tags)

	if err := draftValidator.Struct(&draft); err != nil {
		return nil, fmt.Errorf("%w: quiz draft rejected: %w", util.ErrUpstream, err)
	}
	for _, q := range draft.Questions {
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct == 0 || (q.QuestionType == model.SingleChoice && correct != 1) {
			return nil, fmt.Errorf("%w: question %q has %d correct answers", util.ErrUpstream, q.Text, correct)
		}
	}
	return &draft, nil
}

func ParseTagList(text string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(stripFence(text)), &tags); err != nil {
		return nil, fmt.Errorf("%w: tag list is not valid json: %w", util.ErrUpstream, err)
	}
	return normalizeTags(tags), nil
}

func (d *QuizDraft) toModel(jdID string) *model.GeneratedQuiz {
	quiz := &model.GeneratedQuiz{
		Title:            d.Title,
		Description:      d.Description,
		Difficulty:       d.Difficulty,
		TimeLimitSeconds: secondsPerQuestion * len(d.Questions),
		Tags:             datatypes.JSONSlice[string](d.Tags),
		SourceJDID:       &jdID,
	}
	for _, q := range d.Questions {
		question := model.GeneratedQuestion{
			Text:         q.Text,
			QuestionType: q.QuestionType,
			Difficulty:   q.Difficulty,
		}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, model.GeneratedAnswer{Text: a.Text, IsCorrect: a.IsCorrect})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

type QuizMatch struct {
	Quiz  model.GeneratedQuiz `json:"quiz"`
	Score float64             `json:"score"`
}

// MatchByTags scores each quiz by the share of query tags it carries.
// Quizzes without any shared tag are dropped; ties keep the input order.
func MatchByTags(quizzes []model.GeneratedQuiz, queryTags []string) []QuizMatch {
	query := normalizeTags(queryTags)
	if len(query) == 0 {
		return []QuizMatch{}
	}

	matches := []QuizMatch{}
	for _, quiz := range quizzes {
		have := map[string]bool{}
		for _, t := range quiz.Tags {
			have[strings.ToLower(strings.TrimSpace(t))] = true
		}
		overlap := 0
		for _, t := range query {
			if have[t] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		matches = append(matches, QuizMatch{Quiz: quiz, Score: float64(overlap) / float64(len(query))})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// QuizGenerationService turns job descriptions into stored quizzes.
type QuizGenerationService struct {
	db   *gorm.DB
	repo *repository.JobQuizRepository
	ai   Completer
}

func NewQuizGenerationService(db *gorm.DB, repo *repository.JobQuizRepository, ai Completer) *QuizGenerationService {
	return &QuizGenerationService{db: db, repo: repo, ai: ai}
}

func (s *QuizGenerationService) jobs(ctx context.Context) *repository.JobQuizRepository {
	return s.repo.WithTx(s.db.WithContext(ctx))
}

// GenerateFromJobDescription stores the text, then asks the model for a quiz and links it.
// The job description survives a failed generation so it can be retried.
func (s *QuizGenerationService) GenerateFromJobDescription(ctx context.Context, text string) (*model.JobDescription, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.Validation("job description text is required")
	}

	jd := &model.JobDescription{OriginalText: text}
	if err := s.jobs(ctx).CreateJobDescription(jd); err != nil {
		return nil, util.Persistence("create job description", err)
	}

	if _, err := s.generate(ctx, jd); err != nil {
		return jd, err
	}
	return s.GetJobDescription(ctx, jd.ID)
}

// GenerateForExisting retries generation for a stored job description.
func (s *QuizGenerationService) GenerateForExisting(ctx context.Context, jdID string) (*model.GeneratedQuiz, error) {
	jd, err := s.jobs(ctx).FindJobDescription(jdID)
	if err != nil {
		return nil, lookupErr(err, util.ErrJobDescNotFound, "load job description")
	}
	return s.generate(ctx, jd)
}

func (s *QuizGenerationService) generate(ctx context.Context, jd *model.JobDescription) (*model.GeneratedQuiz, error) {
	count, err := s.jobs(ctx).CountQuizzesForJD(jd.ID)
	if err != nil {
		return nil, util.Persistence("count generated quizzes", err)
	}
	if count > 0 {
		return nil, util.ErrQuizAlreadyGenerated
	}

	raw, err := s.ai.Complete(ctx, quizDraftSystemPrompt, "Job description:\n---\n"+jd.OriginalText+"\n---")
	if err != nil {
		logger.Log.Error("Quiz generation request failed", zap.String("jd_id", jd.ID), zap.Error(err))
		return nil, err
	}
	draft, err := ParseQuizDraft(raw)
	if err != nil {
		logger.Log.Warn("Quiz draft rejected", zap.String("jd_id", jd.ID), zap.Error(err))
		return nil, err
	}

	quiz := draft.toModel(jd.ID)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountQuizzesForJD(jd.ID)
		if err != nil {
			return util.Persistence("count generated quizzes", err)
		}
		if count > 0 {
			return util.ErrQuizAlreadyGenerated
		}
		if err := repo.CreateQuiz(quiz); err != nil {
			return util.Persistence("create generated quiz", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz generated from job description",
		zap.String("jd_id", jd.ID),
		zap.String("quiz_id", quiz.ID),
		zap.Int("questions", len(quiz.Questions)),
	)
	return quiz, nil
}

// MatchQuizzes ranks stored quizzes against tags, extracting them from text through the model when given.
func (s *QuizGenerationService) MatchQuizzes(ctx context.Context, text string, tags []string) ([]QuizMatch, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(normalizeTags(tags)) == 0 {
		return nil, util.Validation("either text or tags is required")
	}

	if text != "" {
		raw, err := s.ai.Complete(ctx, fmt.Sprintf(tagExtractionSystemPrompt, maxExtractedTags), text)
		if err != nil {
			return nil, err
		}
		extracted, err := ParseTagList(raw)
		if err != nil {
			return nil, err
		}
		tags = append(tags, extracted...)
	}

	quizzes, err := s.jobs(ctx).ListAllTagged()
	if err != nil {
		return nil, util.Persistence("list tagged quizzes", err)
	}
	return MatchByTags(quizzes, tags), nil
}

func (s *QuizGenerationService) GetJobDescription(ctx context.Context, id string) (*model.JobDescription, error) {
	jd, err := s.jobs(ctx).FindJobDescription(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrJobDescNotFound, "load job description")
	}
	return jd, nil
}

func (s *QuizGenerationService) ListJobDescriptions(ctx context.Context, offset, limit int) ([]model.JobDescription, error) {
	jds, err := s.jobs(ctx).ListJobDescriptions(offset, limit)
	if err != nil {
		return nil, util.Persistence("list job descriptions", err)
	}
	return jds, nil
}

func (s *QuizGenerationService) GetQuiz(ctx context.Context, id string) (*model.GeneratedQuiz, error) {
	quiz, err := s.jobs(ctx).FindQuiz(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrGeneratedQuizAbsent, "load generated quiz")
	}
	return quiz, nil
}

func (s *QuizGenerationService) ListQuizzes(ctx context.Context, offset, limit int) ([]model.GeneratedQuiz, error) {
	quizzes, err := s.jobs(ctx).ListQuizzes(offset, limit)
	if err != nil {
		return nil, util.Persistence("list generated quizzes", err)
	}
	return quizzes, nil
}
