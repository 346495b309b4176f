package service

import (
	"context"
	"strings"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionRequest struct {
	QuestionText      string            `json:"questionText"`
	Options           map[string]string `json:"options"`
	CorrectOptionKeys []string          `json:"correctOptionKeys"`
	AIHint            *string           `json:"aiHint"`
	Order             int               `json:"order"`
}

type QuizRequest struct {
	Title        string            `json:"title"`
	PointsReward int               `json:"pointsReward"`
	Questions    []QuestionRequest `json:"questions"`
}

type AssignmentRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PointsReward int    `json:"pointsReward"`
}

type ResourceRequest struct {
	Title                string  `json:"title"`
	Type                 string  `json:"type"`
	URL                  *string `json:"url"`
	Content              *string `json:"content"`
	Order                int     `json:"order"`
	EstimatedTimeMinutes *int    `json:"estimatedTimeMinutes"`
}

type ModuleRequest struct {
	Title       string              `json:"title"`
	Order       int                 `json:"order"`
	Resources   []ResourceRequest   `json:"learningResources"`
	Assignments []AssignmentRequest `json:"assignments"`
	Quizzes     []QuizRequest       `json:"quizzes"`
}

type CreateRoadmapRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Topic       string          `json:"topic"`
	IsActive    *bool           `json:"isActive"`
	Modules     []ModuleRequest `json:"modules"`
}

// Patch types: nil fields are left untouched.

type RoadmapPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Topic       *string `json:"topic"`
	IsActive    *bool   `json:"isActive"`
}

type ModulePatch struct {
	Title *string `json:"title"`
	Order *int    `json:"order"`
}

type ResourcePatch struct {
	Title                *string `json:"title"`
	Type                 *string `json:"type"`
	URL                  *string `json:"url"`
	Content              *string `json:"content"`
	Order                *int    `json:"order"`
	EstimatedTimeMinutes *int    `json:"estimatedTimeMinutes"`
}

type AssignmentPatch struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	PointsReward *int    `json:"pointsReward"`
}

type QuizPatch struct {
	Title        *string `json:"title"`
	PointsReward *int    `json:"pointsReward"`
}

type QuestionPatch struct {
	QuestionText      *string            `json:"questionText"`
	Options           *map[string]string `json:"options"`
	CorrectOptionKeys *[]string          `json:"correctOptionKeys"`
	AIHint            *string            `json:"aiHint"`
	Order             *int               `json:"order"`
}

func requireTitle(kind, title string) error {
	if strings.TrimSpace(title) == "" {
		return util.Validation("%s title is required", kind)
	}
	return nil
}

func requireReward(kind string, reward int) error {
	if reward < 0 {
		return util.Validation("%s pointsReward must not be negative", kind)
	}
	return nil
}

func validateQuestion(q *model.QuizQuestion) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return util.Validation("question text is required")
	}
	if len(q.Options) == 0 {
		return util.Validation("question %q has no options", q.QuestionText)
	}
	if len(q.CorrectOptionKeys) == 0 {
		return util.Validation("question %q has no correct option", q.QuestionText)
	}
	for _, key := range q.CorrectOptionKeys {
		if _, ok := q.Options[key]; !ok {
			return util.Validation("correct option %q is not one of the options of %q", key, q.QuestionText)
		}
	}
	return nil
}

func optionsMap(options map[string]string) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	for k, v := range options {
		m[k] = v
	}
	return m
}

func buildQuestion(req QuestionRequest) (model.QuizQuestion, error) {
	q := model.QuizQuestion{
		QuestionText:      strings.TrimSpace(req.QuestionText),
		Options:           optionsMap(req.Options),
		CorrectOptionKeys: datatypes.JSONSlice[string](req.CorrectOptionKeys),
		AIHint:            req.AIHint,
		Order:             req.Order,
	}
	return q, validateQuestion(&q)
}

func buildQuiz(req QuizRequest) (model.Quiz, error) {
	if err := requireTitle("quiz", req.Title); err != nil {
		return model.Quiz{}, err
	}
	if err := requireReward("quiz", req.PointsReward); err != nil {
		return model.Quiz{}, err
	}
	quiz := model.Quiz{Title: strings.TrimSpace(req.Title), PointsReward: req.PointsReward}
	for _, qr := range req.Questions {
		q, err := buildQuestion(qr)
		if err != nil {
			return model.Quiz{}, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, nil
}

func buildAssignment(req AssignmentRequest) (model.Assignment, error) {
	if err := requireTitle("assignment", req.Title); err != nil {
		return model.Assignment{}, err
	}
	if err := requireReward("assignment", req.PointsReward); err != nil {
		return model.Assignment{}, err
	}
	return model.Assignment{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		PointsReward: req.PointsReward,
	}, nil
}

func buildResource(req ResourceRequest) (model.LearningResource, error) {
	if err := requireTitle("resource", req.Title); err != nil {
		return model.LearningResource{}, err
	}
	if req.EstimatedTimeMinutes != nil && *req.EstimatedTimeMinutes < 0 {
		return model.LearningResource{}, util.Validation("estimatedTimeMinutes must not be negative")
	}
	return model.LearningResource{
		Title:                strings.TrimSpace(req.Title),
		Type:                 req.Type,
		URL:                  req.URL,
		Content:              req.Content,
		Order:                req.Order,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
	}, nil
}

func buildModule(req ModuleRequest) (model.RoadmapModule, error) {
	if err := requireTitle("module", req.Title); err != nil {
		return model.RoadmapModule{}, err
	}
	module := model.RoadmapModule{Title: strings.TrimSpace(req.Title), Order: req.Order}
	for _, rr := range req.Resources {
		r, err := buildResource(rr)
		if err != nil {
			return model.RoadmapModule{}, err
		}
		module.Resources = append(module.Resources, r)
	}
	for _, ar := range req.Assignments {
		a, err := buildAssignment(ar)
		if err != nil {
			return model.RoadmapModule{}, err
		}
		module.Assignments = append(module.Assignments, a)
	}
	for _, qr := range req.Quizzes {
		q, err := buildQuiz(qr)
		if err != nil {
			return model.RoadmapModule{}, err
		}
		module.Quizzes = append(module.Quizzes, q)
	}
	return module, nil
}

// HideAnswers strips correct option keys so the tree can be shown to learners.
func HideAnswers(roadmap *model.Roadmap) {
	for i := range roadmap.Modules {
		for j := range roadmap.Modules[i].Quizzes {
			HideQuizAnswers(&roadmap.Modules[i].Quizzes[j])
		}
	}
}

func HideQuizAnswers(quiz *model.Quiz) {
	for k := range quiz.Questions {
		quiz.Questions[k].CorrectOptionKeys = nil
	}
}

// RoadmapService manages learning content. Learners only read it.
type RoadmapService struct {
	db       *gorm.DB
	roadmaps *repository.RoadmapRepository
}

func NewRoadmapService(db *gorm.DB, roadmaps *repository.RoadmapRepository) *RoadmapService {
	return &RoadmapService{db: db, roadmaps: roadmaps}
}

func (s *RoadmapService) repo(ctx context.Context) *repository.RoadmapRepository {
	return s.roadmaps.WithTx(s.db.WithContext(ctx))
}

func (s *RoadmapService) CreateRoadmap(ctx context.Context, req CreateRoadmapRequest) (*model.Roadmap, error) {
	if err := requireTitle("roadmap", req.Title); err != nil {
		return nil, err
	}
	roadmap := &model.Roadmap{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Topic:       strings.TrimSpace(req.Topic),
		IsActive:    true,
	}
	if req.IsActive != nil {
		roadmap.IsActive = *req.IsActive
	}
	for _, mr := range req.Modules {
		m, err := buildModule(mr)
		if err != nil {
			return nil, err
		}
		roadmap.Modules = append(roadmap.Modules, m)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.roadmaps.WithTx(tx).CreateTree(roadmap); err != nil {
			return util.Persistence("create roadmap", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Roadmap created", zap.String("roadmap_id", roadmap.ID), zap.Int("modules", len(roadmap.Modules)))
	return s.GetRoadmap(ctx, roadmap.ID)
}

func (s *RoadmapService) GetRoadmap(ctx context.Context, id string) (*model.Roadmap, error) {
	roadmap, err := s.repo(ctx).FindTree(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrRoadmapNotFound, "load roadmap")
	}
	return roadmap, nil
}

func (s *RoadmapService) ListRoadmaps(ctx context.Context, topic string, activeOnly bool, offset, limit int) ([]model.Roadmap, int64, error) {
	roadmaps, total, err := s.repo(ctx).List(topic, activeOnly, offset, limit)
	if err != nil {
		return nil, 0, util.Persistence("list roadmaps", err)
	}
	return roadmaps, total, nil
}

func (s *RoadmapService) UpdateRoadmap(ctx context.Context, id string, patch RoadmapPatch) (*model.Roadmap, error) {
	repo := s.repo(ctx)
	roadmap, err := repo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrRoadmapNotFound, "load roadmap")
	}
	if patch.Title != nil {
		roadmap.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		roadmap.Description = *patch.Description
	}
	if patch.Topic != nil {
		roadmap.Topic = strings.TrimSpace(*patch.Topic)
	}
	if patch.IsActive != nil {
		roadmap.IsActive = *patch.IsActive
	}
	if err := requireTitle("roadmap", roadmap.Title); err != nil {
		return nil, err
	}
	if err := repo.UpdateRoadmap(roadmap); err != nil {
		return nil, util.Persistence("update roadmap", err)
	}
	return roadmap, nil
}

func (s *RoadmapService) DeleteRoadmap(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.roadmaps.WithTx(tx)
		if _, err := repo.FindByID(id); err != nil {
			return lookupErr(err, util.ErrRoadmapNotFound, "load roadmap")
		}
		if err := repo.DeleteRoadmap(id); err != nil {
			return util.Persistence("delete roadmap", err)
		}
		return nil
	})
}

func (s *RoadmapService) AddModule(ctx context.Context, roadmapID string, req ModuleRequest) (*model.RoadmapModule, error) {
	module, err := buildModule(req)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.roadmaps.WithTx(tx)
		if _, err := repo.FindByID(roadmapID); err != nil {
			return lookupErr(err, util.ErrRoadmapNotFound, "load roadmap")
		}
		module.RoadmapID = roadmapID
		if err := repo.CreateModule(&module); err != nil {
			return util.Persistence("create module", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (s *RoadmapService) UpdateModule(ctx context.Context, id string, patch ModulePatch) (*model.RoadmapModule, error) {
	repo := s.repo(ctx)
	module, err := repo.FindModule(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrModuleNotFound, "load module")
	}
	if patch.Title != nil {
		module.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Order != nil {
		module.Order = *patch.Order
	}
	if err := requireTitle("module", module.Title); err != nil {
		return nil, err
	}
	if err := repo.UpdateModule(module); err != nil {
		return nil, util.Persistence("update module", err)
	}
	return module, nil
}

func (s *RoadmapService) DeleteModule(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.roadmaps.WithTx(tx)
		if _, err := repo.FindModule(id); err != nil {
			return lookupErr(err, util.ErrModuleNotFound, "load module")
		}
		if err := repo.DeleteModule(id); err != nil {
			return util.Persistence("delete module", err)
		}
		return nil
	})
}

func (s *RoadmapService) AddResource(ctx context.Context, moduleID string, req ResourceRequest) (*model.LearningResource, error) {
	resource, err := buildResource(req)
	if err != nil {
		return nil, err
	}
	repo := s.repo(ctx)
	if _, err := repo.FindModule(moduleID); err != nil {
		return nil, lookupErr(err, util.ErrModuleNotFound, "load module")
	}
	resource.ModuleID = moduleID
	if err := repo.CreateResource(&resource); err != nil {
		return nil, util.Persistence("create resource", err)
	}
	return &resource, nil
}

func (s *RoadmapService) UpdateResource(ctx context.Context, id string, patch ResourcePatch) (*model.LearningResource, error) {
	repo := s.repo(ctx)
	resource, err := repo.FindResource(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrResourceNotFound, "load resource")
	}
	if patch.Title != nil {
		resource.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Type != nil {
		resource.Type = *patch.Type
	}
	if patch.URL != nil {
		resource.URL = patch.URL
	}
	if patch.Content != nil {
		resource.Content = patch.Content
	}
	if patch.Order != nil {
		resource.Order = *patch.Order
	}
	if patch.EstimatedTimeMinutes != nil {
		if *patch.EstimatedTimeMinutes < 0 {
			return nil, util.Validation("estimatedTimeMinutes must not be negative")
		}
		resource.EstimatedTimeMinutes = patch.EstimatedTimeMinutes
	}
	if err := requireTitle("resource", resource.Title); err != nil {
		return nil, err
	}
	if err := repo.UpdateResource(resource); err != nil {
		return nil, util.Persistence("update resource", err)
	}
	return resource, nil
}

func (s *RoadmapService) DeleteResource(ctx context.Context, id string) error {
	repo := s.repo(ctx)
	if _, err := repo.FindResource(id); err != nil {
		return lookupErr(err, util.ErrResourceNotFound, "load resource")
	}
	if err := repo.DeleteResource(id); err != nil {
		return util.Persistence("delete resource", err)
	}
	return nil
}

func (s *RoadmapService) AddAssignment(ctx context.Context, moduleID string, req AssignmentRequest) (*model.Assignment, error) {
	assignment, err := buildAssignment(req)
	if err != nil {
		return nil, err
	}
	repo := s.repo(ctx)
	if _, err := repo.FindModule(moduleID); err != nil {
		return nil, lookupErr(err, util.ErrModuleNotFound, "load module")
	}
	assignment.ModuleID = moduleID
	if err := repo.CreateAssignment(&assignment); err != nil {
		return nil, util.Persistence("create assignment", err)
	}
	return &assignment, nil
}

func (s *RoadmapService) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	assignment, err := s.repo(ctx).FindAssignment(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrAssignmentNotFound, "load assignment")
	}
	return assignment, nil
}

func (s *RoadmapService) UpdateAssignment(ctx context.Context, id string, patch AssignmentPatch) (*model.Assignment, error) {
	repo := s.repo(ctx)
	assignment, err := repo.FindAssignment(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrAssignmentNotFound, "load assignment")
	}
	if patch.Title != nil {
		assignment.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		assignment.Description = *patch.Description
	}
	if patch.PointsReward != nil {
		assignment.PointsReward = *patch.PointsReward
	}
	if err := requireTitle("assignment", assignment.Title); err != nil {
		return nil, err
	}
	if err := requireReward("assignment", assignment.PointsReward); err != nil {
		return nil, err
	}
	if err := repo.UpdateAssignment(assignment); err != nil {
		return nil, util.Persistence("update assignment", err)
	}
	return assignment, nil
}

func (s *RoadmapService) DeleteAssignment(ctx context.Context, id string) error {
	repo := s.repo(ctx)
	if _, err := repo.FindAssignment(id); err != nil {
		return lookupErr(err, util.ErrAssignmentNotFound, "load assignment")
	}
	if err := repo.DeleteAssignment(id); err != nil {
		return util.Persistence("delete assignment", err)
	}
	return nil
}

func (s *RoadmapService) AddQuiz(ctx context.Context, moduleID string, req QuizRequest) (*model.Quiz, error) {
	quiz, err := buildQuiz(req)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.roadmaps.WithTx(tx)
		if _, err := repo.FindModule(moduleID); err != nil {
			return lookupErr(err, util.ErrModuleNotFound, "load module")
		}
		quiz.ModuleID = moduleID
		if err := repo.CreateQuiz(&quiz); err != nil {
			return util.Persistence("create quiz", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *RoadmapService) GetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	quiz, err := s.repo(ctx).FindQuizWithQuestions(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrQuizNotFound, "load quiz")
	}
	return quiz, nil
}

func (s *RoadmapService) UpdateQuiz(ctx context.Context, id string, patch QuizPatch) (*model.Quiz, error) {
	repo := s.repo(ctx)
	quiz, err := repo.FindQuiz(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrQuizNotFound, "load quiz")
	}
	if patch.Title != nil {
		quiz.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.PointsReward != nil {
		quiz.PointsReward = *patch.PointsReward
	}
	if err := requireTitle("quiz", quiz.Title); err != nil {
		return nil, err
	}
	if err := requireReward("quiz", quiz.PointsReward); err != nil {
		return nil, err
	}
	if err := repo.UpdateQuiz(quiz); err != nil {
		return nil, util.Persistence("update quiz", err)
	}
	return quiz, nil
}

func (s *RoadmapService) DeleteQuiz(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.roadmaps.WithTx(tx)
		if _, err := repo.FindQuiz(id); err != nil {
			return lookupErr(err, util.ErrQuizNotFound, "load quiz")
		}
		if err := repo.DeleteQuiz(id); err != nil {
			return util.Persistence("delete quiz", err)
		}
		return nil
	})
}

func (s *RoadmapService) AddQuestion(ctx context.Context, quizID string, req QuestionRequest) (*model.QuizQuestion, error) {
	question, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}
	repo := s.repo(ctx)
	if _, err := repo.FindQuiz(quizID); err != nil {
		return nil, lookupErr(err, util.ErrQuizNotFound, "load quiz")
	}
	question.QuizID = quizID
	if err := repo.CreateQuestion(&question); err != nil {
		return nil, util.Persistence("create question", err)
	}
	return &question, nil
}

func (s *RoadmapService) UpdateQuestion(ctx context.Context, id string, patch QuestionPatch) (*model.QuizQuestion, error) {
	repo := s.repo(ctx)
	question, err := repo.FindQuestion(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrQuestionNotFound, "load question")
	}
	if patch.QuestionText != nil {
		question.QuestionText = strings.TrimSpace(*patch.QuestionText)
	}
	if patch.Options != nil {
		question.Options = optionsMap(*patch.Options)
	}
	if patch.CorrectOptionKeys != nil {
		question.CorrectOptionKeys = datatypes.JSONSlice[string](*patch.CorrectOptionKeys)
	}
	if patch.AIHint != nil {
		question.AIHint = patch.AIHint
	}
	if patch.Order != nil {
		question.Order = *patch.Order
	}
	if err := validateQuestion(question); err != nil {
		return nil, err
	}
	if err := repo.UpdateQuestion(question); err != nil {
		return nil, util.Persistence("update question", err)
	}
	return question, nil
}

func (s *RoadmapService) DeleteQuestion(ctx context.Context, id string) error {
	repo := s.repo(ctx)
	if _, err := repo.FindQuestion(id); err != nil {
		return lookupErr(err, util.ErrQuestionNotFound, "load question")
	}
	if err := repo.DeleteQuestion(id); err != nil {
		return util.Persistence("delete question", err)
	}
	return nil
}
