package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoadmapRepository struct {
	DB *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: db}
}

func (r *RoadmapRepository) WithTx(tx *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: tx}
}

// CreateTree inserts the roadmap with every nested module, resource, assignment, quiz and question.
func (r *RoadmapRepository) CreateTree(roadmap *model.Roadmap) error {
	return r.DB.Create(roadmap).Error
}

func (r *RoadmapRepository) List(topic string, activeOnly bool, offset, limit int) ([]model.Roadmap, int64, error) {
	var roadmaps []model.Roadmap
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if topic != "" {
			db = db.Where("topic = ?", topic)
		}
		if activeOnly {
			db = db.Where("is_active = ?", true)
		}
		return db
	}

	if err := r.DB.Model(&model.Roadmap{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Scopes(filter).Order("created_at DESC").Offset(offset).Limit(limit).Find(&roadmaps).Error
	return roadmaps, total, err
}

func (r *RoadmapRepository) FindByID(id string) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	if err := r.DB.Where("id = ?", id).First(&roadmap).Error; err != nil {
		return nil, err
	}
	return &roadmap, nil
}

// FindTree preloads the whole roadmap in display order.
func (r *RoadmapRepository) FindTree(id string) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	byOrder := func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }
	err := r.DB.
		Preload("Modules", byOrder).
		Preload("Modules.Resources", byOrder).
		Preload("Modules.Assignments").
		Preload("Modules.Quizzes").
		Preload("Modules.Quizzes.Questions", byOrder).
		Where("id = ?", id).
		First(&roadmap).Error
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (r *RoadmapRepository) UpdateRoadmap(roadmap *model.Roadmap) error {
	return r.DB.Model(roadmap).Omit(clause.Associations).
		Select("title", "description", "topic", "is_active").
		Updates(roadmap).Error
}

// DeleteRoadmap removes the roadmap and everything below it.
func (r *RoadmapRepository) DeleteRoadmap(id string) error {
	var moduleIDs []string
	if err := r.DB.Model(&model.RoadmapModule{}).Where("roadmap_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
		return err
	}
	if err := r.deleteModules(moduleIDs); err != nil {
		return err
	}
	return r.DB.Where("id = ?", id).Delete(&model.Roadmap{}).Error
}

func (r *RoadmapRepository) deleteModules(moduleIDs []string) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	var quizIDs []string
	if err := r.DB.Model(&model.Quiz{}).Where("module_id IN ?", moduleIDs).Pluck("id", &quizIDs).Error; err != nil {
		return err
	}
	if err := r.deleteQuizzes(quizIDs); err != nil {
		return err
	}
	if err := r.DB.Where("module_id IN ?", moduleIDs).Delete(&model.LearningResource{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("module_id IN ?", moduleIDs).Delete(&model.Assignment{}).Error; err != nil {
		return err
	}
	return r.DB.Where("id IN ?", moduleIDs).Delete(&model.RoadmapModule{}).Error
}

func (r *RoadmapRepository) deleteQuizzes(quizIDs []string) error {
	if len(quizIDs) == 0 {
		return nil
	}
	if err := r.DB.Where("quiz_id IN ?", quizIDs).Delete(&model.QuizQuestion{}).Error; err != nil {
		return err
	}
	return r.DB.Where("id IN ?", quizIDs).Delete(&model.Quiz{}).Error
}

func (r *RoadmapRepository) CreateModule(module *model.RoadmapModule) error {
	return r.DB.Create(module).Error
}

func (r *RoadmapRepository) FindModule(id string) (*model.RoadmapModule, error) {
	var module model.RoadmapModule
	if err := r.DB.Where("id = ?", id).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *RoadmapRepository) UpdateModule(module *model.RoadmapModule) error {
	return r.DB.Model(module).Omit(clause.Associations).Select("title", "sort_order").Updates(module).Error
}

func (r *RoadmapRepository) DeleteModule(id string) error {
	return r.deleteModules([]string{id})
}

func (r *RoadmapRepository) CreateResource(resource *model.LearningResource) error {
	return r.DB.Create(resource).Error
}

func (r *RoadmapRepository) FindResource(id string) (*model.LearningResource, error) {
	var resource model.LearningResource
	if err := r.DB.Where("id = ?", id).First(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *RoadmapRepository) UpdateResource(resource *model.LearningResource) error {
	return r.DB.Model(resource).
		Select("title", "type", "url", "content", "sort_order", "estimated_time_minutes").
		Updates(resource).Error
}

func (r *RoadmapRepository) DeleteResource(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.LearningResource{}).Error
}

func (r *RoadmapRepository) CreateAssignment(assignment *model.Assignment) error {
	return r.DB.Create(assignment).Error
}

func (r *RoadmapRepository) FindAssignment(id string) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.DB.Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *RoadmapRepository) UpdateAssignment(assignment *model.Assignment) error {
	return r.DB.Model(assignment).Select("title", "description", "points_reward").Updates(assignment).Error
}

func (r *RoadmapRepository) DeleteAssignment(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Assignment{}).Error
}

func (r *RoadmapRepository) CreateQuiz(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *RoadmapRepository) FindQuiz(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.Where("id = ?", id).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindQuizWithQuestions loads the quiz definition used for scoring.
func (r *RoadmapRepository) FindQuizWithQuestions(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("id = ?", id).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *RoadmapRepository) UpdateQuiz(quiz *model.Quiz) error {
	return r.DB.Model(quiz).Omit(clause.Associations).Select("title", "points_reward").Updates(quiz).Error
}

func (r *RoadmapRepository) DeleteQuiz(id string) error {
	return r.deleteQuizzes([]string{id})
}

func (r *RoadmapRepository) CreateQuestion(question *model.QuizQuestion) error {
	return r.DB.Create(question).Error
}

func (r *RoadmapRepository) FindQuestion(id string) (*model.QuizQuestion, error) {
	var question model.QuizQuestion
	if err := r.DB.Where("id = ?", id).First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *RoadmapRepository) UpdateQuestion(question *model.QuizQuestion) error {
	return r.DB.Model(question).
		Select("question_text", "options", "correct_option_keys", "ai_hint", "sort_order").
		Updates(question).Error
}

func (r *RoadmapRepository) DeleteQuestion(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.QuizQuestion{}).Error
}
