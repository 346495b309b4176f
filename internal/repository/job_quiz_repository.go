package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type JobQuizRepository struct {
	DB *gorm.DB
}

func NewJobQuizRepository(db *gorm.DB) *JobQuizRepository {
	return &JobQuizRepository{DB: db}
}

func (r *JobQuizRepository) WithTx(tx *gorm.DB) *JobQuizRepository {
	return &JobQuizRepository{DB: tx}
}

func (r *JobQuizRepository) CreateJobDescription(jd *model.JobDescription) error {
	return r.DB.Create(jd).Error
}

func (r *JobQuizRepository) FindJobDescription(id string) (*model.JobDescription, error) {
	var jd model.JobDescription
	err := r.DB.Preload("GeneratedQuiz").Where("id = ?", id).First(&jd).Error
	if err != nil {
		return nil, err
	}
	return &jd, nil
}

func (r *JobQuizRepository) ListJobDescriptions(offset, limit int) ([]model.JobDescription, error) {
	var jds []model.JobDescription
	err := r.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&jds).Error
	return jds, err
}

func (r *JobQuizRepository) CountQuizzesForJD(jdID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.GeneratedQuiz{}).Where("source_jd_id = ?", jdID).Count(&count).Error
	return count, err
}

// CreateQuiz stores the quiz with its questions and answers.
func (r *JobQuizRepository) CreateQuiz(quiz *model.GeneratedQuiz) error {
	return r.DB.Create(quiz).Error
}

func (r *JobQuizRepository) FindQuiz(id string) (*model.GeneratedQuiz, error) {
	var quiz model.GeneratedQuiz
	err := r.DB.
		Preload("Questions").
		Preload("Questions.Answers").
		Where("id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *JobQuizRepository) ListQuizzes(offset, limit int) ([]model.GeneratedQuiz, error) {
	var quizzes []model.GeneratedQuiz
	err := r.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&quizzes).Error
	return quizzes, err
}

// ListAllTagged returns every quiz carrying tags; matching happens in memory.
func (r *JobQuizRepository) ListAllTagged() ([]model.GeneratedQuiz, error) {
	var quizzes []model.GeneratedQuiz
	err := r.DB.Where("tags IS NOT NULL").Order("created_at DESC").Find(&quizzes).Error
	return quizzes, err
}
