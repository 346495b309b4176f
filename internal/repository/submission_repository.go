package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: tx}
}

func (r *SubmissionRepository) Create(submission *model.UserAssignmentSubmission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.UserAssignmentSubmission, error) {
	var submission model.UserAssignmentSubmission
	if err := r.DB.Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// MarkGraded writes the grading outcome only while the row is still in submitted state.
// It reports false when another grader got there first.
func (r *SubmissionRepository) MarkGraded(submission *model.UserAssignmentSubmission) (bool, error) {
	result := r.DB.Model(&model.UserAssignmentSubmission{}).
		Where("id = ? AND status = ?", submission.ID, model.SubmissionSubmitted).
		Updates(map[string]interface{}{
			"status":    submission.Status,
			"grade":     submission.Grade,
			"feedback":  submission.Feedback,
			"graded_at": submission.GradedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SubmissionRepository) ListByUser(userID, assignmentID string) ([]model.UserAssignmentSubmission, error) {
	var submissions []model.UserAssignmentSubmission
	query := r.DB.Where("user_id = ?", userID)
	if assignmentID != "" {
		query = query.Where("assignment_id = ?", assignmentID)
	}
	err := query.Order("submitted_at DESC").Find(&submissions).Error
	return submissions, err
}

func (r *SubmissionRepository) ListByStatus(status string, offset, limit int) ([]model.UserAssignmentSubmission, error) {
	var submissions []model.UserAssignmentSubmission
	query := r.DB.Preload("Assignment")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("submitted_at ASC").Offset(offset).Limit(limit).Find(&submissions).Error
	return submissions, err
}
