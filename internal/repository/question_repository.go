package repository

import (
	"errors"

	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.InterviewQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.InterviewQuestion, error) {
	var q model.InterviewQuestion
	if err := r.DB.First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) Update(q *model.InterviewQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.InterviewQuestion{}, id).Error
}

func (r *QuestionRepository) List(category model.QuestionCategory, difficulty model.Difficulty, page, limit int) ([]model.InterviewQuestion, int64, error) {
	var qs []model.InterviewQuestion
	var total int64

	query := r.DB.Model(&model.InterviewQuestion{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// GetQuestions 随机抽取指定类别/难度的启用题目，供会话创建使用
func (r *QuestionRepository) GetQuestions(categories []model.QuestionCategory, difficulty model.Difficulty, count int) ([]model.InterviewQuestion, error) {
	var qs []model.InterviewQuestion

	query := r.DB.Where("enabled = ?", true)
	if len(categories) > 0 {
		query = query.Where("category IN ?", categories)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	err := query.Order("RAND()").Limit(count).Find(&qs).Error
	return qs, err
}
