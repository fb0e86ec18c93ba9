package service

import (
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/repository"
	"interview_coach_backend/internal/util"
)

// QuestionService 题库管理（管理员维护，会话创建时按类别/难度抽题）
type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

type QuestionRequest struct {
	Content    string                 `json:"content" binding:"required"`
	Category   model.QuestionCategory `json:"category" binding:"required"`
	Difficulty model.Difficulty       `json:"difficulty"`
	TargetRole string                 `json:"targetRole"`
	Tags       string                 `json:"tags"`
	Enabled    *bool                  `json:"enabled"`
}

func (s *QuestionService) validate(req QuestionRequest) error {
	if !model.ValidQuestionCategory(req.Category) {
		return util.NewValidationError("category", string(req.Category),
			"technical", "behavioral", "situational", "problem_solving", "communication")
	}
	if req.Difficulty != "" && !model.ValidDifficulty(req.Difficulty) {
		return util.NewValidationError("difficulty", string(req.Difficulty), "easy", "medium", "hard")
	}
	return nil
}

func (s *QuestionService) Create(req QuestionRequest) (*model.InterviewQuestion, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	q := &model.InterviewQuestion{
		Content:    req.Content,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		TargetRole: req.TargetRole,
		Tags:       req.Tags,
		Enabled:    true,
	}
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	if req.Enabled != nil {
		q.Enabled = *req.Enabled
	}

	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Get(id uint) (*model.InterviewQuestion, error) {
	return s.Repo.FindByID(id)
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.InterviewQuestion, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	q, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	q.Content = req.Content
	q.Category = req.Category
	if req.Difficulty != "" {
		q.Difficulty = req.Difficulty
	}
	q.TargetRole = req.TargetRole
	q.Tags = req.Tags
	if req.Enabled != nil {
		q.Enabled = *req.Enabled
	}

	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

func (s *QuestionService) List(category model.QuestionCategory, difficulty model.Difficulty, page, limit int) ([]model.InterviewQuestion, int64, error) {
	return s.Repo.List(category, difficulty, page, limit)
}
