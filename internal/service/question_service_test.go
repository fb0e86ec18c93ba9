package service

import (
	"testing"

	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestQuestionRequestValidation(t *testing.T) {
	// 校验在触达存储之前完成
	svc := NewQuestionService(nil)

	_, err := svc.Create(QuestionRequest{Content: "What is a mutex?", Category: "trivia"})
	assert.Equal(t, util.CodeValidationError, util.ErrorCode(err))

	_, err = svc.Create(QuestionRequest{Content: "What is a mutex?", Category: model.CategoryTechnical, Difficulty: "nightmare"})
	assert.Equal(t, util.CodeValidationError, util.ErrorCode(err))

	_, err = svc.Update(1, QuestionRequest{Content: "x", Category: "trivia"})
	assert.Equal(t, util.CodeValidationError, util.ErrorCode(err))

	assert.NoError(t, svc.validate(QuestionRequest{Content: "x", Category: model.CategoryBehavioral}))
	assert.NoError(t, svc.validate(QuestionRequest{Content: "x", Category: model.CategoryBehavioral, Difficulty: model.DifficultyHard}))
}
