package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotInProgress = errors.New("session is not in progress")
	ErrSessionAlreadyActive = errors.New("user already has a session in progress")
	ErrQuestionNotFound     = errors.New("question not found in session")
	ErrAlreadyAnswered      = errors.New("question already answered")
	ErrAlreadyCompleted     = errors.New("session already completed")
	ErrNoQuestionsAvailable = errors.New("no questions available for the requested category and difficulty")
)

// 对外暴露的错误码，随错误响应返回
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeSessionAlreadyActive = "SESSION_ALREADY_ACTIVE"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeSessionNotInProgress = "SESSION_NOT_IN_PROGRESS"
	CodeQuestionNotFound     = "QUESTION_NOT_FOUND"
	CodeAlreadyAnswered      = "ALREADY_ANSWERED"
	CodeAlreadyCompleted     = "ALREADY_COMPLETED"
)

// ValidationError 枚举字段校验失败，携带字段名与允许的取值
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q, allowed values: %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func NewValidationError(field, value string, allowed ...string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Allowed: allowed}
}

// ErrorCode 将领域错误映射为对外错误码，非领域错误返回空串（基础设施错误）
func ErrorCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CodeValidationError
	}
	switch {
	case errors.Is(err, ErrSessionAlreadyActive):
		return CodeSessionAlreadyActive
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrSessionNotInProgress):
		return CodeSessionNotInProgress
	case errors.Is(err, ErrQuestionNotFound):
		return CodeQuestionNotFound
	case errors.Is(err, ErrAlreadyAnswered):
		return CodeAlreadyAnswered
	case errors.Is(err, ErrAlreadyCompleted):
		return CodeAlreadyCompleted
	case errors.Is(err, ErrNoQuestionsAvailable):
		return CodeValidationError
	}
	return ""
}
