package repository

import (
	"testing"
	"time"

	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.InterviewSession{}, &model.SessionQuestion{}))
	return db
}

func seedSession(t *testing.T, repo *SessionRepository, userID uint) *model.InterviewSession {
	t.Helper()
	activeKey := "1"
	session := &model.InterviewSession{
		UserID:         userID,
		SessionType:    model.SessionBehavioral,
		Difficulty:     model.DifficultyMedium,
		ActiveKey:      &activeKey,
		Status:         model.StatusInProgress,
		LastActivityAt: time.Now(),
		Questions: []model.SessionQuestion{
			{QuestionID: 1, QuestionText: "Tell me about a conflict you resolved.", Category: model.CategoryBehavioral, OrderNum: 1},
			{QuestionID: 2, QuestionText: "Describe a project you led.", Category: model.CategoryBehavioral, OrderNum: 2},
		},
	}
	session.ID = model.GenerateUUID()
	for i := range session.Questions {
		session.Questions[i].SessionID = session.ID
	}
	require.NoError(t, repo.CreateWithActiveGuard(session))
	return session
}

func TestMarkQuestionAnsweredStoresListsAsJSON(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	session := seedSession(t, repo, 1)

	q := session.Questions[0]
	q.AnswerText = "I organized a review and we aligned on priorities."
	q.TimeSpent = 90
	q.Score = 7.5
	q.FeedbackContent = "Good answer with clear reasoning."
	q.Strengths = model.StringList{"clear delivery", "confident language"}
	q.Improvements = model.StringList{"add more detail", "quantify the outcome"}

	require.NoError(t, repo.MarkQuestionAnswered(&q))

	// 多元素列表经 json 序列化落库，读回无损
	loaded, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 2)
	got := loaded.Questions[0]
	assert.True(t, got.IsAnswered)
	assert.Equal(t, q.AnswerText, got.AnswerText)
	assert.InDelta(t, 7.5, got.Score, 0.001)
	assert.Equal(t, model.StringList{"clear delivery", "confident language"}, got.Strengths)
	assert.Equal(t, model.StringList{"add more detail", "quantify the outcome"}, got.Improvements)
	assert.False(t, loaded.Questions[1].IsAnswered)

	// 重复提交命中 is_answered 条件，不生效
	assert.ErrorIs(t, repo.MarkQuestionAnswered(&q), util.ErrAlreadyAnswered)
}

func TestMarkQuestionAnsweredSingleElementList(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	session := seedSession(t, repo, 1)

	q := session.Questions[1]
	q.AnswerText = "Short answer."
	q.Strengths = model.StringList{"direct communication"}

	require.NoError(t, repo.MarkQuestionAnswered(&q))

	loaded, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"direct communication"}, loaded.Questions[1].Strengths)
	assert.Empty(t, loaded.Questions[1].Improvements)
}

func TestUpdateQuestionFeedbackSerializesLists(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	session := seedSession(t, repo, 1)

	q := session.Questions[0]
	q.AnswerText = "An answer."
	require.NoError(t, repo.MarkQuestionAnswered(&q))

	q.Score = 6.0
	q.FeedbackContent = "Revised on completion."
	q.Strengths = model.StringList{"relevance", "structure"}
	q.Improvements = model.StringList{"confidence"}
	require.NoError(t, repo.UpdateQuestionFeedback(&q))

	loaded, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	got := loaded.Questions[0]
	assert.InDelta(t, 6.0, got.Score, 0.001)
	assert.Equal(t, "Revised on completion.", got.FeedbackContent)
	assert.Equal(t, model.StringList{"relevance", "structure"}, got.Strengths)
	assert.Equal(t, model.StringList{"confidence"}, got.Improvements)
}

func TestCreateWithActiveGuardRejectsSecondActive(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	seedSession(t, repo, 1)

	activeKey := "1"
	dup := &model.InterviewSession{
		UserID:         1,
		SessionType:    model.SessionTechnical,
		ActiveKey:      &activeKey,
		Status:         model.StatusInProgress,
		LastActivityAt: time.Now(),
	}
	dup.ID = model.GenerateUUID()
	assert.ErrorIs(t, repo.CreateWithActiveGuard(dup), util.ErrSessionAlreadyActive)
}

func TestCompleteSessionOnlyOnce(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	session := seedSession(t, repo, 1)

	now := time.Now()
	session.OverallScore = 72.5
	session.Duration = 600
	session.Feedback = []byte(`{"overall":"solid"}`)
	session.CompletedAt = &now

	require.NoError(t, repo.CompleteSession(session))

	loaded, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, loaded.Status)
	assert.Nil(t, loaded.ActiveKey)
	assert.InDelta(t, 72.5, loaded.OverallScore, 0.001)

	assert.ErrorIs(t, repo.CompleteSession(session), util.ErrAlreadyCompleted)
}
