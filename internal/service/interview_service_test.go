package service

import (
	"sort"
	"testing"
	"time"

	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionStore 内存实现，复刻存储层的条件写语义
type fakeSessionStore struct {
	sessions map[string]*model.InterviewSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.InterviewSession)}
}

func (f *fakeSessionStore) CreateWithActiveGuard(session *model.InterviewSession) error {
	if session.ActiveKey != nil {
		for _, s := range f.sessions {
			if s.ActiveKey != nil && *s.ActiveKey == *session.ActiveKey {
				return util.ErrSessionAlreadyActive
			}
		}
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) FindByID(sessionID string) (*model.InterviewSession, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) MarkQuestionAnswered(q *model.SessionQuestion) error {
	s, ok := f.sessions[q.SessionID]
	if !ok {
		return util.ErrSessionNotFound
	}
	for i := range s.Questions {
		if s.Questions[i].QuestionID == q.QuestionID {
			if s.Questions[i].IsAnswered {
				return util.ErrAlreadyAnswered
			}
			s.Questions[i] = *q
			s.Questions[i].IsAnswered = true
			return nil
		}
	}
	return util.ErrQuestionNotFound
}

func (f *fakeSessionStore) TouchActivity(sessionID string) error {
	if s, ok := f.sessions[sessionID]; ok {
		s.LastActivityAt = time.Now()
	}
	return nil
}

func (f *fakeSessionStore) CompleteSession(session *model.InterviewSession) error {
	s, ok := f.sessions[session.ID]
	if !ok {
		return util.ErrSessionNotFound
	}
	if s.Status != model.StatusInProgress {
		return util.ErrAlreadyCompleted
	}
	s.Status = model.StatusCompleted
	s.ActiveKey = nil
	s.OverallScore = session.OverallScore
	s.Duration = session.Duration
	s.Feedback = session.Feedback
	s.CompletedAt = session.CompletedAt
	return nil
}

func (f *fakeSessionStore) UpdateQuestionFeedback(q *model.SessionQuestion) error {
	return nil
}

func (f *fakeSessionStore) ListCompleted(userID uint, sessionType model.SessionType, limit int) ([]model.InterviewSession, error) {
	var out []model.InterviewSession
	for _, s := range f.sessions {
		if s.UserID != userID || s.Status != model.StatusCompleted {
			continue
		}
		if sessionType != "" && s.SessionType != sessionType {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(*out[j].CompletedAt)
	})
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeSessionStore) ListHistory(userID uint, page, limit int) ([]model.InterviewSession, int64, error) {
	all, err := f.ListCompleted(userID, "", len(f.sessions))
	if err != nil {
		return nil, 0, err
	}
	return all, int64(len(all)), nil
}

func (f *fakeSessionStore) AbandonStale(cutoff time.Time) (int64, error) {
	var count int64
	for _, s := range f.sessions {
		if s.Status == model.StatusInProgress && s.LastActivityAt.Before(cutoff) {
			s.Status = model.StatusAbandoned
			s.ActiveKey = nil
			count++
		}
	}
	return count, nil
}

type fakeQuestionProvider struct {
	questions []model.InterviewQuestion
}

func (f *fakeQuestionProvider) GetQuestions(categories []model.QuestionCategory, difficulty model.Difficulty, count int) ([]model.InterviewQuestion, error) {
	if count > len(f.questions) {
		count = len(f.questions)
	}
	return f.questions[:count], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Interview: config.InterviewConfig{
			QuestionCount:    3,
			ExpireHours:      24,
			StatsCacheTTLMin: 10,
		},
	}
}

func newTestInterviewService(store *fakeSessionStore, provider *fakeQuestionProvider) *InterviewService {
	analyzer := NewResponseAnalyzer()
	feedback := NewFeedbackService(analyzer, NewScoreAggregator())
	return NewInterviewService(store, provider, analyzer, feedback, testConfig(), nil)
}

func defaultProvider() *fakeQuestionProvider {
	return &fakeQuestionProvider{questions: []model.InterviewQuestion{
		{BaseModel: model.BaseModel{ID: 1}, Content: "Tell me about a conflict you resolved.", Category: model.CategoryBehavioral},
		{BaseModel: model.BaseModel{ID: 2}, Content: "Describe a project you led under a deadline.", Category: model.CategoryBehavioral},
		{BaseModel: model.BaseModel{ID: 3}, Content: "How do you handle critical feedback?", Category: model.CategoryBehavioral},
	}}
}

func TestStartInterviewValidation(t *testing.T) {
	svc := newTestInterviewService(newFakeSessionStore(), defaultProvider())

	_, err := svc.StartInterview(1, StartInterviewRequest{SessionType: "speed_round"})
	require.Error(t, err)
	assert.Equal(t, util.CodeValidationError, util.ErrorCode(err))

	_, err = svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionTechnical, Difficulty: "impossible"})
	require.Error(t, err)
	assert.Equal(t, util.CodeValidationError, util.ErrorCode(err))

	_, err = svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionTechnical, Category: "trivia"})
	require.Error(t, err)
	assert.Equal(t, util.CodeValidationError, util.ErrorCode(err))
}

func TestStartInterviewCreatesInProgressSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	result, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	require.NoError(t, err)
	require.Len(t, result.Questions, 3)
	assert.Equal(t, 1, result.Questions[0].Order)

	session, err := store.FindByID(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, session.Status)
	assert.Equal(t, model.DifficultyMedium, session.Difficulty)
	require.NotNil(t, session.ActiveKey)
}

func TestStartInterviewSecondActiveRejected(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	_, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	require.NoError(t, err)

	_, err = svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionTechnical})
	assert.ErrorIs(t, err, util.ErrSessionAlreadyActive)

	// 不同用户不受影响
	_, err = svc.StartInterview(2, StartInterviewRequest{SessionType: model.SessionBehavioral})
	assert.NoError(t, err)
}

func TestStartInterviewNoQuestions(t *testing.T) {
	svc := newTestInterviewService(newFakeSessionStore(), &fakeQuestionProvider{})

	_, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	assert.ErrorIs(t, err, util.ErrNoQuestionsAvailable)
}

func TestSubmitAnswerFlow(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	started, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	require.NoError(t, err)

	next, err := svc.GetNextQuestion(started.SessionID)
	require.NoError(t, err)
	require.NotNil(t, next.Question)
	assert.Equal(t, uint(1), next.Question.QuestionID)
	assert.False(t, next.Completed)

	answer := "The situation was a disagreement about priorities. My role was to mediate. " +
		"So I organized a review and I led the discussion. As a result we aligned and delivered on time."

	result, err := svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{QuestionID: 1, Answer: answer, TimeSpent: 90})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.Equal(t, 1, result.Progress.Answered)
	assert.Equal(t, 3, result.Progress.Total)

	// 重复提交被拒绝
	_, err = svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{QuestionID: 1, Answer: "again"})
	assert.ErrorIs(t, err, util.ErrAlreadyAnswered)

	// 不在会话中的题目
	_, err = svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{QuestionID: 99, Answer: "what"})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	// 下一题前进到第二道
	next, err = svc.GetNextQuestion(started.SessionID)
	require.NoError(t, err)
	require.NotNil(t, next.Question)
	assert.Equal(t, uint(2), next.Question.QuestionID)
}

func TestSubmitAnswerAudioIgnoredWhenNotAllowed(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	started, err := svc.StartInterview(1, StartInterviewRequest{
		SessionType: model.SessionBehavioral,
		Settings:    model.SessionSettings{AudioAllowed: false},
	})
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{
		QuestionID:     1,
		Answer:         "A reasonable answer about the project and the outcome.",
		AudioURL:       "https://cdn.example.com/answer.mp3",
		SpokenDuration: 42,
	})
	require.NoError(t, err)

	session, err := store.FindByID(started.SessionID)
	require.NoError(t, err)
	assert.Empty(t, session.Questions[0].AudioURL)
	assert.Zero(t, session.Questions[0].SpokenDuration)
}

func TestCompleteInterviewLifecycle(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	started, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	require.NoError(t, err)

	answer := "The situation was a production outage during a launch. My role was incident commander. " +
		"So I organized the response and I led the rollback. As a result we recovered in twenty minutes and improved our runbooks."
	for id := uint(1); id <= 3; id++ {
		_, err = svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{QuestionID: id, Answer: answer})
		require.NoError(t, err)
	}

	next, err := svc.GetNextQuestion(started.SessionID)
	require.NoError(t, err)
	assert.True(t, next.Completed)
	assert.Nil(t, next.Question)

	completed, err := svc.CompleteInterview(started.SessionID)
	require.NoError(t, err)
	assert.Greater(t, completed.OverallScore, 0.0)
	require.NotNil(t, completed.Feedback)
	assert.NotEmpty(t, completed.Feedback.NextSteps)

	session, err := store.FindByID(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, session.Status)
	assert.Nil(t, session.ActiveKey)
	assert.NotEmpty(t, session.Feedback)

	// 完成后的会话拒绝新的提交与重复完成
	_, err = svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{QuestionID: 1, Answer: "late"})
	assert.ErrorIs(t, err, util.ErrSessionNotInProgress)

	_, err = svc.CompleteInterview(started.SessionID)
	assert.ErrorIs(t, err, util.ErrAlreadyCompleted)

	// 释放 active_key 后可以开新会话
	_, err = svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	assert.NoError(t, err)
}

func TestCompleteInterviewAllEmptyAnswers(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	started, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	require.NoError(t, err)

	// 每道题都交白卷
	for id := uint(1); id <= 3; id++ {
		result, err := svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{QuestionID: id, Answer: ""})
		require.NoError(t, err)
		assert.Zero(t, result.Score)
		assert.Contains(t, result.Insights, "No response provided")
	}

	completed, err := svc.CompleteInterview(started.SessionID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, completed.OverallScore, 0.001)
	require.NotNil(t, completed.Feedback)
	assert.NotEmpty(t, completed.Feedback.ImprovementAreas)
	assert.Equal(t,
		[]string{"You show potential; consistent practice will turn it into results"},
		completed.Feedback.Strengths)
}

func TestCompleteInterviewWithPartialAnswers(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	started, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(started.SessionID, SubmitAnswerRequest{QuestionID: 1, Answer: "I led the fix and we achieved a good result."})
	require.NoError(t, err)

	// 未答完也允许完成，未答题目不计入聚合
	completed, err := svc.CompleteInterview(started.SessionID)
	require.NoError(t, err)
	assert.Greater(t, completed.OverallScore, 0.0)
}

func TestGetNextQuestionUnknownSession(t *testing.T) {
	svc := newTestInterviewService(newFakeSessionStore(), defaultProvider())

	_, err := svc.GetNextQuestion("missing")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestExpireStaleSessions(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestInterviewService(store, defaultProvider())

	started, err := svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	require.NoError(t, err)

	session, err := store.FindByID(started.SessionID)
	require.NoError(t, err)
	session.LastActivityAt = time.Now().Add(-48 * time.Hour)

	require.NoError(t, svc.ExpireStaleSessions())

	session, err = store.FindByID(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, session.Status)
	assert.Nil(t, session.ActiveKey)

	// 放弃后允许开新会话
	_, err = svc.StartInterview(1, StartInterviewRequest{SessionType: model.SessionBehavioral})
	assert.NoError(t, err)
}
