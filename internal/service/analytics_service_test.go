package service

import (
	"testing"
	"time"

	"interview_coach_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedSession(id string, userID uint, sessionType model.SessionType, score float64, completedAt time.Time) *model.InterviewSession {
	s := &model.InterviewSession{
		UserID:       userID,
		SessionType:  sessionType,
		Status:       model.StatusCompleted,
		OverallScore: score,
		CompletedAt:  &completedAt,
	}
	s.ID = id
	return s
}

func TestTrackImprovementNeedsTwoSessions(t *testing.T) {
	store := newFakeSessionStore()
	store.sessions["s1"] = completedSession("s1", 1, model.SessionBehavioral, 70, time.Now())
	svc := NewAnalyticsService(store, testConfig(), nil)

	trend, err := svc.TrackImprovement(1, "")
	require.NoError(t, err)
	assert.False(t, trend.HasImprovement)
	assert.Equal(t, 1, trend.SessionCount)
	assert.NotEmpty(t, trend.Message)
	assert.Empty(t, trend.Trend)
}

func TestTrackImprovementImproving(t *testing.T) {
	store := newFakeSessionStore()
	base := time.Now().Add(-3 * time.Hour)
	store.sessions["s1"] = completedSession("s1", 1, model.SessionBehavioral, 60, base)
	store.sessions["s2"] = completedSession("s2", 1, model.SessionBehavioral, 70, base.Add(time.Hour))
	store.sessions["s3"] = completedSession("s3", 1, model.SessionBehavioral, 80, base.Add(2*time.Hour))
	svc := NewAnalyticsService(store, testConfig(), nil)

	trend, err := svc.TrackImprovement(1, "")
	require.NoError(t, err)
	assert.True(t, trend.HasImprovement)
	assert.Equal(t, "improving", trend.Trend)
	assert.InDelta(t, 20.0, trend.ScoreImprovement, 0.01)
	assert.InDelta(t, 10.0, trend.AvgImprovement, 0.01)
	assert.Equal(t, 3, trend.SessionCount)
}

func TestTrackImprovementDecliningAndTypeFilter(t *testing.T) {
	store := newFakeSessionStore()
	base := time.Now().Add(-3 * time.Hour)
	store.sessions["s1"] = completedSession("s1", 1, model.SessionTechnical, 80, base)
	store.sessions["s2"] = completedSession("s2", 1, model.SessionTechnical, 65, base.Add(time.Hour))
	// 其他类型的会话不应计入
	store.sessions["s3"] = completedSession("s3", 1, model.SessionBehavioral, 10, base.Add(2*time.Hour))
	svc := NewAnalyticsService(store, testConfig(), nil)

	trend, err := svc.TrackImprovement(1, model.SessionTechnical)
	require.NoError(t, err)
	assert.False(t, trend.HasImprovement)
	assert.Equal(t, "declining", trend.Trend)
	assert.InDelta(t, -15.0, trend.ScoreImprovement, 0.01)
	assert.Equal(t, 2, trend.SessionCount)
}

func TestGetInterviewStatsAggregatesByType(t *testing.T) {
	store := newFakeSessionStore()
	base := time.Now().Add(-4 * time.Hour)
	store.sessions["s1"] = completedSession("s1", 1, model.SessionTechnical, 60, base)
	store.sessions["s2"] = completedSession("s2", 1, model.SessionTechnical, 80, base.Add(time.Hour))
	store.sessions["s3"] = completedSession("s3", 1, model.SessionBehavioral, 75, base.Add(2*time.Hour))
	// 未完成与他人会话不计入
	inProgress := completedSession("s4", 1, model.SessionBehavioral, 90, base.Add(3*time.Hour))
	inProgress.Status = model.StatusInProgress
	store.sessions["s4"] = inProgress
	store.sessions["s5"] = completedSession("s5", 2, model.SessionHR, 99, base)

	svc := NewAnalyticsService(store, testConfig(), nil)

	stats, err := svc.GetInterviewStats(1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CompletedSessions)
	assert.InDelta(t, 80.0, stats.BestScore, 0.01)

	require.Len(t, stats.ByType, 2)
	assert.Equal(t, model.SessionTechnical, stats.ByType[0].SessionType)
	assert.Equal(t, 2, stats.ByType[0].Count)
	assert.InDelta(t, 70.0, stats.ByType[0].AverageScore, 0.01)
	assert.InDelta(t, 80.0, stats.ByType[0].BestScore, 0.01)
	assert.Equal(t, model.SessionBehavioral, stats.ByType[1].SessionType)

	require.NotNil(t, stats.LastSession)
	assert.Equal(t, "s3", stats.LastSession.SessionID)
	assert.Equal(t, "improving", stats.Trend)
}

func TestGetInterviewStatsEmpty(t *testing.T) {
	svc := NewAnalyticsService(newFakeSessionStore(), testConfig(), nil)

	stats, err := svc.GetInterviewStats(1)
	require.NoError(t, err)
	assert.Zero(t, stats.CompletedSessions)
	assert.Zero(t, stats.BestScore)
	assert.Nil(t, stats.LastSession)
	assert.Equal(t, "stable", stats.Trend)
}
