package service

import (
	"context"
	"encoding/json"
	"fmt"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsService 跨会话的成绩趋势与练习统计，只读历史数据
type AnalyticsService struct {
	Sessions SessionStore
	Config   *config.Config
	Redis    *redis.Client
}

func NewAnalyticsService(sessions SessionStore, cfg *config.Config, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{Sessions: sessions, Config: cfg, Redis: rdb}
}

const trackedSessionLimit = 20

// TrackImprovement 基于最近 20 个已完成会话（按完成时间升序）计算趋势
func (s *AnalyticsService) TrackImprovement(userID uint, sessionType model.SessionType) (*model.ImprovementTrend, error) {
	sessions, err := s.Sessions.ListCompleted(userID, sessionType, trackedSessionLimit)
	if err != nil {
		return nil, err
	}

	if len(sessions) < 2 {
		return &model.ImprovementTrend{
			HasImprovement: false,
			Message:        "Complete at least 2 sessions to see your improvement trend",
			SessionCount:   len(sessions),
		}, nil
	}

	first := sessions[0].OverallScore
	last := sessions[len(sessions)-1].OverallScore
	scoreImprovement := last - first

	// 相邻会话分差的均值
	deltaSum := 0.0
	for i := 1; i < len(sessions); i++ {
		deltaSum += sessions[i].OverallScore - sessions[i-1].OverallScore
	}
	avgImprovement := deltaSum / float64(len(sessions)-1)

	trend := "stable"
	if scoreImprovement > 0 {
		trend = "improving"
	} else if scoreImprovement < 0 {
		trend = "declining"
	}

	return &model.ImprovementTrend{
		HasImprovement:   scoreImprovement > 0,
		ScoreImprovement: round1(scoreImprovement),
		AvgImprovement:   round1(avgImprovement),
		Trend:            trend,
		SessionCount:     len(sessions),
	}, nil
}

// GetInterviewStats 按类型聚合的练习统计，Redis 缓存，
// 会话完成时由 InterviewService 失效
func (s *AnalyticsService) GetInterviewStats(userID uint) (*model.InterviewStats, error) {
	cacheKey := fmt.Sprintf("interview:stats:%d", userID)

	if s.Redis != nil {
		ctx := context.Background()
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats model.InterviewStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	sessions, err := s.Sessions.ListCompleted(userID, "", trackedSessionLimit)
	if err != nil {
		return nil, err
	}

	stats := &model.InterviewStats{
		CompletedSessions: len(sessions),
		TotalSessions:     len(sessions),
		Trend:             "stable",
	}

	type typeAcc struct {
		sum   float64
		best  float64
		count int
	}
	byType := make(map[model.SessionType]*typeAcc)

	for _, sess := range sessions {
		if sess.OverallScore > stats.BestScore {
			stats.BestScore = sess.OverallScore
		}
		acc, ok := byType[sess.SessionType]
		if !ok {
			acc = &typeAcc{}
			byType[sess.SessionType] = acc
		}
		acc.sum += sess.OverallScore
		acc.count++
		if sess.OverallScore > acc.best {
			acc.best = sess.OverallScore
		}
	}

	for _, t := range []model.SessionType{
		model.SessionTechnical, model.SessionBehavioral, model.SessionHR,
		model.SessionMixed, model.SessionCaseStudy, model.SessionCoding,
	} {
		if acc, ok := byType[t]; ok {
			stats.ByType = append(stats.ByType, model.SessionTypeStats{
				SessionType:  t,
				Count:        acc.count,
				AverageScore: round1(acc.sum / float64(acc.count)),
				BestScore:    acc.best,
			})
		}
	}

	if len(sessions) > 0 {
		last := sessions[len(sessions)-1]
		summary := &model.SessionSummary{
			SessionID:    last.ID,
			SessionType:  last.SessionType,
			OverallScore: last.OverallScore,
		}
		if last.CompletedAt != nil {
			summary.CompletedAt = *last.CompletedAt
		}
		stats.LastSession = summary
	}

	if trend, err := s.TrackImprovement(userID, ""); err == nil && trend.Trend != "" {
		stats.Trend = trend.Trend
	}

	if s.Redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			ttl := time.Duration(s.Config.Interview.StatsCacheTTLMin) * time.Minute
			if err := s.Redis.Set(context.Background(), cacheKey, data, ttl).Err(); err != nil {
				logger.Log.Warn("failed to cache interview stats", zap.Uint("userId", userID), zap.Error(err))
			}
		}
	}

	return stats, nil
}
