package service

import (
	"context"
	"encoding/json"
	"fmt"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/pkg/logger"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RecommendationService 依据最近的会话成绩与存储的反馈给出练习建议
type RecommendationService struct {
	Sessions SessionStore
	Config   *config.Config
	Redis    *redis.Client
}

func NewRecommendationService(sessions SessionStore, cfg *config.Config, rdb *redis.Client) *RecommendationService {
	return &RecommendationService{Sessions: sessions, Config: cfg, Redis: rdb}
}

const recommendationSessionLimit = 5

// GetPersonalizedRecommendations 基于最近 5 个已完成会话生成建议；
// 没有历史时返回固定的入门建议
func (s *RecommendationService) GetPersonalizedRecommendations(userID uint) (*model.RecommendationSet, error) {
	cacheKey := fmt.Sprintf("interview:recs:%d", userID)

	if s.Redis != nil {
		ctx := context.Background()
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var set model.RecommendationSet
			if err := json.Unmarshal([]byte(cached), &set); err == nil {
				return &set, nil
			}
		}
	}

	sessions, err := s.Sessions.ListCompleted(userID, "", recommendationSessionLimit)
	if err != nil {
		return nil, err
	}

	var set *model.RecommendationSet
	if len(sessions) == 0 {
		set = starterRecommendations()
	} else {
		set = s.buildRecommendations(sessions)
	}

	if s.Redis != nil {
		if data, err := json.Marshal(set); err == nil {
			ttl := time.Duration(s.Config.Interview.StatsCacheTTLMin) * time.Minute
			if err := s.Redis.Set(context.Background(), cacheKey, data, ttl).Err(); err != nil {
				logger.Log.Warn("failed to cache recommendations", zap.Uint("userId", userID), zap.Error(err))
			}
		}
	}

	return set, nil
}

func starterRecommendations() *model.RecommendationSet {
	return &model.RecommendationSet{
		Recommendations: []model.Recommendation{
			{
				Type:        "getting_started",
				Title:       "Start with a behavioral session",
				Description: "Behavioral questions build the storytelling skills every interview needs",
				SessionType: model.SessionBehavioral,
			},
			{
				Type:        "getting_started",
				Title:       "Learn the STAR method",
				Description: "Structure answers as Situation, Task, Action and Result before your first session",
			},
		},
		FocusAreas:           []string{"behavioral"},
		SuggestedSessionType: model.SessionBehavioral,
	}
}

// weakAreaAdvice 各弱项维度对应的模板建议
var weakAreaAdvice = map[string]string{
	"communication": "Practice explaining your answers out loud and cut filler words",
	"confidence":    "Rehearse direct statements about your achievements with concrete numbers",
	"technical":     "Drill technical fundamentals and walk through your reasoning step by step",
	"behavioral":    "Prepare a bank of STAR stories covering conflict, leadership and failure",
}

func (s *RecommendationService) buildRecommendations(sessions []model.InterviewSession) *model.RecommendationSet {
	type typeAcc struct {
		sum   float64
		count int
	}
	byType := make(map[model.SessionType]*typeAcc)
	weakAreas := make(map[string]bool)

	for _, sess := range sessions {
		acc, ok := byType[sess.SessionType]
		if !ok {
			acc = &typeAcc{}
			byType[sess.SessionType] = acc
		}
		acc.sum += sess.OverallScore
		acc.count++

		// 从存储的会话反馈中收集高/中优先级弱项
		if len(sess.Feedback) == 0 {
			continue
		}
		var fb model.OverallFeedback
		if err := json.Unmarshal(sess.Feedback, &fb); err != nil {
			continue
		}
		for _, area := range fb.ImprovementAreas {
			if area.Priority != model.PriorityHigh && area.Priority != model.PriorityMedium {
				continue
			}
			weakAreas[normalizeArea(area.Area)] = true
		}
	}

	var weakestType model.SessionType
	lowestMean := 101.0
	for _, t := range []model.SessionType{
		model.SessionTechnical, model.SessionBehavioral, model.SessionHR,
		model.SessionMixed, model.SessionCaseStudy, model.SessionCoding,
	} {
		acc, ok := byType[t]
		if !ok {
			continue
		}
		mean := acc.sum / float64(acc.count)
		if mean < lowestMean {
			lowestMean = mean
			weakestType = t
		}
	}

	set := &model.RecommendationSet{SuggestedSessionType: weakestType}

	if lowestMean < 70 {
		set.Recommendations = append(set.Recommendations, model.Recommendation{
			Type:        "session_type",
			Title:       fmt.Sprintf("Practice more %s sessions", strings.ReplaceAll(string(weakestType), "_", " ")),
			Description: fmt.Sprintf("Your %s average is %.0f%%; focused repetition will raise it", strings.ReplaceAll(string(weakestType), "_", " "), lowestMean),
			SessionType: weakestType,
		})
	}

	for _, area := range []string{"communication", "confidence", "technical", "behavioral"} {
		if !weakAreas[area] {
			continue
		}
		set.Recommendations = append(set.Recommendations, model.Recommendation{
			Type:        "focus_area",
			Title:       fmt.Sprintf("Work on %s", area),
			Description: weakAreaAdvice[area],
		})
		set.FocusAreas = append(set.FocusAreas, area)
	}

	return set
}

// normalizeArea 将反馈中的弱项名称归一到推荐模板使用的键
func normalizeArea(area string) string {
	area = strings.ToLower(area)
	switch {
	case strings.Contains(area, "communication") || strings.Contains(area, "clarity"):
		return "communication"
	case strings.Contains(area, "confidence"):
		return "confidence"
	case strings.Contains(area, "technical") || strings.Contains(area, "problem"):
		return "technical"
	case strings.Contains(area, "behavioral") || strings.Contains(area, "star"):
		return "behavioral"
	}
	return area
}
