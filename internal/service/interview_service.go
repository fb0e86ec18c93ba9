package service

import (
	"context"
	"encoding/json"
	"fmt"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"
	"interview_coach_backend/pkg/logger"
	"interview_coach_backend/pkg/monitoring"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionStore 会话持久化边界。原子性约束（同用户单活跃会话、
// 单题只答一次、只完成一次）由实现方的条件写保证。
type SessionStore interface {
	CreateWithActiveGuard(session *model.InterviewSession) error
	FindByID(sessionID string) (*model.InterviewSession, error)
	MarkQuestionAnswered(q *model.SessionQuestion) error
	TouchActivity(sessionID string) error
	CompleteSession(session *model.InterviewSession) error
	UpdateQuestionFeedback(q *model.SessionQuestion) error
	ListCompleted(userID uint, sessionType model.SessionType, limit int) ([]model.InterviewSession, error)
	ListHistory(userID uint, page, limit int) ([]model.InterviewSession, int64, error)
	AbandonStale(cutoff time.Time) (int64, error)
}

// QuestionProvider 题库读取边界
type QuestionProvider interface {
	GetQuestions(categories []model.QuestionCategory, difficulty model.Difficulty, count int) ([]model.InterviewQuestion, error)
}

// InterviewService 面试会话状态机：创建、发题、收答、完成
type InterviewService struct {
	Sessions  SessionStore
	Questions QuestionProvider
	Analyzer  *ResponseAnalyzer
	Feedback  *FeedbackService
	Config    *config.Config
	Redis     *redis.Client
}

func NewInterviewService(
	sessions SessionStore,
	questions QuestionProvider,
	analyzer *ResponseAnalyzer,
	feedback *FeedbackService,
	cfg *config.Config,
	rdb *redis.Client,
) *InterviewService {
	return &InterviewService{
		Sessions:  sessions,
		Questions: questions,
		Analyzer:  analyzer,
		Feedback:  feedback,
		Config:    cfg,
		Redis:     rdb,
	}
}

type StartInterviewRequest struct {
	SessionType model.SessionType      `json:"sessionType" binding:"required"`
	Difficulty  model.Difficulty       `json:"difficulty"`
	Category    model.QuestionCategory `json:"category"`
	TargetRole  string                 `json:"targetRole"`
	Settings    model.SessionSettings  `json:"settings"`
}

// QuestionMeta 下发给客户端的题目信息，不含评分字段
type QuestionMeta struct {
	QuestionID   uint                   `json:"questionId"`
	QuestionText string                 `json:"questionText"`
	Category     model.QuestionCategory `json:"category"`
	Order        int                    `json:"order"`
}

type StartInterviewResult struct {
	SessionID string                `json:"sessionId"`
	Questions []QuestionMeta        `json:"questions"`
	Settings  model.SessionSettings `json:"settings"`
}

// Progress 会话答题进度
type Progress struct {
	Answered   int     `json:"answered"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// sessionTypeCategories 会话类型到抽题类别的映射，未显式指定类别时使用
var sessionTypeCategories = map[model.SessionType][]model.QuestionCategory{
	model.SessionTechnical:  {model.CategoryTechnical},
	model.SessionCoding:     {model.CategoryTechnical, model.CategoryProblemSolving},
	model.SessionBehavioral: {model.CategoryBehavioral},
	model.SessionHR:         {model.CategoryBehavioral, model.CategoryCommunication},
	model.SessionCaseStudy:  {model.CategorySituational, model.CategoryProblemSolving},
	model.SessionMixed: {
		model.CategoryTechnical, model.CategoryBehavioral, model.CategorySituational,
		model.CategoryProblemSolving, model.CategoryCommunication,
	},
}

// StartInterview 校验配置、抽题并创建会话。created 状态是瞬态的，
// 会话落库时即为 in_progress。
func (s *InterviewService) StartInterview(userID uint, req StartInterviewRequest) (*StartInterviewResult, error) {
	if !model.ValidSessionType(req.SessionType) {
		return nil, util.NewValidationError("sessionType", string(req.SessionType),
			"technical", "behavioral", "hr", "mixed", "case_study", "coding")
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyMedium
	}
	if !model.ValidDifficulty(req.Difficulty) {
		return nil, util.NewValidationError("difficulty", string(req.Difficulty), "easy", "medium", "hard")
	}

	categories := sessionTypeCategories[req.SessionType]
	if req.Category != "" {
		if !model.ValidQuestionCategory(req.Category) {
			return nil, util.NewValidationError("category", string(req.Category),
				"technical", "behavioral", "situational", "problem_solving", "communication")
		}
		categories = []model.QuestionCategory{req.Category}
	}

	questions, err := s.Questions.GetQuestions(categories, req.Difficulty, s.Config.Interview.QuestionCount)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestionsAvailable
	}

	activeKey := strconv.FormatUint(uint64(userID), 10)
	session := &model.InterviewSession{
		UserID:         userID,
		SessionType:    req.SessionType,
		Difficulty:     req.Difficulty,
		TargetRole:     req.TargetRole,
		ActiveKey:      &activeKey,
		Status:         model.StatusInProgress,
		Settings:       req.Settings,
		LastActivityAt: time.Now(),
	}
	session.ID = model.GenerateUUID()

	for i, q := range questions {
		session.Questions = append(session.Questions, model.SessionQuestion{
			SessionID:    session.ID,
			QuestionID:   q.ID,
			QuestionText: q.Content,
			Category:     q.Category,
			OrderNum:     i + 1,
		})
	}

	if err := s.Sessions.CreateWithActiveGuard(session); err != nil {
		return nil, err
	}

	monitoring.SessionsStarted.WithLabelValues(string(req.SessionType)).Inc()
	logger.Log.Info("interview session started",
		zap.String("sessionId", session.ID),
		zap.Uint("userId", userID),
		zap.String("sessionType", string(req.SessionType)))

	result := &StartInterviewResult{
		SessionID: session.ID,
		Settings:  session.Settings,
	}
	for _, sq := range session.Questions {
		result.Questions = append(result.Questions, QuestionMeta{
			QuestionID:   sq.QuestionID,
			QuestionText: sq.QuestionText,
			Category:     sq.Category,
			Order:        sq.OrderNum,
		})
	}
	return result, nil
}

type NextQuestionResult struct {
	Question  *QuestionMeta `json:"question,omitempty"`
	Completed bool          `json:"completed"`
	Progress  Progress      `json:"progress"`
}

// GetNextQuestion 返回第一道未作答的题目；全部答完时返回终止信号
func (s *InterviewService) GetNextQuestion(sessionID string) (*NextQuestionResult, error) {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusInProgress {
		return nil, util.ErrSessionNotInProgress
	}

	result := &NextQuestionResult{Progress: sessionProgress(session)}
	for _, q := range session.Questions {
		if !q.IsAnswered {
			result.Question = &QuestionMeta{
				QuestionID:   q.QuestionID,
				QuestionText: q.QuestionText,
				Category:     q.Category,
				Order:        q.OrderNum,
			}
			return result, nil
		}
	}

	result.Completed = true
	return result, nil
}

type SubmitAnswerRequest struct {
	QuestionID     uint    `json:"questionId" binding:"required"`
	Answer         string  `json:"answer"`
	TimeSpent      int     `json:"timeSpent"`
	AudioURL       string  `json:"audioUrl"`
	SpokenDuration float64 `json:"spokenDuration"`
}

type SubmitAnswerResult struct {
	Score    float64  `json:"score"`
	Insights []string `json:"insights"`
	Progress Progress `json:"progress"`
}

// SubmitAnswer 记录回答并立即生成逐题反馈。重复提交被拒绝，
// 并发下由存储层的条件更新保证只有第一次生效。
func (s *InterviewService) SubmitAnswer(sessionID string, req SubmitAnswerRequest) (*SubmitAnswerResult, error) {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusInProgress {
		return nil, util.ErrSessionNotInProgress
	}

	var question *model.SessionQuestion
	for i := range session.Questions {
		if session.Questions[i].QuestionID == req.QuestionID {
			question = &session.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, util.ErrQuestionNotFound
	}
	if question.IsAnswered {
		return nil, util.ErrAlreadyAnswered
	}

	if !session.Settings.AudioAllowed {
		req.AudioURL = ""
		req.SpokenDuration = 0
	}

	analysis := s.Analyzer.Analyze(req.Answer, question.QuestionText, question.Category, session.SessionType)

	question.AnswerText = req.Answer
	question.AudioURL = req.AudioURL
	question.SpokenDuration = req.SpokenDuration
	question.TimeSpent = req.TimeSpent
	s.Feedback.applyQuestionFeedback(question, analysis)

	if err := s.Sessions.MarkQuestionAnswered(question); err != nil {
		return nil, err
	}
	question.IsAnswered = true

	if err := s.Sessions.TouchActivity(sessionID); err != nil {
		logger.Log.Warn("failed to touch session activity", zap.String("sessionId", sessionID), zap.Error(err))
	}

	monitoring.AnswerScores.Observe(analysis.Score)

	return &SubmitAnswerResult{
		Score:    analysis.Score,
		Insights: analysis.Insights,
		Progress: sessionProgress(session),
	}, nil
}

type CompleteInterviewResult struct {
	OverallScore float64                `json:"overallScore"`
	Feedback     *model.OverallFeedback `json:"feedback"`
	Duration     int                    `json:"duration"` // Seconds
}

// CompleteInterview 聚合评分、生成综合反馈并把会话置为 completed。
// 状态只能前进：重复完成返回 ALREADY_COMPLETED。
func (s *InterviewService) CompleteInterview(sessionID string) (*CompleteInterviewResult, error) {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case model.StatusCompleted:
		return nil, util.ErrAlreadyCompleted
	case model.StatusInProgress:
	default:
		return nil, util.ErrSessionNotInProgress
	}

	feedback, agg := s.Feedback.GenerateComprehensiveFeedback(session)

	// 逐题反馈在完成时重算并回写
	for i := range session.Questions {
		q := &session.Questions[i]
		if !q.IsAnswered {
			continue
		}
		if err := s.Sessions.UpdateQuestionFeedback(q); err != nil {
			logger.Log.Warn("failed to persist question feedback",
				zap.String("sessionId", sessionID), zap.Uint("questionId", q.QuestionID), zap.Error(err))
		}
	}

	feedbackJSON, err := json.Marshal(feedback)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}

	now := time.Now()
	session.OverallScore = agg.OverallScore
	session.Duration = int(now.Sub(session.CreatedAt).Seconds())
	session.Feedback = feedbackJSON
	session.CompletedAt = &now

	if err := s.Sessions.CompleteSession(session); err != nil {
		return nil, err
	}
	session.Status = model.StatusCompleted

	s.invalidateUserCaches(session.UserID)

	monitoring.SessionsCompleted.WithLabelValues(string(session.SessionType)).Inc()
	logger.Log.Info("interview session completed",
		zap.String("sessionId", session.ID),
		zap.Uint("userId", session.UserID),
		zap.Float64("overallScore", session.OverallScore))

	return &CompleteInterviewResult{
		OverallScore: session.OverallScore,
		Feedback:     feedback,
		Duration:     session.Duration,
	}, nil
}

// GetSession 完整会话快照
func (s *InterviewService) GetSession(sessionID string) (*model.InterviewSession, error) {
	return s.Sessions.FindByID(sessionID)
}

// GetHistory 分页历史记录
func (s *InterviewService) GetHistory(userID uint, page, limit int) ([]model.InterviewSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.Sessions.ListHistory(userID, page, limit)
}

// ExpireStaleSessions 将超过配置时限无活动的进行中会话标记为放弃
func (s *InterviewService) ExpireStaleSessions() error {
	cutoff := time.Now().Add(-time.Duration(s.Config.Interview.ExpireHours) * time.Hour)
	abandoned, err := s.Sessions.AbandonStale(cutoff)
	if err != nil {
		return err
	}
	if abandoned > 0 {
		logger.Log.Info("abandoned stale interview sessions", zap.Int64("count", abandoned))
	}
	return nil
}

func (s *InterviewService) invalidateUserCaches(userID uint) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	keys := []string{
		fmt.Sprintf("interview:stats:%d", userID),
		fmt.Sprintf("interview:recs:%d", userID),
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("failed to invalidate stats cache", zap.Uint("userId", userID), zap.Error(err))
	}
}

func sessionProgress(session *model.InterviewSession) Progress {
	answered := 0
	for _, q := range session.Questions {
		if q.IsAnswered {
			answered++
		}
	}
	total := len(session.Questions)
	percentage := 0.0
	if total > 0 {
		percentage = round1(float64(answered) / float64(total) * 100)
	}
	return Progress{Answered: answered, Total: total, Percentage: percentage}
}
