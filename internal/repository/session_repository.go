package repository

import (
	"errors"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// CreateWithActiveGuard 创建会话及其题目列表。ActiveKey 上的唯一索引保证
// 同一用户最多一个进行中的会话：并发创建时只有一个事务能提交，
// 冲突方收到 ErrSessionAlreadyActive。
func (r *SessionRepository) CreateWithActiveGuard(session *model.InterviewSession) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(session).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
			return util.ErrSessionAlreadyActive
		}
		return err
	}
	return nil
}

func (r *SessionRepository) FindByID(sessionID string) (*model.InterviewSession, error) {
	var session model.InterviewSession
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_num asc")
	}).Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// MarkQuestionAnswered 原子地把题目标记为已答并写入回答与逐题反馈。
// WHERE is_answered = false 让并发的重复提交只有第一次生效。
// 结构体配合 Select 更新，Strengths/Improvements 走 json 序列化器。
func (r *SessionRepository) MarkQuestionAnswered(q *model.SessionQuestion) error {
	res := r.DB.Model(&model.SessionQuestion{}).
		Where("id = ? AND is_answered = ?", q.ID, false).
		Select("is_answered", "answer_text", "audio_url", "spoken_duration",
			"time_spent", "score", "feedback_content", "strengths", "improvements").
		Updates(&model.SessionQuestion{
			IsAnswered:      true,
			AnswerText:      q.AnswerText,
			AudioURL:        q.AudioURL,
			SpokenDuration:  q.SpokenDuration,
			TimeSpent:       q.TimeSpent,
			Score:           q.Score,
			FeedbackContent: q.FeedbackContent,
			Strengths:       q.Strengths,
			Improvements:    q.Improvements,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAlreadyAnswered
	}
	return nil
}

// TouchActivity 更新会话活跃时间，供过期清扫判断
func (r *SessionRepository) TouchActivity(sessionID string) error {
	return r.DB.Model(&model.InterviewSession{}).
		Where("id = ?", sessionID).
		Update("last_activity_at", time.Now()).Error
}

// CompleteSession 条件更新：仅当会话仍在进行中时写入完成状态，
// 释放 active_key，重复完成返回 ErrAlreadyCompleted。
func (r *SessionRepository) CompleteSession(session *model.InterviewSession) error {
	res := r.DB.Model(&model.InterviewSession{}).
		Where("id = ? AND status = ?", session.ID, model.StatusInProgress).
		Updates(map[string]interface{}{
			"status":        model.StatusCompleted,
			"active_key":    nil,
			"overall_score": session.OverallScore,
			"duration":      session.Duration,
			"feedback":      session.Feedback,
			"completed_at":  session.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAlreadyCompleted
	}
	return nil
}

func (r *SessionRepository) UpdateQuestionFeedback(q *model.SessionQuestion) error {
	return r.DB.Model(&model.SessionQuestion{}).
		Where("id = ?", q.ID).
		Select("score", "feedback_content", "strengths", "improvements").
		Updates(&model.SessionQuestion{
			Score:           q.Score,
			FeedbackContent: q.FeedbackContent,
			Strengths:       q.Strengths,
			Improvements:    q.Improvements,
		}).Error
}

// ListCompleted 按完成时间升序返回用户最近 limit 个已完成会话
func (r *SessionRepository) ListCompleted(userID uint, sessionType model.SessionType, limit int) ([]model.InterviewSession, error) {
	query := r.DB.Where("user_id = ? AND status = ?", userID, model.StatusCompleted)
	if sessionType != "" {
		query = query.Where("session_type = ?", sessionType)
	}

	// 先取最近的 limit 条，再按时间升序排列
	var sessions []model.InterviewSession
	err := query.Order("completed_at desc").Limit(limit).Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// ListHistory 分页返回用户的已完成会话，新的在前
func (r *SessionRepository) ListHistory(userID uint, page, limit int) ([]model.InterviewSession, int64, error) {
	var sessions []model.InterviewSession
	var total int64

	query := r.DB.Model(&model.InterviewSession{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("completed_at desc").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

// AbandonStale 将活跃时间早于 cutoff 的进行中会话标记为放弃并释放 active_key
func (r *SessionRepository) AbandonStale(cutoff time.Time) (int64, error) {
	res := r.DB.Model(&model.InterviewSession{}).
		Where("status = ? AND last_activity_at < ?", model.StatusInProgress, cutoff).
		Updates(map[string]interface{}{
			"status":     model.StatusAbandoned,
			"active_key": nil,
		})
	return res.RowsAffected, res.Error
}
