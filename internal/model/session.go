package model

import (
	"encoding/json"
	"time"
)

type SessionType string

const (
	SessionTechnical  SessionType = "technical"
	SessionBehavioral SessionType = "behavioral"
	SessionHR         SessionType = "hr"
	SessionMixed      SessionType = "mixed"
	SessionCaseStudy  SessionType = "case_study"
	SessionCoding     SessionType = "coding"
)

func ValidSessionType(t SessionType) bool {
	switch t {
	case SessionTechnical, SessionBehavioral, SessionHR, SessionMixed, SessionCaseStudy, SessionCoding:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type SessionStatus string

const (
	StatusCreated    SessionStatus = "created"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// SessionSettings 会话设置（时间限制、是否允许语音/提示）
type SessionSettings struct {
	TimeLimit    int  `gorm:"default:0" json:"timeLimit"` // Minutes, 0 = unlimited
	AudioAllowed bool `gorm:"default:false" json:"audioAllowed"`
	HintsAllowed bool `gorm:"default:false" json:"hintsAllowed"`
}

// InterviewSession 一次完整的模拟面试会话
// swagger:model InterviewSession
type InterviewSession struct {
	UUIDBase
	UserID      uint        `gorm:"index;type:bigint unsigned" json:"userId"`
	User        *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SessionType SessionType `gorm:"size:20;not null" json:"sessionType"`
	Difficulty  Difficulty  `gorm:"size:10;default:'medium'" json:"difficulty"`
	TargetRole  string      `gorm:"size:100" json:"targetRole,omitempty"`

	// ActiveKey 持有 in_progress 会话的用户 ID，结束后置 NULL。
	// 唯一索引保证同一用户同时最多一个进行中的会话（条件插入，而非进程内锁）。
	ActiveKey *string `gorm:"uniqueIndex;size:64" json:"-"`

	Status         SessionStatus     `gorm:"size:20;default:'created'" json:"status"`
	Settings       SessionSettings   `gorm:"embedded;embeddedPrefix:setting_" json:"settings"`
	OverallScore   float64           `gorm:"default:0" json:"overallScore"` // 0-100, set at completion
	Duration       int               `gorm:"default:0" json:"duration"`     // Seconds, set at completion
	Feedback       json.RawMessage   `gorm:"type:json" json:"feedback,omitempty"`
	LastActivityAt time.Time         `json:"lastActivityAt"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
	Questions      []SessionQuestion `gorm:"foreignKey:SessionID" json:"questions,omitempty"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// SessionQuestion 会话中的一道题目，题目列表在会话创建后不再变化
// swagger:model SessionQuestion
type SessionQuestion struct {
	BaseModel
	SessionID    string           `gorm:"index:idx_session_question,unique;type:varchar(36)" json:"sessionId"`
	QuestionID   uint             `gorm:"index:idx_session_question,unique;type:bigint unsigned" json:"questionId"`
	QuestionText string           `gorm:"type:text;not null" json:"questionText"`
	Category     QuestionCategory `gorm:"size:30" json:"category"`
	OrderNum     int              `gorm:"default:0" json:"order"`

	IsAnswered     bool    `gorm:"default:false" json:"isAnswered"`
	AnswerText     string  `gorm:"type:text" json:"answerText,omitempty"`
	AudioURL       string  `gorm:"size:255" json:"audioUrl,omitempty"`
	SpokenDuration float64 `gorm:"default:0" json:"spokenDuration,omitempty"` // Seconds
	TimeSpent      int     `gorm:"default:0" json:"timeSpent"`                // Seconds

	// Per-question feedback, populated when the answer is submitted
	Score           float64    `gorm:"default:0" json:"score"` // 0-10
	FeedbackContent string     `gorm:"type:text" json:"feedbackContent,omitempty"`
	Strengths       StringList `gorm:"serializer:json" json:"strengths,omitempty"`
	Improvements    StringList `gorm:"serializer:json" json:"improvements,omitempty"`
}

func (SessionQuestion) TableName() string {
	return "session_questions"
}

// StringList JSON 序列化的字符串数组字段
type StringList []string
