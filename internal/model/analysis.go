package model

import "time"

// AnalysisResult 单次回答的多维度分析结果（瞬态，不单独落库）
// swagger:model AnalysisResult
type AnalysisResult struct {
	Score          float64  `json:"score"`          // 0-10
	Completeness   float64  `json:"completeness"`   // 0-10
	Clarity        float64  `json:"clarity"`        // 0-10
	Relevance      float64  `json:"relevance"`      // 0-10
	Confidence     float64  `json:"confidence"`     // 0-10
	SentimentScore float64  `json:"sentimentScore"` // -5..5
	StructureScore float64  `json:"structureScore"` // 0-10
	Insights       []string `json:"insights"`
}

// ScoreFeedback 某一维度的分数与评语
type ScoreFeedback struct {
	Score    int    `json:"score"` // 0-10
	Feedback string `json:"feedback"`
}

type AreaPriority string

const (
	PriorityHigh   AreaPriority = "high"
	PriorityMedium AreaPriority = "medium"
)

// ImprovementArea 需要改进的维度及优先级
type ImprovementArea struct {
	Area       string       `json:"area"`
	Priority   AreaPriority `json:"priority"`
	Suggestion string       `json:"suggestion"`
}

// OverallFeedback 会话级综合反馈，完成时生成并持久化到会话的 feedback 字段
// swagger:model OverallFeedback
type OverallFeedback struct {
	Communication     ScoreFeedback  `json:"communication"`
	TechnicalAccuracy *ScoreFeedback `json:"technicalAccuracy,omitempty"`
	ProblemSolving    *ScoreFeedback `json:"problemSolving,omitempty"`
	Confidence        ScoreFeedback  `json:"confidence"`
	Overall           string         `json:"overall"`

	CategoryScores   map[QuestionCategory]float64 `json:"categoryScores"` // 0-100 per category
	ImprovementAreas []ImprovementArea            `json:"improvementAreas"`
	Strengths        []string                     `json:"strengths"`
	NextSteps        []string                     `json:"nextSteps"`
}

// ImprovementTrend 跨会话的成绩趋势
type ImprovementTrend struct {
	HasImprovement   bool    `json:"hasImprovement"`
	Message          string  `json:"message,omitempty"`
	ScoreImprovement float64 `json:"scoreImprovement"`
	AvgImprovement   float64 `json:"avgImprovement"`
	Trend            string  `json:"trend,omitempty"` // improving, declining, stable
	SessionCount     int     `json:"sessionCount"`
}

// Recommendation 练习建议
type Recommendation struct {
	Type        string      `json:"type"` // session_type, focus_area, getting_started
	Title       string      `json:"title"`
	Description string      `json:"description"`
	SessionType SessionType `json:"sessionType,omitempty"`
}

// RecommendationSet 个性化建议集合
type RecommendationSet struct {
	Recommendations      []Recommendation `json:"recommendations"`
	FocusAreas           []string         `json:"focusAreas"`
	SuggestedSessionType SessionType      `json:"suggestedSessionType"`
}

// SessionSummary 历史/统计中引用的会话摘要
type SessionSummary struct {
	SessionID    string      `json:"sessionId"`
	SessionType  SessionType `json:"sessionType"`
	OverallScore float64     `json:"overallScore"`
	CompletedAt  time.Time   `json:"completedAt"`
}

// SessionTypeStats 按会话类型聚合的统计
type SessionTypeStats struct {
	SessionType  SessionType `json:"sessionType"`
	Count        int         `json:"count"`
	AverageScore float64     `json:"averageScore"`
	BestScore    float64     `json:"bestScore"`
}

// InterviewStats 用户的面试练习统计
// swagger:model InterviewStats
type InterviewStats struct {
	TotalSessions     int                `json:"totalSessions"`
	CompletedSessions int                `json:"completedSessions"`
	BestScore         float64            `json:"bestScore"`
	ByType            []SessionTypeStats `json:"byType"`
	LastSession       *SessionSummary    `json:"lastSession,omitempty"`
	Trend             string             `json:"trend"`
}
