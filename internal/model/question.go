package model

type QuestionCategory string

const (
	CategoryTechnical      QuestionCategory = "technical"
	CategoryBehavioral     QuestionCategory = "behavioral"
	CategorySituational    QuestionCategory = "situational"
	CategoryProblemSolving QuestionCategory = "problem_solving"
	CategoryCommunication  QuestionCategory = "communication"
)

func ValidQuestionCategory(c QuestionCategory) bool {
	switch c {
	case CategoryTechnical, CategoryBehavioral, CategorySituational, CategoryProblemSolving, CategoryCommunication:
		return true
	}
	return false
}

// InterviewQuestion 题库中的一道面试题
// swagger:model InterviewQuestion
type InterviewQuestion struct {
	BaseModel
	Content    string           `gorm:"type:text;not null" json:"content"`
	Category   QuestionCategory `gorm:"size:30;index" json:"category"`
	Difficulty Difficulty       `gorm:"size:10;index;default:'medium'" json:"difficulty"`
	TargetRole string           `gorm:"size:100" json:"targetRole,omitempty"`
	Tags       string           `gorm:"size:255" json:"tags,omitempty"`
	Enabled    bool             `gorm:"default:true" json:"enabled"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}
