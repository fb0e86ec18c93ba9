package service

import (
	"fmt"
	"interview_coach_backend/internal/model"
	"math"
	"sort"
	"strings"
)

// FeedbackService 把逐题分析聚合为人类可读的会话级综合反馈
type FeedbackService struct {
	Analyzer   *ResponseAnalyzer
	Aggregator *ScoreAggregator
}

func NewFeedbackService(analyzer *ResponseAnalyzer, aggregator *ScoreAggregator) *FeedbackService {
	return &FeedbackService{Analyzer: analyzer, Aggregator: aggregator}
}

// AnalyzeQuestions 对所有已答题目运行分析器，并就地填充逐题反馈
func (s *FeedbackService) AnalyzeQuestions(session *model.InterviewSession) []QuestionAnalysis {
	var analyses []QuestionAnalysis
	for i := range session.Questions {
		q := &session.Questions[i]
		if !q.IsAnswered {
			continue
		}

		result := s.Analyzer.Analyze(q.AnswerText, q.QuestionText, q.Category, session.SessionType)
		s.applyQuestionFeedback(q, result)
		analyses = append(analyses, QuestionAnalysis{Question: q, Result: result})
	}
	return analyses
}

// GenerateComprehensiveFeedback 生成会话级综合反馈与聚合分数
func (s *FeedbackService) GenerateComprehensiveFeedback(session *model.InterviewSession) (*model.OverallFeedback, AggregatedScores) {
	analyses := s.AnalyzeQuestions(session)
	agg := s.Aggregator.Aggregate(analyses)

	fb := &model.OverallFeedback{
		CategoryScores: agg.CategoryScores,
	}

	meanClarity, meanDomain := 0.0, 0.0
	if len(analyses) > 0 {
		for _, qa := range analyses {
			meanClarity += qa.Result.Clarity
			meanDomain += (qa.Result.Relevance + qa.Result.StructureScore) / 2
		}
		meanClarity /= float64(len(analyses))
		meanDomain /= float64(len(analyses))
	}

	fb.Communication = model.ScoreFeedback{
		Score:    roundScore(meanClarity),
		Feedback: dimensionFeedback("communication", meanClarity),
	}
	fb.Confidence = model.ScoreFeedback{
		Score:    roundScore(agg.AvgConfidence),
		Feedback: dimensionFeedback("confidence", agg.AvgConfidence),
	}

	// 技术类会话评技术准确性，其余评问题解决能力
	domainSF := model.ScoreFeedback{
		Score: roundScore(meanDomain),
	}
	if session.SessionType == model.SessionTechnical || session.SessionType == model.SessionCoding {
		domainSF.Feedback = dimensionFeedback("technical accuracy", meanDomain)
		fb.TechnicalAccuracy = &domainSF
	} else {
		domainSF.Feedback = dimensionFeedback("problem solving", meanDomain)
		fb.ProblemSolving = &domainSF
	}

	fb.Overall = s.overallNarrative(agg)
	fb.ImprovementAreas = s.improvementAreas(session, agg)
	fb.Strengths = s.strengths(agg)
	fb.NextSteps = s.nextSteps(agg)

	return fb, agg
}

// applyQuestionFeedback 按分数档位生成逐题评语、强项与改进点
func (s *FeedbackService) applyQuestionFeedback(q *model.SessionQuestion, r model.AnalysisResult) {
	categoryLabel := strings.ReplaceAll(string(q.Category), "_", " ")

	switch {
	case r.Score >= 8:
		q.FeedbackContent = fmt.Sprintf("Excellent %s answer. You covered the question thoroughly and communicated it well.", categoryLabel)
	case r.Score >= 6:
		q.FeedbackContent = fmt.Sprintf("Good %s answer with room to sharpen a few dimensions.", categoryLabel)
	case r.Score >= 4:
		q.FeedbackContent = fmt.Sprintf("Adequate %s answer, but several areas need attention.", categoryLabel)
	default:
		q.FeedbackContent = fmt.Sprintf("This %s answer needs improvement across most dimensions.", categoryLabel)
	}

	q.Score = r.Score
	q.Strengths = nil
	q.Improvements = nil

	type dimension struct {
		name  string
		value float64
	}
	dims := []dimension{
		{"completeness", r.Completeness},
		{"clarity", r.Clarity},
		{"relevance", r.Relevance},
		{"confidence", r.Confidence},
		{"structure", r.StructureScore},
	}

	for _, d := range dims {
		if d.value >= 7 {
			q.Strengths = append(q.Strengths, strengthText(d.name))
		} else if d.value < 5 {
			q.Improvements = append(q.Improvements, improvementText(d.name, q.Category))
		}
	}
}

func strengthText(dimension string) string {
	switch dimension {
	case "completeness":
		return "Thorough, well-developed answer"
	case "clarity":
		return "Clear and articulate delivery"
	case "relevance":
		return "Directly addressed the question"
	case "confidence":
		return "Confident, assured language"
	default:
		return "Well-structured response"
	}
}

func improvementText(dimension string, category model.QuestionCategory) string {
	switch dimension {
	case "completeness":
		return "Develop your answer with more depth and concrete detail"
	case "clarity":
		return "Use shorter sentences and cut filler words"
	case "relevance":
		return "Tie your answer back to what the question actually asks"
	case "confidence":
		return "State your achievements directly instead of hedging"
	default:
		if category == model.CategoryBehavioral {
			return "Apply the STAR method: Situation, Task, Action, Result"
		}
		return "Give your answer a clear structure with an opening, body and conclusion"
	}
}

func dimensionFeedback(name string, score float64) string {
	switch {
	case score >= 8:
		return fmt.Sprintf("Outstanding %s throughout the session.", name)
	case score >= 6:
		return fmt.Sprintf("Solid %s, with occasional room to tighten up.", name)
	case score >= 4:
		return fmt.Sprintf("Your %s was inconsistent; focused practice will help.", name)
	default:
		return fmt.Sprintf("Your %s needs significant work; make it a practice priority.", name)
	}
}

func performanceBand(overallScore float64) string {
	switch {
	case overallScore >= 90:
		return "Excellent"
	case overallScore >= 80:
		return "Good"
	case overallScore >= 70:
		return "Average"
	case overallScore >= 60:
		return "Below Average"
	default:
		return "Needs Improvement"
	}
}

func (s *FeedbackService) overallNarrative(agg AggregatedScores) string {
	band := performanceBand(agg.OverallScore)
	narrative := fmt.Sprintf("%s performance with an overall score of %.0f%%.", band, agg.OverallScore)
	if agg.AvgConfidence < 5 {
		narrative += " Your answers would land better with more confident delivery."
	}
	return narrative
}

func (s *FeedbackService) improvementAreas(session *model.InterviewSession, agg AggregatedScores) []model.ImprovementArea {
	var areas []model.ImprovementArea

	for _, cat := range sortedCategories(agg.CategoryScores) {
		score := agg.CategoryScores[cat]
		if score >= 60 {
			continue
		}
		priority := model.PriorityMedium
		if score < 40 {
			priority = model.PriorityHigh
		}
		label := strings.ReplaceAll(string(cat), "_", " ")
		areas = append(areas, model.ImprovementArea{
			Area:       label,
			Priority:   priority,
			Suggestion: fmt.Sprintf("Practice more %s questions to raise your %.0f%% average", label, score),
		})
	}

	if agg.AvgConfidence < 6 {
		areas = append(areas, model.ImprovementArea{
			Area:       "confidence",
			Priority:   model.PriorityMedium,
			Suggestion: "Replace hedging phrases with direct statements about what you did and achieved",
		})
	}

	if session.SessionType == model.SessionBehavioral {
		if score, ok := agg.CategoryScores[model.CategoryBehavioral]; ok && score < 60 {
			areas = append(areas, model.ImprovementArea{
				Area:       "STAR structure",
				Priority:   model.PriorityMedium,
				Suggestion: "Frame behavioral answers as Situation, Task, Action and Result",
			})
		}
	}

	return areas
}

func (s *FeedbackService) strengths(agg AggregatedScores) []string {
	var strengths []string

	minScore, maxScore := math.Inf(1), math.Inf(-1)
	for _, cat := range sortedCategories(agg.CategoryScores) {
		score := agg.CategoryScores[cat]
		if score >= 70 {
			strengths = append(strengths, fmt.Sprintf("Strong %s performance (%.0f%%)", strings.ReplaceAll(string(cat), "_", " "), score))
		}
		minScore = math.Min(minScore, score)
		maxScore = math.Max(maxScore, score)
	}

	if len(agg.CategoryScores) >= 2 && maxScore-minScore < 20 && minScore >= 60 {
		strengths = append(strengths, "Consistent performance across all question categories")
	}

	if len(strengths) == 0 {
		strengths = append(strengths, "You show potential; consistent practice will turn it into results")
	}

	return strengths
}

func (s *FeedbackService) nextSteps(agg AggregatedScores) []string {
	var steps []string

	switch {
	case agg.OverallScore >= 80:
		steps = append(steps,
			"Move up a difficulty level to keep challenging yourself",
			"Try a mixed session to test your range")
	case agg.OverallScore >= 60:
		steps = append(steps,
			"Schedule regular practice sessions to build consistency",
			"Review the per-question feedback and rework your weakest answers")
	default:
		steps = append(steps,
			"Start with easier questions to build a foundation",
			"Practice answering out loud before your next session")
	}

	if weakest, ok := weakestCategory(agg.CategoryScores); ok {
		steps = append(steps, fmt.Sprintf("Focus your next session on %s questions, your weakest category", strings.ReplaceAll(string(weakest), "_", " ")))
	}

	return steps
}

func weakestCategory(scores map[model.QuestionCategory]float64) (model.QuestionCategory, bool) {
	var weakest model.QuestionCategory
	lowest := math.Inf(1)
	for _, cat := range sortedCategories(scores) {
		if scores[cat] < lowest {
			lowest = scores[cat]
			weakest = cat
		}
	}
	return weakest, len(scores) > 0
}

// sortedCategories 遍历顺序稳定，反馈文案可复现
func sortedCategories(scores map[model.QuestionCategory]float64) []model.QuestionCategory {
	cats := make([]model.QuestionCategory, 0, len(scores))
	for cat := range scores {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

func roundScore(v float64) int {
	return int(math.Round(v))
}
