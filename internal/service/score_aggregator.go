package service

import "interview_coach_backend/internal/model"

// QuestionAnalysis 一道已答题目及其分析结果
type QuestionAnalysis struct {
	Question *model.SessionQuestion
	Result   model.AnalysisResult
}

// AggregatedScores 会话级聚合分数
type AggregatedScores struct {
	CategoryScores map[model.QuestionCategory]float64 // 0-100 per category
	OverallScore   float64                            // 0-100
	AvgConfidence  float64                            // 0-10, mean across answered questions
	AnsweredCount  int
}

// ScoreAggregator 将逐题分析结果聚合为类别均分与整体百分比，纯计算、无状态
type ScoreAggregator struct{}

func NewScoreAggregator() *ScoreAggregator {
	return &ScoreAggregator{}
}

func (a *ScoreAggregator) Aggregate(analyses []QuestionAnalysis) AggregatedScores {
	agg := AggregatedScores{
		CategoryScores: make(map[model.QuestionCategory]float64),
	}
	if len(analyses) == 0 {
		return agg
	}

	type catAcc struct {
		sum   float64
		count int
	}
	byCategory := make(map[model.QuestionCategory]*catAcc)

	totalScore := 0.0
	totalConfidence := 0.0
	for _, qa := range analyses {
		totalScore += qa.Result.Score
		totalConfidence += qa.Result.Confidence

		acc, ok := byCategory[qa.Question.Category]
		if !ok {
			acc = &catAcc{}
			byCategory[qa.Question.Category] = acc
		}
		acc.sum += qa.Result.Score
		acc.count++
	}

	n := float64(len(analyses))
	// 题目得分为 0-10，会话级按百分比呈现
	agg.OverallScore = round1(totalScore / n * 10)
	agg.AvgConfidence = round1(totalConfidence / n)
	agg.AnsweredCount = len(analyses)

	for cat, acc := range byCategory {
		agg.CategoryScores[cat] = round1(acc.sum / float64(acc.count) * 10)
	}

	return agg
}
