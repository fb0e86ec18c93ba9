package service

import (
	"interview_coach_backend/internal/model"
	"math"
	"regexp"
	"strings"
)

// ResponseAnalyzer 对单次回答做确定性的规则化文本分析，纯函数、无共享状态，
// 可并发调用。任何输入都不会报错：空回答退化为全零结果。
type ResponseAnalyzer struct{}

func NewResponseAnalyzer() *ResponseAnalyzer {
	return &ResponseAnalyzer{}
}

var (
	wordSplitRe     = regexp.MustCompile(`[^a-z0-9']+`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// Analyze 将一条回答与其题目上下文映射为多维度分析结果
func (a *ResponseAnalyzer) Analyze(responseText, questionText string, category model.QuestionCategory, sessionType model.SessionType) model.AnalysisResult {
	trimmed := strings.TrimSpace(responseText)
	if trimmed == "" {
		return model.AnalysisResult{
			Insights: []string{"No response provided"},
		}
	}

	lower := strings.ToLower(trimmed)
	words := splitWords(lower)
	sentences := splitSentences(trimmed)

	wordCount := len(words)
	sentenceCount := len(sentences)
	avgWordsPerSentence := 0.0
	if sentenceCount > 0 {
		avgWordsPerSentence = float64(wordCount) / float64(sentenceCount)
	}

	completeness := a.completenessScore(wordCount, category)
	clarity := a.clarityScore(avgWordsPerSentence, sentenceCount, lower)
	relevance := a.relevanceScore(lower, words, questionText, category)
	confidence := a.confidenceScore(lower)
	sentiment := a.sentimentScore(words)
	structure := a.structureScore(lower, words, category)

	score := clamp(
		0.25*completeness+
			0.20*clarity+
			0.25*relevance+
			0.15*confidence+
			0.15*structure+
			0.1*sentiment,
		0, 10)

	result := model.AnalysisResult{
		Score:          round1(score),
		Completeness:   round1(completeness),
		Clarity:        round1(clarity),
		Relevance:      round1(relevance),
		Confidence:     round1(confidence),
		SentimentScore: round1(sentiment),
		StructureScore: round1(structure),
	}
	result.Insights = a.insights(result, category)
	return result
}

// completenessScore 依据类别的期望篇幅区间给回答长度打分
func (a *ResponseAnalyzer) completenessScore(wordCount int, category model.QuestionCategory) float64 {
	band, ok := wordCountBands[category]
	if !ok {
		band = defaultWordCountBand
	}

	switch {
	case wordCount == 0:
		return 0
	case wordCount < band.Min/2:
		return 2
	case wordCount < band.Min:
		return 4
	case wordCount <= band.Optimal:
		// min..optimal 线性爬升 6 → 10
		ratio := float64(wordCount-band.Min) / float64(band.Optimal-band.Min)
		return 6 + 4*ratio
	case wordCount <= band.Max:
		return 10
	default:
		excess := float64(wordCount - band.Max)
		return math.Max(7, 10-excess/50)
	}
}

func (a *ResponseAnalyzer) clarityScore(avgWordsPerSentence float64, sentenceCount int, lower string) float64 {
	score := 5.0

	switch {
	case avgWordsPerSentence >= 12 && avgWordsPerSentence <= 20:
		score += 2
	case avgWordsPerSentence >= 8 && avgWordsPerSentence <= 25:
		score += 1
	}
	if avgWordsPerSentence < 5 || avgWordsPerSentence > 30 {
		score -= 2
	}

	if sentenceCount >= 2 {
		score++
	}
	if sentenceCount >= 4 {
		score++
	}

	for _, w := range transitionWords {
		if containsPhrase(lower, w) {
			score++
			break
		}
	}

	fillerPenalty := 0.0
	for _, f := range fillerWords {
		fillerPenalty += 0.5 * float64(countPhrase(lower, f))
	}
	score -= math.Min(fillerPenalty, 2)

	return clamp(score, 0, 10)
}

// relevanceScore 回答与题干内容词的重合度 + 类别关键词 + STAR 要素加成
func (a *ResponseAnalyzer) relevanceScore(lower string, words []string, questionText string, category model.QuestionCategory) float64 {
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	questionWords := splitWords(strings.ToLower(questionText))
	var contentWords []string
	for _, qw := range questionWords {
		if len(qw) > 3 && !stopWords[qw] {
			contentWords = append(contentWords, qw)
		}
	}

	keywordScore := 0.0
	if len(contentWords) > 0 {
		matched := 0
		for _, cw := range contentWords {
			if wordSet[cw] {
				matched++
			}
		}
		keywordScore = 10 * float64(matched) / float64(len(contentWords))
	}

	// 类别关键词每命中 2 分，STAR 每要素 2.5 分，均归一到 0-10 后按权重合成
	categoryScore := 0.0
	for _, kw := range categoryKeywords[category] {
		if containsPhrase(lower, kw) {
			categoryScore += 2
		}
	}
	categoryScore = math.Min(categoryScore, 10)

	starScore := 0.0
	if category == model.CategoryBehavioral || category == model.CategorySituational {
		starScore = math.Min(2.5*float64(starElementsPresent(lower)), 10)
	}

	return math.Min(0.6*keywordScore+0.3*categoryScore+0.1*starScore, 10)
}

func (a *ResponseAnalyzer) confidenceScore(lower string) float64 {
	score := 5.0

	for _, p := range confidentPhrases {
		score += 1.5 * float64(strings.Count(lower, p))
	}
	for _, p := range uncertainPhrases {
		score -= 2 * float64(countPhrase(lower, p))
	}
	for _, p := range examplePhrases {
		if strings.Contains(lower, p) {
			score++
			break
		}
	}
	if quantifiedResultRe.MatchString(lower) {
		score++
	}

	return clamp(score, 0, 10)
}

func (a *ResponseAnalyzer) sentimentScore(words []string) float64 {
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	positive, negative := 0, 0
	for _, w := range positiveWords {
		positive += counts[w]
	}
	for _, w := range negativeWords {
		negative += counts[w]
	}

	return clamp(0.5*float64(positive-negative), -5, 5)
}

func (a *ResponseAnalyzer) structureScore(lower string, words []string, category model.QuestionCategory) float64 {
	score := 5.0

	for _, m := range logicalFlowMarkers {
		if containsPhrase(lower, m) {
			score += 2
			break
		}
	}

	vocabHits := 0
	for _, v := range problemSolvingVocab {
		if containsPhrase(lower, v) {
			vocabHits++
		}
	}
	if vocabHits >= 2 {
		score++
	}

	switch category {
	case model.CategoryBehavioral, model.CategorySituational:
		// 每个 STAR 要素 2.5 分，上限 10
		star := math.Min(2.5*float64(starElementsPresent(lower)), 10)
		score += 0.3 * star
	case model.CategoryTechnical, model.CategoryProblemSolving:
		// 五个技术结构要点各 2 分，上限 10
		tech := 0.0
		for _, t := range technicalStructureTerms {
			if containsPhrase(lower, t) {
				tech += 2
			}
		}
		score += 0.3 * math.Min(tech, 10)
	}

	return clamp(score, 0, 10)
}

func (a *ResponseAnalyzer) insights(r model.AnalysisResult, category model.QuestionCategory) []string {
	var insights []string

	if r.Completeness < 4 {
		insights = append(insights, "Your answer is too brief; expand with more detail and context")
	} else if r.Completeness > 9 {
		insights = append(insights, "Great level of detail in your answer")
	}
	if r.Clarity < 5 {
		insights = append(insights, "Work on clarity: shorter sentences and fewer filler words help")
	}
	if r.Relevance < 5 {
		insights = append(insights, "Focus on the question being asked and address its key points directly")
	}
	if r.Confidence < 5 {
		insights = append(insights, "Use more confident language when describing your contributions")
	}
	if r.StructureScore < 5 {
		if category == model.CategoryBehavioral {
			insights = append(insights, "Structure your answer with the STAR method: Situation, Task, Action, Result")
		} else {
			insights = append(insights, "Organize your answer with a clear beginning, middle and conclusion")
		}
	}

	return insights
}

func starElementsPresent(lower string) int {
	present := 0
	for _, element := range starElements {
		for _, synonym := range starSynonyms[element] {
			if strings.Contains(lower, synonym) {
				present++
				break
			}
		}
	}
	return present
}

func splitWords(lower string) []string {
	parts := wordSplitRe.Split(lower, -1)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	var sentences []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, strings.TrimSpace(p))
		}
	}
	return sentences
}

// containsPhrase 单词按词边界匹配，短语用子串匹配
func containsPhrase(lower, phrase string) bool {
	return countPhrase(lower, phrase) > 0
}

func countPhrase(lower, phrase string) int {
	if strings.Contains(phrase, " ") {
		return strings.Count(lower, phrase)
	}
	count := 0
	idx := 0
	for {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return count
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordChar(lower[start-1])
		afterOK := end == len(lower) || !isWordChar(lower[end])
		if beforeOK && afterOK {
			count++
		}
		idx = end
	}
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '\''
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
