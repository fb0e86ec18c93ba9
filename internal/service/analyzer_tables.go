package service

import (
	"interview_coach_backend/internal/model"
	"regexp"
)

// 响应分析使用的词表与阈值，集中声明便于审计和单独测试

// wordCountBand 各题目类别期望的回答长度区间
type wordCountBand struct {
	Min     int
	Optimal int
	Max     int
}

var wordCountBands = map[model.QuestionCategory]wordCountBand{
	model.CategoryTechnical:      {Min: 50, Optimal: 150, Max: 300},
	model.CategoryBehavioral:     {Min: 80, Optimal: 200, Max: 400},
	model.CategorySituational:    {Min: 70, Optimal: 180, Max: 350},
	model.CategoryProblemSolving: {Min: 60, Optimal: 160, Max: 320},
	model.CategoryCommunication:  {Min: 40, Optimal: 120, Max: 250},
}

// defaultWordCountBand 未知类别的兜底区间
var defaultWordCountBand = wordCountBand{Min: 50, Optimal: 150, Max: 300}

var transitionWords = []string{
	"however", "therefore", "furthermore", "moreover", "additionally",
	"consequently", "meanwhile", "nevertheless", "similarly", "instead",
}

var fillerWords = []string{
	"um", "uh", "like", "you know", "basically", "actually",
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "have": true, "what": true, "when": true, "where": true,
	"which": true, "with": true, "would": true, "could": true, "should": true,
	"about": true, "your": true, "their": true, "there": true, "that": true,
	"this": true, "these": true, "those": true, "from": true, "they": true,
	"tell": true, "describe": true, "explain": true, "give": true, "example": true,
	"time": true, "situation": true, "please": true, "how": true, "why": true,
	"what's": true, "does": true, "did": true, "were": true, "will": true,
}

var categoryKeywords = map[model.QuestionCategory][]string{
	model.CategoryTechnical: {
		"algorithm", "complexity", "performance", "scalability", "architecture",
		"database", "design", "implementation", "testing", "optimization",
		"system", "code", "debug", "framework", "api",
	},
	model.CategoryBehavioral: {
		"team", "conflict", "leadership", "collaboration", "communication",
		"deadline", "challenge", "feedback", "mentor", "responsibility",
		"initiative", "stakeholder", "priority", "decision",
	},
	model.CategorySituational: {
		"approach", "handle", "decision", "priority", "tradeoff",
		"stakeholder", "pressure", "deadline", "escalate", "resolve",
	},
	model.CategoryProblemSolving: {
		"analyze", "solution", "approach", "alternative", "evaluate",
		"root", "cause", "hypothesis", "iterate", "measure", "constraint",
	},
	model.CategoryCommunication: {
		"explain", "clarify", "audience", "present", "summarize",
		"listen", "align", "document", "simplify",
	},
}

// starSynonyms STAR 四要素各自的同义词表，按要素匹配
var starSynonyms = map[string][]string{
	"situation": {"situation", "context", "background", "at the time", "when i was", "we were facing", "the problem was"},
	"task":      {"task", "goal", "objective", "my role", "responsible for", "i needed to", "my job was"},
	"action":    {"action", "i decided", "i implemented", "i organized", "i created", "i led", "i took", "so i", "i worked"},
	"result":    {"result", "outcome", "impact", "as a result", "in the end", "we achieved", "this led to", "improved", "increased", "reduced"},
}

var starElements = []string{"situation", "task", "action", "result"}

var confidentPhrases = []string{
	"i am confident", "i achieved", "i led", "i delivered", "i successfully",
	"i am certain", "i drove", "i owned", "i spearheaded", "i'm proud",
}

var uncertainPhrases = []string{
	"i think maybe", "i'm not sure", "i am not sure", "i guess", "probably",
	"i don't know", "kind of", "sort of", "i suppose", "hopefully",
}

var examplePhrases = []string{
	"for example", "for instance", "such as", "in my experience", "to illustrate",
	"one time", "a good example",
}

// quantifiedResultRe 数字 + 百分号/单位，视为量化成果
var quantifiedResultRe = regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent|x|times|users|customers|requests|hours|days|weeks|months|dollars|ms|seconds|people|engineers|projects)`)

var positiveWords = []string{
	"success", "successful", "achieved", "improved", "effective", "efficient",
	"great", "excellent", "strong", "growth", "win", "delivered", "resolved",
	"learned", "proud", "positive", "best", "innovative", "impact",
}

var negativeWords = []string{
	"failure", "failed", "problem", "difficult", "bad", "wrong", "mistake",
	"blame", "worst", "impossible", "hate", "terrible", "struggle", "confused",
	"frustrated", "never", "unfortunately",
}

var logicalFlowMarkers = []string{
	"first", "second", "third", "then", "next", "finally", "in conclusion",
	"to begin", "lastly", "after that",
}

var problemSolvingVocab = []string{
	"analyze", "identify", "evaluate", "solution", "approach", "alternative",
	"investigate", "diagnose", "prioritize", "validate",
}

var technicalStructureTerms = []string{
	"requirement", "design", "implementation", "testing", "tradeoff",
}
