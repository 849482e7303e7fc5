package readability

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	InsufficientData = "Insufficient Data"

	minChars = 50
	minWords = 20
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	nonAlphaRe = regexp.MustCompile(`[^a-z]`)
	vowelsRe   = regexp.MustCompile(`[aeiouy]+`)
	passiveRe  = regexp.MustCompile(`(?i)\b(is|are|was|were|be|been|being)\s+\w+ed\b`)
)

// Result is the readability dimension of an analysis.
type Result struct {
	Score               int      `json:"score"`
	FleschScore         float64  `json:"fleschScore"`
	GradeLevel          string   `json:"gradeLevel"`
	Issues              []string `json:"issues"`
	Words               int      `json:"words"`
	Sentences           int      `json:"sentences"`
	Syllables           int      `json:"syllables"`
	PassiveCount        int      `json:"passiveCount"`
	AvgWordsPerSentence float64  `json:"avgWordsPerSentence"`
	AvgSyllablesPerWord float64  `json:"avgSyllablesPerWord"`
}

// Analyze scores plain text with the Flesch Reading Ease formula plus a
// handful of style heuristics. It never fails: too little text yields a
// low-confidence result.
func Analyze(text string) Result {
	clean := strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(clean) < minChars {
		return insufficient(20, "Text content too short for analysis")
	}

	sentences := len(sentenceRe.FindAllStringIndex(clean, -1))
	if sentences < 1 {
		sentences = 1
	}
	words := strings.Fields(clean)
	if len(words) < minWords {
		return insufficient(30, "Not enough content to analyze")
	}

	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}

	wc := float64(len(words))
	avgWords := wc / float64(sentences)
	avgSyl := float64(syllables) / wc
	flesch := clamp(206.835-1.015*avgWords-84.6*avgSyl, 0, 100)

	passive := len(passiveRe.FindAllStringIndex(clean, -1))
	passiveRatio := float64(passive) / wc

	issues := []string{}
	switch {
	case flesch < 30:
		issues = append(issues, "Text is very difficult to read - consider simplifying")
	case flesch < 50:
		issues = append(issues, "Text is fairly difficult - consider using simpler words")
	}
	if avgWords > 25 {
		issues = append(issues, fmt.Sprintf("Long sentences detected (avg %.1f words/sentence) - break into shorter sentences", avgWords))
	}
	if avgSyl > 1.7 {
		issues = append(issues, "Using many complex words - consider simplifying vocabulary")
	}
	if passiveRatio > 0.1 {
		issues = append(issues, fmt.Sprintf("High passive voice usage (%d instances) - prefer active voice", passive))
	}

	score := flesch
	if avgWords <= 15 {
		score += 5
	}
	if avgSyl <= 1.5 {
		score += 5
	}
	if passiveRatio <= 0.05 {
		score += 5
	}
	if avgWords > 30 {
		score -= 10
	}
	if avgSyl > 2 {
		score -= 10
	}
	if passiveRatio > 0.15 {
		score -= 10
	}

	return Result{
		Score:               int(math.Round(clamp(score, 0, 100))),
		FleschScore:         math.Round(flesch*10) / 10,
		GradeLevel:          GradeLevel(flesch),
		Issues:              issues,
		Words:               len(words),
		Sentences:           sentences,
		Syllables:           syllables,
		PassiveCount:        passive,
		AvgWordsPerSentence: avgWords,
		AvgSyllablesPerWord: avgSyl,
	}
}

// GradeLevel maps a Flesch value to its school-grade label.
func GradeLevel(flesch float64) string {
	switch {
	case flesch >= 90:
		return "Grade 5 (Very Easy)"
	case flesch >= 80:
		return "Grade 6 (Easy)"
	case flesch >= 70:
		return "Grade 7 (Fairly Easy)"
	case flesch >= 60:
		return "Grade 8-9 (Standard)"
	case flesch >= 50:
		return "Grade 10-12 (Fairly Difficult)"
	case flesch >= 30:
		return "College (Difficult)"
	default:
		return "College Graduate (Very Difficult)"
	}
}

// CountSyllables estimates syllables of a single word.
func CountSyllables(word string) int {
	w := nonAlphaRe.ReplaceAllString(strings.ToLower(word), "")
	if len(w) <= 3 {
		return 1
	}
	groups := vowelsRe.FindAllStringIndex(w, -1)
	if len(groups) == 0 {
		return 1
	}
	n := len(groups)
	if strings.HasSuffix(w, "e") {
		n--
	}
	if strings.HasSuffix(w, "le") && len(w) > 2 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

func insufficient(score int, issue string) Result {
	return Result{
		Score:      score,
		GradeLevel: InsufficientData,
		Issues:     []string{issue},
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
