package accessibility

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bryanwahyu/visiai/internal/domain/capture"
)

// Result is the heuristic accessibility dimension.
type Result struct {
	Score           int      `json:"score"`
	MissingAlt      int      `json:"missingAlt"`
	AriaIssues      int      `json:"ariaIssues"`
	UnlabeledInputs int      `json:"unlabeledInputs"`
	GenericLinks    int      `json:"genericLinks"`
	HasSkipLink     bool     `json:"hasSkipLink"`
	HasLang         bool     `json:"hasLang"`
	Issues          []string `json:"issues"`
}

var genericLinkText = map[string]bool{
	"click here": true,
	"read more":  true,
	"here":       true,
	"more":       true,
}

// AnalyzeHTML parses markup and runs Analyze. Unparseable markup is treated
// as an empty document.
func AnalyzeHTML(html string, el capture.Elements) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return Analyze(doc, el)
}

// Analyze applies fixed penalties for common accessibility defects found in
// the document and the captured element summary.
func Analyze(doc *goquery.Document, el capture.Elements) Result {
	r := Result{Score: 100, Issues: []string{}}

	r.MissingAlt = el.MissingAlt()
	if r.MissingAlt > 0 {
		r.Score -= min(r.MissingAlt*5, 30)
		r.Issues = append(r.Issues, fmt.Sprintf("%d images missing alt text", r.MissingAlt))
	}

	doc.Find("[role]").Each(func(_ int, s *goquery.Selection) {
		if s.AttrOr("aria-label", "") == "" {
			r.AriaIssues++
		}
	})
	if r.AriaIssues > 0 {
		r.Score -= min(r.AriaIssues*3, 20)
		r.Issues = append(r.Issues, fmt.Sprintf("%d elements with role but no aria-label", r.AriaIssues))
	}

	inputs := doc.Find("input").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return !strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "hidden")
	}).Length()
	labels := doc.Find("label").Length()
	if inputs > labels {
		r.UnlabeledInputs = inputs - labels
		r.Score -= min(r.UnlabeledInputs*4, 25)
		r.Issues = append(r.Issues, fmt.Sprintf("%d form inputs without labels", r.UnlabeledInputs))
	}

	if len(el.Headings) == 0 {
		r.Score -= 15
		r.Issues = append(r.Issues, "No heading tags found - poor document structure")
	}

	doc.Find(`a[href^="#"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.Text()), "skip") {
			r.HasSkipLink = true
			return false
		}
		return true
	})
	if !r.HasSkipLink {
		r.Score -= 5
		r.Issues = append(r.Issues, "No skip navigation links found")
	}

	_, r.HasLang = doc.Find("html").First().Attr("lang")
	if !r.HasLang {
		r.Score -= 5
		r.Issues = append(r.Issues, "Missing lang attribute on html element")
	}

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if genericLinkText[strings.ToLower(strings.TrimSpace(s.Text()))] {
			r.GenericLinks++
		}
	})
	if r.GenericLinks > 0 {
		r.Score -= min(r.GenericLinks*2, 10)
		r.Issues = append(r.Issues, fmt.Sprintf("%d links with non-descriptive text", r.GenericLinks))
	}

	if r.Score < 0 {
		r.Score = 0
	}
	return r
}
