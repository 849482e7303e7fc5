package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
)

// ErrNoJSON is returned when the model output holds no JSON object.
var ErrNoJSON = errors.New("no JSON object in model output")

// VisionPrompt is sent next to the screenshot. The model must answer with a
// single JSON object in the shape of the example.
const VisionPrompt = `You are a web design expert analyzing a website screenshot. Provide ONLY a JSON response with no additional text.

{
  "visualIssues": ["issue1", "issue2", "issue3"],
  "layoutProblems": ["problem1", "problem2"],
  "clarityScore": 75,
  "attentionZones": [
    {"area": "header", "intensity": 0.9, "x": 50, "y": 20},
    {"area": "main-content", "intensity": 0.7, "x": 50, "y": 50},
    {"area": "sidebar", "intensity": 0.5, "x": 80, "y": 50},
    {"area": "footer", "intensity": 0.3, "x": 50, "y": 80}
  ]
}`

// ExtractJSON returns the text from the first "{" to the last "}", dropping
// markdown fences and any prose around the object.
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

// ParseVision validates a model answer and normalizes it into a vision
// result. Provider and outcome are left to the caller.
func ParseVision(text string) (providers.VisionResult, error) {
	if strings.TrimSpace(text) == "" {
		return providers.VisionResult{}, ErrNoJSON
	}
	raw, err := ExtractJSON(text)
	if err != nil {
		return providers.VisionResult{}, err
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return providers.VisionResult{}, fmt.Errorf("decode vision json: %w", err)
	}

	res := providers.VisionResult{
		VisualIssues:   stringList(doc["visualIssues"], providers.MaxVisionIssues),
		LayoutProblems: stringList(doc["layoutProblems"], providers.MaxVisionIssues),
		ClarityScore:   providers.MissingClarityScore,
	}
	if v, ok := number(doc["clarityScore"]); ok {
		res.ClarityScore = clamp(v, 0, 100)
	}
	if zones, ok := doc["attentionZones"].([]any); ok {
		for _, z := range zones {
			m, ok := z.(map[string]any)
			if !ok {
				continue
			}
			res.AttentionZones = append(res.AttentionZones, zone(m))
		}
	}

	if len(res.VisualIssues) == 0 {
		res.VisualIssues = []string{providers.PlaceholderVisualIssue}
	}
	if len(res.LayoutProblems) == 0 {
		res.LayoutProblems = []string{providers.PlaceholderLayoutIssue}
	}
	if len(res.AttentionZones) == 0 {
		res.AttentionZones = providers.DefaultZones()
	}
	return res, nil
}

func zone(m map[string]any) providers.AttentionZone {
	z := providers.AttentionZone{Area: "unknown", Intensity: 0.5, X: 50, Y: 50}
	if area, ok := m["area"].(string); ok && strings.TrimSpace(area) != "" {
		z.Area = area
	}
	if v, ok := number(m["intensity"]); ok {
		z.Intensity = clamp(v, 0, 1)
	}
	if v, ok := number(m["x"]); ok {
		z.X = v
	}
	if v, ok := number(m["y"]); ok {
		z.Y = v
	}
	return z
}

func stringList(v any, limit int) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, limit)
	for _, it := range arr {
		if len(out) == limit {
			break
		}
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
