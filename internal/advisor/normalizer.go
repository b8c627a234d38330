package advisor

import (
	"encoding/json"
	"strings"

	"github.com/digi0/ACE/internal/models"
)

const (
	safeHarborAnswer = "I apologize, but I'm having trouble processing your request right now. Please try again or contact your academic advisor directly."

	safeHarborSourceID    = "PSU-ADV-001"
	safeHarborSourceTitle = "Academic Advising Services"
	safeHarborSourceLink  = "https://advising.psu.edu/"
)

// Normalize turns raw model text into a StructuredResponse. A fenced or bare
// JSON object is parsed and sanitized; anything unparseable is returned
// verbatim as the direct answer with low risk.
func Normalize(raw string) *models.StructuredResponse {
	resp, _ := NormalizeChecked(raw)
	return resp
}

// NormalizeChecked is Normalize that also reports whether raw parsed.
func NormalizeChecked(raw string) (*models.StructuredResponse, bool) {
	body := stripFences(raw)

	var parsed models.StructuredResponse
	// Only a JSON object is an answer; null, arrays and scalars fall back.
	if !strings.HasPrefix(body, "{") || json.Unmarshal([]byte(body), &parsed) != nil {
		return &models.StructuredResponse{
			DirectAnswer: raw,
			NextSteps:    []string{},
			SourcesUsed:  []models.Source{},
			RiskLevel:    models.RiskLow,
		}, false
	}
	return sanitize(&parsed), true
}

// SafeHarbor is the fixed answer used when the model call fails.
func SafeHarbor() *models.StructuredResponse {
	return &models.StructuredResponse{
		DirectAnswer: safeHarborAnswer,
		NextSteps: []string{
			"Try rephrasing your question",
			"Contact your advisor at advising@psu.edu",
		},
		SourcesUsed: []models.Source{{
			ReferenceID: safeHarborSourceID,
			Title:       safeHarborSourceTitle,
			Link:        safeHarborSourceLink,
		}},
		RiskLevel: models.RiskLow,
	}
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop an optional language tag such as "json" on the opening line.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func sanitize(r *models.StructuredResponse) *models.StructuredResponse {
	r.RiskLevel = models.RiskLevel(strings.ToLower(strings.TrimSpace(string(r.RiskLevel))))
	if !r.RiskLevel.Valid() {
		r.RiskLevel = models.RiskLow
	}
	if r.NextSteps == nil {
		r.NextSteps = []string{}
	}
	if r.SourcesUsed == nil {
		r.SourcesUsed = []models.Source{}
	}
	if r.ClarifyingQuestion != nil && strings.TrimSpace(*r.ClarifyingQuestion) == "" {
		r.ClarifyingQuestion = nil
	}
	return r
}
