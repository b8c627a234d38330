package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digi0/ACE/internal/models"
)

const validAnswer = `{
  "direct_answer": "You can drop the course online.",
  "next_steps": ["Open LionPATH", "Select Drop"],
  "sources_used": [{"vault_id": "PSU-REG-001", "title": "Drop/Add", "link": "https://registrar.psu.edu/"}],
  "risk_level": "medium",
  "advisor_needed": false,
  "clarifying_question": null
}`

func TestNormalize_ParsesJSON(t *testing.T) {
	for name, raw := range map[string]string{
		"bare":         validAnswer,
		"json fence":   "```json\n" + validAnswer + "\n```",
		"plain fence":  "```\n" + validAnswer + "\n```",
		"inline fence": "```json" + validAnswer + "```",
		"padded":       "\n\n  " + validAnswer + "  \n",
	} {
		t.Run(name, func(t *testing.T) {
			r := Normalize(raw)
			assert.Equal(t, "You can drop the course online.", r.DirectAnswer)
			assert.Equal(t, []string{"Open LionPATH", "Select Drop"}, r.NextSteps)
			require.Len(t, r.SourcesUsed, 1)
			assert.Equal(t, "PSU-REG-001", r.SourcesUsed[0].ReferenceID)
			assert.Equal(t, models.RiskMedium, r.RiskLevel)
			assert.False(t, r.AdvisorNeeded)
			assert.Nil(t, r.ClarifyingQuestion)
		})
	}
}

func TestNormalize_MalformedIsVerbatim(t *testing.T) {
	for _, raw := range []string{
		"Sure! You should talk to your advisor.",
		"```json\n{\"direct_answer\": \"unterminated\n```",
		`{"direct_answer": "x", "advisor_needed": "maybe"}`,
	} {
		r := Normalize(raw)
		assert.Equal(t, raw, r.DirectAnswer)
		assert.NotNil(t, r.NextSteps)
		assert.Empty(t, r.NextSteps)
		assert.NotNil(t, r.SourcesUsed)
		assert.Empty(t, r.SourcesUsed)
		assert.Equal(t, models.RiskLow, r.RiskLevel)
		assert.False(t, r.AdvisorNeeded)
		assert.Nil(t, r.ClarifyingQuestion)
	}
}

func TestNormalize_Sanitizes(t *testing.T) {
	r := Normalize(`{"direct_answer":"ok","risk_level":"critical","clarifying_question":"  "}`)
	assert.Equal(t, models.RiskLow, r.RiskLevel)
	assert.NotNil(t, r.NextSteps)
	assert.NotNil(t, r.SourcesUsed)
	assert.Nil(t, r.ClarifyingQuestion)

	for _, level := range []string{"High", " high", "HIGH "} {
		r = Normalize(`{"direct_answer":"ok","risk_level":"` + level + `","advisor_needed":true}`)
		assert.Equal(t, models.RiskHigh, r.RiskLevel, level)
		assert.True(t, r.AdvisorNeeded)
	}
	r = Normalize(`{"direct_answer":"ok","risk_level":"Medium"}`)
	assert.Equal(t, models.RiskMedium, r.RiskLevel)

	r = Normalize(`{"direct_answer":"ok","advisor_needed":true,"clarifying_question":"Which course?"}`)
	assert.True(t, r.AdvisorNeeded)
	require.NotNil(t, r.ClarifyingQuestion)
	assert.Equal(t, "Which course?", *r.ClarifyingQuestion)
}

func TestSafeHarbor(t *testing.T) {
	r := SafeHarbor()
	assert.Contains(t, r.DirectAnswer, "I apologize")
	assert.Equal(t, []string{"Try rephrasing your question", "Contact your advisor at advising@psu.edu"}, r.NextSteps)
	require.Len(t, r.SourcesUsed, 1)
	assert.Equal(t, models.Source{
		ReferenceID: "PSU-ADV-001",
		Title:       "Academic Advising Services",
		Link:        "https://advising.psu.edu/",
	}, r.SourcesUsed[0])
	assert.Equal(t, models.RiskLow, r.RiskLevel)
	assert.False(t, r.AdvisorNeeded)

	// Each call returns an independent value.
	r.NextSteps[0] = "changed"
	assert.Equal(t, "Try rephrasing your question", SafeHarbor().NextSteps[0])
}

func TestNormalizeChecked(t *testing.T) {
	_, ok := NormalizeChecked(validAnswer)
	assert.True(t, ok)

	r, ok := NormalizeChecked("plain text")
	assert.False(t, ok)
	assert.Equal(t, "plain text", r.DirectAnswer)

	for _, raw := range []string{"null", "```json\nnull\n```", `["a"]`, `"just a string"`, "42"} {
		r, ok := NormalizeChecked(raw)
		assert.False(t, ok, raw)
		assert.Equal(t, raw, r.DirectAnswer)
		assert.Equal(t, models.RiskLow, r.RiskLevel)
		assert.NotNil(t, r.NextSteps)
	}
}
