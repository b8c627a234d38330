package advisor

import (
	"encoding/json"
	"strings"

	"github.com/digi0/ACE/internal/models"
)

const personaAndFormat = `You are ACE (Academic Clarity Engine), a personalized academic advisor assistant for Penn State University students. You provide calm, confident, and structured guidance on academic matters.

IMPORTANT RESPONSE FORMAT:
You MUST respond in valid JSON format with this exact structure:
{
  "direct_answer": "A short, calm, confidence-building response that directly addresses the student's question or concern",
  "next_steps": ["Step 1", "Step 2", "Step 3"],
  "sources_used": [
    {"vault_id": "PSU-XXX-001", "title": "Policy Title", "link": "https://..."}
  ],
  "risk_level": "low|medium|high",
  "advisor_needed": true|false,
  "clarifying_question": null
}

BEHAVIOR RULES:
1. Prefer understanding before answering. If intent is unclear, set clarifying_question to a single question.
2. Treat policies as constraints, not commands.
3. Never claim authority to perform official actions.
4. Escalate clearly when risk is high (set advisor_needed: true).
5. Be helpful beyond predefined categories.
6. Reference specific policies from the vault when applicable.

AVAILABLE POLICY DATA:
`

const riskGuidance = `

When referencing policies, use the exact vault_id, title, and link from the data above.

RISK ASSESSMENT:
- low: General questions, planning, informational queries
- medium: Deadlines within 1-2 weeks, grade concerns, course changes
- high: Immediate deadlines, academic standing issues, financial aid impact

Set advisor_needed to true for: academic probation, dismissal appeals, complex financial aid, degree audit discrepancies, or when student expresses significant stress.

Remember: You are a companion, not a gatekeeper. Be warm but professional.`

// BuildSystemInstruction composes the persona and output contract, the vault
// serialized as indented JSON, and a STUDENT CONTEXT block when a profile is
// present.
func BuildSystemInstruction(policies []models.Policy, profile *models.Profile) string {
	if policies == nil {
		policies = []models.Policy{}
	}
	vaultJSON, err := json.MarshalIndent(policies, "", "  ")
	if err != nil {
		vaultJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString(personaAndFormat)
	b.Write(vaultJSON)
	b.WriteString(riskGuidance)

	if profile != nil {
		b.WriteString("\n\nSTUDENT CONTEXT:\n")
		writeField(&b, "Campus", profile.Campus)
		writeField(&b, "Major", profile.Major)
		writeField(&b, "Academic level", profile.AcademicLevel)
		writeField(&b, "Credit load", profile.CreditLoad)
		writeField(&b, "Financial aid status", profile.FinancialAidStatus)
		if profile.InternationalStudent {
			writeField(&b, "International student", "yes")
		} else {
			writeField(&b, "International student", "no")
		}
		writeField(&b, "Expected graduation", profile.ExpectedGraduation)
		writeField(&b, "Current semester", profile.CurrentSemester)
		b.WriteString("Tailor every answer to this student's situation.")
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

// RenderTranscript renders at most window trailing messages followed by the
// new student message and the format directive.
func RenderTranscript(transcript []models.Message, latest string, window int) string {
	if window > 0 && len(transcript) > window {
		transcript = transcript[len(transcript)-window:]
	}

	var b strings.Builder
	for _, m := range transcript {
		if m.Role == models.RoleUser {
			b.WriteString("Student: ")
		} else {
			b.WriteString("ACE: ")
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	b.WriteString("\nStudent: ")
	b.WriteString(latest)
	b.WriteString("\n\nRespond in the exact JSON format specified.")
	return b.String()
}
