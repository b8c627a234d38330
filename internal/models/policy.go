package models

// Policy is one institutional policy record in the vault.
type Policy struct {
	VaultID      string   `json:"vault_id" validate:"required,max=64"`
	Title        string   `json:"title" validate:"required"`
	Summary      string   `json:"summary"`
	Category     string   `json:"category" validate:"required,oneof=academic_calendar withdrawal tuition grades advising academic_standing registration financial_aid international graduation enrollment"`
	Tags         []string `json:"tags"`
	RiskCategory string   `json:"risk_category" validate:"omitempty,oneof=low medium high"`
	Content      string   `json:"content"`
	SourceLink   string   `json:"source_link" validate:"omitempty,url"`
	LastReviewed string   `json:"last_reviewed"`
}
