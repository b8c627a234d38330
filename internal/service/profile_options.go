package service

// ProfileOptions are the choices offered during onboarding.
type ProfileOptions struct {
	Campuses             []string `json:"campuses"`
	AcademicLevels       []string `json:"academic_levels"`
	CreditLoads          []string `json:"credit_loads"`
	FinancialAidStatuses []string `json:"financial_aid_statuses"`
	CurrentSemesters     []string `json:"current_semesters"`
	GraduationTerms      []string `json:"graduation_terms"`
}

// DefaultProfileOptions returns the onboarding enumerations.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		Campuses: []string{
			"University Park",
			"Penn State Abington",
			"Penn State Altoona",
			"Penn State Behrend",
			"Penn State Berks",
			"Penn State Harrisburg",
			"Penn State Hazleton",
			"Penn State Lehigh Valley",
			"World Campus",
		},
		AcademicLevels: []string{"Freshman", "Sophomore", "Junior", "Senior", "Graduate"},
		CreditLoads: []string{
			"Full-time (12+ credits)",
			"Part-time (under 12 credits)",
		},
		FinancialAidStatuses: []string{
			"Receiving federal aid",
			"Scholarship only",
			"Not receiving aid",
			"Not sure",
		},
		CurrentSemesters: []string{"Spring 2026", "Summer 2026", "Fall 2026"},
		GraduationTerms: []string{
			"Fall 2025", "Spring 2026", "Summer 2026",
			"Fall 2026", "Spring 2027", "Summer 2027",
			"Fall 2027", "Spring 2028", "Summer 2028",
			"Fall 2028", "Spring 2029", "Summer 2029",
		},
	}
}
