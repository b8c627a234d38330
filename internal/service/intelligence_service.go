package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/digi0/ACE/internal/config"
	"github.com/digi0/ACE/internal/models"
)

// Insight rule names accepted in intelligence.rule_order.
const (
	RuleInternational      = "international"
	RuleWithdrawalDeadline = "withdrawal_deadline"
	RuleJuniorPlanning     = "junior_planning"
)

const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// StudentContext is the one-line summary shown above the insight.
type StudentContext struct {
	Term   string `json:"term"`
	Level  string `json:"level"`
	Status string `json:"status"`
}

// SuggestedAction pre-fills a chat prompt.
type SuggestedAction struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// Intelligence is the single calm insight for the dashboard.
type Intelligence struct {
	Context StudentContext   `json:"context"`
	Insight string           `json:"insight"`
	Urgency string           `json:"urgency"`
	Action  *SuggestedAction `json:"action"`
}

// IntelligenceService derives the dashboard insight from a user's profile and
// the academic calendar.
type IntelligenceService interface {
	ForUser(user *models.User) *Intelligence
}

type insightRule func(p *models.Profile, daysLeft int) *Intelligence

type intelligenceService struct {
	deadline    time.Time
	defaultTerm string
	rules       []insightRule
	now         func() time.Time
}

// NewIntelligenceService builds the service. Rules are evaluated in
// cfg.RuleOrder and the first one that produces an insight wins.
func NewIntelligenceService(cfg config.IntelligenceConfig) (IntelligenceService, error) {
	deadline, err := time.Parse(time.DateOnly, cfg.WithdrawalDeadline)
	if err != nil {
		return nil, fmt.Errorf("parse withdrawal deadline: %w", err)
	}

	s := &intelligenceService{
		deadline:    deadline,
		defaultTerm: cfg.DefaultTerm,
		now:         time.Now,
	}

	order := cfg.RuleOrder
	if len(order) == 0 {
		order = []string{RuleInternational, RuleWithdrawalDeadline, RuleJuniorPlanning}
	}
	for _, name := range order {
		switch name {
		case RuleInternational:
			s.rules = append(s.rules, s.internationalRule)
		case RuleWithdrawalDeadline:
			s.rules = append(s.rules, s.withdrawalRule)
		case RuleJuniorPlanning:
			s.rules = append(s.rules, juniorPlanningRule)
		default:
			return nil, fmt.Errorf("unknown intelligence rule %q", name)
		}
	}
	return s, nil
}

func (s *intelligenceService) ForUser(user *models.User) *Intelligence {
	p := user.Profile
	if p == nil {
		p = &models.Profile{}
	}

	ctx := StudentContext{
		Term:   firstNonEmpty(p.CurrentSemester, s.defaultTerm),
		Level:  firstNonEmpty(p.AcademicLevel, "Student"),
		Status: enrollmentStatus(p.CreditLoad),
	}

	daysLeft := s.daysUntilDeadline()
	for _, rule := range s.rules {
		if in := rule(p, daysLeft); in != nil {
			in.Context = ctx
			return in
		}
	}

	return &Intelligence{
		Context: ctx,
		Insight: fmt.Sprintf("No urgent items right now. You're on track for %s.", ctx.Term),
		Urgency: UrgencyLow,
	}
}

// daysUntilDeadline counts calendar days between today (UTC) and the deadline.
func (s *intelligenceService) daysUntilDeadline() int {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(s.deadline.Sub(today).Hours() / 24)
}

func (s *intelligenceService) deadlineLabel() string {
	return s.deadline.Format("January") + " " + ordinal(s.deadline.Day())
}

func (s *intelligenceService) withdrawalRule(_ *models.Profile, daysLeft int) *Intelligence {
	switch {
	case daysLeft > 0 && daysLeft <= 7:
		return &Intelligence{
			Insight: fmt.Sprintf("Withdrawal deadline is in %d %s. Act now if you're considering dropping a course.", daysLeft, plural(daysLeft, "day")),
			Urgency: UrgencyHigh,
			Action: &SuggestedAction{
				Label:  "Ask about withdrawal",
				Prompt: "I need to understand my options for withdrawing from a course before the deadline.",
			},
		}
	case daysLeft > 7 && daysLeft <= 21:
		return &Intelligence{
			Insight: fmt.Sprintf("The course withdrawal deadline is %s, %d days away.", s.deadlineLabel(), daysLeft),
			Urgency: UrgencyMedium,
			Action: &SuggestedAction{
				Label:  "Review my options",
				Prompt: fmt.Sprintf("What should I consider before the withdrawal deadline on %s?", s.deadlineLabel()),
			},
		}
	}
	return nil
}

// internationalRule fires for international students who are part-time or
// inside the withdrawal window, since either can affect visa status.
func (s *intelligenceService) internationalRule(p *models.Profile, daysLeft int) *Intelligence {
	if !p.InternationalStudent {
		return nil
	}
	inWindow := daysLeft > 0 && daysLeft <= 21
	if enrollmentStatus(p.CreditLoad) != "Part-time" && !inWindow {
		return nil
	}
	return &Intelligence{
		Insight: "As an international student, check with ISSS before dropping below 12 credits. Full-time enrollment is part of your visa status.",
		Urgency: UrgencyMedium,
		Action: &SuggestedAction{
			Label:  "Check my enrollment",
			Prompt: "How would dropping a course affect my full-time enrollment requirement as an international student?",
		},
	}
}

func juniorPlanningRule(p *models.Profile, _ int) *Intelligence {
	if !strings.EqualFold(p.AcademicLevel, "Junior") {
		return nil
	}
	return &Intelligence{
		Insight: "As a junior, now is a good time to map out your remaining requirements.",
		Urgency: UrgencyLow,
		Action: &SuggestedAction{
			Label:  "Plan ahead",
			Prompt: "Help me plan my remaining semesters to graduate on time.",
		},
	}
}

func enrollmentStatus(creditLoad string) string {
	if strings.HasPrefix(strings.ToLower(creditLoad), "part") {
		return "Part-time"
	}
	return "Full-time"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Compile-time check to ensure intelligenceService implements IntelligenceService.
var _ IntelligenceService = (*intelligenceService)(nil)
