// Package risk implements the deterministic escalation policy applied on top
// of every model answer.
//
// The policy is an ordered list of rules. Classification walks the list in
// order and the first rule with a keyword found in the text decides the tier.
// The classifier can only raise the tier reported by the model, never lower it.
package risk

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/digi0/ACE/internal/models"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule is one (predicate, outcome) pair: any keyword match yields Tier.
type Rule struct {
	ID          string           `yaml:"id"`
	Tier        models.RiskLevel `yaml:"tier"`
	Description string           `yaml:"description"`
	Keywords    []string         `yaml:"keywords"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Verdict is the outcome of classifying one exchange.
type Verdict struct {
	Tier          models.RiskLevel
	AdvisorNeeded bool
	RuleID        string
	Keyword       string
}

// Classifier evaluates an ordered rule list.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier from rules in the given order.
func NewClassifier(rules []Rule) (*Classifier, error) {
	compiled := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r.Tier != models.RiskHigh && r.Tier != models.RiskMedium {
			return nil, fmt.Errorf("rule %d (%s): tier must be high or medium, got %q", i, r.ID, r.Tier)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, r.ID)
		}
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				return nil, fmt.Errorf("rule %d (%s): empty keyword", i, r.ID)
			}
			kw = append(kw, k)
		}
		r.Keywords = kw
		compiled = append(compiled, r)
	}
	return &Classifier{rules: compiled}, nil
}

// ParseRules decodes a YAML rule file.
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("risk rules file has no rules")
	}
	return f.Rules, nil
}

// DefaultClassifier returns the classifier built from the embedded rules.
func DefaultClassifier() (*Classifier, error) {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		return nil, err
	}
	return NewClassifier(rules)
}

// LoadClassifier reads rules from path, or falls back to the embedded rules
// when path is empty.
func LoadClassifier(path string) (*Classifier, error) {
	if path == "" {
		return DefaultClassifier()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk rules: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, err
	}
	return NewClassifier(rules)
}

// Rules returns a copy of the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify scans the user text and the answer text together. A high rule
// yields (high, true), a medium rule (medium, false), no match (low, false).
func (c *Classifier) Classify(userText, answerText string) Verdict {
	haystack := strings.ToLower(userText + "\n" + answerText)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(haystack, k) {
				return Verdict{
					Tier:          r.Tier,
					AdvisorNeeded: r.Tier == models.RiskHigh,
					RuleID:        r.ID,
					Keyword:       k,
				}
			}
		}
	}
	return Verdict{Tier: models.RiskLow}
}

// Apply upgrades resp in place according to v and reports whether anything
// changed. A high verdict forces high with an advisor; a medium verdict lifts
// low to medium. Nothing is ever downgraded.
func Apply(resp *models.StructuredResponse, v Verdict) bool {
	changed := false
	switch v.Tier {
	case models.RiskHigh:
		if resp.RiskLevel != models.RiskHigh {
			resp.RiskLevel = models.RiskHigh
			changed = true
		}
		if !resp.AdvisorNeeded {
			resp.AdvisorNeeded = true
			changed = true
		}
	case models.RiskMedium:
		if resp.RiskLevel.Rank() < models.RiskMedium.Rank() {
			resp.RiskLevel = models.RiskMedium
			changed = true
		}
	}
	return changed
}
