package service

import (
	"strings"

	"github.com/spec-kit/support-router/internal/domain"
)

// GeneralSkill is the fallback tag when no classification rule matches. Agents
// carrying it form the catch-all assignment pool.
const GeneralSkill = "General"

// ClassifierRule pairs a predicate with the skill tag it yields.
type ClassifierRule struct {
	Name  string
	Match func(item *domain.WorkItem) bool
	Tag   string
}

// SkillClassifier maps a work item to its required skill tag using an ordered
// rule table. First match wins; the zero-rule classifier always yields
// GeneralSkill.
type SkillClassifier struct {
	rules []ClassifierRule
}

// NewSkillClassifier builds a classifier over the given rule table.
func NewSkillClassifier(rules []ClassifierRule) *SkillClassifier {
	return &SkillClassifier{rules: rules}
}

// Classify returns the required skill tag for the item. Total: every item
// classifies to some tag.
func (c *SkillClassifier) Classify(item *domain.WorkItem) string {
	for _, rule := range c.rules {
		if rule.Match(item) {
			return rule.Tag
		}
	}
	return GeneralSkill
}

// DefaultClassifierRules returns the standard rule table: item type equality
// first, then keyword matches over subject and description.
func DefaultClassifierRules() []ClassifierRule {
	return []ClassifierRule{
		typeRule("type-technical", domain.ItemTypeTechnical, "Technical"),
		typeRule("type-billing", domain.ItemTypeBilling, "Billing"),
		keywordRule("keywords-technical", "Technical", "error", "crash", "outage", "bug", "install", "upgrade"),
		keywordRule("keywords-billing", "Billing", "invoice", "payment", "refund", "charge", "subscription"),
	}
}

func typeRule(name string, itemType domain.ItemType, tag string) ClassifierRule {
	return ClassifierRule{
		Name: name,
		Tag:  tag,
		Match: func(item *domain.WorkItem) bool {
			return item.Type == itemType
		},
	}
}

func keywordRule(name, tag string, keywords ...string) ClassifierRule {
	return ClassifierRule{
		Name: name,
		Tag:  tag,
		Match: func(item *domain.WorkItem) bool {
			text := strings.ToLower(item.Subject + " " + item.Description)
			for _, keyword := range keywords {
				if strings.Contains(text, keyword) {
					return true
				}
			}
			return false
		},
	}
}
