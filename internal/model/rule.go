package model

import (
	"sort"
	"time"
)

// ClassificationRule is a user-authored natural-language matching criterion.
// Only enabled rules are ever presented to the rule matcher, and always
// sorted by Priority ascending (lower value = higher precedence).
type ClassificationRule struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	UserID    string
	Name      string
	Prompt    string
	Priority  int
	Enabled   bool
}

// SortRulesByPriority orders rules by ascending priority, preserving the
// original order among rules that share a priority value.
func SortRulesByPriority(rules []ClassificationRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
}
