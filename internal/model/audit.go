package model

import "time"

// ClassificationLogEntry records one rule match that was applied to a card,
// for the card's action timeline. Informational only; it never feeds back
// into plan resolution.
type ClassificationLogEntry struct {
	ClassifiedAt time.Time
	ID           int64
	CardID       string
	RuleID       string
	RuleName     string
	Actions      []Action
	Confidence   int
}
