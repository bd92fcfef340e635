package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/joshsymonds/cardflow/internal/model"
)

// MockMatcher is a test implementation of the Matcher interface. It either
// replays a fixed result/error or, when none is set, derives a
// deterministic result from the document so pipeline tests don't need a
// live LLM.
type MockMatcher struct {
	Err    error
	Result *model.ClassificationResult
	calls  []MockMatchCall
	mu     sync.Mutex
}

// MockMatchCall records details of one match request.
type MockMatchCall struct {
	Document *model.ProcessedDocument
	Rules    []model.ClassificationRule
}

// NewMockMatcher creates a new mock rule matcher.
func NewMockMatcher() *MockMatcher {
	return &MockMatcher{}
}

// Match implements Matcher.
func (m *MockMatcher) Match(_ context.Context, doc *model.ProcessedDocument, rules []model.ClassificationRule) (model.ClassificationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockMatchCall{
		Document: doc,
		Rules:    append([]model.ClassificationRule(nil), rules...),
	})
	m.mu.Unlock()

	if m.Err != nil {
		return model.ClassificationResult{}, m.Err
	}
	if m.Result != nil {
		return *m.Result, nil
	}

	return m.heuristic(doc, rules), nil
}

// Calls returns a copy of the recorded match requests.
func (m *MockMatcher) Calls() []MockMatchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockMatchCall(nil), m.calls...)
}

// heuristic matches the first rule whose name mentions the document type or
// seller, mimicking a cooperative matcher.
func (m *MockMatcher) heuristic(doc *model.ProcessedDocument, rules []model.ClassificationRule) model.ClassificationResult {
	for _, rule := range rules {
		name := strings.ToLower(rule.Name)
		if strings.Contains(name, string(doc.DocumentType)) ||
			(doc.SellerName != "" && strings.Contains(name, strings.ToLower(doc.SellerName))) {
			return model.ClassificationResult{
				MatchedRules: []model.MatchedRule{{
					RuleID:     rule.ID,
					RuleName:   rule.Name,
					Confidence: 90,
					Actions:    []model.Action{{Type: model.ActionMarkSeen}},
				}},
				SuggestedCategories: []string{},
				OverallConfidence:   90,
			}
		}
	}
	return model.EmptyResult()
}
