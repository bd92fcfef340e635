package matcher

import (
	"fmt"
	"strings"

	"github.com/joshsymonds/cardflow/internal/model"
)

const systemPrompt = `You are an AI classification specialist. Your job is to analyze documents against user-defined rules and determine which rules match and what actions should be taken.

Each rule may specify multiple actions. The only valid action types are:
- "approve": mark the document as automatically approved
- "dismiss": automatically dismiss the document (e.g., for spam, promotions)
- "mark_seen": mark the document as seen/reviewed without further action
- "mark_paid": set the payment status to paid
- "add_category": add a specific category tag (requires a value)
- "set_expense_category": set a specific expense category (requires a value)

Rules are listed in priority order, most important first. If two matching rules conflict, emit only the higher-priority rule's conflicting action.

INSTRUCTIONS:
1. Carefully analyze the document against EACH rule
2. For each rule that matches, list ALL actions that rule specifies
3. Extract specific categories mentioned in the rules (e.g., "dev tools", "office supplies", "travel")
4. Set shouldAutoApprove=true if any matched rule approves the document
5. Set shouldMarkPaid=true if any matched rule marks it paid
6. Suggest relevant categories based on the document and matching rules
7. Provide a confidence score (0-100) for each match
8. If a rule mentions an expense category, also set the expenseCategory field

Respond with ONLY a valid JSON object of this exact shape:
{
  "matchedRules": [{"ruleId": "...", "ruleName": "...", "confidence": 0, "actions": [{"type": "...", "value": "..."}]}],
  "suggestedCategories": ["..."],
  "shouldAutoApprove": false,
  "shouldMarkPaid": false,
  "expenseCategory": null,
  "additionalNotes": "",
  "overallConfidence": 0
}`

// buildUserPrompt renders the rules and the document summary for the model.
func buildUserPrompt(doc *model.ProcessedDocument, rules []model.ClassificationRule) string {
	var rulesSection strings.Builder
	for i, rule := range rules {
		fmt.Fprintf(&rulesSection, "Rule %d (ID: %s, Name: %q): %s\n", i+1, rule.ID, rule.Name, rule.Prompt)
	}

	return fmt.Sprintf(`USER CLASSIFICATION RULES (priority order, most important first):
%s
Please analyze this document against the classification rules and determine which rules match and what actions should be taken:

%s`, rulesSection.String(), documentSummary(doc))
}

func documentSummary(doc *model.ProcessedDocument) string {
	amount := "No amount"
	if doc.Amount != nil {
		currency := doc.Currency
		if currency == "" {
			currency = "USD"
		}
		amount = fmt.Sprintf("%s %s", doc.Amount.StringFixed(2), currency)
	}

	issueDate := "No date"
	if doc.IssueDate != nil {
		issueDate = doc.IssueDate.Format("2006-01-02")
	}
	dueDate := "No due date"
	if doc.DueDate != nil {
		dueDate = doc.DueDate.Format("2006-01-02")
	}

	summary := doc.ExtractedSummary
	if summary == "" {
		summary = "No summary"
	}
	seller := doc.SellerName
	if seller == "" {
		seller = "Unknown"
	}
	rationale := doc.AIRationale
	if rationale == "" {
		rationale = "No analysis"
	}

	return fmt.Sprintf(`Document Type: %s
Title: %s
Summary: %s
Amount: %s
Vendor/Seller: %s
Date: %s
Due Date: %s
AI Analysis: %s`,
		doc.DocumentType,
		doc.Title(),
		summary,
		amount,
		seller,
		issueDate,
		dueDate,
		rationale)
}
