package insights

import (
	"encoding/json"
	"fmt"

	"spentify/internal/core"
)

const (
	insightsTemperature = 0.7
	insightsMaxTokens   = 1000

	answerTemperature = 0.7
	answerMaxTokens   = 200

	categorizeTemperature = 0.1
	categorizeMaxTokens   = 20
)

// promptRecord is the only record data shared with the model.
type promptRecord struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func serializeRecords(records []core.Record) string {
	out := make([]promptRecord, 0, len(records))
	for _, r := range records {
		out = append(out, promptRecord{
			Amount:      r.Amount,
			Category:    string(r.Category),
			Description: r.Description,
			Date:        r.Date.String(),
		})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// currencyLabel names the currency the way the prompts refer to it.
func currencyLabel(symbol string) string {
	if symbol == core.DefaultCurrencySymbol {
		return "Indian Rupees (₹)"
	}
	return fmt.Sprintf("the %s currency", symbol)
}

func insightsRequest(symbol string, records []core.Record) ChatRequest {
	system := fmt.Sprintf("You are a financial advisor AI that analyzes spending patterns and provides actionable insights. "+
		"Always respond with valid JSON only. Use %s symbol for all monetary amounts, never use dollars ($).", currencyLabel(symbol))

	user := fmt.Sprintf(`Analyze the following expense data and provide 3-4 actionable financial insights.
Return a JSON array of insights with this structure:
{
  "type": "warning|info|success|tip",
  "title": "Brief title",
  "message": "Detailed insight message with specific numbers when possible (use %[1]s symbol for currency, not $)",
  "action": "Actionable suggestion",
  "confidence": 0.8
}

IMPORTANT: All monetary amounts should be displayed using %[2]s symbol, NOT dollars ($).

Expense Data:
%[3]s

Focus on:
1. Spending patterns (day of week, categories)
2. Budget alerts (high spending areas)
3. Money-saving opportunities
4. Positive reinforcement for good habits

Return only valid JSON array, no additional text. Always use %[1]s symbol for any monetary amounts.`,
		symbol, currencyLabel(symbol), serializeRecords(records))

	return ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Temperature: insightsTemperature,
		MaxTokens:   insightsMaxTokens,
	}
}

func answerRequest(symbol, question string, records []core.Record) ChatRequest {
	system := fmt.Sprintf("You are a helpful financial advisor AI that provides specific, actionable answers based on expense data. "+
		"Be concise but thorough. Always use %s symbol for monetary amounts, never dollars ($).", currencyLabel(symbol))

	user := fmt.Sprintf(`Based on the following expense data, provide a detailed and actionable answer to this question: %[1]q

Expense Data:
%[2]s

Provide a comprehensive answer that:
1. Addresses the specific question directly
2. Uses concrete data from the expenses when possible (use %[3]s symbol for currency, not $)
3. Offers actionable advice
4. Keeps the response concise but informative (2-3 sentences)

IMPORTANT: Always use %[4]s symbol for any monetary amounts, NOT dollars ($).

Return only the answer text, no additional formatting.`,
		question, serializeRecords(records), symbol, currencyLabel(symbol))

	return ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	}
}

const categorizeSystemPrompt = "You are an expense categorization AI. Categorize expenses into one of these categories: " +
	"Food, Transportation, Entertainment, Shopping, Bills, Healthcare, Other. Respond with only the category name."

func categorizeRequest(description string) ChatRequest {
	return ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: categorizeSystemPrompt},
			{Role: RoleUser, Content: fmt.Sprintf("Categorize this expense: %q", description)},
		},
		Temperature: categorizeTemperature,
		MaxTokens:   categorizeMaxTokens,
	}
}
