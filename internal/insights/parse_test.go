package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spentify/internal/core"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"plain fence", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"surrounding whitespace", "  \n```json [] ```  ", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}

func TestParseInsightsFencedMatchesBare(t *testing.T) {
	body := `[{"type":"warning","title":"High food spend","message":"₹4000 on food","action":"Cook more","confidence":0.9}]`

	bare := parseInsights(body)
	fenced := parseInsights("```json\n" + body + "\n```")

	require.True(t, bare.ok())
	require.True(t, fenced.ok())
	assert.Equal(t, bare.Insights, fenced.Insights)
}

func TestParseInsightsFailures(t *testing.T) {
	for name, in := range map[string]string{
		"prose":        "Here are some insights about your spending.",
		"object":       `{"type":"info"}`,
		"empty array":  "[]",
		"broken json":  `[{"type":"info",`,
		"wrong shape":  `[1, 2, 3]`,
		"empty string": "",
	} {
		t.Run(name, func(t *testing.T) {
			res := parseInsights(in)
			assert.False(t, res.ok())
			assert.Empty(t, res.Insights)
		})
	}
}

func TestToInsightDefaults(t *testing.T) {
	res := parseInsights(`[{}, {"type":"Alert","confidence":0}, {"type":"SUCCESS","confidence":1.7,"title":" Nice ","action":"Keep going"}, {"type":"tip","confidence":-1}]`)
	require.True(t, res.ok())
	require.Len(t, res.Insights, 4)

	first := res.Insights[0].toInsight("ai-1-0")
	assert.Equal(t, core.Insight{
		ID:         "ai-1-0",
		Type:       core.InsightInfo,
		Title:      defaultTitle,
		Message:    defaultMessage,
		Confidence: defaultConfidence,
	}, first)

	second := res.Insights[1].toInsight("ai-1-1")
	assert.Equal(t, core.InsightInfo, second.Type)
	assert.Equal(t, defaultConfidence, second.Confidence)

	third := res.Insights[2].toInsight("ai-1-2")
	assert.Equal(t, core.InsightSuccess, third.Type)
	assert.Equal(t, "Nice", third.Title)
	assert.Equal(t, "Keep going", third.Action)
	assert.Equal(t, 1.0, third.Confidence)

	fourth := res.Insights[3].toInsight("ai-1-3")
	assert.Equal(t, core.InsightTip, fourth.Type)
	assert.Equal(t, 0.0, fourth.Confidence)
}

func TestParseInsightsMistypedFieldsFallBackPerField(t *testing.T) {
	res := parseInsights(`[
		{"type":"warning","title":"Food heavy","message":"Too much takeout","confidence":"high"},
		{"type":"tip","title":"Commute","message":"Metro is cheap","confidence":0.9},
		{"type":7,"title":42,"message":["a"],"action":{"do":"x"}}
	]`)
	require.True(t, res.ok(), "%v", res.Failure)
	require.Len(t, res.Insights, 3)

	first := res.Insights[0].toInsight("ai-1-0")
	assert.Equal(t, core.InsightWarning, first.Type)
	assert.Equal(t, "Food heavy", first.Title)
	assert.Equal(t, defaultConfidence, first.Confidence)

	second := res.Insights[1].toInsight("ai-1-1")
	assert.Equal(t, core.InsightTip, second.Type)
	assert.Equal(t, 0.9, second.Confidence)

	third := res.Insights[2].toInsight("ai-1-2")
	assert.Equal(t, core.Insight{
		ID:         "ai-1-2",
		Type:       core.InsightInfo,
		Title:      defaultTitle,
		Message:    defaultMessage,
		Confidence: defaultConfidence,
	}, third)
}

func TestParseInsightsSkipsNonObjectElements(t *testing.T) {
	res := parseInsights(`[null, "note", {"type":"success","title":"Good","confidence":null}, 3]`)
	require.True(t, res.ok(), "%v", res.Failure)
	require.Len(t, res.Insights, 1)
	got := res.Insights[0].toInsight("ai-1-0")
	assert.Equal(t, core.InsightSuccess, got.Type)
	assert.Equal(t, defaultConfidence, got.Confidence)
}
