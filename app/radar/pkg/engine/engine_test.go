package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micheleparry/GovIdea/app/radar/pkg/llm"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

// fakeReasoner 返回预设回复并记录请求
type fakeReasoner struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []*llm.Request
}

func (f *fakeReasoner) Complete(ctx context.Context, req *llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeReasoner) last(t *testing.T) *llm.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestEngine(r llm.Reasoner, opts ...Option) *Engine {
	return New(r, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

var errUnavailable = errors.New("503 service unavailable")

func sampleInput() model.OpportunityInput {
	return model.OpportunityInput{
		Title:         "AI for Logistics",
		Description:   "Predictive maintenance for ground fleets",
		Agency:        "Department of Defense",
		Category:      "Artificial Intelligence",
		ContractValue: "$1M - $5M",
	}
}

func TestScore_Parsed(t *testing.T) {
	r := &fakeReasoner{reply: `{"feasibilityScore": 82, "impactScore": 91, "reasoning": "strong fit",
		"recommendations": ["team up"], "risks": ["schedule"]}`}
	a := newTestEngine(r).Score(context.Background(), sampleInput())

	assert.Equal(t, 82, a.FeasibilityScore)
	assert.Equal(t, 91, a.ImpactScore)
	assert.Equal(t, "strong fit", a.Reasoning)
	assert.Equal(t, []string{"team up"}, a.Recommendations)
	assert.Equal(t, []string{"schedule"}, a.Risks)

	req := r.last(t)
	assert.Equal(t, scoreMaxTokens, req.MaxTokens)
	assert.Equal(t, scoreSystem, req.System)
	assert.Contains(t, req.Prompt, "Title: AI for Logistics")
	assert.Contains(t, req.Prompt, "Agency: Department of Defense")
	assert.Contains(t, req.Prompt, "Requirements: Not specified")
}

func TestScore_ClampsOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantFeas  int
		wantImpct int
	}{
		{"above", `{"feasibilityScore": 150, "impactScore": 101}`, 100, 100},
		{"below", `{"feasibilityScore": -10, "impactScore": -0.4}`, 0, 0},
		{"huge", `{"feasibilityScore": 1e300, "impactScore": -1e300}`, 100, 0},
		{"decimal", `{"feasibilityScore": 79.6, "impactScore": 64.4}`, 80, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestEngine(&fakeReasoner{reply: tt.reply}).Score(context.Background(), sampleInput())
			assert.Equal(t, tt.wantFeas, a.FeasibilityScore)
			assert.Equal(t, tt.wantImpct, a.ImpactScore)
			assert.NotNil(t, a.Recommendations)
			assert.NotNil(t, a.Risks)
		})
	}
}

func TestScore_CallFailure(t *testing.T) {
	a := newTestEngine(&fakeReasoner{err: errUnavailable}).Score(context.Background(), sampleInput())

	assert.Equal(t, 70, a.FeasibilityScore)
	assert.Equal(t, 65, a.ImpactScore)
	assert.Equal(t, "Default scoring applied due to analysis service unavailability", a.Reasoning)
	assert.Len(t, a.Recommendations, 3)
	assert.Len(t, a.Risks, 3)
}

func TestScore_ParseFailure(t *testing.T) {
	replies := map[string]string{
		"prose":         "This opportunity looks promising overall.",
		"empty":         "",
		"missing score": `{"feasibilityScore": 90, "reasoning": "no impact given"}`,
		"wrong type":    `{"feasibilityScore": "high", "impactScore": 90}`,
		"array":         `[1, 2]`,
	}
	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			a := newTestEngine(&fakeReasoner{reply: reply}).Score(context.Background(), sampleInput())
			assert.Equal(t, 75, a.FeasibilityScore)
			assert.Equal(t, 70, a.ImpactScore)
			assert.Equal(t, "Analysis completed with fallback scoring due to parsing error", a.Reasoning)
			assert.Len(t, a.Recommendations, 2)
			assert.Len(t, a.Risks, 2)
		})
	}
}

func TestScore_FallbackReasoningDiffers(t *testing.T) {
	ctx := context.Background()
	callFail := newTestEngine(&fakeReasoner{err: errUnavailable}).Score(ctx, sampleInput())
	parseFail := newTestEngine(&fakeReasoner{reply: "not json"}).Score(ctx, sampleInput())
	assert.NotEqual(t, callFail.Reasoning, parseFail.Reasoning)
}

func TestScore_FallbackIsCopied(t *testing.T) {
	e := newTestEngine(&fakeReasoner{err: errUnavailable})
	a := e.Score(context.Background(), sampleInput())
	a.Recommendations[0] = "mutated"

	b := e.Score(context.Background(), sampleInput())
	assert.Equal(t, "Conduct thorough research", b.Recommendations[0])
}

func TestScore_StripsCodeFence(t *testing.T) {
	reply := "```json\n{\"feasibilityScore\": 60, \"impactScore\": 85, \"reasoning\": \"ok\"}\n```"
	a := newTestEngine(&fakeReasoner{reply: reply}).Score(context.Background(), sampleInput())
	assert.Equal(t, 60, a.FeasibilityScore)
	assert.Equal(t, 85, a.ImpactScore)
	assert.Equal(t, []string{}, a.Recommendations)
	assert.Equal(t, []string{}, a.Risks)
}

func TestScore_PassesModel(t *testing.T) {
	r := &fakeReasoner{reply: `{"feasibilityScore": 1, "impactScore": 1}`}
	newTestEngine(r, WithModel("pinned-model")).Score(context.Background(), sampleInput())
	assert.Equal(t, "pinned-model", r.last(t).Model)
}

func TestScore_RecordsOutcome(t *testing.T) {
	counter := reasoningCalls.WithLabelValues(opScore, outcomeCallFailure.String())
	before := testutil.ToFloat64(counter)
	newTestEngine(&fakeReasoner{err: errUnavailable}).Score(context.Background(), sampleInput())
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		impact int
		want   bool
	}{
		{79, false},
		{80, true},
		{81, true},
		{0, false},
		{100, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("impact_%d", tt.impact), func(t *testing.T) {
			got := ApplyFlags(model.Analysis{ImpactScore: tt.impact})
			assert.Equal(t, tt.want, got.IsHighImpact)
		})
	}
}

func sampleOpportunity() *model.Opportunity {
	return &model.Opportunity{
		ID:               "opp-1",
		Title:            "Hypersonic Materials Research",
		Description:      "Thermal protection systems",
		Agency:           "Air Force Research Laboratory",
		Category:         "Materials",
		ContractValue:    "$3M",
		FeasibilityScore: 72,
		ImpactScore:      88,
	}
}

func TestOpportunityReport_Success(t *testing.T) {
	r := &fakeReasoner{reply: "# Executive Summary\nAll good."}
	o := sampleOpportunity()
	o.Deadline = time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

	out := newTestEngine(r).OpportunityReport(context.Background(), o)
	assert.Equal(t, "# Executive Summary\nAll good.", out)

	req := r.last(t)
	assert.Equal(t, opportunityReportMaxTokens, req.MaxTokens)
	assert.Contains(t, req.Prompt, "Deadline: 11/5/2026")
	assert.Contains(t, req.Prompt, "Feasibility Score: 72%")
	assert.Contains(t, req.Prompt, "8. Next Steps")
}

func TestOpportunityReport_Fallback(t *testing.T) {
	for name, r := range map[string]*fakeReasoner{
		"call failure": {err: errUnavailable},
		"blank":        {reply: "  \n"},
	} {
		t.Run(name, func(t *testing.T) {
			out := newTestEngine(r).OpportunityReport(context.Background(), sampleOpportunity())
			require.NotEmpty(t, out)
			assert.Contains(t, out, "Hypersonic Materials Research")
			assert.Contains(t, out, "Air Force Research Laboratory")
			assert.Contains(t, out, "- **Deadline**: TBD")
			assert.Contains(t, out, "- **Impact Score**: 88%")
			assert.Contains(t, out, templateNote)
		})
	}
}

func manyOpportunities(n int) []model.Opportunity {
	opps := make([]model.Opportunity, n)
	for i := range opps {
		opps[i] = model.Opportunity{
			Title:         fmt.Sprintf("Cyber Program %02d", i+1),
			Agency:        "NSF",
			ContractValue: "$1M",
		}
	}
	return opps
}

func countSummaries(text string) int {
	n := 0
	for i := 1; i <= 15; i++ {
		if strings.Contains(text, fmt.Sprintf("Cyber Program %02d", i)) {
			n++
		}
	}
	return n
}

func TestSectorReport_CapsSummaries(t *testing.T) {
	opps := manyOpportunities(15)

	r := &fakeReasoner{reply: "sector narrative"}
	out := newTestEngine(r).SectorReport(context.Background(), "Cybersecurity", opps)
	assert.Equal(t, "sector narrative", out)

	req := r.last(t)
	assert.Equal(t, sectorReportMaxTokens, req.MaxTokens)
	assert.Equal(t, MaxSectorItems, countSummaries(req.Prompt))
	assert.Contains(t, req.Prompt, "Total opportunities analyzed: 15")
	assert.Contains(t, req.Prompt, "- Cyber Program 10 (NSF): $1M")
	assert.NotContains(t, req.Prompt, "Cyber Program 11")

	fallback := newTestEngine(&fakeReasoner{err: errUnavailable}).SectorReport(context.Background(), "Cybersecurity", opps)
	assert.Equal(t, MaxSectorItems, countSummaries(fallback))
	assert.Contains(t, fallback, "# Cybersecurity Sector Analysis Report")
	assert.Contains(t, fallback, "Analysis of 15 opportunities in the Cybersecurity sector.")
	assert.Contains(t, fallback, "- **Cyber Program 01** (NSF): $1M")
	assert.Contains(t, fallback, templateNote)
}

func TestSectorReport_Empty(t *testing.T) {
	out := newTestEngine(&fakeReasoner{err: errUnavailable}).SectorReport(context.Background(), "Energy", nil)
	assert.Contains(t, out, "Analysis of 0 opportunities in the Energy sector.")
}

func TestPainPoints(t *testing.T) {
	r := &fakeReasoner{reply: "```json\n[\"slow payments\", \"complex compliance\"]\n```"}
	got := newTestEngine(r).PainPoints(context.Background(), "contractors wait 90 days to be paid")
	assert.Equal(t, []string{"slow payments", "complex compliance"}, got)

	req := r.last(t)
	assert.Equal(t, painPointsMaxTokens, req.MaxTokens)
	assert.Contains(t, req.Prompt, "contractors wait 90 days to be paid")
}

func TestTrendAnalysis(t *testing.T) {
	r := &fakeReasoner{reply: `[{"topic": "Zero Trust", "description": "mandates", "trend": "up", "impact": 87.6}]`}
	got := newTestEngine(r).TrendAnalysis(context.Background(), "recent awards")
	require.Len(t, got, 1)
	assert.Equal(t, model.TrendInsight{Topic: "Zero Trust", Description: "mandates", Trend: "up", Impact: 88}, got[0])
	assert.Equal(t, trendAnalysisMaxTokens, r.last(t).MaxTokens)
}

func TestExtraction_EmptyOnFailure(t *testing.T) {
	cases := map[string]*fakeReasoner{
		"call failure": {err: errUnavailable},
		"malformed":    {reply: "here are some pain points: late payments"},
		"object":       {reply: `{"painPoints": ["x"]}`},
		"null":         {reply: "null"},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(r)

			points := e.PainPoints(context.Background(), "text")
			assert.NotNil(t, points)
			assert.Empty(t, points)

			trends := e.TrendAnalysis(context.Background(), "data")
			assert.NotNil(t, trends)
			assert.Empty(t, trends)
		})
	}
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, cleanJSON("```\n[1]\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSON("  {\"a\":1}  "))
}
