package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
	"github.com/micheleparry/GovIdea/app/radar/pkg/llm"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/storage"
)

type cannedReasoner struct {
	reply    string
	requests []*llm.Request
}

func (c *cannedReasoner) Complete(ctx context.Context, req *llm.Request) (string, error) {
	c.requests = append(c.requests, req)
	return c.reply, nil
}

type memStore struct {
	opps      []*model.Opportunity
	analytics []*model.Analytics
	closed    bool
}

func (m *memStore) ListOpportunities(ctx context.Context, limit int) ([]*model.Opportunity, error) {
	return m.opps, nil
}

func (m *memStore) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	for _, o := range m.opps {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) CreateOpportunity(ctx context.Context, o *model.Opportunity) error {
	o.ID = "gen"
	m.opps = append(m.opps, o)
	return nil
}

func (m *memStore) CreateAnalytics(ctx context.Context, a *model.Analytics) error {
	m.analytics = append(m.analytics, a)
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

// stubDeps 替换外部依赖，返回恢复函数
func stubDeps(t *testing.T, r llm.Reasoner, s *memStore) {
	t.Helper()
	oldReasoner, oldStore, oldLoad, oldLog := newReasoner, openStore, loadConfig, logger.Log
	t.Cleanup(func() {
		newReasoner, openStore, loadConfig, logger.Log = oldReasoner, oldStore, oldLoad, oldLog
	})

	newReasoner = func(ctx context.Context, cfg config.LLMConfig) (llm.Reasoner, error) { return r, nil }
	openStore = func(ctx context.Context, cfg config.DBConfig) (Store, error) { return s, nil }
	loadConfig = func(path string) (*config.Config, error) {
		return &config.Config{Log: config.LogConfig{Level: "panic"}}, nil
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRoot()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	r := &cannedReasoner{reply: `{"feasibilityScore": 64, "impactScore": 83, "reasoning": "r"}`}
	stubDeps(t, r, &memStore{})

	out, err := run(t, "score", "--title", "Edge AI", "--agency", "DARPA")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(64), got["feasibilityScore"])
	assert.Equal(t, true, got["isHighImpact"])
	require.Len(t, r.requests, 1)
	assert.Contains(t, r.requests[0].Prompt, "Agency: DARPA")
}

func TestScrapeCommand(t *testing.T) {
	s := &memStore{}
	stubDeps(t, &cannedReasoner{reply: "not json"}, s)

	out, err := run(t, "scrape", "--source", "sam.gov", "--source", "nsf.gov")
	require.NoError(t, err)
	assert.Contains(t, out, "Scraped and processed 4 opportunities")
	require.Len(t, s.opps, 4)
	assert.Equal(t, 75, s.opps[0].FeasibilityScore)
	assert.False(t, s.opps[0].IsHighImpact)
	assert.True(t, s.closed)
}

func TestReportCommand(t *testing.T) {
	s := &memStore{opps: []*model.Opportunity{
		{ID: "1", Title: "Zero Trust Rollout", Agency: "CISA", Category: "Cybersecurity"},
		{ID: "2", Title: "Grid Batteries", Agency: "DOE", Category: "Energy"},
	}}
	r := &cannedReasoner{reply: "sector narrative"}
	stubDeps(t, r, s)

	out, err := run(t, "report", "--sector", "cyber")
	require.NoError(t, err)
	assert.Contains(t, out, "sector narrative")
	assert.Contains(t, r.requests[0].Prompt, "Zero Trust Rollout")
	assert.NotContains(t, r.requests[0].Prompt, "Grid Batteries")
	require.Len(t, s.analytics, 1)
	assert.Equal(t, storage.MetricReportsGenerated, s.analytics[0].Metric)

	_, err = run(t, "report", "--id", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = run(t, "report")
	assert.Error(t, err)
}

func TestExtractionCommands(t *testing.T) {
	stubDeps(t, &cannedReasoner{reply: `["late payments"]`}, &memStore{})
	out, err := run(t, "pain-points", "--text", "we wait months")
	require.NoError(t, err)
	assert.Contains(t, out, "late payments")

	stubDeps(t, &cannedReasoner{reply: "garbage"}, &memStore{})
	out, err = run(t, "trends", "--data", "awards")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestDigestCommand(t *testing.T) {
	s := &memStore{opps: []*model.Opportunity{
		{ID: "1", Title: "Quantum <Sensors>", Agency: "DARPA", ImpactScore: 90, IsHighImpact: true, Tags: []string{"quantum"}},
		{ID: "2", Title: "Soil Monitoring", Agency: "USDA", ImpactScore: 40},
	}}
	stubDeps(t, &cannedReasoner{}, s)

	path := filepath.Join(t.TempDir(), "site", "index.html")
	_, err := run(t, "digest", "--out", path)
	require.NoError(t, err)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(html)
	assert.Contains(t, page, "2 opportunities • 1 high impact")
	assert.Contains(t, page, "Quantum &lt;Sensors&gt;")
	assert.Contains(t, page, "badge-high")
	assert.Contains(t, page, "<span>quantum</span>")
}
