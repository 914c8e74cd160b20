package server

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/display/internal/conf"
	"github.com/micheleparry/GovIdea/app/display/internal/service"
	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
	"github.com/micheleparry/GovIdea/app/radar/pkg/engine"
	"github.com/micheleparry/GovIdea/app/radar/pkg/ingest"
	"github.com/micheleparry/GovIdea/app/radar/pkg/llm"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/scraper"
)

type stubReasoner struct {
	reply string
}

func (s stubReasoner) Complete(ctx context.Context, req *llm.Request) (string, error) {
	return s.reply, nil
}

// memRepo 同时实现用户、机会、趋势、统计与指标仓库
type memRepo struct {
	users     []*model.User
	opps      []*model.Opportunity
	trends    []*model.Trend
	analytics []*model.Analytics
}

func (m *memRepo) CreateUser(ctx context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return errors.Conflict("USERNAME_TAKEN", "username already exists")
		}
	}
	u.ID = "user-" + u.Username
	m.users = append(m.users, u)
	return nil
}

func (m *memRepo) GetUser(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.NotFound("USER_NOT_FOUND", "user not found")
}

func (m *memRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.NotFound("USER_NOT_FOUND", "user not found")
}

func (m *memRepo) ListOpportunities(ctx context.Context, limit int) ([]*model.Opportunity, error) {
	return m.opps, nil
}

func (m *memRepo) ListOpportunitiesByAgency(ctx context.Context, agency string) ([]*model.Opportunity, error) {
	out := []*model.Opportunity{}
	for _, o := range m.opps {
		if o.Agency == agency {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	for _, o := range m.opps {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.NotFound("OPPORTUNITY_NOT_FOUND", "Opportunity not found")
}

func (m *memRepo) FeaturedOpportunity(ctx context.Context) (*model.Opportunity, error) {
	for _, o := range m.opps {
		if o.IsHighImpact {
			return o, nil
		}
	}
	return nil, errors.NotFound("FEATURED_NOT_FOUND", "No featured opportunity found")
}

func (m *memRepo) CreateOpportunity(ctx context.Context, o *model.Opportunity) error {
	o.ID = "opp-" + o.Title
	m.opps = append(m.opps, o)
	return nil
}

func (m *memRepo) UpdateOpportunity(ctx context.Context, o *model.Opportunity) error {
	return nil
}

func (m *memRepo) ListTrends(ctx context.Context) ([]*model.Trend, error) {
	return m.trends, nil
}

func (m *memRepo) CreateTrend(ctx context.Context, t *model.Trend) error {
	m.trends = append(m.trends, t)
	return nil
}

func (m *memRepo) ListAnalytics(ctx context.Context, metric string) ([]*model.Analytics, error) {
	return m.analytics, nil
}

func (m *memRepo) CreateAnalytics(ctx context.Context, a *model.Analytics) error {
	m.analytics = append(m.analytics, a)
	return nil
}

func (m *memRepo) Stats(ctx context.Context) (*model.Stats, error) {
	return &model.Stats{TotalOpportunities: len(m.opps), ReportsGenerated: len(m.analytics)}, nil
}

func newTestServer(t *testing.T, reply string) (nethttp.Handler, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	eng := engine.New(stubReasoner{reply: reply}, engine.WithLogger(logger.Discard()))
	ing := ingest.New(eng, repo, ingest.WithLogger(logger.Discard()))
	svc := service.NewDisplayService(
		biz.NewUserUseCase(repo, &conf.Auth{JwtKey: "test-key"}, log.DefaultLogger),
		biz.NewOpportunityUseCase(repo, eng, log.DefaultLogger),
		biz.NewReportUseCase(repo, repo, eng, log.DefaultLogger),
		biz.NewInsightUseCase(repo, repo, repo, eng, scraper.ReadabilityFetcher{}, log.DefaultLogger),
		biz.NewScrapeUseCase(scraper.NewSample(), nil, ing, log.DefaultLogger),
		log.DefaultLogger,
	)
	return NewHTTPServer(&conf.Server{Http: &conf.HTTP{}}, svc, log.DefaultLogger), repo
}

func do(h nethttp.Handler, method, path, body string) *httptest.ResponseRecorder {
	return doWithHeader(h, method, path, body, nil)
}

func doWithHeader(h nethttp.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndFetchOpportunity(t *testing.T) {
	h, repo := newTestServer(t, `{"feasibilityScore": 77, "impactScore": 84, "reasoning": "ok"}`)

	rec := do(h, "POST", "/api/opportunities", `{
		"title": "Edge AI", "description": "d", "agency": "DARPA",
		"deadline": "2026-12-01T00:00:00Z", "contractValue": "$2M", "category": "AI"
	}`)
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var created model.Opportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 84, created.ImpactScore)
	assert.True(t, created.IsHighImpact)
	require.Len(t, repo.opps, 1)

	rec = do(h, "GET", "/api/opportunities/featured", "")
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "Edge AI")

	rec = do(h, "GET", "/api/opportunities/"+created.ID, "")
	assert.Equal(t, 200, rec.Code)

	rec = do(h, "GET", "/metrics", "")
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "govidea_reasoning_calls_total")
}

func TestErrorStatuses(t *testing.T) {
	h, _ := newTestServer(t, "")

	assert.Equal(t, 404, do(h, "GET", "/api/opportunities/featured", "").Code)
	assert.Equal(t, 404, do(h, "GET", "/api/opportunities/missing", "").Code)
	assert.Equal(t, 400, do(h, "POST", "/api/reports/generate", `{}`).Code)
	assert.Equal(t, 404, do(h, "POST", "/api/reports/generate", `{"opportunityId": "missing"}`).Code)
	assert.Equal(t, 400, do(h, "POST", "/api/opportunities", `{"title": "only"}`).Code)
	assert.Equal(t, 400, do(h, "POST", "/api/pain-points", `{}`).Code)

	rec := do(h, "POST", "/api/pain-points", `{"url": "http://127.0.0.1:6379/"}`)
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "URL_NOT_ALLOWED")
}

func TestScrapeAndReport(t *testing.T) {
	h, repo := newTestServer(t, `{"feasibilityScore": 60, "impactScore": 50}`)

	rec := do(h, "POST", "/api/scrape", `{"source": "sam.gov"}`)
	require.Equal(t, 200, rec.Code)
	var reply service.ScrapeReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, 2, reply.Count)
	assert.Equal(t, "Scraped and processed 2 opportunities", reply.Message)

	rec = do(h, "POST", "/api/reports/generate", `{"sector": "cyber"}`)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"report"`)
	require.Len(t, repo.analytics, 1)

	rec = do(h, "GET", "/api/stats", "")
	require.Equal(t, 200, rec.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalOpportunities)
	assert.Equal(t, 1, stats.ReportsGenerated)
}

func TestListOpportunitiesByAgency(t *testing.T) {
	h, repo := newTestServer(t, "")
	repo.opps = []*model.Opportunity{{ID: "1", Agency: "NSF"}, {ID: "2", Agency: "DOE"}}

	rec := do(h, "GET", "/api/opportunities?agency=DOE", "")
	require.Equal(t, 200, rec.Code)
	var got []model.Opportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestRadarConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "")
	cfg := RadarConfig(&conf.Radar{
		Llm:         &conf.LLM{Model: "m", Timeout: 30},
		Concurrency: &conf.Concurrency{Qps: 2, Rpm: 60},
		Scraper:     &conf.Scraper{Sources: []string{"sam.gov"}},
	})
	assert.Equal(t, "m", cfg.LLM.Model)
	assert.Equal(t, 30, cfg.LLM.Timeout)
	assert.Equal(t, 60, cfg.Concurrency.RPM)
	assert.Equal(t, []string{"sam.gov"}, cfg.Scraper.Sources)

	assert.Equal(t, config.DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NotNil(t, RadarConfig(nil))
}

func TestRadarConfig_APIKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env")

	cfg := RadarConfig(&conf.Radar{Llm: &conf.LLM{}})
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
	assert.Equal(t, config.DefaultModel, cfg.LLM.Model)

	cfg = RadarConfig(&conf.Radar{Llm: &conf.LLM{ApiKey: "sk-file"}})
	assert.Equal(t, "sk-file", cfg.LLM.APIKey)

	assert.Equal(t, "sk-from-env", RadarConfig(nil).LLM.APIKey)
}

func TestRegisterLoginProfile(t *testing.T) {
	h, repo := newTestServer(t, "")

	rec := do(h, "POST", "/api/auth/register", `{"username": "analyst", "password": "correct-horse"}`)
	require.Equal(t, 201, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "correct-horse")
	require.Len(t, repo.users, 1)
	assert.NotEqual(t, "correct-horse", repo.users[0].PasswordHash)

	assert.Equal(t, 409, do(h, "POST", "/api/auth/register", `{"username": "analyst", "password": "another-pass"}`).Code)
	assert.Equal(t, 401, do(h, "POST", "/api/auth/login", `{"username": "analyst", "password": "wrong-pass"}`).Code)
	assert.Equal(t, 401, do(h, "POST", "/api/auth/login", `{"username": "nobody", "password": "correct-horse"}`).Code)

	rec = do(h, "POST", "/api/auth/login", `{"username": "analyst", "password": "correct-horse"}`)
	require.Equal(t, 200, rec.Code)
	var login service.LoginReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = doWithHeader(h, "GET", "/api/auth/me", "", map[string]string{"Authorization": "Bearer " + login.Token})
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"analyst"`)

	assert.Equal(t, 401, do(h, "GET", "/api/auth/me", "").Code)
	assert.Equal(t, 401, doWithHeader(h, "GET", "/api/auth/me", "", map[string]string{"Authorization": "Bearer junk"}).Code)
}
