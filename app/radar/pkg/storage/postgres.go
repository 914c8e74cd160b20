package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("storage: record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("storage: duplicate record")
)

// DefaultListLimit 机会列表的默认条数
const DefaultListLimit = 50

const trendListLimit = 10

// MetricReportsGenerated 报告生成次数的指标名
const MetricReportsGenerated = "reports_generated"

const opportunityColumns = `id, title, description, agency, deadline, contract_value, estimated_min, estimated_max,
	feasibility_score, impact_score, tags, category, source_url, is_hot, is_high_impact, requirements,
	created_at, updated_at`

type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// New 包装已打开的连接，不做建表
func New(db *sql.DB) *Storage {
	return &Storage{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// NewStorage 打开 Postgres 连接并初始化表结构
func NewStorage(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := New(db)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// DB 返回底层连接
func (s *Storage) DB() *sql.DB {
	return s.db
}

// InitSchema 建表，可重复执行
func (s *Storage) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS opportunities (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			agency TEXT NOT NULL,
			deadline TIMESTAMP NOT NULL,
			contract_value TEXT NOT NULL,
			estimated_min NUMERIC,
			estimated_max NUMERIC,
			feasibility_score INTEGER NOT NULL,
			impact_score INTEGER NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			category TEXT NOT NULL,
			source_url TEXT NOT NULL DEFAULT '',
			is_hot BOOLEAN NOT NULL DEFAULT FALSE,
			is_high_impact BOOLEAN NOT NULL DEFAULT FALSE,
			requirements TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_agency ON opportunities (agency)`,
		`CREATE TABLE IF NOT EXISTS trends (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			description TEXT NOT NULL,
			change_percentage NUMERIC NOT NULL,
			trend TEXT NOT NULL,
			category TEXT NOT NULL,
			color TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS analytics (
			id TEXT PRIMARY KEY,
			metric TEXT NOT NULL,
			value NUMERIC NOT NULL,
			period TEXT NOT NULL,
			date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row scanner) (*model.Opportunity, error) {
	var (
		o      model.Opportunity
		lo, hi sql.NullFloat64
		tags   []string
	)
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.Agency, &o.Deadline, &o.ContractValue, &lo, &hi,
		&o.FeasibilityScore, &o.ImpactScore, pq.Array(&tags), &o.Category, &o.SourceURL, &o.IsHot, &o.IsHighImpact,
		&o.Requirements, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lo.Valid {
		o.EstimatedMin = &lo.Float64
	}
	if hi.Valid {
		o.EstimatedMax = &hi.Float64
	}
	if tags == nil {
		tags = []string{}
	}
	o.Tags = tags
	return &o, nil
}

func (s *Storage) queryOpportunities(ctx context.Context, query string, args ...any) ([]*model.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListOpportunities 按创建时间倒序，limit <= 0 时取默认条数
func (s *Storage) ListOpportunities(ctx context.Context, limit int) ([]*model.Opportunity, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	out, err := s.queryOpportunities(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return out, nil
}

// ListOpportunitiesByAgency 精确匹配机构
func (s *Storage) ListOpportunitiesByAgency(ctx context.Context, agency string) ([]*model.Opportunity, error) {
	out, err := s.queryOpportunities(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE agency = $1 ORDER BY created_at DESC`, agency)
	if err != nil {
		return nil, fmt.Errorf("list opportunities by agency: %w", err)
	}
	return out, nil
}

func (s *Storage) getOne(ctx context.Context, query string, args ...any) (*model.Opportunity, error) {
	o, err := scanOpportunity(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (s *Storage) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	o, err := s.getOne(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get opportunity %s: %w", id, err)
	}
	return o, nil
}

// FeaturedOpportunity 影响力最高的高影响机会
func (s *Storage) FeaturedOpportunity(ctx context.Context) (*model.Opportunity, error) {
	o, err := s.getOne(ctx, `SELECT `+opportunityColumns+` FROM opportunities
		WHERE is_high_impact = TRUE ORDER BY impact_score DESC LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("featured opportunity: %w", err)
	}
	return o, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// CreateOpportunity 写入新机会，回填 id 与时间戳
func (s *Storage) CreateOpportunity(ctx context.Context, o *model.Opportunity) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := s.now()
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Tags == nil {
		o.Tags = []string{}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO opportunities (`+opportunityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		o.ID, o.Title, o.Description, o.Agency, o.Deadline, o.ContractValue,
		nullFloat(o.EstimatedMin), nullFloat(o.EstimatedMax), o.FeasibilityScore, o.ImpactScore,
		pq.Array(o.Tags), o.Category, o.SourceURL, o.IsHot, o.IsHighImpact, o.Requirements,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	return nil
}

// UpdateOpportunity 覆盖写入并刷新 updated_at
func (s *Storage) UpdateOpportunity(ctx context.Context, o *model.Opportunity) error {
	o.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `UPDATE opportunities SET
		title = $2, description = $3, agency = $4, deadline = $5, contract_value = $6,
		estimated_min = $7, estimated_max = $8, feasibility_score = $9, impact_score = $10,
		tags = $11, category = $12, source_url = $13, is_hot = $14, is_high_impact = $15,
		requirements = $16, updated_at = $17
		WHERE id = $1`,
		o.ID, o.Title, o.Description, o.Agency, o.Deadline, o.ContractValue,
		nullFloat(o.EstimatedMin), nullFloat(o.EstimatedMax), o.FeasibilityScore, o.ImpactScore,
		pq.Array(o.Tags), o.Category, o.SourceURL, o.IsHot, o.IsHighImpact, o.Requirements,
		o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update opportunity %s: %w", o.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update opportunity %s: %w", o.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update opportunity %s: %w", o.ID, ErrNotFound)
	}
	return nil
}

// ListTrends 变化幅度最大的前 10 个趋势
func (s *Storage) ListTrends(ctx context.Context) ([]*model.Trend, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, topic, description, change_percentage, trend, category, color, created_at
		FROM trends ORDER BY change_percentage DESC LIMIT $1`, trendListLimit)
	if err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	defer rows.Close()

	out := []*model.Trend{}
	for rows.Next() {
		var t model.Trend
		if err := rows.Scan(&t.ID, &t.Topic, &t.Description, &t.ChangePercentage, &t.Trend,
			&t.Category, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("list trends: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *Storage) CreateTrend(ctx context.Context, t *model.Trend) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO trends (id, topic, description, change_percentage, trend, category, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Topic, t.Description, t.ChangePercentage, t.Trend, t.Category, t.Color, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create trend: %w", err)
	}
	return nil
}

// ListAnalytics metric 为空时返回全部指标
func (s *Storage) ListAnalytics(ctx context.Context, metric string) ([]*model.Analytics, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT id, metric, value, period, date FROM analytics`)
	if metric != "" {
		sb.WriteString(` WHERE metric = $1`)
		args = append(args, metric)
	}
	sb.WriteString(` ORDER BY date DESC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	defer rows.Close()

	out := []*model.Analytics{}
	for rows.Next() {
		var a model.Analytics
		if err := rows.Scan(&a.ID, &a.Metric, &a.Value, &a.Period, &a.Date); err != nil {
			return nil, fmt.Errorf("list analytics: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *Storage) CreateAnalytics(ctx context.Context, a *model.Analytics) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Date.IsZero() {
		a.Date = s.now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO analytics (id, metric, value, period, date) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Metric, a.Value, a.Period, a.Date)
	if err != nil {
		return fmt.Errorf("create analytics: %w", err)
	}
	return nil
}

// Stats 仪表盘汇总，高分指可行性或影响力任一达到 80
func (s *Storage) Stats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM opportunities),
		(SELECT COUNT(*) FROM opportunities WHERE feasibility_score >= 80 OR impact_score >= 80),
		(SELECT COUNT(*) FROM trends),
		(SELECT COUNT(*) FROM analytics WHERE metric = $1)`, MetricReportsGenerated).
		Scan(&st.TotalOpportunities, &st.HighScoreOpportunities, &st.TrendingTopics, &st.ReportsGenerated)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &st, nil
}
