package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
	"github.com/micheleparry/GovIdea/app/radar/pkg/engine"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

// 缺省字段的占位值
const (
	DefaultTitle         = "Unknown Title"
	DefaultDescription   = "No description available"
	DefaultAgency        = "Unknown Agency"
	DefaultContractValue = "TBD"
	DefaultCategory      = "General"
)

// Scorer 机会评分
type Scorer interface {
	Score(ctx context.Context, in model.OpportunityInput) model.Analysis
}

// Writer 机会持久化
type Writer interface {
	CreateOpportunity(ctx context.Context, o *model.Opportunity) error
}

// Ingestor 评分、打标并入库
type Ingestor struct {
	scorer  Scorer
	writer  Writer
	limiter *rate.Limiter
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option Ingestor 选项
type Option func(*Ingestor)

func WithLogger(l logrus.FieldLogger) Option {
	return func(i *Ingestor) { i.log = l }
}

func WithLimiter(l *rate.Limiter) Option {
	return func(i *Ingestor) { i.limiter = l }
}

// NewLimiter 按 RPM 限速，QPS 作为突发容量；RPM 未配置时不限速
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	if cfg.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.QPS
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), burst)
}

func New(scorer Scorer, writer Writer, opts ...Option) *Ingestor {
	i := &Ingestor{
		scorer:  scorer,
		writer:  writer,
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     logger.Log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Normalize 补齐缺省字段，不修改入参
func Normalize(d model.OpportunityDraft, now time.Time) model.OpportunityDraft {
	if d.Title == "" {
		d.Title = DefaultTitle
	}
	if d.Description == "" {
		d.Description = DefaultDescription
	}
	if d.Agency == "" {
		d.Agency = DefaultAgency
	}
	if d.Deadline == nil || d.Deadline.IsZero() {
		t := now
		d.Deadline = &t
	}
	if d.ContractValue == "" {
		d.ContractValue = DefaultContractValue
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	d.Tags = append([]string{}, d.Tags...)
	return d
}

// ApplyAnalysis 写入评分与派生标记
func ApplyAnalysis(o *model.Opportunity, a model.Analysis) {
	o.FeasibilityScore = a.FeasibilityScore
	o.ImpactScore = a.ImpactScore
	o.IsHighImpact = engine.ApplyFlags(a).IsHighImpact
}

// Build 由草稿和评分结果组装待入库记录
func Build(d model.OpportunityDraft, a model.Analysis) *model.Opportunity {
	o := &model.Opportunity{
		Title:         d.Title,
		Description:   d.Description,
		Agency:        d.Agency,
		ContractValue: d.ContractValue,
		EstimatedMin:  d.EstimatedMin,
		EstimatedMax:  d.EstimatedMax,
		Tags:          d.Tags,
		Category:      d.Category,
		SourceURL:     d.SourceURL,
		IsHot:         d.IsHot,
		Requirements:  d.Requirements,
	}
	if d.Deadline != nil {
		o.Deadline = *d.Deadline
	}
	ApplyAnalysis(o, a)
	return o
}

// Ingest 处理单条草稿：补缺省、评分、打标、入库
func (i *Ingestor) Ingest(ctx context.Context, d model.OpportunityDraft) (*model.Opportunity, error) {
	d = Normalize(d, i.now())
	analysis := i.scorer.Score(ctx, d.Input())

	o := Build(d, analysis)
	if err := i.writer.CreateOpportunity(ctx, o); err != nil {
		return nil, fmt.Errorf("persist %q: %w", d.Title, err)
	}
	return o, nil
}

// IngestAll 顺序处理并按限速器节流，单条入库失败只记录日志
func (i *Ingestor) IngestAll(ctx context.Context, drafts []model.OpportunityDraft) ([]*model.Opportunity, error) {
	stored := make([]*model.Opportunity, 0, len(drafts))
	for idx, d := range drafts {
		if err := i.limiter.Wait(ctx); err != nil {
			return stored, err
		}

		o, err := i.Ingest(ctx, d)
		if err != nil {
			i.log.WithField("index", idx).WithError(err).Error("failed to process scraped opportunity")
			continue
		}
		i.log.WithField("id", o.ID).WithField("impact", o.ImpactScore).Debug("opportunity stored")
		stored = append(stored, o)
	}
	return stored, nil
}
