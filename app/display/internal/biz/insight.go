package biz

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/scraper"
)

type TrendRepo interface {
	ListTrends(ctx context.Context) ([]*model.Trend, error)
	CreateTrend(ctx context.Context, t *model.Trend) error
}

type StatsRepo interface {
	Stats(ctx context.Context) (*model.Stats, error)
}

// Extractor 痛点与趋势提取，失败时返回空列表
type Extractor interface {
	PainPoints(ctx context.Context, text string) []string
	TrendAnalysis(ctx context.Context, data string) []model.TrendInsight
}

// InsightUseCase 仪表盘统计、趋势与痛点
type InsightUseCase struct {
	trends    TrendRepo
	analytics AnalyticsRepo
	stats     StatsRepo
	extractor Extractor
	fetcher   scraper.Fetcher
	log       *log.Helper
}

func NewInsightUseCase(trends TrendRepo, analytics AnalyticsRepo, stats StatsRepo, extractor Extractor,
	fetcher scraper.Fetcher, logger log.Logger) *InsightUseCase {
	return &InsightUseCase{
		trends:    trends,
		analytics: analytics,
		stats:     stats,
		extractor: extractor,
		fetcher:   fetcher,
		log:       log.NewHelper(logger),
	}
}

func (uc *InsightUseCase) Stats(ctx context.Context) (*model.Stats, error) {
	return uc.stats.Stats(ctx)
}

func (uc *InsightUseCase) ListTrends(ctx context.Context) ([]*model.Trend, error) {
	return uc.trends.ListTrends(ctx)
}

var trendDirections = map[string]bool{"up": true, "down": true, "stable": true}

func (uc *InsightUseCase) CreateTrend(ctx context.Context, t *model.Trend) error {
	if err := requireFields("INVALID_TREND",
		field{"topic", t.Topic},
		field{"description", t.Description},
		field{"category", t.Category},
		field{"color", t.Color},
	); err != nil {
		return err
	}
	if !trendDirections[t.Trend] {
		return errors.BadRequest("INVALID_TREND", "trend must be one of up, down, stable")
	}
	return uc.trends.CreateTrend(ctx, t)
}

func (uc *InsightUseCase) ListAnalytics(ctx context.Context, metric string) ([]*model.Analytics, error) {
	return uc.analytics.ListAnalytics(ctx, metric)
}

// AnalyzeTrends 调用推理服务分析趋势
func (uc *InsightUseCase) AnalyzeTrends(ctx context.Context, data string) ([]model.TrendInsight, error) {
	if strings.TrimSpace(data) == "" {
		return nil, errors.BadRequest("DATA_REQUIRED", "data is required")
	}
	return uc.extractor.TrendAnalysis(ctx, data), nil
}

// PainPoints text 优先；只给 url 时先抓取正文
func (uc *InsightUseCase) PainPoints(ctx context.Context, text, url string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		if url == "" {
			return nil, errors.BadRequest("TEXT_REQUIRED", "Either text or url is required")
		}
		fetched, err := uc.fetcher.FetchText(ctx, url)
		if stderrors.Is(err, scraper.ErrDisallowedURL) {
			return nil, errors.BadRequest("URL_NOT_ALLOWED", "url must be a public http or https address")
		}
		if err != nil {
			uc.log.Warnf("fetch %s: %v", url, err)
			return nil, errors.BadRequest("URL_UNREADABLE", "failed to read content from url")
		}
		text = fetched
	}
	return uc.extractor.PainPoints(ctx, text), nil
}
