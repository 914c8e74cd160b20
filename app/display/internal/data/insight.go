package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

type trendRepo struct {
	data *Data
	log  *log.Helper
}

func NewTrendRepo(data *Data, logger log.Logger) biz.TrendRepo {
	return &trendRepo{data: data, log: log.NewHelper(logger)}
}

func (r *trendRepo) ListTrends(ctx context.Context) ([]*model.Trend, error) {
	out, err := r.data.store.ListTrends(ctx)
	if err != nil {
		return nil, r.data.dbError("list trends", err)
	}
	return out, nil
}

func (r *trendRepo) CreateTrend(ctx context.Context, t *model.Trend) error {
	if err := r.data.store.CreateTrend(ctx, t); err != nil {
		return r.data.dbError("create trend", err)
	}
	r.data.invalidateStats(ctx)
	return nil
}

type analyticsRepo struct {
	data *Data
	log  *log.Helper
}

func NewAnalyticsRepo(data *Data, logger log.Logger) biz.AnalyticsRepo {
	return &analyticsRepo{data: data, log: log.NewHelper(logger)}
}

func (r *analyticsRepo) ListAnalytics(ctx context.Context, metric string) ([]*model.Analytics, error) {
	out, err := r.data.store.ListAnalytics(ctx, metric)
	if err != nil {
		return nil, r.data.dbError("list analytics", err)
	}
	return out, nil
}

func (r *analyticsRepo) CreateAnalytics(ctx context.Context, a *model.Analytics) error {
	if err := r.data.store.CreateAnalytics(ctx, a); err != nil {
		return r.data.dbError("create analytics", err)
	}
	r.data.invalidateStats(ctx)
	return nil
}
