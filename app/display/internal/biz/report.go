package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/storage"
)

// Reporter 报告生成，失败时返回模板而不是错误
type Reporter interface {
	OpportunityReport(ctx context.Context, o *model.Opportunity) string
	SectorReport(ctx context.Context, sector string, opps []model.Opportunity) string
}

type AnalyticsRepo interface {
	ListAnalytics(ctx context.Context, metric string) ([]*model.Analytics, error)
	CreateAnalytics(ctx context.Context, a *model.Analytics) error
}

type ReportUseCase struct {
	opps      OpportunityRepo
	analytics AnalyticsRepo
	reporter  Reporter
	log       *log.Helper
}

func NewReportUseCase(opps OpportunityRepo, analytics AnalyticsRepo, reporter Reporter, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{opps: opps, analytics: analytics, reporter: reporter, log: log.NewHelper(logger)}
}

// Generate opportunityID 优先；两者都为空时返回 BadRequest
func (uc *ReportUseCase) Generate(ctx context.Context, opportunityID, sector string) (string, error) {
	var report string
	switch {
	case opportunityID != "":
		o, err := uc.opps.GetOpportunity(ctx, opportunityID)
		if err != nil {
			return "", err
		}
		report = uc.reporter.OpportunityReport(ctx, o)
	case sector != "":
		all, err := uc.opps.ListOpportunities(ctx, storage.DefaultListLimit)
		if err != nil {
			return "", err
		}
		report = uc.reporter.SectorReport(ctx, sector, model.FilterBySector(all, sector))
	default:
		return "", errors.BadRequest("REPORT_TARGET_REQUIRED", "Either opportunityId or sector is required")
	}

	if err := uc.analytics.CreateAnalytics(ctx, &model.Analytics{
		Metric: storage.MetricReportsGenerated,
		Value:  1,
		Period: "daily",
	}); err != nil {
		uc.log.Warnf("record report analytics: %v", err)
	}
	return report, nil
}
