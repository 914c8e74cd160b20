package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/micheleparry/GovIdea/app/radar/pkg/ingest"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

// OpportunityRepo 机会仓库，记录不存在时返回 NotFound 错误
type OpportunityRepo interface {
	ListOpportunities(ctx context.Context, limit int) ([]*model.Opportunity, error)
	ListOpportunitiesByAgency(ctx context.Context, agency string) ([]*model.Opportunity, error)
	GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error)
	FeaturedOpportunity(ctx context.Context) (*model.Opportunity, error)
	CreateOpportunity(ctx context.Context, o *model.Opportunity) error
	UpdateOpportunity(ctx context.Context, o *model.Opportunity) error
}

// Scorer 机会评分
type Scorer interface {
	Score(ctx context.Context, in model.OpportunityInput) model.Analysis
}

type OpportunityUseCase struct {
	repo   OpportunityRepo
	scorer Scorer
	log    *log.Helper
}

func NewOpportunityUseCase(repo OpportunityRepo, scorer Scorer, logger log.Logger) *OpportunityUseCase {
	return &OpportunityUseCase{repo: repo, scorer: scorer, log: log.NewHelper(logger)}
}

// List agency 非空时按机构过滤，此时忽略 limit
func (uc *OpportunityUseCase) List(ctx context.Context, limit int, agency string) ([]*model.Opportunity, error) {
	if agency != "" {
		return uc.repo.ListOpportunitiesByAgency(ctx, agency)
	}
	return uc.repo.ListOpportunities(ctx, limit)
}

func (uc *OpportunityUseCase) Get(ctx context.Context, id string) (*model.Opportunity, error) {
	return uc.repo.GetOpportunity(ctx, id)
}

func (uc *OpportunityUseCase) Featured(ctx context.Context) (*model.Opportunity, error) {
	return uc.repo.FeaturedOpportunity(ctx)
}

type field struct {
	name  string
	value string
}

// requireFields 按顺序检查必填字段
func requireFields(reason string, fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return errors.BadRequest(reason, f.name+" is required")
		}
	}
	return nil
}

func validateDraft(d *model.OpportunityDraft) error {
	if err := requireFields("INVALID_OPPORTUNITY",
		field{"title", d.Title},
		field{"description", d.Description},
		field{"agency", d.Agency},
		field{"contractValue", d.ContractValue},
		field{"category", d.Category},
	); err != nil {
		return err
	}
	if d.Deadline == nil || d.Deadline.IsZero() {
		return errors.BadRequest("INVALID_OPPORTUNITY", "deadline is required")
	}
	return nil
}

// Create 校验、评分、打标后入库
func (uc *OpportunityUseCase) Create(ctx context.Context, d *model.OpportunityDraft) (*model.Opportunity, error) {
	if err := validateDraft(d); err != nil {
		return nil, err
	}

	analysis := uc.scorer.Score(ctx, d.Input())
	o := ingest.Build(*d, analysis)
	if o.Tags == nil {
		o.Tags = []string{}
	}
	if err := uc.repo.CreateOpportunity(ctx, o); err != nil {
		uc.log.Errorf("create opportunity %q: %v", d.Title, err)
		return nil, err
	}
	return o, nil
}

// Rescore 重新评分并更新记录
func (uc *OpportunityUseCase) Rescore(ctx context.Context, id string) (*model.Opportunity, model.Analysis, error) {
	o, err := uc.repo.GetOpportunity(ctx, id)
	if err != nil {
		return nil, model.Analysis{}, err
	}

	analysis := uc.scorer.Score(ctx, o.Input())
	ingest.ApplyAnalysis(o, analysis)
	if err := uc.repo.UpdateOpportunity(ctx, o); err != nil {
		return nil, model.Analysis{}, err
	}
	return o, analysis, nil
}
