package data

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/storage"
)

var (
	errOpportunityNotFound = errors.NotFound("OPPORTUNITY_NOT_FOUND", "Opportunity not found")
	errFeaturedNotFound    = errors.NotFound("FEATURED_NOT_FOUND", "No featured opportunity found")
)

type opportunityRepo struct {
	data *Data
	log  *log.Helper
}

func NewOpportunityRepo(data *Data, logger log.Logger) biz.OpportunityRepo {
	return &opportunityRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *opportunityRepo) ListOpportunities(ctx context.Context, limit int) ([]*model.Opportunity, error) {
	out, err := r.data.store.ListOpportunities(ctx, limit)
	if err != nil {
		return nil, r.data.dbError("list opportunities", err)
	}
	return out, nil
}

func (r *opportunityRepo) ListOpportunitiesByAgency(ctx context.Context, agency string) ([]*model.Opportunity, error) {
	out, err := r.data.store.ListOpportunitiesByAgency(ctx, agency)
	if err != nil {
		return nil, r.data.dbError("list opportunities by agency", err)
	}
	return out, nil
}

func (r *opportunityRepo) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	o, err := r.data.store.GetOpportunity(ctx, id)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, errOpportunityNotFound
	}
	if err != nil {
		return nil, r.data.dbError("get opportunity", err)
	}
	return o, nil
}

func (r *opportunityRepo) FeaturedOpportunity(ctx context.Context) (*model.Opportunity, error) {
	o, err := r.data.store.FeaturedOpportunity(ctx)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, errFeaturedNotFound
	}
	if err != nil {
		return nil, r.data.dbError("featured opportunity", err)
	}
	return o, nil
}

func (r *opportunityRepo) CreateOpportunity(ctx context.Context, o *model.Opportunity) error {
	if err := r.data.store.CreateOpportunity(ctx, o); err != nil {
		return r.data.dbError("create opportunity", err)
	}
	r.data.invalidateStats(ctx)
	return nil
}

func (r *opportunityRepo) UpdateOpportunity(ctx context.Context, o *model.Opportunity) error {
	err := r.data.store.UpdateOpportunity(ctx, o)
	if stderrors.Is(err, storage.ErrNotFound) {
		return errOpportunityNotFound
	}
	if err != nil {
		return r.data.dbError("update opportunity", err)
	}
	r.data.invalidateStats(ctx)
	return nil
}
