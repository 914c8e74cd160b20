package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

type GetStatsReq struct{}

type ListOpportunitiesReq struct {
	Limit  int    `json:"limit"`
	Agency string `json:"agency"`
}

type GetFeaturedReq struct{}

type GetOpportunityReq struct {
	Id string `json:"id"`
}

type RescoreReq struct {
	Id string `json:"id"`
}

type RescoreReply struct {
	Opportunity *model.Opportunity `json:"opportunity"`
	Analysis    model.Analysis     `json:"analysis"`
}

type ListTrendsReq struct{}

type AnalyzeTrendsReq struct {
	Data string `json:"data"`
}

type AnalyzeTrendsReply struct {
	Trends []model.TrendInsight `json:"trends"`
}

type ListAnalyticsReq struct {
	Metric string `json:"metric"`
}

type ScrapeReq struct {
	Source string `json:"source"`
}

type ScrapeReply struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type GenerateReportReq struct {
	OpportunityId string `json:"opportunityId"`
	Sector        string `json:"sector"`
}

type GenerateReportReply struct {
	Report string `json:"report"`
}

type PainPointsReq struct {
	Text string `json:"text"`
	Url  string `json:"url"`
}

type PainPointsReply struct {
	PainPoints []string `json:"painPoints"`
}

type RegisterReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginReply struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type GetProfileReq struct{}

type DisplayService struct {
	ucUser    *biz.UserUseCase
	ucOpp     *biz.OpportunityUseCase
	ucReport  *biz.ReportUseCase
	ucInsight *biz.InsightUseCase
	ucScrape  *biz.ScrapeUseCase
	log       *log.Helper
}

func NewDisplayService(ucUser *biz.UserUseCase, ucOpp *biz.OpportunityUseCase, ucReport *biz.ReportUseCase, ucInsight *biz.InsightUseCase,
	ucScrape *biz.ScrapeUseCase, logger log.Logger) *DisplayService {
	return &DisplayService{
		ucUser:    ucUser,
		ucOpp:     ucOpp,
		ucReport:  ucReport,
		ucInsight: ucInsight,
		ucScrape:  ucScrape,
		log:       log.NewHelper(logger),
	}
}

func (s *DisplayService) Register(ctx context.Context, req *RegisterReq) (*model.User, error) {
	return s.ucUser.Register(ctx, req.Username, req.Password)
}

func (s *DisplayService) Login(ctx context.Context, req *LoginReq) (*LoginReply, error) {
	token, err := s.ucUser.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return &LoginReply{Token: token, Username: req.Username}, nil
}

// GetProfile 从 Authorization: Bearer <token> 中识别当前用户
func (s *DisplayService) GetProfile(ctx context.Context, req *GetProfileReq) (*model.User, error) {
	var token string
	if tr, ok := transport.FromServerContext(ctx); ok {
		token = strings.TrimPrefix(tr.RequestHeader().Get("Authorization"), "Bearer ")
	}
	return s.ucUser.Authenticate(ctx, token)
}

func (s *DisplayService) GetStats(ctx context.Context, req *GetStatsReq) (*model.Stats, error) {
	return s.ucInsight.Stats(ctx)
}

func (s *DisplayService) ListOpportunities(ctx context.Context, req *ListOpportunitiesReq) ([]*model.Opportunity, error) {
	return s.ucOpp.List(ctx, req.Limit, req.Agency)
}

func (s *DisplayService) GetFeatured(ctx context.Context, req *GetFeaturedReq) (*model.Opportunity, error) {
	return s.ucOpp.Featured(ctx)
}

func (s *DisplayService) GetOpportunity(ctx context.Context, req *GetOpportunityReq) (*model.Opportunity, error) {
	return s.ucOpp.Get(ctx, req.Id)
}

func (s *DisplayService) CreateOpportunity(ctx context.Context, req *model.OpportunityDraft) (*model.Opportunity, error) {
	return s.ucOpp.Create(ctx, req)
}

func (s *DisplayService) Rescore(ctx context.Context, req *RescoreReq) (*RescoreReply, error) {
	o, analysis, err := s.ucOpp.Rescore(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	return &RescoreReply{Opportunity: o, Analysis: analysis}, nil
}

func (s *DisplayService) ListTrends(ctx context.Context, req *ListTrendsReq) ([]*model.Trend, error) {
	return s.ucInsight.ListTrends(ctx)
}

func (s *DisplayService) CreateTrend(ctx context.Context, req *model.Trend) (*model.Trend, error) {
	if err := s.ucInsight.CreateTrend(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *DisplayService) AnalyzeTrends(ctx context.Context, req *AnalyzeTrendsReq) (*AnalyzeTrendsReply, error) {
	trends, err := s.ucInsight.AnalyzeTrends(ctx, req.Data)
	if err != nil {
		return nil, err
	}
	return &AnalyzeTrendsReply{Trends: trends}, nil
}

func (s *DisplayService) ListAnalytics(ctx context.Context, req *ListAnalyticsReq) ([]*model.Analytics, error) {
	return s.ucInsight.ListAnalytics(ctx, req.Metric)
}

func (s *DisplayService) Scrape(ctx context.Context, req *ScrapeReq) (*ScrapeReply, error) {
	res, err := s.ucScrape.Scrape(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	return &ScrapeReply{
		Message: fmt.Sprintf("Scraped and processed %d opportunities", res.Scraped),
		Count:   res.Scraped,
	}, nil
}

func (s *DisplayService) GenerateReport(ctx context.Context, req *GenerateReportReq) (*GenerateReportReply, error) {
	report, err := s.ucReport.Generate(ctx, req.OpportunityId, req.Sector)
	if err != nil {
		return nil, err
	}
	return &GenerateReportReply{Report: report}, nil
}

func (s *DisplayService) PainPoints(ctx context.Context, req *PainPointsReq) (*PainPointsReply, error) {
	points, err := s.ucInsight.PainPoints(ctx, req.Text, req.Url)
	if err != nil {
		return nil, err
	}
	return &PainPointsReply{PainPoints: points}, nil
}
