package server

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/micheleparry/GovIdea/app/display/internal/conf"
	"github.com/micheleparry/GovIdea/app/display/internal/service"
)

const (
	OperationDisplayRegister          = "/govidea.display.v1.Display/Register"
	OperationDisplayLogin             = "/govidea.display.v1.Display/Login"
	OperationDisplayGetProfile        = "/govidea.display.v1.Display/GetProfile"
	OperationDisplayGetStats          = "/govidea.display.v1.Display/GetStats"
	OperationDisplayListOpportunities = "/govidea.display.v1.Display/ListOpportunities"
	OperationDisplayGetFeatured       = "/govidea.display.v1.Display/GetFeatured"
	OperationDisplayGetOpportunity    = "/govidea.display.v1.Display/GetOpportunity"
	OperationDisplayCreateOpportunity = "/govidea.display.v1.Display/CreateOpportunity"
	OperationDisplayRescore           = "/govidea.display.v1.Display/Rescore"
	OperationDisplayListTrends        = "/govidea.display.v1.Display/ListTrends"
	OperationDisplayCreateTrend       = "/govidea.display.v1.Display/CreateTrend"
	OperationDisplayAnalyzeTrends     = "/govidea.display.v1.Display/AnalyzeTrends"
	OperationDisplayListAnalytics     = "/govidea.display.v1.Display/ListAnalytics"
	OperationDisplayScrape            = "/govidea.display.v1.Display/Scrape"
	OperationDisplayGenerateReport    = "/govidea.display.v1.Display/GenerateReport"
	OperationDisplayPainPoints        = "/govidea.display.v1.Display/PainPoints"
)

func NewHTTPServer(c *conf.Server, s *service.DisplayService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	if c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	registerDisplayHTTPServer(srv, s)
	srv.Handle("/metrics", promhttp.Handler())
	return srv
}

// registerDisplayHTTPServer featured 必须先于 {id} 注册
func registerDisplayHTTPServer(srv *http.Server, s *service.DisplayService) {
	r := srv.Route("/")
	r.POST("/api/auth/register", handler(OperationDisplayRegister, 201, http.Context.Bind, s.Register))
	r.POST("/api/auth/login", handler(OperationDisplayLogin, 200, http.Context.Bind, s.Login))
	r.GET("/api/auth/me", handler(OperationDisplayGetProfile, 200, nil, s.GetProfile))
	r.GET("/api/stats", handler(OperationDisplayGetStats, 200, nil, s.GetStats))
	r.GET("/api/opportunities", handler(OperationDisplayListOpportunities, 200, http.Context.BindQuery, s.ListOpportunities))
	r.GET("/api/opportunities/featured", handler(OperationDisplayGetFeatured, 200, nil, s.GetFeatured))
	r.GET("/api/opportunities/{id}", handler(OperationDisplayGetOpportunity, 200, http.Context.BindVars, s.GetOpportunity))
	r.POST("/api/opportunities", handler(OperationDisplayCreateOpportunity, 201, http.Context.Bind, s.CreateOpportunity))
	r.POST("/api/opportunities/{id}/rescore", handler(OperationDisplayRescore, 200, http.Context.BindVars, s.Rescore))
	r.GET("/api/trends", handler(OperationDisplayListTrends, 200, nil, s.ListTrends))
	r.POST("/api/trends", handler(OperationDisplayCreateTrend, 201, http.Context.Bind, s.CreateTrend))
	r.POST("/api/trends/analyze", handler(OperationDisplayAnalyzeTrends, 200, http.Context.Bind, s.AnalyzeTrends))
	r.GET("/api/analytics", handler(OperationDisplayListAnalytics, 200, http.Context.BindQuery, s.ListAnalytics))
	r.POST("/api/scrape", handler(OperationDisplayScrape, 200, http.Context.Bind, s.Scrape))
	r.POST("/api/reports/generate", handler(OperationDisplayGenerateReport, 200, http.Context.Bind, s.GenerateReport))
	r.POST("/api/pain-points", handler(OperationDisplayPainPoints, 200, http.Context.Bind, s.PainPoints))
}

// handler 按生成代码的方式绑定参数、走中间件并写回结果
func handler[Req, Reply any](operation string, code int, bind func(http.Context, any) error,
	call func(context.Context, *Req) (Reply, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in Req
		if bind != nil {
			if err := bind(ctx, &in); err != nil {
				return err
			}
		}
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*Req))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(code, out)
	}
}
