package server

import (
	"github.com/google/wire"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/display/internal/data"
	"github.com/micheleparry/GovIdea/app/display/internal/service"
	"github.com/micheleparry/GovIdea/app/radar/pkg/engine"
	"github.com/micheleparry/GovIdea/app/radar/pkg/scraper"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Radar providers
	RadarConfig,
	NewRadarEngine,
	NewLimiter,
	NewIngestor,
	NewFetcher,
	scraper.NewSample,
	wire.Bind(new(biz.Scorer), new(*engine.Engine)),
	wire.Bind(new(biz.Reporter), new(*engine.Engine)),
	wire.Bind(new(biz.Extractor), new(*engine.Engine)),
	wire.Bind(new(scraper.Source), new(*scraper.Sample)),
	wire.Bind(new(scraper.Fetcher), new(scraper.ReadabilityFetcher)),

	// Data providers
	data.NewData,
	data.NewUserRepo,
	data.NewOpportunityRepo,
	data.NewTrendRepo,
	data.NewAnalyticsRepo,
	data.NewStatsRepo,

	// UseCase providers
	biz.NewUserUseCase,
	biz.NewOpportunityUseCase,
	biz.NewReportUseCase,
	biz.NewInsightUseCase,
	NewScrapeUseCase,

	// Service providers
	service.NewDisplayService,
)
