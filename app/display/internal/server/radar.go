package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/time/rate"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/display/internal/conf"
	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
	"github.com/micheleparry/GovIdea/app/radar/pkg/engine"
	"github.com/micheleparry/GovIdea/app/radar/pkg/ingest"
	"github.com/micheleparry/GovIdea/app/radar/pkg/llm"
	radarLogger "github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/scraper"
)

// RadarConfig 将 internal/conf.Radar 转换为 pkg/config.Config，并补齐默认值
func RadarConfig(c *conf.Radar) *config.Config {
	cfg := &config.Config{}
	if c != nil {
		if c.Llm != nil {
			cfg.LLM = config.LLMConfig{
				BaseURL: c.Llm.BaseUrl,
				APIKey:  c.Llm.ApiKey,
				Model:   c.Llm.Model,
				Timeout: int(c.Llm.Timeout),
			}
		}
		if c.Log != nil {
			cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
		}
		if c.Concurrency != nil {
			cfg.Concurrency = config.ConcurrencyConfig{QPS: int(c.Concurrency.Qps), RPM: int(c.Concurrency.Rpm)}
		}
		if c.Scraper != nil {
			cfg.Scraper = config.ScraperConfig{Sources: c.Scraper.Sources}
		}
	}
	cfg.ApplyDefaults()
	return cfg
}

// NewRadarEngine 初始化日志与推理客户端并构造引擎
func NewRadarEngine(cfg *config.Config, logger log.Logger) (*engine.Engine, error) {
	helper := log.NewHelper(logger)
	if err := radarLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init radar logger: %v", err)
		_ = radarLogger.InitLogger("info", "") // 降级处理
	}

	client, err := llm.NewOpenAIClient(context.Background(), cfg.LLM)
	if err != nil {
		helper.Errorf("Failed to init reasoning client: %v", err)
		return nil, err
	}
	return engine.New(client, engine.WithLogger(radarLogger.Log)), nil
}

func NewLimiter(cfg *config.Config) *rate.Limiter {
	return ingest.NewLimiter(cfg.Concurrency)
}

// NewIngestor 抓取结果经评分后写入机会仓库
func NewIngestor(eng *engine.Engine, repo biz.OpportunityRepo, limiter *rate.Limiter) *ingest.Ingestor {
	return ingest.New(eng, repo, ingest.WithLimiter(limiter), ingest.WithLogger(radarLogger.Log))
}

func NewScrapeUseCase(cfg *config.Config, source scraper.Source, ingestor *ingest.Ingestor, logger log.Logger) *biz.ScrapeUseCase {
	return biz.NewScrapeUseCase(source, cfg.Scraper.Sources, ingestor, logger)
}

func NewFetcher() scraper.ReadabilityFetcher {
	return scraper.ReadabilityFetcher{}
}
