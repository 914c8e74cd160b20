package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/micheleparry/GovIdea/app/radar/pkg/ingest"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/scraper"
)

// ScrapeResult 一次抓取的统计
type ScrapeResult struct {
	Scraped int
	Stored  int
}

type ScrapeUseCase struct {
	source   scraper.Source
	sources  []string
	ingestor *ingest.Ingestor
	log      *log.Helper
}

// NewScrapeUseCase sources 为空时使用内置来源列表
func NewScrapeUseCase(source scraper.Source, sources []string, ingestor *ingest.Ingestor, logger log.Logger) *ScrapeUseCase {
	return &ScrapeUseCase{source: source, sources: sources, ingestor: ingestor, log: log.NewHelper(logger)}
}

// Scrape 抓取单个来源；source 为空时抓取全部来源
func (uc *ScrapeUseCase) Scrape(ctx context.Context, source string) (*ScrapeResult, error) {
	sources := uc.sources
	if source != "" {
		sources = []string{source}
	}
	drafts := scraper.ScrapeAll(ctx, uc.source, sources, logger.Log)

	stored, err := uc.ingestor.IngestAll(ctx, drafts)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("scraped %d opportunities, stored %d", len(drafts), len(stored))
	return &ScrapeResult{Scraped: len(drafts), Stored: len(stored)}, nil
}
