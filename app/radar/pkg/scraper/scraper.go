package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

// DefaultSources 默认抓取的政府站点
var DefaultSources = []string{
	"sam.gov",
	"sbir.gov",
	"nsf.gov",
	"darpa.mil",
	"energy.gov",
}

// Source 机会来源
type Source interface {
	Scrape(ctx context.Context, source string) ([]model.OpportunityDraft, error)
}

// Sample 返回固定样例数据的来源，不发起网络请求
type Sample struct {
	now func() time.Time
}

var _ Source = (*Sample)(nil)

func NewSample() *Sample {
	return &Sample{now: time.Now}
}

// Scrape 生成两条样例机会，sourceUrl 带来源与时间戳
func (s *Sample) Scrape(ctx context.Context, source string) ([]model.OpportunityDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Log.WithField("source", source).Info("scraping source")

	now := s.now()
	stamp := now.UnixMilli()
	aiDeadline := now.AddDate(0, 0, 90)
	cyberDeadline := now.AddDate(0, 0, 60)

	return []model.OpportunityDraft{
		{
			Title:         "Advanced AI Research Initiative",
			Description:   "Seeking innovative AI solutions for next-generation applications",
			Agency:        "DARPA",
			Deadline:      &aiDeadline,
			ContractValue: "$2M - $10M",
			Category:      "Artificial Intelligence",
			Tags:          []string{"AI", "Machine Learning", "Research"},
			Requirements:  "PhD in Computer Science or related field, 5+ years experience in AI research",
			SourceURL:     fmt.Sprintf("https://example.gov/opportunities/ai-research-%s-%d", source, stamp),
		},
		{
			Title:         "Cybersecurity Enhancement Program",
			Description:   "Developing next-generation cybersecurity solutions for critical infrastructure",
			Agency:        "NSF",
			Deadline:      &cyberDeadline,
			ContractValue: "$500K - $2M",
			Category:      "Cybersecurity",
			Tags:          []string{"Cybersecurity", "Infrastructure", "Defense"},
			Requirements:  "Security clearance required, expertise in network security",
			SourceURL:     fmt.Sprintf("https://example.gov/opportunities/cybersecurity-%s-%d", source, stamp),
		},
	}, nil
}

// ScrapeAll 依次抓取所有来源，单个来源失败不影响其余来源
func ScrapeAll(ctx context.Context, src Source, sources []string, log logrus.FieldLogger) []model.OpportunityDraft {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	var all []model.OpportunityDraft
	for _, name := range sources {
		drafts, err := src.Scrape(ctx, name)
		if err != nil {
			log.WithField("source", name).WithError(err).Error("error scraping source")
			continue
		}
		all = append(all, drafts...)
	}
	return all
}
