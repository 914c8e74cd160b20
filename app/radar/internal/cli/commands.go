package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
	"github.com/micheleparry/GovIdea/app/radar/pkg/engine"
	"github.com/micheleparry/GovIdea/app/radar/pkg/ingest"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/scraper"
	"github.com/micheleparry/GovIdea/app/radar/pkg/storage"
)

func buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	reasoner, err := newReasoner(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return engine.New(reasoner, engine.WithModel(cfg.LLM.Model)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func scoreCmd(cfgFn configFunc) *cobra.Command {
	var d model.OpportunityDraft
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single opportunity without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cfgFn()
			if err != nil {
				return err
			}
			eng, err := buildEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			analysis := eng.Score(cmd.Context(), d.Input())
			return writeJSON(cmd.OutOrStdout(), struct {
				model.Analysis
				model.DerivedFlags
			}{analysis, engine.ApplyFlags(analysis)})
		},
	}
	cmd.Flags().StringVar(&d.Title, "title", "", "opportunity title")
	cmd.Flags().StringVar(&d.Description, "description", "", "opportunity description")
	cmd.Flags().StringVar(&d.Agency, "agency", "", "issuing agency")
	cmd.Flags().StringVar(&d.Category, "category", "", "category")
	cmd.Flags().StringVar(&d.ContractValue, "value", "", "contract value, e.g. \"$1M - $5M\"")
	cmd.Flags().StringVar(&d.Requirements, "requirements", "", "requirements text")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func scrapeCmd(cfgFn configFunc) *cobra.Command {
	var sources []string
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape sources, score the results and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := cfgFn()
			if err != nil {
				return err
			}
			eng, err := buildEngine(ctx, cfg)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("无法连接数据库: %w", err)
			}
			defer store.Close()

			if len(sources) == 0 {
				sources = cfg.Scraper.Sources
			}
			drafts := scraper.ScrapeAll(ctx, scraper.NewSample(), sources, logger.Log)

			ing := ingest.New(eng, store, ingest.WithLimiter(ingest.NewLimiter(cfg.Concurrency)))
			stored, err := ing.IngestAll(ctx, drafts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scraped and processed %d opportunities (%d stored)\n", len(drafts), len(stored))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sources, "source", nil, "source to scrape (repeatable); defaults to config or built-in list")
	return cmd
}

func reportCmd(cfgFn configFunc) *cobra.Command {
	var id, sector string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an opportunity or sector report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" && sector == "" {
				return errors.New("either --id or --sector is required")
			}
			ctx := cmd.Context()
			cfg, err := cfgFn()
			if err != nil {
				return err
			}
			eng, err := buildEngine(ctx, cfg)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("无法连接数据库: %w", err)
			}
			defer store.Close()

			var report string
			if id != "" {
				o, err := store.GetOpportunity(ctx, id)
				if err != nil {
					return err
				}
				report = eng.OpportunityReport(ctx, o)
			} else {
				opps, err := store.ListOpportunities(ctx, storage.DefaultListLimit)
				if err != nil {
					return err
				}
				report = eng.SectorReport(ctx, sector, model.FilterBySector(opps, sector))
			}

			if err := store.CreateAnalytics(ctx, &model.Analytics{
				Metric: storage.MetricReportsGenerated,
				Value:  1,
				Period: "daily",
			}); err != nil {
				logger.Log.WithError(err).Warn("failed to record report analytics")
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "opportunity id")
	cmd.Flags().StringVar(&sector, "sector", "", "sector keyword matched against category and agency")
	return cmd
}

func painPointsCmd(cfgFn configFunc) *cobra.Command {
	var text, url string
	cmd := &cobra.Command{
		Use:   "pain-points",
		Short: "Extract contractor pain points from text or a web page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if text == "" && url == "" {
				return errors.New("either --text or --url is required")
			}
			cfg, err := cfgFn()
			if err != nil {
				return err
			}
			eng, err := buildEngine(ctx, cfg)
			if err != nil {
				return err
			}
			if text == "" {
				text, err = scraper.ReadabilityFetcher{}.FetchText(ctx, url)
				if err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), eng.PainPoints(ctx, text))
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text to analyze")
	cmd.Flags().StringVar(&url, "url", "", "page to fetch and analyze")
	return cmd
}

func trendsCmd(cfgFn configFunc) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Identify trends in contracting data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cfgFn()
			if err != nil {
				return err
			}
			eng, err := buildEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), eng.TrendAnalysis(cmd.Context(), data))
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "contracting data to analyze")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
