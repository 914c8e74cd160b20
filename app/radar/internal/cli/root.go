package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
	"github.com/micheleparry/GovIdea/app/radar/pkg/llm"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/storage"
)

const defaultConfigPath = "app/radar/configs/config.yaml"

// Store 命令行用到的持久化操作
type Store interface {
	ListOpportunities(ctx context.Context, limit int) ([]*model.Opportunity, error)
	GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error)
	CreateOpportunity(ctx context.Context, o *model.Opportunity) error
	CreateAnalytics(ctx context.Context, a *model.Analytics) error
	io.Closer
}

// 测试时替换
var (
	newReasoner = func(ctx context.Context, cfg config.LLMConfig) (llm.Reasoner, error) {
		return llm.NewOpenAIClient(ctx, cfg)
	}
	openStore = func(ctx context.Context, cfg config.DBConfig) (Store, error) {
		return storage.NewStorage(ctx, cfg)
	}
	loadConfig = config.LoadConfig
)

func Execute() error {
	return NewRoot().Execute()
}

// NewRoot 构建 radar 根命令
func NewRoot() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "radar",
		Short:         "Score and report on government contracting opportunities",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath, "path to config file")

	cfgFn := func() (*config.Config, error) {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return nil, err
		}
		if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	root.AddCommand(
		scoreCmd(cfgFn),
		scrapeCmd(cfgFn),
		reportCmd(cfgFn),
		painPointsCmd(cfgFn),
		trendsCmd(cfgFn),
		digestCmd(cfgFn),
	)
	return root
}

type configFunc func() (*config.Config, error)
