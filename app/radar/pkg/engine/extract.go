package engine

import (
	"context"
	"encoding/json"
	"math"

	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

// PainPoints 从文本中提取承包商痛点，任何失败都返回空列表
func (e *Engine) PainPoints(ctx context.Context, text string) []string {
	var points []string
	if !e.extract(ctx, opPainPoints, painPointsSystem, buildPainPointsPrompt(text), painPointsMaxTokens, &points) {
		return []string{}
	}
	if points == nil {
		return []string{}
	}
	return points
}

type rawTrendInsight struct {
	Topic       string  `json:"topic"`
	Description string  `json:"description"`
	Trend       string  `json:"trend"`
	Impact      float64 `json:"impact"`
}

// TrendAnalysis 分析数据中的趋势，任何失败都返回空列表
func (e *Engine) TrendAnalysis(ctx context.Context, data string) []model.TrendInsight {
	var raw []rawTrendInsight
	if !e.extract(ctx, opTrendAnalysis, trendAnalysisSystem, buildTrendAnalysisPrompt(data), trendAnalysisMaxTokens, &raw) {
		return []model.TrendInsight{}
	}

	out := make([]model.TrendInsight, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.TrendInsight{
			Topic:       r.Topic,
			Description: r.Description,
			Trend:       r.Trend,
			Impact:      int(math.Round(r.Impact)),
		})
	}
	return out
}

// extract 调用推理服务并把 JSON 数组解析到 dst，失败时只记录日志
func (e *Engine) extract(ctx context.Context, op, system, prompt string, maxTokens int, dst any) bool {
	log := e.log.WithField("op", op)

	text, err := e.complete(ctx, op, system, prompt, maxTokens)
	if err != nil {
		observeOutcome(op, outcomeCallFailure)
		log.WithError(err).Error("reasoning call failed, returning empty list")
		return false
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), dst); err != nil {
		observeOutcome(op, outcomeParseFailure)
		log.WithError(err).Warn("failed to parse response as JSON array")
		return false
	}
	observeOutcome(op, outcomeParsed)
	return true
}
