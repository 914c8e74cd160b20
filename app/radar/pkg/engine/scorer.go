package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

var errMissingScore = errors.New("missing feasibilityScore or impactScore")

// rawAnalysis 模型回复的原始结构，分数允许为小数
type rawAnalysis struct {
	FeasibilityScore *float64 `json:"feasibilityScore"`
	ImpactScore      *float64 `json:"impactScore"`
	Reasoning        string   `json:"reasoning"`
	Recommendations  []string `json:"recommendations"`
	Risks            []string `json:"risks"`
}

// Score 对机会进行可行性与影响力评分
func (e *Engine) Score(ctx context.Context, in model.OpportunityInput) model.Analysis {
	text, err := e.complete(ctx, opScore, scoreSystem, buildScorePrompt(in), scoreMaxTokens)

	var outcome scoreOutcome
	if err != nil {
		outcome = scoreOutcome{kind: outcomeCallFailure, err: err}
	} else {
		outcome = parseAnalysis(text)
	}
	observeOutcome(opScore, outcome.kind)

	log := e.log.WithField("op", opScore).WithField("title", in.Title)
	switch outcome.kind {
	case outcomeCallFailure:
		log.WithError(outcome.err).Error("reasoning call failed, applying default scoring")
	case outcomeParseFailure:
		log.WithError(outcome.err).Warn("failed to parse analysis, applying fallback scoring")
	}
	return outcome.resolve()
}

func parseAnalysis(text string) scoreOutcome {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return scoreOutcome{kind: outcomeParseFailure, err: fmt.Errorf("json unmarshal: %w", err)}
	}
	if raw.FeasibilityScore == nil || raw.ImpactScore == nil {
		return scoreOutcome{kind: outcomeParseFailure, err: errMissingScore}
	}

	a := model.Analysis{
		FeasibilityScore: roundScore(*raw.FeasibilityScore),
		ImpactScore:      roundScore(*raw.ImpactScore),
		Reasoning:        raw.Reasoning,
		Recommendations:  raw.Recommendations,
		Risks:            raw.Risks,
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	if a.Risks == nil {
		a.Risks = []string{}
	}
	return scoreOutcome{kind: outcomeParsed, analysis: a}
}

// roundScore 先在浮点域截断，避免超大数值转 int 溢出
func roundScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
