package engine

import "github.com/micheleparry/GovIdea/app/radar/pkg/model"

// outcomeKind 一次推理调用的结果分类
type outcomeKind int

const (
	outcomeParsed outcomeKind = iota
	outcomeParseFailure
	outcomeCallFailure
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeParsed:
		return "parsed"
	case outcomeParseFailure:
		return "parse_failure"
	case outcomeCallFailure:
		return "call_failure"
	default:
		return "unknown"
	}
}

// scoreOutcome 评分调用的带标签结果，只有 outcomeParsed 时 analysis 有效
type scoreOutcome struct {
	kind     outcomeKind
	analysis model.Analysis
	err      error
}

// fallbackAnalyses 评分失败时的默认结果
var fallbackAnalyses = map[outcomeKind]model.Analysis{
	outcomeParseFailure: {
		FeasibilityScore: 75,
		ImpactScore:      70,
		Reasoning:        "Analysis completed with fallback scoring due to parsing error",
		Recommendations:  []string{"Review opportunity requirements carefully", "Consider team capabilities"},
		Risks:            []string{"Technical complexity", "Competition level"},
	},
	outcomeCallFailure: {
		FeasibilityScore: 70,
		ImpactScore:      65,
		Reasoning:        "Default scoring applied due to analysis service unavailability",
		Recommendations:  []string{"Conduct thorough research", "Assess team capabilities", "Review requirements carefully"},
		Risks:            []string{"Technical requirements", "Timeline constraints", "Competition"},
	},
}

// resolve 查表得到最终的 Analysis，并统一做分数截断
func (o scoreOutcome) resolve() model.Analysis {
	a := o.analysis
	if o.kind != outcomeParsed {
		a = fallbackAnalyses[o.kind]
		// 返回副本，调用方修改切片不会污染默认表
		a.Recommendations = append([]string(nil), a.Recommendations...)
		a.Risks = append([]string(nil), a.Risks...)
	}
	a.FeasibilityScore = clampScore(a.FeasibilityScore)
	a.ImpactScore = clampScore(a.ImpactScore)
	return a
}

func clampScore(v int) int {
	return max(0, min(100, v))
}
