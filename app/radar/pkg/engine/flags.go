package engine

import "github.com/micheleparry/GovIdea/app/radar/pkg/model"

// HighImpactThreshold 影响力评分达到该值即标记为高影响
const HighImpactThreshold = 80

// ApplyFlags 根据评分计算展示标记
func ApplyFlags(a model.Analysis) model.DerivedFlags {
	return model.DerivedFlags{IsHighImpact: a.ImpactScore >= HighImpactThreshold}
}
