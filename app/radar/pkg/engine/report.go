package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

const templateNote = "*Note: This is a basic report template. Full AI analysis is temporarily unavailable.*"

// OpportunityReport 生成单个机会的研究报告
func (e *Engine) OpportunityReport(ctx context.Context, o *model.Opportunity) string {
	text, err := e.complete(ctx, opOpportunityReport, opportunityReportSystem,
		buildOpportunityReportPrompt(o), opportunityReportMaxTokens)
	if kind := e.reportOutcome(opOpportunityReport, text, err); kind != outcomeParsed {
		return opportunityTemplate(o)
	}
	return text
}

// SectorReport 生成行业分析报告，最多引用前 MaxSectorItems 条机会
func (e *Engine) SectorReport(ctx context.Context, sector string, opps []model.Opportunity) string {
	in := summarizeSector(sector, opps)
	text, err := e.complete(ctx, opSectorReport, sectorReportSystem,
		buildSectorReportPrompt(in), sectorReportMaxTokens)
	if kind := e.reportOutcome(opSectorReport, text, err); kind != outcomeParsed {
		return sectorTemplate(in)
	}
	return text
}

// reportOutcome 空回复按解析失败处理
func (e *Engine) reportOutcome(op, text string, err error) outcomeKind {
	kind := outcomeParsed
	switch {
	case err != nil:
		kind = outcomeCallFailure
		e.log.WithField("op", op).WithError(err).Error("reasoning call failed, using report template")
	case strings.TrimSpace(text) == "":
		kind = outcomeParseFailure
		e.log.WithField("op", op).Warn("empty report from reasoning service, using report template")
	}
	observeOutcome(op, kind)
	return kind
}

func opportunityTemplate(o *model.Opportunity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Opportunity Report: %s\n\n", o.Title)
	sb.WriteString("## Executive Summary\n")
	fmt.Fprintf(&sb, "This report provides an analysis of the %s opportunity from %s.\n\n", o.Title, o.Agency)
	sb.WriteString("## Opportunity Overview\n")
	fmt.Fprintf(&sb, "- **Agency**: %s\n", o.Agency)
	fmt.Fprintf(&sb, "- **Category**: %s\n", o.Category)
	fmt.Fprintf(&sb, "- **Contract Value**: %s\n", o.ContractValue)
	fmt.Fprintf(&sb, "- **Deadline**: %s\n", opportunityDeadline(o))
	fmt.Fprintf(&sb, "- **Feasibility Score**: %d%%\n", o.FeasibilityScore)
	fmt.Fprintf(&sb, "- **Impact Score**: %d%%\n\n", o.ImpactScore)
	sb.WriteString("## Description\n")
	sb.WriteString(o.Description + "\n\n")
	sb.WriteString(`## Recommendations
- Conduct thorough technical assessment
- Review team capabilities against requirements
- Assess competitive positioning
- Develop compelling value proposition

`)
	sb.WriteString(templateNote + "\n")
	return sb.String()
}

func sectorTemplate(in model.SectorSummaryInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s Sector Analysis Report\n\n", in.Sector)
	sb.WriteString("## Sector Overview\n")
	fmt.Fprintf(&sb, "Analysis of %d opportunities in the %s sector.\n\n", in.Total, in.Sector)
	sb.WriteString(`## Key Findings
- Active opportunities across multiple agencies
- Diverse funding levels and requirements
- Growing focus on innovation and technology

`)
	sb.WriteString("## Recent Opportunities\n")
	sb.WriteString(formatSummaries(in.Opportunities, true))
	sb.WriteString(`

## Recommendations
- Monitor emerging trends in the sector
- Build capabilities in high-demand areas
- Develop relationships with key agencies
- Consider strategic partnerships

`)
	sb.WriteString(templateNote + "\n")
	return sb.String()
}
