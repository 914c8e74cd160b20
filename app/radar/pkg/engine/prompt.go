package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

// 各操作的输出长度上限
const (
	scoreMaxTokens             = 1500
	opportunityReportMaxTokens = 3000
	sectorReportMaxTokens      = 3500
	painPointsMaxTokens        = 1000
	trendAnalysisMaxTokens     = 1200
)

// MaxSectorItems 行业报告最多引用的机会条数
const MaxSectorItems = 10

const (
	notSpecified = "Not specified"
	noDeadline   = "TBD"
)

const (
	scoreSystem = "You are a government contracting expert who analyzes opportunities for feasibility and impact. " +
		"Provide practical, actionable insights based on government contracting experience."
	opportunityReportSystem = "You are a senior government contracting analyst who creates detailed opportunity reports. " +
		"Provide comprehensive, professional analysis that helps contractors make informed decisions."
	sectorReportSystem = "You are a government contracting market research analyst specializing in sector analysis. " +
		"Provide comprehensive market intelligence and strategic insights."
	painPointsSystem = "You are an expert at identifying business problems and pain points from text. " +
		"Extract specific, actionable problems that represent business opportunities."
	trendAnalysisSystem = "You are a government contracting trend analyst. " +
		"Identify meaningful patterns and trends in government contracting data."
)

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func formatDeadline(t *time.Time) string {
	if t == nil || t.IsZero() {
		return noDeadline
	}
	return t.Format("1/2/2006")
}

func buildScorePrompt(in model.OpportunityInput) string {
	var sb strings.Builder
	sb.WriteString("Analyze this government opportunity and provide scoring and insights:\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", orNotSpecified(in.Title))
	fmt.Fprintf(&sb, "Description: %s\n", orNotSpecified(in.Description))
	fmt.Fprintf(&sb, "Agency: %s\n", orNotSpecified(in.Agency))
	fmt.Fprintf(&sb, "Category: %s\n", orNotSpecified(in.Category))
	fmt.Fprintf(&sb, "Contract Value: %s\n", orNotSpecified(in.ContractValue))
	fmt.Fprintf(&sb, "Requirements: %s\n", orNotSpecified(in.Requirements))
	if in.Deadline != nil {
		fmt.Fprintf(&sb, "Deadline: %s\n", formatDeadline(in.Deadline))
	}
	sb.WriteString(`
Please analyze this opportunity and provide:
1. Feasibility Score (0-100): How realistic is it for contractors to successfully bid and execute
2. Impact Score (0-100): How significant is the potential impact and value
3. Brief reasoning for the scores
4. Recommendations for contractors considering this opportunity
5. Key risks to be aware of

Format your response as JSON with the following structure:
{
  "feasibilityScore": number,
  "impactScore": number,
  "reasoning": "string",
  "recommendations": ["string"],
  "risks": ["string"]
}
`)
	return sb.String()
}

func opportunityDeadline(o *model.Opportunity) string {
	if o.Deadline.IsZero() {
		return noDeadline
	}
	return formatDeadline(&o.Deadline)
}

func buildOpportunityReportPrompt(o *model.Opportunity) string {
	var sb strings.Builder
	sb.WriteString("Generate a comprehensive research report for this government opportunity:\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", o.Title)
	fmt.Fprintf(&sb, "Agency: %s\n", o.Agency)
	fmt.Fprintf(&sb, "Description: %s\n", o.Description)
	fmt.Fprintf(&sb, "Category: %s\n", o.Category)
	fmt.Fprintf(&sb, "Contract Value: %s\n", o.ContractValue)
	fmt.Fprintf(&sb, "Deadline: %s\n", opportunityDeadline(o))
	fmt.Fprintf(&sb, "Feasibility Score: %d%%\n", o.FeasibilityScore)
	fmt.Fprintf(&sb, "Impact Score: %d%%\n", o.ImpactScore)
	fmt.Fprintf(&sb, "Requirements: %s\n", orNotSpecified(o.Requirements))
	sb.WriteString(`
Create a detailed report including:
1. Executive Summary
2. Opportunity Overview
3. Market Analysis
4. Technical Requirements Assessment
5. Competitive Landscape
6. Risk Assessment
7. Recommendations
8. Next Steps

Make this actionable for government contractors considering this opportunity.
`)
	return sb.String()
}

// summarizeSector 截取前 MaxSectorItems 条机会作为行业报告输入
func summarizeSector(sector string, opps []model.Opportunity) model.SectorSummaryInput {
	n := min(len(opps), MaxSectorItems)
	items := make([]model.OpportunitySummary, 0, n)
	for i := range opps[:n] {
		items = append(items, opps[i].Summary())
	}
	return model.SectorSummaryInput{Sector: sector, Opportunities: items, Total: len(opps)}
}

func formatSummaries(items []model.OpportunitySummary, bold bool) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		title := it.Title
		if bold {
			title = "**" + title + "**"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", title, it.Agency, it.ContractValue))
	}
	return strings.Join(lines, "\n")
}

func buildSectorReportPrompt(in model.SectorSummaryInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a comprehensive sector analysis report for the %s sector in government contracting.\n\n", in.Sector)
	sb.WriteString("Recent opportunities in this sector:\n")
	sb.WriteString(formatSummaries(in.Opportunities, false))
	fmt.Fprintf(&sb, "\n\nTotal opportunities analyzed: %d\n", in.Total)
	sb.WriteString(`
Create a detailed sector report including:
1. Sector Overview
2. Market Trends
3. Key Agencies and Programs
4. Funding Patterns
5. Technical Focus Areas
6. Competitive Landscape
7. Emerging Opportunities
8. Strategic Recommendations
`)
	fmt.Fprintf(&sb, "\nFocus on actionable insights for contractors in the %s space.\n", in.Sector)
	return sb.String()
}

func buildPainPointsPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following text for government contractor pain points and challenges:

%q

Identify specific pain points, frustrations, or challenges mentioned. Return as a JSON array of strings.
Focus on actionable problems that could be addressed by solutions or services.
`, text)
}

func buildTrendAnalysisPrompt(data string) string {
	return fmt.Sprintf(`Analyze the following government contracting data for trends:

%q

Identify 3-5 key trends and format as JSON array with this structure:
[
  {
    "topic": "trend name",
    "description": "brief description",
    "trend": "up/down/stable",
    "impact": number (1-100)
  }
]
`, data)
}
