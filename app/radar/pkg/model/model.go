package model

import (
	"strings"
	"time"
)

// OpportunityInput 评分与报告所需的机会字段
type OpportunityInput struct {
	Title         string
	Description   string
	Agency        string
	Category      string
	ContractValue string
	Requirements  string     // 可选
	Deadline      *time.Time // 可选
}

// OpportunityDraft 抓取或外部提交的未评分机会，字段均可缺省
type OpportunityDraft struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Agency        string     `json:"agency"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ContractValue string     `json:"contractValue"`
	EstimatedMin  *float64   `json:"estimatedMin,omitempty"`
	EstimatedMax  *float64   `json:"estimatedMax,omitempty"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags,omitempty"`
	Requirements  string     `json:"requirements,omitempty"`
	SourceURL     string     `json:"sourceUrl,omitempty"`
	IsHot         bool       `json:"isHot,omitempty"`
}

// Input 提取评分所需字段
func (d *OpportunityDraft) Input() OpportunityInput {
	return OpportunityInput{
		Title:         d.Title,
		Description:   d.Description,
		Agency:        d.Agency,
		Category:      d.Category,
		ContractValue: d.ContractValue,
		Requirements:  d.Requirements,
		Deadline:      d.Deadline,
	}
}

// Opportunity 持久化的机会记录
type Opportunity struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Agency           string    `json:"agency"`
	Deadline         time.Time `json:"deadline"`
	ContractValue    string    `json:"contractValue"`
	EstimatedMin     *float64  `json:"estimatedMin,omitempty"`
	EstimatedMax     *float64  `json:"estimatedMax,omitempty"`
	FeasibilityScore int       `json:"feasibilityScore"`
	ImpactScore      int       `json:"impactScore"`
	Tags             []string  `json:"tags"`
	Category         string    `json:"category"`
	SourceURL        string    `json:"sourceUrl,omitempty"`
	IsHot            bool      `json:"isHot"`
	IsHighImpact     bool      `json:"isHighImpact"`
	Requirements     string    `json:"requirements,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Input 提取评分所需字段
func (o *Opportunity) Input() OpportunityInput {
	in := OpportunityInput{
		Title:         o.Title,
		Description:   o.Description,
		Agency:        o.Agency,
		Category:      o.Category,
		ContractValue: o.ContractValue,
		Requirements:  o.Requirements,
	}
	if !o.Deadline.IsZero() {
		d := o.Deadline
		in.Deadline = &d
	}
	return in
}

// Summary 生成行业报告用的摘要
func (o *Opportunity) Summary() OpportunitySummary {
	return OpportunitySummary{Title: o.Title, Agency: o.Agency, ContractValue: o.ContractValue}
}

// FilterBySector 类别或机构包含关键字（忽略大小写）的机会
func FilterBySector(opps []*Opportunity, sector string) []Opportunity {
	key := strings.ToLower(sector)
	out := make([]Opportunity, 0, len(opps))
	for _, o := range opps {
		if strings.Contains(strings.ToLower(o.Category), key) || strings.Contains(strings.ToLower(o.Agency), key) {
			out = append(out, *o)
		}
	}
	return out
}

// Analysis 推理服务给出的评分结果
type Analysis struct {
	FeasibilityScore int      `json:"feasibilityScore"`
	ImpactScore      int      `json:"impactScore"`
	Reasoning        string   `json:"reasoning"`
	Recommendations  []string `json:"recommendations"`
	Risks            []string `json:"risks"`
}

// DerivedFlags 由评分推导出的展示标记
type DerivedFlags struct {
	IsHighImpact bool `json:"isHighImpact"`
}

// OpportunitySummary 行业报告中的单条机会摘要
type OpportunitySummary struct {
	Title         string
	Agency        string
	ContractValue string
}

// SectorSummaryInput 行业报告的输入，Opportunities 最多 10 条
type SectorSummaryInput struct {
	Sector        string
	Opportunities []OpportunitySummary
	Total         int
}

// TrendInsight 趋势分析的单条结果
type TrendInsight struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Trend       string `json:"trend"` // up, down, stable
	Impact      int    `json:"impact"`
}

// Trend 持久化的趋势记录
type Trend struct {
	ID               string    `json:"id"`
	Topic            string    `json:"topic"`
	Description      string    `json:"description"`
	ChangePercentage float64   `json:"changePercentage"`
	Trend            string    `json:"trend"`
	Category         string    `json:"category"`
	Color            string    `json:"color"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Analytics 持久化的统计指标
type Analytics struct {
	ID     string    `json:"id"`
	Metric string    `json:"metric"`
	Value  float64   `json:"value"`
	Period string    `json:"period"` // daily, weekly, monthly
	Date   time.Time `json:"date"`
}

// Stats 仪表盘汇总
type Stats struct {
	TotalOpportunities     int `json:"totalOpportunities"`
	HighScoreOpportunities int `json:"highScoreOpportunities"`
	TrendingTopics         int `json:"trendingTopics"`
	ReportsGenerated       int `json:"reportsGenerated"`
}

// User 仪表盘用户，密码只保存哈希
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
