// Package analytics derives the dashboard figures from a lead collection.
// Every function is pure: the same input always yields the same output.
package analytics

import (
	"sort"
	"strings"
	"time"

	"realtorcrm/internal/domain/lead"
)

const (
	// NotApplicable is returned by MostCommon when there is nothing to count.
	NotApplicable = "N/A"
	// UnknownSource labels leads without a lead source.
	UnknownSource = "Unknown"

	TopOpportunityLimit = 5
	PainPointLimit      = 10
)

type StageCount struct {
	Stage lead.FunnelStage `json:"stage"`
	Count int              `json:"count"`
}

type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FunnelCounts counts leads per stage, in pipeline order, zeros included.
func FunnelCounts(leads []lead.Lead) []StageCount {
	counts := make(map[lead.FunnelStage]int, len(lead.Stages))
	for _, l := range leads {
		counts[l.FunnelStage]++
	}
	out := make([]StageCount, 0, len(lead.Stages))
	for _, s := range lead.Stages {
		out = append(out, StageCount{Stage: s, Count: counts[s]})
	}
	return out
}

// PrimaryFunnel drops Lost and Nurturing, which the funnel chart leaves out.
func PrimaryFunnel(counts []StageCount) []StageCount {
	out := make([]StageCount, 0, len(counts))
	for _, c := range counts {
		if c.Stage == lead.StageLost || c.Stage == lead.StageNurturing {
			continue
		}
		out = append(out, c)
	}
	return out
}

func won(leads []lead.Lead) []lead.Lead {
	var out []lead.Lead
	for _, l := range leads {
		if l.FunnelStage == lead.StageWon {
			out = append(out, l)
		}
	}
	return out
}

// RecurringRevenue estimates MRR: annual contract value of won leads over 12.
func RecurringRevenue(leads []lead.Lead) float64 {
	var mrr float64
	for _, l := range won(leads) {
		mrr += l.ContractValue() / 12
	}
	return mrr
}

// NewWinsThisMonth counts won leads whose last activity falls in now's
// calendar month.
func NewWinsThisMonth(leads []lead.Lead, now time.Time) int {
	n := 0
	for _, l := range won(leads) {
		if l.LastActivityDate == nil {
			continue
		}
		d := l.LastActivityDate.In(now.Location())
		if d.Year() == now.Year() && d.Month() == now.Month() {
			n++
		}
	}
	return n
}

// QualifiedOrFurther counts leads at or past Qualified in stage order.
func QualifiedOrFurther(leads []lead.Lead) int {
	q := lead.StageQualified.Index()
	n := 0
	for _, l := range leads {
		if l.FunnelStage.Index() >= q {
			n++
		}
	}
	return n
}

// OpenPipelineValue sums contract value over leads that are neither won nor lost.
func OpenPipelineValue(leads []lead.Lead) float64 {
	var sum float64
	for _, l := range leads {
		if l.FunnelStage.Open() {
			sum += l.ContractValue()
		}
	}
	return sum
}

// TopOpportunities returns up to n open leads by contract value, highest
// first. Equal values keep collection order.
func TopOpportunities(leads []lead.Lead, n int) []lead.Lead {
	open := make([]lead.Lead, 0, len(leads))
	for _, l := range leads {
		if l.FunnelStage.Open() {
			open = append(open, l)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].ContractValue() > open[j].ContractValue()
	})
	if n >= 0 && len(open) > n {
		open = open[:n]
	}
	return open
}

// MostCommon returns the most frequent non-empty value. The first value to
// reach the top count wins ties. Empty input gives NotApplicable.
func MostCommon(values []string) string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := NotApplicable, 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// Persona summarises the won leads.
type Persona struct {
	TotalWon        int    `json:"total_won"`
	ProductionLevel string `json:"production_level"`
	TeamSize        string `json:"team_size"`
	TechAdoption    string `json:"tech_adoption"`
	LeadSource      string `json:"lead_source"`
}

func BuyerPersona(leads []lead.Lead) Persona {
	w := won(leads)
	production := make([]string, 0, len(w))
	team := make([]string, 0, len(w))
	tech := make([]string, 0, len(w))
	source := make([]string, 0, len(w))
	for _, l := range w {
		production = append(production, string(l.ProductionLevel))
		team = append(team, string(l.TeamSize))
		tech = append(tech, string(l.TechAdoption))
		if l.LeadSource != nil {
			source = append(source, *l.LeadSource)
		}
	}
	return Persona{
		TotalWon:        len(w),
		ProductionLevel: MostCommon(production),
		TeamSize:        MostCommon(team),
		TechAdoption:    MostCommon(tech),
		LeadSource:      MostCommon(source),
	}
}

// PainPointFrequency counts every tag occurrence across the collection and
// returns the n most frequent. Ties keep first-seen order.
func PainPointFrequency(leads []lead.Lead, n int) []Bucket {
	var out []Bucket
	index := make(map[string]int)
	for _, l := range leads {
		for _, tag := range l.PainPointTags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if i, ok := index[tag]; ok {
				out[i].Count++
				continue
			}
			index[tag] = len(out)
			out = append(out, Bucket{Label: tag, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []Bucket{}
	}
	return out
}

// LeadSourceDistribution counts leads per source in first-seen order.
func LeadSourceDistribution(leads []lead.Lead) []Bucket {
	out := []Bucket{}
	index := make(map[string]int)
	for _, l := range leads {
		label := UnknownSource
		if l.LeadSource != nil && *l.LeadSource != "" {
			label = *l.LeadSource
		}
		if i, ok := index[label]; ok {
			out[i].Count++
			continue
		}
		index[label] = len(out)
		out = append(out, Bucket{Label: label, Count: 1})
	}
	return out
}

// Dashboard holds every figure the dashboard shows.
type Dashboard struct {
	RecurringRevenue   float64      `json:"recurring_revenue"`
	NewWinsThisMonth   int          `json:"new_wins_this_month"`
	QualifiedOrFurther int          `json:"qualified_leads"`
	OpenPipelineValue  float64      `json:"open_pipeline_value"`
	Funnel             []StageCount `json:"funnel"`
	PrimaryFunnel      []StageCount `json:"primary_funnel"`
	TopOpportunities   []lead.Lead  `json:"top_opportunities"`
	BuyerPersona       Persona      `json:"buyer_persona"`
	PainPoints         []Bucket     `json:"pain_points"`
	LeadSources        []Bucket     `json:"lead_sources"`
	LeadCount          int          `json:"lead_count"`
}

// Compute builds the dashboard for leads as of now.
func Compute(leads []lead.Lead, now time.Time) Dashboard {
	funnel := FunnelCounts(leads)
	return Dashboard{
		RecurringRevenue:   RecurringRevenue(leads),
		NewWinsThisMonth:   NewWinsThisMonth(leads, now),
		QualifiedOrFurther: QualifiedOrFurther(leads),
		OpenPipelineValue:  OpenPipelineValue(leads),
		Funnel:             funnel,
		PrimaryFunnel:      PrimaryFunnel(funnel),
		TopOpportunities:   TopOpportunities(leads, TopOpportunityLimit),
		BuyerPersona:       BuyerPersona(leads),
		PainPoints:         PainPointFrequency(leads, PainPointLimit),
		LeadSources:        LeadSourceDistribution(leads),
		LeadCount:          len(leads),
	}
}
