package lead

import (
	"sort"
	"strings"
)

// SortColumn is a column the lead list can be ordered by.
type SortColumn string

const (
	SortFullName      SortColumn = "full_name"
	SortAgency        SortColumn = "agency"
	SortFunnelStage   SortColumn = "funnel_stage"
	SortContractValue SortColumn = "potential_contract_value"
	SortLastActivity  SortColumn = "last_activity_date"
	SortCreatedAt     SortColumn = "created_at"
)

func (c SortColumn) Valid() bool {
	switch c {
	case SortFullName, SortAgency, SortFunnelStage, SortContractValue, SortLastActivity, SortCreatedAt:
		return true
	}
	return false
}

// Query filters and orders a lead list. Zero value keeps the input as is.
type Query struct {
	Search string
	Sort   SortColumn
	Desc   bool
}

// Apply returns a new slice; leads is never modified.
func (q Query) Apply(leads []Lead) []Lead {
	out := Filter(leads, q.Search)
	if q.Sort != "" {
		SortBy(out, q.Sort, q.Desc)
	}
	return out
}

// Filter keeps leads whose name, agency, email or instagram contains term,
// case-insensitively.
func Filter(leads []Lead, term string) []Lead {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if term == "" || matches(l, term) {
			out = append(out, l)
		}
	}
	return out
}

func matches(l Lead, term string) bool {
	for _, f := range []string{l.FullName, deref(l.Agency), deref(l.Email), deref(l.InstagramProfileURL)} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// SortBy orders leads in place. Unknown values sort first ascending.
func SortBy(leads []Lead, col SortColumn, desc bool) {
	less := func(a, b Lead) bool {
		switch col {
		case SortAgency:
			return strings.ToLower(deref(a.Agency)) < strings.ToLower(deref(b.Agency))
		case SortFunnelStage:
			return a.FunnelStage.Index() < b.FunnelStage.Index()
		case SortContractValue:
			return a.ContractValue() < b.ContractValue()
		case SortLastActivity:
			return before(a.LastActivityDate, b.LastActivityDate)
		case SortCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return strings.ToLower(a.FullName) < strings.ToLower(b.FullName)
		}
	}
	sort.SliceStable(leads, func(i, j int) bool {
		if desc {
			return less(leads[j], leads[i])
		}
		return less(leads[i], leads[j])
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
