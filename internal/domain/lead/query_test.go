package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func names(leads []Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.FullName)
	}
	return out
}

func sampleLeads() []Lead {
	return []Lead{
		{FullName: "Carla", Agency: ptr("RE/MAX"), FunnelStage: StageWon, PotentialContractValue: ptr(500.0)},
		{FullName: "ana", Email: ptr("ana@kw.com"), FunnelStage: StageProspect},
		{FullName: "Bruno", InstagramProfileURL: ptr("instagram.com/bruno.remax"), FunnelStage: StageQualified, PotentialContractValue: ptr(900.0)},
	}
}

func TestFilter(t *testing.T) {
	leads := sampleLeads()

	assert.Equal(t, []string{"Carla"}, names(Filter(leads, "re/max")))
	assert.Equal(t, []string{"Bruno"}, names(Filter(leads, "remax")))
	assert.Equal(t, []string{"ana"}, names(Filter(leads, "KW.com")))
	assert.Len(t, Filter(leads, "  "), 3)
}

func TestQuery_Apply(t *testing.T) {
	leads := sampleLeads()

	got := Query{Sort: SortFullName}.Apply(leads)
	assert.Equal(t, []string{"ana", "Bruno", "Carla"}, names(got))

	got = Query{Sort: SortContractValue, Desc: true}.Apply(leads)
	assert.Equal(t, []string{"Bruno", "Carla", "ana"}, names(got))

	got = Query{Sort: SortFunnelStage}.Apply(leads)
	assert.Equal(t, []string{"ana", "Bruno", "Carla"}, names(got))

	// input untouched
	assert.Equal(t, []string{"Carla", "ana", "Bruno"}, names(leads))
}

func TestSortColumn_Valid(t *testing.T) {
	assert.True(t, SortAgency.Valid())
	assert.False(t, SortColumn("phone").Valid())
}
