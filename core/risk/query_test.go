package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withLevel(id, level string) Student {
	s := Student{ID: id}
	if level != "" {
		lvl := level
		s.RiskLevel = &lvl
	}
	return s
}

func ids(students []Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func TestQueryFilter_Apply(t *testing.T) {
	students := []Student{
		withLevel("1", LabelHigh),
		withLevel("2", LabelMedium),
		withLevel("3", LabelLow),
		withLevel("4", LabelMedium),
		withLevel("5", "Critical"),
		withLevel("6", LabelLow),
		withLevel("7", ""),
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{name: "no filter", filter: QueryFilter{}, want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "all", filter: QueryFilter{Risk: "all"}, want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "case-insensitive label", filter: QueryFilter{Risk: "medium"}, want: []string{"2", "4"}},
		{name: "unknown label matches its own", filter: QueryFilter{Risk: "CRITICAL"}, want: []string{"5"}},
		{name: "no match", filter: QueryFilter{Risk: "none"}, want: []string{}},
		{name: "sort asc is stable", filter: QueryFilter{Sort: SortRisk}, want: []string{"5", "7", "3", "6", "2", "4", "1"}},
		{name: "sort desc is stable", filter: QueryFilter{Sort: SortRisk, Order: OrderDesc}, want: []string{"1", "2", "4", "3", "6", "5", "7"}},
		{name: "unknown order is asc", filter: QueryFilter{Sort: SortRisk, Order: "sideways"}, want: []string{"5", "7", "3", "6", "2", "4", "1"}},
		{name: "unknown sort key keeps order", filter: QueryFilter{Sort: "name", Order: OrderDesc}, want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "filter then sort", filter: QueryFilter{Risk: "Low", Sort: SortRisk, Order: OrderDesc}, want: []string{"3", "6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(students)))
		})
	}

	// input is left untouched
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, ids(students))
}

func TestQueryFilter_Clean(t *testing.T) {
	qf := QueryFilter{Risk: "  HIGH ", Sort: "risk", Order: " DESC"}
	qf.Clean()
	assert.Equal(t, QueryFilter{Risk: "high", Sort: "risk", Order: "desc"}, qf)
}

func TestLevelRank(t *testing.T) {
	assert.Equal(t, 1, LevelRank("Low"))
	assert.Equal(t, 2, LevelRank("medium"))
	assert.Equal(t, 3, LevelRank("HIGH"))
	assert.Equal(t, 0, LevelRank("Critical"))
	assert.Equal(t, 0, LevelRank(""))
}
