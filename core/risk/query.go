package risk

import (
	"sort"
	"strings"

	"github.com/trezcool/riskwatch/core"
)

const (
	FilterAll = "all"
	SortRisk  = "risk"
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// QueryFilter selects and orders evaluated students.
type QueryFilter struct {
	Risk  string `query:"risk"`  // label to keep (case-insensitive); "" or "all" keeps everyone
	Sort  string `query:"sort"`  // only "risk" is supported
	Order string `query:"order"` // asc (default) | desc
}

func (qf *QueryFilter) Clean() {
	qf.Risk = core.CleanString(qf.Risk, true /* lower */)
	qf.Order = core.CleanString(qf.Order, true /* lower */)
}

func (qf QueryFilter) descending() bool {
	return strings.ToLower(qf.Order) == OrderDesc
}

// Apply filters, then sorts, students. The input slice is left untouched.
func (qf QueryFilter) Apply(students []Student) []Student {
	result := make([]Student, 0, len(students))
	wanted := strings.ToLower(qf.Risk)
	for _, s := range students {
		if wanted == "" || wanted == FilterAll || strings.ToLower(s.Level()) == wanted {
			result = append(result, s)
		}
	}

	if qf.Sort == SortRisk {
		desc := qf.descending()
		sort.SliceStable(result, func(i, j int) bool {
			ri, rj := LevelRank(result[i].Level()), LevelRank(result[j].Level())
			if desc {
				return ri > rj
			}
			return ri < rj
		})
	}
	return result
}

// LevelRank orders labels for sorting: Low=1, Medium=2, High=3, anything else 0.
func LevelRank(level string) int {
	switch strings.ToLower(level) {
	case "low":
		return 1
	case "medium":
		return 2
	case "high":
		return 3
	default:
		return 0
	}
}
