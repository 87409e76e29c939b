package state

import (
	"sort"

	"leadboard/internal/types"
)

type SortAxis int

const (
	SortAxisRanking SortAxis = iota + 1
	SortAxisEmail
)

func (a SortAxis) String() string {
	switch a {
	case SortAxisRanking:
		return "ranking"
	case SortAxisEmail:
		return "email"
	default:
		return "none"
	}
}

// SortMode is the single active presentation sort. Only one axis can be
// active at a time.
type SortMode int

const (
	SortNone SortMode = iota
	SortRankingDesc
	SortRankingAsc
	SortEmailPresentFirst
	SortEmailMissingFirst
)

func (m SortMode) Axis() SortAxis {
	switch m {
	case SortRankingDesc, SortRankingAsc:
		return SortAxisRanking
	case SortEmailPresentFirst, SortEmailMissingFirst:
		return SortAxisEmail
	default:
		return 0
	}
}

func (m SortMode) String() string {
	switch m {
	case SortRankingDesc:
		return "ranking-desc"
	case SortRankingAsc:
		return "ranking-asc"
	case SortEmailPresentFirst:
		return "email-present-first"
	case SortEmailMissingFirst:
		return "email-missing-first"
	default:
		return "none"
	}
}

func ParseSortMode(raw string) (SortMode, bool) {
	for _, mode := range []SortMode{SortNone, SortRankingDesc, SortRankingAsc, SortEmailPresentFirst, SortEmailMissingFirst} {
		if mode.String() == raw {
			return mode, true
		}
	}
	if raw == "" {
		return SortNone, true
	}
	return SortNone, false
}

// Next returns the mode after toggling axis once: None -> first -> second -> None.
// Toggling an axis other than the active one starts that axis' cycle.
func (m SortMode) Next(axis SortAxis) SortMode {
	switch axis {
	case SortAxisRanking:
		switch m {
		case SortRankingDesc:
			return SortRankingAsc
		case SortRankingAsc:
			return SortNone
		default:
			return SortRankingDesc
		}
	case SortAxisEmail:
		switch m {
		case SortEmailPresentFirst:
			return SortEmailMissingFirst
		case SortEmailMissingFirst:
			return SortNone
		default:
			return SortEmailPresentFirst
		}
	}
	return m
}

type IndexedCompany struct {
	Index  int
	Record types.CompanyRecord
}

// SortCompanies returns a sorted view over records. The input slice is not
// modified and ties keep their base order.
func SortCompanies(records []types.CompanyRecord, mode SortMode) []IndexedCompany {
	out := make([]IndexedCompany, len(records))
	for i, record := range records {
		out[i] = IndexedCompany{Index: i, Record: record}
	}
	less := sortLess(mode)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Record, out[j].Record)
	})
	return out
}

func sortLess(mode SortMode) func(left, right types.CompanyRecord) bool {
	switch mode {
	case SortRankingDesc, SortRankingAsc:
		desc := mode == SortRankingDesc
		return func(left, right types.CompanyRecord) bool {
			lv, lok := left.Ranking()
			rv, rok := right.Ranking()
			if lok != rok {
				return lok
			}
			if !lok || lv == rv {
				return false
			}
			if desc {
				return lv > rv
			}
			return lv < rv
		}
	case SortEmailPresentFirst, SortEmailMissingFirst:
		presentFirst := mode == SortEmailPresentFirst
		return func(left, right types.CompanyRecord) bool {
			lhas := left.Email() != ""
			rhas := right.Email() != ""
			if lhas == rhas {
				return false
			}
			if presentFirst {
				return lhas
			}
			return rhas
		}
	}
	return nil
}
