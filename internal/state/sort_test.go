package state

import (
	"testing"

	"leadboard/internal/types"
)

func company(name, email, ranking string) types.CompanyRecord {
	return types.NewCompanyRecord(
		types.CompanyField{Name: types.ColumnCompanyName, Value: name},
		types.CompanyField{Name: types.ColumnContactEmail, Value: email},
		types.CompanyField{Name: types.ColumnRanking, Value: ranking},
	)
}

func names(rows []IndexedCompany) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record.Name())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortModeCycles(t *testing.T) {
	tests := []struct {
		name string
		from SortMode
		axis SortAxis
		want SortMode
	}{
		{"ranking from none", SortNone, SortAxisRanking, SortRankingDesc},
		{"ranking desc to asc", SortRankingDesc, SortAxisRanking, SortRankingAsc},
		{"ranking asc to none", SortRankingAsc, SortAxisRanking, SortNone},
		{"email from none", SortNone, SortAxisEmail, SortEmailPresentFirst},
		{"email present to missing", SortEmailPresentFirst, SortAxisEmail, SortEmailMissingFirst},
		{"email missing to none", SortEmailMissingFirst, SortAxisEmail, SortNone},
		{"email cancels ranking", SortRankingAsc, SortAxisEmail, SortEmailPresentFirst},
		{"ranking cancels email", SortEmailMissingFirst, SortAxisRanking, SortRankingDesc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.Next(tt.axis); got != tt.want {
				t.Fatalf("Next(%s) from %s = %s, want %s", tt.axis, tt.from, got, tt.want)
			}
		})
	}
}

func TestThreeTogglesRestoreServerOrder(t *testing.T) {
	records := []types.CompanyRecord{
		company("c", "", "5"),
		company("a", "a@x.io", ""),
		company("d", "d@x.io", "9"),
		company("b", "", "1"),
		company("e", "e@x.io", "5"),
	}
	base := []string{"c", "a", "d", "b", "e"}
	for _, axis := range []SortAxis{SortAxisRanking, SortAxisEmail} {
		store := New()
		store.ReplaceCompanies(records)
		for i := 0; i < 3; i++ {
			store.AdvanceSort(axis)
		}
		if store.SortMode() != SortNone {
			t.Fatalf("axis %s: expected none after three toggles, got %s", axis, store.SortMode())
		}
		if got := names(store.SortedCompanies()); !equalStrings(got, base) {
			t.Fatalf("axis %s: expected base order %v, got %v", axis, base, got)
		}
	}
}

func TestRankingToggleScenario(t *testing.T) {
	store := New()
	store.ReplaceCompanies([]types.CompanyRecord{company("three", "", "3"), company("eight", "", "8")})

	store.AdvanceSort(SortAxisRanking)
	if got := names(store.SortedCompanies()); !equalStrings(got, []string{"eight", "three"}) {
		t.Fatalf("expected [8,3], got %v", got)
	}
	store.AdvanceSort(SortAxisRanking)
	if got := names(store.SortedCompanies()); !equalStrings(got, []string{"three", "eight"}) {
		t.Fatalf("expected [3,8], got %v", got)
	}
	store.AdvanceSort(SortAxisRanking)
	if got := names(store.SortedCompanies()); !equalStrings(got, []string{"three", "eight"}) {
		t.Fatalf("expected original order, got %v", got)
	}
}

func TestSortKeepsMissingRankingLastAndStable(t *testing.T) {
	records := []types.CompanyRecord{
		company("x", "", ""),
		company("low", "", "2"),
		company("y", "", "n/a"),
		company("high", "", "9"),
		company("high2", "", "9"),
	}
	desc := names(SortCompanies(records, SortRankingDesc))
	if !equalStrings(desc, []string{"high", "high2", "low", "x", "y"}) {
		t.Fatalf("unexpected desc order: %v", desc)
	}
	asc := names(SortCompanies(records, SortRankingAsc))
	if !equalStrings(asc, []string{"low", "high", "high2", "x", "y"}) {
		t.Fatalf("unexpected asc order: %v", asc)
	}
}

func TestSortTreatsNonFiniteRankingAsMissing(t *testing.T) {
	records := []types.CompanyRecord{
		company("three", "", "3"),
		company("nan", "", "NaN"),
		company("eight", "", "8"),
		company("inf", "", "Inf"),
	}
	desc := names(SortCompanies(records, SortRankingDesc))
	if !equalStrings(desc, []string{"eight", "three", "nan", "inf"}) {
		t.Fatalf("unexpected desc order: %v", desc)
	}
}

func TestEmailPresenceSort(t *testing.T) {
	records := []types.CompanyRecord{
		company("none1", "", ""),
		company("has1", "h1@x.io", ""),
		company("none2", "  ", ""),
		company("has2", "h2@x.io", ""),
	}
	present := names(SortCompanies(records, SortEmailPresentFirst))
	if !equalStrings(present, []string{"has1", "has2", "none1", "none2"}) {
		t.Fatalf("unexpected present-first order: %v", present)
	}
	missing := names(SortCompanies(records, SortEmailMissingFirst))
	if !equalStrings(missing, []string{"none1", "none2", "has1", "has2"}) {
		t.Fatalf("unexpected missing-first order: %v", missing)
	}
}

func TestSortDoesNotMutateBaseOrSelection(t *testing.T) {
	store := New()
	store.ReplaceCompanies([]types.CompanyRecord{
		company("a", "A@x.io", "1"),
		company("b", "b@x.io", "7"),
	})
	store.ToggleSelection("a@x.io")

	store.AdvanceSort(SortAxisRanking)
	_ = store.SortedCompanies()
	store.AdvanceSort(SortAxisEmail)
	_ = store.SortedCompanies()

	if got := store.Companies(); got[0].Name() != "a" || got[1].Name() != "b" {
		t.Fatalf("base order mutated: %v", got)
	}
	if !store.IsSelected(" a@X.io") || store.SelectionCount() != 1 {
		t.Fatalf("selection changed by sort: %v", store.SelectedEmails())
	}
}

func TestParseSortMode(t *testing.T) {
	for _, mode := range []SortMode{SortNone, SortRankingDesc, SortRankingAsc, SortEmailPresentFirst, SortEmailMissingFirst} {
		got, ok := ParseSortMode(mode.String())
		if !ok || got != mode {
			t.Fatalf("ParseSortMode(%q) = %v, %v", mode.String(), got, ok)
		}
	}
	if _, ok := ParseSortMode("sideways"); ok {
		t.Fatalf("expected unknown sort mode to fail")
	}
}
