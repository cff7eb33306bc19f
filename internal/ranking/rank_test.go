package ranking

import (
	"reflect"
	"testing"
)

func TestRankByPower_DescendingWithStableTies(t *testing.T) {
	power := map[string]float64{
		"Bravo":   0.5,
		"Alpha":   0.5, // tied with Bravo; sorted-name order must win
		"Charlie": 1.0,
		"Delta":   0.0,
	}
	got := RankByPower(power)
	want := []string{"Charlie", "Alpha", "Bravo", "Delta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RankByPower = %v, want %v", got, want)
	}
}

func TestRankingSet_WeekLookup(t *testing.T) {
	rs := make(RankingSet)
	rs.Add("AP Top 25", 7, []string{"Alpha", "Bravo"})

	if teams, ok := rs.Week("AP Top 25", 7); !ok || len(teams) != 2 {
		t.Errorf("Week(7) = %v, %v; want the stored ranking", teams, ok)
	}
	if _, ok := rs.Week("AP Top 25", 8); ok {
		t.Error("unrequested week must report no ranking, not an error")
	}
	if _, ok := rs.Week("Coaches Poll", 7); ok {
		t.Error("unknown source must report no ranking")
	}
}

func TestRankingSet_MergeRightWinsOtherwiseUnion(t *testing.T) {
	left := make(RankingSet)
	left.Add("Iterative", 1, []string{"Alpha"})
	left.Add("Iterative", 2, []string{"Bravo"})

	right := make(RankingSet)
	right.Add("Iterative", 2, []string{"Charlie"}) // overwrites
	right.Add("AP Top 25", 2, []string{"Delta"})   // unions

	left.Merge(right)

	if teams, _ := left.Week("Iterative", 1); teams[0] != "Alpha" {
		t.Error("untouched (source, week) pair must survive a merge")
	}
	if teams, _ := left.Week("Iterative", 2); teams[0] != "Charlie" {
		t.Error("right-hand source must overwrite an identical (source, week) pair")
	}
	if teams, _ := left.Week("AP Top 25", 2); teams[0] != "Delta" {
		t.Error("disjoint sources must be unioned")
	}
}

func TestRankingSet_Position(t *testing.T) {
	rs := make(RankingSet)
	rs.Add("Iterative", 3, []string{"Alpha", "Bravo"})

	if pos, ok := rs.Position("Iterative", 3, "Bravo"); !ok || pos != 2 {
		t.Errorf("Position(Bravo) = %d, %v; want 2, true", pos, ok)
	}
	if _, ok := rs.Position("Iterative", 3, "Echo"); ok {
		t.Error("team missing from a ranking must report no position")
	}
}

func TestRecords_FromDecidedMarginsOnly(t *testing.T) {
	s := BuildSchedules(season())
	records := Records(s)

	// Alpha: won week 1, week 3 unplayed.
	if got := records["Alpha"]; got != (Record{Wins: 1}) {
		t.Errorf("Alpha record = %v, want 1-0", got)
	}
	// Bravo: lost week 1, drew week 2 (ties count as neither).
	if got := records["Bravo"]; got != (Record{Losses: 1}) {
		t.Errorf("Bravo record = %v, want 0-1", got)
	}
	if got := records["Bravo"].String(); got != "0-1" {
		t.Errorf("record string = %q, want 0-1", got)
	}
}

func TestRecords_AllByesIsZeroZero(t *testing.T) {
	s := Schedules{"Alpha": {1: MatchRecord{Week: 1}, 2: MatchRecord{Week: 2}}}
	if got := Records(s)["Alpha"]; got != (Record{}) {
		t.Errorf("all-bye record = %v, want 0-0", got)
	}
}

func TestRecords_TrackFilterState(t *testing.T) {
	s := BuildSchedules(season())
	FilterUpTo(s, 1)
	records := Records(s)

	// Bravo's week 2 draw is filtered out; only the week 1 loss remains.
	if got := records["Bravo"]; got != (Record{Losses: 1}) {
		t.Errorf("Bravo record after filter = %v, want 0-1", got)
	}
}
