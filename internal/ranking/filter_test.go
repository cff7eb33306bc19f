package ranking

import (
	"reflect"
	"testing"
)

func TestFilterUpTo_ErasesFutureMarginsOnly(t *testing.T) {
	s := BuildSchedules(season())
	FilterUpTo(s, 1)

	if s["Alpha"][1].Margin == nil {
		t.Error("week 1 margin must survive a week-1 filter")
	}
	rec := s["Bravo"][2]
	if rec.Margin != nil {
		t.Errorf("week 2 margin = %d, want erased", *rec.Margin)
	}
	if rec.Opponent != "Charlie" {
		t.Errorf("week 2 opponent = %q, want preserved", rec.Opponent)
	}
}

func TestFilterUpTo_Idempotent(t *testing.T) {
	once := BuildSchedules(season())
	twice := BuildSchedules(season())

	FilterUpTo(once, 1)
	FilterUpTo(twice, 1)
	FilterUpTo(twice, 1)

	if !reflect.DeepEqual(once, twice) {
		t.Error("filtering twice to the same cutoff diverged from filtering once")
	}
}

func TestFilterUpTo_LargerCutoffDoesNotRestore(t *testing.T) {
	s := BuildSchedules(season())
	FilterUpTo(s, 1)
	FilterUpTo(s, 2)

	if s["Bravo"][2].Margin != nil {
		t.Error("a wider refilter must not resurrect erased margins")
	}
}

func TestProjectFutureWeek_FillsUndecidedFixtures(t *testing.T) {
	s := BuildSchedules(season())
	ref := []string{"Alpha", "Delta", "Bravo", "Charlie"}

	ProjectFutureWeek(s, ref, 3, 1)

	alpha := s["Alpha"][3]
	if alpha.Margin == nil || *alpha.Margin != 1 {
		t.Errorf("Alpha week 3 = %+v, want synthetic +1 (ranked above Charlie)", alpha)
	}
	charlie := s["Charlie"][3]
	if charlie.Margin == nil || *charlie.Margin != -1 {
		t.Errorf("Charlie week 3 = %+v, want synthetic -1", charlie)
	}
}

func TestProjectFutureWeek_NeverTouchesDecidedGames(t *testing.T) {
	s := BuildSchedules(season())
	ProjectFutureWeek(s, []string{"Charlie", "Bravo", "Alpha", "Delta"}, 3, 7)

	if got := *s["Alpha"][1].Margin; got != 14 {
		t.Errorf("Alpha week 1 margin = %d, want 14 untouched", got)
	}
}

func TestProjectFutureWeek_RespectsTargetWeek(t *testing.T) {
	s := BuildSchedules(season())
	ProjectFutureWeek(s, []string{"Alpha", "Bravo", "Charlie", "Delta"}, 2, 1)

	if s["Alpha"][3].Margin != nil {
		t.Error("week 3 is beyond the target and must stay undecided")
	}
}

func TestProjectFutureWeek_UnrankedTeams(t *testing.T) {
	s := BuildSchedules(season())

	// Only Charlie is ranked: it projects as beating Alpha. Byes stay byes.
	ProjectFutureWeek(s, []string{"Charlie"}, 3, 1)

	if got := *s["Charlie"][3].Margin; got != 1 {
		t.Errorf("Charlie week 3 margin = %d, want +1 over unranked Alpha", got)
	}
	if got := *s["Alpha"][3].Margin; got != -1 {
		t.Errorf("Alpha week 3 margin = %d, want -1", got)
	}
	if !s["Delta"][3].Bye() || s["Delta"][3].Margin != nil {
		t.Error("bye weeks must never receive synthetic margins")
	}
}

func TestProjectFutureWeek_BothUnrankedStaysUndecided(t *testing.T) {
	s := BuildSchedules(season())
	ProjectFutureWeek(s, []string{"Delta"}, 3, 1)

	if s["Alpha"][3].Margin != nil {
		t.Error("a fixture between two unranked teams must stay undecided")
	}
}
