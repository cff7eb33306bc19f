package ranking

import "testing"

func intp(v int) *int { return &v }

// season returns a small three-week fixture: four teams, one of which
// (Delta) only appears once, leaving it with two byes to backfill.
func season() []Game {
	return []Game{
		{Week: 1, HomeTeam: "Alpha", AwayTeam: "Bravo", HomePoints: intp(28), AwayPoints: intp(14)},
		{Week: 1, HomeTeam: "Charlie", AwayTeam: "Delta", HomePoints: intp(10), AwayPoints: intp(17)},
		{Week: 2, HomeTeam: "Bravo", AwayTeam: "Charlie", HomePoints: intp(21), AwayPoints: intp(21)},
		{Week: 3, HomeTeam: "Alpha", AwayTeam: "Charlie"}, // not played yet
	}
}

func TestBuildSchedules_MarginsFromBothPerspectives(t *testing.T) {
	s := BuildSchedules(season())

	alpha := s["Alpha"][1]
	if alpha.Opponent != "Bravo" || alpha.Margin == nil || *alpha.Margin != 14 {
		t.Errorf("Alpha week 1 = %+v, want Bravo +14", alpha)
	}
	bravo := s["Bravo"][1]
	if bravo.Opponent != "Alpha" || bravo.Margin == nil || *bravo.Margin != -14 {
		t.Errorf("Bravo week 1 = %+v, want Alpha -14", bravo)
	}
}

func TestBuildSchedules_UnplayedGameKeepsOpponent(t *testing.T) {
	s := BuildSchedules(season())

	rec := s["Alpha"][3]
	if rec.Opponent != "Charlie" {
		t.Errorf("Alpha week 3 opponent = %q, want Charlie", rec.Opponent)
	}
	if rec.Margin != nil {
		t.Errorf("Alpha week 3 margin = %d, want nil", *rec.Margin)
	}
}

func TestBuildSchedules_TotalOverSeasonWeeks(t *testing.T) {
	s := BuildSchedules(season())

	for team, sched := range s {
		for week := 1; week <= 3; week++ {
			if _, ok := sched[week]; !ok {
				t.Errorf("team %s has no record for week %d", team, week)
			}
		}
	}

	// Delta played only week 1; the rest must be byes.
	for week := 2; week <= 3; week++ {
		rec := s["Delta"][week]
		if !rec.Bye() || rec.Margin != nil {
			t.Errorf("Delta week %d = %+v, want bye", week, rec)
		}
	}
}

func TestBuildSchedules_AbsentTeamStaysAbsent(t *testing.T) {
	s := BuildSchedules(season())
	if _, ok := s["Echo"]; ok {
		t.Error("team with no games must not appear in the schedules")
	}
}

func TestBuildSchedules_InvalidWeekPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for week 0")
		}
	}()
	BuildSchedules([]Game{{Week: 0, HomeTeam: "Alpha", AwayTeam: "Bravo"}})
}

func TestClone_IsIndependent(t *testing.T) {
	s := BuildSchedules(season())
	c := s.Clone()

	FilterUpTo(c, 1)

	if s["Bravo"][2].Margin == nil {
		t.Error("filtering the clone mutated the original")
	}
	if c["Bravo"][2].Margin != nil {
		t.Error("clone was not filtered")
	}
}

func TestLastWeeks(t *testing.T) {
	s := BuildSchedules(season())
	if got := s.LastWeek(); got != 3 {
		t.Errorf("LastWeek() = %d, want 3", got)
	}
	if got := s.LastPlayedWeek(); got != 2 {
		t.Errorf("LastPlayedWeek() = %d, want 2", got)
	}
}
