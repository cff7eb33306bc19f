package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gridrank/gridrank/internal/ingest/cfbd"
)

func intp(v int) *int { return &v }

// fakeFetcher serves a canned two-week season without touching the network.
type fakeFetcher struct {
	games     []cfbd.Game
	teams     []cfbd.Team
	polls     []cfbd.PollWeek
	pollsErr  error
	gamesErr  error
	gameCalls int
}

func (f *fakeFetcher) Games(_ context.Context, year int, _ string) ([]cfbd.Game, error) {
	f.gameCalls++
	return f.games, f.gamesErr
}

func (f *fakeFetcher) Teams(_ context.Context, year int) ([]cfbd.Team, error) {
	return f.teams, nil
}

func (f *fakeFetcher) Rankings(_ context.Context, year int) ([]cfbd.PollWeek, error) {
	return f.polls, f.pollsErr
}

func testFetcher() *fakeFetcher {
	return &fakeFetcher{
		games: []cfbd.Game{
			{ID: 1, Season: 2019, Week: 1, SeasonType: "regular",
				HomeTeam: "Alpha", HomePoints: intp(28), AwayTeam: "Bravo", AwayPoints: intp(14)},
			{ID: 2, Season: 2019, Week: 1, SeasonType: "regular",
				HomeTeam: "Charlie", HomePoints: intp(10), AwayTeam: "Delta", AwayPoints: intp(7)},
			{ID: 3, Season: 2019, Week: 2, SeasonType: "regular",
				HomeTeam: "Alpha", HomePoints: intp(21), AwayTeam: "Charlie", AwayPoints: intp(10)},
			{ID: 4, Season: 2019, Week: 2, SeasonType: "regular",
				HomeTeam: "Bravo", HomePoints: intp(17), AwayTeam: "Delta", AwayPoints: intp(13)},
			{ID: 5, Season: 2019, Week: 3, SeasonType: "regular",
				HomeTeam: "Alpha", AwayTeam: "Delta"},
			{ID: 6, Season: 2019, Week: 3, SeasonType: "regular",
				HomeTeam: "Bravo", AwayTeam: "Charlie"},
		},
		teams: []cfbd.Team{
			{School: "Alpha", Mascot: "Aardvarks", Conference: "Test", Logos: []string{"http://img/a.png"}},
			{School: "Bravo", Conference: "Test"},
		},
		polls: []cfbd.PollWeek{
			{Season: 2019, Week: 3, Polls: []cfbd.Poll{
				{Poll: "AP Top 25", Ranks: []cfbd.PollRank{
					{Rank: 1, School: "Alpha"},
					{Rank: 2, School: "Charlie"},
				}},
				{Poll: "Some Obscure Poll", Ranks: []cfbd.PollRank{
					{Rank: 1, School: "Delta"},
				}},
			}},
		},
	}
}

func newTestService(f *fakeFetcher) *RankingService {
	return NewRankingService(f, nil, nil, Config{Seed: 0, Workers: 2})
}

func TestSeasonRankings_BothSolverSourcesPerPlayedWeek(t *testing.T) {
	svc := newTestService(testFetcher())

	season, err := svc.SeasonRankings(context.Background(), 2019)
	if err != nil {
		t.Fatalf("SeasonRankings() error: %v", err)
	}

	if season.LastWeek != 3 || season.LastPlayedWeek != 2 {
		t.Errorf("weeks = %d/%d, want last 3, last played 2", season.LastWeek, season.LastPlayedWeek)
	}

	for _, source := range []string{SourceMarginUnaware, SourceMarginAware} {
		for week := 1; week <= 2; week++ {
			if _, ok := season.Rankings.Week(source, week); !ok {
				t.Errorf("missing %s ranking for week %d", source, week)
			}
		}
		if _, ok := season.Rankings.Week(source, 3); ok {
			t.Errorf("%s ranked the unplayed week 3", source)
		}
	}

	// Alpha won everything, Delta lost everything.
	teams, _ := season.Rankings.Week(SourceMarginUnaware, 2)
	if teams[0] != "Alpha" || teams[3] != "Delta" {
		t.Errorf("week 2 ranking = %v, want Alpha first and Delta last", teams)
	}
}

func TestSeasonRankings_RecordsAndPolls(t *testing.T) {
	svc := newTestService(testFetcher())

	season, err := svc.SeasonRankings(context.Background(), 2019)
	if err != nil {
		t.Fatalf("SeasonRankings() error: %v", err)
	}

	if got := season.Records["Alpha"]; got != "2-0" {
		t.Errorf("Alpha record = %q, want 2-0", got)
	}
	if got := season.Records["Delta"]; got != "0-2" {
		t.Errorf("Delta record = %q, want 0-2", got)
	}

	// The week-3 AP poll reflects games through week 2.
	ap, ok := season.Rankings.Week("AP Top 25", 2)
	if !ok || ap[0] != "Alpha" {
		t.Errorf("AP Top 25 week 2 = %v, %v; want Alpha on top", ap, ok)
	}
	if _, ok := season.Rankings.Week("Some Obscure Poll", 2); ok {
		t.Error("polls outside the kept set must not be merged")
	}
}

func TestSeasonRankings_PollFailureDegrades(t *testing.T) {
	f := testFetcher()
	f.pollsErr = errors.New("upstream down")
	svc := newTestService(f)

	season, err := svc.SeasonRankings(context.Background(), 2019)
	if err != nil {
		t.Fatalf("poll failure must not fail the evaluation: %v", err)
	}
	if _, ok := season.Rankings.Week(SourceMarginUnaware, 2); !ok {
		t.Error("iterative rankings must survive a poll outage")
	}
}

func TestSeasonRankings_DeterministicAcrossCalls(t *testing.T) {
	svc := newTestService(testFetcher())
	ctx := context.Background()

	first, err := svc.SeasonRankings(ctx, 2019)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.SeasonRankings(ctx, 2019)
	if err != nil {
		t.Fatal(err)
	}

	for _, source := range []string{SourceMarginUnaware, SourceMarginAware} {
		for week := 1; week <= 2; week++ {
			a, _ := first.Rankings.Week(source, week)
			b, _ := second.Rankings.Week(source, week)
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("%s week %d diverged between calls: %v vs %v", source, week, a, b)
				}
			}
		}
	}
}

func TestProjectedRankings(t *testing.T) {
	svc := newTestService(testFetcher())

	proj, err := svc.ProjectedRankings(context.Background(), 2019, 2, 3)
	if err != nil {
		t.Fatalf("ProjectedRankings() error: %v", err)
	}
	if proj.AsOfWeek != 2 || proj.Week != 3 {
		t.Errorf("projection window = %d..%d, want 2..3", proj.AsOfWeek, proj.Week)
	}

	teams, ok := proj.Rankings.Week(SourceMarginUnaware, 3)
	if !ok {
		t.Fatal("missing projected margin-unaware ranking")
	}
	if teams[0] != "Alpha" {
		t.Errorf("projected week 3 = %v, want Alpha on top (it wins its projected game too)", teams)
	}

	if _, err := svc.ProjectedRankings(context.Background(), 2019, 3, 2); err == nil {
		t.Error("target week before as-of week must fail")
	}
}

func TestTeamSchedule_OpponentRankDecoration(t *testing.T) {
	svc := newTestService(testFetcher())

	entries, err := svc.TeamSchedule(context.Background(), 2019, "Alpha", 2, SourceMarginUnaware)
	if err != nil {
		t.Fatalf("TeamSchedule() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want one per season week", len(entries))
	}

	week1 := entries[0]
	if week1.Opponent != "Bravo" || week1.Margin == nil || *week1.Margin != 14 {
		t.Errorf("week 1 entry = %+v, want Bravo +14", week1)
	}
	if week1.OpponentRank == nil {
		t.Error("Bravo is in the week 2 ranking and must carry a rank")
	}

	// Week 3 is beyond the cutoff: opponent known, margin filtered.
	week3 := entries[2]
	if week3.Opponent != "Delta" || week3.Margin != nil {
		t.Errorf("week 3 entry = %+v, want upcoming Delta with no margin", week3)
	}
}

func TestTeamSchedule_UnknownTeam(t *testing.T) {
	svc := newTestService(testFetcher())
	if _, err := svc.TeamSchedule(context.Background(), 2019, "Echo", 2, SourceMarginUnaware); err == nil {
		t.Error("a team with no games must be an explicit error")
	}
}
