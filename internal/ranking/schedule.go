package ranking

import (
	"fmt"
	"sort"
)

// Game is one raw fixture as delivered by the upstream data source.
// Points are nil until the game has been played (or when it was cancelled).
type Game struct {
	Season          int
	Week            int
	SeasonType      string
	HomeTeam        string
	AwayTeam        string
	HomePoints      *int
	AwayPoints      *int
	HomePostWinProb *float64
	AwayPostWinProb *float64
}

// MatchRecord is one team's view of one week's fixture.
// Opponent is empty on a bye week. Margin is own score minus opponent score,
// nil while the outcome is unknown (unplayed, cancelled, or filtered out).
type MatchRecord struct {
	Week        int
	Opponent    string
	Margin      *int
	PostWinProb *float64
}

// Played reports whether the record carries a decided outcome.
func (r MatchRecord) Played() bool { return r.Margin != nil }

// Bye reports whether the team had no opponent scheduled that week.
func (r MatchRecord) Bye() bool { return r.Opponent == "" }

// Schedule maps week number to a team's match record. The aggregator
// guarantees it is total over 1..lastWeek.
type Schedule map[int]MatchRecord

// Schedules maps team name to that team's schedule.
type Schedules map[string]Schedule

// recordsFromGame derives each side's view of a single game.
func recordsFromGame(g Game) (home, away MatchRecord) {
	home = MatchRecord{Week: g.Week, Opponent: g.AwayTeam, PostWinProb: g.HomePostWinProb}
	away = MatchRecord{Week: g.Week, Opponent: g.HomeTeam, PostWinProb: g.AwayPostWinProb}

	if g.HomePoints != nil && g.AwayPoints != nil {
		homeMargin := *g.HomePoints - *g.AwayPoints
		awayMargin := -homeMargin
		home.Margin = &homeMargin
		away.Margin = &awayMargin
	}
	return home, away
}

// BuildSchedules turns a flat, unordered list of games into one schedule per
// team. Weeks with no fixture are backfilled with bye records so every
// schedule covers 1..lastWeek. Teams that never appear in a game are absent
// from the result.
func BuildSchedules(games []Game) Schedules {
	schedules := make(Schedules)
	lastWeek := 0

	for _, g := range games {
		if g.Week < 1 {
			// A week outside 1..N breaks schedule totality; this is a
			// contract violation by the data source, not partial data.
			panic(fmt.Sprintf("ranking: game %s vs %s has invalid week %d", g.HomeTeam, g.AwayTeam, g.Week))
		}
		if g.Week > lastWeek {
			lastWeek = g.Week
		}

		home, away := recordsFromGame(g)
		if schedules[g.HomeTeam] == nil {
			schedules[g.HomeTeam] = make(Schedule)
		}
		if schedules[g.AwayTeam] == nil {
			schedules[g.AwayTeam] = make(Schedule)
		}
		schedules[g.HomeTeam][g.Week] = home
		schedules[g.AwayTeam][g.Week] = away
	}

	// Backfill byes so every schedule is iterable over the same week range.
	for _, sched := range schedules {
		for week := 1; week <= lastWeek; week++ {
			if _, ok := sched[week]; !ok {
				sched[week] = MatchRecord{Week: week}
			}
		}
	}

	return schedules
}

// Clone returns a deep copy. Every concurrent per-week solve must operate on
// its own copy because FilterUpTo mutates in place.
func (s Schedules) Clone() Schedules {
	out := make(Schedules, len(s))
	for team, sched := range s {
		copied := make(Schedule, len(sched))
		for week, rec := range sched {
			if rec.Margin != nil {
				m := *rec.Margin
				rec.Margin = &m
			}
			if rec.PostWinProb != nil {
				p := *rec.PostWinProb
				rec.PostWinProb = &p
			}
			copied[week] = rec
		}
		out[team] = copied
	}
	return out
}

// Teams returns the team names in sorted order.
func (s Schedules) Teams() []string {
	teams := make([]string, 0, len(s))
	for name := range s {
		teams = append(teams, name)
	}
	sort.Strings(teams)
	return teams
}

// LastWeek returns the highest week number present in any schedule.
func (s Schedules) LastWeek() int {
	last := 0
	for _, sched := range s {
		for week := range sched {
			if week > last {
				last = week
			}
		}
	}
	return last
}

// LastPlayedWeek returns the highest week number with at least one decided
// game, or 0 when nothing has been played.
func (s Schedules) LastPlayedWeek() int {
	last := 0
	for _, sched := range s {
		for week, rec := range sched {
			if rec.Played() && week > last {
				last = week
			}
		}
	}
	return last
}
