package ranking

import (
	"fmt"
	"sort"
)

// RankByPower sorts team names by power, best first. Ties keep sorted-name
// order so the result is deterministic even when the solver's random
// initialization leaves two teams with identical power.
func RankByPower(power map[string]float64) []string {
	teams := make([]string, 0, len(power))
	for name := range power {
		teams = append(teams, name)
	}
	sort.Strings(teams)
	sort.SliceStable(teams, func(i, j int) bool {
		return power[teams[i]] > power[teams[j]]
	})
	return teams
}

// RankingSet holds named rankings indexed by week:
// source name -> week number -> ordered team names, best first.
type RankingSet map[string]map[int][]string

// Add stores a ranking for one source and week, replacing any previous entry
// for the same pair.
func (rs RankingSet) Add(source string, week int, teams []string) {
	if rs[source] == nil {
		rs[source] = make(map[int][]string)
	}
	rs[source][week] = teams
}

// Week returns the ranking stored for a source and week. The second return
// is false when that week was never ranked; this is normal for in-progress
// seasons, not an error.
func (rs RankingSet) Week(source string, week int) ([]string, bool) {
	weeks, ok := rs[source]
	if !ok {
		return nil, false
	}
	teams, ok := weeks[week]
	return teams, ok
}

// WeekSources returns every source's ranking for one week, keyed by source
// name. Sources with no entry for that week are omitted.
func (rs RankingSet) WeekSources(week int) map[string][]string {
	out := make(map[string][]string)
	for source, weeks := range rs {
		if teams, ok := weeks[week]; ok {
			out[source] = teams
		}
	}
	return out
}

// Sources returns the source names in sorted order.
func (rs RankingSet) Sources() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge folds other into rs. For an identical (source, week) pair the entry
// from other wins; everything else is a union.
func (rs RankingSet) Merge(other RankingSet) {
	for source, weeks := range other {
		if rs[source] == nil {
			rs[source] = make(map[int][]string, len(weeks))
		}
		for week, teams := range weeks {
			rs[source][week] = teams
		}
	}
}

// Position returns a team's 1-based position in a source's weekly ranking.
// The second return is false when the team or the week is unranked.
func (rs RankingSet) Position(source string, week int, team string) (int, bool) {
	teams, ok := rs.Week(source, week)
	if !ok {
		return 0, false
	}
	for i, name := range teams {
		if name == team {
			return i + 1, true
		}
	}
	return 0, false
}

// Record is a team's aggregate win/loss count. Ties count as neither.
type Record struct {
	Wins   int
	Losses int
}

// String formats the record the way rankings are conventionally annotated.
func (r Record) String() string { return fmt.Sprintf("%d-%d", r.Wins, r.Losses) }

// Records derives every team's aggregate record from the decided margins in
// its schedule. It always reflects the schedules as passed in; filtered
// schedules yield records as of the filter cutoff.
func Records(s Schedules) map[string]Record {
	records := make(map[string]Record, len(s))
	for team, sched := range s {
		var rec Record
		for _, game := range sched {
			if game.Margin == nil {
				continue
			}
			switch {
			case *game.Margin > 0:
				rec.Wins++
			case *game.Margin < 0:
				rec.Losses++
			}
		}
		records[team] = rec
	}
	return records
}
