package ranking

// FilterUpTo erases the margin of every record whose week exceeds the cutoff,
// keeping the opponent so upcoming fixtures can still be displayed. It
// mutates the schedules in place and is idempotent for the same or a smaller
// cutoff. Erased margins are not recoverable; callers wanting a different
// cutoff must filter a fresh Clone of the unfiltered data.
func FilterUpTo(s Schedules, week int) {
	for _, sched := range s {
		for gameWeek, rec := range sched {
			if gameWeek <= week || rec.Margin == nil {
				continue
			}
			rec.Margin = nil
			rec.PostWinProb = nil
			sched[gameWeek] = rec
		}
	}
}

// ProjectFutureWeek synthesizes margins for undecided fixtures through
// targetWeek, using the relative standing of the two sides in a reference
// ranking: the higher-ranked side is assigned +magnitude, the other
// -magnitude. Teams absent from the ranking sort below every ranked team;
// when both sides are absent the fixture stays undecided. Decided margins
// are never altered.
func ProjectFutureWeek(s Schedules, ref []string, targetWeek, magnitude int) {
	positions := make(map[string]int, len(ref))
	for i, team := range ref {
		positions[team] = i + 1
	}
	unranked := len(ref) + 1

	for team, sched := range s {
		teamPos, teamRanked := positions[team]
		if !teamRanked {
			teamPos = unranked
		}
		for week, rec := range sched {
			if week > targetWeek || rec.Margin != nil || rec.Bye() {
				continue
			}
			oppPos, oppRanked := positions[rec.Opponent]
			if !oppRanked {
				oppPos = unranked
			}
			if !teamRanked && !oppRanked {
				continue
			}
			margin := magnitude
			if teamPos > oppPos {
				margin = -magnitude
			}
			rec.Margin = &margin
			sched[week] = rec
		}
	}
}
