// Package iterative estimates team power by repeated relaxation over each
// team's game outcomes until the power map reaches a fixed point.
package iterative

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/gridrank/gridrank/internal/ranking"
)

const (
	// DefaultMaxRounds is the relaxation budget for a single attempt.
	DefaultMaxRounds = 100
	// DefaultAttempts is the number of independent re-initializations
	// tried before giving up.
	DefaultAttempts = 3

	// convergenceThreshold is the max per-team delta between successive
	// iterations below which the solve is considered converged.
	convergenceThreshold = 1e-6
)

// ErrNoEquilibrium is reported when the solver exhausts its budget without
// converging. Early-season data with too few played games is the usual
// cause; callers should skip the ranking for that week rather than fail.
var ErrNoEquilibrium = errors.New("iterative: no equilibrium found")

// EquilibriumError carries the exhausted budget. It unwraps to
// ErrNoEquilibrium so callers can match with errors.Is.
type EquilibriumError struct {
	Attempts int
	Rounds   int
}

func (e *EquilibriumError) Error() string {
	return fmt.Sprintf("iterative: no equilibrium found after %d attempts of %d rounds (not enough games played)", e.Attempts, e.Rounds)
}

func (e *EquilibriumError) Unwrap() error { return ErrNoEquilibrium }

// PowerMap maps team name to its power estimate. After a successful solve
// the values are normalized: max is 1, min is 0, unless every team is tied,
// in which case all values are exactly 0.5.
type PowerMap map[string]float64

// Options control a single Power invocation.
type Options struct {
	// ConsiderMargin feeds the raw signed point margin into the
	// relaxation step. When false only the sign (clipped to -1, 0, +1)
	// is used.
	ConsiderMargin bool

	// ConsiderPostWinProb scales each game's margin by the team's
	// post-game win probability when the data source provides one.
	ConsiderPostWinProb bool

	// Seed fixes the pseudo-random initialization. The same seed and the
	// same schedules always produce a bit-for-bit identical PowerMap.
	Seed int64

	// MaxRounds caps relaxation rounds per attempt. Defaults to
	// DefaultMaxRounds.
	MaxRounds int

	// Attempts is the number of fresh random initializations tried
	// before declaring ErrNoEquilibrium. Defaults to DefaultAttempts.
	Attempts int
}

// fixture is one decided game, with the margin already reduced to its
// effective value for the selected mode.
type fixture struct {
	opponent string
	margin   float64
}

// Power runs the iterative solver over the given schedules and returns the
// converged power map.
//
// Each round recomputes every team's raw power from its decided games: a win
// earns opponentPower*margin, a loss costs (1-opponentPower)*margin. The raw
// map is normalized to [0,1], averaged with the previous iterate, and
// renormalized. The averaging step removes the period-two oscillation that
// plain synchronous relaxation exhibits on sparse graphs without moving any
// fixed point.
//
// A schedule set with zero decided games fails immediately with
// ErrNoEquilibrium instead of returning the degenerate all-tied map.
func Power(s ranking.Schedules, opts Options) (PowerMap, error) {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}

	teams := make([]string, 0, len(s))
	for name := range s {
		teams = append(teams, name)
	}
	sort.Strings(teams)

	if len(teams) == 0 {
		return nil, errors.New("iterative: no teams to rank")
	}

	fixtures, decided := decidedFixtures(s, teams, opts)
	if decided == 0 {
		return nil, &EquilibriumError{Attempts: 0, Rounds: 0}
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	for attempt := 0; attempt < opts.Attempts; attempt++ {
		power := make(PowerMap, len(teams))
		for _, name := range teams {
			// Random values from 0.4 to 0.6.
			power[name] = 0.4 + rng.Float64()/5
		}

		for round := 0; round < opts.MaxRounds; round++ {
			next := relax(teams, fixtures, power)
			normalize(next, teams)
			for _, name := range teams {
				next[name] = (power[name] + next[name]) / 2
			}
			normalize(next, teams)

			if maxDelta(power, next, teams) < convergenceThreshold {
				return next, nil
			}
			power = next
		}
	}

	return nil, &EquilibriumError{Attempts: opts.Attempts, Rounds: opts.MaxRounds}
}

// Evaluate solves for the power map and returns the ordered ranking in one
// step, for callers that never need the raw powers.
func Evaluate(s ranking.Schedules, opts Options) ([]string, error) {
	pm, err := Power(s, opts)
	if err != nil {
		return nil, err
	}
	return ranking.RankByPower(pm), nil
}

// decidedFixtures flattens the schedules into per-team decided games with
// effective margins, visiting weeks in ascending order so summation order is
// reproducible. Byes and undecided games are dropped here; games against
// opponents outside the team set are kept and skipped during relaxation.
func decidedFixtures(s ranking.Schedules, teams []string, opts Options) (map[string][]fixture, int) {
	fixtures := make(map[string][]fixture, len(teams))
	total := 0

	for _, name := range teams {
		sched := s[name]
		weeks := make([]int, 0, len(sched))
		for week := range sched {
			weeks = append(weeks, week)
		}
		sort.Ints(weeks)

		var games []fixture
		for _, week := range weeks {
			rec := sched[week]
			if rec.Margin == nil || rec.Bye() {
				continue
			}
			margin := float64(*rec.Margin)
			if !opts.ConsiderMargin {
				margin = clip(margin, -1, 1)
			}
			if opts.ConsiderPostWinProb && rec.PostWinProb != nil {
				margin *= *rec.PostWinProb
			}
			games = append(games, fixture{opponent: rec.Opponent, margin: margin})
			total++
		}
		fixtures[name] = games
	}

	return fixtures, total
}

// relax computes one unnormalized relaxation step.
func relax(teams []string, fixtures map[string][]fixture, power PowerMap) PowerMap {
	next := make(PowerMap, len(teams))
	for _, name := range teams {
		sum := 0.0
		for _, game := range fixtures[name] {
			opponentPower, ok := power[game.opponent]
			if !ok {
				// Opponent outside the ranked team set carries no
				// information.
				continue
			}
			if game.margin > 0 {
				// Beating a strong opponent earns more.
				sum += opponentPower * game.margin
			} else {
				// Losing to a weak opponent costs more.
				sum += (1 - opponentPower) * game.margin
			}
		}
		next[name] = sum
	}
	return next
}

// normalize rescales the map so max becomes 1 and min becomes 0. A complete
// tie maps every team to exactly 0.5.
func normalize(power PowerMap, teams []string) {
	minVal, maxVal := power[teams[0]], power[teams[0]]
	for _, name := range teams {
		v := power[name]
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	diff := maxVal - minVal
	if diff == 0 {
		for _, name := range teams {
			power[name] = 0.5
		}
		return
	}
	for _, name := range teams {
		power[name] = (power[name] - minVal) / diff
	}
}

// maxDelta returns the largest absolute per-team difference between two maps.
func maxDelta(a, b PowerMap, teams []string) float64 {
	max := 0.0
	for _, name := range teams {
		d := a[name] - b[name]
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func clip(v, minVal, maxVal float64) float64 {
	if v > maxVal {
		return maxVal
	}
	if v < minVal {
		return minVal
	}
	return v
}
