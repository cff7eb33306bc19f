package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gridrank/gridrank/internal/cache"
	"github.com/gridrank/gridrank/internal/ingest/cfbd"
	"github.com/gridrank/gridrank/internal/ranking"
	"github.com/gridrank/gridrank/internal/ranking/iterative"
	"github.com/gridrank/gridrank/internal/store"
	"github.com/gridrank/gridrank/internal/store/repository"
)

// Ranking source names. The two iterative sources are computed here; the
// poll sources pass through from the upstream data service.
const (
	SourceMarginUnaware = "Margin Unaware Algorithm"
	SourceMarginAware   = "Margin Aware Algorithm"
)

// keptPolls are the external polls merged next to the iterative rankings.
var keptPolls = map[string]bool{
	"AP Top 25":                  true,
	"Coaches Poll":               true,
	"Playoff Committee Rankings": true,
}

// Fetcher is the slice of the upstream data client the service depends on.
type Fetcher interface {
	Games(ctx context.Context, year int, seasonType string) ([]cfbd.Game, error)
	Teams(ctx context.Context, year int) ([]cfbd.Team, error)
	Rankings(ctx context.Context, year int) ([]cfbd.PollWeek, error)
}

// Config tunes a RankingService.
type Config struct {
	// Seed fixes the solver's random initialization so repeated
	// evaluations of the same season agree.
	Seed int64
	// Workers bounds the number of concurrent per-week solves.
	Workers int
	// CacheTTL bounds how long season data and computed rankings are
	// memoized.
	CacheTTL time.Duration
	// ProjectionMargin is the synthetic margin assigned to the
	// higher-ranked side of a projected fixture.
	ProjectionMargin int
}

// RankingService computes and serves per-week power rankings for a season.
// The store and cache are optional; when absent every call goes straight to
// the upstream API.
type RankingService struct {
	fetcher Fetcher
	games   *repository.GameRepository
	teams   *repository.TeamRepository
	cache   *cache.RedisCache
	cfg     Config
}

// NewRankingService creates a ranking service. db and redisCache may be nil.
func NewRankingService(fetcher Fetcher, db *store.Database, redisCache *cache.RedisCache, cfg Config) *RankingService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.ProjectionMargin <= 0 {
		cfg.ProjectionMargin = 1
	}

	s := &RankingService{fetcher: fetcher, cache: redisCache, cfg: cfg}
	if db != nil {
		s.games = repository.NewGameRepository(db)
		s.teams = repository.NewTeamRepository(db)
	}
	return s
}

// SeasonRankings is one season's fully evaluated output: every source's
// ranking for every week it converged, plus per-team aggregate records.
type SeasonRankings struct {
	Year           int                `json:"year"`
	LastWeek       int                `json:"last_week"`
	LastPlayedWeek int                `json:"last_played_week"`
	Rankings       ranking.RankingSet `json:"rankings"`
	Records        map[string]string  `json:"records"`
}

// SeasonRankings evaluates a season week by week. Weeks where the solver
// finds no equilibrium (early season, too few games) are skipped rather than
// failing the whole evaluation.
func (s *RankingService) SeasonRankings(ctx context.Context, year int) (*SeasonRankings, error) {
	cacheKey := fmt.Sprintf("gridrank:%d:rankings", year)
	if s.cache != nil {
		var cached SeasonRankings
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	games, err := s.loadGames(ctx, year)
	if err != nil {
		return nil, err
	}

	schedules := ranking.BuildSchedules(games)
	lastPlayed := schedules.LastPlayedWeek()

	rankings := s.solveWeeks(ctx, schedules, lastPlayed)

	polls, err := s.pollRankings(ctx, year)
	if err != nil {
		// Polls are decoration next to the iterative sources; compute
		// without them rather than failing the season.
		log.Printf("[ranking-service] polls unavailable for %d: %v", year, err)
	} else {
		rankings.Merge(polls)
	}

	result := &SeasonRankings{
		Year:           year,
		LastWeek:       schedules.LastWeek(),
		LastPlayedWeek: lastPlayed,
		Rankings:       rankings,
		Records:        recordStrings(schedules),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, result, s.cfg.CacheTTL); err != nil {
			log.Printf("[ranking-service] caching rankings for %d: %v", year, err)
		}
	}
	return result, nil
}

// solveWeeks runs the iterative solver for every week and both margin modes.
// Each solve operates on its own deep copy of the schedules, so they are
// safe to run concurrently.
func (s *RankingService) solveWeeks(ctx context.Context, schedules ranking.Schedules, lastPlayed int) ranking.RankingSet {
	rankings := make(ranking.RankingSet)

	modes := []struct {
		source string
		margin bool
	}{
		{SourceMarginUnaware, false},
		{SourceMarginAware, true},
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.Workers)
	)

	for week := 1; week <= lastPlayed; week++ {
		for _, mode := range modes {
			wg.Add(1)
			go func(week int, source string, margin bool) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				if ctx.Err() != nil {
					return
				}

				copied := schedules.Clone()
				ranking.FilterUpTo(copied, week)

				ranked, err := iterative.Evaluate(copied, iterative.Options{
					ConsiderMargin: margin,
					Seed:           s.cfg.Seed,
				})
				if err != nil {
					if errors.Is(err, iterative.ErrNoEquilibrium) {
						log.Printf("[ranking-service] %s week %d: %v (skipping)", source, week, err)
						return
					}
					log.Printf("[ranking-service] %s week %d failed: %v", source, week, err)
					return
				}

				mu.Lock()
				rankings.Add(source, week, ranked)
				mu.Unlock()
			}(week, mode.source, mode.margin)
		}
	}
	wg.Wait()

	return rankings
}

// ProjectedRankings is a what-if ranking: results known as of AsOfWeek,
// future fixtures through Week decided synthetically.
type ProjectedRankings struct {
	Year     int                `json:"year"`
	AsOfWeek int                `json:"as_of_week"`
	Week     int                `json:"week"`
	Rankings ranking.RankingSet `json:"rankings"`
}

// ProjectedRankings synthesizes future results against the margin-unaware
// ranking as of asOfWeek and re-solves at throughWeek.
func (s *RankingService) ProjectedRankings(ctx context.Context, year, asOfWeek, throughWeek int) (*ProjectedRankings, error) {
	if throughWeek < asOfWeek {
		return nil, fmt.Errorf("projection target week %d precedes as-of week %d", throughWeek, asOfWeek)
	}

	games, err := s.loadGames(ctx, year)
	if err != nil {
		return nil, err
	}
	schedules := ranking.BuildSchedules(games)

	// Reference ranking from real results only.
	base := schedules.Clone()
	ranking.FilterUpTo(base, asOfWeek)
	ref, err := iterative.Evaluate(base, iterative.Options{Seed: s.cfg.Seed})
	if err != nil {
		return nil, fmt.Errorf("no reference ranking as of week %d: %w", asOfWeek, err)
	}

	ranking.ProjectFutureWeek(base, ref, throughWeek, s.cfg.ProjectionMargin)

	rankings := make(ranking.RankingSet)
	for _, mode := range []struct {
		source string
		margin bool
	}{
		{SourceMarginUnaware, false},
		{SourceMarginAware, true},
	} {
		ranked, err := iterative.Evaluate(base, iterative.Options{ConsiderMargin: mode.margin, Seed: s.cfg.Seed})
		if err != nil {
			if errors.Is(err, iterative.ErrNoEquilibrium) {
				log.Printf("[ranking-service] projected %s: %v (skipping)", mode.source, err)
				continue
			}
			return nil, err
		}
		rankings.Add(mode.source, throughWeek, ranked)
	}

	return &ProjectedRankings{
		Year:     year,
		AsOfWeek: asOfWeek,
		Week:     throughWeek,
		Rankings: rankings,
	}, nil
}

// ScheduleEntry is one week of a team's schedule, decorated for display.
type ScheduleEntry struct {
	Week         int    `json:"week"`
	Opponent     string `json:"opponent,omitempty"`
	Margin       *int   `json:"margin,omitempty"`
	OpponentRank *int   `json:"opponent_rank,omitempty"`
}

// TeamSchedule returns one team's schedule as of a week, with each
// opponent's position in the given ranking source. Opponents missing from
// the ranking simply carry no rank.
func (s *RankingService) TeamSchedule(ctx context.Context, year int, team string, week int, source string) ([]ScheduleEntry, error) {
	games, err := s.loadGames(ctx, year)
	if err != nil {
		return nil, err
	}
	schedules := ranking.BuildSchedules(games)
	sched, ok := schedules[team]
	if !ok {
		return nil, fmt.Errorf("team %q has no games in %d", team, year)
	}
	ranking.FilterUpTo(schedules, week)

	season, err := s.SeasonRankings(ctx, year)
	if err != nil {
		return nil, err
	}

	entries := make([]ScheduleEntry, 0, len(sched))
	for w := 1; w <= schedules.LastWeek(); w++ {
		rec := sched[w]
		entry := ScheduleEntry{Week: w, Opponent: rec.Opponent, Margin: rec.Margin}
		if rec.Opponent != "" {
			if pos, ok := season.Rankings.Position(source, week, rec.Opponent); ok {
				entry.OpponentRank = &pos
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// TeamInfo is pass-through team decoration for presentation.
type TeamInfo struct {
	School     string `json:"school"`
	Mascot     string `json:"mascot,omitempty"`
	Conference string `json:"conference,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
}

// Teams returns the season's team list, preferring the store over the API.
func (s *RankingService) Teams(ctx context.Context, year int) ([]TeamInfo, error) {
	if s.teams != nil {
		stored, err := s.teams.ListBySeason(ctx, year)
		if err == nil && len(stored) > 0 {
			infos := make([]TeamInfo, 0, len(stored))
			for _, t := range stored {
				infos = append(infos, TeamInfo{
					School:     t.School,
					Mascot:     t.Mascot.String,
					Conference: t.Conference.String,
					LogoURL:    t.LogoURL.String,
				})
			}
			return infos, nil
		}
	}

	fetched, err := s.fetcher.Teams(ctx, year)
	if err != nil {
		return nil, err
	}
	infos := make([]TeamInfo, 0, len(fetched))
	for _, t := range fetched {
		info := TeamInfo{School: t.School, Mascot: t.Mascot, Conference: t.Conference}
		if len(t.Logos) > 0 {
			info.LogoURL = t.Logos[0]
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// RefreshSeason refetches a season from the upstream API, persists it, and
// invalidates anything cached for that season.
func (s *RankingService) RefreshSeason(ctx context.Context, year int) error {
	games, err := s.fetcher.Games(ctx, year, "regular")
	if err != nil {
		return fmt.Errorf("refreshing games: %w", err)
	}

	if s.games != nil {
		rows := make([]*store.Game, 0, len(games))
		for _, g := range games {
			rows = append(rows, toStoreGame(g))
		}
		if err := s.games.UpsertAll(ctx, rows); err != nil {
			return fmt.Errorf("persisting games: %w", err)
		}
	}

	if s.teams != nil {
		teams, err := s.fetcher.Teams(ctx, year)
		if err != nil {
			return fmt.Errorf("refreshing teams: %w", err)
		}
		rows := make([]*store.Team, 0, len(teams))
		for _, t := range teams {
			rows = append(rows, toStoreTeam(year, t))
		}
		if err := s.teams.UpsertAll(ctx, rows); err != nil {
			return fmt.Errorf("persisting teams: %w", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, fmt.Sprintf("gridrank:%d:", year)); err != nil {
			log.Printf("[ranking-service] invalidating cache for %d: %v", year, err)
		}
	}

	log.Printf("[ranking-service] season %d refreshed (%d games)", year, len(games))
	return nil
}

// loadGames resolves a season's games: cache, then store, then upstream API
// (writing through to the store when one is configured).
func (s *RankingService) loadGames(ctx context.Context, year int) ([]ranking.Game, error) {
	cacheKey := fmt.Sprintf("gridrank:%d:games", year)
	if s.cache != nil {
		var cached []ranking.Game
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	var games []ranking.Game

	if s.games != nil {
		stored, err := s.games.ListBySeason(ctx, year)
		if err != nil {
			return nil, err
		}
		for _, row := range stored {
			games = append(games, fromStoreGame(row))
		}
	}

	if len(games) == 0 {
		fetched, err := s.fetcher.Games(ctx, year, "regular")
		if err != nil {
			return nil, fmt.Errorf("loading games for %d: %w", year, err)
		}
		if s.games != nil {
			rows := make([]*store.Game, 0, len(fetched))
			for _, g := range fetched {
				rows = append(rows, toStoreGame(g))
			}
			if err := s.games.UpsertAll(ctx, rows); err != nil {
				log.Printf("[ranking-service] persisting games for %d: %v", year, err)
			}
		}
		for _, g := range fetched {
			games = append(games, fromAPIGame(g))
		}
	}

	if s.cache != nil && len(games) > 0 {
		if err := s.cache.SetJSON(ctx, cacheKey, games, s.cfg.CacheTTL); err != nil {
			log.Printf("[ranking-service] caching games for %d: %v", year, err)
		}
	}
	return games, nil
}

// pollRankings fetches the season's external polls and aligns them to the
// week of the games they reflect (a poll published ahead of week N ranks
// results through week N-1).
func (s *RankingService) pollRankings(ctx context.Context, year int) (ranking.RankingSet, error) {
	weeks, err := s.fetcher.Rankings(ctx, year)
	if err != nil {
		return nil, err
	}

	polls := make(ranking.RankingSet)
	for _, pollWeek := range weeks {
		resultsWeek := pollWeek.Week - 1
		if resultsWeek < 1 {
			continue
		}
		for _, poll := range pollWeek.Polls {
			if !keptPolls[poll.Poll] {
				continue
			}
			teams := make([]string, 0, len(poll.Ranks))
			for _, pos := range poll.Ranks {
				teams = append(teams, pos.School)
			}
			polls.Add(poll.Poll, resultsWeek, teams)
		}
	}
	return polls, nil
}

func recordStrings(schedules ranking.Schedules) map[string]string {
	records := ranking.Records(schedules)
	out := make(map[string]string, len(records))
	for team, rec := range records {
		out[team] = rec.String()
	}
	return out
}

func fromAPIGame(g cfbd.Game) ranking.Game {
	return ranking.Game{
		Season:          g.Season,
		Week:            g.Week,
		SeasonType:      g.SeasonType,
		HomeTeam:        g.HomeTeam,
		AwayTeam:        g.AwayTeam,
		HomePoints:      g.HomePoints,
		AwayPoints:      g.AwayPoints,
		HomePostWinProb: g.HomePostWinProb,
		AwayPostWinProb: g.AwayPostWinProb,
	}
}

func fromStoreGame(row *store.Game) ranking.Game {
	g := ranking.Game{
		Season:     row.Season,
		Week:       row.Week,
		SeasonType: row.SeasonType,
		HomeTeam:   row.HomeTeam,
		AwayTeam:   row.AwayTeam,
	}
	if row.HomePoints.Valid && row.AwayPoints.Valid {
		home := int(row.HomePoints.Int32)
		away := int(row.AwayPoints.Int32)
		g.HomePoints = &home
		g.AwayPoints = &away
	}
	if row.HomePostWinProb.Valid {
		v := row.HomePostWinProb.Float64
		g.HomePostWinProb = &v
	}
	if row.AwayPostWinProb.Valid {
		v := row.AwayPostWinProb.Float64
		g.AwayPostWinProb = &v
	}
	return g
}

func toStoreGame(g cfbd.Game) *store.Game {
	row := &store.Game{
		ExternalID: g.ID,
		Season:     g.Season,
		Week:       g.Week,
		SeasonType: g.SeasonType,
		HomeTeam:   g.HomeTeam,
		AwayTeam:   g.AwayTeam,
	}
	if g.HomePoints != nil {
		row.HomePoints = sql.NullInt32{Int32: int32(*g.HomePoints), Valid: true}
	}
	if g.AwayPoints != nil {
		row.AwayPoints = sql.NullInt32{Int32: int32(*g.AwayPoints), Valid: true}
	}
	if g.HomePostWinProb != nil {
		row.HomePostWinProb = sql.NullFloat64{Float64: *g.HomePostWinProb, Valid: true}
	}
	if g.AwayPostWinProb != nil {
		row.AwayPostWinProb = sql.NullFloat64{Float64: *g.AwayPostWinProb, Valid: true}
	}
	return row
}

func toStoreTeam(year int, t cfbd.Team) *store.Team {
	row := &store.Team{Season: year, School: t.School}
	if t.Mascot != "" {
		row.Mascot = sql.NullString{String: t.Mascot, Valid: true}
	}
	if t.Conference != "" {
		row.Conference = sql.NullString{String: t.Conference, Valid: true}
	}
	if len(t.Logos) > 0 {
		row.LogoURL = sql.NullString{String: t.Logos[0], Valid: true}
	}
	return row
}
