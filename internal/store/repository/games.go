package repository

import (
	"context"
	"fmt"

	"github.com/gridrank/gridrank/internal/store"
)

// GameRepository handles game data access.
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository.
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// ListBySeason returns every stored game for a season, ordered by week so
// downstream consumers see a date-ordered sequence.
func (r *GameRepository) ListBySeason(ctx context.Context, season int) ([]*store.Game, error) {
	query := `
		SELECT game_id, external_id, season, week, season_type,
			home_team, away_team, home_points, away_points,
			home_post_win_prob, away_post_win_prob, created_at, updated_at
		FROM games
		WHERE season = $1
		ORDER BY week, external_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var games []*store.Game
	for rows.Next() {
		game := &store.Game{}
		err := rows.Scan(
			&game.GameID, &game.ExternalID, &game.Season, &game.Week, &game.SeasonType,
			&game.HomeTeam, &game.AwayTeam, &game.HomePoints, &game.AwayPoints,
			&game.HomePostWinProb, &game.AwayPostWinProb, &game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// Upsert inserts or refreshes one game keyed by its external ID. Scores are
// overwritten so a refresh picks up newly decided games.
func (r *GameRepository) Upsert(ctx context.Context, game *store.Game) error {
	query := `
		INSERT INTO games (external_id, season, week, season_type,
			home_team, away_team, home_points, away_points,
			home_post_win_prob, away_post_win_prob)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_id) DO UPDATE SET
			home_points = EXCLUDED.home_points,
			away_points = EXCLUDED.away_points,
			home_post_win_prob = EXCLUDED.home_post_win_prob,
			away_post_win_prob = EXCLUDED.away_post_win_prob,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		game.ExternalID, game.Season, game.Week, game.SeasonType,
		game.HomeTeam, game.AwayTeam, game.HomePoints, game.AwayPoints,
		game.HomePostWinProb, game.AwayPostWinProb,
	)
	if err != nil {
		return fmt.Errorf("upserting game %d: %w", game.ExternalID, err)
	}
	return nil
}

// UpsertAll refreshes a whole season's games in one transaction.
func (r *GameRepository) UpsertAll(ctx context.Context, games []*store.Game) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO games (external_id, season, week, season_type,
			home_team, away_team, home_points, away_points,
			home_post_win_prob, away_post_win_prob)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_id) DO UPDATE SET
			home_points = EXCLUDED.home_points,
			away_points = EXCLUDED.away_points,
			home_post_win_prob = EXCLUDED.home_post_win_prob,
			away_post_win_prob = EXCLUDED.away_post_win_prob,
			updated_at = NOW()
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, game := range games {
		if _, err := stmt.ExecContext(ctx,
			game.ExternalID, game.Season, game.Week, game.SeasonType,
			game.HomeTeam, game.AwayTeam, game.HomePoints, game.AwayPoints,
			game.HomePostWinProb, game.AwayPostWinProb,
		); err != nil {
			return fmt.Errorf("upserting game %d: %w", game.ExternalID, err)
		}
	}

	return tx.Commit()
}
