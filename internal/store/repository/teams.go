package repository

import (
	"context"
	"fmt"

	"github.com/gridrank/gridrank/internal/store"
)

// TeamRepository handles team data access.
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListBySeason returns every team stored for a season, ordered by school.
func (r *TeamRepository) ListBySeason(ctx context.Context, season int) ([]*store.Team, error) {
	query := `
		SELECT team_id, season, school, mascot, conference, logo_url,
			created_at, updated_at
		FROM teams
		WHERE season = $1
		ORDER BY school
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		err := rows.Scan(
			&team.TeamID, &team.Season, &team.School, &team.Mascot,
			&team.Conference, &team.LogoURL, &team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// UpsertAll refreshes a season's team list in one transaction.
func (r *TeamRepository) UpsertAll(ctx context.Context, teams []*store.Team) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO teams (season, school, mascot, conference, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (season, school) DO UPDATE SET
			mascot = EXCLUDED.mascot,
			conference = EXCLUDED.conference,
			logo_url = EXCLUDED.logo_url,
			updated_at = NOW()
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, team := range teams {
		if _, err := stmt.ExecContext(ctx,
			team.Season, team.School, team.Mascot, team.Conference, team.LogoURL,
		); err != nil {
			return fmt.Errorf("upserting team %s: %w", team.School, err)
		}
	}

	return tx.Commit()
}
