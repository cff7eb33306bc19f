package store

import (
	"database/sql"
	"time"
)

// Team is one FBS team row for a season.
type Team struct {
	TeamID     int            `json:"team_id" db:"team_id"`
	Season     int            `json:"season" db:"season"`
	School     string         `json:"school" db:"school"`
	Mascot     sql.NullString `json:"mascot,omitempty" db:"mascot"`
	Conference sql.NullString `json:"conference,omitempty" db:"conference"`
	LogoURL    sql.NullString `json:"logo_url,omitempty" db:"logo_url"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// Game is one fixture row. Points stay null until the game is decided.
type Game struct {
	GameID          int             `json:"game_id" db:"game_id"`
	ExternalID      int64           `json:"external_id" db:"external_id"`
	Season          int             `json:"season" db:"season"`
	Week            int             `json:"week" db:"week"`
	SeasonType      string          `json:"season_type" db:"season_type"`
	HomeTeam        string          `json:"home_team" db:"home_team"`
	AwayTeam        string          `json:"away_team" db:"away_team"`
	HomePoints      sql.NullInt32   `json:"home_points,omitempty" db:"home_points"`
	AwayPoints      sql.NullInt32   `json:"away_points,omitempty" db:"away_points"`
	HomePostWinProb sql.NullFloat64 `json:"home_post_win_prob,omitempty" db:"home_post_win_prob"`
	AwayPostWinProb sql.NullFloat64 `json:"away_post_win_prob,omitempty" db:"away_post_win_prob"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
