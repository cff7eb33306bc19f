package cfbd

// Game is one fixture as returned by the /games endpoint. Points are null
// until the game has been played.
type Game struct {
	ID              int64    `json:"id"`
	Season          int      `json:"season"`
	Week            int      `json:"week"`
	SeasonType      string   `json:"season_type"`
	HomeTeam        string   `json:"home_team"`
	HomePoints      *int     `json:"home_points"`
	HomePostWinProb *float64 `json:"home_post_win_prob"`
	AwayTeam        string   `json:"away_team"`
	AwayPoints      *int     `json:"away_points"`
	AwayPostWinProb *float64 `json:"away_post_win_prob"`
}

// Team is one FBS team as returned by the /teams/fbs endpoint. Logos are
// pass-through decoration for presentation; the solver never reads them.
type Team struct {
	School     string   `json:"school"`
	Mascot     string   `json:"mascot"`
	Conference string   `json:"conference"`
	Logos      []string `json:"logos"`
}

// PollWeek is one week's worth of published polls from /rankings.
type PollWeek struct {
	Season     int    `json:"season"`
	SeasonType string `json:"seasonType"`
	Week       int    `json:"week"`
	Polls      []Poll `json:"polls"`
}

// Poll is a single named poll within a week.
type Poll struct {
	Poll  string     `json:"poll"`
	Ranks []PollRank `json:"ranks"`
}

// PollRank is one team's position in a poll.
type PollRank struct {
	Rank   int    `json:"rank"`
	School string `json:"school"`
}
