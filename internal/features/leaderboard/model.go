package leaderboard

type Entry struct {
	Position     int64  `bson:"position" json:"position"`
	UserID       string `bson:"user_id" json:"user_id"`
	EmployeeID   string `bson:"employee_id" json:"employee_id"`
	Name         string `bson:"name" json:"name"`
	Department   string `bson:"department,omitempty" json:"department,omitempty"`
	Points       int    `bson:"points" json:"points"`
	RankName     string `bson:"rank_name,omitempty" json:"rank_name,omitempty"`
	RankInsignia string `bson:"rank_insignia,omitempty" json:"rank_insignia,omitempty"`
}

type Page struct {
	Entries    []Entry `json:"entries"`
	Total      int64   `json:"total"`
	Page       int64   `json:"page"`
	Limit      int64   `json:"limit"`
	Month      string  `json:"month,omitempty"`
	Department string  `json:"department,omitempty"`
}

type UserPosition struct {
	UserID       string  `json:"user_id"`
	Position     int64   `json:"position"`
	TotalUsers   int64   `json:"total_users"`
	Points       int     `json:"points"`
	RankName     string  `json:"rank_name,omitempty"`
	RankInsignia string  `json:"rank_insignia,omitempty"`
	Nearby       []Entry `json:"nearby"`
}

type Statistics struct {
	TotalUsers       int64            `json:"total_users"`
	ActiveUsers      int64            `json:"active_users"`
	AveragePoints    float64          `json:"average_points"`
	TopScorer        *Entry           `json:"top_scorer,omitempty"`
	RankDistribution map[string]int64 `json:"rank_distribution"`
}

const unrankedLabel = "Unranked"
