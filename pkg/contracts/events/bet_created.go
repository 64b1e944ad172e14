package events

type BetCreated struct {
	BetID    string `json:"bet_id"`
	UserID   string `json:"user_id"`
	Quarter  string `json:"quarter"`
	Deadline int64  `json:"deadline_unix_ms"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}
