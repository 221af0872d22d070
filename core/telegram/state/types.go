package state

// Session is the per-user conversational record.
type Session struct {
	// LastCity is the most recent city the user typed as free text; nil until then.
	LastCity *string
}

// Store holds sessions keyed by Telegram user id.
type Store interface {
	LastCity(userID int64) (string, bool)
	SetLastCity(userID int64, city string)
}
