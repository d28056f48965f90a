package session

// Session is a stored session record. Provider is kept as a plain string so
// this package stays import-free; the engine's Provider type converts
// losslessly in both directions.
type Session struct {
	ID       string
	UserID   string
	Provider string

	CreatedAt int64 // unix seconds
	ExpiresAt int64 // unix seconds
}
