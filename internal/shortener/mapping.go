package shortener

import "time"

// ID identifies a stored mapping. It is assigned by the store.
type ID int64

// Mapping associates a full URL with its short alias.
type Mapping struct {
	ID        ID
	FullURL   string
	ShortURL  string
	Shortened bool // ShortURL carries a token and must not be re-derived
	CreatedAt time.Time
	UpdatedAt time.Time
}
