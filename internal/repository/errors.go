package repository

import "errors"

// Sentinel errors surfaced by the in-memory collections. Services translate
// them into API errors the same way a SQL-backed layer would translate
// sql.ErrNoRows.
var (
	ErrNoRecord     = errors.New("record not found")
	ErrLimitReached = errors.New("collection limit reached")
	ErrCounterRange = errors.New("enrollment counter out of range")
)
