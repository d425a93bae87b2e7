package models

import (
	"time"
)

// NameList is a saved, named collection of candidate names.
type NameList struct {
	ID        string    `json:"id"` // creation instant in Unix milliseconds
	Name      string    `json:"name"`
	Names     []string  `json:"names"`
	CreatedAt time.Time `json:"created_at"`
}
