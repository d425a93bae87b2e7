package savedlists

import "time"

// SaveListRequest represents the data needed to save the current names as a list
type SaveListRequest struct {
	Name  string   `json:"name" validate:"required"`
	Names []string `json:"names" validate:"required"`
}

// CreateListParams is what the repository stores for a new list
type CreateListParams struct {
	ID        string
	Name      string
	Names     []string
	CreatedAt time.Time
}
