package model

import "time"

// Story is the top-level unit of writing a user owns. The synopsis and style
// directives seed draft generation; chapters hold the actual text.
type Story struct {
	ID              int64
	OwnerID         string
	Title           string
	Slug            string
	Synopsis        string
	StyleDirectives string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
