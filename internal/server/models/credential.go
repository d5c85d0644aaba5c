package models

import "time"

// Credential is the stored visual password of a user, sealed at rest.
// Points is the pattern length, kept in clear for diagnostics only.
type Credential struct {
	UserID    string
	Sealed    []byte
	Points    int
	UpdatedAt time.Time
}
