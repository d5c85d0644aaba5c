// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. ProfileImageKey is the object-storage key of the
// profile picture, empty when none was uploaded.
type User struct {
	ID              string
	UserName        string
	CreatedAt       time.Time
	LastLogin       *time.Time
	ProfileImageKey string
}
