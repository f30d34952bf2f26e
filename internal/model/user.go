// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. It doubles as the credential record:
// the email is unique as stored and PasswordHash is an encoded one-way hash.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"date"`
}

// UserSummary is the subset of a user embedded in profiles.
type UserSummary struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
