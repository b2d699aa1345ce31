// Package models holds the persistent record types shared by repositories
// and services.
package models

import "time"

// Account is a registered farmer's credential and profile record. Accounts
// are never hard-deleted; deactivation clears Active instead.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	FarmName     string
	District     string
	Village      string
	Phone        string
	CropTypes    string
	FarmArea     float64
	RegisteredAt time.Time
	LastLoginAt  *time.Time
	Active       bool
}
