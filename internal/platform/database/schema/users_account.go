// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names every table and column CodeTrack stores.
//
// Stores build their SQL from these descriptors instead of repeating string
// literals, so a renamed column is a one-line change.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	SQLiteTable  string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsOAuth2User string
	IsActive     string
	LastLoginAt  string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	SQLiteTable:  "users_account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "passwordhash",
	IsOAuth2User: "isoauth2user",
	IsActive:     "isactive",
	LastLoginAt:  "lastloginat",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.IsOAuth2User,
		t.IsActive, t.LastLoginAt, t.CreatedAt, t.UpdatedAt,
	}
}
