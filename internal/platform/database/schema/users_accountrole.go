// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountRoleTable represents the 'users.accountrole' join table
type UserAccountRoleTable struct {
	Table       string
	SQLiteTable string
	AccountID   string
	Role        string
}

// UserAccountRole is the schema definition for users.accountrole
var UserAccountRole = UserAccountRoleTable{
	Table:       "users.accountrole",
	SQLiteTable: "users_accountrole",
	AccountID:   "accountid",
	Role:        "role",
}

// Columns returns all standard column names
func (t UserAccountRoleTable) Columns() []string {
	return []string{t.AccountID, t.Role}
}
