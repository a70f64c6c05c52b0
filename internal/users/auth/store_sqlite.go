// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/pkg/pagination"
	"github.com/taibuivan/codetrack/pkg/pointer"
)

// # SQLite Models

type accountRecord struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Username     string     `gorm:"column:username;not null;size:50"`
	Email        string     `gorm:"column:email;not null;size:255"`
	PasswordHash *string    `gorm:"column:passwordhash"`
	IsOAuth2User bool       `gorm:"column:isoauth2user;not null"`
	IsActive     bool       `gorm:"column:isactive;not null"`
	LastLoginAt  *time.Time `gorm:"column:lastloginat"`
	CreatedAt    time.Time  `gorm:"column:createdat"`
	UpdatedAt    time.Time  `gorm:"column:updatedat"`

	Roles []accountRoleRecord `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:CASCADE"`
}

func (accountRecord) TableName() string { return ua.SQLiteTable }

type accountRoleRecord struct {
	AccountID string `gorm:"column:accountid;primaryKey"`
	Role      string `gorm:"column:role;primaryKey;size:20"`
}

func (accountRoleRecord) TableName() string { return ur.SQLiteTable }

func newAccountRecord(user *User) *accountRecord {
	record := &accountRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: pointer.NonEmpty(user.PasswordHash),
		IsOAuth2User: user.IsOAuth2User,
		IsActive:     user.IsActive,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	for _, role := range user.RoleNames() {
		record.Roles = append(record.Roles, accountRoleRecord{AccountID: user.ID, Role: role})
	}
	return record
}

func (record *accountRecord) toDomain() *User {
	user := &User{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: pointer.Val(record.PasswordHash),
		IsOAuth2User: record.IsOAuth2User,
		IsActive:     record.IsActive,
		LastLoginAt:  record.LastLoginAt,
		CreatedAt:    record.CreatedAt.UTC(),
		UpdatedAt:    record.UpdatedAt.UTC(),
		Roles:        make([]sec.UserRole, 0, len(record.Roles)),
	}
	for _, held := range record.Roles {
		if role, ok := sec.ParseRole(held.Role); ok {
			user.Roles = append(user.Roles, role)
		}
	}
	return user
}

// # User Repository

// SQLiteUserRepository implements [UserRepository] with gorm.
type SQLiteUserRepository struct {
	db *gorm.DB
}

// NewSQLiteUserRepository creates a new SQLite implementation of [UserRepository].
func NewSQLiteUserRepository(db *gorm.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Migrate creates the account and role tables with case-insensitive unique
// indexes on username and email.
func (repository *SQLiteUserRepository) Migrate(context context.Context) error {
	db := repository.db.WithContext(context)

	if err := db.AutoMigrate(&accountRecord{}, &accountRoleRecord{}); err != nil {
		return fmt.Errorf("sqlite_user_migrate_failed: %w", err)
	}

	indexes := []string{
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS account_username_key ON %s (LOWER(%s))`, ua.SQLiteTable, ua.Username),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS account_email_key ON %s (LOWER(%s))`, ua.SQLiteTable, ua.Email),
	}
	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("sqlite_user_migrate_failed: %w", err)
		}
	}
	return nil
}

func (repository *SQLiteUserRepository) findOne(context context.Context, action, where string, arg any) (*User, error) {
	var record accountRecord
	err := repository.db.WithContext(context).
		Preload("Roles").
		Where(where, arg).
		First(&record).Error
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return record.toDomain(), nil
}

// FindByID returns the account with the given ID.
func (repository *SQLiteUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, "find_user_by_id", ua.ID+" = ?", id)
}

// FindByUsername matches the username case-insensitively.
func (repository *SQLiteUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, "find_user_by_username", "LOWER("+ua.Username+") = LOWER(?)", username)
}

// FindByEmail matches the email case-insensitively.
func (repository *SQLiteUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, "find_user_by_email", "LOWER("+ua.Email+") = LOWER(?)", email)
}

func (repository *SQLiteUserRepository) exists(context context.Context, column, value string) (bool, error) {
	var count int64
	err := repository.db.WithContext(context).
		Model(&accountRecord{}).
		Where("LOWER("+column+") = LOWER(?)", value).
		Count(&count).Error
	if err != nil {
		return false, dberr.Wrap(err, "user_exists")
	}
	return count > 0, nil
}

// ExistsByUsername reports whether the username is taken.
func (repository *SQLiteUserRepository) ExistsByUsername(context context.Context, username string) (bool, error) {
	return repository.exists(context, ua.Username, username)
}

// ExistsByEmail reports whether the email is registered.
func (repository *SQLiteUserRepository) ExistsByEmail(context context.Context, email string) (bool, error) {
	return repository.exists(context, ua.Email, email)
}

// Create inserts the account and its roles in one transaction.
func (repository *SQLiteUserRepository) Create(context context.Context, user *User) error {
	user.touch(time.Now().UTC())
	if err := user.Validate(); err != nil {
		return err
	}

	err := repository.db.WithContext(context).Create(newAccountRecord(user)).Error
	return dberr.Wrap(err, "create_user")
}

// Update saves the mutable fields and replaces the role set.
func (repository *SQLiteUserRepository) Update(context context.Context, user *User) error {
	user.touch(time.Now().UTC())
	if err := user.Validate(); err != nil {
		return err
	}

	record := newAccountRecord(user)

	err := repository.db.WithContext(context).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&accountRecord{}).
			Where(ua.ID+" = ?", user.ID).
			Updates(map[string]any{
				ua.Username:     record.Username,
				ua.Email:        record.Email,
				ua.PasswordHash: record.PasswordHash,
				ua.IsOAuth2User: record.IsOAuth2User,
				ua.IsActive:     record.IsActive,
				ua.LastLoginAt:  record.LastLoginAt,
				ua.UpdatedAt:    record.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where(ur.AccountID+" = ?", user.ID).Delete(&accountRoleRecord{}).Error; err != nil {
			return err
		}
		if len(record.Roles) == 0 {
			return nil
		}
		return tx.Create(&record.Roles).Error
	})
	return dberr.Wrap(err, "update_user")
}

// Delete removes the account and its roles.
func (repository *SQLiteUserRepository) Delete(context context.Context, id string) error {
	err := repository.db.WithContext(context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(ur.AccountID+" = ?", id).Delete(&accountRoleRecord{}).Error; err != nil {
			return err
		}

		result := tx.Where(ua.ID+" = ?", id).Delete(&accountRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return dberr.Wrap(err, "delete_user")
}

// List returns one page of accounts, oldest first.
func (repository *SQLiteUserRepository) List(context context.Context, params pagination.Params) ([]*User, int, error) {
	db := repository.db.WithContext(context)

	var total int64
	if err := db.Model(&accountRecord{}).Count(&total).Error; err != nil {
		return nil, 0, dberr.Wrap(err, "count_users")
	}

	var records []accountRecord
	err := db.Preload("Roles").
		Order(fmt.Sprintf("%s ASC, %s ASC", ua.CreatedAt, ua.ID)).
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&records).Error
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_users")
	}

	users := make([]*User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, int(total), nil
}
