package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/creator-storefront/internal/model"
	"github.com/iliyamo/creator-storefront/internal/utils"
)

// CreatorRepo persists creator accounts in the 'creators' table.
type CreatorRepo struct{ DB *sql.DB }

func NewCreatorRepo(db *sql.DB) *CreatorRepo { return &CreatorRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a creator and returns its ID.
func (r *CreatorRepo) Create(ctx context.Context, email, username, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO creators (email, username, password_hash) VALUES (?,?,?)",
		email, username, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a creator by normalized email.
func (r *CreatorRepo) GetByEmail(ctx context.Context, email string) (model.Creator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.Creator
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,is_active,created_at,updated_at FROM creators WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a creator by id.
func (r *CreatorRepo) GetByID(ctx context.Context, id uint64) (model.Creator, error) {
	var u model.Creator
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,is_active,created_at,updated_at FROM creators WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
