package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/creator-storefront/internal/model"
)

// PurchaseRepo records completed redemptions in the 'purchases' table.
// The token hash column carries a unique index so the same access token can
// only ever be recorded once, regardless of how many times the redirect
// exchange is replayed.
type PurchaseRepo struct{ DB *sql.DB }

func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{DB: db} }

// Record inserts a purchase row. A duplicate token hash maps to
// ErrDuplicatePurchase so callers can treat replays as already-done.
func (r *PurchaseRepo) Record(ctx context.Context, p model.Purchase) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO purchases (content_id, token_hash, email, amount_cents, currency, provider) VALUES (?,?,?,?,?,?)",
		p.ContentID, p.TokenHash, p.Email, p.AmountCents, p.Currency, p.Provider)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicatePurchase
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CountByContent returns how many purchases exist for one content bundle.
// Used by owner dashboards.
func (r *PurchaseRepo) CountByContent(ctx context.Context, contentID string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM purchases WHERE content_id=?", contentID).Scan(&n)
	return n, err
}
