package repository // repository for content and media persistence

import (
    "context"      // context for deadlines on DB calls
    "database/sql" // sql provides DB interfaces
    "errors"       // errors.Is for sql.ErrNoRows translation
    "strings"      // strings inspects driver errors for duplicate keys

    "github.com/iliyamo/creator-storefront/internal/model"
    "github.com/iliyamo/creator-storefront/internal/secureid"
)

// ContentRepo encapsulates database operations for contents and media_items.
// The secure_id column is the authoring-side lookup table for the public
// alias: it is written when content is created and is the authoritative
// resolution path for 24-hex backend identifiers, which the pure numeric
// mapping cannot cover.
type ContentRepo struct {
    db *sql.DB
}

// NewContentRepo constructs a ContentRepo given a DB handle.
func NewContentRepo(db *sql.DB) *ContentRepo {
    return &ContentRepo{db: db}
}

const contentColumns = "id,secure_id,creator_id,title,source,gated,price_cents,currency,media_count,created_at"

// Create inserts a content row together with its public alias. The alias is
// written here, at authoring time; resolution later prefers this column over
// the numeric mapping.
func (r *ContentRepo) Create(ctx context.Context, ct model.Content) error {
    _, err := r.db.ExecContext(ctx,
        "INSERT INTO contents (id,secure_id,creator_id,title,source,gated,price_cents,currency,media_count) VALUES (?,?,?,?,?,?,?,?,?)",
        ct.ID, ct.SecureID, ct.CreatorID, ct.Title, ct.Source, ct.Gated, ct.PriceCents, ct.Currency, ct.MediaCount)
    if err != nil {
        // MySQL duplicate key (1062): the id or alias is already registered.
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrContentExists
        }
        return err
    }
    return nil
}

// AddMedia appends one media item at the next position and bumps the
// bundle's media count.
func (r *ContentRepo) AddMedia(ctx context.Context, it model.MediaItem) error {
    _, err := r.db.ExecContext(ctx,
        "INSERT INTO media_items (content_id,url,kind,position) VALUES (?,?,?,?)",
        it.ContentID, it.URL, it.Kind, it.Position)
    if err != nil {
        return err
    }
    _, err = r.db.ExecContext(ctx,
        "UPDATE contents SET media_count=media_count+1 WHERE id=?", it.ContentID)
    return err
}

// GetByID fetches content by its internal identifier.
func (r *ContentRepo) GetByID(ctx context.Context, id string) (model.Content, error) {
    return r.scanOne(r.db.QueryRowContext(ctx,
        "SELECT "+contentColumns+" FROM contents WHERE id=? LIMIT 1", id))
}

// GetBySecureID fetches content by its public alias.
func (r *ContentRepo) GetBySecureID(ctx context.Context, secureID string) (model.Content, error) {
    return r.scanOne(r.db.QueryRowContext(ctx,
        "SELECT "+contentColumns+" FROM contents WHERE secure_id=? LIMIT 1", secureID))
}

func (r *ContentRepo) scanOne(row *sql.Row) (model.Content, error) {
    var ct model.Content
    err := row.Scan(&ct.ID, &ct.SecureID, &ct.CreatorID, &ct.Title, &ct.Source,
        &ct.Gated, &ct.PriceCents, &ct.Currency, &ct.MediaCount, &ct.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Content{}, ErrContentNotFound
    }
    return ct, err
}

// MediaByContent returns the ordered media list of a content bundle.
func (r *ContentRepo) MediaByContent(ctx context.Context, contentID string) ([]model.MediaItem, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id,content_id,url,kind,position FROM media_items WHERE content_id=? ORDER BY position ASC",
        contentID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var items []model.MediaItem
    for rows.Next() {
        var it model.MediaItem
        if err := rows.Scan(&it.ID, &it.ContentID, &it.URL, &it.Kind, &it.Position); err != nil {
            return nil, err
        }
        items = append(items, it)
    }
    return items, rows.Err()
}

// ContentResolver turns a route-level content reference (secure alias or raw
// internal identifier) into a content row. The caller is expected to have
// shape-checked the reference already; the resolver never hits the network,
// only the mapper and the database.
type ContentResolver struct {
    Repo   *ContentRepo
    Mapper *secureid.Mapper
}

// Resolve looks up content by reference. Secure aliases are resolved through
// the secure_id column first; legacy rows written before the alias column
// existed fall back to the keyed numeric mapping. Raw identifiers are looked
// up directly.
func (cr *ContentResolver) Resolve(ctx context.Context, ref string) (model.Content, error) {
    if secureid.IsValidSecureID(ref) {
        ct, err := cr.Repo.GetBySecureID(ctx, ref)
        if err == nil {
            return ct, nil
        }
        if !errors.Is(err, ErrContentNotFound) {
            return model.Content{}, err
        }
        id, derr := cr.Mapper.Decode(ref)
        if derr != nil {
            return model.Content{}, ErrContentNotFound
        }
        return cr.Repo.GetByID(ctx, id)
    }
    if secureid.IsValidContentID(ref) {
        return cr.Repo.GetByID(ctx, ref)
    }
    return model.Content{}, ErrContentNotFound
}
