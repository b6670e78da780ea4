package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
)

// upsertQuery inserts a first detection or bumps a repeat one.
// xmax is zero only for a row this statement inserted.
const upsertQuery = `
	INSERT INTO phish_urls (url, first_seen, last_seen, reports_count, on_air, checked)
	VALUES ($1, $2, $2, 1, FALSE, FALSE)
	ON CONFLICT (url) DO UPDATE SET
		reports_count = phish_urls.reports_count + 1,
		last_seen = EXCLUDED.last_seen
	RETURNING (xmax = 0) AS inserted;
`

var registryColumns = []string{
	"id", "url", "first_seen", "last_seen", "reports_count", "on_air", "checked", "last_checked_at",
}

// RegistryRepoImpl provides a concrete implementation for the RegistryRepository interface using PostgreSQL.
type RegistryRepoImpl struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewRegistryRepo creates a new instance of RegistryRepoImpl.
func NewRegistryRepo(db *pgxpool.Pool) *RegistryRepoImpl {
	return &RegistryRepoImpl{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var _ repository.RegistryRepository = (*RegistryRepoImpl)(nil)

// Upsert records one detection of url.
func (r *RegistryRepoImpl) Upsert(ctx context.Context, url string, now time.Time) (entity.UpsertOutcome, error) {
	var inserted bool
	if err := r.db.QueryRow(ctx, upsertQuery, url, now.UTC()).Scan(&inserted); err != nil {
		return "", fmt.Errorf("failed to upsert %s: %w", url, err)
	}
	return outcome(inserted), nil
}

// UpsertBatch records one detection per url inside a single transaction.
func (r *RegistryRepoImpl) UpsertBatch(ctx context.Context, urls []string, now time.Time) ([]entity.UpsertOutcome, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin registry transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, url := range urls {
		batch.Queue(upsertQuery, url, now.UTC())
	}

	br := tx.SendBatch(ctx, batch)
	outcomes := make([]entity.UpsertOutcome, 0, len(urls))
	for _, url := range urls {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			br.Close()
			return nil, fmt.Errorf("failed to upsert %s: %w", url, err)
		}
		outcomes = append(outcomes, outcome(inserted))
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush registry batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit registry transaction: %w", err)
	}
	return outcomes, nil
}

// FindByURL retrieves the registry entry for a specific URL.
func (r *RegistryRepoImpl) FindByURL(ctx context.Context, url string) (*entity.RegistryEntry, error) {
	query, args, err := r.selectEntries().Where(sq.Eq{"url": url}).ToSql()
	if err != nil {
		return nil, err
	}

	entry, err := scanEntry(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListAll returns every registry entry ordered by URL.
func (r *RegistryRepoImpl) ListAll(ctx context.Context) ([]*entity.RegistryEntry, error) {
	return r.list(ctx, r.selectEntries().OrderBy("url ASC"))
}

// ListRecent returns the most recently seen registry entries.
func (r *RegistryRepoImpl) ListRecent(ctx context.Context, limit int) ([]*entity.RegistryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.list(ctx, r.recentQuery(limit))
}

func (r *RegistryRepoImpl) selectEntries() sq.SelectBuilder {
	return r.sb.Select(registryColumns...).From("phish_urls")
}

func (r *RegistryRepoImpl) recentQuery(limit int) sq.SelectBuilder {
	return r.selectEntries().OrderBy("last_seen DESC", "id DESC").Limit(uint64(limit))
}

// Count returns the number of stored URLs.
func (r *RegistryRepoImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM phish_urls;`).Scan(&n)
	return n, err
}

func (r *RegistryRepoImpl) list(ctx context.Context, qb sq.SelectBuilder) ([]*entity.RegistryEntry, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entity.RegistryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*entity.RegistryEntry, error) {
	var e entity.RegistryEntry
	if err := row.Scan(
		&e.ID,
		&e.URL,
		&e.FirstSeen,
		&e.LastSeen,
		&e.ReportsCount,
		&e.OnAir,
		&e.Checked,
		&e.LastCheckedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func outcome(inserted bool) entity.UpsertOutcome {
	if inserted {
		return entity.UpsertInserted
	}
	return entity.UpsertBumped
}
