package shortlink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const linkColumns = "code, long_url, created_at, expires_at"

func scanLink(scanner interface{ Scan(dest ...any) error }) (*Link, error) {
	var (
		code       string
		longURL    string
		createdRaw string
		expiresRaw string
	)
	if err := scanner.Scan(&code, &longURL, &createdRaw, &expiresRaw); err != nil {
		return nil, err
	}

	link := &Link{Code: code, LongURL: longURL}
	if created, err := parseTimeString(createdRaw); err == nil {
		link.CreatedAt = created
	}
	if expires, err := parseTimeString(expiresRaw); err == nil {
		link.ExpiresAt = expires
	}
	return link, nil
}

// CreateLink inserts a new link. A code collision reports ErrCodeTaken.
func (s *Store) CreateLink(ctx context.Context, link Link) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO links (code, long_url, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		link.Code,
		link.LongURL,
		link.CreatedAt.UTC().Format(time.RFC3339Nano),
		link.ExpiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return fmt.Errorf("code %q: %w", link.Code, ErrCodeTaken)
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

// GetLink fetches a link by code. A missing code yields (nil, nil).
func (s *Store) GetLink(ctx context.Context, code string) (*Link, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE code = ?`, code)
	link, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// DeleteLink removes a link and its clicks, reporting whether a link row was
// deleted.
func (s *Store) DeleteLink(ctx context.Context, code string) (bool, error) {
	ctx = ensureContext(ctx)
	var affected int64
	if err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM clicks WHERE link_code = ?`, code); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE code = ?`, code)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return err
		}
		return tx.Commit()
	}); err != nil {
		return false, fmt.Errorf("delete link: %w", err)
	}
	return affected > 0, nil
}

// ListLinks returns links newest first. A non-positive limit returns all.
func (s *Store) ListLinks(ctx context.Context, limit int) ([]Link, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// CountLinks returns the total number of stored links.
func (s *Store) CountLinks(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM links`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return count, nil
}

// RecordClick stores one resolution of a link.
func (s *Store) RecordClick(ctx context.Context, click Click) error {
	if err := retryOnBusy(ensureContext(ctx), func() error {
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO clicks (link_code, at, referrer, source) VALUES (?, ?, ?, ?)`,
			click.LinkCode,
			click.At.UTC().Format(time.RFC3339Nano),
			nullableString(click.Referrer),
			nullableString(click.Source),
		)
		return err
	}); err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// ClicksFor returns the most recent clicks for a code, newest first.
func (s *Store) ClicksFor(ctx context.Context, code string, limit int) ([]Click, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT link_code, at, referrer, source FROM clicks WHERE link_code = ? ORDER BY at DESC, id DESC LIMIT ?`,
		code, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer rows.Close()

	var clicks []Click
	for rows.Next() {
		var (
			linkCode string
			atRaw    string
			referrer sql.NullString
			source   sql.NullString
		)
		if err := rows.Scan(&linkCode, &atRaw, &referrer, &source); err != nil {
			return nil, err
		}
		click := Click{LinkCode: linkCode, Referrer: referrer.String, Source: source.String}
		if at, err := parseTimeString(atRaw); err == nil {
			click.At = at
		}
		clicks = append(clicks, click)
	}
	return clicks, rows.Err()
}

// ClickCount returns the total clicks recorded for a code.
func (s *Store) ClickCount(ctx context.Context, code string) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clicks WHERE link_code = ?`, code).Scan(&count); err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}
	return count, nil
}

// DeleteExpired removes links whose expiry is at or before the given instant
// and returns how many were purged.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM links WHERE expires_at <= ?`,
		now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return res.RowsAffected()
}
