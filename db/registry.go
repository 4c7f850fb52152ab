package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LinkTTL is the validity window of a registration link. A pending link older
// than this is treated as expired even if still present.
const LinkTTL = 30 * time.Minute

// ConsumeResult classifies the outcome of a link-token submission.
type ConsumeResult int

const (
	// ConsumeOK means the token was live and the timezone was written.
	ConsumeOK ConsumeResult = iota
	// ConsumeExpired means the token was found but its TTL had elapsed; nothing was written.
	ConsumeExpired
	// ConsumeNotFound means no record holds this token (never issued, already
	// consumed, or overwritten by a newer link).
	ConsumeNotFound
)

// Registry is the keyed store mapping a Discord user id to an IANA timezone
// and to in-flight registration metadata. All mutations run inside a single
// transaction so concurrent submissions for the same token cannot both succeed.
type Registry struct {
	DB *sql.DB
}

// IssueLink stores a fresh link token and issue time for the user, creating
// the record with an empty timezone if absent. Any prior pending link is
// overwritten and thereby invalidated.
func (r *Registry) IssueLink(ctx context.Context, userID, token int64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users(id, tz, link_token, link_issued_at, updated_at)
		 VALUES($1, '', $2, $3, NOW())
		 ON CONFLICT(id) DO UPDATE SET
		   link_token=EXCLUDED.link_token,
		   link_issued_at=EXCLUDED.link_issued_at,
		   updated_at=NOW()`,
		userID, token, now.UTC())
	if err != nil {
		return fmt.Errorf("issue link: %w", err)
	}
	return nil
}

// ConsumeLink locates the record holding token, validates its age, and writes
// the submitted timezone. The row is locked for the duration of the
// transaction and the token is cleared on success, so a token is consumable
// for at most one successful write.
func (r *Registry) ConsumeLink(ctx context.Context, token int64, tz string, now time.Time) (ConsumeResult, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return ConsumeNotFound, fmt.Errorf("begin consume tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var userID int64
	var issuedAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, link_issued_at FROM users WHERE link_token=$1 FOR UPDATE`,
		token).Scan(&userID, &issuedAt)
	if err == sql.ErrNoRows {
		return ConsumeNotFound, nil
	}
	if err != nil {
		return ConsumeNotFound, fmt.Errorf("lookup link token: %w", err)
	}

	if now.Sub(issuedAt) > LinkTTL {
		return ConsumeExpired, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET tz=$1, link_token=NULL, link_issued_at=NULL, updated_at=NOW() WHERE id=$2`,
		tz, userID); err != nil {
		return ConsumeNotFound, fmt.Errorf("write timezone: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ConsumeNotFound, fmt.Errorf("commit consume tx: %w", err)
	}
	return ConsumeOK, nil
}

// Timezone returns the registered zone for a user. ok is false when the user
// has no record or the record's zone is empty (registration not completed).
func (r *Registry) Timezone(ctx context.Context, userID int64) (tz string, ok bool, err error) {
	err = r.DB.QueryRowContext(ctx, `SELECT tz FROM users WHERE id=$1`, userID).Scan(&tz)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup timezone: %w", err)
	}
	return tz, tz != "", nil
}

// Delete removes the user's record entirely. Deleting a non-existent record
// is a success.
func (r *Registry) Delete(ctx context.Context, userID int64) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
