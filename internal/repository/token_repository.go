package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo stores hashed refresh tokens.  Only the SHA-256 digest of
// a token ever reaches the database; a stolen table cannot be used to
// mint new sessions.  Subjects are identified by (id, role) since
// customers and mechanics live in separate tables.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh saves a refresh token hash for a subject.
func (r *TokenRepo) StoreRefresh(ctx context.Context, subjectID uint64, role, hash string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (subject_id, role, token_hash, expires_at) VALUES (?,?,?,?)",
		subjectID, role, hash, expires.UTC())
	return err
}

// ValidateRefresh resolves a token hash to its subject.  Expired and
// revoked tokens behave exactly like unknown ones: sql.ErrNoRows.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, hash string) (uint64, string, error) {
	var subjectID uint64
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT subject_id, role FROM refresh_tokens WHERE token_hash=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP() LIMIT 1",
		hash).Scan(&subjectID, &role)
	if err != nil {
		return 0, "", err
	}
	return subjectID, role, nil
}

// RevokeByHash marks a single token revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL", hash)
	return err
}

// RevokeAllForSubject logs a subject out of every session.
func (r *TokenRepo) RevokeAllForSubject(ctx context.Context, subjectID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE subject_id=? AND role=? AND revoked_at IS NULL",
		subjectID, role)
	return err
}
