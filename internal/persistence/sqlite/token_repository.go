package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ticket-booking/internal/persistence"
)

// TokenRepository implements persistence.TokenRepository using SQLite.
type TokenRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTokenRepository creates a new SQLite token repository.
func NewTokenRepository(pool *ConnectionPool) *TokenRepository {
	return &TokenRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const tokenColumns = "id, user_id, value, kind, expires_at, created_at, revoked_at"

// CreateToken stores a newly issued bearer token.
func (r *TokenRepository) CreateToken(ctx context.Context, token persistence.Token) (persistence.Token, error) {
	if token.ID == "" || token.UserID == "" {
		return persistence.Token{}, persistence.ErrConstraintViolation
	}
	token.Value = strings.TrimSpace(token.Value)
	if token.Value == "" {
		return persistence.Token{}, persistence.ErrConstraintViolation
	}

	var revokedAt sql.NullString
	if token.RevokedAt != nil {
		revokedAt = sql.NullString{String: token.RevokedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Value,
		token.Kind,
		token.ExpiresAt.UTC().Format(time.RFC3339),
		token.CreatedAt.UTC().Format(time.RFC3339),
		revokedAt,
	)
	if err != nil {
		return persistence.Token{}, r.mapper.MapError(err)
	}

	return token, nil
}

// GetToken retrieves a token by its opaque value.
func (r *TokenRepository) GetToken(ctx context.Context, value string) (persistence.Token, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return persistence.Token{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE value = ?`, trimmed)
	return r.scanToken(row)
}

// RevokeToken adds a token to the revocation list. Revoking an already revoked
// token keeps the original revocation timestamp.
func (r *TokenRepository) RevokeToken(ctx context.Context, value string, revokedAt time.Time) (persistence.Token, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return persistence.Token{}, persistence.ErrNotFound
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var existing sql.NullString
		err := r.helper.QueryRowTx(tx, `SELECT revoked_at FROM tokens WHERE value = ?`, trimmed).Scan(&existing)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return r.mapper.MapError(err)
		}

		if existing.Valid {
			return nil
		}

		_, err = r.helper.ExecTx(tx,
			`UPDATE tokens SET revoked_at = ? WHERE value = ?`,
			revokedAt.UTC().Format(time.RFC3339), trimmed)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
	if err != nil {
		return persistence.Token{}, err
	}

	return r.GetToken(ctx, trimmed)
}

// DeleteExpiredTokens removes tokens that expired on or before the reference time.
func (r *TokenRepository) DeleteExpiredTokens(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx,
		`DELETE FROM tokens WHERE expires_at <= ?`,
		reference.UTC().Format(time.RFC3339))
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

func (r *TokenRepository) scanToken(row rowScanner) (persistence.Token, error) {
	var token persistence.Token
	var expiresAtStr, createdAtStr string
	var revokedAt sql.NullString

	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Value,
		&token.Kind,
		&expiresAtStr,
		&createdAtStr,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Token{}, persistence.ErrNotFound
		}
		return persistence.Token{}, r.mapper.MapError(err)
	}

	if token.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr); err != nil {
		return persistence.Token{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if token.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Token{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if revokedAt.Valid {
		parsed, err := time.Parse(time.RFC3339, revokedAt.String)
		if err != nil {
			return persistence.Token{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
		token.RevokedAt = &parsed
	}

	return token, nil
}
