package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/internal/domain/repository"
)

// poolIface is the subset of *pgxpool.Pool the repositories use.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, username, email, password_hash, verification_code, verification_code_expiry,
		is_user_verified, is_accepting_message, created_at, updated_at`

type UserRepository struct {
	pool poolIface
}

func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.VerificationCode,
		&u.VerificationCodeExpiry, &u.IsUserVerified, &u.IsAcceptingMessage, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *UserRepository) getOne(ctx context.Context, op, key string, query string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("lookup", op).With("key", key).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("operation", op).Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "get by id", id, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, "get by username", username, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
		ORDER BY is_user_verified DESC, updated_at DESC
		LIMIT 1
	`, username)
}

func (r *UserRepository) ListByUsername(ctx context.Context, username string) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
		ORDER BY is_user_verified DESC, updated_at DESC
	`, username)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "list by username").Wrap(err)
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "scan user").Wrap(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}
	return out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get by email", email, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	return r.getOne(ctx, "get by identifier", identifier, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 OR email = $1
		ORDER BY is_user_verified DESC, updated_at DESC
		LIMIT 1
	`, identifier)
}

func (r *UserRepository) ExistsVerifiedUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND is_user_verified)
	`, username).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_GET_FAILED").With("operation", "exists verified username").Wrap(err)
	}
	return exists, nil
}

// UpsertUnverified relies on the unique email index: concurrent signups for the same
// email serialize on the row and converge on one record.
func (r *UserRepository) UpsertUnverified(ctx context.Context, p repository.PendingSignup) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, verification_code, verification_code_expiry)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    verification_code = EXCLUDED.verification_code,
		    verification_code_expiry = EXCLUDED.verification_code_expiry,
		    updated_at = now()
		WHERE users.is_user_verified = FALSE
		RETURNING `+userColumns,
		uuid.NewString(), p.Username, p.Email, p.PasswordHash, p.VerificationCode, p.VerificationCodeExpiry)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// conflict target existed but the WHERE filtered it: the email is verified
		return nil, oops.Code("USER_EMAIL_VERIFIED").With("email", p.Email).Wrap(repository.ErrVerifiedConflict)
	}
	if isUniqueViolation(err) {
		return nil, oops.Code("USER_DUPLICATE").With("email", p.Email).Wrap(repository.ErrDuplicate)
	}
	if err != nil {
		return nil, oops.Code("USER_UPSERT_FAILED").With("operation", "upsert unverified").Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_user_verified = TRUE, updated_at = now()
		WHERE id = $1
	`, id)
	if isUniqueViolation(err) {
		return oops.Code("USER_DUPLICATE").With("id", id).Wrap(repository.ErrDuplicate)
	}
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("operation", "mark verified").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(repository.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) SetAcceptingMessage(ctx context.Context, id string, accept bool) (*entity.User, error) {
	return r.getOne(ctx, "set accepting message", id, `
		UPDATE users
		SET is_accepting_message = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, accept)
}

var _ repository.UserRepository = (*UserRepository)(nil)
