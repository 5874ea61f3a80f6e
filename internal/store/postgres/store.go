package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	execer
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	user := models.User{ID: uuid.NewString(), Email: strings.TrimSpace(email), IsActive: true}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (user_id, email, password_hash)
		VALUES ($1, $2, $3)
	`, user.ID, user.Email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, store.ErrUserExists
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetCredentials(ctx context.Context, email string) (store.Credentials, error) {
	var creds store.Credentials
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, email, is_active, is_superuser, is_verified, password_hash
		FROM users
		WHERE lower(email) = lower($1) AND is_active = TRUE
	`, strings.TrimSpace(email))
	u := &creds.User
	if err := row.Scan(&u.ID, &u.Email, &u.IsActive, &u.IsSuperuser, &u.IsVerified, &creds.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Credentials{}, store.ErrInvalidCredentials
		}
		return store.Credentials{}, err
	}
	return creds, nil
}

func (s *Store) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (store.Session, error) {
	token := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return store.Session{}, err
	}
	return store.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}, nil
}

func (s *Store) GetSession(ctx context.Context, token string) (store.Session, models.User, error) {
	var session store.Session
	var user models.User
	row := s.pool.QueryRow(ctx, `
		SELECT s.session_id, s.user_id, s.expires_at,
		       u.email, u.is_active, u.is_superuser, u.is_verified
		FROM sessions s
		JOIN users u ON u.user_id = s.user_id
		WHERE s.session_id = $1 AND s.expires_at > NOW() AND u.is_active = TRUE
	`, token)
	if err := row.Scan(&session.Token, &session.UserID, &session.ExpiresAt, &user.Email, &user.IsActive, &user.IsSuperuser, &user.IsVerified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Session{}, models.User{}, store.ErrSessionNotFound
		}
		return store.Session{}, models.User{}, err
	}
	user.ID = session.UserID
	return session, user, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}
	return nil
}

// checkOwner distinguishes a missing row from one owned by someone else.
func checkOwner(ctx context.Context, q querier, query string, userID string, args ...any) error {
	var owner string
	if err := q.QueryRow(ctx, query, args...).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	if owner != userID {
		return store.ErrForbidden
	}
	return nil
}

func (s *Store) folderOwner(ctx context.Context, q querier, userID string, id int64) error {
	return checkOwner(ctx, q, `SELECT creator_id::text FROM folders WHERE folder_id = $1`, userID, id)
}

func (s *Store) applicationOwner(ctx context.Context, q querier, userID string, id int64) error {
	return checkOwner(ctx, q, `SELECT creator_id::text FROM applications WHERE application_id = $1`, userID, id)
}

func (s *Store) optionOwner(ctx context.Context, q querier, userID string, kind models.SelectKind, id int64) error {
	return checkOwner(ctx, q, `SELECT creator_id::text FROM select_options WHERE option_id = $1 AND kind = $2`, userID, id, string(kind))
}

func (s *Store) checkReferences(ctx context.Context, q querier, userID string, folderID, statusID, priorityID *int64, tagIDs []int64) error {
	if folderID != nil {
		if err := s.folderOwner(ctx, q, userID, *folderID); err != nil {
			return referenceError(err, "folder_id", *folderID)
		}
	}
	if statusID != nil {
		if err := s.optionOwner(ctx, q, userID, models.KindStatuses, *statusID); err != nil {
			return referenceError(err, "status_id", *statusID)
		}
	}
	if priorityID != nil {
		if err := s.optionOwner(ctx, q, userID, models.KindPriorities, *priorityID); err != nil {
			return referenceError(err, "priority_id", *priorityID)
		}
	}
	for _, id := range tagIDs {
		if err := s.optionOwner(ctx, q, userID, models.KindTags, id); err != nil {
			return referenceError(err, "tag_ids", id)
		}
	}
	return nil
}

func referenceError(err error, field string, id int64) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrForbidden) {
		return &store.ReferenceError{Field: field, ID: id}
	}
	return fmt.Errorf("check %s: %w", field, err)
}
