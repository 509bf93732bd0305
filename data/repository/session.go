package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hemobase/hemobase/structs"
)

type SessionRepository interface {
	// Save persists a new session, assigning a fresh identifier, and
	// returns it.
	Save(ctx context.Context, session *structs.Session) (string, error)
	FindByID(ctx context.Context, id string) (*structs.Session, error)
	FindByUserID(ctx context.Context, userID string) (*structs.Session, error)
	// UpdateByID replaces all session fields wholesale, keeping row identity.
	UpdateByID(ctx context.Context, id string, session *structs.Session) error
	DeleteByID(ctx context.Context, id string) error
	// Upsert atomically reuses the user's live session slot or creates a
	// fresh one. A live existing row keeps its id, created-at and
	// expire-at and only has its identity snapshot and provenance
	// replaced; an expired or missing row is written anew. Returns the
	// stored row.
	Upsert(ctx context.Context, session *structs.Session) (*structs.Session, error)
}

type sqliteSessionRepository struct {
	db *sql.DB
}

// Session timestamps are stored as unix milliseconds so the upsert's
// liveness comparison happens inside the database.
const sessionColumns = `id, user_id, email, roles, ip_address, user_agent, created_at, expire_at`

func (r *sqliteSessionRepository) Save(ctx context.Context, session *structs.Session) (string, error) {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	roles, err := json.Marshal(session.Roles)
	if err != nil {
		return "", err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.UserID,
		session.Email,
		string(roles),
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt.UnixMilli(),
		session.ExpireAt.UnixMilli(),
	)
	if err != nil {
		return "", err
	}

	return session.ID, nil
}

func (r *sqliteSessionRepository) FindByID(ctx context.Context, id string) (*structs.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (r *sqliteSessionRepository) FindByUserID(ctx context.Context, userID string) (*structs.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE user_id = ?`, userID)
	return scanSession(row)
}

func (r *sqliteSessionRepository) UpdateByID(ctx context.Context, id string, session *structs.Session) error {
	roles, err := json.Marshal(session.Roles)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			user_id = ?, email = ?, roles = ?, ip_address = ?, user_agent = ?,
			created_at = ?, expire_at = ?
		WHERE id = ?
	`,
		session.UserID,
		session.Email,
		string(roles),
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt.UnixMilli(),
		session.ExpireAt.UnixMilli(),
		id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *sqliteSessionRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sqliteSessionRepository) Upsert(ctx context.Context, session *structs.Session) (*structs.Session, error) {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	roles, err := json.Marshal(session.Roles)
	if err != nil {
		return nil, err
	}

	// The UNIQUE(user_id) constraint serializes concurrent logins for the
	// same user; the reuse-vs-replace decision runs inside the statement
	// so no read-then-write race exists.
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			id = CASE WHEN sessions.expire_at > excluded.created_at
				THEN sessions.id ELSE excluded.id END,
			email = excluded.email,
			roles = excluded.roles,
			ip_address = excluded.ip_address,
			user_agent = excluded.user_agent,
			created_at = CASE WHEN sessions.expire_at > excluded.created_at
				THEN sessions.created_at ELSE excluded.created_at END,
			expire_at = CASE WHEN sessions.expire_at > excluded.created_at
				THEN sessions.expire_at ELSE excluded.expire_at END
		RETURNING `+sessionColumns,
		session.ID,
		session.UserID,
		session.Email,
		string(roles),
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt.UnixMilli(),
		session.ExpireAt.UnixMilli(),
	)

	return scanSession(row)
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*structs.Session, error) {
	var roles string
	var createdAt, expireAt int64

	session := &structs.Session{}
	err := scanner.Scan(
		&session.ID,
		&session.UserID,
		&session.Email,
		&roles,
		&session.IPAddress,
		&session.UserAgent,
		&createdAt,
		&expireAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(roles), &session.Roles); err != nil {
		return nil, err
	}

	session.CreatedAt = time.UnixMilli(createdAt).UTC()
	session.ExpireAt = time.UnixMilli(expireAt).UTC()

	return session, nil
}
