// Package repository stores directory users and sessions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hemobase/hemobase/structs"
)

// ErrNotFound is returned when a requested row does not exist. Both the
// SQLite and Redis backends normalize their driver sentinels to it.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, user *structs.User) error
	FindByID(ctx context.Context, id string) (*structs.User, error)
	FindByEmail(ctx context.Context, email string) (*structs.User, error)
	FindByBloodType(ctx context.Context, bloodType structs.BloodType) ([]*structs.User, error)
	FindByCity(ctx context.Context, city string) ([]*structs.User, error)
	FindByDistrict(ctx context.Context, district string) ([]*structs.User, error)
	FindByRole(ctx context.Context, role structs.Role) ([]*structs.User, error)
	Update(ctx context.Context, user *structs.User) error
}

type userRepository struct {
	db *sql.DB
}

func NewSQLiteRepositories(db *sql.DB) (UserRepository, SessionRepository, error) {
	if err := initSchema(context.Background(), db); err != nil {
		return nil, nil, err
	}
	return &userRepository{db: db}, &sqliteSessionRepository{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			social_security_number TEXT NOT NULL,
			gender TEXT NOT NULL,
			blood_type TEXT NOT NULL,
			city TEXT NOT NULL,
			district TEXT NOT NULL,
			donation_description TEXT NOT NULL DEFAULT '',
			roles INTEGER NOT NULL,
			phone_number TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			roles TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expire_at INTEGER NOT NULL
		);
	`)
	return err
}

const userColumns = `id, first_name, last_name, email, password_hash, social_security_number,
	gender, blood_type, city, district, donation_description, roles, phone_number,
	date_of_birth, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *structs.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.SocialSecurityNumber,
		string(user.Gender),
		string(user.BloodType),
		user.City,
		user.District,
		user.DonationDescription,
		uint32(user.Roles),
		user.PhoneNumber,
		user.DateOfBirth.UTC().Format(time.RFC3339Nano),
		user.CreatedAt.UTC().Format(time.RFC3339Nano),
		user.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*structs.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*structs.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *userRepository) FindByBloodType(ctx context.Context, bloodType structs.BloodType) ([]*structs.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE blood_type = ?`, string(bloodType))
}

func (r *userRepository) FindByCity(ctx context.Context, city string) ([]*structs.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE city = ?`, city)
}

func (r *userRepository) FindByDistrict(ctx context.Context, district string) ([]*structs.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE district = ?`, district)
}

func (r *userRepository) FindByRole(ctx context.Context, role structs.Role) ([]*structs.User, error) {
	bit := uint32(structs.NewRoleMask(role))
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE (roles & ?) = ?`, bit, bit)
}

func (r *userRepository) Update(ctx context.Context, user *structs.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			first_name = ?, last_name = ?, email = ?, password_hash = ?,
			social_security_number = ?, gender = ?, blood_type = ?, city = ?,
			district = ?, donation_description = ?, roles = ?, phone_number = ?,
			date_of_birth = ?, updated_at = ?
		WHERE id = ?
	`,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.SocialSecurityNumber,
		string(user.Gender),
		string(user.BloodType),
		user.City,
		user.District,
		user.DonationDescription,
		uint32(user.Roles),
		user.PhoneNumber,
		user.DateOfBirth.UTC().Format(time.RFC3339Nano),
		user.UpdatedAt.UTC().Format(time.RFC3339Nano),
		user.ID,
	)
	return err
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*structs.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*structs.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*structs.User, error) {
	var gender, bloodType string
	var roles uint32
	var dateOfBirth, createdAt, updatedAt string

	user := &structs.User{}
	err := scanner.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.SocialSecurityNumber,
		&gender,
		&bloodType,
		&user.City,
		&user.District,
		&user.DonationDescription,
		&roles,
		&user.PhoneNumber,
		&dateOfBirth,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user.Gender = structs.Gender(gender)
	user.BloodType = structs.BloodType(bloodType)
	user.Roles = structs.RoleMask(roles)

	if user.DateOfBirth, err = time.Parse(time.RFC3339Nano, dateOfBirth); err != nil {
		return nil, err
	}
	if user.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}

	return user, nil
}
