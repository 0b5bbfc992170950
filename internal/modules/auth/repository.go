// Package auth provides registration, login and JWT session handling.
package auth

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
)

// UserRepository handles user rows in the app database.
type UserRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, log zerolog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.With().Str("repository", "users").Logger(),
	}
}

// Create inserts a new user and returns its ID. Fails when the username is
// already taken.
func (r *UserRepository) Create(username, hashedPassword string) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO users (username, hashed_password, membership, created_at)
		VALUES (?, ?, ?, ?)
	`, username, hashedPassword, domain.MembershipBasic, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return res.LastInsertId()
}

// GetByUsername returns a user with its password hash, or sql.ErrNoRows.
func (r *UserRepository) GetByUsername(username string) (*domain.User, string, error) {
	var u domain.User
	var hash string
	err := r.db.QueryRow(`
		SELECT id, username, hashed_password, membership, total_return
		FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &hash, &u.Membership, &u.TotalReturn)
	if err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}

// GetByID returns a user by primary key, or sql.ErrNoRows.
func (r *UserRepository) GetByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(`
		SELECT id, username, membership, total_return
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Username, &u.Membership, &u.TotalReturn)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMembership changes a user's membership tier.
func (r *UserRepository) UpdateMembership(id int64, membership string) error {
	res, err := r.db.Exec(`UPDATE users SET membership = ? WHERE id = ?`, membership, id)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateTotalReturn stores the settled return percentage for a user.
func (r *UserRepository) UpdateTotalReturn(id int64, totalReturn float64) error {
	_, err := r.db.Exec(`UPDATE users SET total_return = ? WHERE id = ?`, totalReturn, id)
	if err != nil {
		return fmt.Errorf("failed to update total return: %w", err)
	}
	return nil
}

// ListIDs returns all user IDs, used by the nightly settlement job.
func (r *UserRepository) ListIDs() ([]int64, error) {
	rows, err := r.db.Query(`SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Leaderboard returns users ordered by settled total return, capped at limit.
func (r *UserRepository) Leaderboard(limit int) ([]domain.User, error) {
	rows, err := r.db.Query(`
		SELECT id, username, membership, total_return
		FROM users
		ORDER BY total_return DESC, username ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Membership, &u.TotalReturn); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
