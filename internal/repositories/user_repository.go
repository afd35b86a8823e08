package repositories

import (
	"database/sql"
	"errors"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	u := &models.User{}
	query := `
		SELECT id, name, email, password, role, status, created_at
		FROM users
		WHERE email = ?
		AND status = 1
	`
	err := r.db.QueryRow(query, email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
