package repository

import (
	"database/sql"
	"fmt"

	"github.com/msalazar/tanda-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, second_last_name, phone, email,
			postal_code, state, municipality, colony, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		user.FirstName, user.LastName, user.SecondLastName, user.Phone, user.Email,
		user.PostalCode, user.State, user.Municipality, user.Colony, user.Role, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, first_name, last_name, second_last_name, phone, email,
			postal_code, state, municipality, colony, role, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.SecondLastName, &user.Phone, &user.Email,
		&user.PostalCode, &user.State, &user.Municipality, &user.Colony, &user.Role,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, first_name, last_name, second_last_name, phone, email,
			postal_code, state, municipality, colony, role, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.SecondLastName, &user.Phone, &user.Email,
		&user.PostalCode, &user.State, &user.Municipality, &user.Colony, &user.Role,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListAdmins returns every administrator account.
func (r *Repository) ListAdmins() ([]models.User, error) {
	query := `
		SELECT id, first_name, last_name, phone, email, role
		FROM users
		WHERE role = $1
		ORDER BY id`
	rows, err := r.db.Query(query, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Phone, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, u)
	}
	return admins, rows.Err()
}
