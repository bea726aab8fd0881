package database

import (
	"context"
	"errors"
	"fmt"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", user.Email))
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			r.logger.Warn("Attempted to create duplicate user", zap.String("email", user.Email), zap.String("constraint", constraint))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id, zap.String("userID", id.String()))
}

// GetUserByEmail retrieves a user by their email.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email, zap.String("email", email))
}

func (r *pgUserRepository) getOne(ctx context.Context, query string, arg any, field zap.Field) (*models.User, error) {
	user := &models.User{}
	r.logger.Debug("Executing query", zap.String("query", query), field)
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found", field)
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user from postgres", zap.Error(err), field)
		return nil, fmt.Errorf("failed to get user from postgres: %w", err)
	}
	return user, nil
}

// UpdateName changes the user's display name.
func (r *pgUserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	query := `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, id, name).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to update user name", zap.Error(err), zap.String("userID", id.String()))
		return nil, fmt.Errorf("failed to update user name: %w", err)
	}
	r.logger.Info("User name updated", zap.String("userID", id.String()))
	return user, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *pgUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, newPasswordHash)
	if err != nil {
		r.logger.Error("Failed to update password hash", zap.Error(err), zap.String("userID", id.String()))
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	r.logger.Info("Password hash updated", zap.String("userID", id.String()))
	return nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
func (r *pgUserRepository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	var users []models.User
	if err := pgxscan.Select(ctx, r.db, &users, query, ids); err != nil {
		r.logger.Error("Failed to get users by ids", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return users, nil
}
