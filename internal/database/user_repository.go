package database

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/models"
)

// UserRepository maneja las operaciones de base de datos para usuarios y
// sus API keys
type UserRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewUserRepository crea una nueva instancia del repositorio
func NewUserRepository(db *DB, logger *logrus.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser crea un nuevo usuario
func (r *UserRepository) CreateUser(req *models.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		Site:      req.Site,
		Tier:      req.Tier,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecWithTimeout(`
		INSERT INTO users (id, name, email, phone, role, site, tier, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		user.ID, user.Name, user.Email, user.Phone, user.Role,
		user.Site, user.Tier, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// GetUserByID obtiene un usuario por ID
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowWithTimeout(`
		SELECT id, name, email, phone, role, site, tier, is_active, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
		&user.Site, &user.Tier, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %s", id)
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &user, nil
}

// ListUsers obtiene todos los usuarios
func (r *UserRepository) ListUsers() ([]models.User, error) {
	rows, err := r.db.QueryWithTimeout(`
		SELECT id, name, email, phone, role, site, tier, is_active, created_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
			&user.Site, &user.Tier, &user.IsActive, &user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// CreateAPIKey emite una nueva API key para un usuario. La key en claro
// solo se retorna una vez; en la base queda el hash SHA-256.
func (r *UserRepository) CreateAPIKey(userID uuid.UUID, name string) (*models.APIKey, string, error) {
	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("error generating API key: %w", err)
	}

	keyModel := &models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		KeyHash:   HashAPIKey(apiKey),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	_, err = r.db.ExecWithTimeout(`
		INSERT INTO api_keys (id, user_id, name, key_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		keyModel.ID, keyModel.UserID, keyModel.Name,
		keyModel.KeyHash, keyModel.IsActive, keyModel.CreatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("error creating API key: %w", err)
	}

	return keyModel, apiKey, nil
}

// GetUserByKeyHash resuelve el usuario activo dueño de una API key activa
func (r *UserRepository) GetUserByKeyHash(hash string) (*models.User, *models.APIKey, error) {
	var user models.User
	var apiKey models.APIKey
	err := r.db.QueryRowWithTimeout(`
		SELECT u.id, u.name, u.email, u.phone, u.role, u.site, u.tier, u.is_active, u.created_at,
		       k.id, k.user_id, k.name, k.key_hash, k.is_active, k.created_at, k.last_used_at
		FROM api_keys k
		JOIN users u ON u.id = k.user_id
		WHERE k.key_hash = $1 AND k.is_active = true AND u.is_active = true
	`, hash).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
		&user.Site, &user.Tier, &user.IsActive, &user.CreatedAt,
		&apiKey.ID, &apiKey.UserID, &apiKey.Name, &apiKey.KeyHash,
		&apiKey.IsActive, &apiKey.CreatedAt, &apiKey.LastUsedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("API key not found or inactive")
		}
		return nil, nil, fmt.Errorf("error querying API key: %w", err)
	}
	return &user, &apiKey, nil
}

// UpdateKeyLastUsed actualiza la última vez que se usó la API key
func (r *UserRepository) UpdateKeyLastUsed(id uuid.UUID) error {
	_, err := r.db.ExecWithTimeout(`
		UPDATE api_keys SET last_used_at = $1 WHERE id = $2
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating API key last used: %w", err)
	}
	return nil
}

// DeactivateAPIKey desactiva una API key
func (r *UserRepository) DeactivateAPIKey(id uuid.UUID) error {
	result, err := r.db.ExecWithTimeout(`
		UPDATE api_keys SET is_active = false WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("error deactivating API key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("API key not found: %s", id)
	}
	return nil
}

// generateAPIKey genera una API key aleatoria de 64 caracteres hex
func generateAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// HashAPIKey genera el hash SHA-256 de la API key
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", hash)
}
