package sqlite

import (
	"context"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

// AdminRepository implements persistence.AdminRepository using SQLite.
type AdminRepository struct {
	pool *ConnectionPool
}

// NewAdminRepository creates a new SQLite admin repository.
func NewAdminRepository(pool *ConnectionPool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// CreateAdmin inserts a new administrator account.
func (r *AdminRepository) CreateAdmin(ctx context.Context, admin persistence.AdminUser) error {
	if admin.ID == "" || admin.Username == "" {
		return persistence.ErrConstraintViolation
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO admin_users (id, username, password_hash, active, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.pool.db.ExecContext(ctx, query,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
		boolToInt(admin.Active),
		admin.CreatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetAdminByUsername retrieves an administrator by unique username.
func (r *AdminRepository) GetAdminByUsername(ctx context.Context, username string) (persistence.AdminUser, error) {
	row := r.pool.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, active, created_at FROM admin_users WHERE username = ?`, username)

	var (
		admin     persistence.AdminUser
		active    int
		createdAt string
	)
	if err := row.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &active, &createdAt); err != nil {
		return persistence.AdminUser{}, mapError(err)
	}
	admin.Active = active != 0

	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return persistence.AdminUser{}, err
	}
	admin.CreatedAt = parsed
	return admin, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
