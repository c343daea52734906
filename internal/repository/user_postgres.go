package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `id, username, password, first_name, last_name, emails, phones, pcp`

// PostgresUserRepository implements user persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.FirstName, &u.LastName,
		pq.Array(&u.Emails), pq.Array(&u.Phones), pq.Array(&u.PCP))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// findOne runs a single-row user query. A missing row is not an error.
func (r *PostgresUserRepository) findOne(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(op, err)
	}
	return u, nil
}

// CreateUser inserts a new user with a freshly generated ID and returns the stored document.
// A duplicate username violates the unique constraint and is reported as a *StorageError.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = uuid.NewString()
	u, err := scanUser(r.DB.QueryRowContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		user.ID, user.Username, user.Password, user.FirstName, user.LastName,
		pq.Array(nonNil(user.Emails)), pq.Array(nonNil(user.Phones)), pq.Array(nonNil(user.PCP)),
	))
	if err != nil {
		return nil, storageErr("create user", err)
	}
	return u, nil
}

// FindUserByID returns the user with the given ID, or nil when none exists.
func (r *PostgresUserRepository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "find user by id",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindUserByUsername returns the user with the given username, or nil when none exists.
func (r *PostgresUserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "find user by username",
		`SELECT `+userColumns+` FROM users WHERE username = $1 LIMIT 1`, username)
}

// FindUserByCredentials returns the user whose username and password both match exactly.
func (r *PostgresUserRepository) FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	return r.findOne(ctx, "find user by credentials",
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND password = $2 LIMIT 1`, username, password)
}

// FindAllUsers returns every stored user in storage order.
func (r *PostgresUserRepository) FindAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, storageErr("find all users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageErr("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("find all users", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of patch to the user with the given ID,
// inserting the document when it does not exist yet, and returns the result.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''),
		        COALESCE($6::text[], '{}'), COALESCE($7::text[], '{}'), COALESCE($8::text[], '{}'))
		ON CONFLICT (id) DO UPDATE SET
			username   = COALESCE($2, users.username),
			password   = COALESCE($3, users.password),
			first_name = COALESCE($4, users.first_name),
			last_name  = COALESCE($5, users.last_name),
			emails     = COALESCE($6::text[], users.emails),
			phones     = COALESCE($7::text[], users.phones),
			pcp        = COALESCE($8::text[], users.pcp)
		RETURNING `+userColumns,
		id, patch.Username, patch.Password, patch.FirstName, patch.LastName,
		optionalArray(patch.Emails), optionalArray(patch.Phones), optionalArray(patch.PCP),
	))
	if err != nil {
		return nil, storageErr("update user", err)
	}
	return u, nil
}

// DeleteUser removes the user with the given ID. Deleting a missing user is a no-op.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return storageErr("delete user", err)
}

// optionalArray maps an absent list to SQL NULL so COALESCE keeps the stored value.
func optionalArray(s *[]string) any {
	if s == nil {
		return nil
	}
	return pq.Array(nonNil(*s))
}
