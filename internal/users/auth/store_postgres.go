package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/internal/platform/database/schema"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/sec"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func accountColumns() string {
	return strings.Join(schema.UserAccount.Columns(), ", ")
}

func scanAccount(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns(), schema.UserAccount.Table, schema.UserAccount.ID,
	)

	u, err := scanAccount(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_account")
	}
	return u, nil
}

func (repository *PostgresRepository) Upsert(ctx context.Context, u *User) error {
	// Conflict on the Google subject refreshes the profile but never
	// demotes a role granted since the first sign-in.
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE
		SET %s = $3, %s = $4, %s = $5, %s = NOW()
		RETURNING %s, %s, %s, %s
	`,
		schema.UserAccount.Table, accountColumns(),
		schema.UserAccount.GoogleID,
		schema.UserAccount.Email, schema.UserAccount.DisplayName,
		schema.UserAccount.AvatarURL, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.Role,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		u.ID, u.GoogleID, u.Email, u.DisplayName, u.AvatarURL, u.Role,
	).Scan(&u.ID, &u.Role, &u.CreatedAt, &u.UpdatedAt)

	return dberr.Wrap(err, "upsert_account")
}

func (repository *PostgresRepository) SetRole(ctx context.Context, id string, role sec.UserRole) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Role,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID,
	)

	cmd, err := repository.db.Exec(ctx, query, id, role)
	if err != nil {
		return dberr.Wrap(err, "set_account_role")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
