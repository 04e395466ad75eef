package category

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/database/schema"
	"github.com/openshelf/openshelf/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// categoryColumns is the SELECT list shared by every read.
func categoryColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s",
		schema.Category.ID, schema.Category.Name, schema.Category.Description,
		schema.Category.Color, schema.Category.IsActive, schema.Category.CreatedAt, schema.Category.UpdatedAt,
	)
}

func scanCategory(row interface{ Scan(...any) error }) (*Category, error) {
	c := &Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// sortClauses whitelists the client-facing sort keys; anything else falls
// back to alphabetic ordering.
var sortClauses = map[string]string{
	"name":       schema.Category.Name + " ASC",
	"-name":      schema.Category.Name + " DESC",
	"createdAt":  schema.Category.CreatedAt + " ASC",
	"-createdAt": schema.Category.CreatedAt + " DESC",
}

func (repository *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Category, int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE TRUE`, categoryColumns(), schema.Category.Table)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE TRUE`, schema.Category.Table)

	args := []any{}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		clause := fmt.Sprintf(" AND %s ILIKE $%d", schema.Category.Name, len(args))
		query += clause
		countQuery += clause
	}

	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		clause := fmt.Sprintf(" AND %s = $%d", schema.Category.IsActive, len(args))
		query += clause
		countQuery += clause
	}

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_categories")
	}

	orderBy, ok := sortClauses[f.Sort]
	if !ok {
		orderBy = sortClauses["name"]
	}
	query += " ORDER BY " + orderBy + " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, c)
	}

	return categories, total, nil
}

func (repository *PostgresRepository) ListActive(ctx context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC`,
		categoryColumns(), schema.Category.Table, schema.Category.IsActive, schema.Category.Name,
	)

	rows, err := repository.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_active_categories")
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, c)
	}

	return categories, nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		categoryColumns(), schema.Category.Table, schema.Category.ID,
	)

	c, err := scanCategory(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_category")
	}
	return c, nil
}

func (repository *PostgresRepository) FindByNameFold(ctx context.Context, name, excludeID string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1) AND ($2 = '' OR %s <> $2)`,
		categoryColumns(), schema.Category.Table, schema.Category.Name, schema.Category.ID,
	)

	c, err := scanCategory(repository.db.QueryRow(ctx, query, name, excludeID))
	if err != nil {
		return nil, dberr.Wrap(err, "find_category_by_name")
	}
	return c, nil
}

func (repository *PostgresRepository) Create(ctx context.Context, c *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.Category.Table, schema.Category.ID, schema.Category.Name, schema.Category.Description,
		schema.Category.Color, schema.Category.IsActive, schema.Category.CreatedAt, schema.Category.UpdatedAt,
		schema.Category.CreatedAt, schema.Category.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.Color, c.IsActive).
		Scan(&c.CreatedAt, &c.UpdatedAt)

	// Backstop: the unique index on lower(name) catches creates that raced
	// past the application-level uniqueness check.
	if dberr.IsUniqueViolation(err, schema.ConstraintCategoryNameLower) {
		return apperr.DuplicateName(c.Name)
	}
	return dberr.Wrap(err, "create_category")
}

func (repository *PostgresRepository) Update(ctx context.Context, c *Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Category.Table, schema.Category.Name, schema.Category.Description,
		schema.Category.Color, schema.Category.IsActive, schema.Category.UpdatedAt,
		schema.Category.ID, schema.Category.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.Color, c.IsActive).
		Scan(&c.UpdatedAt)

	if dberr.IsUniqueViolation(err, schema.ConstraintCategoryNameLower) {
		return apperr.DuplicateName(c.Name)
	}
	return dberr.Wrap(err, "update_category")
}

func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Category.Table, schema.Category.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_category")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) SetActive(ctx context.Context, id string, active bool) (*Category, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Category.Table, schema.Category.IsActive, schema.Category.UpdatedAt,
		schema.Category.ID, categoryColumns(),
	)

	c, err := scanCategory(repository.db.QueryRow(ctx, query, id, active))
	if err != nil {
		return nil, dberr.Wrap(err, "set_category_active")
	}
	return c, nil
}

func (repository *PostgresRepository) CountBooks(ctx context.Context, categoryID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`,
		schema.Book.Table, schema.Book.CategoryID,
	)

	var count int
	if err := repository.db.QueryRow(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_category_books")
	}
	return count, nil
}

func (repository *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	countQuery := fmt.Sprintf(`
		SELECT count(*),
		       count(*) FILTER (WHERE %s),
		       count(*) FILTER (WHERE NOT %s)
		FROM %s
	`, schema.Category.IsActive, schema.Category.IsActive, schema.Category.Table)

	if err := repository.db.QueryRow(ctx, countQuery).Scan(&stats.Total, &stats.Active, &stats.Inactive); err != nil {
		return nil, dberr.Wrap(err, "category_stats")
	}

	perCategoryQuery := fmt.Sprintf(`
		SELECT c.%s, c.%s, count(b.%s)
		FROM %s c
		LEFT JOIN %s b ON b.%s = c.%s
		GROUP BY c.%s, c.%s
		ORDER BY count(b.%s) DESC, c.%s ASC
	`,
		schema.Category.ID, schema.Category.Name, schema.Book.ID,
		schema.Category.Table, schema.Book.Table, schema.Book.CategoryID, schema.Category.ID,
		schema.Category.ID, schema.Category.Name,
		schema.Book.ID, schema.Category.Name,
	)

	rows, err := repository.db.Query(ctx, perCategoryQuery)
	if err != nil {
		return nil, dberr.Wrap(err, "category_stats_breakdown")
	}
	defer rows.Close()

	for rows.Next() {
		var row BookCount
		if err := rows.Scan(&row.CategoryID, &row.Name, &row.Books); err != nil {
			return nil, dberr.Wrap(err, "scan_category_stats")
		}
		stats.BooksPerCategory = append(stats.BooksPerCategory, row)
	}

	return stats, nil
}
