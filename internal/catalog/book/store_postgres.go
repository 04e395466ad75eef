package book

import (
	"context"
	"fmt"
	"strconv"
	"strings"

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

// bookColumns is the SELECT list shared by every read: the book row aliased
// as b, plus the joined category's name and color for the inlined reference.
func bookColumns() string {
	cols := make([]string, 0, len(schema.Book.Columns())+2)
	for _, col := range schema.Book.Columns() {
		cols = append(cols, "b."+col)
	}
	cols = append(cols, "c."+schema.Category.Name, "c."+schema.Category.Color)
	return strings.Join(cols, ", ")
}

// fromJoin is the FROM clause matching [bookColumns]. The category join is
// inner: the foreign key guarantees the referenced row exists, and
// categories with books are never hard-deleted.
func fromJoin() string {
	return fmt.Sprintf("%s b JOIN %s c ON c.%s = b.%s",
		schema.Book.Table, schema.Category.Table, schema.Category.ID, schema.Book.CategoryID,
	)
}

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	b := &Book{Category: &CategoryRef{}}
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.Publisher, &b.CategoryID,
		&b.PublishedDate, &b.Pages, &b.Language, &b.Price, &b.Stock, &b.Status,
		&b.CoverImage, &b.AverageRating, &b.ReviewCount, &b.IsFeatured, &b.CreatedAt, &b.UpdatedAt,
		&b.Category.Name, &b.Category.Color,
	)
	if err != nil {
		return nil, err
	}
	b.Category.ID = b.CategoryID
	return b, nil
}

// sortClauses whitelists the client-facing sort keys; anything else falls
// back to newest first.
var sortClauses = map[string]string{
	"title":          "b." + schema.Book.Title + " ASC",
	"-title":         "b." + schema.Book.Title + " DESC",
	"price":          "b." + schema.Book.Price + " ASC",
	"-price":         "b." + schema.Book.Price + " DESC",
	"publishedDate":  "b." + schema.Book.PublishedDate + " ASC",
	"-publishedDate": "b." + schema.Book.PublishedDate + " DESC",
	"createdAt":      "b." + schema.Book.CreatedAt + " ASC",
	"-createdAt":     "b." + schema.Book.CreatedAt + " DESC",
	"rating":         "b." + schema.Book.AverageRating + " ASC",
	"-rating":        "b." + schema.Book.AverageRating + " DESC",
}

func (repository *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Book, int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE TRUE`, bookColumns(), fromJoin())
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s b WHERE TRUE`, schema.Book.Table)

	args := []any{}
	addClause := func(clause string) {
		query += clause
		countQuery += clause
	}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		addClause(fmt.Sprintf(" AND (b.%s ILIKE $%s OR b.%s ILIKE $%s OR b.%s ILIKE $%s OR b.%s ILIKE $%s)",
			schema.Book.Title, n, schema.Book.Author, n, schema.Book.ISBN, n, schema.Book.Description, n,
		))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		addClause(fmt.Sprintf(" AND b.%s = $%d", schema.Book.CategoryID, len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		addClause(fmt.Sprintf(" AND b.%s = $%d", schema.Book.Status, len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		addClause(fmt.Sprintf(" AND b.%s >= $%d", schema.Book.Price, len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		addClause(fmt.Sprintf(" AND b.%s <= $%d", schema.Book.Price, len(args)))
	}
	if f.Language != "" {
		args = append(args, f.Language)
		addClause(fmt.Sprintf(" AND b.%s = $%d", schema.Book.Language, len(args)))
	}
	if f.IsFeatured != nil {
		args = append(args, *f.IsFeatured)
		addClause(fmt.Sprintf(" AND b.%s = $%d", schema.Book.IsFeatured, len(args)))
	}

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_books")
	}

	orderBy, ok := sortClauses[f.Sort]
	if !ok {
		orderBy = sortClauses["-createdAt"]
	}
	query += " ORDER BY " + orderBy + " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, b)
	}

	return books, total, nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE b.%s = $1`,
		bookColumns(), fromJoin(), schema.Book.ID,
	)

	b, err := scanBook(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_book")
	}
	return b, nil
}

func (repository *PostgresRepository) FindByISBN(ctx context.Context, isbn, excludeID string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE b.%s = $1 AND ($2 = '' OR b.%s <> $2)`,
		bookColumns(), fromJoin(), schema.Book.ISBN, schema.Book.ID,
	)

	b, err := scanBook(repository.db.QueryRow(ctx, query, isbn, excludeID))
	if err != nil {
		return nil, dberr.Wrap(err, "find_book_by_isbn")
	}
	return b, nil
}

func (repository *PostgresRepository) Create(ctx context.Context, b *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.Book.Table, strings.Join(schema.Book.Columns(), ", "),
		schema.Book.CreatedAt, schema.Book.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		b.ID, b.Title, b.Author, b.ISBN, b.Description, b.Publisher, b.CategoryID,
		b.PublishedDate, b.Pages, b.Language, b.Price, b.Stock, b.Status,
		b.CoverImage, b.AverageRating, b.ReviewCount, b.IsFeatured,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	// Backstops: the unique index on isbn and the category foreign key
	// catch writes that raced past the application-level checks.
	if dberr.IsUniqueViolation(err, schema.ConstraintBookISBN) {
		return apperr.DuplicateISBN(b.ISBN)
	}
	if dberr.IsForeignKeyViolation(err, schema.ConstraintBookCategory) {
		return apperr.InvalidReference("Category", b.CategoryID)
	}
	return dberr.Wrap(err, "create_book")
}

func (repository *PostgresRepository) Update(ctx context.Context, b *Book) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9,
		    %s = $10, %s = $11, %s = $12, %s = $13, %s = $14, %s = $15, %s = $16, %s = $17, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Book.Table,
		schema.Book.Title, schema.Book.Author, schema.Book.ISBN, schema.Book.Description,
		schema.Book.Publisher, schema.Book.CategoryID, schema.Book.PublishedDate, schema.Book.Pages,
		schema.Book.Language, schema.Book.Price, schema.Book.Stock, schema.Book.Status,
		schema.Book.CoverImage, schema.Book.AverageRating, schema.Book.ReviewCount, schema.Book.IsFeatured,
		schema.Book.UpdatedAt,
		schema.Book.ID, schema.Book.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		b.ID, b.Title, b.Author, b.ISBN, b.Description, b.Publisher, b.CategoryID,
		b.PublishedDate, b.Pages, b.Language, b.Price, b.Stock, b.Status,
		b.CoverImage, b.AverageRating, b.ReviewCount, b.IsFeatured,
	).Scan(&b.UpdatedAt)

	if dberr.IsUniqueViolation(err, schema.ConstraintBookISBN) {
		return apperr.DuplicateISBN(b.ISBN)
	}
	if dberr.IsForeignKeyViolation(err, schema.ConstraintBookCategory) {
		return apperr.InvalidReference("Category", b.CategoryID)
	}
	return dberr.Wrap(err, "update_book")
}

func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Book.Table, schema.Book.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// stockStatusCase mirrors the service's status reconciliation inside the
// statement so stock and status move together atomically. newStock is a SQL
// expression for the post-update level.
func stockStatusCase(newStock string) string {
	return fmt.Sprintf(`CASE
		WHEN %[1]s IN ('%[2]s', '%[3]s') THEN %[1]s
		WHEN %[4]s = 0 THEN '%[5]s'
		WHEN %[1]s = '%[5]s' THEN '%[6]s'
		ELSE %[1]s
	END`,
		schema.Book.Status, StatusDiscontinued, StatusUpcoming,
		newStock, StatusOutOfStock, StatusAvailable,
	)
}

func (repository *PostgresRepository) AdjustStock(ctx context.Context, id string, delta int) (*Book, error) {
	// The stock floor lives in the WHERE clause: a reduction that would
	// overdraw matches no rows and leaves the row untouched.
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = %s, %s = NOW()
		WHERE %s = $1 AND %s + $2 >= 0
		RETURNING %s
	`,
		schema.Book.Table,
		schema.Book.Stock, schema.Book.Stock,
		schema.Book.Status, stockStatusCase(schema.Book.Stock+" + $2"),
		schema.Book.UpdatedAt,
		schema.Book.ID, schema.Book.Stock,
		schema.Book.ID,
	)

	var updatedID string
	if err := repository.db.QueryRow(ctx, query, id, delta).Scan(&updatedID); err != nil {
		return nil, dberr.Wrap(err, "adjust_book_stock")
	}
	return repository.FindByID(ctx, updatedID)
}

func (repository *PostgresRepository) SetStock(ctx context.Context, id string, quantity int) (*Book, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = %s, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Book.Table,
		schema.Book.Stock,
		schema.Book.Status, stockStatusCase("$2"),
		schema.Book.UpdatedAt,
		schema.Book.ID,
		schema.Book.ID,
	)

	var updatedID string
	if err := repository.db.QueryRow(ctx, query, id, quantity).Scan(&updatedID); err != nil {
		return nil, dberr.Wrap(err, "set_book_stock")
	}
	return repository.FindByID(ctx, updatedID)
}

func (repository *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	totalsQuery := fmt.Sprintf(`
		SELECT count(*),
		       coalesce(sum(%s), 0),
		       coalesce(round(avg(%s)::numeric, 2), 0)::float8,
		       count(*) FILTER (WHERE %s)
		FROM %s
	`, schema.Book.Stock, schema.Book.Price, schema.Book.IsFeatured, schema.Book.Table)

	err := repository.db.QueryRow(ctx, totalsQuery).
		Scan(&stats.Total, &stats.TotalStock, &stats.AveragePrice, &stats.Featured)
	if err != nil {
		return nil, dberr.Wrap(err, "book_stats")
	}

	statusQuery := fmt.Sprintf(`SELECT %s, count(*) FROM %s GROUP BY %s ORDER BY count(*) DESC`,
		schema.Book.Status, schema.Book.Table, schema.Book.Status,
	)
	rows, err := repository.db.Query(ctx, statusQuery)
	if err != nil {
		return nil, dberr.Wrap(err, "book_stats_by_status")
	}
	defer rows.Close()
	for rows.Next() {
		var row StatusCount
		if err := rows.Scan(&row.Status, &row.Books); err != nil {
			return nil, dberr.Wrap(err, "scan_book_stats")
		}
		stats.ByStatus = append(stats.ByStatus, row)
	}
	rows.Close()

	languageQuery := fmt.Sprintf(`SELECT %s, count(*) FROM %s GROUP BY %s ORDER BY count(*) DESC`,
		schema.Book.Language, schema.Book.Table, schema.Book.Language,
	)
	rows, err = repository.db.Query(ctx, languageQuery)
	if err != nil {
		return nil, dberr.Wrap(err, "book_stats_by_language")
	}
	defer rows.Close()
	for rows.Next() {
		var row LanguageCount
		if err := rows.Scan(&row.Language, &row.Books); err != nil {
			return nil, dberr.Wrap(err, "scan_book_stats")
		}
		stats.ByLanguage = append(stats.ByLanguage, row)
	}

	return stats, nil
}
