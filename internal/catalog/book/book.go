// Package book implements the book side of the library catalog: the domain
// entity, its request schemas, the write-path consistency rules (category
// references, ISBN uniqueness, stock/status coherence), and the HTTP surface.
package book

import "time"

// Status is the lifecycle state of a book listing.
type Status string

const (
	StatusAvailable    Status = "available"
	StatusOutOfStock   Status = "out-of-stock"
	StatusDiscontinued Status = "discontinued"
	StatusUpcoming     Status = "upcoming"
)

// Statuses is the closed set of listing states, in enum order.
var Statuses = []string{
	string(StatusAvailable),
	string(StatusOutOfStock),
	string(StatusDiscontinued),
	string(StatusUpcoming),
}

// Languages is the closed set of supported catalog languages.
var Languages = []string{
	"English", "Spanish", "French", "German",
	"Chinese", "Japanese", "Vietnamese", "Other",
}

// CategoryRef is the inlined view of the referenced category returned on
// book reads, so clients don't need a second request to label results.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Book is a single catalog listing. CategoryID is a non-owning reference to
// a [category.Category]; the referenced category must exist and be active at
// write time.
type Book struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Author        string       `json:"author"`
	ISBN          string       `json:"isbn"`
	Description   string       `json:"description"`
	Publisher     string       `json:"publisher"`
	CategoryID    string       `json:"category"`
	Category      *CategoryRef `json:"categoryDetails,omitempty"`
	PublishedDate time.Time    `json:"publishedDate"`
	Pages         int          `json:"pages"`
	Language      string       `json:"language"`
	Price         float64      `json:"price"`
	Stock         int          `json:"stock"`
	Status        Status       `json:"status"`
	CoverImage    *string      `json:"coverImage,omitempty"`
	AverageRating float64      `json:"averageRating"`
	ReviewCount   int          `json:"reviewCount"`
	IsFeatured    bool         `json:"isFeatured"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// StockOperation is the verb of a stock mutation.
type StockOperation string

const (
	OpAdd    StockOperation = "add"
	OpReduce StockOperation = "reduce"
	OpSet    StockOperation = "set"
)

// StockResult summarizes a successful stock mutation.
type StockResult struct {
	Operation StockOperation `json:"operation"`
	Quantity  int            `json:"quantity"`
	Stock     int            `json:"stock"`
	Status    Status         `json:"status"`
}

// Filter holds the parameters for a paginated book search.
type Filter struct {
	// Search matches title, author, ISBN, and description case-insensitively.
	Search     string
	CategoryID string
	Status     string
	MinPrice   *float64
	MaxPrice   *float64
	Language   string
	IsFeatured *bool
	// Sort is a whitelisted sort key, optionally prefixed with '-'.
	Sort string
}

// StatusCount is one row of the by-status aggregate in [Stats].
type StatusCount struct {
	Status Status `json:"status"`
	Books  int    `json:"books"`
}

// LanguageCount is one row of the by-language aggregate in [Stats].
type LanguageCount struct {
	Language string `json:"language"`
	Books    int    `json:"books"`
}

// Stats is the aggregate view served by the admin stats endpoint.
type Stats struct {
	Total        int             `json:"total"`
	TotalStock   int             `json:"totalStock"`
	AveragePrice float64         `json:"averagePrice"`
	Featured     int             `json:"featured"`
	ByStatus     []StatusCount   `json:"byStatus"`
	ByLanguage   []LanguageCount `json:"byLanguage"`
}

// Global field names for validation
const (
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldISBN          = "isbn"
	FieldDescription   = "description"
	FieldPublisher     = "publisher"
	FieldCategory      = "category"
	FieldPublishedDate = "publishedDate"
	FieldPages         = "pages"
	FieldLanguage      = "language"
	FieldPrice         = "price"
	FieldStock         = "stock"
	FieldStatus        = "status"
	FieldCoverImage    = "coverImage"
	FieldAverageRating = "averageRating"
	FieldReviewCount   = "reviewCount"
	FieldIsFeatured    = "isFeatured"
	FieldQuantity      = "quantity"
	FieldOperation     = "operation"
)

// reconcileStatus derives the listing state implied by a stock level.
//
// Applied only when the client did not choose a status itself: available
// and out-of-stock track the stock level as it crosses zero; discontinued
// and upcoming are manual states that stock changes never exit. An
// explicitly supplied status is never rewritten here — it is either
// accepted as-is or rejected by the coherence check. Kept as an explicit
// pure function (not a storage hook) so the rule is testable without a
// database.
func reconcileStatus(stock int, status Status) Status {
	switch status {
	case StatusDiscontinued, StatusUpcoming:
		return status
	}

	if stock == 0 {
		return StatusOutOfStock
	}
	if status == StatusOutOfStock {
		return StatusAvailable
	}
	return status
}

// statusContradicts reports whether an explicitly requested status is
// incompatible with the effective stock level. Only "available" with zero
// stock is contradictory; the reverse (positive stock, non-available
// status) is a legitimate manual state.
func statusContradicts(stock int, status Status) bool {
	return status == StatusAvailable && stock == 0
}
