package schema

// BookTable represents the 'catalog.book' table
type BookTable struct {
	Table         string
	ID            string
	Title         string
	Author        string
	ISBN          string
	Description   string
	Publisher     string
	CategoryID    string
	PublishedDate string
	Pages         string
	Language      string
	Price         string
	Stock         string
	Status        string
	CoverImage    string
	AverageRating string
	ReviewCount   string
	IsFeatured    string
	CreatedAt     string
	UpdatedAt     string
}

// Book is the schema definition for catalog.book
var Book = BookTable{
	Table:         "catalog.book",
	ID:            "id",
	Title:         "title",
	Author:        "author",
	ISBN:          "isbn",
	Description:   "description",
	Publisher:     "publisher",
	CategoryID:    "categoryid",
	PublishedDate: "publisheddate",
	Pages:         "pages",
	Language:      "language",
	Price:         "price",
	Stock:         "stock",
	Status:        "status",
	CoverImage:    "coverimage",
	AverageRating: "averagerating",
	ReviewCount:   "reviewcount",
	IsFeatured:    "isfeatured",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns all standard column names
func (t BookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Author, t.ISBN, t.Description, t.Publisher, t.CategoryID,
		t.PublishedDate, t.Pages, t.Language, t.Price, t.Stock, t.Status,
		t.CoverImage, t.AverageRating, t.ReviewCount, t.IsFeatured, t.CreatedAt, t.UpdatedAt,
	}
}

// Backstop constraint names referenced by the stores when classifying
// constraint-violation errors.
const (
	ConstraintBookISBN     = "uq_book_isbn"
	ConstraintBookCategory = "fk_book_category"
)
