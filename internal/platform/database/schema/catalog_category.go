package schema

// CategoryTable represents the 'catalog.category' table
type CategoryTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	Color       string
	IsActive    string
	CreatedAt   string
	UpdatedAt   string
}

// Category is the schema definition for catalog.category
var Category = CategoryTable{
	Table:       "catalog.category",
	ID:          "id",
	Name:        "name",
	Description: "description",
	Color:       "color",
	IsActive:    "isactive",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CategoryTable) Columns() []string {
	return []string{t.ID, t.Name, t.Description, t.Color, t.IsActive, t.CreatedAt, t.UpdatedAt}
}

// Backstop constraint names referenced by the stores when classifying
// unique-violation errors.
const (
	ConstraintCategoryNameLower = "uq_category_name_lower"
)
