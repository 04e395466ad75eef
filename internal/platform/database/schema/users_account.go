package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table       string
	ID          string
	GoogleID    string
	Email       string
	DisplayName string
	AvatarURL   string
	Role        string
	CreatedAt   string
	UpdatedAt   string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	GoogleID:    "googleid",
	Email:       "email",
	DisplayName: "displayname",
	AvatarURL:   "avatarurl",
	Role:        "role",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{t.ID, t.GoogleID, t.Email, t.DisplayName, t.AvatarURL, t.Role, t.CreatedAt, t.UpdatedAt}
}

const (
	ConstraintAccountGoogleID = "uq_account_google_id"
)
