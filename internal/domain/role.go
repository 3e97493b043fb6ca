package domain

// Role is a named set of permission strings assigned to admins.
// Permissions are static configuration data and are not enforced by the API.
type Role struct {
	BaseModel
	Name        string   `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string   `gorm:"size:255" json:"description"`
	Permissions []string `gorm:"serializer:json" json:"permissions"`
}

// Permissions lists every permission a role may carry.
var Permissions = []string{
	"users:read", "users:write",
	"admins:read", "admins:write",
	"vendors:read", "vendors:write",
	"articles:read", "articles:write",
	"reviews:read", "reviews:write",
	"reports:read", "reports:write",
	"locations:read", "locations:write",
	"campaigns:read", "campaigns:write",
	"students:read", "students:write",
	"roles:read", "roles:write",
	"vouchers:read", "vouchers:write",
}
