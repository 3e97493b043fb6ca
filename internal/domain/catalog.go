package domain

// Vendor is a merchant selling through the platform.
type Vendor struct {
	BaseModel
	Name         string `gorm:"size:150;not null" json:"name"`
	ContactEmail string `gorm:"size:255;uniqueIndex;not null" json:"contact_email"`
	Phone        string `gorm:"size:32" json:"phone"`
	Status       string `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	CityID       *uint  `gorm:"index" json:"city_id"`
	Address      string `gorm:"size:255" json:"address"`
}

// Article is an editorial post.
type Article struct {
	BaseModel
	Title    string `gorm:"size:200;not null" json:"title"`
	Slug     string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Body     string `gorm:"type:text" json:"body"`
	Status   string `gorm:"size:16;not null;default:DRAFT;index" json:"status"`
	AuthorID uint   `gorm:"index" json:"author_id"`
}

// Review is a user's rating of a vendor.
type Review struct {
	BaseModel
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	VendorID uint   `gorm:"index;not null" json:"vendor_id"`
	Rating   int    `gorm:"not null" json:"rating"`
	Comment  string `gorm:"size:1000" json:"comment"`
	Status   string `gorm:"size:16;not null;default:PENDING;index" json:"status"`
}

// Report is an abuse or quality report raised against a subject record.
type Report struct {
	BaseModel
	SubjectType string `gorm:"size:32;not null;index" json:"subject_type"`
	SubjectID   uint   `gorm:"not null" json:"subject_id"`
	Reason      string `gorm:"size:500;not null" json:"reason"`
	Status      string `gorm:"size:16;not null;default:OPEN;index" json:"status"`
	ReporterID  *uint  `json:"reporter_id"`
}
