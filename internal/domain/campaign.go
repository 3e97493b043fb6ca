package domain

import "time"

// Campaign is a time-boxed marketing campaign.
type Campaign struct {
	BaseModel
	Name     string    `gorm:"size:150;not null" json:"name"`
	Channel  string    `gorm:"size:32;not null;index" json:"channel"`
	Status   string    `gorm:"size:16;not null;default:DRAFT;index" json:"status"`
	Budget   int64     `gorm:"not null;default:0" json:"budget"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Student is a learner enrolled through a partner program.
type Student struct {
	BaseModel
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Grade     string `gorm:"size:16;index" json:"grade"`
	Status    string `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
}

// Voucher is a redeemable discount code.
type Voucher struct {
	BaseModel
	Code      string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Discount  int        `gorm:"not null" json:"discount"`
	Kind      string     `gorm:"size:16;not null;default:PERCENT" json:"kind"`
	ExpiresAt *time.Time `json:"expires_at"`
	Redeemed  bool       `gorm:"not null;default:false;index" json:"redeemed"`
}
