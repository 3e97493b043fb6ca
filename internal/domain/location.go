package domain

// State is a top-level administrative region.
type State struct {
	BaseModel
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Code string `gorm:"size:8;uniqueIndex;not null" json:"code"`
}

// City belongs to exactly one State.
type City struct {
	BaseModel
	Name    string `gorm:"size:100;not null;index" json:"name"`
	StateID uint   `gorm:"index;not null" json:"state_id"`
}
