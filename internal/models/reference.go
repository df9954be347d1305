package models

// Sex is a lookup row referenced by User.
type Sex struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(20);index;not null" json:"name"`
}

func (Sex) TableName() string {
	return "sexes"
}

// Country is a lookup row referenced by User.
type Country struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);index;not null" json:"name"`
}

func (Country) TableName() string {
	return "countries"
}
