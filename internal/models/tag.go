package models

type Tag struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
}

type Emoji struct {
	ID    uint64 `gorm:"primarykey" json:"id"`
	Name  string `gorm:"type:varchar(20);not null" json:"name"`
	Image string `gorm:"type:varchar(255);not null" json:"image"`
	Slug  string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
}

func (Emoji) TableName() string {
	return "emojis"
}
