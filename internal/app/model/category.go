package model

import (
	"time"

	"gorm.io/gorm"
)

// Category is a top-level venue category (e.g. "Banquet Hall", "Lawn").
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// Menu groups venues under a category on the browse surface.
type Menu struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CategoryID uint           `gorm:"index;not null" json:"category_id"`
	Category   Category       `gorm:"foreignKey:CategoryID" json:"-"`
	Name       string         `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Menu) TableName() string {
	return "menus"
}

// Submenu is a second-level grouping below a menu.
type Submenu struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	MenuID    uint           `gorm:"index;not null" json:"menu_id"`
	Menu      Menu           `gorm:"foreignKey:MenuID" json:"-"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Submenu) TableName() string {
	return "submenus"
}
