package model

import (
	"time"

	"gorm.io/gorm"
)

// VenueReview is a customer review of a venue. A user may review the same
// venue more than once; no uniqueness constraint exists.
type VenueReview struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VenueID uint   `gorm:"not null;index" json:"venue_id"`
	Venue   Venue  `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	Rating  int    `gorm:"not null" json:"rating"` // 1-5
	Comment string `gorm:"type:text" json:"comment"`

	// Owner reply, embedded on the review row. A reply counts as present
	// only when its trimmed message is non-empty.
	ReplyMessage string     `gorm:"type:text" json:"reply_message,omitempty"`
	ReplyUserID  *uint      `json:"reply_user_id,omitempty"`
	ReplyUser    *User      `gorm:"foreignKey:ReplyUserID" json:"-"`
	RepliedAt    *time.Time `json:"replied_at,omitempty"`
}

func (VenueReview) TableName() string {
	return "venue_reviews"
}
