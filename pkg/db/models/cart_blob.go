package models

import "time"

// CartBlob is one serialized cart snapshot keyed by store key.
type CartBlob struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartBlob) TableName() string {
	return "cart_blobs"
}
