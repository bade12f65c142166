package models

import "time"

// PushEndpoint is one registered browser push subscription. The endpoint URL
// itself is the natural key: re-subscribing from the same browser overwrites
// the key material in place, and pruning deletes by endpoint.
type PushEndpoint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Endpoint  string    `gorm:"type:varchar(500);not null;uniqueIndex:ux_push_endpoints_endpoint" json:"endpoint"`
	P256dh    string    `gorm:"type:varchar(255);not null" json:"p256dh"`
	Auth      string    `gorm:"type:varchar(255);not null" json:"auth"`
	Chapa     string    `gorm:"type:varchar(32);not null;default:'';index" json:"chapa,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PushEndpoint) TableName() string {
	return "push_endpoints"
}
