package models

import "time"

// PermissionOverride replaces the built-in displayability of a permission key.
type PermissionOverride struct {
	Key         string    `gorm:"type:varchar(255);primaryKey"` // Permission key.
	Displayable bool      `gorm:"not null"`                     // Whether the key is shown.
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime"`      // Last update timestamp.
}
