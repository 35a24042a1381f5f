package models

import (
	"time"

	"gorm.io/datatypes"
)

// AddonVersion is a published release of an extension listing.
type AddonVersion struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AddonSlug string `gorm:"type:varchar(255);not null;index"` // Listing slug.
	Version   string `gorm:"type:varchar(64);not null"`        // Version string as published.

	Files []VersionFile `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE"` // Uploaded files.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// VersionFile is one uploaded file of a version with its declared permissions.
type VersionFile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	VersionID uint64 `gorm:"not null;index"`     // Owning version.
	Position  int    `gorm:"not null;default:0"` // Order within the version.

	Permissions         datatypes.JSONSlice[string] // Required permission keys.
	OptionalPermissions datatypes.JSONSlice[string] // Optional permission keys.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
