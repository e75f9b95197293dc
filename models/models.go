// Package models defines the GORM-mapped rows persisted by
// internal/fragstore.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// FragmentRow is the persisted form of one incremental-compilation
// fragment for one emit target: a top-level declaration keyed by ID
// (derived from FileID, DeclPath and Target) with its TokenHash, plus its
// cached artifact for Target and
// the dependency fingerprint used for transitive dirty propagation.
type FragmentRow struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	FileID    string `gorm:"type:varchar(64);index;not null"`
	DeclPath  string `gorm:"type:varchar(255);not null"`
	TokenHash string `gorm:"type:varchar(64);not null"`
	Target    string `gorm:"type:varchar(16);not null"` // "c" or "rust"

	Artifact string `gorm:"type:text"`

	// Dependencies lists the fragment ids this fragment's artifact was
	// built against, so a dependency going dirty can propagate.
	Dependencies datatypes.JSON `gorm:"type:jsonb"`

	Dirty bool `gorm:"default:true"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (FragmentRow) TableName() string { return "fragment_rows" }
