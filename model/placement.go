package model

import (
	"time"

	"gorm.io/gorm"
)

// PlacementType represents how the placement was obtained
type PlacementType string

const (
	PlacementTypeCampus    PlacementType = "campus"
	PlacementTypeOffCampus PlacementType = "off-campus"
)

// Placement represents a student placement record. Students are referenced by
// their user code (natural key), not by row ID, so records survive spreadsheet
// round-trips. At most one live placement exists per (student_code, year);
// the unique index is partial so a soft-deleted record frees the pair for
// re-creation.
type Placement struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	StudentCode     string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_student_year,where:deleted_at IS NULL" json:"student_code"`
	StudentName     string         `gorm:"not null" json:"student_name"`
	CompanyName     string         `gorm:"not null;index" json:"company_name"`
	Package         float64        `gorm:"not null" json:"package"` // LPA
	YearOfPlacement int            `gorm:"not null;uniqueIndex:idx_student_year;index" json:"year_of_placement"`
	Department      string         `gorm:"type:varchar(100);index" json:"department"`
	Role            string         `gorm:"type:varchar(100)" json:"role"`
	Type            PlacementType  `gorm:"type:varchar(20);default:'campus'" json:"type"`
	AddedByID       uint           `gorm:"index" json:"added_by_id"`

	// Relationships
	AddedBy User `gorm:"foreignKey:AddedByID" json:"-"`
}
