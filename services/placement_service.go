package services

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/gorm"
)

// PlacementService handles placement listing and aggregate rollups
type PlacementService struct {
	db *gorm.DB
}

// NewPlacementService creates a new placement service
func NewPlacementService(db *gorm.DB) *PlacementService {
	return &PlacementService{db: db}
}

// ListPlacementsOptions represents filters for listing placements
type ListPlacementsOptions struct {
	Year       int
	Department string
	Company    string
	Limit      int
	Offset     int
}

// List returns placement records, newest year first
func (s *PlacementService) List(ctx context.Context, opts ListPlacementsOptions) ([]model.Placement, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Placement{})

	if opts.Year != 0 {
		query = query.Where("year_of_placement = ?", opts.Year)
	}
	if opts.Department != "" {
		query = query.Where("department = ?", opts.Department)
	}
	if opts.Company != "" {
		query = query.Where("LOWER(company_name) LIKE ?", "%"+opts.Company+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count placements: %w", err)
	}

	var placements []model.Placement
	if err := query.
		Order("year_of_placement DESC, package DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&placements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list placements: %w", err)
	}

	return placements, total, nil
}

// YearStats is the per-year rollup
type YearStats struct {
	Year       int     `json:"year"`
	Placements int64   `json:"placements"`
	AvgPackage float64 `json:"avg_package"`
	MaxPackage float64 `json:"max_package"`
}

// DepartmentStats is the per-department rollup
type DepartmentStats struct {
	Department string  `json:"department"`
	Placements int64   `json:"placements"`
	AvgPackage float64 `json:"avg_package"`
}

// PlacementStats bundles the aggregate rollups
type PlacementStats struct {
	Total         int64             `json:"total"`
	ByYear        []YearStats       `json:"by_year"`
	ByDepartment  []DepartmentStats `json:"by_department"`
	TopCompanies  []CompanyStats    `json:"top_companies"`
	HighestOffer  float64           `json:"highest_offer"`
	OverallAvgLPA float64           `json:"overall_avg_package"`
}

// CompanyStats is the per-company rollup
type CompanyStats struct {
	CompanyName string `json:"company_name"`
	Placements  int64  `json:"placements"`
}

// Stats computes the aggregate rollups over all placement records
func (s *PlacementService) Stats(ctx context.Context) (*PlacementStats, error) {
	stats := &PlacementStats{}

	db := s.db.WithContext(ctx).Model(&model.Placement{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count placements: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.Placement{}).
		Select("year_of_placement AS year, COUNT(*) AS placements, AVG(package) AS avg_package, MAX(package) AS max_package").
		Group("year_of_placement").
		Order("year DESC").
		Scan(&stats.ByYear).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by year: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.Placement{}).
		Select("department, COUNT(*) AS placements, AVG(package) AS avg_package").
		Group("department").
		Order("placements DESC").
		Scan(&stats.ByDepartment).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by department: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.Placement{}).
		Select("company_name, COUNT(*) AS placements").
		Group("company_name").
		Order("placements DESC").
		Limit(10).
		Scan(&stats.TopCompanies).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate companies: %w", err)
	}

	if stats.Total > 0 {
		row := s.db.WithContext(ctx).Model(&model.Placement{}).
			Select("MAX(package) AS highest, AVG(package) AS average").
			Row()
		if err := row.Scan(&stats.HighestOffer, &stats.OverallAvgLPA); err != nil {
			return nil, fmt.Errorf("failed to compute overall stats: %w", err)
		}
	}

	return stats, nil
}
