package services

import (
	"context"
	"fmt"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService builds workload summaries
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// AssigneeWorkload counts claims per assignee
type AssigneeWorkload struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Total     int64  `json:"total"`
	Processed int64  `json:"processed"`
}

// DashboardSummary represents dashboard data
type DashboardSummary struct {
	TotalClaims int64                  `json:"totalClaims"`
	Unassigned  int64                  `json:"unassigned"`
	ByStage     map[domain.Stage]int64 `json:"byStage"`
	ByStatus    map[string]int64       `json:"byStatus"`
	TotalCharge decimal.Decimal        `json:"totalCharge"`
	TotalPaid   decimal.Decimal        `json:"totalPaid"`
	Assignees   []AssigneeWorkload     `json:"assignees"`
}

type groupCount struct {
	Bucket *string
	Count  int64
}

// Summary returns claim counts by stage, status and assignee
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	db := s.db.WithContext(ctx)
	data := &DashboardSummary{
		ByStage:  make(map[domain.Stage]int64),
		ByStatus: make(map[string]int64),
	}
	for _, stage := range domain.Stages() {
		data.ByStage[stage] = 0
	}

	if err := db.Model(&models.Claim{}).Count(&data.TotalClaims).Error; err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}
	if err := db.Model(&models.Claim{}).Where("assigned_to_id IS NULL").Count(&data.Unassigned).Error; err != nil {
		return nil, fmt.Errorf("count unassigned: %w", err)
	}

	var stages []groupCount
	if err := db.Model(&models.Claim{}).Select("stage AS bucket, COUNT(*) AS count").Group("stage").Scan(&stages).Error; err != nil {
		return nil, fmt.Errorf("count by stage: %w", err)
	}
	for _, g := range stages {
		if g.Bucket != nil {
			data.ByStage[domain.Stage(*g.Bucket)] = g.Count
		}
	}

	var statuses []groupCount
	if err := db.Model(&models.Claim{}).Select("claim_status AS bucket, COUNT(*) AS count").Group("claim_status").Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	for _, g := range statuses {
		key := "NONE"
		if g.Bucket != nil {
			key = *g.Bucket
		}
		data.ByStatus[key] = g.Count
	}

	sums := db.Model(&models.Claim{}).Select("COALESCE(SUM(charge_amount), 0), COALESCE(SUM(paid_amount), 0)")
	if err := sums.Row().Scan(&data.TotalCharge, &data.TotalPaid); err != nil {
		return nil, fmt.Errorf("sum amounts: %w", err)
	}

	err := db.Model(&models.Claim{}).
		Select("users.id AS user_id, users.name AS name, COUNT(*) AS total, SUM(CASE WHEN claims.stage = ? THEN 1 ELSE 0 END) AS processed", domain.StageProcessed).
		Joins("JOIN users ON users.id = claims.assigned_to_id").
		Group("users.id, users.name").
		Order("total DESC, users.name ASC").
		Scan(&data.Assignees).Error
	if err != nil {
		return nil, fmt.Errorf("count by assignee: %w", err)
	}

	return data, nil
}
