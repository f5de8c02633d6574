package domain

import "github.com/shopspring/decimal"

// DashboardStats are the aggregate counts shown to operators.
type DashboardStats struct {
	TotalUsers            int64           `json:"totalUsers"`
	TotalRequests         int64           `json:"totalRequests"`
	PendingReviews        int64           `json:"pendingReviews"`
	TodayRequests         int64           `json:"todayRequests"`
	TotalPurchasedCredits int64           `json:"totalPurchasedCredits"`
	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
}
