package domain

import (
	"context"
	"time"
)

// BookingStats is a point-in-time snapshot over a time range. Growth fields
// compare against the preceding period of equal length.
type BookingStats struct {
	RangeDays       int       `json:"range_days"`
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	TotalBookings   int64     `json:"total_bookings"`
	ActiveUsers     int64     `json:"active_users"`
	CancelledCount  int64     `json:"cancelled_count"`
	AttendedCount   int64     `json:"attended_count"`
	NoShowCount     int64     `json:"no_show_count"`
	CreditsRedeemed int64     `json:"credits_redeemed"`
	TotalRevenue    float64   `json:"total_revenue"`
	BookingGrowth   int       `json:"booking_growth"` // percent vs previous period
	RevenueGrowth   int       `json:"revenue_growth"`
}

type RevenuePoint struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
}

type ClassUtilization struct {
	ClassID     int64     `json:"class_id"`
	Name        string    `json:"name"`
	StartTime   time.Time `json:"start_time"`
	Capacity    int       `json:"capacity"`
	Booked      int64     `json:"booked"`
	Utilization float64   `json:"utilization_rate"` // percent
}

// OnboardingFunnel counts home users per stage status.
type OnboardingFunnel struct {
	TotalHomeUsers int64                                      `json:"total_home_users"`
	Eligible       int64                                      `json:"eligible"`
	MedicalHolds   int64                                      `json:"medical_holds"`
	ByStage        map[OnboardingStage]map[StageStatus]int64  `json:"by_stage"`
}

// RawBookingRow is the flat export shape consumed by the XLSX writer.
type RawBookingRow struct {
	BookingID    int64
	UserEmail    string
	Kind         BookingKind
	EntityID     int64
	EntityName   string
	Status       BookingStatus
	CreditAmount int
	StartTime    time.Time
	CreatedAt    time.Time
}

type ReportRepository interface {
	// BookingCounts returns totals for bookings created in [from, to).
	BookingCounts(ctx context.Context, from, to time.Time) (total, cancelled, attended, noShow, activeUsers, creditsRedeemed int64, err error)
	DailyRedeemedCredits(ctx context.Context, from, to time.Time) (map[time.Time]int64, error)
	ClassUtilization(ctx context.Context, from, to time.Time) ([]ClassUtilization, error)
	ExportBookings(ctx context.Context, from, to time.Time) ([]RawBookingRow, error)
}

type ReportUsecase interface {
	BookingStats(ctx context.Context, rangeDays int) (*BookingStats, error)
	RevenueTrend(ctx context.Context, rangeDays int) ([]RevenuePoint, error)
	ClassUtilization(ctx context.Context, rangeDays int) ([]ClassUtilization, error)
	OnboardingFunnel(ctx context.Context) (*OnboardingFunnel, error)
	// ExportBookingsXLSX renders the range as a spreadsheet and returns the
	// file bytes plus a suggested filename.
	ExportBookingsXLSX(ctx context.Context, rangeDays int) ([]byte, string, error)
}
