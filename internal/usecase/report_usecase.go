package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
)

type ReportConfig struct {
	// RevenuePerCredit converts redeemed credits into a currency figure for
	// dashboard purposes. It is a policy value, not ledger data.
	RevenuePerCredit float64
}

type reportUsecase struct {
	reportRepo     domain.ReportRepository
	onboardingRepo domain.OnboardingRepository
	cfg            ReportConfig
}

func NewReportUsecase(reportRepo domain.ReportRepository, onboardingRepo domain.OnboardingRepository, cfg ReportConfig) domain.ReportUsecase {
	return &reportUsecase{
		reportRepo:     reportRepo,
		onboardingRepo: onboardingRepo,
		cfg:            cfg,
	}
}

func (u *reportUsecase) BookingStats(ctx context.Context, rangeDays int) (*domain.BookingStats, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}
	rangeDays = clampRangeDays(rangeDays)

	to := time.Now()
	from := to.AddDate(0, 0, -rangeDays)
	prevFrom := from.AddDate(0, 0, -rangeDays)

	total, cancelled, attended, noShow, activeUsers, redeemed, err := u.reportRepo.BookingCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	prevTotal, _, _, _, _, prevRedeemed, err := u.reportRepo.BookingCounts(ctx, prevFrom, from)
	if err != nil {
		return nil, err
	}

	revenue := float64(redeemed) * u.cfg.RevenuePerCredit
	prevRevenue := float64(prevRedeemed) * u.cfg.RevenuePerCredit

	return &domain.BookingStats{
		RangeDays:       rangeDays,
		From:            from,
		To:              to,
		TotalBookings:   total,
		ActiveUsers:     activeUsers,
		CancelledCount:  cancelled,
		AttendedCount:   attended,
		NoShowCount:     noShow,
		CreditsRedeemed: redeemed,
		TotalRevenue:    revenue,
		BookingGrowth:   growthPercent(float64(prevTotal), float64(total)),
		RevenueGrowth:   growthPercent(prevRevenue, revenue),
	}, nil
}

func (u *reportUsecase) RevenueTrend(ctx context.Context, rangeDays int) ([]domain.RevenuePoint, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}
	rangeDays = clampRangeDays(rangeDays)

	to := time.Now()
	from := to.AddDate(0, 0, -rangeDays)

	daily, err := u.reportRepo.DailyRedeemedCredits(ctx, from, to)
	if err != nil {
		return nil, err
	}

	points := make([]domain.RevenuePoint, 0, len(daily))
	for day, credits := range daily {
		points = append(points, domain.RevenuePoint{
			Date:    day,
			Revenue: float64(credits) * u.cfg.RevenuePerCredit,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (u *reportUsecase) ClassUtilization(ctx context.Context, rangeDays int) ([]domain.ClassUtilization, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}
	rangeDays = clampRangeDays(rangeDays)

	to := time.Now()
	from := to.AddDate(0, 0, -rangeDays)
	return u.reportRepo.ClassUtilization(ctx, from, to)
}

func (u *reportUsecase) OnboardingFunnel(ctx context.Context) (*domain.OnboardingFunnel, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}

	byStage, err := u.onboardingRepo.CountByStageStatus(ctx)
	if err != nil {
		return nil, err
	}
	total, eligible, medicalHolds, err := u.onboardingRepo.CountEligibility(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.OnboardingFunnel{
		TotalHomeUsers: total,
		Eligible:       eligible,
		MedicalHolds:   medicalHolds,
		ByStage:        byStage,
	}, nil
}

// ExportBookingsXLSX renders every booking in the range as a spreadsheet.
func (u *reportUsecase) ExportBookingsXLSX(ctx context.Context, rangeDays int) ([]byte, string, error) {
	if !isStaff(ctx) {
		return nil, "", apperror.Forbidden("Staff role required")
	}
	rangeDays = clampRangeDays(rangeDays)

	to := time.Now()
	from := to.AddDate(0, 0, -rangeDays)

	rows, err := u.reportRepo.ExportBookings(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheetName := "Bookings"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"BOOKING ID", "USER EMAIL", "TYPE", "INSTANCE", "STATUS", "CREDITS", "START TIME", "BOOKED AT"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, r := range rows {
		values := []interface{}{
			r.BookingID,
			r.UserEmail,
			string(r.Kind),
			r.EntityName,
			string(r.Status),
			r.CreditAmount,
			r.StartTime.Format("2006-01-02 15:04"),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func clampRangeDays(days int) int {
	if days < 1 {
		return 30
	}
	if days > 365 {
		return 365
	}
	return days
}

// growthPercent rounds toward zero; a zero previous period reports 100%
// growth for any current activity.
func growthPercent(previous, current float64) int {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return int((current - previous) / previous * 100)
}
