package persistence

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/scope"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/persistence/datascope"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements contribution.ReportRepository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// Create inserts a report with its splits
func (r *GormReportRepository) Create(ctx context.Context, report *contribution.Report) error {
	model := models.ContributionReportModelFromDomain(report)
	return runInTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Splits").Create(model).Error; err != nil {
			return err
		}
		if len(model.Splits) == 0 {
			return nil
		}
		return tx.Create(&model.Splits).Error
	})
}

// FindByID finds a report with its splits
func (r *GormReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*contribution.Report, error) {
	var model models.ContributionReportModel
	if err := conn(ctx, r.db).
		Preload("Splits").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindVisible lists reports whose subject falls inside p
func (r *GormReportRepository) FindVisible(ctx context.Context, p scope.Predicate, filter contribution.ReportFilter) ([]*contribution.Report, int64, error) {
	f := filter.Filter.Normalize()

	query := conn(ctx, r.db).
		Model(&models.ContributionReportModel{}).
		Scopes(datascope.Members(p, "contribution_reports.subject_id"))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ReporterID != nil {
		query = query.Where("reporter_id = ?", *filter.ReporterID)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContributionReportModel
	if err := query.
		Preload("Splits").
		Order(reportSort.clause(f)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	reports := make([]*contribution.Report, len(rows))
	for i := range rows {
		reports[i] = rows[i].ToDomain()
	}
	return reports, total, nil
}

// SaveDecision persists the decision only while the stored row is pending.
// Concurrent reviewers race on this update; exactly one sees a row affected.
func (r *GormReportRepository) SaveDecision(ctx context.Context, report *contribution.Report) (bool, error) {
	result := conn(ctx, r.db).
		Model(&models.ContributionReportModel{}).
		Where("id = ? AND status = ?", report.ID, contribution.ReportStatusPending).
		Updates(map[string]any{
			"status":         report.Status,
			"note":           report.Note,
			"reviewed_by_id": report.ReviewedByID,
			"reviewed_at":    report.ReviewedAt,
			"version":        report.Version,
			"updated_at":     report.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GormLedgerRepository implements contribution.LedgerRepository using GORM.
// It never updates or deletes rows.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts confirmed contributions
func (r *GormLedgerRepository) Append(ctx context.Context, entries ...*contribution.Contribution) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.ContributionModel, len(entries))
	for i, e := range entries {
		rows[i] = models.ContributionModelFromDomain(e)
	}
	return conn(ctx, r.db).Create(&rows).Error
}

// FindByMember lists a member's contributions, newest first
func (r *GormLedgerRepository) FindByMember(ctx context.Context, memberID uuid.UUID) ([]*contribution.Contribution, error) {
	var rows []models.ContributionModel
	if err := conn(ctx, r.db).
		Where("member_id = ?", memberID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*contribution.Contribution, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// CountBySourceReport counts entries materialized from a report
func (r *GormLedgerRepository) CountBySourceReport(ctx context.Context, reportID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ContributionModel{}).
		Where("source_report_id = ?", reportID).
		Count(&count).Error
	return count, err
}

// SumByMember returns the confirmed total of a member
func (r *GormLedgerRepository) SumByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := conn(ctx, r.db).Model(&models.ContributionModel{}).
		Select("SUM(amount)").
		Where("member_id = ? AND confirmed = ?", memberID, true).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// ActiveMembers returns members inside p whose confirmed total reaches
// threshold, highest total first. The threshold is compared in Go so the
// comparison is exact on every driver.
func (r *GormLedgerRepository) ActiveMembers(ctx context.Context, p scope.Predicate, threshold decimal.Decimal) ([]contribution.MemberTotal, error) {
	var rows []struct {
		MemberID uuid.UUID
		Total    decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&models.ContributionModel{}).
		Scopes(datascope.Members(p, "contributions.member_id")).
		Select("member_id, SUM(amount) AS total").
		Where("confirmed = ?", true).
		Group("member_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	var out []contribution.MemberTotal
	for _, row := range rows {
		if row.Total.GreaterThanOrEqual(threshold) {
			out = append(out, contribution.MemberTotal{MemberID: row.MemberID, Total: row.Total})
		}
	}
	slices.SortFunc(out, func(a, b contribution.MemberTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return slices.Compare(a.MemberID[:], b.MemberID[:])
	})
	return out, nil
}
