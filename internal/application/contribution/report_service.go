package contribution

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/domain/scope"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/domain/shared/valueobject"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const workflowReport = "report"

// ScopeAuthorizer answers whether an actor may act on another member
type ScopeAuthorizer interface {
	Scope(ctx context.Context, actor *identity.Actor) (scope.Predicate, *org.Hierarchy, error)
	AuthorizeSubject(ctx context.Context, actor *identity.Actor, subjectID uuid.UUID) (*identity.Actor, scope.Predicate, error)
}

// HouseholdReader returns the canonical household of a member
type HouseholdReader interface {
	MembersOf(ctx context.Context, actor *identity.Actor) ([]*identity.Actor, error)
}

// ReportService runs the contribution report workflow: submission with
// split validation, then review. Approval flips the report and appends the
// ledger entries in one transaction; notifications follow after commit
// through the event publisher.
type ReportService struct {
	reports    contribution.ReportRepository
	ledger     contribution.LedgerRepository
	actors     identity.ActorRepository
	households HouseholdReader
	access     ScopeAuthorizer
	receipts   shared.ReceiptStore
	tx         shared.TxManager
	clock      shared.Clock

	eventPublisher shared.EventPublisher
	metrics        *telemetry.WorkflowMetrics
}

// NewReportService creates a new ReportService
func NewReportService(
	reports contribution.ReportRepository,
	ledger contribution.LedgerRepository,
	actors identity.ActorRepository,
	households HouseholdReader,
	access ScopeAuthorizer,
	receipts shared.ReceiptStore,
	tx shared.TxManager,
	clock shared.Clock,
) *ReportService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &ReportService{
		reports:    reports,
		ledger:     ledger,
		actors:     actors,
		households: households,
		access:     access,
		receipts:   receipts,
		tx:         tx,
		clock:      clock,
	}
}

// SetEventPublisher sets the publisher used after commit
func (s *ReportService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the workflow counters
func (s *ReportService) SetMetrics(m *telemetry.WorkflowMetrics) {
	s.metrics = m
}

// Submit validates and stores a pending report.
func (s *ReportService) Submit(ctx context.Context, reporter *identity.Actor, req SubmitReportRequest) (resp *ReportResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contribution", "submit",
		attribute.String("reporter_id", reporter.ID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := valueobject.ValidateAmount("amount", req.Amount); err != nil {
		return nil, err
	}
	if req.DepositDate.IsZero() {
		return nil, shared.NewValidationError("deposit_date", "Deposit date is required")
	}
	if req.Receipt.IsZero() {
		return nil, shared.NewValidationError("receipt", "A deposit receipt is required")
	}
	ok, err := s.receipts.Exists(ctx, req.Receipt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewValidationError("receipt", "Receipt was not found, upload it again")
	}

	subject := reporter
	if req.SubjectID != nil && *req.SubjectID != reporter.ID {
		if !reporter.CanActForOthers() {
			return nil, shared.NewPermissionError("Only responsibles can report on behalf of another member")
		}
		if subject, _, err = s.access.AuthorizeSubject(ctx, reporter, *req.SubjectID); err != nil {
			return nil, err
		}
	}

	members, err := s.households.MembersOf(ctx, subject)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]uuid.UUID, 0, len(members))
	names := make(map[uuid.UUID]string, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
		names[m.ID] = m.FullName()
	}

	splits, err := contribution.NormalizeSplits(req.Amount, subject.ID, memberIDs, req.Splits)
	if err != nil {
		return nil, err
	}

	report, err := contribution.NewReport(contribution.NewReportParams{
		ReporterID:          reporter.ID,
		SubjectID:           subject.ID,
		Amount:              req.Amount,
		DepositDate:         req.DepositDate,
		Receipt:             req.Receipt,
		Splits:              splits,
		DistributionSummary: contribution.DistributionSummary(splits, names),
		Note:                req.Note,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("contribution report submitted",
		zap.String("report_id", report.ID.String()),
		zap.String("subject_id", subject.ID.String()),
		zap.Int("splits", len(splits)),
	)
	s.metrics.Submitted(ctx, workflowReport)
	s.publish(ctx, report)
	return toReportResponse(report), nil
}

// Approve approves a pending report and materializes its ledger entries.
// Approving a report that is no longer pending changes nothing and returns
// a result flagged AlreadyDecided.
func (s *ReportService) Approve(ctx context.Context, reviewer *identity.Actor, reportID uuid.UUID) (result *DecisionResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contribution", "approve",
		attribute.String("report_id", reportID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	report, err := s.loadForReview(ctx, reviewer, reportID)
	if err != nil {
		return nil, err
	}
	if !report.IsPending() {
		return s.alreadyDecided(ctx, report), nil
	}

	now := s.clock.Now()
	if err := report.Approve(reviewer.ID, now); err != nil {
		return nil, err
	}

	var (
		entries []*contribution.Contribution
		skipped []contribution.Split
		lost    bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		won, err := s.reports.SaveDecision(ctx, report)
		if err != nil {
			return err
		}
		if !won {
			lost = true
			return nil
		}

		reporterName, existing, err := s.ledgerContext(ctx, report)
		if err != nil {
			return err
		}
		entries, skipped, err = report.LedgerEntries(reporterName, func(id uuid.UUID) bool {
			_, ok := existing[id]
			return ok
		}, now)
		if err != nil {
			return err
		}
		return s.ledger.Append(ctx, entries...)
	})
	if err != nil {
		return nil, err
	}
	if lost {
		current, err := s.reports.FindByID(ctx, reportID)
		if err != nil {
			return nil, err
		}
		return s.alreadyDecided(ctx, current), nil
	}

	log := logger.L(ctx)
	result = &DecisionResult{Report: toReportResponse(report)}
	for _, sp := range skipped {
		anomaly := shared.NewInvariantViolation("SPLIT_MEMBER_MISSING", "Split member no longer exists")
		log.Warn("split skipped during approval",
			zap.String("report_id", report.ID.String()),
			zap.String("member_id", sp.MemberID.String()),
			zap.String("amount", sp.Amount.String()),
			zap.Error(anomaly),
		)
		result.Skipped = append(result.Skipped, SkippedSplit{MemberID: sp.MemberID, Amount: sp.Amount, Reason: anomaly.Message})
	}
	for _, e := range entries {
		result.Contributions = append(result.Contributions, toContributionResponse(e, true))
	}
	if len(result.Contributions) > 0 {
		result.Contribution = &result.Contributions[0]
	}

	log.Info("contribution report approved",
		zap.String("report_id", report.ID.String()),
		zap.String("reviewer_id", reviewer.ID.String()),
		zap.Int("entries", len(entries)),
		zap.Int("skipped", len(skipped)),
	)
	s.metrics.Decided(ctx, workflowReport, "approved")
	s.metrics.LedgerAppended(ctx, len(entries))
	s.publish(ctx, report)
	return result, nil
}

// Reject rejects a pending report, appending reason to its note. Rejecting
// a decided report is a no-op like Approve.
func (s *ReportService) Reject(ctx context.Context, reviewer *identity.Actor, reportID uuid.UUID, reason string) (result *DecisionResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contribution", "reject",
		attribute.String("report_id", reportID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	report, err := s.loadForReview(ctx, reviewer, reportID)
	if err != nil {
		return nil, err
	}
	if !report.IsPending() {
		return s.alreadyDecided(ctx, report), nil
	}
	if err := report.Reject(reviewer.ID, reason, s.clock.Now()); err != nil {
		return nil, err
	}

	won, err := s.reports.SaveDecision(ctx, report)
	if err != nil {
		return nil, err
	}
	if !won {
		current, err := s.reports.FindByID(ctx, reportID)
		if err != nil {
			return nil, err
		}
		return s.alreadyDecided(ctx, current), nil
	}

	logger.L(ctx).Info("contribution report rejected",
		zap.String("report_id", report.ID.String()),
		zap.String("reviewer_id", reviewer.ID.String()),
	)
	s.metrics.Decided(ctx, workflowReport, "rejected")
	s.publish(ctx, report)
	return &DecisionResult{Report: toReportResponse(report)}, nil
}

// Get returns a report visible to viewer: their own submissions and reports
// about members inside their scope.
func (s *ReportService) Get(ctx context.Context, viewer *identity.Actor, reportID uuid.UUID) (*ReportResponse, error) {
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != viewer.ID {
		if _, _, err := s.access.AuthorizeSubject(ctx, viewer, report.SubjectID); err != nil {
			return nil, err
		}
	}
	return toReportResponse(report), nil
}

// List returns reports whose subject is inside the viewer's scope
func (s *ReportService) List(ctx context.Context, viewer *identity.Actor, filter ReportListFilter) ([]ReportResponse, int64, error) {
	p, _, err := s.access.Scope(ctx, viewer)
	if err != nil {
		return nil, 0, err
	}
	rf, err := toReportFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, p, rf)
}

// ListMine returns the reports the actor submitted, whoever they were for
func (s *ReportService) ListMine(ctx context.Context, actor *identity.Actor, filter ReportListFilter) ([]ReportResponse, int64, error) {
	rf, err := toReportFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	rf.ReporterID = &actor.ID
	return s.list(ctx, scope.Unrestricted(), rf)
}

func (s *ReportService) list(ctx context.Context, p scope.Predicate, rf contribution.ReportFilter) ([]ReportResponse, int64, error) {
	reports, total, err := s.reports.FindVisible(ctx, p, rf)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, *toReportResponse(r))
	}
	return out, total, nil
}

func toReportFilter(f ReportListFilter) (contribution.ReportFilter, error) {
	rf := contribution.ReportFilter{Filter: f.Filter}
	if f.Status != "" {
		status := contribution.ReportStatus(f.Status)
		if !status.IsValid() {
			return rf, shared.NewValidationError("status", "Status must be pending, approved or rejected")
		}
		rf.Status = &status
	}
	return rf, nil
}

// loadForReview loads the report and checks that reviewer may decide it
func (s *ReportService) loadForReview(ctx context.Context, reviewer *identity.Actor, reportID uuid.UUID) (*contribution.Report, error) {
	if !reviewer.CanActForOthers() {
		return nil, shared.NewPermissionError("Only responsibles can review contribution reports")
	}
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.AuthorizeSubject(ctx, reviewer, report.SubjectID); err != nil {
		return nil, err
	}
	return report, nil
}

// ledgerContext resolves the reporter's display name and which split
// members still exist
func (s *ReportService) ledgerContext(ctx context.Context, report *contribution.Report) (string, map[uuid.UUID]struct{}, error) {
	reporterName := report.ReporterID.String()
	reporter, err := s.actors.FindByID(ctx, report.ReporterID)
	switch {
	case err == nil:
		reporterName = reporter.DisplayName()
	case !errors.Is(err, shared.ErrNotFound):
		return "", nil, err
	}

	splits := report.EffectiveSplits()
	ids := make([]uuid.UUID, 0, len(splits))
	for _, sp := range splits {
		ids = append(ids, sp.MemberID)
	}
	members, err := s.actors.FindByIDs(ctx, ids)
	if err != nil {
		return "", nil, err
	}
	existing := make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		existing[m.ID] = struct{}{}
	}
	return reporterName, existing, nil
}

func (s *ReportService) alreadyDecided(ctx context.Context, report *contribution.Report) *DecisionResult {
	logger.L(ctx).Info("contribution report already decided",
		zap.String("report_id", report.ID.String()),
		zap.String("status", string(report.Status)),
	)
	s.metrics.Decided(ctx, workflowReport, "already_decided")
	return &DecisionResult{Report: toReportResponse(report), AlreadyDecided: true}
}

func (s *ReportService) publish(ctx context.Context, report *contribution.Report) {
	events := report.GetDomainEvents()
	report.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish contribution report events",
			zap.String("report_id", report.ID.String()),
			zap.Error(err),
		)
	}
}
