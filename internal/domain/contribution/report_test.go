package contribution

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	submittedAt = time.Date(2025, 1, 21, 10, 0, 0, 0, time.UTC)
	reviewedAt  = time.Date(2025, 1, 22, 15, 30, 0, 0, time.UTC)
	depositDate = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
)

func newPendingReport(t *testing.T, subject uuid.UUID, splits []Split) *Report {
	t.Helper()
	if splits == nil {
		splits = []Split{{MemberID: subject, Amount: d("12000")}}
	}
	r, err := NewReport(NewReportParams{
		ReporterID:  subject,
		SubjectID:   subject,
		Amount:      d("12000"),
		DepositDate: depositDate,
		Receipt:     shared.ReceiptRef("receipts/abc.jpg"),
		Splits:      splits,
		Note:        "enero",
	}, submittedAt)
	require.NoError(t, err)
	return r
}

func allExist(uuid.UUID) bool { return true }

func TestNewReport(t *testing.T) {
	subject := uuid.New()
	r := newPendingReport(t, subject, nil)

	assert.Equal(t, ReportStatusPending, r.Status)
	assert.Nil(t, r.ReviewedByID)
	assert.Nil(t, r.ReviewedAt)
	require.Len(t, r.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeReportSubmitted, r.GetDomainEvents()[0].EventType())

	t.Run("requires receipt", func(t *testing.T) {
		_, err := NewReport(NewReportParams{
			ReporterID: subject, SubjectID: subject, Amount: d("10"), DepositDate: depositDate,
			Splits: []Split{{MemberID: subject, Amount: d("10")}},
		}, submittedAt)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("requires normalized splits", func(t *testing.T) {
		_, err := NewReport(NewReportParams{
			ReporterID: subject, SubjectID: subject, Amount: d("10"), DepositDate: depositDate,
			Receipt: "r", Splits: []Split{{MemberID: subject, Amount: d("9")}},
		}, submittedAt)
		assert.True(t, shared.IsInvariant(err))
	})
}

func TestReport_Approve(t *testing.T) {
	subject, reviewer := uuid.New(), uuid.New()
	r := newPendingReport(t, subject, nil)

	require.NoError(t, r.Approve(reviewer, reviewedAt))
	assert.Equal(t, ReportStatusApproved, r.Status)
	assert.Equal(t, reviewer, *r.ReviewedByID)
	assert.Equal(t, reviewedAt, *r.ReviewedAt)

	err := r.Approve(reviewer, reviewedAt)
	assert.True(t, shared.IsConflict(err))

	err = r.Reject(reviewer, "late", reviewedAt)
	assert.True(t, shared.IsConflict(err))
	assert.Equal(t, "enero", r.Note)
}

func TestReport_Reject(t *testing.T) {
	subject, reviewer := uuid.New(), uuid.New()

	t.Run("appends reason", func(t *testing.T) {
		r := newPendingReport(t, subject, nil)
		require.NoError(t, r.Reject(reviewer, " receipt unreadable ", reviewedAt))
		assert.Equal(t, ReportStatusRejected, r.Status)
		assert.Equal(t, "enero\n[REJECTED]: receipt unreadable", r.Note)
	})

	t.Run("empty reason leaves note alone", func(t *testing.T) {
		r := newPendingReport(t, subject, nil)
		require.NoError(t, r.Reject(reviewer, "", reviewedAt))
		assert.Equal(t, "enero", r.Note)
	})

	t.Run("rejected report cannot be rejected again", func(t *testing.T) {
		r := newPendingReport(t, subject, nil)
		require.NoError(t, r.Reject(reviewer, "x", reviewedAt))
		assert.True(t, shared.IsConflict(r.Reject(reviewer, "y", reviewedAt)))
	})
}

func TestReport_LedgerEntries(t *testing.T) {
	reviewer := uuid.New()

	t.Run("one entry per split", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		r := newPendingReport(t, a, []Split{{MemberID: a, Amount: d("5000")}, {MemberID: b, Amount: d("7000")}})
		require.NoError(t, r.Approve(reviewer, reviewedAt))

		entries, skipped, err := r.LedgerEntries("Ana Pérez (@ana)", allExist, reviewedAt)
		require.NoError(t, err)
		assert.Empty(t, skipped)
		require.Len(t, entries, 2)

		assert.Equal(t, a, entries[0].MemberID)
		assert.True(t, entries[0].Amount.Equal(d("5000")))
		assert.Equal(t, b, entries[1].MemberID)
		assert.True(t, entries[1].Amount.Equal(d("7000")))
		for _, e := range entries {
			assert.True(t, e.Confirmed)
			assert.Equal(t, depositDate, e.Date)
			assert.Equal(t, TypeRegular, e.Type)
			assert.Equal(t, reviewer, *e.CreatedByID)
			assert.Equal(t, r.ID, *e.SourceReportID)
			assert.Equal(t, r.ReporterID, *e.ReportedByID)
			assert.Contains(t, e.Note, r.ID.String())
			assert.Contains(t, e.Note, "Ana Pérez (@ana)")
		}
	})

	t.Run("report without splits yields a single entry", func(t *testing.T) {
		u := uuid.New()
		r := newPendingReport(t, u, nil)
		r.Splits = nil
		require.NoError(t, r.Approve(reviewer, reviewedAt))

		entries, _, err := r.LedgerEntries("u", allExist, reviewedAt)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, u, entries[0].MemberID)
		assert.True(t, entries[0].Amount.Equal(d("12000")))
	})

	t.Run("missing members are skipped", func(t *testing.T) {
		a, gone := uuid.New(), uuid.New()
		r := newPendingReport(t, a, []Split{{MemberID: a, Amount: d("5000")}, {MemberID: gone, Amount: d("7000")}})
		require.NoError(t, r.Approve(reviewer, reviewedAt))

		entries, skipped, err := r.LedgerEntries("a", func(id uuid.UUID) bool { return id != gone }, reviewedAt)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Len(t, skipped, 1)
		assert.Equal(t, gone, skipped[0].MemberID)
	})

	t.Run("pending report has no entries", func(t *testing.T) {
		r := newPendingReport(t, uuid.New(), nil)
		_, _, err := r.LedgerEntries("x", allExist, reviewedAt)
		assert.Error(t, err)
	})
}

func TestNewManualContribution(t *testing.T) {
	admin, member := uuid.New(), uuid.New()

	c, err := NewManualContribution(member, depositDate.Add(13*time.Hour), d("3000"), TypeSpecial, admin, "campaña", reviewedAt)
	require.NoError(t, err)
	assert.True(t, c.Confirmed)
	assert.Equal(t, depositDate, c.Date)
	assert.Nil(t, c.SourceReportID)

	_, err = NewManualContribution(member, depositDate, d("3000"), Type("bono"), admin, "", reviewedAt)
	assert.True(t, shared.IsValidation(err))
}
