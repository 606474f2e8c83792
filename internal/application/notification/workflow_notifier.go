package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/fortuna"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/domain/shared/valueobject"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	sinkNotification = "notification"
	sinkEmail        = "email"
)

// message is what a decision tells its member
type message struct {
	recipient uuid.UUID
	title     string
	body      string
}

// WorkflowNotifier tells members about review decisions, in the app and by
// email. Delivery is best effort: failures are logged and counted but never
// returned, so the bus never reports a decision as failed after commit.
type WorkflowNotifier struct {
	actors  identity.ActorRepository
	inbox   shared.NotificationSink
	email   shared.EmailSink
	metrics *telemetry.WorkflowMetrics
	logger  *zap.Logger
}

// NewWorkflowNotifier creates a WorkflowNotifier. email may be nil.
func NewWorkflowNotifier(
	actors identity.ActorRepository,
	inbox shared.NotificationSink,
	email shared.EmailSink,
	metrics *telemetry.WorkflowMetrics,
	log *zap.Logger,
) *WorkflowNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkflowNotifier{
		actors:  actors,
		inbox:   inbox,
		email:   email,
		metrics: metrics,
		logger:  log,
	}
}

// EventTypes returns the decisions that produce notifications
func (h *WorkflowNotifier) EventTypes() []string {
	return []string{
		contribution.EventTypeReportApproved,
		contribution.EventTypeReportRejected,
		fortuna.EventTypePurchaseApproved,
		fortuna.EventTypePurchaseRejected,
	}
}

// Handle delivers the notification and email for one decision
func (h *WorkflowNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	msg, ok := compose(event)
	if !ok {
		logger.Enrich(ctx, h.logger).Warn("workflow notifier received unexpected event",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}
	log := logger.Enrich(ctx, h.logger).With(
		zap.String("event_type", event.EventType()),
		zap.String("recipient_id", msg.recipient.String()),
	)

	if err := h.inbox.Notify(ctx, msg.recipient, msg.title, msg.body); err != nil {
		log.Warn("failed to store notification", zap.Error(err))
		h.metrics.SinkFailed(ctx, sinkNotification)
	}

	if h.email == nil {
		return nil
	}
	recipient, err := h.actors.FindByID(ctx, msg.recipient)
	if err != nil {
		log.Warn("failed to load email recipient", zap.Error(err))
		h.metrics.SinkFailed(ctx, sinkEmail)
		return nil
	}
	if strings.TrimSpace(recipient.Email) == "" {
		log.Debug("recipient has no email address")
		return nil
	}
	body := fmt.Sprintf("Hola %s,\n\n%s\n\nSGI Chile", recipient.FirstName, msg.body)
	if err := h.email.Send(ctx, recipient.Email, msg.title+" - SGI Chile", body); err != nil {
		log.Warn("failed to send email", zap.Error(err))
		h.metrics.SinkFailed(ctx, sinkEmail)
	}
	return nil
}

func compose(event shared.DomainEvent) (message, bool) {
	switch e := event.(type) {
	case *contribution.ReportApprovedEvent:
		return message{
			recipient: e.SubjectID,
			title:     "Aporte aprobado",
			body: fmt.Sprintf("Tu aporte de $%s depositado el %s fue aprobado.",
				valueobject.FormatAmount(e.Amount), e.DepositDate.Format(time.DateOnly)),
		}, true
	case *contribution.ReportRejectedEvent:
		body := fmt.Sprintf("Tu informe de aporte de $%s fue rechazado.", valueobject.FormatAmount(e.Amount))
		if e.Reason != "" {
			body += " Motivo: " + e.Reason
		}
		return message{recipient: e.SubjectID, title: "Aporte rechazado", body: body}, true
	case *fortuna.PurchaseDecidedEvent:
		if e.EventType() == fortuna.EventTypePurchaseApproved {
			return message{
				recipient: e.MemberID,
				title:     "Suscripción Fortuna aprobada",
				body: fmt.Sprintf("Tu suscripción Fortuna está activa desde el %s hasta el %s.",
					e.WindowStart.Format(time.DateOnly), e.WindowEnd.Format(time.DateOnly)),
			}, true
		}
		body := "Tu solicitud de suscripción Fortuna fue rechazada."
		if e.Reason != "" {
			body += " Motivo: " + e.Reason
		}
		return message{recipient: e.MemberID, title: "Suscripción Fortuna rechazada", body: body}, true
	}
	return message{}, false
}
