package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/interfaces/http/handler"
	"github.com/sgi/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the endpoints mounted by New
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Actor        *handler.ActorHandler
	Org          *handler.OrgHandler
	Receipt      *handler.ReceiptHandler
	Report       *handler.ContributionReportHandler
	Contribution *handler.ContributionHandler
	Household    *handler.HouseholdHandler
	Fortuna      *handler.FortunaHandler
	Notification *handler.NotificationHandler
}

// Options configure the engine built by New
type Options struct {
	Logger         *zap.Logger
	Authenticator  middleware.Authenticator
	LoginLimiter   *middleware.RateLimiter
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string

	// Tracing mounts otelgin under ServiceName
	Tracing       bool
	ServiceName   string
	MeterProvider metric.MeterProvider
}

// New builds the gin engine with the middleware chain and every route
func New(opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
	)
	if opts.Tracing {
		engine.Use(middleware.Tracing(opts.ServiceName), middleware.SpanAttributes())
	}
	engine.Use(
		middleware.HTTPMetrics(opts.MeterProvider, log),
		middleware.CORS(opts.CORS),
		middleware.Secure(),
	)
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	engine.GET("/health", h.Health.Health)

	r := NewRouter(engine)
	for _, g := range domainGroups(opts, log, h) {
		r.Register(g)
	}
	r.Setup()
	return engine, nil
}

func domainGroups(opts Options, log *zap.Logger, h Handlers) []*DomainGroup {
	auth := middleware.Auth(opts.Authenticator, log)

	login := []gin.HandlerFunc{h.Auth.Login}
	if opts.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit(opts.LoginLimiter)}, login...)
	}
	authGroup := NewDomainGroup("auth", "/auth").POST("/login", login...)
	authGroup.Group("session", "").Use(auth).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	actors := NewDomainGroup("actors", "/actors").Use(auth).
		POST("", h.Actor.Create).
		GET("/:id", h.Actor.Get).
		PATCH("/:id", h.Actor.Update)

	orgs := NewDomainGroup("org", "/org").Use(auth).
		GET("/tree", h.Org.Tree).
		POST("/sectors", h.Org.CreateSector).
		POST("/zones", h.Org.CreateZone).
		POST("/groups", h.Org.CreateGroup)

	receipts := NewDomainGroup("receipts", "/receipts").Use(auth).
		POST("", h.Receipt.Upload)

	reports := NewDomainGroup("contribution-reports", "/contribution-reports").Use(auth).
		POST("", h.Report.Submit).
		GET("", h.Report.List).
		GET("/mine", h.Report.ListMine).
		GET("/:id", h.Report.Get).
		POST("/:id/approve", h.Report.Approve).
		POST("/:id/reject", h.Report.Reject)

	contributions := NewDomainGroup("contributions", "/contributions").Use(auth).
		GET("/active-members", h.Contribution.ActiveMembers).
		GET("/members/:id/summary", h.Contribution.Summary).
		POST("/special", h.Contribution.RecordSpecial)

	households := NewDomainGroup("households", "/households").Use(auth).
		POST("", h.Household.Create).
		POST("/:id/members", h.Household.AddMember).
		DELETE("/:id/members/:actorId", h.Household.RemoveMember).
		GET("/members/:actorId", h.Household.GetByMember)

	fortuna := NewDomainGroup("fortuna", "/fortuna").Use(auth)
	fortuna.Group("purchases", "/purchases").
		POST("", h.Fortuna.Submit).
		GET("/mine", h.Fortuna.Mine).
		POST("/:id/approve", h.Fortuna.Approve).
		POST("/:id/reject", h.Fortuna.Reject)
	fortuna.Group("issues", "/issues").
		POST("", h.Fortuna.CreateIssue).
		GET("/:id/access", h.Fortuna.Access)

	notifications := NewDomainGroup("notifications", "/notifications").Use(auth).
		GET("", h.Notification.List).
		GET("/inbox", h.Notification.Inbox).
		POST("/read-all", h.Notification.MarkAllRead).
		POST("/:id/read", h.Notification.MarkRead)

	return []*DomainGroup{
		authGroup, actors, orgs, receipts, reports,
		contributions, households, fortuna, notifications,
	}
}
