package router

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/infrastructure/auth"
	"github.com/sgi/backend/internal/interfaces/http/handler"
	"github.com/sgi/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("reports", "/reports")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("households", "/households")
		assert.Equal(t, "households", g.Name())
		assert.Equal(t, "/households", g.Prefix())
	})

	t.Run("methods, middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		var seen []string
		g := NewDomainGroup("fortuna", "/fortuna").Use(func(c *gin.Context) {
			seen = append(seen, c.FullPath())
			c.Next()
		})
		g.Group("purchases", "/purchases").
			POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		g.GET("/issues", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct {
			method string
			path   string
			status int
		}{
			{http.MethodPost, "/api/v1/fortuna/purchases", http.StatusCreated},
			{http.MethodDelete, "/api/v1/fortuna/purchases/1", http.StatusNoContent},
			{http.MethodGet, "/api/v1/fortuna/issues", http.StatusOK},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.status, w.Code, tc.path)
		}
		assert.Len(t, seen, 3)
	})
}

type rejectAll struct{}

func (rejectAll) Authenticate(context.Context, string) (*identity.Actor, *auth.Claims, error) {
	return nil, nil, auth.ErrInvalidToken
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	limiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)
	engine, err := New(Options{
		Authenticator: rejectAll{},
		LoginLimiter:  limiter,
		CORS:          middleware.DefaultCORSConfig(),
		MaxBodySize:   1 << 20,
	}, Handlers{
		Health:       handler.NewHealthHandler("test", nil),
		Auth:         handler.NewAuthHandler(nil),
		Actor:        handler.NewActorHandler(nil),
		Org:          handler.NewOrgHandler(nil),
		Receipt:      handler.NewReceiptHandler(nil, 0),
		Report:       handler.NewContributionReportHandler(nil),
		Contribution: handler.NewContributionHandler(nil),
		Household:    handler.NewHouseholdHandler(nil),
		Fortuna:      handler.NewFortunaHandler(nil),
		Notification: handler.NewNotificationHandler(nil),
	})
	require.NoError(t, err)
	return engine
}

func TestNew_Routes(t *testing.T) {
	engine := newTestEngine(t)

	routes := map[string]bool{}
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"POST /api/v1/actors",
		"GET /api/v1/actors/:id",
		"PATCH /api/v1/actors/:id",
		"GET /api/v1/org/tree",
		"POST /api/v1/org/groups",
		"POST /api/v1/receipts",
		"POST /api/v1/contribution-reports",
		"GET /api/v1/contribution-reports",
		"GET /api/v1/contribution-reports/mine",
		"GET /api/v1/contribution-reports/:id",
		"POST /api/v1/contribution-reports/:id/approve",
		"POST /api/v1/contribution-reports/:id/reject",
		"GET /api/v1/contributions/active-members",
		"GET /api/v1/contributions/members/:id/summary",
		"POST /api/v1/contributions/special",
		"POST /api/v1/households",
		"POST /api/v1/households/:id/members",
		"DELETE /api/v1/households/:id/members/:actorId",
		"GET /api/v1/households/members/:actorId",
		"POST /api/v1/fortuna/purchases",
		"GET /api/v1/fortuna/purchases/mine",
		"POST /api/v1/fortuna/purchases/:id/approve",
		"POST /api/v1/fortuna/purchases/:id/reject",
		"POST /api/v1/fortuna/issues",
		"GET /api/v1/fortuna/issues/:id/access",
		"GET /api/v1/notifications",
		"GET /api/v1/notifications/inbox",
		"POST /api/v1/notifications/:id/read",
		"POST /api/v1/notifications/read-all",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

var routerAnnotation = regexp.MustCompile(`@Router\s+(\S+)\s+\[(\w+)\]`)

// Every exported handler documents its route, and the documented routes are
// exactly the ones the engine serves.
func TestNew_RoutesAnnotated(t *testing.T) {
	files, err := filepath.Glob("../handler/*.go")
	require.NoError(t, err)

	documented := map[string]bool{}
	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		require.NoError(t, err)
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || !fn.Name.IsExported() || !takesGinContext(fn) {
				continue
			}
			m := routerAnnotation.FindStringSubmatch(fn.Doc.Text())
			if !assert.NotNil(t, m, "%s.%s has no @Router annotation", filepath.Base(name), fn.Name.Name) {
				continue
			}
			path := m[1]
			if path != "/health" {
				path = "/api/v1" + path
			}
			path = strings.NewReplacer("{", ":", "}", "").Replace(path)
			documented[strings.ToUpper(m[2])+" "+path] = true
		}
	}

	served := map[string]bool{}
	for _, r := range newTestEngine(t).Routes() {
		served[r.Method+" "+r.Path] = true
	}
	assert.Equal(t, served, documented)
}

func takesGinContext(fn *ast.FuncDecl) bool {
	if recv, ok := fn.Recv.List[0].Type.(*ast.StarExpr); ok {
		if id, ok := recv.X.(*ast.Ident); ok && id.Name == "BaseHandler" {
			return false
		}
	}
	params := fn.Type.Params.List
	if len(params) != 1 || fn.Type.Results != nil {
		return false
	}
	star, ok := params[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	return ok && sel.Sel.Name == "Context"
}

func TestNew_ProtectedRoutesRequireToken(t *testing.T) {
	engine := newTestEngine(t)

	for _, path := range []string{
		"/api/v1/contribution-reports",
		"/api/v1/notifications/inbox",
		"/api/v1/auth/me",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDKey))
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
