package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	router := gin.New()
	router.Use(HTTPMetrics(mp, nil))
	router.GET("/reports/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/reports/1", "/reports/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var sawHistogram bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name != "http.server.request.count" {
					continue
				}
				for _, dp := range data.DataPoints {
					route, _ := dp.Attributes.Value("http.route")
					counts[route.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				sawHistogram = m.Name == "http.server.request.duration"
			}
		}
	}

	assert.Equal(t, int64(2), counts["/reports/:id"])
	assert.Equal(t, int64(1), counts["unmatched"])
	assert.True(t, sawHistogram)
}

func TestHTTPMetrics_GlobalProvider(t *testing.T) {
	rec := httptest.NewRecorder()
	okRouter(HTTPMetrics(nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
