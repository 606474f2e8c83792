package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/interfaces/http/dto"
	"github.com/sgi/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase drives a single gin handler without a router. Params fill
// path parameters and As stands in for the authenticated actor.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Params         gin.Params
	Body           any
	As             *identity.Actor
	ExpectedStatus int
	// ExpectedCode is the dto error code an error response must carry
	ExpectedCode string
	Validate     func(t *testing.T, tc *TestContext)
}

// RunHTTPTestCases runs each case as a subtest
func RunHTTPTestCases(t *testing.T, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, handler, tc)
		})
	}
}

// RunHTTPTestCase calls handler once and checks the response envelope:
// success for 2xx answers, the expected error code otherwise.
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) {
	t.Helper()

	var body io.Reader
	if tc.Body != nil {
		raw, err := json.Marshal(tc.Body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, "/"+trimSlash(tc.Path), body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = tc.Params
	if tc.As != nil {
		c.Set(middleware.ActorKey, tc.As)
	}

	handler(c)

	result := &TestContext{Context: c, Recorder: rec, Engine: engine}
	if tc.ExpectedStatus != 0 {
		require.Equal(t, tc.ExpectedStatus, rec.Code, rec.Body.String())
	}
	switch {
	case tc.ExpectedCode != "":
		AssertErrorResponse(t, result, tc.ExpectedCode)
	case rec.Code < http.StatusBadRequest && rec.Code != http.StatusNoContent:
		AssertSuccessResponse(t, result)
	}
	if tc.Validate != nil {
		tc.Validate(t, result)
	}
}

func trimSlash(path string) string {
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// JSONResponseAs decodes the response body into T
func JSONResponseAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &result), "response is not JSON")
	return result
}

// DataAs decodes the data member of a success envelope into T
func DataAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &envelope), "response is not JSON")
	return envelope.Data
}

// AssertSuccessResponse checks for a success envelope without an error
func AssertSuccessResponse(t *testing.T, tc *TestContext) {
	t.Helper()
	resp := JSONResponseAs[dto.Response](t, tc)
	assert.True(t, resp.Success, "expected success envelope")
	assert.Nil(t, resp.Error)
}

// AssertErrorResponse checks for an error envelope carrying code
func AssertErrorResponse(t *testing.T, tc *TestContext, code string) {
	t.Helper()
	resp := JSONResponseAs[dto.Response](t, tc)
	assert.False(t, resp.Success, "expected error envelope")
	require.NotNil(t, resp.Error, "expected error object in response")
	assert.Equal(t, code, resp.Error.Code)
}
