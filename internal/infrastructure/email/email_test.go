package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *ResendSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewResendSender(config.EmailConfig{
		Provider:     "resend",
		ResendAPIKey: "re_test",
		ResendURL:    srv.URL + "/",
		From:         "SGI Chile <no-reply@sgi.cl>",
		Timeout:      2 * time.Second,
	})
	require.NoError(t, err)
	return s
}

func TestResendSender_Send(t *testing.T) {
	var got resendRequest
	s := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"4ef9a417"}`))
	})

	err := s.Send(context.Background(), " ana@example.com ", "Aporte aprobado", "Tu aporte fue aprobado.")
	require.NoError(t, err)
	assert.Equal(t, "SGI Chile <no-reply@sgi.cl>", got.From)
	assert.Equal(t, []string{"ana@example.com"}, got.To)
	assert.Equal(t, "Aporte aprobado", got.Subject)
	assert.Equal(t, "Tu aporte fue aprobado.", got.Text)
}

func TestResendSender_ProviderError(t *testing.T) {
	s := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	})

	err := s.Send(context.Background(), "bad", "s", "b")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "Invalid to field")
}

func TestResendSender_HTTPErrorWithoutBody(t *testing.T) {
	s := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := s.Send(context.Background(), "ana@example.com", "s", "b")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestResendSender_EmptyRecipient(t *testing.T) {
	called := false
	s := newTestSender(t, func(http.ResponseWriter, *http.Request) { called = true })

	err := s.Send(context.Background(), "  ", "s", "b")
	assert.True(t, shared.IsValidation(err))
	assert.False(t, called)
}

func TestResendSender_ContextCanceled(t *testing.T) {
	s := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Send(ctx, "ana@example.com", "s", "b"), ErrDeliveryFailed)
}

func TestNewResendSender_Validation(t *testing.T) {
	_, err := NewResendSender(config.EmailConfig{From: "a@b.cl"})
	assert.Error(t, err)
	_, err = NewResendSender(config.EmailConfig{ResendAPIKey: "k"})
	assert.Error(t, err)

	s, err := NewResendSender(config.EmailConfig{ResendAPIKey: "k", From: "a@b.cl"})
	require.NoError(t, err)
	assert.Equal(t, resendAPIBaseURL, s.baseURL)
	assert.Equal(t, 10*time.Second, s.httpClient.Timeout)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), "ana@example.com", "Hola", "cuerpo"))
	entries := logs.FilterMessage("email not sent, log provider").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ana@example.com", entries[0].ContextMap()["to"])
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(config.EmailConfig{Provider: "log"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(config.EmailConfig{Provider: "resend"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(config.EmailConfig{Provider: "resend", ResendAPIKey: "k", From: "a@b.cl"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	_, err = NewSender(config.EmailConfig{Provider: "smtp"}, nil)
	assert.Error(t, err)
}
