package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
)

func TestTrace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"client id reused", "abc-123", "abc-123"},
		{"unsafe id replaced", "abc 123\n", ""},
		{"generated", "", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			base, buf := logger.NewTestLogger()
			var gotTrace string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTrace = shared.GetTraceID(r.Context())
				logger.FromContext(r.Context()).Info("inside handler")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(TraceHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			Trace(base)(next).ServeHTTP(rec, req)

			require.NotEmpty(t, gotTrace)
			if tc.want != "" {
				assert.Equal(t, tc.want, gotTrace)
			} else {
				assert.Len(t, gotTrace, 32)
			}
			assert.Equal(t, gotTrace, rec.Header().Get(TraceHeader))
			assert.Contains(t, buf.String(), `"trace_id":"`+gotTrace+`"`)
		})
	}
}

func TestTraceUsesRequestID(t *testing.T) {
	t.Parallel()

	base, _ := logger.NewTestLogger()
	var gotTrace, gotReqID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotTrace = shared.GetTraceID(r.Context())
		gotReqID = chimw.GetReqID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-42")
	chimw.RequestID(Trace(base)(next)).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-42", gotReqID)
	assert.Equal(t, "req-42", gotTrace)
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	base, buf := logger.NewTestLogger()
	handler := Trace(base)(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "request completed", last["msg"])
	assert.Equal(t, "/brew", last["path"])
	assert.EqualValues(t, http.StatusTeapot, last["status"])
}
