package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// jsonField returns the raw JSON of a top-level field of the response body.
func jsonField(t *testing.T, rec *httptest.ResponseRecorder, field string) string {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	raw, ok := body[field]
	require.True(t, ok, "field %q missing from %s", field, rec.Body.String())
	return string(raw)
}
