package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func preflight(t *testing.T, h http.Handler, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/journal/ideas", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		origins     []string
		credentials bool
		origin      string
		wantOrigin  string
		wantCreds   string
	}{
		{"disabled", nil, true, "http://app.test", "", ""},
		{"listed origin", []string{"http://app.test"}, true, "http://app.test", "http://app.test", "true"},
		{"unlisted origin", []string{"http://app.test"}, false, "http://evil.test", "", ""},
		{"wildcard drops credentials", []string{"*"}, true, "http://any.test", "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := preflight(t, CORS(tt.origins, tt.credentials)(ok), tt.origin)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}
