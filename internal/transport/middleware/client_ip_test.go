package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GraceHermine/GenerateurDocument/pkg/ctxutil"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr", "192.0.2.1:5555", nil, "192.0.2.1"},
		{"remote without port", "192.0.2.1", nil, "192.0.2.1"},
		{"forwarded first entry", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"real ip", "10.0.0.1:80", map[string]string{"X-Real-Ip": "198.51.100.4"}, "198.51.100.4"},
		{"empty forwarded falls back", "10.0.0.1:80", map[string]string{"X-Forwarded-For": " "}, "10.0.0.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			handler := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ctxutil.ClientIPFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tc.want, got)
		})
	}
}
