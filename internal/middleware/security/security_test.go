package security

import (
	"bytes"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/log"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name      string
		method    string
		target    string
		userAgent string
		want      bool
	}{
		{"plain api call", http.MethodGet, "/api/transactions", "Mozilla/5.0", false},
		{"curl is allowed", http.MethodPost, "/api/transactions", "curl/8.5.0", false},
		{"path traversal", http.MethodGet, "/api/../../etc/passwd", "", true},
		{"dotenv lookup", http.MethodGet, "/.env", "", true},
		{"sql in query", http.MethodGet, "/api/calendar?year=1%20union%20select", "", true},
		{"scanner agent", http.MethodGet, "/api/dashboard-stats", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/api/transactions", "", true},
		{"long url", http.MethodGet, "/api/transactions?q=" + strings.Repeat("a", maxURLLength), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://example.com/", nil)
			req.URL.Path, req.URL.RawQuery, _ = strings.Cut(tt.target, "?")
			req.Header.Set("User-Agent", tt.userAgent)

			got, reason := d.DetectSuspiciousRequest(req)
			if got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v (%s), want %v", got, reason, tt.want)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct client", "203.0.113.5:4000", "", "", "203.0.113.5"},
		{"untrusted peer cannot spoof", "203.0.113.5:4000", "1.2.3.4", "", "203.0.113.5"},
		{"trusted proxy forwards", "10.0.0.2:80", "198.51.100.9, 10.0.0.2", "", "198.51.100.9"},
		{"trusted proxy real ip", "127.0.0.1:80", "", "198.51.100.10", "198.51.100.10"},
		{"invalid forwarded falls back", "10.0.0.2:80", "not-an-ip", "", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(req); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Fatal("expected error for invalid CIDR")
	}
	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.1:443"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := d.ExtractClientIP(req); got != "198.51.100.1" {
		t.Errorf("ExtractClientIP() = %q, want forwarded address", got)
	}
}

func TestDetectorMiddleware(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	d := NewDetector()

	h := d.Middleware(log.New(cfg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("TRACE", "/api/transactions", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("suspicious request status = %d, suspicious GETs are only logged", rec.Code)
	}

	if !strings.Contains(buf.String(), "Suspicious request") {
		t.Errorf("expected warning in log output:\n%s", buf.String())
	}
	m := d.GetMetrics()
	if m.SuspiciousRequests != 2 || m.BlockedRequests != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard-stats", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'",
		"Cache-Control":           "no-store",
	}
	for name, value := range want {
		if got := rec.Header().Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard-stats", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}
