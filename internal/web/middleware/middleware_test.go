package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/prayerboard/internal/logging"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		realIP     string
		xff        string
		want       string
	}{
		{"no proxies configured", nil, "203.0.113.5:1234", "1.2.3.4", "", "203.0.113.5:1234"},
		{"untrusted peer ignored", []string{"10.0.0.0/8"}, "203.0.113.5:1234", "1.2.3.4", "", "203.0.113.5:1234"},
		{"trusted peer x-real-ip", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "1.2.3.4", "", "1.2.3.4"},
		{"trusted peer bare address", []string{"127.0.0.1"}, "127.0.0.1:1234", "1.2.3.4", "", "1.2.3.4"},
		{"invalid x-real-ip ignored", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "nonsense", "", "10.1.2.3:1234"},
		{"xff rightmost untrusted", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "", "9.9.9.9, 1.2.3.4, 10.0.0.7", "1.2.3.4"},
		{"xff all trusted", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "", "10.0.0.8", "10.1.2.3:1234"},
		{"xff garbage", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "", "1.2.3.4, junk", "10.1.2.3:1234"},
		{"invalid cidr skipped", []string{"not-a-cidr", "10.0.0.0/8"}, "10.1.2.3:1234", "1.2.3.4", "", "1.2.3.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("ClientIP() = %q, want %q", got, "192.0.2.1")
	}
	req.RemoteAddr = "192.0.2.1"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("ClientIP() = %q, want %q", got, "192.0.2.1")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "debug", "json"))
	defer slog.SetDefault(prev)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "request" {
		t.Errorf("msg = %v, want request", entry["msg"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusTeapot)
	}
	if entry["bytes"] != float64(len("short and stout")) {
		t.Errorf("bytes = %v, want %d", entry["bytes"], len("short and stout"))
	}
	if entry["ip"] != "192.0.2.1" {
		t.Errorf("ip = %v, want 192.0.2.1", entry["ip"])
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("response code = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
