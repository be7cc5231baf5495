package config

import (
	"strings"
	"testing"
	"time"
)

// env returns a lookup over vars, like os.Getenv.
func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Source:  SourceConfig{SecretParam: "secret", MaxBodyBytes: 1024},
		Refresh: RefreshConfig{Interval: time.Minute},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100, RefreshLimit: 5},
		Publish: PublishConfig{Topic: "t", QoS: 1, ConnectTimeout: time.Second},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Source.SecretParam != "secret" {
		t.Errorf("Source.SecretParam = %q, want %q", cfg.Source.SecretParam, "secret")
	}
	if cfg.Source.HTTPTimeout != 0 {
		t.Errorf("Source.HTTPTimeout = %v, want 0", cfg.Source.HTTPTimeout)
	}
	if cfg.Source.MaxBodyBytes != 10485760 {
		t.Errorf("Source.MaxBodyBytes = %d, want %d", cfg.Source.MaxBodyBytes, 10485760)
	}
	if cfg.Refresh.Interval != 15*time.Minute {
		t.Errorf("Refresh.Interval = %v, want %v", cfg.Refresh.Interval, 15*time.Minute)
	}
	if cfg.Publish.Enabled() {
		t.Error("Publish.Enabled() = true, want false without a broker")
	}
	if cfg.Source.URL != "" || cfg.Source.FallbackURL != "" {
		t.Error("source URLs should default to empty")
	}
}

func TestLoad_SourceSettings(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SOURCE_URL":          " https://script.example.com/exec ",
		"SOURCE_SECRET":       "abc",
		"SOURCE_FALLBACK_URL": "https://docs.example.com/pub?output=csv",
		"SOURCE_HTTP_TIMEOUT": "20s",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Source.URL != "https://script.example.com/exec" {
		t.Errorf("Source.URL = %q, want trimmed URL", cfg.Source.URL)
	}
	if cfg.Source.Secret != "abc" {
		t.Errorf("Source.Secret = %q, want %q", cfg.Source.Secret, "abc")
	}
	if cfg.Source.HTTPTimeout != 20*time.Second {
		t.Errorf("Source.HTTPTimeout = %v, want %v", cfg.Source.HTTPTimeout, 20*time.Second)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"VITE_APPS_SCRIPT_URL": "https://script.example.com/exec",
		"VITE_SECRET_KEY":      "from-vite",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Source.URL != "https://script.example.com/exec" {
		t.Errorf("Source.URL = %q, want VITE_APPS_SCRIPT_URL value", cfg.Source.URL)
	}
	if cfg.Source.Secret != "from-vite" {
		t.Errorf("Source.Secret = %q, want %q", cfg.Source.Secret, "from-vite")
	}
}

func TestLoad_PrimaryWinsOverAlt(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SOURCE_SECRET":   "primary",
		"VITE_SECRET_KEY": "alt",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Source.Secret != "primary" {
		t.Errorf("Source.Secret = %q, want %q", cfg.Source.Secret, "primary")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantSub string
	}{
		{"bad integer", map[string]string{"SERVER_PORT": "eighty"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"REFRESH_INTERVAL": "soon"}, "REFRESH_INTERVAL"},
		{"bad bool", map[string]string{"RATE_LIMIT_ENABLED": "maybe"}, "RATE_LIMIT_ENABLED"},
		{"interval too short", map[string]string{"REFRESH_INTERVAL": "1s"}, "at least 10s"},
		{"bad qos", map[string]string{"MQTT_BROKER_URL": "tcp://b:1883", "MQTT_QOS": "3"}, "MQTT_QOS"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatal("LoadFrom() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoad_RefreshDisabled(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"REFRESH_INTERVAL": "0s"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Refresh.Interval != 0 {
		t.Errorf("Refresh.Interval = %v, want 0", cfg.Refresh.Interval)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "verbose"
	cfg.Source.MaxBodyBytes = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL", "SOURCE_MAX_BODY_BYTES"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Rate = RateLimitConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, limits are ignored when disabled", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"localhost", 443, "localhost:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Source.URL = "https://script.example.com/exec?key=topsecret"
	cfg.Source.Secret = "hunter2"
	cfg.Publish.Password = "mqttpass"

	str := cfg.String()
	for _, leaked := range []string{"topsecret", "hunter2", "mqttpass"} {
		if strings.Contains(str, leaked) {
			t.Errorf("String() leaks %q: %s", leaked, str)
		}
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}
