package eda

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "admin", "admin", false)
}

// loginHandler registers a login endpoint that hands out a fixed token
// and counts how often it is hit.
func loginHandler(mux *http.ServeMux, logins *int) {
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		*logins++
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "token-123",
			"refresh_token": "refresh-456",
		})
	})
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	var logins int
	loginHandler(mux, &logins)

	c := newTestClient(t, mux)
	if err := c.Login(); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logins != 1 {
		t.Errorf("login calls = %d, want 1", logins)
	}
	if c.accessToken != "token-123" {
		t.Errorf("accessToken = %q", c.accessToken)
	}
}

func TestLoginFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code":    401,
			"message": "invalid credentials",
			"details": "user admin",
		})
	})

	c := newTestClient(t, mux)
	if err := c.Login(); err == nil {
		t.Fatal("expected login error")
	}
}

func TestLazyAuthentication(t *testing.T) {
	mux := http.NewServeMux()
	var logins int
	loginHandler(mux, &logins)
	mux.HandleFunc("/core/about/version", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"eda": map[string]string{"version": "25.3.1-rc1"},
		})
	})

	c := newTestClient(t, mux)
	version, err := c.Version()
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != "25.3.1" {
		t.Errorf("version = %q, want 25.3.1 (build suffix stripped)", version)
	}
	if logins != 1 {
		t.Errorf("login calls = %d, want 1", logins)
	}

	// Second call must come from the cache.
	if _, err := c.Version(); err != nil {
		t.Fatalf("Version (cached): %v", err)
	}
	if logins != 1 {
		t.Errorf("login calls after cached version = %d, want 1", logins)
	}
}

func TestIsUp(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"up", "UP", true},
		{"down", "DOWN", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/core/about/health", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"status": tt.status})
			})
			c := newTestClient(t, mux)
			if got := c.IsUp(); got != tt.want {
				t.Errorf("IsUp = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		c := NewClient("https://127.0.0.1:1", "admin", "admin", false)
		if c.IsUp() {
			t.Error("IsUp should be false for an unreachable endpoint")
		}
	})
}

func TestTryEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	var logins int
	loginHandler(mux, &logins)
	mux.HandleFunc("/good/path", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"metadata": map[string]string{"name": "leaf1"}},
			},
		})
	})

	c := newTestClient(t, mux)
	data, path := c.TryEndpoints([]string{"bad/path", "good/path"}, "toponodes")
	if path != "good/path" {
		t.Fatalf("served path = %q, want good/path", path)
	}
	names := ExtractNames(data, nil)
	if len(names) != 1 || names[0] != "leaf1" {
		t.Errorf("names = %v, want [leaf1]", names)
	}

	data, path = c.TryEndpoints([]string{"bad/path", "worse/path"}, "toponodes")
	if data != nil || path != "" {
		t.Errorf("expected nil data for all-failing endpoints, got %v via %q", data, path)
	}
}

func TestExtractNames(t *testing.T) {
	clabOnly := func(name string) bool { return strings.HasPrefix(name, "clab-") }

	tests := []struct {
		name   string
		data   any
		filter func(string) bool
		want   []string
	}{
		{
			name: "items list",
			data: map[string]any{"items": []any{
				map[string]any{"metadata": map[string]any{"name": "leaf1"}},
				map[string]any{"metadata": map[string]any{"name": "spine1"}},
			}},
			want: []string{"leaf1", "spine1"},
		},
		{
			name: "string list",
			data: []any{"clab-lab1", "eda-system"},
			filter: clabOnly,
			want: []string{"clab-lab1"},
		},
		{
			name: "object list with name",
			data: []any{map[string]any{"name": "leaf1"}},
			want: []string{"leaf1"},
		},
		{
			name: "unnamed entries skipped",
			data: map[string]any{"items": []any{map[string]any{"spec": "x"}}},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNames(tt.data, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractNames = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractNames[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
