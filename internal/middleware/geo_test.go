package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "us")
				r.Header.Set("CF-IPCountry", "id")
			},
			want: "US",
		},
		{
			name: "cloudflare header",
			setup: func(r *http.Request) {
				r.Header.Set("CF-IPCountry", "sg")
			},
			want: "SG",
		},
		{
			name: "cloudflare unknown falls through",
			setup: func(r *http.Request) {
				r.Header.Set("CF-IPCountry", "XX")
			},
			want: "",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "my", nil
			},
			want: "MY",
		},
		{
			name: "forwarded ip used for resolver",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
			},
			resolver: func(ip string) (string, error) {
				if ip != "198.51.100.7" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "de", nil
			},
			want: "DE",
		},
		{
			name: "resolver error returns empty",
			resolver: func(ip string) (string, error) {
				return "", assertError("boom")
			},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := ResolveCountry(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCountryMiddleware(t *testing.T) {
	var got string
	h := Country(func(string) (string, error) { return "jp", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CountryFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/feedback", nil))
	if got != "JP" {
		t.Fatalf("CountryFromContext() = %q, want JP", got)
	}
}

func TestCountryFromContextDefault(t *testing.T) {
	if got := CountryFromContext(context.Background()); got != "" {
		t.Fatalf("CountryFromContext() = %q, want empty", got)
	}
}
