package router

import (
	"testing"

	"github.com/portalestiba/notifier/internal/pkg/env"
)

func TestLimiterDatabase(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset falls back to default", "", defaultLimiterDatabase},
		{"configured value wins", "3", 3},
		{"unparsable falls back to default", "not-a-number", defaultLimiterDatabase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.Env = map[string]string{}
			if tt.value != "" {
				env.Env["CACHE_LIMITER_DB"] = tt.value
			}
			t.Cleanup(func() { env.Env = nil })

			if got := limiterDatabase(); got != tt.want {
				t.Errorf("limiterDatabase() = %d, want %d", got, tt.want)
			}
		})
	}
}
