package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/perfectdish/core/internal/config"
)

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"example.com", "example.com", true},
		{"example.com", "evil.com", false},
		{"*.example.com", "app.example.com", true},
		{"*.example.com", "example.org", false},
		{"localhost:*", "localhost:3000", true},
		{"localhost:*", "remotehost:3000", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchOriginPattern(tc.pattern, tc.host), "pattern=%q host=%q", tc.pattern, tc.host)
	}
}

func TestExtractOriginHost(t *testing.T) {
	assert.Equal(t, "example.com:8080", extractOriginHost("https://example.com:8080"))
	assert.Equal(t, "plainhost", extractOriginHost("plainhost"))
}

func TestCorsConfigDevAllowsAll(t *testing.T) {
	cfg := &config.AppConfig{Env: "development", AllowedOrigins: []string{"example.com"}}
	conf := corsConfig(cfg)
	assert.True(t, conf.AllowOriginFunc("https://anything.test"))
}

func TestCorsConfigProductionRestricts(t *testing.T) {
	cfg := &config.AppConfig{Env: "production", AllowedOrigins: []string{"example.com", "*.perfectdish.app"}}
	conf := corsConfig(cfg)

	assert.True(t, conf.AllowOriginFunc("https://example.com"))
	assert.True(t, conf.AllowOriginFunc("https://www.perfectdish.app"))
	assert.False(t, conf.AllowOriginFunc("https://evil.test"))
}
