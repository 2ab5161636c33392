package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"), "test.yml")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "blogDB", cfg.Mongo.Name)
	assert.Equal(t, StorageGridFS, cfg.Storage.Driver)
	assert.Equal(t, "uploads", cfg.Storage.Bucket)
	assert.Equal(t, "pd_session", cfg.Session.CookieName)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "web/templates/*.html", cfg.Template.Glob)
}

func TestParseOverrides(t *testing.T) {
	content := `
port: 8080
env: production
mongo:
  url: mongodb://db:27017
  name: recipes
session:
  ttl: 1h
  cookie_secure: true
storage:
  driver: s3
  bucket: images
  s3:
    region: us-east-1
    access_key_id: key
    secret_access_key: secret
`
	cfg, err := Parse([]byte(content), "test.yml")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "recipes", cfg.Mongo.Name)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, StorageS3, cfg.Storage.Driver)
	assert.Equal(t, "us-east-1", cfg.Storage.S3.Region)
}

func TestParseRejectsInvalidPort(t *testing.T) {
	_, err := Parse([]byte("port: 0"), "test.yml")
	assert.Error(t, err)

	_, err = Parse([]byte("port: 70000"), "test.yml")
	assert.Error(t, err)
}

func TestParseRejectsUnknownStorageDriver(t *testing.T) {
	_, err := Parse([]byte("storage:\n  driver: ftp"), "test.yml")
	assert.Error(t, err)
}

func TestParseRejectsIncompleteS3(t *testing.T) {
	content := `
storage:
  driver: s3
  s3:
    region: us-east-1
`
	_, err := Parse([]byte(content), "test.yml")
	assert.Error(t, err)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("no_such_field: true"), "test.yml")
	assert.Error(t, err)
}

func TestOAuthProviderEnabled(t *testing.T) {
	assert.False(t, OAuthProviderConfig{}.Enabled())
	assert.False(t, OAuthProviderConfig{ClientID: "id"}.Enabled())
	assert.True(t, OAuthProviderConfig{ClientID: "id", ClientSecret: "secret"}.Enabled())
}
