package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	conf := fromViper(newViper())

	assert.Equal(t, "8080", conf.Port)
	assert.Equal(t, 8, conf.TxRefMinLength)
	assert.Equal(t, 0.9, conf.CompletionThreshold)
	assert.Equal(t, AccessFromPayments, conf.AccessSource)
	assert.Equal(t, 10*time.Second, conf.APITimeout)
	assert.NotEmpty(t, conf.SessionKey)
	assert.False(t, conf.UseDatabase())
}

func TestFromViperEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.test/v1/")
	t.Setenv("ACCESS_SOURCE", "ENDPOINT")
	t.Setenv("COMPLETION_THRESHOLD", "1.5")
	t.Setenv("TX_REF_MIN_LENGTH", "10")
	t.Setenv("DATABASE_URL", "postgres://localhost/learnhub")

	conf := fromViper(newViper())

	assert.Equal(t, "https://api.example.test/v1", conf.APIBaseURL)
	assert.Equal(t, AccessFromEndpoint, conf.AccessSource)
	assert.Equal(t, 0.9, conf.CompletionThreshold, "out of range threshold falls back")
	assert.Equal(t, 10, conf.TxRefMinLength)
	assert.True(t, conf.UseDatabase())
}
