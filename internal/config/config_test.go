package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Get()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 6*time.Hour, cfg.FreshTTL)
	assert.Equal(t, 8760*time.Hour, cfg.EmptyTTL)
	assert.Equal(t, 7, cfg.StalenessHorizon)
	assert.Equal(t, 1, cfg.RSSRecencyDays)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)

	assert.GreaterOrEqual(t, cfg.EmptyTTL, cfg.FreshTTL, "empty verdicts must not expire before fresh results")
}
