package pokedex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastSynced time.Time
		ttl        time.Duration
		want       bool
	}{
		{"never synced", time.Time{}, DefaultTTL, false},
		{"just synced", now, DefaultTTL, true},
		{"one hour ago", now.Add(-time.Hour), DefaultTTL, true},
		{"exactly at ttl", now.Add(-DefaultTTL), DefaultTTL, false},
		{"past ttl", now.Add(-DefaultTTL - time.Second), DefaultTTL, false},
		{"short ttl", now.Add(-2 * time.Minute), time.Minute, false},
		{"zero ttl", now, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFresh(tt.lastSynced, tt.ttl, now))
		})
	}
}

func TestFreshnessPolicy_Override(t *testing.T) {
	now := time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)
	policy := FreshnessPolicy{TTL: DefaultTTL, Now: func() time.Time { return now }}

	synced := now.Add(-2 * time.Hour)
	assert.True(t, policy.IsFresh(synced, 0))
	assert.False(t, policy.IsFresh(synced, time.Hour))
	assert.True(t, policy.IsFresh(synced, 3*time.Hour))
}

func TestNewFreshnessPolicy_DefaultsTTL(t *testing.T) {
	policy := NewFreshnessPolicy(0)
	assert.Equal(t, DefaultTTL, policy.TTL)
	assert.WithinDuration(t, time.Now(), policy.CurrentTime(), time.Second)
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("pokemon-species")
	assert.True(t, ok)
	assert.Equal(t, KindSpecies, k)

	_, ok = ParseKind("berry")
	assert.False(t, ok)
	assert.True(t, KindEvolutionChain.Valid())
	assert.False(t, Kind("berry").Valid())
}
