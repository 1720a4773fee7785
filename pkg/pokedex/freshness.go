package pokedex

import "time"

// DefaultTTL is how long a synced record is served without refreshing
const DefaultTTL = 7 * 24 * time.Hour

// IsFresh reports whether a record synced at lastSynced is still within ttl
// at now. A record that was never synced is never fresh.
func IsFresh(lastSynced time.Time, ttl time.Duration, now time.Time) bool {
	if lastSynced.IsZero() || ttl <= 0 {
		return false
	}
	return now.Sub(lastSynced) < ttl
}

// FreshnessPolicy binds a TTL to a clock
type FreshnessPolicy struct {
	TTL time.Duration
	Now func() time.Time
}

// NewFreshnessPolicy returns a policy using the UTC wall clock. A non-positive
// ttl falls back to DefaultTTL.
func NewFreshnessPolicy(ttl time.Duration) FreshnessPolicy {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return FreshnessPolicy{TTL: ttl, Now: utcNow}
}

// CurrentTime returns the policy clock's time
func (p FreshnessPolicy) CurrentTime() time.Time {
	if p.Now == nil {
		return utcNow()
	}
	return p.Now()
}

// IsFresh applies the policy, using override instead of the policy TTL when
// it is positive
func (p FreshnessPolicy) IsFresh(lastSynced time.Time, override time.Duration) bool {
	ttl := p.TTL
	if override > 0 {
		ttl = override
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return IsFresh(lastSynced, ttl, p.CurrentTime())
}

func utcNow() time.Time {
	return time.Now().UTC()
}
