package render

import (
	"sync"

	"spool/internal/fingerprint"
)

// ClaimSet tracks which fingerprints are being rendered right now. A
// claim lives exactly as long as one render: taken before the render
// starts, released when it finishes, regardless of how it finishes.
//
// TryClaim is the only synchronization point that keeps two workers
// from rendering the same content. The check and the insert happen
// under one lock acquisition, never as separate steps.
type ClaimSet struct {
	mu       sync.Mutex
	inflight map[fingerprint.Fingerprint]struct{}
}

func NewClaimSet() *ClaimSet {
	return &ClaimSet{inflight: make(map[fingerprint.Fingerprint]struct{})}
}

// TryClaim inserts fp if absent and reports whether the caller now
// holds the claim. A false return means another render holds it.
func (c *ClaimSet) TryClaim(fp fingerprint.Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.inflight[fp]; held {
		return false
	}
	c.inflight[fp] = struct{}{}
	return true
}

// Release drops the claim on fp. Releasing an unheld fingerprint is a
// no-op so cleanup paths do not need to track whether the claim
// succeeded.
func (c *ClaimSet) Release(fp fingerprint.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, fp)
}

// Held reports whether fp is currently claimed.
func (c *ClaimSet) Held(fp fingerprint.Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, held := c.inflight[fp]
	return held
}

// Len returns the number of in-flight claims.
func (c *ClaimSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}
