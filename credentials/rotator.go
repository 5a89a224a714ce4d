package credentials

import (
	"fmt"
	"sync"
)

// Rotator owns an ordered credential set and the index of the one in
// use. The only transition is forward-cyclic, triggered by an explicit
// rate-limit-exhaustion signal; the index never moves otherwise.
//
// Readers of Current may race with a concurrent rotation and observe
// one stale choice, but always a valid, in-range credential.
type Rotator struct {
	mu      sync.Mutex
	creds   []string
	current int
}

// NewRotator builds a rotator from a primary credential and ordered
// backups. The primary must be non-empty.
func NewRotator(primary string, backups ...string) (*Rotator, error) {
	if primary == "" {
		return nil, fmt.Errorf("credentials: primary credential must not be empty")
	}
	for i, b := range backups {
		if b == "" {
			return nil, fmt.Errorf("credentials: backup credential %d must not be empty", i)
		}
	}

	return &Rotator{
		creds: append([]string{primary}, backups...),
	}, nil
}

// Current returns the credential in use.
func (r *Rotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.creds[r.current]
}

// OnRateLimited advances to the next credential, wrapping around.
// No-op when only one credential is configured.
func (r *Rotator) OnRateLimited() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.creds) < 2 {
		return
	}
	r.current = (r.current + 1) % len(r.creds)
}

// Len returns the number of configured credentials.
func (r *Rotator) Len() int {
	return len(r.creds)
}

// Index returns the position of the credential in use.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}
