package services

import (
	"sync"
	"time"
)

// Denylist keeps revoked token ids in memory until their expiry.
// It is per process: a restart forgets revocations.
type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *Denylist) Add(id string, expiresAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.purgeLocked()
	if expiresAt.After(d.now()) {
		d.entries[id] = expiresAt
	}
}

func (d *Denylist) Contains(id string) bool {
	if id == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.entries[id]
	if !ok {
		return false
	}
	if !exp.After(d.now()) {
		delete(d.entries, id)
		return false
	}
	return true
}

func (d *Denylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *Denylist) purgeLocked() {
	now := d.now()
	for id, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, id)
		}
	}
}
