// Package audit records administrative actions in a hash-chained trail, so
// that tampering with any recorded entry breaks every entry after it.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Entry is one recorded administrative action.
type Entry struct {
	Timestamp    string `json:"timestamp"`
	Actor        string `json:"actor"`
	Action       string `json:"action"`
	Entity       string `json:"entity"`
	EntityID     string `json:"entity_id,omitempty"`
	Detail       string `json:"detail,omitempty"`
	PreviousHash string `json:"previous_hash"`
	Hash         string `json:"hash"`
}

func (e *Entry) hashInput() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		e.PreviousHash, e.Timestamp, e.Actor, e.Action, e.Entity, e.EntityID, e.Detail)
}

// Trail is an append-only hash chain of entries. It keeps the recorded
// entries in memory for inspection; persistence is the caller's concern.
type Trail struct {
	mu           sync.Mutex
	previousHash string
	entries      []*Entry
}

// NewTrail starts an empty trail anchored on a zero hash.
func NewTrail() *Trail {
	return &Trail{previousHash: strings.Repeat("0", 64)}
}

// Record appends an action to the chain and returns the sealed entry.
func (t *Trail) Record(actor, action, entity, entityID, detail string) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := &Entry{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Actor:        actor,
		Action:       action,
		Entity:       entity,
		EntityID:     entityID,
		Detail:       detail,
		PreviousHash: t.previousHash,
	}

	hash := sha256.Sum256([]byte(entry.hashInput()))
	entry.Hash = hex.EncodeToString(hash[:])

	t.previousHash = entry.Hash
	t.entries = append(t.entries, entry)
	return entry
}

// Entries returns a snapshot of the recorded chain.
func (t *Trail) Entries() []*Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// VerifyChain checks that a slice of entries forms an unbroken hash chain.
func VerifyChain(entries []*Entry) bool {
	for i, entry := range entries {
		if i > 0 && entry.PreviousHash != entries[i-1].Hash {
			return false
		}

		hash := sha256.Sum256([]byte(entry.hashInput()))
		if hex.EncodeToString(hash[:]) != entry.Hash {
			return false
		}
	}
	return true
}
