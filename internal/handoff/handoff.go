// Package handoff passes the immutable result of one flow step to the next
// across independent view activations, through a tab-scoped key-value store.
package handoff

import (
	"encoding/json"
	"fmt"
	"sync"

	"smartivr/internal/domain"
	"smartivr/internal/ports"
)

// Key namespace for the handoff record. No other keys are persisted.
const (
	KeyCaptureReference = "captureReference"
	KeyTranscript       = "transcript"
	KeyLanguageTag      = "languageTag"
	KeyRawResult        = "rawResult"
)

// Record is the typed view of the handoff state. Empty strings and a nil
// RawResult mean the key is absent in the store.
type Record struct {
	CaptureReference string
	Transcript       string
	LanguageTag      string
	RawResult        *domain.RawResult
}

// HasSignal reports whether at least one primary input signal is present.
// Without one the analyze step must not be entered.
func (r Record) HasSignal() bool {
	return r.CaptureReference != "" || r.Transcript != ""
}

// Handoff reads and writes Records over an injectable key-value substrate.
type Handoff struct {
	kv ports.KeyValue
}

func New(kv ports.KeyValue) *Handoff {
	return &Handoff{kv: kv}
}

// Save overwrites the full record. Absent fields are deleted so a new flow
// start cannot inherit stale values from the previous one.
func (h *Handoff) Save(rec Record) error {
	putOrDelete(h.kv, KeyCaptureReference, rec.CaptureReference)
	putOrDelete(h.kv, KeyTranscript, rec.Transcript)
	putOrDelete(h.kv, KeyLanguageTag, rec.LanguageTag)

	if rec.RawResult == nil {
		h.kv.Delete(KeyRawResult)
		return nil
	}
	return h.SetRawResult(*rec.RawResult)
}

// SetRawResult stores the classification result once it becomes available,
// without touching the other keys.
func (h *Handoff) SetRawResult(result domain.RawResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode raw result: %w", err)
	}
	h.kv.Put(KeyRawResult, string(encoded))
	return nil
}

// Load reads the current record. Absent keys come back as zero values; a
// present but undecodable raw result is an error.
func (h *Handoff) Load() (Record, error) {
	rec := Record{}
	if v, ok := h.kv.Get(KeyCaptureReference); ok {
		rec.CaptureReference = v
	}
	if v, ok := h.kv.Get(KeyTranscript); ok {
		rec.Transcript = v
	}
	if v, ok := h.kv.Get(KeyLanguageTag); ok {
		rec.LanguageTag = v
	}
	if v, ok := h.kv.Get(KeyRawResult); ok {
		var result domain.RawResult
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			return rec, fmt.Errorf("failed to decode raw result: %w", err)
		}
		rec.RawResult = &result
	}
	return rec, nil
}

func putOrDelete(kv ports.KeyValue, key string, value string) {
	if value == "" {
		kv.Delete(key)
		return
	}
	kv.Put(key, value)
}

// MemoryStore is the in-process key-value substrate. It lives for the
// lifetime of one app instance, mirroring browser-tab session storage.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Put(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
