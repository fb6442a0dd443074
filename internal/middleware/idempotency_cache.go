package middleware

import (
	"sync"
	"time"
)

type idempotencyState int

const (
	statePending idempotencyState = iota
	stateDone
)

type beginResult int

const (
	beginNew beginResult = iota
	beginReplay
	beginMismatch
	beginInFlight
)

// idempotencyRecord remembers the first request made with a key and, once it
// succeeded, its response.
type idempotencyRecord struct {
	state       idempotencyState
	fingerprint [32]byte
	status      int
	contentType string
	body        []byte
	expiresAt   time.Time
}

// IdempotencyStore holds idempotency records in memory for a fixed TTL.
type IdempotencyStore struct {
	mu       sync.Mutex
	records  map[string]*idempotencyRecord
	ttl      time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewIdempotencyStore creates a store and starts its expiry loop.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	s := &IdempotencyStore{
		records: make(map[string]*idempotencyRecord),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go s.janitor()
	return s
}

// begin claims scope for a request with fingerprint fp. A finished record is
// returned for replay.
func (s *IdempotencyStore) begin(scope string, fp [32]byte, now time.Time) (idempotencyRecord, beginResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[scope]
	if ok && now.After(rec.expiresAt) {
		delete(s.records, scope)
		ok = false
	}
	if !ok {
		s.records[scope] = &idempotencyRecord{
			state:       statePending,
			fingerprint: fp,
			expiresAt:   now.Add(s.ttl),
		}
		return idempotencyRecord{}, beginNew
	}

	switch {
	case rec.fingerprint != fp:
		return idempotencyRecord{}, beginMismatch
	case rec.state == statePending:
		return idempotencyRecord{}, beginInFlight
	default:
		return *rec, beginReplay
	}
}

// complete stores the response of the request that claimed scope.
func (s *IdempotencyStore) complete(scope string, status int, contentType string, body []byte, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[scope]
	if !ok {
		return
	}
	rec.state = stateDone
	rec.status = status
	rec.contentType = contentType
	rec.body = body
	rec.expiresAt = now.Add(s.ttl)
}

// abandon releases scope so the client may retry with the same key.
func (s *IdempotencyStore) abandon(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, scope)
}

// Len returns the number of live records.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Stop ends the expiry loop. It is safe to call more than once.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *IdempotencyStore) janitor() {
	ticker := time.NewTicker(max(s.ttl/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.expire(now)
		case <-s.stopCh:
			return
		}
	}
}

// expire drops finished records past their TTL. Pending records stay until
// their request ends.
func (s *IdempotencyStore) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for scope, rec := range s.records {
		if rec.state == stateDone && now.After(rec.expiresAt) {
			delete(s.records, scope)
		}
	}
}
