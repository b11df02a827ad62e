// Package session stores editing sessions between requests.
//
// A [Record] holds the editor snapshot of one skill graph (see
// codec.MarshalSnapshot) plus bookkeeping. Backends:
//   - [MemoryStore]: in-process map for tests and single-instance servers
//   - [FileStore]: one JSON file per record for the CLI
//   - [RedisStore]: zstd-compressed records with native TTLs for
//     multi-instance deployments
//
// # Usage
//
//	rec := session.New("entrance camera", snapshot, session.DefaultTTL)
//	if err := store.Set(ctx, rec); err != nil {
//	    return err
//	}
//
//	rec, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid session id")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Record is one stored editing session.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Snapshot  json.RawMessage `json:"snapshot"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// ExpiresAt is zero for records that never expire.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// New creates a record with a fresh id. A zero ttl never expires.
func New(name string, snapshot []byte, ttl time.Duration) *Record {
	now := time.Now().UTC()
	r := &Record{
		ID:        uuid.NewString(),
		Name:      name,
		Snapshot:  snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		r.ExpiresAt = now.Add(ttl)
	}
	return r
}

// Touch records an update and extends the expiry by ttl.
func (r *Record) Touch(snapshot []byte, ttl time.Duration) {
	r.Snapshot = snapshot
	r.UpdatedAt = time.Now().UTC()
	if ttl > 0 {
		r.ExpiresAt = r.UpdatedAt.Add(ttl)
	}
}

// IsExpired returns true if the record has expired.
func (r *Record) IsExpired() bool {
	return !r.ExpiresAt.IsZero() && time.Now().After(r.ExpiresAt)
}

// TTL returns the time left before expiry, zero for records that never
// expire.
func (r *Record) TTL() time.Duration {
	if r.ExpiresAt.IsZero() {
		return 0
	}
	return max(time.Until(r.ExpiresAt), time.Millisecond)
}

// Summary is a record without its snapshot, as returned by List.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Record) summary() Summary {
	return Summary{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a record by id. Unknown and expired records return
	// ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Set creates or replaces a record.
	Set(ctx context.Context, r *Record) error

	// Delete removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns live records, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	Close() error
}

// CheckID rejects ids that could escape a store's key space.
func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
}
