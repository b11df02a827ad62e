package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestNewRecord(t *testing.T) {
	r := New("entrance", []byte(`{"version":1}`), time.Hour)
	if err := CheckID(r.ID); err != nil {
		t.Errorf("CheckID(%q) = %v", r.ID, err)
	}
	if r.ExpiresAt.IsZero() || r.IsExpired() {
		t.Errorf("ExpiresAt = %v, want an hour from now", r.ExpiresAt)
	}
	if r.TTL() <= 0 || r.TTL() > time.Hour {
		t.Errorf("TTL = %v", r.TTL())
	}

	forever := New("", nil, 0)
	if !forever.ExpiresAt.IsZero() || forever.TTL() != 0 {
		t.Errorf("zero ttl record expires at %v", forever.ExpiresAt)
	}
	if forever.ID == r.ID {
		t.Error("records share an id")
	}
}

func TestCheckID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{"5c1f5d9e-3f7a-4c1e-9a53-0fd1c8f35a10", true},
		{"", false},
		{"../../etc/passwd", false},
		{"not-a-uuid", false},
	}
	for _, tt := range tests {
		if err := CheckID(tt.id); (err == nil) != tt.ok {
			t.Errorf("CheckID(%q) = %v, want ok=%v", tt.id, err, tt.ok)
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			r := New("entrance", []byte(`{"version":1,"next_id":2}`), time.Hour)
			if err := s.Set(ctx, r); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err := s.Get(ctx, r.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Name != "entrance" || string(got.Snapshot) != `{"version":1,"next_id":2}` {
				t.Errorf("Get = %+v", got)
			}

			got.Touch([]byte(`{"version":1,"next_id":3}`), time.Hour)
			if err := s.Set(ctx, got); err != nil {
				t.Fatalf("Set after Touch: %v", err)
			}
			again, _ := s.Get(ctx, r.ID)
			if string(again.Snapshot) != `{"version":1,"next_id":3}` {
				t.Errorf("snapshot after update = %s", again.Snapshot)
			}

			if err := s.Delete(ctx, r.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Delete = %v, want ErrNotFound", err)
			}
			if err := s.Delete(ctx, r.ID); err != nil {
				t.Errorf("second Delete = %v", err)
			}
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			r := New("old", []byte(`{}`), time.Hour)
			r.ExpiresAt = time.Now().Add(-time.Minute)
			if err := s.Set(ctx, r); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if _, err := s.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get expired = %v, want ErrNotFound", err)
			}
			list, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 0 {
				t.Errorf("List = %v, want empty", list)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Now().UTC()
			var ids []string
			for i, n := range []string{"a", "b", "c"} {
				r := New(n, []byte(`{}`), 0)
				r.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
				if err := s.Set(ctx, r); err != nil {
					t.Fatalf("Set: %v", err)
				}
				ids = append(ids, r.ID)
			}

			list, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 3 {
				t.Fatalf("List returned %d records, want 3", len(list))
			}
			if list[0].ID != ids[2] || list[2].ID != ids[0] {
				t.Errorf("List order = %v, want most recent first", list)
			}
		})
	}
}

func TestStoreRejectsBadID(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			r := New("x", nil, 0)
			r.ID = "../escape"
			if err := s.Set(ctx, r); !errors.Is(err, ErrInvalidID) {
				t.Errorf("Set = %v, want ErrInvalidID", err)
			}
			if _, err := s.Get(ctx, "../escape"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if s.Path() != dir {
		t.Errorf("Path = %q, want %q", s.Path(), dir)
	}
	r := New("x", []byte(`{}`), 0)
	if err := s.Set(context.Background(), r); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, r.ID+".json"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode = %o, want 0600", perm)
	}
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(context.Background(), New("ok", []byte(`{}`), 0)); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "ok" {
		t.Errorf("List = %v", list)
	}
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	fs, _ := NewFileStore(t.TempDir())

	for _, s := range []interface {
		Store
		Cleanup(context.Context) error
	}{mem, fs} {
		live := New("live", []byte(`{}`), time.Hour)
		dead := New("dead", []byte(`{}`), time.Hour)
		dead.ExpiresAt = time.Now().Add(-time.Second)
		_ = s.Set(ctx, live)
		_ = s.Set(ctx, dead)

		if err := s.Cleanup(ctx); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
		if _, err := s.Get(ctx, live.ID); err != nil {
			t.Errorf("live record: %v", err)
		}
	}
	if len(mem.records) != 1 {
		t.Errorf("memory store kept %d records, want 1", len(mem.records))
	}
	entries, _ := os.ReadDir(fs.Path())
	if len(entries) != 1 {
		t.Errorf("file store kept %d files, want 1", len(entries))
	}
}

func TestRecordCodec(t *testing.T) {
	r := New("cam", []byte(`{"version":1}`), time.Hour)
	raw, err := encodeRecord(r)
	if err != nil {
		t.Fatalf("encodeRecord: %v", err)
	}
	got, err := decodeRecord(raw)
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if got.ID != r.ID || string(got.Snapshot) != string(r.Snapshot) {
		t.Errorf("decoded = %+v", got)
	}
	if _, err := decodeRecord([]byte("plain")); err == nil {
		t.Error("decodeRecord(plain) succeeded")
	}
}
