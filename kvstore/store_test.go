package kvstore

import (
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"
)

func seedStore(t *testing.T, rows map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.db")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("bolt.Open: %v", err)
	}
	defer db.Close()
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRows)
		if err != nil {
			return err
		}
		for k, v := range rows {
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}

func TestGetPresentAndAbsent(t *testing.T) {
	path := seedStore(t, map[string]string{"Tabc": "v1"})
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get([]byte("Tabc"))
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("Get present: v=%q ok=%v err=%v", v, ok, err)
	}

	_, ok, err = s.Get([]byte("Tmissing"))
	if err != nil || ok {
		t.Fatalf("Get absent: ok=%v err=%v, want ok=false", ok, err)
	}
}

func TestScanOrderedByPrefix(t *testing.T) {
	path := seedStore(t, map[string]string{
		"Taaa1": "1",
		"Taaa2": "2",
		"Tbbb1": "3",
	})
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	seq, err := s.Scan([]byte("Taaa"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var got []string
	for k, v := range seq {
		got = append(got, string(k)+"="+string(v))
	}
	want := []string{"Taaa1=1", "Taaa2=2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanEarlyBreak(t *testing.T) {
	path := seedStore(t, map[string]string{
		"Taaa1": "1",
		"Taaa2": "2",
		"Taaa3": "3",
	})
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	seq, err := s.Scan([]byte("Taaa"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected early break after 1 item, got %d", count)
	}
}
