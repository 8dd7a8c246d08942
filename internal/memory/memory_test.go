package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	bolt "go.etcd.io/bbolt"
)

func TestAppendList(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "memory.db"))

	threadA, threadB := NewThread(), NewThread()
	if threadA == threadB {
		t.Fatal("NewThread() returned the same id twice")
	}

	records := []Record{
		{Thread: threadA, Tool: "list-servers", Output: json.RawMessage(`{"servers":[]}`)},
		{Thread: threadB, Tool: "discover-servers", Input: json.RawMessage(`{"query":"news"}`)},
		{Thread: threadA, Tool: "add-mcp-server", Error: "servers configuration block not found"},
	}
	for _, r := range records {
		if err := s.Append(r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	all, err := s.List("", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() = %d records, want 3", len(all))
	}
	if all[0].At.IsZero() {
		t.Error("Append() should stamp At")
	}

	a, _ := s.List(threadA, 0)
	if len(a) != 2 || a[1].Tool != "add-mcp-server" {
		t.Errorf("List(threadA) = %+v", a)
	}

	last, _ := s.List("", 1)
	if len(last) != 1 || last[0].Tool != "add-mcp-server" {
		t.Errorf("List(limit 1) = %+v", last)
	}
}

func TestList_MissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "memory.db"))
	records, err := s.List("", 0)
	if err != nil || records != nil {
		t.Errorf("List() = (%v, %v), want (nil, nil)", records, err)
	}
}

func TestList_SkipsUndecodableValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	s := New(path)
	if err := s.Append(Record{Thread: "t", Tool: "list-servers"}); err != nil {
		t.Fatal(err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		seq, _ := b.NextSequence()
		return b.Put(seqKey(seq), []byte("not json"))
	})
	db.Close()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Append(Record{Thread: "t", Tool: "discover-servers"}); err != nil {
		t.Fatal(err)
	}

	records, err := s.List("t", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].Tool != "discover-servers" {
		t.Errorf("List() = %+v, want the two decodable records in order", records)
	}
}

func TestList_LimitPerThread(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "memory.db"))
	for i, thread := range []string{"a", "b", "a", "b", "a"} {
		r := Record{Thread: thread, Tool: "discover-servers", Input: json.RawMessage(strconv.Itoa(i))}
		if err := s.Append(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List("a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got[0].Input) != "2" || string(got[1].Input) != "4" {
		t.Errorf("List(a, 2) = %+v, want inputs 2 then 4", got)
	}
}

func TestList_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	if err := os.WriteFile(path, []byte("{\"thread\":\"t\"}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path).List("", 0); err == nil {
		t.Error("List() on a non-database file should fail")
	}
}

func TestAppend_Concurrent(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "memory.db"))
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Append(Record{Thread: "t", Tool: "list-servers"}); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}()
	}
	wg.Wait()

	records, _ := s.List("t", 0)
	if len(records) != 20 {
		t.Errorf("List() = %d records, want 20", len(records))
	}
}
