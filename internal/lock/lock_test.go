package lock

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

func TestLock_AcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, filepath.Join(dir, "mcp.ts"))

	release, err := l.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("lock file not created: %v", err)
	}
	if string(data) != strconv.Itoa(os.Getpid()) {
		t.Errorf("lock file content = %q, want own PID", data)
	}

	if err := release(); err != nil {
		t.Fatalf("release() error = %v", err)
	}

	// released means another handle can take it at once
	other := flock.New(l.Path())
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() after release = (%v, %v), want (true, nil)", ok, err)
	}
	other.Unlock()
}

func TestLock_SerializesGoroutines(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "target", WithRetryInterval(time.Millisecond))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background())
			if err != nil {
				t.Errorf("Lock() error = %v", err)
				return
			}
			mu.Lock()
			holders++
			maxSeen = max(maxSeen, holders)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestLock_LeftoverFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"dead holder PID", "2147483646"},
		{"empty after crash", ""},
		{"garbage", "not-a-pid"},
		{"own PID from earlier run", strconv.Itoa(os.Getpid())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			l := New(dir, "target")
			if err := os.WriteFile(l.Path(), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			// an unheld file must not block even without a deadline
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			release, err := l.Lock(ctx)
			if err != nil {
				t.Fatalf("Lock() over leftover file error = %v", err)
			}
			release()
		})
	}
}

func TestLock_HeldByOtherHandle(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "target", WithRetryInterval(5*time.Millisecond))

	holder := flock.New(l.Path())
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() = (%v, %v)", ok, err)
	}
	if err := os.WriteFile(l.Path(), []byte("4242"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx)
	if !errors.Is(err, errors.ErrLocked) {
		t.Fatalf("Lock() error = %v, want ErrLocked", err)
	}
	if !strings.Contains(err.Error(), "PID 4242") {
		t.Errorf("Lock() error = %v, want holder PID", err)
	}

	// the semaphore is released on failure
	holder.Unlock()
	release, err := l.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() after holder left error = %v", err)
	}
	release()
}

func TestLock_WaitsForHolder(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "target", WithRetryInterval(time.Millisecond))

	holder := flock.New(l.Path())
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock() = (%v, %v)", ok, err)
	}
	time.AfterFunc(20*time.Millisecond, func() { holder.Unlock() })

	release, err := l.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	release()
}

func TestFilePath(t *testing.T) {
	a := FilePath("/state", "/work/a/mcp.ts")
	b := FilePath("/state", "/work/b/mcp.ts")
	if a == b {
		t.Error("different targets should use different lock files")
	}
	if filepath.Dir(a) != "/state" {
		t.Errorf("FilePath() dir = %q, want /state", filepath.Dir(a))
	}
	if a != FilePath("/state", "/work/a/mcp.ts") {
		t.Error("FilePath() should be stable")
	}
}
