package jsonstore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type record struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func TestStore_ReadMissingCollection(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var records []record
	if err := store.Read("absent", &records); err != nil {
		t.Fatalf("Read of missing collection failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty collection, got %d records", len(records))
	}
}

func TestStore_WriteRead(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []record{{ID: "a", Value: 1}, {ID: "b", Value: 2}}
	if err := store.Write("items", want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got []record
	if err := store.Read("items", &got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].Value != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Временный файл не должен оставаться после rename
	if _, err := os.Stat(filepath.Join(dir, "items.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind")
	}
}

func TestStore_ReadCorruptCollection(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "items.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	var records []record
	if err := store.Read("items", &records); err == nil {
		t.Error("expected decode error for corrupt collection")
	}
}

func TestStore_UpdateIsAtomicPerCollection(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Write("counters", []record{{ID: "c", Value: 0}}); err != nil {
		t.Fatal(err)
	}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var records []record
			err := store.Update("counters", &records, func() error {
				records[0].Value++
				return nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	var records []record
	if err := store.Read("counters", &records); err != nil {
		t.Fatal(err)
	}
	if records[0].Value != workers {
		t.Errorf("counter = %d, want %d (lost updates)", records[0].Value, workers)
	}
}

func TestStore_UpdateErrorLeavesCollectionUntouched(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Write("items", []record{{ID: "a", Value: 1}}); err != nil {
		t.Fatal(err)
	}

	var records []record
	updateErr := store.Update("items", &records, func() error {
		records[0].Value = 99
		return os.ErrPermission
	})
	if updateErr == nil {
		t.Fatal("expected error from fn to propagate")
	}

	var after []record
	if err := store.Read("items", &after); err != nil {
		t.Fatal(err)
	}
	if after[0].Value != 1 {
		t.Errorf("failed update was persisted: %+v", after)
	}
}
