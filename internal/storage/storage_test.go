package storage

import (
	"testing"

	"chordring/internal/domain"
)

func TestMemoryPutGetDelete(t *testing.T) {
	s := NewMemory(nil)
	res := domain.NewResource("test_key", "test_value")
	s.Put(res)

	got, err := s.Get(res.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Value != "test_value" {
		t.Fatalf("Get value = %q, want test_value", got.Value)
	}

	if err := s.Delete(res.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(res.Key); err != domain.ErrResourceNotFound {
		t.Fatalf("Get after delete = %v, want ErrResourceNotFound", err)
	}
}

func TestMemoryBetween(t *testing.T) {
	s := NewMemory(nil)
	s.Put(domain.Resource{Key: 5, RawKey: "a"})
	s.Put(domain.Resource{Key: 50, RawKey: "b"})
	s.Put(domain.Resource{Key: 500, RawKey: "c"})

	got := s.Between(0, 100)
	if len(got) != 2 {
		t.Fatalf("Between(0,100) returned %d resources, want 2", len(got))
	}
}
