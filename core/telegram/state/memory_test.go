package state

import (
	"sync"
	"testing"
)

func TestMemoryStoreLastCity(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.LastCity(1); ok {
		t.Fatal("fresh store must not have a city")
	}

	s.SetLastCity(1, "Сочи")
	s.SetLastCity(2, "Москва")
	s.SetLastCity(1, "Игора")

	if city, ok := s.LastCity(1); !ok || city != "Игора" {
		t.Fatalf("LastCity(1) = %q, %v", city, ok)
	}
	if city, _ := s.LastCity(2); city != "Москва" {
		t.Fatalf("LastCity(2) = %q", city)
	}
	if _, ok := s.LastCity(3); ok {
		t.Fatal("unknown user must not have a city")
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.SetLastCity(id%5, "Сочи")
			_, _ = s.LastCity(id % 5)
		}(int64(i))
	}
	wg.Wait()
	for id := int64(0); id < 5; id++ {
		if _, ok := s.LastCity(id); !ok {
			t.Fatalf("user %d missing", id)
		}
	}
}
