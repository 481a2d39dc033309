package cache

import (
	"testing"
	"time"
)

func TestManager_SetAndGet(t *testing.T) {
	m := NewManager(5 * time.Minute)

	m.Set("key", "value", 0)
	v, found := m.Get("key")
	if !found {
		t.Fatal("expected key to be found")
	}
	if v.(string) != "value" {
		t.Errorf("got %v, want value", v)
	}
}

func TestManager_GetMissing(t *testing.T) {
	m := NewManager(5 * time.Minute)
	if _, found := m.Get("absent"); found {
		t.Error("expected miss for absent key")
	}
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(5 * time.Minute)
	m.Set("key", 1, 0)
	m.Delete("key")
	if _, found := m.Get("key"); found {
		t.Error("expected key to be gone after delete")
	}
}

func TestManager_Flush(t *testing.T) {
	m := NewManager(5 * time.Minute)
	m.Set("a", 1, 0)
	m.Set("b", 2, 0)
	m.Flush()
	if _, found := m.Get("a"); found {
		t.Error("expected cache to be empty after flush")
	}
}

func TestManager_ZeroTTLNeverExpires(t *testing.T) {
	m := NewManager(0)
	m.Set("key", "value", 0)
	if _, found := m.Get("key"); !found {
		t.Error("no-expiration cache lost an entry")
	}
}

func TestManager_ImageNegativeCaching(t *testing.T) {
	m := NewManager(0)

	if _, found := m.GetImage("https://site.com/article"); found {
		t.Fatal("expected miss before any resolution")
	}

	m.SetImage("https://site.com/article", "")
	url, found := m.GetImage("https://site.com/article")
	if !found {
		t.Fatal("cached negative result must count as found")
	}
	if url != "" {
		t.Errorf("negative entry should be empty, got %q", url)
	}

	m.SetImage("https://site.com/other", "https://site.com/og.jpg")
	url, found = m.GetImage("https://site.com/other")
	if !found || url != "https://site.com/og.jpg" {
		t.Errorf("positive entry lost: %q %v", url, found)
	}
}
