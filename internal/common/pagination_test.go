package common

import (
	"net/http/httptest"
	"testing"
)

func TestParsePaginationClampsPageSize(t *testing.T) {
	r := httptest.NewRequest("GET", "/items?page=3&limit=5000", nil)
	page, perPage := ParsePagination(r, 20)
	if page != 3 {
		t.Fatalf("page = %d, want 3", page)
	}
	if perPage != MaxPerPage {
		t.Fatalf("perPage = %d, want clamped to %d", perPage, MaxPerPage)
	}
}

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/items?page=-1&limit=junk", nil)
	page, perPage := ParsePagination(r, 20)
	if page != 1 || perPage != 20 {
		t.Fatalf("page/perPage = %d/%d, want 1/20", page, perPage)
	}
}

func TestAtoiDefaultTrimsWhitespace(t *testing.T) {
	if got := AtoiDefault(" 7 ", 3); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
	if got := AtoiDefault("  ", 3); got != 3 {
		t.Fatalf("got %d, want fallback 3", got)
	}
}
