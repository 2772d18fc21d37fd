package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContextDefaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestFromContextClampsLimit(t *testing.T) {
	p := paramsFor(t, "limit=9999&offset=10")
	if p.Limit != MaxLimit {
		t.Fatalf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset != 10 {
		t.Fatalf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContextRejectsNegatives(t *testing.T) {
	p := paramsFor(t, "limit=-5&offset=-3")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("unexpected params: %+v", p)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, total := Slice(items, Params{Limit: 2, Offset: 0})
	if total != 5 || len(page) != 2 || page[0] != 1 {
		t.Fatalf("unexpected page %v total %d", page, total)
	}

	page, total = Slice(items, Params{Limit: 2, Offset: 4})
	if len(page) != 1 || page[0] != 5 {
		t.Fatalf("unexpected tail page %v", page)
	}

	page, total = Slice(items, Params{Limit: 2, Offset: 10})
	if page == nil || len(page) != 0 || total != 5 {
		t.Fatalf("offset past end must yield an empty page, got %v", page)
	}
}

func TestResponseHasMore(t *testing.T) {
	r := NewResponse([]int{1, 2}, 10, 2, 0)
	if !r.HasMore {
		t.Fatal("expected has_more true")
	}
	r = NewResponse([]int{1, 2}, 4, 2, 2)
	if r.HasMore {
		t.Fatal("expected has_more false")
	}
}
