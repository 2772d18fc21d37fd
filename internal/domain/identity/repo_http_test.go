package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/houkan/houkan/internal/platform/careapi"
)

func TestListStaffsPassesStatusFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/staffs" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "active" {
			t.Fatalf("unexpected status %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"staffs": [{"id": "` + uuid.NewString() + `", "name": "Tanaka", "status": "active"}]}`))
	}))
	defer srv.Close()

	repo := NewHTTPRepository(careapi.NewClient(srv.URL))
	staffs, err := repo.ListStaffs(context.Background(), "active")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(staffs) != 1 || staffs[0].Name != "Tanaka" {
		t.Fatalf("unexpected staffs %v", staffs)
	}
}

func TestListPatientsOmitsEmptyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("status") {
			t.Fatal("empty status must not be sent")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"patients": []}`))
	}))
	defer srv.Close()

	repo := NewHTTPRepository(careapi.NewClient(srv.URL))
	if _, err := repo.ListPatients(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
