package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "newsdesk/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body Envelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Success {
			t.Fatalf("expected success=false")
		}
		if body.Message != "internal error" {
			t.Fatalf("expected generic message for internal errors, got %q", body.Message)
		}
	})

	t.Run("business rule violation includes message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Cannot delete tenant with associated users"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body Envelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Message != "Cannot delete tenant with associated users" {
			t.Fatalf("expected rule message to be returned, got %q", body.Message)
		}
	})

	t.Run("validation error carries field detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.WithFields("The given data was invalid", map[string]string{
			"title": "The title field is required.",
		}))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}

		var body Envelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Errors["title"] != "The title field is required." {
			t.Fatalf("expected field error for title, got %v", body.Errors)
		}
	})
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 15, 31)
	if meta.LastPage != 3 {
		t.Fatalf("expected last_page 3, got %d", meta.LastPage)
	}
	if meta.CurrentPage != 2 || meta.PerPage != 15 || meta.Total != 31 {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	empty := NewMeta(1, 15, 0)
	if empty.LastPage != 1 {
		t.Fatalf("expected last_page 1 for empty sets, got %d", empty.LastPage)
	}
}
