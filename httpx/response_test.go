package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusConflict, "INVALID_TRANSITION", "not allowed", map[string]any{"allowedTargets": []string{"Delivered"}})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "INVALID_TRANSITION" || resp.Message != "not allowed" || resp.Details == nil {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestJSONNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, nil)
	if w.Body.String() != "null" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestBlob(t *testing.T) {
	w := httptest.NewRecorder()
	Blob(w, http.StatusOK, "image/png", []byte{1, 2, 3})
	if w.Header().Get("Content-Length") != "3" || w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("unexpected headers: %v", w.Header())
	}
}

func TestText(t *testing.T) {
	w := httptest.NewRecorder()
	Text(w, http.StatusOK, "hello")
	if w.Body.String() != "hello" || w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected response: %q %v", w.Body.String(), w.Header())
	}
}
