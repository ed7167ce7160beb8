package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	lerrors "botlint/internal/errors"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code lerrors.ErrorCode
		want int
	}{
		{lerrors.InvalidInput, http.StatusBadRequest},
		{lerrors.Unauthorized, http.StatusUnauthorized},
		{lerrors.RunNotFound, http.StatusNotFound},
		{lerrors.InputTooLarge, http.StatusRequestEntityTooLarge},
		{lerrors.UnsupportedFormat, http.StatusUnsupportedMediaType},
		{lerrors.RateLimited, http.StatusTooManyRequests},
		{lerrors.StorageUnavailable, http.StatusServiceUnavailable},
		{lerrors.InternalError, http.StatusInternalServerError},
		{lerrors.ErrorCode("SOMETHING_NEW"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := MapErrorToStatus(tt.code); got != tt.want {
			t.Errorf("MapErrorToStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWriteErrorPlain(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("disk on fire"), http.StatusInternalServerError)

	body := decode(t, rec)
	if body["success"] != false || body["error"] != "disk on fire" || body["code"] != "INTERNAL_ERROR" {
		t.Errorf("unexpected body: %v", body)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestWriteLintError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteLintError(rec, lerrors.New(lerrors.StorageUnavailable, "history unavailable", errors.New("locked")))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["error"] != "history unavailable" {
		t.Errorf("error = %v; the cause must not leak", body["error"])
	}
	if fixes, ok := body["suggestedFixes"].([]interface{}); !ok || len(fixes) == 0 {
		t.Errorf("suggestedFixes missing: %v", body)
	}
}
