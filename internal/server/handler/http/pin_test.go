package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/SolForge/internal/service"
)

// fakePinService implements PinService for testing.
type fakePinService struct {
	res service.PinResult
	err error
	req service.PinRequest
}

func (f *fakePinService) Pin(_ context.Context, req service.PinRequest) (service.PinResult, error) {
	f.req = req
	return f.res, f.err
}

func TestPinHandler_Pin(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakePinService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "ok",
			body:           `{"name":"Ember Drake","imageUrl":"data:image/png;base64,AAAA"}`,
			service:        &fakePinService{res: service.PinResult{MetadataURI: "ipfs://bafymeta"}},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"metadataUri":"ipfs://bafymeta"`,
		},
		{
			name:           "invalid JSON",
			body:           `nope`,
			service:        &fakePinService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid JSON",
		},
		{
			name:           "missing jwt",
			body:           `{}`,
			service:        &fakePinService{err: service.ErrPinningNotConfigured},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "Missing PINATA_JWT",
		},
		{
			name:           "not a data url",
			body:           `{"imageUrl":"https://x/a.png"}`,
			service:        &fakePinService{err: service.ErrInvalidImage},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid image",
		},
		{
			name:           "upload failure",
			body:           `{}`,
			service:        &fakePinService{err: errors.New("pinata: status 502")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "failed to pin card",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/pin", bytes.NewBufferString(tt.body))
			h := &PinHandler{PinService: tt.service}

			h.Pin(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}
