package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memConfigRepo struct {
	mu  sync.Mutex
	cfg domain.SystemConfig
}

func (m *memConfigRepo) Get(ctx context.Context) (*domain.SystemConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.cfg
	return &cfg, nil
}

func (m *memConfigRepo) Save(ctx context.Context, cfg *domain.SystemConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = *cfg
	return nil
}

func TestSystemHandler_GetStatus(t *testing.T) {
	repo := &memConfigRepo{cfg: domain.SystemConfig{ID: 1, IsTestMode: true}}
	svc := service.NewSystemService(repo, nil, time.Hour, 16)
	defer svc.Close()
	handler := NewSystemHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	handler.GetStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsTestMode)
	assert.False(t, status.CanRentDevices)
}

func TestSystemHandler_StreamStatusStartsWithSnapshot(t *testing.T) {
	repo := &memConfigRepo{cfg: domain.SystemConfig{ID: 1}}
	svc := service.NewSystemService(repo, nil, time.Hour, 16)
	defer svc.Close()
	handler := NewSystemHandler(svc)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/system/status/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.StreamStatus(rec, req)
	}()

	// Give the snapshot time to flush, then disconnect the client.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not exit after disconnect")
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: snapshot\n"), "stream should open with the snapshot: %q", body)
	assert.Contains(t, body, `"canRentDevices":true`)

	assert.Eventually(t, func() bool {
		return svc.ActiveSubscriberCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSystemHandler_UpdateConfigReportsBroadcast(t *testing.T) {
	repo := &memConfigRepo{cfg: domain.SystemConfig{ID: 1}}
	svc := service.NewSystemService(repo, nil, time.Hour, 16)
	defer svc.Close()
	handler := NewSystemHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/system/config",
		strings.NewReader(`{"isTestMode": true, "testMessage": "release candidate"}`))
	handler.UpdateConfig(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Broadcast bool `json:"broadcast"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Broadcast)
}

func TestSystemHandler_UpdateConfigRejectsBadDates(t *testing.T) {
	repo := &memConfigRepo{cfg: domain.SystemConfig{ID: 1}}
	svc := service.NewSystemService(repo, nil, time.Hour, 16)
	defer svc.Close()
	handler := NewSystemHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/system/config",
		strings.NewReader(`{"isTestMode": true, "testStartDate": "tomorrow"}`))
	handler.UpdateConfig(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
