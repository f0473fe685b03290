package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"devicepool-backend/internal/logger"
	"devicepool-backend/internal/service"
)

type SystemHandler struct {
	systemSvc service.SystemService
}

func NewSystemHandler(systemSvc service.SystemService) *SystemHandler {
	return &SystemHandler{systemSvc: systemSvc}
}

func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.systemSvc.GetStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *SystemHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.systemSvc.GetConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type updateConfigRequest struct {
	IsTestMode    bool    `json:"isTestMode"`
	TestMessage   *string `json:"testMessage"`
	TestStartDate *string `json:"testStartDate"`
	TestEndDate   *string `json:"testEndDate"`
	TestType      *string `json:"testType"`
}

type updateConfigResponse struct {
	Config    any  `json:"config"`
	Broadcast bool `json:"broadcast"`
}

func (h *SystemHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, broadcast, err := h.systemSvc.UpdateConfig(r.Context(), service.UpdateSystemConfigParams{
		IsTestMode:    req.IsTestMode,
		TestMessage:   req.TestMessage,
		TestStartDate: req.TestStartDate,
		TestEndDate:   req.TestEndDate,
		TestType:      req.TestType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateConfigResponse{Config: cfg, Broadcast: broadcast})
}

func (h *SystemHandler) ToggleTestMode(w http.ResponseWriter, r *http.Request) {
	cfg, broadcast, err := h.systemSvc.ToggleTestMode(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateConfigResponse{Config: cfg, Broadcast: broadcast})
}

// StreamStatus serves the live status feed over Server-Sent Events. The
// first event is a snapshot, followed by change and heartbeat events until
// the client disconnects.
func (h *SystemHandler) StreamStatus(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	sub, err := h.systemSvc.Subscribe(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range sub.Events() {
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Error("Failed to marshal status event", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
			return
		}
		flusher.Flush()
	}
}
