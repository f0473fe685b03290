package http

import (
	"net/http"
	"strconv"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/service"

	"github.com/gorilla/mux"
)

type DeviceHandler struct {
	deviceSvc service.DeviceService
	authSvc   service.AuthService
}

func NewDeviceHandler(deviceSvc service.DeviceService, authSvc service.AuthService) *DeviceHandler {
	return &DeviceHandler{deviceSvc: deviceSvc, authSvc: authSvc}
}

func pathID(r *http.Request) (int32, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.deviceSvc.ListDevices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	devices, err := h.deviceSvc.ListAvailable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) ListRented(w http.ResponseWriter, r *http.Request) {
	devices, err := h.deviceSvc.ListRented(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) ListRentedBy(w http.ResponseWriter, r *http.Request) {
	renter := r.URL.Query().Get("renter")
	if renter == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "renter query parameter is required"})
		return
	}
	devices, err := h.deviceSvc.ListRentedBy(r.Context(), renter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid device id"})
		return
	}
	device, err := h.deviceSvc.GetDevice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

type createDeviceRequest struct {
	DeviceNumber         string          `json:"deviceNumber"`
	ProductName          string          `json:"productName"`
	ModelName            string          `json:"modelName"`
	OSVersion            string          `json:"osVersion"`
	IsRootedOrJailbroken bool            `json:"isRootedOrJailbroken"`
	Platform             domain.Platform `json:"platform"`
}

func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Platform == "" {
		req.Platform = domain.PlatformAndroid
	}
	device := &domain.Device{
		DeviceNumber:         req.DeviceNumber,
		ProductName:          req.ProductName,
		ModelName:            req.ModelName,
		OSVersion:            req.OSVersion,
		IsRootedOrJailbroken: req.IsRootedOrJailbroken,
		Platform:             req.Platform,
	}
	created, err := h.deviceSvc.CreateDevice(r.Context(), device)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type updateDeviceRequest struct {
	DeviceNumber         *string          `json:"deviceNumber"`
	ProductName          *string          `json:"productName"`
	ModelName            *string          `json:"modelName"`
	OSVersion            *string          `json:"osVersion"`
	IsRootedOrJailbroken *bool            `json:"isRootedOrJailbroken"`
	Platform             *domain.Platform `json:"platform"`
}

func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid device id"})
		return
	}
	var req updateDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	device, err := h.deviceSvc.UpdateDevice(r.Context(), id, service.UpdateDeviceParams{
		DeviceNumber:         req.DeviceNumber,
		ProductName:          req.ProductName,
		ModelName:            req.ModelName,
		OSVersion:            req.OSVersion,
		IsRootedOrJailbroken: req.IsRootedOrJailbroken,
		Platform:             req.Platform,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid device id"})
		return
	}
	if err := h.deviceSvc.DeleteDevice(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type rentDevicesRequest struct {
	DeviceIDs  []int32 `json:"deviceIds"`
	RenterName string  `json:"renterName"`
}

func (h *DeviceHandler) Rent(w http.ResponseWriter, r *http.Request) {
	var req rentDevicesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	devices, err := h.deviceSvc.RentDevices(r.Context(), req.DeviceIDs, req.RenterName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

type returnDeviceRequest struct {
	RenterName string `json:"renterName"`
	Password   string `json:"password"`
}

func (h *DeviceHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid device id"})
		return
	}
	var req returnDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.authSvc.VerifyQAPassword(req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	device, err := h.deviceSvc.ReturnDevice(r.Context(), id, req.RenterName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

type returnMultipleRequest struct {
	DeviceIDs  []int32 `json:"deviceIds"`
	RenterName string  `json:"renterName"`
	Password   string  `json:"password"`
}

func (h *DeviceHandler) ReturnMultiple(w http.ResponseWriter, r *http.Request) {
	var req returnMultipleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.authSvc.VerifyQAPassword(req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	devices, err := h.deviceSvc.ReturnMultipleDevices(r.Context(), req.DeviceIDs, req.RenterName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
