package http

import (
	"net/http"

	"devicepool-backend/internal/service"

	"github.com/gorilla/mux"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ListRentals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ListActiveRentals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) ListReturned(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ListReturnedRentals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rentalSvc.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *RentalHandler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rentalSvc.GetPlatformStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *RentalHandler) ListByRenter(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ListByRenter(r.Context(), mux.Vars(r)["renterName"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) ListActiveByRenter(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ListActiveByRenter(r.Context(), mux.Vars(r)["renterName"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) ListByDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid device id"})
		return
	}
	rentals, err := h.rentalSvc.ListByDevice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) GetActiveByDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid device id"})
		return
	}
	rental, err := h.rentalSvc.GetActiveByDevice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rental id"})
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rental id"})
		return
	}
	if err := h.rentalSvc.DeleteRental(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
