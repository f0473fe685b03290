package http

import (
	"net/http"

	"devicepool-backend/internal/security"
	"devicepool-backend/internal/service"

	"github.com/gorilla/mux"
)

// NewRouter wires every handler onto the API surface. Admin routes sit
// behind the manager token guard; rent and return stay open to QA staff.
func NewRouter(
	deviceSvc service.DeviceService,
	rentalSvc service.RentalService,
	systemSvc service.SystemService,
	authSvc service.AuthService,
	tokens security.TokenManager,
) *mux.Router {
	devices := NewDeviceHandler(deviceSvc, authSvc)
	rentals := NewRentalHandler(rentalSvc)
	system := NewSystemHandler(systemSvc)
	auth := NewAuthHandler(authSvc)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)

	api.HandleFunc("/devices", devices.List).Methods(http.MethodGet)
	api.HandleFunc("/devices/available", devices.ListAvailable).Methods(http.MethodGet)
	api.HandleFunc("/devices/rented", devices.ListRented).Methods(http.MethodGet)
	api.HandleFunc("/devices/my", devices.ListRentedBy).Methods(http.MethodGet)
	api.HandleFunc("/devices/rent", devices.Rent).Methods(http.MethodPost)
	api.HandleFunc("/devices/return", devices.ReturnMultiple).Methods(http.MethodPost)
	api.HandleFunc("/devices/return/{id:[0-9]+}", devices.Return).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id:[0-9]+}", devices.Get).Methods(http.MethodGet)
	api.HandleFunc("/devices", managerOnly(tokens, devices.Create)).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id:[0-9]+}", managerOnly(tokens, devices.Update)).Methods(http.MethodPatch)
	api.HandleFunc("/devices/{id:[0-9]+}", managerOnly(tokens, devices.Delete)).Methods(http.MethodDelete)

	api.HandleFunc("/rentals", managerOnly(tokens, rentals.List)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/active", managerOnly(tokens, rentals.ListActive)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/returned", managerOnly(tokens, rentals.ListReturned)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/stats", managerOnly(tokens, rentals.Stats)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/stats/platform", managerOnly(tokens, rentals.PlatformStats)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/renter/{renterName}", rentals.ListByRenter).Methods(http.MethodGet)
	api.HandleFunc("/rentals/renter/{renterName}/active", rentals.ListActiveByRenter).Methods(http.MethodGet)
	api.HandleFunc("/rentals/device/{id:[0-9]+}", rentals.ListByDevice).Methods(http.MethodGet)
	api.HandleFunc("/rentals/device/{id:[0-9]+}/active", rentals.GetActiveByDevice).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}", managerOnly(tokens, rentals.Get)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}", managerOnly(tokens, rentals.Delete)).Methods(http.MethodDelete)

	api.HandleFunc("/system/status", system.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/system/status/stream", system.StreamStatus).Methods(http.MethodGet)
	api.HandleFunc("/system/config", managerOnly(tokens, system.GetConfig)).Methods(http.MethodGet)
	api.HandleFunc("/system/config", managerOnly(tokens, system.UpdateConfig)).Methods(http.MethodPut)
	api.HandleFunc("/system/test-mode/toggle", managerOnly(tokens, system.ToggleTestMode)).Methods(http.MethodPost)

	return r
}
