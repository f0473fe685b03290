package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "active"
	RentalStatusReturned RentalStatus = "returned"
)

// Rental is one borrow-to-return cycle. ReturnedAt stays nil while the
// rental is active; the active→returned transition happens exactly once.
type Rental struct {
	ID         int32        `json:"id"`
	RenterName string       `json:"renterName"`
	DeviceID   int32        `json:"deviceId"`
	RentedAt   time.Time    `json:"rentedAt"`
	ReturnedAt *time.Time   `json:"returnedAt"`
	Status     RentalStatus `json:"status"`
}

type RentalStats struct {
	TotalRentals    int32 `json:"totalRentals"`
	ActiveRentals   int32 `json:"activeRentals"`
	ReturnedRentals int32 `json:"returnedRentals"`
	UniqueRenters   int32 `json:"uniqueRenters"`
}

type PlatformCount struct {
	Active int32 `json:"active"`
	Total  int32 `json:"total"`
}

type PlatformRentalStats struct {
	Android PlatformCount `json:"android"`
	IOS     PlatformCount `json:"ios"`
}
