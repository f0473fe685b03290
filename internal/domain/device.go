package domain

import "time"

type Platform string

const (
	PlatformAndroid Platform = "Android"
	PlatformIOS     Platform = "iOS"
)

type DeviceStatus string

const (
	DeviceStatusAvailable DeviceStatus = "available"
	DeviceStatusRented    DeviceStatus = "rented"
)

// Device is one physical test handset in the pool. CurrentRenter is set
// exactly while the device is rented; status and renter always move together.
type Device struct {
	ID                   int32        `json:"id"`
	DeviceNumber         string       `json:"deviceNumber"`
	ProductName          string       `json:"productName"`
	ModelName            string       `json:"modelName"`
	OSVersion            string       `json:"osVersion"`
	IsRootedOrJailbroken bool         `json:"isRootedOrJailbroken"`
	Platform             Platform     `json:"platform"`
	Status               DeviceStatus `json:"status"`
	CurrentRenter        *string      `json:"currentRenter"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}
