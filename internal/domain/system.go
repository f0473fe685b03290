package domain

import "time"

// SystemConfigID is the fixed primary key of the singleton configuration row.
const SystemConfigID int32 = 1

// SystemConfig is the stored test-mode configuration. The effective
// test-period status is always derived from it, never stored.
type SystemConfig struct {
	ID            int32      `json:"id"`
	IsTestMode    bool       `json:"isTestMode"`
	TestMessage   *string    `json:"testMessage"`
	TestStartDate *time.Time `json:"testStartDate"`
	TestEndDate   *time.Time `json:"testEndDate"`
	TestType      *string    `json:"testType"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// EffectiveTestMode derives the test-period flag at the given instant.
// When both window dates are set, the flag only holds inside the window.
func (c *SystemConfig) EffectiveTestMode(now time.Time) bool {
	if !c.IsTestMode {
		return false
	}
	if c.TestStartDate != nil && c.TestEndDate != nil {
		return !now.Before(*c.TestStartDate) && !now.After(*c.TestEndDate)
	}
	return true
}

// StatusAt builds the user-facing status payload for the given instant.
func (c *SystemConfig) StatusAt(now time.Time) *SystemStatus {
	active := c.EffectiveTestMode(now)
	return &SystemStatus{
		IsTestMode:     active,
		TestMessage:    c.TestMessage,
		TestStartDate:  c.TestStartDate,
		TestEndDate:    c.TestEndDate,
		TestType:       c.TestType,
		CanRentDevices: !active,
	}
}

// SystemStatus is the derived status payload served to clients and carried
// by snapshot and change events.
type SystemStatus struct {
	IsTestMode     bool       `json:"isTestMode"`
	TestMessage    *string    `json:"testMessage"`
	TestStartDate  *time.Time `json:"testStartDate"`
	TestEndDate    *time.Time `json:"testEndDate"`
	TestType       *string    `json:"testType"`
	CanRentDevices bool       `json:"canRentDevices"`
}

type EventKind string

const (
	EventKindSnapshot  EventKind = "snapshot"
	EventKindChange    EventKind = "change"
	EventKindHeartbeat EventKind = "heartbeat"
)

// StatusEvent is what a subscriber receives. Heartbeats carry no status.
type StatusEvent struct {
	Kind   EventKind     `json:"kind"`
	Status *SystemStatus `json:"payload,omitempty"`
	At     time.Time     `json:"at"`
}
