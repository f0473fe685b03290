package domain

import "fmt"

// NotFoundError reports a missing device, rental or config row.
type NotFoundError struct {
	Entity string
	ID     int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a state collision: device already rented, renter
// mismatch on return, duplicate device number, delete of a rented device.
type ConflictError struct {
	Entity string
	ID     int32
	Reason string
}

func (e *ConflictError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
}

// ConsistencyError reports a broken internal invariant, e.g. a device was
// released but no active rental existed for it. Never user error.
type ConsistencyError struct {
	Op       string
	DeviceID int32
	Detail   string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency fault in %s for device %d: %s", e.Op, e.DeviceID, e.Detail)
}

// ValidationError reports malformed input, such as an unparseable date.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}
