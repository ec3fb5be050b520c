package driver

import "github.com/google/uuid"

// Stats summarizes a driver's delivery workload.
type Stats struct {
	DriverID            uuid.UUID `json:"driver_id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone,omitempty"`
	IsAvailable         bool      `json:"is_available"`
	ActiveDeliveries    int       `json:"active_deliveries"`
	CompletedDeliveries int       `json:"completed_deliveries"`
}
