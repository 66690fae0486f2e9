package dto

import "time"

type SetSlotRequest struct {
	Value string `json:"value"`
	Scope string `json:"scope" validate:"omitempty,oneof=durable session"`
}

type SlotResponse struct {
	Name      string     `json:"name"`
	Scope     string     `json:"scope"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
