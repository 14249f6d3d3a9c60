package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// NewOrderReference generates the gateway-facing order reference.
// The "ORDER-<uuid>" shape is part of the gateway contract and must
// stay stable.
func NewOrderReference() string {
	return fmt.Sprintf("ORDER-%s", uuid.NewString())
}
