package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxNumberAttempts = 5

// NumberRegistry guards order-number uniqueness across API instances.
// Reserve returns false when the number is already taken.
type NumberRegistry interface {
	Reserve(ctx context.Context, number string) (bool, error)
}

// NewOrderNumber builds a human-readable order number from the placement
// time and a random suffix, e.g. ORD-20260115-093012-4F9A1C.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "ORD-" + at.UTC().Format("20060102-150405") + "-" + strings.ToUpper(suffix)
}
