package pricing

import (
	"fmt"
	"math/rand"
	"time"
)

// IdentifierGenerator produces human readable quote codes.
type IdentifierGenerator func(now time.Time) string

// GenerateIdentifier returns PC-YYYYMMDD-NNNN with a random 4 digit suffix.
// Uniqueness is enforced by the caller (reservation + unique index).
func GenerateIdentifier(now time.Time) string {
	return fmt.Sprintf("PC-%s-%04d", now.Format("20060102"), 1000+rand.Intn(9000))
}
