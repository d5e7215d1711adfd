package ordercode

import (
	"fmt"
	"time"

	"github.com/ShiraazMoollatjie/goluhn"
)

const layout = "20060102150405"

// New builds a human-readable order code: the UTC placement time as YYYYMMDDhhmmss, the
// user id, and a trailing Luhn check digit.
func New(placedAt time.Time, userID int) (string, error) {
	base := fmt.Sprintf("%s%d", placedAt.UTC().Format(layout), userID)
	_, code, err := goluhn.Calculate(base)
	if err != nil {
		return "", fmt.Errorf("order code for user %d: %w", userID, err)
	}
	return code, nil
}

// Valid reports whether code carries a correct check digit.
func Valid(code string) bool {
	return goluhn.Validate(code) == nil
}
