package booking

import (
	"regexp"
	"strings"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// vehicleNumberPattern matches Indian registration plates, e.g. "KL-08-AZ-1234".
// Separators may be dashes, spaces, or absent.
var vehicleNumberPattern = regexp.MustCompile(`^[A-Z]{2}[ -]?[0-9]{1,2}[ -]?[A-Z]{1,2}[ -]?[0-9]{1,4}$`)

// NormalizeVehicleNumber validates and canonicalizes a vehicle number.
// The canonical form is uppercase with original separators preserved.
func NormalizeVehicleNumber(raw string) (string, error) {
	number := strings.ToUpper(strings.TrimSpace(raw))
	if !vehicleNumberPattern.MatchString(number) {
		return "", apperr.NewValidationError("vehicle number must be in a valid format, e.g. KL-08-AZ-1234")
	}
	return number, nil
}
