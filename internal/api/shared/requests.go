package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator for request DTOs. A single instance
// caches struct metadata.
var validate = validator.New()

// DecodeAndValidate decodes the request body into dst and runs struct
// validation on it. Returns a caller-safe error message on failure.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid field %s: failed %s validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("invalid request: %w", err)
	}

	return nil
}
