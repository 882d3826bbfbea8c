package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lifeio/lifeio/internal/domain"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages match the wire format.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and validates it.
// Failures are domain validation errors.
func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("", "request body is required")
		}
		return domain.Invalid("", "invalid JSON: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors reports the first failing field.
func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid("", "%v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.Invalid(fe.Field(), "is required")
	case "datetime":
		return domain.Invalid(fe.Field(), "must match %s", fe.Param())
	case "min", "max":
		return domain.Invalid(fe.Field(), "must satisfy %s=%s", fe.Tag(), fe.Param())
	default:
		return domain.Invalid(fe.Field(), "failed %s", fe.Tag())
	}
}

// ─── Request DTOs ───────────────────────────────────────────────────────────

type createActivityRequest struct {
	Category  string `json:"category" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time"`
}

type createSleepRequest struct {
	SleepTime string `json:"sleep_time" validate:"required"`
	WakeTime  string `json:"wake_time" validate:"required"`
	Quality   *int   `json:"quality" validate:"required"`
}

type upsertFinanceRequest struct {
	Date    string   `json:"date" validate:"required,datetime=2006-01-02"`
	Income  *float64 `json:"income"`
	Expense *float64 `json:"expense"`
}
