package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.:]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, dot and colon.
// Transaction and account ids travel into SQL parameters and Redis
// keys, so the accepted alphabet stays narrow.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}
