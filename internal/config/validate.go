package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// quant labels are an open set upstream but a closed one here; checking at
	// load time keeps bad labels out of command construction entirely.
	_ = v.RegisterValidation("quant", func(fl validator.FieldLevel) bool {
		return knownQuant(fl.Field().String())
	})
	return v
}()

// Validate checks the whole struct and returns one aggregated error naming
// every offending field, so the operator fixes the file in a single pass.
func Validate(c Config) error {
	var problems []string
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if fe.Tag() == "quant" {
				problems = append(problems, fmt.Sprintf("%s: unknown quantization label %q", fe.Field(), fe.Value()))
				continue
			}
			problems = append(problems, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
