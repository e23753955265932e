package risk

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/riskwatch/core"
)

var (
	ratioTag  = "ratio"
	ratioText = "{0} must be a rate between 0 and 1"
)

// InitValidators registers the risk validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(ratioTag, ratioValidation)
	core.RegisterCustomTranslation(validate, translator, ratioTag, ratioText)
}

func (upd ThresholdsUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(upd)
}

// ratioValidation only allows numbers in [0, 1].
func ratioValidation(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return f >= 0 && f <= 1
}
