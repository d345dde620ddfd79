package member

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ministerio-jovenes/asistencia/core"
)

// Genders
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

type Member struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	GroupID   int       `json:"group_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewMember contains information needed to create a new Member.
type NewMember struct {
	Name    string `json:"name" validate:"required,notblank,max=120"`
	Gender  string `json:"gender" validate:"required,gender"`
	GroupID int    `json:"group_id" validate:"required,gt=0"`
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Gender = core.CleanString(nm.Gender)
	return validate.Struct(nm)
}

// UpdateMember defines what information may be provided to modify an existing Member.
type UpdateMember struct {
	Name    string `json:"name" validate:"required,notblank,max=120"`
	Gender  string `json:"gender" validate:"required,gender"`
	GroupID int    `json:"group_id" validate:"required,gt=0"`
}

func (um *UpdateMember) Validate(validate *validator.Validate) error {
	um.Name = core.CleanString(um.Name)
	um.Gender = core.CleanString(um.Gender)
	return validate.Struct(um)
}

var (
	genderTag  = "gender"
	genderText = "gender must be one of M or F"
)

// InitValidators registers the member validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(genderTag, genderValidation)
	core.RegisterCustomTranslation(validate, translator, genderTag, genderText)
}

func genderValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}
