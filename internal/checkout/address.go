package checkout

import (
	"errors"
	"strings"

	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/validator"
)

// Address is the delivery address entered on the checkout page.
type Address struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Mobile      string `json:"mobile" validate:"required,mobile"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode" validate:"required,pincode"`
}

// Normalize trims surrounding whitespace from every field.
func (a *Address) Normalize() {
	for _, f := range []*string{&a.FullName, &a.Email, &a.Mobile, &a.AddressLine, &a.City, &a.State, &a.Pincode} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate checks a normalized address. Missing required fields and a bad
// email get the shopper-facing messages; other format problems are returned
// as a *validator.ValidationError carrying per-field detail.
func (a Address) Validate() error {
	err := validator.Validate(a)
	if err == nil {
		return nil
	}

	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for _, fe := range verr.Errors {
		if fe.Tag() == "required" {
			return apperrors.InvalidInput("Please fill in all address details.")
		}
	}
	for _, fe := range verr.Errors {
		if fe.Tag() == "email" {
			return apperrors.InvalidInput("Please enter a valid email address.")
		}
	}
	return verr
}
