package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/validator"
)

func validAddress() Address {
	return Address{
		FullName:    "Asha Rao",
		Email:       "asha@example.in",
		Mobile:      "9876543210",
		AddressLine: "12 MG Road",
		City:        "Pune",
		State:       "Maharashtra",
		Pincode:     "411001",
	}
}

func TestAddress_Validate(t *testing.T) {
	assert.NoError(t, validAddress().Validate())

	noCity := validAddress()
	noCity.City, noCity.State = "", ""
	assert.NoError(t, noCity.Validate())
}

func TestAddress_Validate_MissingFields(t *testing.T) {
	for _, blank := range []func(*Address){
		func(a *Address) { a.FullName = "" },
		func(a *Address) { a.Email = "" },
		func(a *Address) { a.Mobile = "" },
		func(a *Address) { a.AddressLine = "" },
		func(a *Address) { a.Pincode = "" },
	} {
		a := validAddress()
		blank(&a)
		err := a.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "Please fill in all address details.")
	}
}

func TestAddress_Validate_BadEmail(t *testing.T) {
	a := validAddress()
	a.Email = "asha@"
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter a valid email address.")
}

func TestAddress_Validate_MissingWinsOverBadEmail(t *testing.T) {
	a := validAddress()
	a.Email = "nope"
	a.Pincode = ""
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please fill in all address details.")
}

func TestAddress_Validate_FormatErrorsCarryFields(t *testing.T) {
	a := validAddress()
	a.Pincode = "01234"
	a.Mobile = "12345"

	err := a.Validate()
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := verr.Fields()
	assert.Equal(t, "must be a valid 6-digit pincode", fields["pincode"])
	assert.Equal(t, "must be a valid 10-digit mobile number", fields["mobile"])
}

func TestAddress_Normalize(t *testing.T) {
	a := Address{FullName: "  Asha ", Email: " asha@example.in\n", Pincode: " 411001"}
	a.Normalize()
	assert.Equal(t, "Asha", a.FullName)
	assert.Equal(t, "asha@example.in", a.Email)
	assert.Equal(t, "411001", a.Pincode)
}
