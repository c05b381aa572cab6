package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"carrent/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err    *apperror.Error
		status int
	}{
		{apperror.NewJSONWebToken("jwt malformed"), http.StatusUnauthorized},
		{apperror.NewTokenExpired("2020-01-01T00:00:00Z"), http.StatusUnauthorized},
		{apperror.NewInsufficientAccess("ADMIN", "CUSTOMER"), http.StatusUnauthorized},
		{apperror.NewWrongPassword(), http.StatusUnauthorized},
		{apperror.NewEmailNotRegistered("a@b.c"), http.StatusNotFound},
		{apperror.NewRecordNotFound("Car"), http.StatusNotFound},
		{apperror.NewEmailAlreadyTaken("a@b.c"), http.StatusUnprocessableEntity},
		{apperror.NewCarAlreadyRented("Avanza", nil), http.StatusUnprocessableEntity},
		{apperror.NewValidation(map[string]string{"name": "required"}), http.StatusUnprocessableEntity},
		{apperror.NewUnprocessable(errors.New("boom")), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Status(), tt.err.Name)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("renting: %w", apperror.NewRecordNotFound("Car"))

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Car not found!", appErr.Message)
	assert.True(t, apperror.Is(err, apperror.KindRecordNotFound))
	assert.False(t, apperror.Is(errors.New("plain"), apperror.KindRecordNotFound))
}

func TestUnprocessableKeepsName(t *testing.T) {
	err := apperror.NewUnprocessable(apperror.NewRecordNotFound("Car"))
	assert.Equal(t, "RecordNotFoundError", err.Name)
	assert.Equal(t, "Car not found!", err.Message)

	err = apperror.NewUnprocessable(errors.New("constraint failed"))
	assert.Equal(t, "Error", err.Name)
	assert.Equal(t, "constraint failed", err.Message)
}

func TestEnvelope(t *testing.T) {
	body := apperror.NewEmailAlreadyTaken("fatur@gmail.com").Envelope()
	assert.Equal(t, "EmailAlreadyTakenError", body.Error.Name)
	assert.Equal(t, "fatur@gmail.com is already taken!!!", body.Error.Message)
	assert.Equal(t, map[string]any{"email": "fatur@gmail.com"}, body.Error.Details)
}
