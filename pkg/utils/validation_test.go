package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "workflowbuilder/pkg/errors"
)

type sample struct {
	SessionID string `validate:"required,uuid"`
	Mode      string `validate:"oneof=select connect pan"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{SessionID: "2b1f6e1c-7c8e-4a39-9e5e-0c6f1d8c2a11", Mode: "pan"}))

	err := ValidateStruct(sample{Mode: "zoom"})
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "sessionID is required", appErr.Details["sessionID"])
	assert.Equal(t, "mode must be one of: select connect pan", appErr.Details["mode"])
}
