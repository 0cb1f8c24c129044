package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/content-query/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("textquery is required")

	assert.Equal(t, "textquery is required", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("no grammar rule matches")
	err := apperr.NewValidationWrap("invalid content query", inner)

	assert.Equal(t, "invalid content query: no grammar rule matches", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("unknown content type")
	doubleWrapped := fmt.Errorf("service: %w", fmt.Errorf("decode: %w", original))

	var ve *apperr.ValidationError
	require.True(t, errors.As(doubleWrapped, &ve))
	assert.Equal(t, "unknown content type", ve.Message)
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	wrapped := fmt.Errorf("storage error: %w", errors.New("database connection failed"))

	var ve *apperr.ValidationError
	assert.False(t, errors.As(wrapped, &ve))
}

func TestValidationError_ForParam(t *testing.T) {
	tests := []struct {
		name string
		err  *apperr.ValidationError
		want string
	}{
		{name: "param only", err: apperr.NewValidation("is required").ForParam("textquery"), want: "textquery: is required"},
		{
			name: "param and cause",
			err:  apperr.NewValidationWrap("invalid request body", errors.New("unexpected EOF")).ForParam("body"),
			want: "body: invalid request body: unexpected EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
