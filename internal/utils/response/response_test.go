package response

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	apperrors "bankcore/internal/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := map[apperrors.Kind]int{
		apperrors.KindValidation:        fiber.StatusBadRequest,
		apperrors.KindNotFound:          fiber.StatusNotFound,
		apperrors.KindState:             fiber.StatusConflict,
		apperrors.KindInsufficientFunds: fiber.StatusUnprocessableEntity,
		apperrors.KindLimitExceeded:     fiber.StatusUnprocessableEntity,
		apperrors.KindUnauthorized:      fiber.StatusUnauthorized,
		apperrors.KindForbidden:         fiber.StatusForbidden,
		apperrors.KindInternal:          fiber.StatusInternalServerError,
	}
	for kind, status := range tests {
		assert.Equal(t, status, StatusFor(kind), string(kind))
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "domain error",
			err:    apperrors.ErrInsufficientFunds.Wrap(errors.New("balance 10.00")),
			status: fiber.StatusUnprocessableEntity,
			body:   `{"error":"` + apperrors.ErrInsufficientFunds.Message + `","code":"INSUFFICIENT_FUNDS"}`,
		},
		{
			name:   "foreign error hides its cause",
			err:    errors.New("pq: connection refused"),
			status: fiber.StatusInternalServerError,
			body:   `{"error":"` + apperrors.ErrInternal.Message + `","code":"INTERNAL"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return FromError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.body, string(body))
		})
	}
}
