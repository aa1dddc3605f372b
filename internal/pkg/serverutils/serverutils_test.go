package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ai-docrouter-be/pkg/document"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Content string `validate:"required"`
	Limit   int    `validate:"gte=0,lte=500"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Content: "x", Limit: 10}))

	err := ValidateRequest(sampleRequest{Limit: 600})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["content"])
	assert.Contains(t, verr.Fields["limit"], "lte=500")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed input", fmt.Errorf("json agent failed: %w", document.ErrMalformedInput), fiber.StatusUnprocessableEntity},
		{"unsupported format", fmt.Errorf("%w: PDF", document.ErrUnsupportedFormat), fiber.StatusUnprocessableEntity},
		{"validation", &ValidationError{Fields: map[string]string{"content": "is required"}}, fiber.StatusBadRequest},
		{"fiber error", fiber.ErrNotFound, fiber.StatusNotFound},
		{"anything else", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/fail", func(ctx *fiber.Ctx) error {
		return fmt.Errorf("%w: invalid JSON format", document.ErrMalformedInput)
	})
	app.Get("/ok", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("fine", 1))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body BaseResponse[any]
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Success)
	assert.Equal(t, fiber.StatusUnprocessableEntity, body.Code)
	assert.Contains(t, body.Message, "malformed input")

	resp, err = app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": "viewer-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParseToken(t *testing.T) {
	claims, err := ParseToken("secret", signToken(t, "secret", jwt.SigningMethodHS256))
	require.NoError(t, err)
	assert.Equal(t, "viewer-1", claims["sub"])

	_, err = ParseToken("secret", signToken(t, "other", jwt.SigningMethodHS256))
	assert.Error(t, err)

	_, err = ParseToken("secret", "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestJwtMiddleware(t *testing.T) {
	newApp := func(secret string) *fiber.App {
		app := fiber.New()
		app.Use(NewJwtMiddleware(secret))
		app.Get("/", func(ctx *fiber.Ctx) error {
			sub, _ := ctx.Locals("subject").(string)
			return ctx.SendString(sub)
		})
		return app
	}

	t.Run("open without secret", func(t *testing.T) {
		resp, err := newApp("").Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		resp, err := newApp("secret").Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("accepts bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", jwt.SigningMethodHS256))
		resp, err := newApp("secret").Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "viewer-1", string(body))
	})

	t.Run("accepts query token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?token="+signToken(t, "secret", jwt.SigningMethodHS256), nil)
		resp, err := newApp("secret").Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
