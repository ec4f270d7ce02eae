package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func runHandler(t *testing.T, secret, authHeader string) (*fasthttp.RequestCtx, bool) {
	t.Helper()

	called := false
	next := func(ctx *fasthttp.RequestCtx) {
		called = true
		ctx.SetStatusCode(http.StatusOK)
	}

	handler := BearerAuth(secret, nil)(next)

	ctx := &fasthttp.RequestCtx{}
	if authHeader != "" {
		ctx.Request.Header.Set("Authorization", authHeader)
	}
	handler(ctx)
	return ctx, called
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestPassThroughWithoutSecret(t *testing.T) {
	ctx, called := runHandler(t, "", "")
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
}

func TestRejectsMissingToken(t *testing.T) {
	ctx, called := runHandler(t, "s3cret", "")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestRejectsBadToken(t *testing.T) {
	ctx, called := runHandler(t, "s3cret", "Bearer not-a-token")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret")
	ctx, called := runHandler(t, "s3cret", "Bearer "+token)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestAcceptsValidToken(t *testing.T) {
	token := signToken(t, "s3cret")
	ctx, called := runHandler(t, "s3cret", "Bearer "+token)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
}
