package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "propadmin/pkg/domain-errors"
)

func jsonHandler(status int, body any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

func TestLoginOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticated with admin profile", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"admin": map[string]any{"id": "1", "name": "Ann", "email": "ann@example.com"},
		}))

		result, err := client.Login(ctx, "ann@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, OutcomeAuthenticated, result.Outcome)
		require.NotNil(t, result.Admin)
		assert.Equal(t, "Ann", result.Admin.Name)
		assert.False(t, result.MustChangePassword)
	})

	t.Run("mfa required leaves admin nil", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"requiresMfa": true,
		}))

		result, err := client.Login(ctx, "ann@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, OutcomeMFARequired, result.Outcome)
		assert.Nil(t, result.Admin)
	})

	t.Run("mfa setup required on first login", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"requiresMfaSetup": true,
		}))

		result, err := client.Login(ctx, "ann@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, OutcomeMFASetupRequired, result.Outcome)
	})

	t.Run("mfa required wins over setup", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"requiresMfa":      true,
			"requiresMfaSetup": true,
		}))

		result, err := client.Login(ctx, "ann@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, OutcomeMFARequired, result.Outcome)
	})

	t.Run("must change password rides the authenticated case", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"admin":              map[string]any{"id": "1", "name": "Ann"},
			"mustChangePassword": true,
		}))

		result, err := client.Login(ctx, "ann@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, OutcomeAuthenticated, result.Outcome)
		assert.True(t, result.MustChangePassword)
	})

	t.Run("success without admin profile is an error", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{}))

		_, err := client.Login(ctx, "ann@example.com", "pw")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("invalid credentials propagate server message", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusBadRequest, map[string]any{
			"message": "Invalid email or password",
		}))

		_, err := client.Login(ctx, "ann@example.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, "Invalid email or password", dErrors.MessageOf(err, ""))
	})
}

func TestProfileShapes(t *testing.T) {
	ctx := context.Background()

	t.Run("wrapped admin envelope", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"admin": map[string]any{"id": "1", "name": "Ann"},
		}))

		admin, err := client.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ann", admin.Name)
	})

	t.Run("bare admin object", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"id": "1", "name": "Ann",
		}))

		admin, err := client.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ann", admin.Name)
	})
}

func TestCheckAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticated", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"admin": map[string]any{"id": "1", "name": "Ann"},
		}))

		admin, ok := client.CheckAuth(ctx)
		assert.True(t, ok)
		assert.Equal(t, "Ann", admin.Name)
	})

	t.Run("401 reads as not authenticated, never errors", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusUnauthorized, map[string]any{}))

		admin, ok := client.CheckAuth(ctx)
		assert.False(t, ok)
		assert.Nil(t, admin)
	})
}

func TestMFAEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("setup returns enrollment material", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"success":     true,
			"qrCode":      "data:image/png;base64,xyz",
			"manualEntry": "JBSWY3DPEHPK3PXP",
			"backupCodes": []string{"1111-2222", "3333-4444"},
		}))

		enrollment, err := client.MFASetup(ctx)
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", enrollment.ManualEntry)
		assert.Len(t, enrollment.BackupCodes, 2)
	})

	t.Run("confirm treats success=false as invalid code", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"success": false,
		}))

		err := client.MFAConfirm(ctx, "123456")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCode))
	})

	t.Run("verify returns the full admin", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusOK, map[string]any{
			"success": true,
			"admin":   map[string]any{"id": "1", "name": "Ann"},
		}))

		admin, err := client.MFAVerify(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, "Ann", admin.Name)
	})

	t.Run("verify rejection surfaces server message", func(t *testing.T) {
		client, _ := newTestClient(t, jsonHandler(http.StatusBadRequest, map[string]any{
			"message": "Invalid or expired code",
		}))

		_, err := client.MFAVerify(ctx, "000000")
		assert.Equal(t, "Invalid or expired code", dErrors.MessageOf(err, ""))
	})
}
