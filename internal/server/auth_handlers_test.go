package server

import (
	"context"
	"net/http"
	"testing"

	"postfeed/internal/models"
	"postfeed/internal/service"
	"postfeed/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignup(t *testing.T) {
	ts := newTestServer(t, nil)

	res := ts.doJSON(t, http.MethodPut, "/auth/signup", map[string]string{
		"email":    "  Alice@Example.com ",
		"password": "secret1",
		"name":     "Alice",
	}, "")
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, msgUserCreated, res.body["message"])

	userID, ok := res.body["userId"].(float64)
	require.True(t, ok)
	require.Positive(t, userID)

	user, err := ts.userRepo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint(userID), user.ID)
	assert.Equal(t, models.DefaultUserStatus, user.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ts := newTestServer(t, nil)
	payload := map[string]string{"email": "bob@example.com", "password": "secret1", "name": "Bob"}

	res := ts.doJSON(t, http.MethodPut, "/auth/signup", payload, "")
	require.Equal(t, http.StatusCreated, res.status)

	payload["email"] = "BOB@example.com"
	res = ts.doJSON(t, http.MethodPut, "/auth/signup", payload, "")
	require.Equal(t, http.StatusUnprocessableEntity, res.status)
	assert.Equal(t, validation.MsgInvalidInput, res.body["message"])

	fields := res.body["data"].([]any)
	require.Len(t, fields, 1)
	field := fields[0].(map[string]any)
	assert.Equal(t, "email", field["param"])
	assert.Equal(t, service.MsgEmailExists, field["msg"])
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name       string
		payload    map[string]string
		wantParams []string
	}{
		{
			name:       "bad email",
			payload:    map[string]string{"email": "nope", "password": "secret1", "name": "Carol"},
			wantParams: []string{"email"},
		},
		{
			name:       "short password",
			payload:    map[string]string{"email": "carol@example.com", "password": "abc", "name": "Carol"},
			wantParams: []string{"password"},
		},
		{
			name:       "everything missing",
			payload:    map[string]string{},
			wantParams: []string{"email", "password", "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.doJSON(t, http.MethodPut, "/auth/signup", tt.payload, "")
			require.Equal(t, http.StatusUnprocessableEntity, res.status)

			var params []string
			for _, f := range res.body["data"].([]any) {
				params = append(params, f.(map[string]any)["param"].(string))
				assert.NotEqual(t, "secret1", f.(map[string]any)["value"])
			}
			assert.ElementsMatch(t, tt.wantParams, params)
		})
	}
}
