package validation

import (
	"testing"

	"postfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_PostInput(t *testing.T) {
	tests := []struct {
		name       string
		input      PostInput
		wantParams []string
	}{
		{"Valid", PostInput{Title: "Hello", Content: "World!"}, nil},
		{"Short title", PostInput{Title: "Hey", Content: "World!"}, []string{"title"}},
		{"Whitespace padded", PostInput{Title: "   ab   ", Content: "  cd  "}, []string{"title", "content"}},
		{"Empty", PostInput{}, []string{"title", "content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.Normalize()
			err := Struct(&in)
			if tt.wantParams == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, 422, models.StatusOf(err))
			assert.Equal(t, MsgInvalidInput, err.Error())

			var params []string
			for _, f := range Fields(err) {
				assert.Equal(t, "body", f.Location)
				params = append(params, f.Param)
			}
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestStruct_SignupInput(t *testing.T) {
	in := SignupInput{Email: "  Ada@Example.COM ", Password: " secret ", Name: " Ada "}
	in.Normalize()
	assert.Equal(t, "ada@example.com", in.Email)
	assert.Equal(t, "secret", in.Password)
	assert.Equal(t, "Ada", in.Name)
	assert.NoError(t, Struct(&in))

	bad := SignupInput{Email: "not-an-email", Password: "1234 ", Name: "   "}
	bad.Normalize()
	err := Struct(&bad)
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "email", fields[0].Param)
	assert.Equal(t, "Please enter a valid email.", fields[0].Msg)
	assert.Equal(t, "password", fields[1].Param)
	assert.Nil(t, fields[1].Value)
	assert.Equal(t, "name", fields[2].Param)
}

func TestFields_NonValidationError(t *testing.T) {
	assert.Nil(t, Fields(models.NewNotFoundError("missing")))
	assert.Nil(t, Fields(nil))
}
