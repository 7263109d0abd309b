package services

import (
	"context"
	"errors"
	"testing"

	"mindfulu/internal/testutils"
	"mindfulu/pkg/mindtypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Authenticate(t *testing.T) {
	service := NewAuthService(testutils.NewSequenceIDs())
	require.NoError(t, service.Initialize())

	user, err := service.Authenticate(context.Background(), "pat@school.edu", "x")
	require.NoError(t, err)
	assert.Equal(t, mindtypes.User{
		ID:    "00000001-0000-4000-8000-000000000001",
		Name:  "pat",
		Email: "pat@school.edu",
	}, user)
}

func TestAuthService_RejectsEmptyCredentials(t *testing.T) {
	service := NewAuthService(testutils.NewSequenceIDs())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret"},
		{"blank email", "   ", "secret"},
		{"empty password", "pat@school.edu", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Authenticate(context.Background(), tt.email, tt.password)
			var authErr *mindtypes.AuthError
			require.True(t, errors.As(err, &authErr))
		})
	}
}

func TestDisplayNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"pat@school.edu", "pat"},
		{"alex.smith@university.edu", "alexsmith"},
		{"j0hn_d03@x.org", "jhnd"},
		{"no-at-sign", "noatsign"},
		{"a@b@c", "a"},
		{"émile@school.edu", "mile"},
		{"1234@school.edu", "student"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayNameFromEmail(tt.email))
		})
	}
}
