package services

import (
	"context"
	"strings"
	"unicode"

	"mindfulu/internal/logger"
	"mindfulu/pkg/mindtypes"
)

// fallbackDisplayName is used when an email's local part has no letters.
const fallbackDisplayName = "student"

// AuthService is the sign-in stub: any non-empty email and password succeed.
// There is no credential verification; a real backend implements
// mindtypes.AuthService instead.
type AuthService struct {
	initialized bool
	ids         mindtypes.IDGenerator
}

// NewAuthService creates an AuthService that assigns user IDs from ids.
func NewAuthService(ids mindtypes.IDGenerator) *AuthService {
	return &AuthService{ids: ids}
}

// Name returns the service name "auth" for registration.
func (a *AuthService) Name() string {
	return "auth"
}

// Initialize marks the service ready.
func (a *AuthService) Initialize() error {
	a.initialized = true
	return nil
}

// Authenticate accepts any non-empty credentials and builds the user.
func (a *AuthService) Authenticate(_ context.Context, email, password string) (mindtypes.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return mindtypes.User{}, &mindtypes.AuthError{Message: "email and password are required"}
	}

	user := mindtypes.User{
		ID:    a.ids.NewID(),
		Name:  DisplayNameFromEmail(email),
		Email: email,
	}
	logger.ServiceOperation("auth", "authenticate", "user", user.Name)
	return user, nil
}

// DisplayNameFromEmail derives a display name from the local part of an email
// address by dropping every character that is not an ASCII letter.
func DisplayNameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}

	var b strings.Builder
	for _, r := range local {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallbackDisplayName
	}
	return b.String()
}
