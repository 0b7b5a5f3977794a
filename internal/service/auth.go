package service

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/deppfellow/storefront/internal/model"
)

// AuthService configures the Clerk SDK and exposes Clerk's user API as an
// IdentityProvider.
type AuthService struct {
	adminRole string
}

func NewAuthService(secretKey, adminRole string) *AuthService {
	clerk.SetKey(secretKey)
	return &AuthService{adminRole: adminRole}
}

// IsAdmin reports whether the session's organization role grants admin access.
func (s *AuthService) IsAdmin(role string) bool {
	return role != "" && role == s.adminRole
}

// Profile fetches a Clerk user and flattens the primary email and phone.
func (s *AuthService) Profile(ctx context.Context, subject string) (*model.IdentityProfile, error) {
	u, err := user.Get(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity %s: %w", subject, err)
	}
	return profileFromClerk(u), nil
}

func profileFromClerk(u *clerk.User) *model.IdentityProfile {
	p := &model.IdentityProfile{Subject: u.ID}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}

	for _, e := range u.EmailAddresses {
		if p.Email == "" || (u.PrimaryEmailAddressID != nil && e.ID == *u.PrimaryEmailAddressID) {
			p.Email = e.EmailAddress
		}
	}
	for _, ph := range u.PhoneNumbers {
		if p.Phone == "" || (u.PrimaryPhoneNumberID != nil && ph.ID == *u.PrimaryPhoneNumberID) {
			p.Phone = ph.PhoneNumber
		}
	}
	return p
}
