package service

import (
	"context"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CustomerService struct {
	customers CustomerStore
	identity  IdentityProvider
	tasks     TaskEnqueuer
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewCustomerService(customers CustomerStore, identity IdentityProvider, tasks TaskEnqueuer, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{customers: customers, identity: identity, tasks: tasks, logger: logger, now: time.Now}
}

// Me returns the customer behind an OAuth subject, provisioning it from the
// identity provider profile on first access.
func (s *CustomerService) Me(ctx context.Context, subject string) (*model.Customer, error) {
	c, err := s.customers.GetByAuthSubject(ctx, subject)
	if err == nil {
		return c, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.provision(ctx, subject)
}

// Find returns the customer for subject without provisioning. A subject
// that never called Me yields (nil, nil).
func (s *CustomerService) Find(ctx context.Context, subject string) (*model.Customer, error) {
	c, err := s.customers.GetByAuthSubject(ctx, subject)
	if isNotFound(err) {
		return nil, nil
	}
	return c, err
}

func (s *CustomerService) provision(ctx context.Context, subject string) (*model.Customer, error) {
	profile, err := s.identity.Profile(ctx, subject)
	if err != nil {
		return nil, errs.NewBadGatewayError("Could not load your account profile", true)
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, errs.NewBadRequestError("Your account has no email address", true, errs.Code("EMAIL_REQUIRED"), nil, nil)
	}

	if _, err := s.customers.GetByEmail(ctx, email); err == nil {
		return nil, errs.NewConflictError("Another account already uses this email address", true, errs.Code("EMAIL_TAKEN"))
	} else if !isNotFound(err) {
		return nil, err
	}

	now := s.now()
	c := &model.Customer{
		ID:          uuid.New(),
		AuthSubject: subject,
		Email:       email,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Phone:       profile.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		// Two first requests raced; the other one won.
		if existing, getErr := s.customers.GetByAuthSubject(ctx, subject); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	s.logger.Info().Str("customer_id", c.ID.String()).Msg("customer provisioned")
	if err := s.tasks.EnqueueWelcomeEmail(ctx, c.Email, c.FirstName); err != nil {
		s.logger.Warn().Err(err).Str("customer_id", c.ID.String()).Msg("failed to enqueue welcome email")
	}
	return c, nil
}

func (s *CustomerService) UpdateMe(ctx context.Context, subject string, req *model.UpdateMeRequest) (*model.Customer, error) {
	c, err := s.Me(ctx, subject)
	if err != nil {
		return nil, err
	}

	c.FirstName = strings.TrimSpace(req.FirstName)
	c.LastName = strings.TrimSpace(req.LastName)
	c.Phone = req.Phone
	if err := s.customers.UpdateProfile(ctx, c); err != nil {
		return nil, notFoundAs(err, "Customer not found")
	}
	return c, nil
}
