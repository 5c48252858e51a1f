package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/glosslab/salon-service/internal/app/domain/account"
	"github.com/glosslab/salon-service/internal/app/storage"
	"github.com/glosslab/salon-service/pkg/logger"
)

// Service manages customer profiles.
type Service struct {
	store storage.AccountStore
	log   *logger.Logger
}

// New constructs an accounts service.
func New(store storage.AccountStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{store: store, log: log}
}

// Create registers a new customer profile.
func (s *Service) Create(ctx context.Context, name, email, phone string, metadata map[string]string) (account.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return account.Account{}, fmt.Errorf("name is required")
	}

	acct := account.Account{
		Name:     name,
		Email:    strings.TrimSpace(email),
		Phone:    strings.TrimSpace(phone),
		Metadata: metadata,
	}
	acct, err := s.store.CreateAccount(ctx, acct)
	if err != nil {
		return account.Account{}, err
	}
	s.log.WithField("account_id", acct.ID).Info("account created")
	return acct, nil
}

// Update modifies the mutable profile fields. Nil pointers leave a field
// untouched.
func (s *Service) Update(ctx context.Context, id string, name, email, phone, avatarURL *string) (account.Account, error) {
	acct, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return account.Account{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return account.Account{}, fmt.Errorf("name cannot be empty")
		}
		acct.Name = trimmed
	}
	if email != nil {
		acct.Email = strings.TrimSpace(*email)
	}
	if phone != nil {
		acct.Phone = strings.TrimSpace(*phone)
	}
	if avatarURL != nil {
		acct.AvatarURL = strings.TrimSpace(*avatarURL)
	}

	acct, err = s.store.UpdateAccount(ctx, acct)
	if err != nil {
		return account.Account{}, err
	}
	s.log.WithField("account_id", acct.ID).Info("account updated")
	return acct, nil
}

// Get retrieves a single profile.
func (s *Service) Get(ctx context.Context, id string) (account.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// List returns all profiles.
func (s *Service) List(ctx context.Context) ([]account.Account, error) {
	return s.store.ListAccounts(ctx)
}

// Delete removes a profile and everything owned by it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.log.WithField("account_id", id).Info("account deleted")
	return nil
}
