package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raphaelgruber/estatehub/internal/db"
	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
)

// Authenticate signs a user in. Registered users are checked before seeded
// ones. On success the user becomes the persisted session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (_ *models.User, err error) {
	defer s.observe(metrics.OpAuthenticate, time.Now(), &err)

	email = normalizeEmail(email)
	if err := s.simulate(ctx, metrics.OpAuthenticate); err != nil {
		return nil, err
	}

	user, found, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	// Demo stub: one shared plaintext credential.
	if !found || password != s.demoPassword {
		return nil, &AuthError{Kind: InvalidCredentials, Email: email}
	}

	if err := s.store.Put(ctx, db.KeySession, user); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info("user signed in", "user_id", user.ID)
	return &user, nil
}

// Register creates a user with role "user" and signs it in.
func (s *Service) Register(ctx context.Context, name, email, password string) (_ *models.User, err error) {
	defer s.observe(metrics.OpRegister, time.Now(), &err)

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	case email == "":
		return nil, &ValidationError{Field: "email", Reason: "is required"}
	case password == "":
		return nil, &ValidationError{Field: "password", Reason: "is required"}
	}

	if err := s.simulate(ctx, metrics.OpRegister); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.seed.UserByEmail(email); taken {
		return nil, &AuthError{Kind: EmailInUse, Email: email}
	}

	registered, err := s.registeredUsers(ctx)
	if err != nil {
		return nil, err
	}
	if _, taken := userByEmail(registered, email); taken {
		return nil, &AuthError{Kind: EmailInUse, Email: email}
	}

	user := models.User{
		ID:    newID("user"),
		Name:  name,
		Email: email,
		Role:  models.RoleUser,
	}

	updated := append(registered, user)
	if err := s.store.Put(ctx, db.KeyRegisteredUsers, updated); err != nil {
		return nil, fmt.Errorf("persist registered users: %w", err)
	}
	if err := s.store.Put(ctx, db.KeySession, user); err != nil {
		// Keep registration all-or-nothing.
		if rbErr := s.store.Put(ctx, db.KeyRegisteredUsers, registered); rbErr != nil {
			s.logger.Error("rollback of registration failed", "user_id", user.ID, "error", rbErr)
		}
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return &user, nil
}

// CurrentSession returns the persisted session user, or nil when signed out.
// It does not simulate latency.
func (s *Service) CurrentSession(ctx context.Context) (*models.User, error) {
	var user models.User
	found, err := s.store.Get(ctx, db.KeySession, &user)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

// EndSession clears the persisted session. It does not simulate latency.
// Callers holding a state.Store must also call its Logout.
func (s *Service) EndSession(ctx context.Context) error {
	if err := s.store.Remove(ctx, db.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// registeredUsers loads users created through Register.
func (s *Service) registeredUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := s.store.Get(ctx, db.KeyRegisteredUsers, &users); err != nil {
		return nil, fmt.Errorf("read registered users: %w", err)
	}
	return users, nil
}

// findUserByEmail checks registered users first, then the seed.
func (s *Service) findUserByEmail(ctx context.Context, email string) (models.User, bool, error) {
	registered, err := s.registeredUsers(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	if u, ok := userByEmail(registered, email); ok {
		return u, true, nil
	}
	u, ok := s.seed.UserByEmail(email)
	return u, ok, nil
}

// findUserByID resolves a user id against registered users and the seed.
func (s *Service) findUserByID(registered []models.User, id string) (models.User, bool) {
	for _, u := range registered {
		if u.ID == id {
			return u, true
		}
	}
	return s.seed.UserByID(id)
}

// normalizeEmail is applied to every email before it is stored or looked up.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func userByEmail(users []models.User, email string) (models.User, bool) {
	for _, u := range users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}
