package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/hash"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Secret []byte
	TTL    time.Duration
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type Profile struct {
	User   *models.User   `json:"user"`
	Vendor *models.Vendor `json:"vendor,omitempty"`
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.Repo.UserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: pwHash,
		Role:         role,
		FullName:     strings.TrimSpace(req.FullName),
		IsActive:     true,
	}

	var vendor *models.Vendor
	if role == models.RoleVendor {
		storeSlug, err := uniqueSlug(ctx, s.Repo, &models.Vendor{}, req.StoreName)
		if err != nil {
			return nil, err
		}
		vendor = &models.Vendor{
			StoreName: strings.TrimSpace(req.StoreName),
			Slug:      storeSlug,
		}
	}

	if err := s.Repo.CreateUser(ctx, user, vendor); err != nil {
		return nil, translate(err, "user")
	}
	l.Info("register_success", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "bad password", "user_id", user.ID)
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is disabled: %w", ErrForbidden)
	}

	token, claims, err := tokens.NewSession(user.ID, user.Role, s.TTL, s.Secret)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateSession(ctx, &models.Session{
		JTI:       claims.ID,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}); err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	return s.Repo.RevokeSession(ctx, jti)
}

// SessionActive lets the service back the session middleware.
func (s *AuthService) SessionActive(ctx context.Context, jti string, userID uuid.UUID) (bool, error) {
	return s.Repo.SessionActive(ctx, jti, userID)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user")
	}
	p := &Profile{User: user}
	if user.Role == models.RoleVendor {
		v, err := s.Repo.VendorByUserID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		p.Vendor = v
	}
	return p, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if len(updates) == 0 {
		user, err := s.Repo.UserByID(ctx, userID)
		return user, translate(err, "user")
	}
	user, err := s.Repo.UpdateUser(ctx, userID, updates)
	return user, translate(err, "user")
}

// uniqueSlug slugifies name and appends a short suffix when the slug is taken.
func uniqueSlug(ctx context.Context, r *repo.GormRepo, model any, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := r.SlugTaken(ctx, model, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return "", fmt.Errorf("cannot allocate slug for %q: %w", name, ErrConflict)
}
