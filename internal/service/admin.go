package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/format"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type AdminService struct {
	Repo *repo.GormRepo
}

func (s *AdminService) ListUsers(ctx context.Context, page, size int) (transport.Page[models.User], error) {
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)
	total, users, err := s.Repo.ListUsers(ctx, offset, limit)
	if err != nil {
		return transport.Page[models.User]{}, err
	}
	return transport.NewPage(users, page, limit, total), nil
}

// SetRole changes a user's role and ends the user's open sessions, since
// those carry the old role. Promoting to vendor opens an unapproved store
// when the user has none.
func (s *AdminService) SetRole(ctx context.Context, adminID, userID uuid.UUID, role string) (*models.User, error) {
	switch role {
	case models.RoleUser, models.RoleVendor, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrValidation)
	}
	if adminID == userID && role != models.RoleAdmin {
		return nil, fmt.Errorf("cannot demote yourself: %w", ErrValidation)
	}

	var out *models.User
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		prev, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		u, err := tx.UpdateUser(ctx, userID, map[string]any{"role": role})
		if err != nil {
			return err
		}
		out = u
		if prev.Role != role {
			if err := tx.RevokeUserSessions(ctx, userID); err != nil {
				return err
			}
		}
		if role != models.RoleVendor {
			return nil
		}
		if _, err := tx.VendorByUserID(ctx, userID); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		name := u.FullName
		if name == "" {
			name = u.Username
		}
		storeSlug, err := uniqueSlug(ctx, tx, &models.Vendor{}, name)
		if err != nil {
			return err
		}
		return tx.CreateVendor(ctx, &models.Vendor{UserID: userID, StoreName: name, Slug: storeSlug})
	})
	if err != nil {
		return nil, translate(err, "user")
	}
	logging.FromContext(ctx).Info("user_role_changed", "user_id", userID, "role", role, "by", adminID)
	return out, nil
}

// SetActive toggles a user. Deactivation ends every open session.
func (s *AdminService) SetActive(ctx context.Context, adminID, userID uuid.UUID, active bool) (*models.User, error) {
	if adminID == userID && !active {
		return nil, fmt.Errorf("cannot deactivate yourself: %w", ErrValidation)
	}
	var out *models.User
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		u, err := tx.UpdateUser(ctx, userID, map[string]any{"is_active": active})
		if err != nil {
			return err
		}
		out = u
		if active {
			return nil
		}
		return tx.RevokeUserSessions(ctx, userID)
	})
	if err != nil {
		return nil, translate(err, "user")
	}
	return out, nil
}

func (s *AdminService) ApproveVendor(ctx context.Context, vendorID uuid.UUID, approved bool) (*models.Vendor, error) {
	v, err := s.Repo.SetVendorApproved(ctx, vendorID, approved)
	return v, translate(err, "vendor")
}

// ListVendors filters by approval state when status is "pending" or
// "approved".
func (s *AdminService) ListVendors(ctx context.Context, status string) ([]models.Vendor, error) {
	var approved *bool
	switch strings.ToLower(status) {
	case "":
	case "pending":
		f := false
		approved = &f
	case "approved":
		t := true
		approved = &t
	default:
		return nil, fmt.Errorf("unknown vendor status %q: %w", status, ErrValidation)
	}
	vs, err := s.Repo.ListVendors(ctx, approved)
	if err != nil {
		return nil, err
	}
	if vs == nil {
		vs = []models.Vendor{}
	}
	return vs, nil
}

func (s *AdminService) Stats(ctx context.Context) (*transport.AdminStats, error) {
	var (
		st      transport.AdminStats
		err     error
		pending = false
	)
	if st.Users, err = s.Repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if st.Vendors, err = s.Repo.CountVendors(ctx, nil); err != nil {
		return nil, err
	}
	if st.PendingVendors, err = s.Repo.CountVendors(ctx, &pending); err != nil {
		return nil, err
	}
	if st.Products, err = s.Repo.CountProducts(ctx, nil); err != nil {
		return nil, err
	}
	if st.OrdersByStatus, err = s.Repo.OrderCountsByStatus(ctx, nil); err != nil {
		return nil, err
	}
	for _, n := range st.OrdersByStatus {
		st.Orders += n
	}
	if st.Revenue, err = s.Repo.DeliveredRevenue(ctx); err != nil {
		return nil, err
	}
	st.RevenueDisplay = format.FormatCurrencyCompact(st.Revenue)
	return &st, nil
}
