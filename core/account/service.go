package account

import (
	"context"
	"errors"
	"time"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
)

var (
	// errors
	ErrNotFound    = errors.New("user profile not found")
	ErrInvalidRole = errors.New("invalid role")
)

type (
	Repository interface {
		// Atomic binds the accessors to one store transaction.
		Atomic(ctx context.Context, fn func(Repository) error) error

		GetProfile(ctx context.Context, uid string) (Profile, error)
		SaveProfile(ctx context.Context, p Profile) (Profile, error)
		QueryProfilesByRole(ctx context.Context, role authz.Role) ([]Profile, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureProfile returns the stored profile for an authenticated identity,
// creating it with a pending role on first sight. Silent role defaulting is
// deliberately not done here; an admin must assign the real role.
func (svc *Service) EnsureProfile(ctx context.Context, uid, email string) (Profile, error) {
	uid = core.CleanString(uid)
	email = core.CleanString(email, true /* lower */)
	if uid == "" {
		return Profile{}, authz.Deny(authz.ReasonUnauthenticated).Err()
	}

	var prof Profile
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if prof, err = repo.GetProfile(ctx, uid); err == nil {
			return nil
		}
		if err != ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		prof, err = repo.SaveProfile(ctx, Profile{
			UID:       uid,
			Email:     email,
			Role:      authz.RolePending,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	return prof, err
}

func (svc *Service) Get(ctx context.Context, uid string) (Profile, error) {
	return svc.repo.GetProfile(ctx, core.CleanString(uid))
}

// SetRole assigns a role to a profile. Admin only.
func (svc *Service) SetRole(ctx context.Context, caller authz.Caller, uid string, role authz.Role) (Profile, error) {
	if d := authz.Authorize(caller, authz.Resource{Kind: authz.KindProfile}, authz.OpWrite); !d.Allowed {
		return Profile{}, d.Err()
	}
	if !authz.ValidRole(role) {
		return Profile{}, core.NewValidationError(ErrInvalidRole, core.FieldError{Field: "role", Error: ErrInvalidRole.Error()})
	}

	var prof Profile
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if prof, err = repo.GetProfile(ctx, uid); err != nil {
			return err
		}
		prof.Role = role
		prof.UpdatedAt = time.Now().UTC()
		prof, err = repo.SaveProfile(ctx, prof)
		return err
	})
	return prof, err
}

// ListPending returns profiles awaiting role assignment. Admin only.
func (svc *Service) ListPending(ctx context.Context, caller authz.Caller) ([]Profile, error) {
	if d := authz.Authorize(caller, authz.Resource{Kind: authz.KindProfile}, authz.OpRead); !d.Allowed {
		return nil, d.Err()
	}
	return svc.repo.QueryProfilesByRole(ctx, authz.RolePending)
}
