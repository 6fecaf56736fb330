package identity

import (
	"context"
	"errors"

	tenantmodels "newsdesk/internal/tenant/models"
	usermodels "newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/sentinel"
)

// UserDirectory looks up the acting user.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// MembershipDirectory lists the acting user's tenant memberships.
type MembershipDirectory interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]*tenantmodels.Membership, error)
}

// StoreResolver composes the user and membership stores into a Resolver.
type StoreResolver struct {
	users       UserDirectory
	memberships MembershipDirectory
}

func NewStoreResolver(users UserDirectory, memberships MembershipDirectory) *StoreResolver {
	return &StoreResolver{users: users, memberships: memberships}
}

// ResolveSubject loads the user and their memberships in attach order. A
// soft-deleted or unknown user resolves to NotFound, which the auth
// middleware turns into a 401.
func (r *StoreResolver) ResolveSubject(ctx context.Context, userID id.UserID) (*Subject, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	memberships, err := r.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user tenants")
	}

	subject := &Subject{UserID: user.ID, IsSuperAdmin: user.IsSuperAdmin}
	for _, m := range memberships {
		subject.Memberships = append(subject.Memberships, Membership{TenantID: m.TenantID, Role: m.Role})
	}
	return subject, nil
}
