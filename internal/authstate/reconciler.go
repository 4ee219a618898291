package authstate

import (
	"context"
	"errors"
	"strings"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reconciler maps a user identifier to exactly one profile, creating the
// row when it is missing. It is deliberately best-effort: every failure
// path logs a diagnostic and resolves to a nil profile, which consumers
// treat as "not yet available" rather than fatal.
type Reconciler struct {
	identity IdentityClient
	profiles ProfileStore
	logger   *zap.Logger
}

func NewReconciler(identity IdentityClient, profiles ProfileStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		identity: identity,
		profiles: profiles,
		logger:   logger,
	}
}

// Reconcile fetches the profile for userID, creating it if absent. Calling
// it twice with no intervening store mutation yields the same profile and
// never creates a second row.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID) *domain.Profile {
	profile, err := r.profiles.Find(ctx, userID)
	if err == nil {
		return profile
	}

	if !errors.Is(err, domain.ErrProfileNotFound) {
		r.logger.Error("profile lookup failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil
	}

	return r.createProfile(ctx, userID)
}

// createProfile derives display fields from the authenticated user's signup
// metadata and inserts the row. Losing the creation race to a concurrent
// reconciliation (or the provider's own signup hook) is not an error: the
// winner's row is authoritative and is re-fetched.
func (r *Reconciler) createProfile(ctx context.Context, userID uuid.UUID) *domain.Profile {
	user, err := r.identity.GetCurrentUser(ctx)
	if err != nil {
		r.logger.Error("could not resolve current user for profile creation",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil
	}
	if user == nil {
		return nil
	}

	inserted, err := r.profiles.Insert(ctx, &domain.Profile{
		ID:        userID,
		Username:  defaultUsername(user),
		FirstName: user.FirstName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileExists) {
			existing, ferr := r.profiles.Find(ctx, userID)
			if ferr != nil {
				r.logger.Error("profile exists but re-fetch failed",
					zap.String("user_id", userID.String()),
					zap.Error(ferr))
				return nil
			}
			return existing
		}

		r.logger.Error("profile creation failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil
	}

	return inserted
}

// defaultUsername falls back from the chosen username to the email's local
// part to the literal "user".
func defaultUsername(user *User) string {
	if user.Username != "" {
		return user.Username
	}
	if local, _, found := strings.Cut(user.Email, "@"); found && local != "" {
		return local
	}
	return "user"
}
