package authstate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/design-system-studio/internal/authstate"
	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReconciler(identity *fakeIdentity, profiles *fakeProfiles) *authstate.Reconciler {
	return authstate.NewReconciler(identity, profiles, zap.NewNop())
}

func TestReconciler_ReturnsExistingProfile(t *testing.T) {
	identity := newFakeIdentity()
	profiles := newFakeProfiles()

	id := uuid.New()
	profiles.put(&domain.Profile{ID: id, Username: "existing"})

	profile := newReconciler(identity, profiles).Reconcile(context.Background(), id)
	require.NotNil(t, profile)
	assert.Equal(t, "existing", profile.Username)
	assert.Equal(t, 0, profiles.insertCount())
}

func TestReconciler_CreatesMissingProfile(t *testing.T) {
	identity := newFakeIdentity()
	profiles := newFakeProfiles()

	user := &authstate.User{
		ID:        uuid.New(),
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
	}
	identity.user = user

	profile := newReconciler(identity, profiles).Reconcile(context.Background(), user.ID)
	require.NotNil(t, profile)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "Alice", profile.FirstName)
	assert.Equal(t, 1, profiles.insertCount())
}

func TestReconciler_UsernameFallsBackToEmail(t *testing.T) {
	identity := newFakeIdentity()
	profiles := newFakeProfiles()

	user := &authstate.User{ID: uuid.New(), Email: "brianna@example.com"}
	identity.user = user

	profile := newReconciler(identity, profiles).Reconcile(context.Background(), user.ID)
	require.NotNil(t, profile)
	assert.Equal(t, "brianna", profile.Username)
}

func TestReconciler_IsIdempotent(t *testing.T) {
	identity := newFakeIdentity()
	profiles := newFakeProfiles()

	user := &authstate.User{ID: uuid.New(), Email: "carl@example.com", Username: "carl"}
	identity.user = user

	r := newReconciler(identity, profiles)

	first := r.Reconcile(context.Background(), user.ID)
	second := r.Reconcile(context.Background(), user.ID)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, profiles.insertCount())
}

func TestReconciler_LosingTheCreationRace(t *testing.T) {
	identity := newFakeIdentity()
	profiles := newFakeProfiles()

	user := &authstate.User{ID: uuid.New(), Email: "dora@example.com", Username: "dora"}
	identity.user = user

	// Someone else inserts the row between the miss and our insert.
	profiles.put(&domain.Profile{ID: user.ID, Username: "winner"})
	profiles.missFindOnce = true

	profile := newReconciler(identity, profiles).Reconcile(context.Background(), user.ID)
	require.NotNil(t, profile)
	assert.Equal(t, "winner", profile.Username, "the winner's row is authoritative")
	assert.Equal(t, 0, profiles.insertCount())
}

func TestReconciler_FailuresResolveToNil(t *testing.T) {
	t.Run("lookup failure", func(t *testing.T) {
		identity := newFakeIdentity()
		profiles := newFakeProfiles()
		profiles.findErr = errors.New("store down")

		profile := newReconciler(identity, profiles).Reconcile(context.Background(), uuid.New())
		assert.Nil(t, profile)
	})

	t.Run("insert failure", func(t *testing.T) {
		identity := newFakeIdentity()
		identity.user = &authstate.User{ID: uuid.New(), Email: "x@example.com"}
		profiles := newFakeProfiles()
		profiles.insertErr = errors.New("store down")

		profile := newReconciler(identity, profiles).Reconcile(context.Background(), identity.user.ID)
		assert.Nil(t, profile)
	})

	t.Run("current user unavailable", func(t *testing.T) {
		identity := newFakeIdentity()
		identity.currentUserErr = errors.New("identity down")
		profiles := newFakeProfiles()

		profile := newReconciler(identity, profiles).Reconcile(context.Background(), uuid.New())
		assert.Nil(t, profile)
	})

	t.Run("no current user", func(t *testing.T) {
		identity := newFakeIdentity()
		profiles := newFakeProfiles()

		profile := newReconciler(identity, profiles).Reconcile(context.Background(), uuid.New())
		assert.Nil(t, profile)
	})
}
