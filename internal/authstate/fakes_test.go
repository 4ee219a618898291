package authstate_test

import (
	"context"
	"sync"

	"github.com/dom/design-system-studio/internal/authstate"
	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
)

// fakeIdentity is an in-memory identity provider. Sign-in and sign-out
// emit session events synchronously, the way a provider callback would.
type fakeIdentity struct {
	mu       sync.Mutex
	session  *authstate.Session
	user     *authstate.User
	handlers map[int]authstate.SessionChangeHandler
	nextID   int

	signUpErr      error
	signInErr      error
	currentUserErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{handlers: make(map[int]authstate.SessionChangeHandler)}
}

func (f *fakeIdentity) GetSession(ctx context.Context) (*authstate.Session, *authstate.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.user, nil
}

func (f *fakeIdentity) OnSessionChange(handler authstate.SessionChangeHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.handlers[id] = handler

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, username, firstName string) error {
	if f.signUpErr != nil {
		return f.signUpErr
	}

	user := &authstate.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  username,
		FirstName: firstName,
	}
	f.establish(user)
	return nil
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) error {
	if f.signInErr != nil {
		return f.signInErr
	}

	f.establish(&authstate.User{
		ID:    uuid.New(),
		Email: email,
	})
	return nil
}

func (f *fakeIdentity) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.session = nil
	f.user = nil
	f.mu.Unlock()

	f.emit(nil, nil)
	return nil
}

func (f *fakeIdentity) GetCurrentUser(ctx context.Context) (*authstate.User, error) {
	if f.currentUserErr != nil {
		return nil, f.currentUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, nil
}

// establish installs a session for user and emits a signed-in event.
func (f *fakeIdentity) establish(user *authstate.User) {
	session := &authstate.Session{
		ID:          uuid.New(),
		UserID:      user.ID,
		AccessToken: "access-" + user.ID.String(),
	}

	f.mu.Lock()
	f.session = session
	f.user = user
	f.mu.Unlock()

	f.emit(session, user)
}

func (f *fakeIdentity) emit(session *authstate.Session, user *authstate.User) {
	f.mu.Lock()
	handlers := make([]authstate.SessionChangeHandler, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(session, user)
	}
}

// fakeProfiles is an in-memory profile store that counts inserts.
type fakeProfiles struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*domain.Profile
	inserts int

	findErr      error
	insertErr    error
	updateErr    error
	missFindOnce bool
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: make(map[uuid.UUID]*domain.Profile)}
}

func (f *fakeProfiles) Find(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missFindOnce {
		f.missFindOnce = false
		return nil, domain.ErrProfileNotFound
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeProfiles) Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[profile.ID]; ok {
		return nil, domain.ErrProfileExists
	}

	copied := *profile
	f.rows[profile.ID] = &copied
	f.inserts++

	result := copied
	return &result, nil
}

func (f *fakeProfiles) Update(ctx context.Context, id uuid.UUID, fields domain.ProfileUpdate) (*domain.Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	if fields.Username != nil {
		row.Username = *fields.Username
	}
	if fields.FirstName != nil {
		row.FirstName = *fields.FirstName
	}

	copied := *row
	return &copied, nil
}

func (f *fakeProfiles) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts
}

func (f *fakeProfiles) put(profile *domain.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *profile
	f.rows[profile.ID] = &copied
}
