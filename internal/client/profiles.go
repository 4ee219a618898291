package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
)

// Find fetches a profile by user id. A missing row comes back as
// domain.ErrProfileNotFound so callers can distinguish it from transport
// failures.
func (c *Client) Find(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	if err := c.get(ctx, "/profiles/"+id.String(), c.accessToken(), &profile); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Insert creates the caller's own profile row. The backend derives the
// fields from signup metadata, so the row's identity, not its content, is
// what the argument contributes. An already-existing row comes back as
// domain.ErrProfileExists.
func (c *Client) Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	resp, err := c.request(ctx, http.MethodPost, "/profiles/", nil, c.accessToken())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var created domain.Profile
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return nil, err
		}
		return &created, nil
	case http.StatusOK:
		// Row already existed; signal it so the caller re-fetches the
		// authoritative version.
		return nil, domain.ErrProfileExists
	default:
		return nil, decodeAPIError(resp)
	}
}

// Update persists partial fields to the caller's own profile.
func (c *Client) Update(ctx context.Context, id uuid.UUID, fields domain.ProfileUpdate) (*domain.Profile, error) {
	var updated domain.Profile
	err := c.patch(ctx, "/profiles/me", fields, c.accessToken(), http.StatusOK, &updated)
	if err != nil {
		switch {
		case isStatus(err, http.StatusNotFound):
			return nil, domain.ErrProfileNotFound
		case isStatus(err, http.StatusConflict):
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}
	return &updated, nil
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

func isStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}
