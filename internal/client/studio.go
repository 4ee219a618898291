package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
)

// GenerateRequest mirrors the backend's generation input.
type GenerateRequest struct {
	Name            string     `json:"name"`
	Tags            []string   `json:"tags"`
	Prompt          string     `json:"prompt"`
	CreativityScale int        `json:"creativityScale"`
	RemixOf         *uuid.UUID `json:"remixOf,omitempty"`
	IsPublic        bool       `json:"isPublic"`
}

// RemixSeed mirrors the backend's remix pre-fill payload.
type RemixSeed struct {
	SourceID   uuid.UUID `json:"sourceId"`
	SourceName string    `json:"sourceName"`
	Tags       []string  `json:"tags"`
	Creativity int       `json:"creativity"`
}

// Generate requests a new design system. A used-up monthly quota comes back
// as domain.ErrGenerationLimit, a bad remix source as
// domain.ErrDesignSystemNotFound.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*domain.DesignSystem, error) {
	var system domain.DesignSystem
	err := c.post(ctx, "/generate", req, c.accessToken(), http.StatusCreated, &system)
	if err != nil {
		switch {
		case isStatus(err, http.StatusTooManyRequests):
			return nil, domain.ErrGenerationLimit
		case isStatus(err, http.StatusNotFound):
			return nil, domain.ErrDesignSystemNotFound
		}
		return nil, err
	}
	return &system, nil
}

// Remaining returns how many generations are left this month.
func (c *Client) Remaining(ctx context.Context) (int, error) {
	var payload struct {
		Remaining int `json:"remaining"`
	}
	if err := c.get(ctx, "/generate/remaining", c.accessToken(), &payload); err != nil {
		return 0, err
	}
	return payload.Remaining, nil
}

// ListDesignSystems pages through the public gallery.
func (c *Client) ListDesignSystems(ctx context.Context, limit, offset int) ([]domain.DesignSystem, error) {
	path := fmt.Sprintf("/design-systems/?limit=%d&offset=%d", limit, offset)

	var systems []domain.DesignSystem
	if err := c.get(ctx, path, c.accessToken(), &systems); err != nil {
		return nil, err
	}
	return systems, nil
}

// GetDesignSystem fetches one system by id. Private systems of other
// authors come back as domain.ErrDesignSystemNotFound.
func (c *Client) GetDesignSystem(ctx context.Context, id uuid.UUID) (*domain.DesignSystem, error) {
	var system domain.DesignSystem
	if err := c.get(ctx, "/design-systems/"+id.String(), c.accessToken(), &system); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, domain.ErrDesignSystemNotFound
		}
		return nil, err
	}
	return &system, nil
}

// GetRemixSeed fetches the pre-fill values for remixing a system.
func (c *Client) GetRemixSeed(ctx context.Context, id uuid.UUID) (*RemixSeed, error) {
	var seed RemixSeed
	if err := c.get(ctx, "/design-systems/"+id.String()+"/remix", c.accessToken(), &seed); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, domain.ErrDesignSystemNotFound
		}
		return nil, err
	}
	return &seed, nil
}
