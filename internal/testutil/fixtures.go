package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email     string
	password  string
	username  string
	firstName string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:     fmt.Sprintf("testuser_%s@example.com", suffix),
		password:  "testpassword123",
		username:  fmt.Sprintf("testuser_%s", suffix),
		firstName: "Test",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithFirstName sets the first name
func (b *UserBuilder) WithFirstName(firstName string) *UserBuilder {
	b.firstName = firstName
	return b
}

// Build creates the user in the database and returns the user with the raw
// password. No profile row is created; tests that need one use
// BuildWithProfile or drive the reconciliation path themselves.
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		Username:     b.username,
		FirstName:    b.firstName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildWithProfile creates the user plus its profile row
func (b *UserBuilder) BuildWithProfile(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, db)

	profile := &domain.Profile{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	return user, password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
	} `json:"user"`
	Session struct {
		ID        string `json:"id"`
		UserID    string `json:"userId"`
		ExpiresAt string `json:"expiresAt"`
	} `json:"session"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"email":     b.email,
		"password":  b.password,
		"username":  b.username,
		"firstName": b.firstName,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:        userID,
		Email:     authResp.User.Email,
		Username:  authResp.User.Username,
		FirstName: authResp.User.FirstName,
	}

	return user, authResp.AccessToken
}

// DesignSystemBuilder creates test design systems with a builder pattern
type DesignSystemBuilder struct {
	author   *domain.User
	name     string
	tags     []string
	isPublic bool
}

// NewDesignSystemBuilder creates a new DesignSystemBuilder with default values
func NewDesignSystemBuilder() *DesignSystemBuilder {
	return &DesignSystemBuilder{
		name:     fmt.Sprintf("System %s", uuid.New().String()[:6]),
		tags:     []string{"minimal"},
		isPublic: true,
	}
}

// WithAuthor sets the authoring user
func (b *DesignSystemBuilder) WithAuthor(user *domain.User) *DesignSystemBuilder {
	b.author = user
	return b
}

// WithName sets the system name
func (b *DesignSystemBuilder) WithName(name string) *DesignSystemBuilder {
	b.name = name
	return b
}

// WithTags sets the style tags
func (b *DesignSystemBuilder) WithTags(tags []string) *DesignSystemBuilder {
	b.tags = tags
	return b
}

// Private keeps the system out of the public gallery
func (b *DesignSystemBuilder) Private() *DesignSystemBuilder {
	b.isPublic = false
	return b
}

// Build creates the design system in the database
func (b *DesignSystemBuilder) Build(t *testing.T, db *gorm.DB) *domain.DesignSystem {
	t.Helper()

	if b.author == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.author = user
	}

	tagsJSON, _ := json.Marshal(b.tags)
	tokensJSON, _ := json.Marshal(domain.TokenDocument{
		SchemaVersion: domain.TokenSchemaVersion,
		Colors: domain.ColorTokens{
			Primary:    "#3366cc",
			Secondary:  "#cc6633",
			Background: "#ffffff",
			Surface:    "#f5f5f5",
			Text: domain.TextColors{
				Primary:   "#111111",
				Secondary: "#555555",
				Disabled:  "#999999",
			},
		},
		Typography: domain.TypographyTokens{
			FontFamily:    "Inter, sans-serif",
			BaseSizePx:    16,
			ScaleRatio:    1.25,
			HeadingWeight: 700,
			BodyWeight:    400,
		},
		Radius: domain.RadiusTokens{
			Small:  "4px",
			Medium: "8px",
			Large:  "16px",
		},
	})

	system := &domain.DesignSystem{
		ID:              uuid.New(),
		Name:            b.name,
		AuthorID:        b.author.ID,
		AuthorUsername:  b.author.Username,
		Tags:            datatypes.JSON(tagsJSON),
		CreativityScale: 50,
		Tokens:          datatypes.JSON(tokensJSON),
		IsPublic:        b.isPublic,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := db.Create(system).Error; err != nil {
		t.Fatalf("failed to create design system: %v", err)
	}

	return system
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
