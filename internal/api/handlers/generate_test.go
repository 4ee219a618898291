package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateBody() map[string]interface{} {
	return map[string]interface{}{
		"name":            "Handler System",
		"tags":            []string{"minimal"},
		"creativityScale": 40,
		"isPublic":        true,
	}
}

func TestGenerateHandler_Generate(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	t.Run("successful generation", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/generate"), generateBody(), token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var system domain.DesignSystem
		testutil.AssertJSONResponse(t, resp, &system)
		assert.Equal(t, "Handler System", system.Name)
		assert.NotEmpty(t, system.AuthorUsername)

		var doc domain.TokenDocument
		require.NoError(t, json.Unmarshal(system.Tokens, &doc))
		assert.Equal(t, domain.TokenSchemaVersion, doc.SchemaVersion)
		testutil.AssertValidHexColor(t, doc.Colors.Primary)
	})

	t.Run("remaining reflects usage", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/generate/remaining"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var payload struct {
			Remaining int `json:"remaining"`
		}
		testutil.AssertJSONResponse(t, resp, &payload)
		assert.Equal(t, ts.Config.MonthlyGenerationLimit-1, payload.Remaining)
	})

	t.Run("exhausted quota is a 429", func(t *testing.T) {
		for i := 1; i < ts.Config.MonthlyGenerationLimit; i++ {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/generate"), generateBody(), token)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusCreated, resp.StatusCode)
		}

		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/generate"), generateBody(), token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusTooManyRequests)
	})

	t.Run("remix of unknown system is a 404", func(t *testing.T) {
		_, freshToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

		body := generateBody()
		body["remixOf"] = uuid.New().String()

		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/generate"), body, freshToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("invalid input is a 400", func(t *testing.T) {
		_, freshToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

		body := generateBody()
		body["tags"] = []string{}

		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/generate"), body, freshToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("requires authentication", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/generate"), generateBody(), "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}
