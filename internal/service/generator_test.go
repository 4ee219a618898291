package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/service"
	"github.com/dom/design-system-studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator_Generate(t *testing.T) {
	gen := service.NewMockGenerator(0)
	ctx := context.Background()

	t.Run("produces a valid document", func(t *testing.T) {
		doc, err := gen.Generate(ctx, service.GenerateRequest{
			Name:            "Sunrise",
			Tags:            []string{"minimal", "playful"},
			CreativityScale: 50,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.TokenSchemaVersion, doc.SchemaVersion)
		require.NoError(t, doc.Validate())

		testutil.AssertValidHexColor(t, doc.Colors.Primary)
		testutil.AssertValidHexColor(t, doc.Colors.Secondary)
		testutil.AssertValidHexColor(t, doc.Colors.Background)
		testutil.AssertValidHexColor(t, doc.Colors.Surface)
	})

	t.Run("identical requests are deterministic", func(t *testing.T) {
		req := service.GenerateRequest{
			Name:            "Stable",
			Tags:            []string{"dark mode"},
			CreativityScale: 80,
		}

		a, err := gen.Generate(ctx, req)
		require.NoError(t, err)
		b, err := gen.Generate(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("dark mode flips the background", func(t *testing.T) {
		dark, err := gen.Generate(ctx, service.GenerateRequest{
			Name: "Night", Tags: []string{"dark mode"}, CreativityScale: 50,
		})
		require.NoError(t, err)
		light, err := gen.Generate(ctx, service.GenerateRequest{
			Name: "Day", Tags: []string{"minimal"}, CreativityScale: 50,
		})
		require.NoError(t, err)

		assert.Equal(t, "#0F172A", dark.Colors.Background)
		assert.Equal(t, "#FFFFFF", light.Colors.Background)
	})

	t.Run("tags drive typography and radius", func(t *testing.T) {
		mono, err := gen.Generate(ctx, service.GenerateRequest{
			Name: "Code", Tags: []string{"monospace"}, CreativityScale: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "JetBrains Mono, monospace", mono.Typography.FontFamily)

		rounded, err := gen.Generate(ctx, service.GenerateRequest{
			Name: "Soft", Tags: []string{"rounded corners"}, CreativityScale: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "16px", rounded.Radius.Medium)
	})

	t.Run("cancelled context aborts a slow generation", func(t *testing.T) {
		slow := service.NewMockGenerator(5 * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := slow.Generate(ctx, service.GenerateRequest{
			Name: "Never", Tags: []string{"minimal"}, CreativityScale: 50,
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
