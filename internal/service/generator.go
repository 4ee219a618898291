package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
)

// GenerateRequest is the contract at the generator boundary.
type GenerateRequest struct {
	Name            string
	Tags            []string
	CreativityScale int
}

// Generator produces a token document for a generation request. The real
// engine lives elsewhere; this service only depends on the contract.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (domain.TokenDocument, error)
}

// MockGenerator derives a token document from a hash of the request. The
// output is stable for identical inputs, which keeps previews and tests
// reproducible. Latency simulates the real engine's turnaround.
type MockGenerator struct {
	Latency time.Duration
}

func NewMockGenerator(latency time.Duration) *MockGenerator {
	return &MockGenerator{Latency: latency}
}

func (g *MockGenerator) Generate(ctx context.Context, req GenerateRequest) (domain.TokenDocument, error) {
	if g.Latency > 0 {
		select {
		case <-time.After(g.Latency):
		case <-ctx.Done():
			return domain.TokenDocument{}, ctx.Err()
		}
	}

	seed := requestSeed(req)
	dark := hasTag(req.Tags, "dark mode")

	// Creativity widens the hue spread and pushes saturation up.
	baseHue := float64(seed % 360)
	spread := 30.0 + float64(req.CreativityScale)*1.2
	saturation := 0.45 + float64(req.CreativityScale)/250.0

	colors := domain.ColorTokens{
		Primary:   hslToHex(baseHue, saturation, pick(dark, 0.62, 0.48)),
		Secondary: hslToHex(math.Mod(baseHue+spread, 360), saturation*0.8, pick(dark, 0.55, 0.42)),
	}
	if dark {
		colors.Background = "#0F172A"
		colors.Surface = "#1E293B"
		colors.Text = domain.TextColors{
			Primary:   "#F1F5F9",
			Secondary: "#94A3B8",
			Disabled:  "#475569",
		}
	} else {
		colors.Background = "#FFFFFF"
		colors.Surface = "#F8FAFC"
		colors.Text = domain.TextColors{
			Primary:   "#1E293B",
			Secondary: "#64748B",
			Disabled:  "#CBD5E1",
		}
	}

	doc := domain.TokenDocument{
		SchemaVersion: domain.TokenSchemaVersion,
		Colors:        colors,
		Typography: domain.TypographyTokens{
			FontFamily:    fontFor(req.Tags),
			BaseSizePx:    16,
			ScaleRatio:    1.2 + float64(req.CreativityScale)/250.0,
			HeadingWeight: 700,
			BodyWeight:    400,
		},
		Radius: radiusFor(req.Tags),
	}

	if err := doc.Validate(); err != nil {
		return domain.TokenDocument{}, fmt.Errorf("generated document invalid: %w", err)
	}

	return doc, nil
}

func requestSeed(req GenerateRequest) uint64 {
	h := fnv.New64a()
	h.Write([]byte(req.Name))
	for _, tag := range req.Tags {
		h.Write([]byte(tag))
	}
	fmt.Fprintf(h, "%d", req.CreativityScale)
	return h.Sum64()
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}

func fontFor(tags []string) string {
	switch {
	case hasTag(tags, "monospace"):
		return "JetBrains Mono, monospace"
	case hasTag(tags, "serif"):
		return "Georgia, serif"
	default:
		return "Inter, sans-serif"
	}
}

func radiusFor(tags []string) domain.RadiusTokens {
	if hasTag(tags, "rounded corners") || hasTag(tags, "neumorphic cards") {
		return domain.RadiusTokens{Small: "8px", Medium: "16px", Large: "24px"}
	}
	return domain.RadiusTokens{Small: "4px", Medium: "8px", Large: "12px"}
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// hslToHex converts HSL (h in degrees, s and l in 0..1) to "#RRGGBB".
func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return fmt.Sprintf("#%02X%02X%02X",
		int(math.Round((r+m)*255)),
		int(math.Round((g+m)*255)),
		int(math.Round((b+m)*255)))
}
