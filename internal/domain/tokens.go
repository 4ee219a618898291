package domain

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// TokenSchemaVersion is the only token document version this build reads or
// writes. Bump it together with the struct below.
const TokenSchemaVersion = "1.0"

// TokenDocument is the typed output of the generator boundary. It replaces
// the loose map the generator used to hand back; documents are validated
// before they are persisted or served.
type TokenDocument struct {
	SchemaVersion string           `json:"schemaVersion"`
	Colors        ColorTokens      `json:"colors"`
	Typography    TypographyTokens `json:"typography"`
	Radius        RadiusTokens     `json:"radius"`
}

type ColorTokens struct {
	Primary    string     `json:"primary"`
	Secondary  string     `json:"secondary"`
	Background string     `json:"background"`
	Surface    string     `json:"surface"`
	Text       TextColors `json:"text"`
}

type TextColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Disabled  string `json:"disabled"`
}

type TypographyTokens struct {
	FontFamily    string  `json:"fontFamily"`
	BaseSizePx    int     `json:"baseSizePx"`
	ScaleRatio    float64 `json:"scaleRatio"`
	HeadingWeight int     `json:"headingWeight"`
	BodyWeight    int     `json:"bodyWeight"`
}

type RadiusTokens struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// Validate checks the document against the current schema version.
func (d TokenDocument) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.SchemaVersion, validation.Required, validation.In(TokenSchemaVersion)),
		validation.Field(&d.Colors),
		validation.Field(&d.Typography),
	)
}

func (c ColorTokens) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Primary, validation.Required, is.HexColor),
		validation.Field(&c.Secondary, validation.Required, is.HexColor),
		validation.Field(&c.Background, validation.Required, is.HexColor),
		validation.Field(&c.Surface, validation.Required, is.HexColor),
		validation.Field(&c.Text),
	)
}

func (t TextColors) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Primary, validation.Required, is.HexColor),
		validation.Field(&t.Secondary, validation.Required, is.HexColor),
		validation.Field(&t.Disabled, validation.Required, is.HexColor),
	)
}

func (t TypographyTokens) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.FontFamily, validation.Required),
		validation.Field(&t.BaseSizePx, validation.Required, validation.Min(10), validation.Max(24)),
		validation.Field(&t.ScaleRatio, validation.Required, validation.Min(1.0), validation.Max(2.0)),
	)
}
