package sheet

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/procsheet/pkg/sheet/color"
)

// Default export options.
const (
	DefaultLaneColor   = "4A90D9"
	DefaultLaneLighten = 0.8
	DefaultCreator     = "procsheet"
	DefaultApplication = "procsheet"
)

// Options controls the parts of an export that are not grid geometry.
type Options struct {
	// LaneLighten moves lane colors toward white; 0 keeps them, 1 is white.
	LaneLighten float64 `toml:"lane_lighten" json:"lane_lighten"`
	// DefaultLaneColor replaces missing or invalid lane colors.
	DefaultLaneColor string `toml:"default_lane_color" json:"default_lane_color"`
	// Creator is written to the core document properties.
	Creator string `toml:"creator" json:"creator"`
	// Application is written to the extended document properties.
	Application string `toml:"application" json:"application"`
}

// DefaultOptions returns the stock export options.
func DefaultOptions() Options {
	return Options{
		LaneLighten:      DefaultLaneLighten,
		DefaultLaneColor: DefaultLaneColor,
		Creator:          DefaultCreator,
		Application:      DefaultApplication,
	}
}

// SetDefaults fills empty string fields. LaneLighten is left alone since 0 is
// a meaningful value.
func (o *Options) SetDefaults() {
	if o.DefaultLaneColor == "" {
		o.DefaultLaneColor = DefaultLaneColor
	}
	if o.Creator == "" {
		o.Creator = DefaultCreator
	}
	if o.Application == "" {
		o.Application = DefaultApplication
	}
}

// Validate implements validation.Validatable.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.LaneLighten, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&o.DefaultLaneColor, validation.Required, validation.By(isHexColor)),
	)
}

func isHexColor(value any) error {
	s, _ := value.(string)
	if color.NormalizeHex(s, "") == "" {
		return validation.NewError("validation_hex_color", "must be a 3 or 6 digit hex color")
	}
	return nil
}
