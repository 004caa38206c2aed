package layout

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/procsheet/pkg/diagram"
)

// Options controls automatic layout. All lengths are pixels.
type Options struct {
	TaskWidth     float64 `toml:"task_width" json:"task_width"`
	TaskHeight    float64 `toml:"task_height" json:"task_height"`
	GatewaySize   float64 `toml:"gateway_size" json:"gateway_size"`
	EventSize     float64 `toml:"event_size" json:"event_size"`
	RankSep       float64 `toml:"rank_sep" json:"rank_sep"`
	NodeSep       float64 `toml:"node_sep" json:"node_sep"`
	LaneMinHeight float64 `toml:"lane_min_height" json:"lane_min_height"`
	LanePadding   float64 `toml:"lane_padding" json:"lane_padding"`
	Margin        float64 `toml:"margin" json:"margin"`
}

// DefaultOptions returns the stock layout options.
func DefaultOptions() Options {
	return Options{
		TaskWidth:     120,
		TaskHeight:    50,
		GatewaySize:   50,
		EventSize:     36,
		RankSep:       60,
		NodeSep:       30,
		LaneMinHeight: 100,
		LanePadding:   20,
		Margin:        20,
	}
}

// SetDefaults replaces zero fields with their defaults.
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	for _, f := range []struct{ v, def *float64 }{
		{&o.TaskWidth, &d.TaskWidth},
		{&o.TaskHeight, &d.TaskHeight},
		{&o.GatewaySize, &d.GatewaySize},
		{&o.EventSize, &d.EventSize},
		{&o.RankSep, &d.RankSep},
		{&o.NodeSep, &d.NodeSep},
		{&o.LaneMinHeight, &d.LaneMinHeight},
		{&o.LanePadding, &d.LanePadding},
		{&o.Margin, &d.Margin},
	} {
		if *f.v == 0 {
			*f.v = *f.def
		}
	}
}

// Validate implements validation.Validatable.
func (o Options) Validate() error {
	positive := []validation.Rule{validation.Required, validation.Min(1.0)}
	return validation.ValidateStruct(&o,
		validation.Field(&o.TaskWidth, positive...),
		validation.Field(&o.TaskHeight, positive...),
		validation.Field(&o.GatewaySize, positive...),
		validation.Field(&o.EventSize, positive...),
		validation.Field(&o.RankSep, validation.Min(0.0)),
		validation.Field(&o.NodeSep, validation.Min(0.0)),
		validation.Field(&o.LaneMinHeight, validation.Min(0.0)),
		validation.Field(&o.LanePadding, validation.Min(0.0)),
		validation.Field(&o.Margin, validation.Min(0.0)),
	)
}

// size returns the default size of a node of the given kind.
func (o Options) size(kind diagram.NodeKind) (w, h float64) {
	switch kind {
	case diagram.KindGateway:
		return o.GatewaySize, o.GatewaySize
	case diagram.KindEvent:
		return o.EventSize, o.EventSize
	default:
		return o.TaskWidth, o.TaskHeight
	}
}
