package diagram

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/procsheet/pkg/sheet/color"
)

// Severity ranks lint findings.
type Severity string

// Finding severities.
const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a tolerated data problem. The exporter degrades gracefully on
// every finding; none of them aborts an export.
type Finding struct {
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"` // e.g. "node t1", "edge e3"
	Message  string   `json:"message"`
}

// String renders the finding on one line.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Subject, f.Message)
}

// Validate implements validation.Validatable for node fields.
func (n ProcessNode) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.ID, validation.Required),
		validation.Field(&n.Kind, validation.Required, validation.In(KindTask, KindGateway, KindEvent).
			Error("unknown kind, rendered as task")),
	)
}

// Validate implements validation.Validatable for geometry fields.
func (r PixelRect) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Width, validation.Min(0.0).Error("negative width, clamped")),
		validation.Field(&r.Height, validation.Min(0.0).Error("negative height, clamped")),
	)
}

// Validate implements validation.Validatable for lane fields.
func (l LaneBand) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ID, validation.Required),
		validation.Field(&l.Height, validation.Min(0.0).Error("negative height, lane skipped")),
	)
}

// Lint inspects d for problems the exporter tolerates and returns them sorted
// by subject. An empty result means the diagram is clean.
func Lint(d *Diagram) []Finding {
	var out []Finding
	add := func(sev Severity, subject, format string, args ...any) {
		out = append(out, Finding{Severity: sev, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}

	nodeIDs := make(map[string]int, len(d.Nodes))
	for _, n := range d.Nodes {
		subject := "node " + n.ID
		for _, msg := range fieldErrors(n.Validate()) {
			add(SeverityWarning, subject, "%s", msg)
		}
		for _, msg := range fieldErrors(n.PixelRect.Validate()) {
			add(SeverityWarning, subject, "%s", msg)
		}
		nodeIDs[n.ID]++
		if n.Lane != "" {
			if _, ok := d.Lane(n.Lane); !ok {
				add(SeverityWarning, subject, "lane %q does not exist", n.Lane)
			}
		}
	}
	for id, count := range nodeIDs {
		if count > 1 && id != "" {
			add(SeverityWarning, "node "+id, "id used by %d nodes, connectors bind to the last one", count)
		}
	}

	for _, l := range d.Lanes {
		subject := "lane " + l.ID
		for _, msg := range fieldErrors(l.Validate()) {
			add(SeverityWarning, subject, "%s", msg)
		}
		if l.FillColor != "" && color.NormalizeHex(l.FillColor, "") == "" {
			add(SeverityWarning, subject, "invalid fill color %q, default used", l.FillColor)
		}
	}

	for _, e := range d.Edges {
		subject := "edge " + e.ID
		if !e.Drawable() {
			add(SeverityInfo, subject, "%d waypoint(s), not drawn", len(e.Waypoints))
			continue
		}
		if e.Source != "" && nodeIDs[e.Source] == 0 {
			add(SeverityWarning, subject, "source %q not found, start left unattached", e.Source)
		}
		if e.Target != "" && nodeIDs[e.Target] == 0 {
			add(SeverityWarning, subject, "target %q not found, end left unattached", e.Target)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

// fieldErrors flattens ozzo-validation errors into "field: message" strings
// sorted by field name.
func fieldErrors(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %v", k, verrs[k]))
	}
	return msgs
}
