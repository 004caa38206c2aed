package diagram

import (
	"strings"
	"testing"
)

func TestLintClean(t *testing.T) {
	d := &Diagram{
		Lanes: []LaneBand{{ID: "l1", Name: "Lane", Height: 100, FillColor: "#abc"}},
		Nodes: []ProcessNode{
			{ID: "a", Kind: KindTask, Lane: "l1", PixelRect: PixelRect{Width: 10, Height: 10}},
			{ID: "b", Kind: KindEvent, PixelRect: PixelRect{Width: 10, Height: 10}},
		},
		Edges: []Edge{{ID: "e", Source: "a", Target: "b", Waypoints: []Point{{}, {X: 1}}}},
	}
	if got := Lint(d); len(got) != 0 {
		t.Errorf("Lint() = %v, want no findings", got)
	}
}

func TestLintFindings(t *testing.T) {
	d := &Diagram{
		Lanes: []LaneBand{{ID: "l1", Height: 100, FillColor: "blue"}},
		Nodes: []ProcessNode{
			{ID: "a", Kind: "subprocess"},
			{ID: "b", Kind: KindTask, Lane: "nowhere"},
			{ID: "c", Kind: KindTask, PixelRect: PixelRect{Width: -5}},
			{ID: "c", Kind: KindTask},
		},
		Edges: []Edge{
			{ID: "short", Waypoints: []Point{{}}},
			{ID: "dangling", Source: "a", Target: "zzz", Waypoints: []Point{{}, {X: 5}}},
		},
	}

	findings := Lint(d)
	want := []string{
		"node a: kind: unknown kind",
		"node b: lane \"nowhere\" does not exist",
		"node c: width: negative width",
		"node c: id used by 2 nodes",
		"lane l1: invalid fill color \"blue\"",
		"edge short: 1 waypoint(s), not drawn",
		"edge dangling: target \"zzz\" not found",
	}

	var lines []string
	for _, f := range findings {
		lines = append(lines, f.Subject+": "+f.Message)
	}
	joined := strings.Join(lines, "\n")
	for _, w := range want {
		if !strings.Contains(joined, w) {
			t.Errorf("missing finding %q in:\n%s", w, joined)
		}
	}
	if strings.Contains(joined, "source \"a\"") {
		t.Errorf("resolvable source reported:\n%s", joined)
	}
}

func TestLintSortedBySubject(t *testing.T) {
	d := &Diagram{Nodes: []ProcessNode{{ID: "z", Kind: "x"}, {ID: "a", Kind: "y"}}}
	findings := Lint(d)
	if len(findings) != 2 {
		t.Fatalf("len = %d, want 2", len(findings))
	}
	if findings[0].Subject != "node a" {
		t.Errorf("first subject = %q, want node a", findings[0].Subject)
	}
}

func TestFindingString(t *testing.T) {
	f := Finding{Severity: SeverityWarning, Subject: "node a", Message: "bad"}
	if got := f.String(); got != "warning: node a: bad" {
		t.Errorf("String() = %q", got)
	}
}
