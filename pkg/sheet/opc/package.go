// Package opc assembles Open Packaging Conventions archives.
//
// A [Package] collects named parts and the relationships between them, then
// writes the content-type manifest, one relationships part per source and
// the Deflate-compressed zip archive. [Package.Validate] refuses to write a
// package with dangling relationships or orphaned parts, and [Verify] runs
// the same checks against any archive read back from bytes.
package opc

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ContentTypesPart is the name of the content-type manifest.
const ContentTypesPart = "[Content_Types].xml"

// Root is the relationship source name of the package itself.
const Root = ""

// Part is a named blob inside a package.
type Part struct {
	Name        string
	ContentType string
	Data        []byte
}

// Relationship links a source part to a target part.
type Relationship struct {
	ID     string
	Type   string
	Target string // absolute part name
}

// Package is an in-memory OPC package under construction. It is not safe for
// concurrent use.
type Package struct {
	// Modified is stamped on every zip entry.
	Modified time.Time

	parts []Part
	index map[string]int
	rels  map[string][]Relationship
}

// New returns an empty package.
func New() *Package {
	return &Package{
		index: make(map[string]int),
		rels:  make(map[string][]Relationship),
	}
}

// AddPart adds a part. Names are package-relative without a leading slash.
func (p *Package) AddPart(name, contentType string, data []byte) error {
	name = strings.TrimPrefix(name, "/")
	switch {
	case name == "" || name == ContentTypesPart || isRelsPart(name):
		return fmt.Errorf("reserved part name %q", name)
	case contentType == "":
		return fmt.Errorf("part %s: missing content type", name)
	}
	if _, ok := p.index[name]; ok {
		return fmt.Errorf("duplicate part %s", name)
	}
	p.index[name] = len(p.parts)
	p.parts = append(p.parts, Part{Name: name, ContentType: contentType, Data: data})
	return nil
}

// Relate records a relationship from source (a part name, or [Root]) to
// target and returns its id, unique within source.
func (p *Package) Relate(source, relType, target string) string {
	source = strings.TrimPrefix(source, "/")
	id := "rId" + strconv.Itoa(len(p.rels[source])+1)
	p.rels[source] = append(p.rels[source], Relationship{
		ID:     id,
		Type:   relType,
		Target: strings.TrimPrefix(target, "/"),
	})
	return id
}

// Parts returns the parts in insertion order.
func (p *Package) Parts() []Part {
	return append([]Part(nil), p.parts...)
}

// Relationships returns the relationships whose source is source.
func (p *Package) Relationships(source string) []Relationship {
	return append([]Relationship(nil), p.rels[source]...)
}

// Validate checks referential completeness: every relationship source and
// target exists and every part is reachable from the package root.
func (p *Package) Validate() error {
	var problems []string
	for _, source := range p.sources() {
		if source != Root {
			if _, ok := p.index[source]; !ok {
				problems = append(problems, fmt.Sprintf("relationships from missing part %s", source))
			}
		}
		for _, r := range p.rels[source] {
			if _, ok := p.index[r.Target]; !ok {
				problems = append(problems, fmt.Sprintf("%s %s: target %s does not exist", relsName(source), r.ID, r.Target))
			}
		}
	}

	reached := reachable(func(source string) []string {
		var targets []string
		for _, r := range p.rels[source] {
			targets = append(targets, r.Target)
		}
		return targets
	})
	for _, part := range p.parts {
		if !reached[part.Name] {
			problems = append(problems, fmt.Sprintf("part %s is not referenced by any relationship", part.Name))
		}
	}

	if len(problems) > 0 {
		return &VerifyError{Problems: problems}
	}
	return nil
}

// Bytes validates the package and returns the zip archive.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo validates the package and writes the zip archive to w.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	manifest, err := p.contentTypes()
	if err != nil {
		return cw.n, fmt.Errorf("content types: %w", err)
	}
	if err := p.writeEntry(zw, ContentTypesPart, manifest); err != nil {
		return cw.n, err
	}
	for _, source := range p.sources() {
		data, err := p.relsXML(source)
		if err != nil {
			return cw.n, fmt.Errorf("relationships for %q: %w", source, err)
		}
		if err := p.writeEntry(zw, relsName(source), data); err != nil {
			return cw.n, err
		}
	}
	for _, part := range p.parts {
		if err := p.writeEntry(zw, part.Name, part.Data); err != nil {
			return cw.n, err
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("close archive: %w", err)
	}
	return cw.n, nil
}

func (p *Package) writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: p.Modified,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (p *Package) contentTypes() ([]byte, error) {
	doc, types := NewDocument("Types", NSContentTypes)
	Leaf(types, "Default", "Extension", "rels", "ContentType", TypeRelationships)
	Leaf(types, "Default", "Extension", "xml", "ContentType", TypeXML)
	for _, part := range p.parts {
		Leaf(types, "Override", "PartName", "/"+part.Name, "ContentType", part.ContentType)
	}
	return doc.WriteToBytes()
}

func (p *Package) relsXML(source string) ([]byte, error) {
	doc, root := NewDocument("Relationships", NSRelationships)
	for _, r := range p.rels[source] {
		Leaf(root, "Relationship",
			"Id", r.ID,
			"Type", r.Type,
			"Target", relativeTarget(source, r.Target))
	}
	return doc.WriteToBytes()
}

// sources returns relationship sources with the root first, then in part
// order.
func (p *Package) sources() []string {
	var out []string
	if len(p.rels[Root]) > 0 {
		out = append(out, Root)
	}
	seen := map[string]bool{Root: true}
	for _, part := range p.parts {
		if len(p.rels[part.Name]) > 0 {
			out = append(out, part.Name)
			seen[part.Name] = true
		}
	}
	var rest []string
	for source := range p.rels {
		if !seen[source] {
			rest = append(rest, source)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// relsName returns the relationships part name for source.
func relsName(source string) string {
	if source == Root {
		return "_rels/.rels"
	}
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// sourceOfRels is the inverse of relsName.
func sourceOfRels(name string) (string, bool) {
	if name == "_rels/.rels" {
		return Root, true
	}
	dir, file := path.Split(name)
	if !strings.HasSuffix(dir, "_rels/") || !strings.HasSuffix(file, ".rels") {
		return "", false
	}
	return strings.TrimSuffix(dir, "_rels/") + strings.TrimSuffix(file, ".rels"), true
}

func isRelsPart(name string) bool {
	_, ok := sourceOfRels(name)
	return ok
}

// relativeTarget expresses target relative to the directory of source.
func relativeTarget(source, target string) string {
	if source == Root {
		return target
	}
	var from []string
	if dir := path.Dir(source); dir != "." {
		from = strings.Split(dir, "/")
	}
	to := strings.Split(target, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	rel := strings.Repeat("../", len(from)-i)
	return rel + strings.Join(to[i:], "/")
}

// resolveTarget is the inverse of relativeTarget. Absolute targets start at
// the package root.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	if source == Root {
		return path.Clean(target)
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// reachable walks the relationship graph from the root.
func reachable(targets func(source string) []string) map[string]bool {
	seen := make(map[string]bool)
	queue := []string{Root}
	for len(queue) > 0 {
		source := queue[0]
		queue = queue[1:]
		for _, t := range targets(source) {
			if !seen[t] {
				seen[t] = true
				queue = append(queue, t)
			}
		}
	}
	return seen
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
