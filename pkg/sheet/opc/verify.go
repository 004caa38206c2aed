package opc

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/zip"
)

// VerifyError lists every structural problem found in a package.
type VerifyError struct {
	Problems []string
}

func (e *VerifyError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid package: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid package: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Verify reads a zip archive and checks it the way a spreadsheet application
// would before opening it: the manifest must cover every part, every
// relationship target must exist, every part must be reachable from the
// package root, and every r:id style attribute in a part must resolve in
// that part's relationships.
func Verify(archive []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return err
		}
		entries[f.Name] = data
	}

	v := &verifier{entries: entries, rels: make(map[string]map[string]string)}
	v.checkManifest()
	v.readRelationships()
	v.checkReachable()
	v.checkReferences()

	if len(v.problems) > 0 {
		sort.Strings(v.problems)
		return &VerifyError{Problems: v.problems}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

type verifier struct {
	entries  map[string][]byte
	rels     map[string]map[string]string // source -> id -> resolved target
	problems []string
}

func (v *verifier) fail(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *verifier) parse(name string) *etree.Document {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(v.entries[name]); err != nil {
		v.fail("%s: malformed XML: %v", name, err)
		return nil
	}
	return doc
}

func (v *verifier) checkManifest() {
	if _, ok := v.entries[ContentTypesPart]; !ok {
		v.fail("missing %s", ContentTypesPart)
		return
	}
	doc := v.parse(ContentTypesPart)
	if doc == nil || doc.Root() == nil {
		return
	}

	defaults := make(map[string]bool)
	overrides := make(map[string]bool)
	for _, el := range doc.Root().ChildElements() {
		switch el.Tag {
		case "Default":
			defaults[strings.ToLower(el.SelectAttrValue("Extension", ""))] = true
		case "Override":
			name := strings.TrimPrefix(el.SelectAttrValue("PartName", ""), "/")
			overrides[name] = true
			if _, ok := v.entries[name]; !ok {
				v.fail("%s: override for missing part /%s", ContentTypesPart, name)
			}
		}
	}

	for name := range v.entries {
		if name == ContentTypesPart || overrides[name] {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		if !defaults[ext] {
			v.fail("part %s has no content type", name)
		}
	}
}

func (v *verifier) readRelationships() {
	for name := range v.entries {
		source, ok := sourceOfRels(name)
		if !ok {
			continue
		}
		if source != Root {
			if _, exists := v.entries[source]; !exists {
				v.fail("%s: source part %s does not exist", name, source)
			}
		}
		doc := v.parse(name)
		if doc == nil || doc.Root() == nil {
			continue
		}

		ids := make(map[string]string)
		for _, el := range doc.Root().SelectElements("Relationship") {
			id := el.SelectAttrValue("Id", "")
			if _, dup := ids[id]; dup || id == "" {
				v.fail("%s: missing or duplicate id %q", name, id)
			}
			if el.SelectAttrValue("TargetMode", "") == "External" {
				ids[id] = ""
				continue
			}
			target := resolveTarget(source, el.SelectAttrValue("Target", ""))
			ids[id] = target
			if _, exists := v.entries[target]; !exists {
				v.fail("%s %s: target %s does not exist", name, id, target)
			}
		}
		v.rels[source] = ids
	}
	if _, ok := v.rels[Root]; !ok {
		v.fail("missing package relationships _rels/.rels")
	}
}

func (v *verifier) checkReachable() {
	reached := reachable(func(source string) []string {
		var targets []string
		for _, t := range v.rels[source] {
			if t != "" {
				targets = append(targets, t)
			}
		}
		return targets
	})
	for name := range v.entries {
		if name == ContentTypesPart || isRelsPart(name) {
			continue
		}
		if !reached[name] {
			v.fail("part %s is not referenced by any relationship", name)
		}
	}
}

// checkReferences resolves attributes in the office relationships namespace
// (r:id, r:embed) against the owning part's relationships.
func (v *verifier) checkReferences() {
	for name := range v.entries {
		if name == ContentTypesPart || isRelsPart(name) || path.Ext(name) != ".xml" {
			continue
		}
		doc := v.parse(name)
		if doc == nil || doc.Root() == nil {
			continue
		}
		prefixes := relPrefixes(doc.Root())
		if len(prefixes) == 0 {
			continue
		}
		ids := v.rels[name]
		walk(doc.Root(), func(el *etree.Element) {
			for _, a := range el.Attr {
				if !prefixes[a.Space] {
					continue
				}
				if _, ok := ids[a.Value]; !ok {
					v.fail("%s: <%s %s:%s=%q> has no relationship", name, el.FullTag(), a.Space, a.Key, a.Value)
				}
			}
		})
	}
}

// relPrefixes returns the namespace prefixes bound to the office
// relationships namespace anywhere in the tree.
func relPrefixes(root *etree.Element) map[string]bool {
	prefixes := make(map[string]bool)
	walk(root, func(el *etree.Element) {
		for _, a := range el.Attr {
			if a.Space == "xmlns" && a.Value == NSOfficeRels {
				prefixes[a.Key] = true
			}
		}
	})
	return prefixes
}

func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		walk(child, fn)
	}
}
