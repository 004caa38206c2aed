package opc

import "github.com/beevik/etree"

// XML namespaces used by spreadsheet packages.
const (
	NSContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSOfficeRels    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSSpreadsheet   = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	NSDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSSheetDrawing  = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	NSCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	NSExtendedProps = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	NSDocPropsVT    = "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"
	NSDublinCore    = "http://purl.org/dc/elements/1.1/"
	NSDCTerms       = "http://purl.org/dc/terms/"
	NSDCMIType      = "http://purl.org/dc/dcmitype/"
	NSXSI           = "http://www.w3.org/2001/XMLSchema-instance"
)

// Relationship types.
const (
	RelOfficeDocument = NSOfficeRels + "/officeDocument"
	RelWorksheet      = NSOfficeRels + "/worksheet"
	RelStyles         = NSOfficeRels + "/styles"
	RelDrawing        = NSOfficeRels + "/drawing"
	RelExtendedProps  = NSOfficeRels + "/extended-properties"
	RelCoreProps      = NSRelationships + "/metadata/core-properties"
)

// Content types.
const (
	TypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	TypeXML           = "application/xml"
	TypeWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	TypeWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	TypeStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	TypeDrawing       = "application/vnd.openxmlformats-officedocument.drawing+xml"
	TypeCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
	TypeExtendedProps = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// NewDocument returns an XML document with the standard declaration and a
// root element named root carrying the default namespace ns.
func NewDocument(root, ns string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	el := doc.CreateElement(root)
	if ns != "" {
		el.CreateAttr("xmlns", ns)
	}
	return doc, el
}

// Leaf appends an empty child element with the given attributes, given as
// key/value pairs.
func Leaf(parent *etree.Element, tag string, attrs ...string) *etree.Element {
	el := parent.CreateElement(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		el.CreateAttr(attrs[i], attrs[i+1])
	}
	return el
}
