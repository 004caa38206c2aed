package sheet

import (
	"time"

	"github.com/matzehuels/procsheet/pkg/sheet/opc"
)

// coreProps renders docProps/core.xml.
func coreProps(title, creator string, now time.Time) ([]byte, error) {
	doc, root := opc.NewDocument("cp:coreProperties", "")
	root.CreateAttr("xmlns:cp", opc.NSCoreProps)
	root.CreateAttr("xmlns:dc", opc.NSDublinCore)
	root.CreateAttr("xmlns:dcterms", opc.NSDCTerms)
	root.CreateAttr("xmlns:dcmitype", opc.NSDCMIType)
	root.CreateAttr("xmlns:xsi", opc.NSXSI)

	if title != "" {
		root.CreateElement("dc:title").SetText(title)
	}
	root.CreateElement("dc:creator").SetText(creator)
	root.CreateElement("cp:lastModifiedBy").SetText(creator)

	stamp := now.UTC().Format(time.RFC3339)
	for _, tag := range []string{"dcterms:created", "dcterms:modified"} {
		opc.Leaf(root, tag, "xsi:type", "dcterms:W3CDTF").SetText(stamp)
	}
	return doc.WriteToBytes()
}

// appProps renders docProps/app.xml.
func appProps(application string) ([]byte, error) {
	doc, root := opc.NewDocument("Properties", opc.NSExtendedProps)
	root.CreateAttr("xmlns:vt", opc.NSDocPropsVT)
	root.CreateElement("Application").SetText(application)
	root.CreateElement("DocSecurity").SetText("0")
	root.CreateElement("ScaleCrop").SetText("false")
	return doc.WriteToBytes()
}
