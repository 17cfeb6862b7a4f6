package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

const (
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"

	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeNotesMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	relTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctSlide       = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctNotesSlide  = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctNotesMaster = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
)

// relationships mirrors a .rels part. The schema is small enough to be
// round-tripped losslessly through encoding/xml.
type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// contentTypes mirrors [Content_Types].xml.
type contentTypes struct {
	XMLName   xml.Name        `xml:"Types"`
	Xmlns     string          `xml:"xmlns,attr"`
	Defaults  []ctDefault     `xml:"Default"`
	Overrides []ctOverride    `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// New returns a Document backed by the built-in default deck: a single master
// with the nine standard layouts (Title Slide through Picture with Caption).
func New() (*Document, error) {
	return newFromParts(defaultParts())
}

// OpenTemplate reads a .pptx template from disk and strips its pre-existing
// slides so only masters, layouts and theme remain.
func OpenTemplate(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("pptx: opening template: %w", err)
	}
	defer zr.Close()

	parts := make(map[string][]byte, len(zr.File))
	order := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("pptx: reading template part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("pptx: reading template part %s: %w", f.Name, err)
		}
		parts[f.Name] = data
		order = append(order, f.Name)
	}

	d, err := newFromParts(partSet{parts: parts, order: order})
	if err != nil {
		return nil, err
	}
	if n := d.stripSlides(); n > 0 {
		slog.Debug("stripped template slides", "count", n)
	}
	return d, nil
}

// partSet is an ordered set of package parts.
type partSet struct {
	parts map[string][]byte
	order []string
}

func newFromParts(ps partSet) (*Document, error) {
	d := &Document{parts: ps.parts, partOrder: ps.order}
	if _, ok := d.parts["ppt/presentation.xml"]; !ok {
		return nil, fmt.Errorf("pptx: package has no ppt/presentation.xml")
	}
	if err := d.discoverLayouts(); err != nil {
		return nil, err
	}
	return d, nil
}

// discoverLayouts resolves the layout order the way presentation consumers
// do: presentation.xml names the masters, the first master's sldLayoutIdLst
// names the layouts, and the master's rels map those ids to part names.
func (d *Document) discoverLayouts() error {
	presRels, err := d.readRels("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return err
	}

	masterIDs := referencedIDs(d.parts["ppt/presentation.xml"], "sldMasterId")
	for _, rid := range masterIDs {
		if rel, ok := findRel(presRels, rid); ok && rel.Type == relTypeSlideMaster {
			d.masterPaths = append(d.masterPaths, resolveTarget("ppt", rel.Target))
		}
	}
	// Fall back to scanning rels when the master list could not be parsed.
	if len(d.masterPaths) == 0 {
		for _, rel := range presRels.Rels {
			if rel.Type == relTypeSlideMaster {
				d.masterPaths = append(d.masterPaths, resolveTarget("ppt", rel.Target))
			}
		}
	}
	if len(d.masterPaths) == 0 {
		return fmt.Errorf("pptx: package has no slide master")
	}

	master := d.masterPaths[0]
	masterRels, err := d.readRels(relsPath(master))
	if err != nil {
		return err
	}

	layoutIDs := referencedIDs(d.parts[master], "sldLayoutId")
	var layoutPaths []string
	for _, rid := range layoutIDs {
		if rel, ok := findRel(masterRels, rid); ok && rel.Type == relTypeSlideLayout {
			layoutPaths = append(layoutPaths, resolveTarget(dirOf(master), rel.Target))
		}
	}
	if len(layoutPaths) == 0 {
		// Some producers omit r:id resolution hints; fall back to the
		// layout parts sorted by their numeric suffix.
		for name := range d.parts {
			if strings.HasPrefix(name, "ppt/slideLayouts/slideLayout") && strings.HasSuffix(name, ".xml") {
				layoutPaths = append(layoutPaths, name)
			}
		}
		sort.Slice(layoutPaths, func(i, j int) bool {
			return partNumber(layoutPaths[i]) < partNumber(layoutPaths[j])
		})
	}

	for _, lp := range layoutPaths {
		data, ok := d.parts[lp]
		if !ok {
			continue
		}
		l := parseLayout(lp, data)
		d.layouts = append(d.layouts, l)
	}
	if len(d.layouts) == 0 {
		return fmt.Errorf("pptx: no slide layouts found")
	}
	return nil
}

// parseLayout extracts the layout name and placeholder inventory from a
// slideLayout part, in document order.
func parseLayout(partName string, data []byte) *Layout {
	l := &Layout{partName: partName}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "cSld":
			for _, a := range se.Attr {
				if a.Name.Local == "name" {
					l.Name = a.Value
				}
			}
		case "ph":
			ph := Placeholder{}
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "type":
					ph.typeAttr = a.Value
				case "idx":
					if n, err := strconv.Atoi(a.Value); err == nil {
						ph.Index = n
						ph.hasIdx = true
					}
				}
			}
			ph.Role = roleFromTypeAttr(ph.typeAttr)
			l.Placeholders = append(l.Placeholders, ph)
		}
	}
	return l
}

// stripSlides removes all slide parts, their relationships and their
// content-type overrides from the package. Returns the number removed.
func (d *Document) stripSlides() int {
	presRels, err := d.readRels("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return 0
	}

	var removedParts []string
	kept := presRels.Rels[:0]
	for _, rel := range presRels.Rels {
		if rel.Type == relTypeSlide {
			removedParts = append(removedParts, resolveTarget("ppt", rel.Target))
			continue
		}
		kept = append(kept, rel)
	}
	presRels.Rels = kept
	d.writeRels("ppt/_rels/presentation.xml.rels", presRels)

	// Also drop notes slides hanging off removed slides.
	for _, sp := range removedParts {
		if rels, err := d.readRels(relsPath(sp)); err == nil {
			for _, rel := range rels.Rels {
				if rel.Type == relTypeNotesSlide {
					d.removePart(resolveTarget(dirOf(sp), rel.Target))
				}
			}
		}
		d.removePart(sp)
	}

	// Clear the sldIdLst in presentation.xml; new ids are written on save.
	d.parts["ppt/presentation.xml"] = replaceSldIdLst(d.parts["ppt/presentation.xml"], "")

	return len(removedParts)
}

func (d *Document) removePart(name string) {
	delete(d.parts, name)
	delete(d.parts, relsPath(name))
	for i, n := range d.partOrder {
		if n == name {
			d.partOrder = append(d.partOrder[:i], d.partOrder[i+1:]...)
			break
		}
	}
	for i, n := range d.partOrder {
		if n == relsPath(name) {
			d.partOrder = append(d.partOrder[:i], d.partOrder[i+1:]...)
			break
		}
	}
}

func (d *Document) readRels(name string) (*relationships, error) {
	data, ok := d.parts[name]
	if !ok {
		return nil, fmt.Errorf("pptx: missing relationships part %s", name)
	}
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("pptx: parsing %s: %w", name, err)
	}
	rels.Xmlns = nsRelationships
	return &rels, nil
}

func (d *Document) writeRels(name string, rels *relationships) {
	out, err := xml.Marshal(rels)
	if err != nil {
		return
	}
	d.parts[name] = []byte(xml.Header + string(out))
}

// referencedIDs returns the r:id values of <p:NAME .../> elements (e.g.
// sldMasterId, sldLayoutId, sldId) in document order.
func referencedIDs(data []byte, local string) []string {
	var ids []string
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "id" && a.Name.Space != "" {
				// r:id, not the numeric id attribute
				ids = append(ids, a.Value)
			}
		}
	}
	return ids
}

func findRel(rels *relationships, id string) (relationship, bool) {
	for _, rel := range rels.Rels {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationship{}, false
}

// resolveTarget resolves a (possibly relative) relationship target against
// the directory of the source part.
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	parts := strings.Split(baseDir, "/")
	for strings.HasPrefix(target, "../") {
		target = strings.TrimPrefix(target, "../")
		if len(parts) > 0 {
			parts = parts[:len(parts)-1]
		}
	}
	if len(parts) == 0 {
		return target
	}
	return strings.Join(parts, "/") + "/" + target
}

func relsPath(partName string) string {
	dir := dirOf(partName)
	base := partName[strings.LastIndex(partName, "/")+1:]
	if dir == "" {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

func dirOf(partName string) string {
	i := strings.LastIndex(partName, "/")
	if i < 0 {
		return ""
	}
	return partName[:i]
}

// partNumber extracts the trailing number of a part name like
// "ppt/slideLayouts/slideLayout12.xml".
func partNumber(name string) int {
	base := strings.TrimSuffix(name[strings.LastIndex(name, "/")+1:], ".xml")
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, _ := strconv.Atoi(base[i:])
	return n
}

// replaceSldIdLst swaps the body of <p:sldIdLst> in presentation.xml with
// the given entries, inserting the element after the master list when it is
// absent. Targeted text surgery keeps the rest of presentation.xml intact.
func replaceSldIdLst(pres []byte, entries string) []byte {
	s := string(pres)

	const open = "<p:sldIdLst>"
	const close = "</p:sldIdLst>"
	const empty = "<p:sldIdLst/>"

	if i := strings.Index(s, open); i >= 0 {
		if j := strings.Index(s[i:], close); j >= 0 {
			return []byte(s[:i] + open + entries + s[i+j:])
		}
	}
	if i := strings.Index(s, empty); i >= 0 {
		return []byte(s[:i] + open + entries + close + s[i+len(empty):])
	}
	// No slide list yet: insert after the master id list.
	const masterClose = "</p:sldMasterIdLst>"
	if i := strings.Index(s, masterClose); i >= 0 {
		at := i + len(masterClose)
		return []byte(s[:at] + open + entries + close + s[at:])
	}
	return pres
}
