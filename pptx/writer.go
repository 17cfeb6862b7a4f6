package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsOfficeDocRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

// Save writes the document to a .pptx file at path, creating parent
// directories as needed. A write failure removes the partial file.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("pptx: creating output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("pptx: creating file: %w", err)
	}
	writeErr := d.Encode(f)
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(path)
		return writeErr
	}
	return closeErr
}

// Encode serializes the document as a pptx package to w.
func (d *Document) Encode(w io.Writer) error {
	out, err := d.assemble()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, name := range out.order {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("pptx: creating zip entry %s: %w", name, err)
		}
		if _, err := fw.Write(out.parts[name]); err != nil {
			return fmt.Errorf("pptx: writing zip entry %s: %w", name, err)
		}
	}
	return zw.Close()
}

// assemble produces the final part set: retained template parts with the
// manifest patched, plus the generated slide, notes and media parts.
func (d *Document) assemble() (partSet, error) {
	// Work on copies so Save is repeatable.
	parts := make(map[string][]byte, len(d.parts)+len(d.slides)*3)
	order := make([]string, len(d.partOrder))
	copy(order, d.partOrder)
	for k, v := range d.parts {
		parts[k] = v
	}
	ps := partSet{parts: parts, order: order}

	presRels, err := d.readRels("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return ps, err
	}
	nextRID := maxRelID(presRels) + 1

	// Notes slides need a notes master behind them or strict consumers
	// flag the package for repair. Reuse a template-provided master when
	// there is one, otherwise emit a minimal part.
	notesMasterPart := ""
	for _, rel := range presRels.Rels {
		if rel.Type == relTypeNotesMaster {
			notesMasterPart = resolveTarget("ppt", rel.Target)
			break
		}
	}
	if notesMasterPart == "" && d.hasNotes() {
		notesMasterPart = "ppt/notesMasters/notesMaster1.xml"
		addPart(&ps, notesMasterPart, buildNotesMasterXML())

		nmRels := relationships{Xmlns: nsRelationships}
		if theme := d.themePath(); theme != "" {
			nmRels.Rels = append(nmRels.Rels, relationship{
				ID: "rId1", Type: relTypeTheme, Target: "../" + strings.TrimPrefix(theme, "ppt/"),
			})
		}
		addRelsPart(&ps, notesMasterPart, &nmRels)

		rid := fmt.Sprintf("rId%d", nextRID)
		nextRID++
		presRels.Rels = append(presRels.Rels, relationship{
			ID: rid, Type: relTypeNotesMaster, Target: "notesMasters/notesMaster1.xml",
		})
		ps.parts["ppt/presentation.xml"] = insertNotesMasterIdLst(ps.parts["ppt/presentation.xml"], rid)
	}

	mediaNum := d.maxMediaNumber() + 1

	var sldEntries strings.Builder
	for i, slide := range d.slides {
		num := i + 1
		slidePart := fmt.Sprintf("ppt/slides/slide%d.xml", num)

		// Presentation-level wiring.
		rid := fmt.Sprintf("rId%d", nextRID)
		nextRID++
		presRels.Rels = append(presRels.Rels, relationship{
			ID: rid, Type: relTypeSlide, Target: fmt.Sprintf("slides/slide%d.xml", num),
		})
		fmt.Fprintf(&sldEntries, `<p:sldId id="%d" r:id="%s"/>`, 255+num, rid)

		// Slide part and its relationships.
		slideRels := relationships{Xmlns: nsRelationships}
		layoutTarget := "../" + strings.TrimPrefix(slide.layout.partName, "ppt/")
		slideRels.Rels = append(slideRels.Rels, relationship{
			ID: "rId1", Type: relTypeSlideLayout, Target: layoutTarget,
		})

		slideRID := 2
		picRIDs := make([]string, len(slide.pics))
		for pi, pic := range slide.pics {
			mediaName := fmt.Sprintf("ppt/media/image%d.%s", mediaNum, pic.ext)
			mediaNum++
			addPart(&ps, mediaName, pic.data)

			picRIDs[pi] = fmt.Sprintf("rId%d", slideRID)
			slideRels.Rels = append(slideRels.Rels, relationship{
				ID: picRIDs[pi], Type: relTypeImage, Target: "../media/" + mediaName[len("ppt/media/"):],
			})
			slideRID++
		}

		if slide.notes != nil {
			notesPart := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", num)
			addPart(&ps, notesPart, buildNotesXML(slide.notes))
			notesRels := relationships{Xmlns: nsRelationships, Rels: []relationship{
				{ID: "rId1", Type: relTypeSlide, Target: fmt.Sprintf("../slides/slide%d.xml", num)},
			}}
			if notesMasterPart != "" {
				notesRels.Rels = append(notesRels.Rels, relationship{
					ID:   "rId2",
					Type: relTypeNotesMaster, Target: "../" + strings.TrimPrefix(notesMasterPart, "ppt/"),
				})
			}
			addRelsPart(&ps, notesPart, &notesRels)

			slideRels.Rels = append(slideRels.Rels, relationship{
				ID:   fmt.Sprintf("rId%d", slideRID),
				Type: relTypeNotesSlide, Target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", num),
			})
			slideRID++
		}

		addPart(&ps, slidePart, buildSlideXML(slide, picRIDs))
		addRelsPart(&ps, slidePart, &slideRels)
	}

	// Patch presentation.xml and its rels.
	ps.parts["ppt/presentation.xml"] = replaceSldIdLst(ps.parts["ppt/presentation.xml"], sldEntries.String())
	relsOut, err := xml.Marshal(presRels)
	if err != nil {
		return ps, fmt.Errorf("pptx: serializing presentation rels: %w", err)
	}
	ps.parts["ppt/_rels/presentation.xml.rels"] = []byte(xml.Header + string(relsOut))

	// Master background override.
	if d.bgColorHex != "" && len(d.masterPaths) > 0 {
		mp := d.masterPaths[0]
		if data, ok := ps.parts[mp]; ok {
			ps.parts[mp] = patchMasterBackground(data, d.bgColorHex)
		}
	}

	if err := d.patchContentTypes(&ps); err != nil {
		return ps, err
	}
	return ps, nil
}

func addPart(ps *partSet, name string, data []byte) {
	if _, exists := ps.parts[name]; !exists {
		ps.order = append(ps.order, name)
	}
	ps.parts[name] = data
}

func addRelsPart(ps *partSet, partName string, rels *relationships) {
	out, _ := xml.Marshal(rels)
	addPart(ps, relsPath(partName), []byte(xml.Header+string(out)))
}

// patchContentTypes rewrites [Content_Types].xml: overrides for dropped
// parts are removed, new slide and notes parts are registered, and the image
// extensions used by the deck get default entries.
func (d *Document) patchContentTypes(ps *partSet) error {
	data, ok := ps.parts["[Content_Types].xml"]
	if !ok {
		return fmt.Errorf("pptx: package has no [Content_Types].xml")
	}
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return fmt.Errorf("pptx: parsing content types: %w", err)
	}
	ct.Xmlns = nsContentTypes

	kept := ct.Overrides[:0]
	for _, ov := range ct.Overrides {
		if _, exists := ps.parts[strings.TrimPrefix(ov.PartName, "/")]; exists {
			kept = append(kept, ov)
		}
	}
	ct.Overrides = kept

	for i := range d.slides {
		num := i + 1
		ct.Overrides = append(ct.Overrides, ctOverride{
			PartName:    fmt.Sprintf("/ppt/slides/slide%d.xml", num),
			ContentType: ctSlide,
		})
		if d.slides[i].notes != nil {
			ct.Overrides = append(ct.Overrides, ctOverride{
				PartName:    fmt.Sprintf("/ppt/notesSlides/notesSlide%d.xml", num),
				ContentType: ctNotesSlide,
			})
		}
	}

	if _, ok := ps.parts["ppt/notesMasters/notesMaster1.xml"]; ok {
		registered := false
		for _, ov := range ct.Overrides {
			if ov.PartName == "/ppt/notesMasters/notesMaster1.xml" {
				registered = true
				break
			}
		}
		if !registered {
			ct.Overrides = append(ct.Overrides, ctOverride{
				PartName:    "/ppt/notesMasters/notesMaster1.xml",
				ContentType: ctNotesMaster,
			})
		}
	}

	exts := map[string]bool{}
	for _, s := range d.slides {
		for _, pic := range s.pics {
			exts[pic.ext] = true
		}
	}
	for ext := range exts {
		found := false
		for _, def := range ct.Defaults {
			if strings.EqualFold(def.Extension, ext) {
				found = true
				break
			}
		}
		if !found {
			ct.Defaults = append(ct.Defaults, ctDefault{Extension: ext, ContentType: imageContentType(ext)})
		}
	}

	out, err := xml.Marshal(&ct)
	if err != nil {
		return fmt.Errorf("pptx: serializing content types: %w", err)
	}
	ps.parts["[Content_Types].xml"] = []byte(xml.Header + string(out))
	return nil
}

func (d *Document) hasNotes() bool {
	for _, s := range d.slides {
		if s.notes != nil {
			return true
		}
	}
	return false
}

// themePath returns the part name of the theme the first slide master uses.
func (d *Document) themePath() string {
	if len(d.masterPaths) == 0 {
		return ""
	}
	rels, err := d.readRels(relsPath(d.masterPaths[0]))
	if err != nil {
		return ""
	}
	for _, rel := range rels.Rels {
		if rel.Type == relTypeTheme {
			return resolveTarget(dirOf(d.masterPaths[0]), rel.Target)
		}
	}
	return ""
}

// insertNotesMasterIdLst adds a <p:notesMasterIdLst> to presentation.xml.
// Schema order puts it between sldMasterIdLst and sldIdLst.
func insertNotesMasterIdLst(pres []byte, rid string) []byte {
	s := string(pres)
	if strings.Contains(s, "<p:notesMasterIdLst") {
		return pres
	}
	entry := fmt.Sprintf(`<p:notesMasterIdLst><p:notesMasterId r:id="%s"/></p:notesMasterIdLst>`, rid)
	const masterClose = "</p:sldMasterIdLst>"
	if i := strings.Index(s, masterClose); i >= 0 {
		at := i + len(masterClose)
		return []byte(s[:at] + entry + s[at:])
	}
	return pres
}

var relIDPattern = regexp.MustCompile(`^rId(\d+)$`)

func maxRelID(rels *relationships) int {
	max := 0
	for _, rel := range rels.Rels {
		if m := relIDPattern.FindStringSubmatch(rel.ID); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

var mediaPattern = regexp.MustCompile(`^ppt/media/image(\d+)\.`)

func (d *Document) maxMediaNumber() int {
	max := 0
	for name := range d.parts {
		if m := mediaPattern.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

// patchMasterBackground replaces (or inserts) the <p:bg> element of a slide
// master with a solid fill. The bg element must be the first child of cSld.
func patchMasterBackground(master []byte, hex string) []byte {
	s := string(master)
	bg := fmt.Sprintf(`<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, hex)

	if i := strings.Index(s, "<p:bg>"); i >= 0 {
		if j := strings.Index(s[i:], "</p:bg>"); j >= 0 {
			return []byte(s[:i] + bg + s[i+j+len("</p:bg>"):])
		}
	}
	if i := strings.Index(s, "<p:cSld>"); i >= 0 {
		at := i + len("<p:cSld>")
		return []byte(s[:at] + bg + s[at:])
	}
	return master
}

// --- slide XML generation ---

func buildSlideXML(s *Slide, picRIDs []string) []byte {
	var shapes strings.Builder
	shapeID := 2

	for _, pf := range s.frames {
		writeShapeSp(&shapes, pf.ph, pf.frame, &shapeID)
	}
	for pi, pic := range s.pics {
		writePicSp(&shapes, pic, picRIDs[pi], &shapeID)
	}

	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>%s</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`,
		nsDrawingML, nsOfficeDocRels, nsPresentationML, shapes.String())
	return []byte(content)
}

// phAttrs echoes the placeholder's type and idx attributes exactly as the
// layout declared them so inheritance keeps working.
func phAttrs(ph Placeholder) string {
	var b strings.Builder
	if ph.typeAttr != "" {
		fmt.Fprintf(&b, ` type="%s"`, ph.typeAttr)
	}
	if ph.hasIdx {
		fmt.Fprintf(&b, ` idx="%d"`, ph.Index)
	}
	return b.String()
}

func writeShapeSp(w *strings.Builder, ph Placeholder, tf *TextFrame, shapeID *int) {
	id := *shapeID
	*shapeID++

	fmt.Fprintf(w, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Placeholder %d"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph%s/></p:nvPr></p:nvSpPr><p:spPr/>`,
		id, id, phAttrs(ph))

	wrap := ""
	if tf.WordWrap {
		wrap = ` wrap="square"`
	}
	fmt.Fprintf(w, `<p:txBody><a:bodyPr%s anchor="%s"/><a:lstStyle/>`, wrap, tf.Anchor.attr())

	if len(tf.Paragraphs) == 0 {
		w.WriteString(`<a:p/>`)
	}
	for _, p := range tf.Paragraphs {
		writeParagraph(w, p)
	}
	w.WriteString(`</p:txBody></p:sp>`)
}

func writeParagraph(w *strings.Builder, p *Paragraph) {
	fmt.Fprintf(w, `<a:p><a:pPr`)
	if p.Level > 0 {
		fmt.Fprintf(w, ` lvl="%d"`, p.Level)
	}
	fmt.Fprintf(w, ` algn="%s"/>`, p.Align.attr())
	for _, r := range p.Runs {
		writeRun(w, r)
	}
	w.WriteString(`</a:p>`)
}

func writeRun(w *strings.Builder, r Run) {
	w.WriteString(`<a:r><a:rPr lang="en-US"`)
	if r.SizePt > 0 {
		// Font sizes are expressed in hundredths of a point.
		fmt.Fprintf(w, ` sz="%d"`, int(r.SizePt*100))
	}
	if r.Bold {
		w.WriteString(` b="1"`)
	}
	if r.Italic {
		w.WriteString(` i="1"`)
	}
	if r.Underline {
		w.WriteString(` u="sng"`)
	}
	w.WriteString(` dirty="0">`)
	if r.ColorHex != "" {
		fmt.Fprintf(w, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, r.ColorHex)
	}
	if r.Font != "" {
		fmt.Fprintf(w, `<a:latin typeface="%s"/>`, xmlEscape(r.Font))
	}
	fmt.Fprintf(w, `</a:rPr><a:t>%s</a:t></a:r>`, xmlEscape(r.Text))
}

func writePicSp(w *strings.Builder, pic *picture, rid string, shapeID *int) {
	id := *shapeID
	*shapeID++

	fmt.Fprintf(w, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr><a:picLocks noGrp="1" noChangeAspect="1"/></p:cNvPicPr><p:nvPr><p:ph%s/></p:nvPr></p:nvPicPr><p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr/></p:pic>`,
		id, id, phAttrs(pic.ph), rid)
}

func buildNotesXML(tf *TextFrame) []byte {
	var body strings.Builder
	if len(tf.Paragraphs) == 0 {
		body.WriteString(`<a:p/>`)
	}
	for _, p := range tf.Paragraphs {
		writeParagraph(&body, p)
	}

	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr><p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody></p:sp></p:spTree></p:cSld></p:notes>`,
		nsDrawingML, nsOfficeDocRels, nsPresentationML, body.String())
	return []byte(content)
}

func buildNotesMasterXML() []byte {
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notesMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr></p:spTree></p:cSld><p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/><p:notesStyle><a:lvl1pPr><a:defRPr sz="1200"/></a:lvl1pPr></p:notesStyle></p:notesMaster>`,
		nsDrawingML, nsOfficeDocRels, nsPresentationML)
	return []byte(content)
}

func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
