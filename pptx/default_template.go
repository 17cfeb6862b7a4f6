package pptx

import (
	"fmt"
	"strings"
)

// The built-in deck: one slide master, nine layouts, one theme. The slide is
// 16:9 at 12192000x6858000 EMU. Geometry follows the stock PowerPoint
// template so content lands where viewers expect it.

type defaultLayout struct {
	typeAttr string
	name     string
	shapes   string
}

func defaultParts() partSet {
	ps := partSet{parts: map[string][]byte{}}

	layouts := []defaultLayout{
		{"title", "Title Slide",
			phShape(2, "Title 1", "ctrTitle", -1, 1524000, 1122363, 9144000, 2387600) +
				phShape(3, "Subtitle 2", "subTitle", 1, 1828800, 3602038, 8534400, 1655762)},
		{"obj", "Title and Content",
			phShape(2, "Title 1", "title", -1, 838200, 365125, 10515600, 1325563) +
				phShape(3, "Content Placeholder 2", "body", 1, 838200, 1825625, 10515600, 4351338)},
		{"secHead", "Section Header",
			phShape(2, "Title 1", "title", -1, 831850, 1709738, 10515600, 2852737) +
				phShape(3, "Text Placeholder 2", "body", 1, 831850, 4589463, 10515600, 1500187)},
		{"twoObj", "Two Content",
			phShape(2, "Title 1", "title", -1, 838200, 365125, 10515600, 1325563) +
				phShape(3, "Content Placeholder 2", "body", 1, 838200, 1825625, 5181600, 4351338) +
				phShape(4, "Content Placeholder 3", "body", 2, 6172200, 1825625, 5181600, 4351338)},
		{"twoTxTwoObj", "Comparison",
			phShape(2, "Title 1", "title", -1, 838200, 365125, 10515600, 1325563) +
				phShape(3, "Content Placeholder 2", "body", 1, 838200, 1825625, 5181600, 4351338) +
				phShape(4, "Content Placeholder 3", "body", 2, 6172200, 1825625, 5181600, 4351338)},
		{"titleOnly", "Title Only",
			phShape(2, "Title 1", "title", -1, 838200, 365125, 10515600, 1325563)},
		{"blank", "Blank", ""},
		{"objTx", "Content with Caption",
			phShape(2, "Title 1", "title", -1, 839788, 457200, 3932237, 1600200) +
				phShape(3, "Text Placeholder 2", "body", 1, 839788, 2057400, 3932237, 4114800) +
				phShape(4, "Content Placeholder 3", "", 2, 5183188, 987425, 6172200, 4873625)},
		{"picTx", "Picture with Caption",
			phShape(2, "Title 1", "title", -1, 839788, 457200, 3932237, 1600200) +
				phShape(3, "Picture Placeholder 2", "pic", 1, 5183188, 987425, 6172200, 4873625) +
				phShape(4, "Text Placeholder 3", "body", 2, 839788, 2057400, 3932237, 4114800)},
	}

	addDefault(&ps, "[Content_Types].xml", defaultContentTypesXML(len(layouts)))
	addDefault(&ps, "_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="`+nsRelationships+`"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/><Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/></Relationships>`)
	addDefault(&ps, "docProps/core.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><dc:title>Presentation</dc:title></cp:coreProperties>`)
	addDefault(&ps, "docProps/app.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"><Application>Microsoft Office PowerPoint</Application></Properties>`)

	addDefault(&ps, "ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="`+nsDrawingML+`" xmlns:r="`+nsOfficeDocRels+`" xmlns:p="`+nsPresentationML+`"><p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst><p:sldIdLst/><p:sldSz cx="12192000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/><p:defaultTextStyle><a:defPPr><a:defRPr lang="en-US"/></a:defPPr></p:defaultTextStyle></p:presentation>`)
	addDefault(&ps, "ppt/_rels/presentation.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="`+nsRelationships+`"><Relationship Id="rId1" Type="`+relTypeSlideMaster+`" Target="slideMasters/slideMaster1.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps" Target="presProps.xml"/><Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps" Target="viewProps.xml"/><Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="theme/theme1.xml"/><Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/tableStyles" Target="tableStyles.xml"/></Relationships>`)

	addDefault(&ps, "ppt/slideMasters/slideMaster1.xml", defaultMasterXML(len(layouts)))
	addDefault(&ps, "ppt/slideMasters/_rels/slideMaster1.xml.rels", defaultMasterRelsXML(len(layouts)))

	for i, l := range layouts {
		num := i + 1
		addDefault(&ps, fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", num), layoutXML(l))
		addDefault(&ps, fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", num), `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="`+nsRelationships+`"><Relationship Id="rId1" Type="`+relTypeSlideMaster+`" Target="../slideMasters/slideMaster1.xml"/></Relationships>`)
	}

	addDefault(&ps, "ppt/theme/theme1.xml", defaultThemeXML)
	addDefault(&ps, "ppt/presProps.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentationPr xmlns:a="`+nsDrawingML+`" xmlns:r="`+nsOfficeDocRels+`" xmlns:p="`+nsPresentationML+`"/>`)
	addDefault(&ps, "ppt/viewProps.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:viewPr xmlns:a="`+nsDrawingML+`" xmlns:r="`+nsOfficeDocRels+`" xmlns:p="`+nsPresentationML+`"/>`)
	addDefault(&ps, "ppt/tableStyles.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:tblStyleLst xmlns:a="`+nsDrawingML+`" def="{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"/>`)

	return ps
}

func addDefault(ps *partSet, name, content string) {
	ps.parts[name] = []byte(content)
	ps.order = append(ps.order, name)
}

// phShape emits a placeholder shape for a layout. idx < 0 omits the idx
// attribute, which placeholder inheritance treats as idx 0.
func phShape(id int, name, typeAttr string, idx int, x, y, cx, cy int) string {
	var ph strings.Builder
	ph.WriteString("<p:ph")
	if typeAttr != "" {
		fmt.Fprintf(&ph, ` type="%s"`, typeAttr)
	}
	if idx >= 0 {
		fmt.Fprintf(&ph, ` idx="%d"`, idx)
	}
	ph.WriteString("/>")

	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr></p:nvSpPr><p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp>`,
		id, name, ph.String(), x, y, cx, cy)
}

func layoutXML(l defaultLayout) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" type="%s" preserve="1"><p:cSld name="%s"><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>%s</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`,
		nsDrawingML, nsOfficeDocRels, nsPresentationML, l.typeAttr, l.name, l.shapes)
}

func defaultMasterXML(layoutCount int) string {
	var ids strings.Builder
	for i := 0; i < layoutCount; i++ {
		fmt.Fprintf(&ids, `<p:sldLayoutId id="%d" r:id="rId%d"/>`, 2147483649+i, i+1)
	}
	shapes := phShape(2, "Title Placeholder 1", "title", -1, 838200, 365125, 10515600, 1325563) +
		phShape(3, "Text Placeholder 2", "body", 1, 838200, 1825625, 10515600, 4351338)

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>%s</p:spTree></p:cSld><p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/><p:sldLayoutIdLst>%s</p:sldLayoutIdLst><p:txStyles><p:titleStyle><a:lvl1pPr algn="l"><a:defRPr sz="4400"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill><a:latin typeface="+mj-lt"/></a:defRPr></a:lvl1pPr></p:titleStyle><p:bodyStyle><a:lvl1pPr marL="228600" indent="-228600"><a:buChar char="&#8226;"/><a:defRPr sz="2800"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill><a:latin typeface="+mn-lt"/></a:defRPr></a:lvl1pPr><a:lvl2pPr marL="685800" indent="-228600"><a:buChar char="&#8226;"/><a:defRPr sz="2400"/></a:lvl2pPr><a:lvl3pPr marL="1143000" indent="-228600"><a:buChar char="&#8226;"/><a:defRPr sz="2000"/></a:lvl3pPr><a:lvl4pPr marL="1600200" indent="-228600"><a:buChar char="&#8226;"/><a:defRPr sz="1800"/></a:lvl4pPr><a:lvl5pPr marL="2057400" indent="-228600"><a:buChar char="&#8226;"/><a:defRPr sz="1800"/></a:lvl5pPr><a:lvl6pPr marL="2514600" indent="-228600"><a:buChar char="&#8226;"/><a:defRPr sz="1800"/></a:lvl6pPr></p:bodyStyle><p:otherStyle><a:lvl1pPr><a:defRPr sz="1800"/></a:lvl1pPr></p:otherStyle></p:txStyles></p:sldMaster>`,
		nsDrawingML, nsOfficeDocRels, nsPresentationML, shapes, ids.String())
}

func defaultMasterRelsXML(layoutCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="` + nsRelationships + `">`)
	for i := 0; i < layoutCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="../slideLayouts/slideLayout%d.xml"/>`, i+1, relTypeSlideLayout, i+1)
	}
	fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>`, layoutCount+1)
	b.WriteString(`</Relationships>`)
	return b.String()
}

func defaultContentTypesXML(layoutCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Types xmlns="` + nsContentTypes + `">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	ov := func(part, ct string) {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`, part, ct)
	}
	ov("/ppt/presentation.xml", "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml")
	ov("/ppt/slideMasters/slideMaster1.xml", "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml")
	for i := 0; i < layoutCount; i++ {
		ov(fmt.Sprintf("/ppt/slideLayouts/slideLayout%d.xml", i+1), "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml")
	}
	ov("/ppt/theme/theme1.xml", "application/vnd.openxmlformats-officedocument.theme+xml")
	ov("/ppt/presProps.xml", "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml")
	ov("/ppt/viewProps.xml", "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml")
	ov("/ppt/tableStyles.xml", "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml")
	ov("/docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml")
	ov("/docProps/app.xml", "application/vnd.openxmlformats-officedocument.extended-properties+xml")
	b.WriteString(`</Types>`)
	return b.String()
}

const defaultThemeXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements><a:clrScheme name="Office"><a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1><a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1><a:dk2><a:srgbClr val="44546A"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2><a:accent1><a:srgbClr val="4472C4"/></a:accent1><a:accent2><a:srgbClr val="ED7D31"/></a:accent2><a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4><a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6><a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink></a:clrScheme><a:fontScheme name="Office"><a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont><a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont></a:fontScheme><a:fmtScheme name="Office"><a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"><a:tint val="65000"/></a:schemeClr></a:solidFill><a:solidFill><a:schemeClr val="phClr"><a:shade val="95000"/></a:schemeClr></a:solidFill></a:fillStyleLst><a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst><a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst><a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"><a:tint val="95000"/></a:schemeClr></a:solidFill><a:solidFill><a:schemeClr val="phClr"><a:shade val="90000"/></a:schemeClr></a:solidFill></a:bgFillStyleLst></a:fmtScheme></a:themeElements></a:theme>`
