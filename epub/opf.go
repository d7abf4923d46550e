package epub

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/taleweaver/taleweaver/overlay"
)

// Package document (content.opf) model, marshaled with encoding/xml.

type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Xmlns    string   `xml:"xmlns,attr"`
	Version  string   `xml:"version,attr"`
	UniqueID string   `xml:"unique-identifier,attr"`
	Lang     string   `xml:"xml:lang,attr"`
	Prefix   string   `xml:"prefix,attr"`

	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC  string `xml:"xmlns:dc,attr"`
	XmlnsOPF string `xml:"xmlns:opf,attr"`

	Identifier opfIdentifier `xml:"dc:identifier"`
	Title      string        `xml:"dc:title"`
	Creator    string        `xml:"dc:creator"`
	Language   string        `xml:"dc:language"`
	Metas      []opfMeta     `xml:"meta"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID           string `xml:"id,attr"`
	Href         string `xml:"href,attr"`
	MediaType    string `xml:"media-type,attr"`
	Properties   string `xml:"properties,attr,omitempty"`
	MediaOverlay string `xml:"media-overlay,attr,omitempty"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// renderOPF builds content.opf: identity and media:duration metadata, one
// audio/xhtml/smil manifest triple per chapter, and the ordinal spine.
func renderOPF(pub *Publication, now time.Time) ([]byte, error) {
	doc := opfPackage{
		Xmlns:    "http://www.idpf.org/2007/opf",
		Version:  "3.0",
		UniqueID: "pubID",
		Lang:     "en",
		Prefix:   "rendition: http://www.idpf.org/vocab/rendition/# media: http://www.idpf.org/vocab/overlays/#",
		Metadata: opfMetadata{
			XmlnsDC:    "http://purl.org/dc/elements/1.1/",
			XmlnsOPF:   "http://www.idpf.org/2007/opf",
			Identifier: opfIdentifier{ID: "pubID", Value: "urn:uuid:" + pub.ID},
			Title:      pub.Title,
			Creator:    pub.Author,
			Language:   "en",
		},
		Spine: opfSpine{Toc: "ncx"},
	}

	doc.Metadata.Metas = append(doc.Metadata.Metas,
		opfMeta{Property: "dcterms:modified", Value: now.UTC().Format("2006-01-02T15:04:05Z")},
		opfMeta{Property: "media:duration", Value: overlay.FormatClip(pub.TotalDuration)},
	)
	for i, pair := range pub.Pairs {
		doc.Metadata.Metas = append(doc.Metadata.Metas, opfMeta{
			Property: "media:duration",
			Refines:  fmt.Sprintf("#smil_%03d", i+1),
			Value:    overlay.FormatClip(pair.Duration),
		})
	}

	doc.Manifest.Items = append(doc.Manifest.Items,
		opfItem{ID: "css", Href: "Styles/style.css", MediaType: "text/css"},
		opfItem{ID: "nav", Href: "Text/nav.xhtml", MediaType: "application/xhtml+xml", Properties: "nav"},
		opfItem{ID: "ncx", Href: "toc.ncx", MediaType: "application/x-dtbncx+xml"},
	)
	for i, pair := range pub.Pairs {
		n := i + 1
		doc.Manifest.Items = append(doc.Manifest.Items,
			opfItem{
				ID:        fmt.Sprintf("audio_%03d", n),
				Href:      "Audio/" + pair.AudioFilename,
				MediaType: "audio/mpeg",
			},
			opfItem{
				ID:           fmt.Sprintf("xhtml_%03d", n),
				Href:         "Text/" + pair.XHTMLName,
				MediaType:    "application/xhtml+xml",
				MediaOverlay: fmt.Sprintf("smil_%03d", n),
			},
			opfItem{
				ID:        fmt.Sprintf("smil_%03d", n),
				Href:      "Text/" + pair.SMILName,
				MediaType: "application/smil+xml",
			},
		)
		doc.Spine.ItemRefs = append(doc.Spine.ItemRefs, opfItemRef{IDRef: fmt.Sprintf("xhtml_%03d", n)})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal package document: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
