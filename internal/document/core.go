package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	nsPkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCP      = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	relCore   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	ctCore    = "application/vnd.openxmlformats-package.core-properties+xml"

	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partCore         = "docProps/core.xml"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Items   []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func (r *relationships) marshal() ([]byte, error) {
	// a parsed XMLName carries the namespace and would emit a second xmlns
	r.XMLName = xml.Name{}
	r.Xmlns = nsPkgRels
	data, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), data...), nil
}

// coreProperties is the part of docProps/core.xml kept across runs.
type coreProperties struct {
	Title   string `xml:"title"`
	Created string `xml:"created"`
}

func coreXML(title, author, created string, now time.Time) []byte {
	if created == "" {
		created = now.UTC().Format(time.RFC3339)
	}
	var b bytes.Buffer
	b.WriteString(xmlHeader)
	b.WriteString(`<cp:coreProperties xmlns:cp="` + nsCP + `" xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	fmt.Fprintf(&b, `<dc:title>%s</dc:title>`, escape(title))
	fmt.Fprintf(&b, `<dc:creator>%s</dc:creator>`, escape(author))
	fmt.Fprintf(&b, `<cp:lastModifiedBy>%s</cp:lastModifiedBy>`, escape(author))
	b.WriteString(`<dc:description></dc:description>`)
	fmt.Fprintf(&b, `<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, escape(created))
	fmt.Fprintf(&b, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, now.UTC().Format(time.RFC3339))
	b.WriteString(`</cp:coreProperties>`)
	return b.Bytes()
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// zipParts is a package read into memory, parts kept in archive order.
type zipParts struct {
	names []string
	data  map[string][]byte
}

func readParts(path string) (*zipParts, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	p := &zipParts{data: map[string][]byte{}}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		p.put(f.Name, data)
	}
	return p, nil
}

func (p *zipParts) put(name string, data []byte) {
	if _, ok := p.data[name]; !ok {
		p.names = append(p.names, name)
	}
	p.data[name] = data
}

// stampCore sets the author and clears the comments of the package at src
// and moves the result to dst. Title and creation date of a document being
// appended to are kept.
func stampCore(src, dst, author string, now time.Time) error {
	parts, err := readParts(src)
	if err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}

	var core coreProperties
	if data, ok := parts.data[partCore]; ok {
		// an unreadable core part is replaced as a whole
		_ = xml.Unmarshal(data, &core)
	}
	parts.put(partCore, coreXML(core.Title, author, core.Created, now))
	if err := parts.ensureCoreType(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := parts.ensureCoreRel(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return parts.save(dst)
}

func (p *zipParts) ensureCoreType() error {
	ct := string(p.data[partContentTypes])
	if strings.Contains(ct, `PartName="/`+partCore+`"`) {
		return nil
	}
	closing := strings.LastIndex(ct, "</Types>")
	if closing < 0 {
		return fmt.Errorf("malformed %s", partContentTypes)
	}
	override := `<Override PartName="/` + partCore + `" ContentType="` + ctCore + `"/>`
	p.put(partContentTypes, []byte(ct[:closing]+override+ct[closing:]))
	return nil
}

var relIDPattern = regexp.MustCompile(`^rId(\d+)$`)

func (p *zipParts) ensureCoreRel() error {
	var rels relationships
	if data, ok := p.data[partRootRels]; ok {
		if err := xml.Unmarshal(data, &rels); err != nil {
			return fmt.Errorf("parsing %s: %w", partRootRels, err)
		}
	}
	next := 1
	for _, r := range rels.Items {
		if r.Type == relCore {
			return nil
		}
		if m := relIDPattern.FindStringSubmatch(r.ID); m != nil {
			if n, _ := strconv.Atoi(m[1]); n >= next {
				next = n + 1
			}
		}
	}
	rels.Items = append(rels.Items, relationship{ID: fmt.Sprintf("rId%d", next), Type: relCore, Target: partCore})
	out, err := rels.marshal()
	if err != nil {
		return err
	}
	p.put(partRootRels, out)
	return nil
}

// save writes the package next to path and renames it into place, so an
// interrupted run never leaves a torn document behind.
func (p *zipParts) save(path string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		if _, err := w.Write(p.data[name]); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".uloha-*.docx")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
