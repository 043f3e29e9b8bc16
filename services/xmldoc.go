package services

import (
	"archive/zip"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Element ist ein generischer XML-Knoten. Die TTAB-Dateien wechseln ihr
// Schema je nach Jahrgang, daher wird nicht gegen Structs dekodiert,
// sondern ein durchsuchbarer Baum aufgebaut.
type Element struct {
	Tag      string
	Attr     map[string]string
	Text     string
	Tail     string
	Children []*Element
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// entityReplacer fängt Entities ab, die in fehlerhaften Altdateien
// doppelt kodiert ankommen.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

// CleanText normalisiert Whitespace und dekodiert übrig gebliebene Entities.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRE.ReplaceAllString(strings.TrimSpace(text), " ")
	return entityReplacer.Replace(text)
}

// FindFirst sucht tiefensuchend (pre-order, case-insensitive) das erste
// Element mit dem gegebenen Tag-Namen. Das Element selbst zählt mit.
func (e *Element) FindFirst(tag string) *Element {
	tag = strings.ToLower(tag)
	return e.findFirst(tag)
}

func (e *Element) findFirst(tag string) *Element {
	if strings.ToLower(e.Tag) == tag {
		return e
	}
	for _, child := range e.Children {
		if found := child.findFirst(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll sucht alle Elemente mit dem gegebenen Tag-Namen (pre-order,
// case-insensitive), inklusive des Elements selbst.
func (e *Element) FindAll(tag string) []*Element {
	tag = strings.ToLower(tag)
	var result []*Element
	e.findAll(tag, &result)
	return result
}

func (e *Element) findAll(tag string, result *[]*Element) {
	if strings.ToLower(e.Tag) == tag {
		*result = append(*result, e)
	}
	for _, child := range e.Children {
		child.findAll(tag, result)
	}
}

// FindDirect sucht nur in den direkten Kindern. Nötig, wenn ein gleichnamiges
// Tag auch in einem fremden Teilbaum vorkommen kann (z.B. der name-Tag eines
// Anwalts innerhalb eines Adressblocks der Partei).
func (e *Element) FindDirect(tag string) *Element {
	tag = strings.ToLower(tag)
	for _, child := range e.Children {
		if strings.ToLower(child.Tag) == tag {
			return child
		}
	}
	return nil
}

// AttrValue liefert den Wert eines Attributs (case-insensitive) oder "".
func (e *Element) AttrValue(name string) string {
	name = strings.ToLower(name)
	for k, v := range e.Attr {
		if strings.ToLower(k) == name {
			return v
		}
	}
	return ""
}

// FlattenText sammelt rekursiv den gesamten Text des Teilbaums ein und
// normalisiert ihn.
func (e *Element) FlattenText() string {
	var parts []string
	e.collectText(&parts)
	return CleanText(strings.Join(parts, " "))
}

func (e *Element) collectText(parts *[]string) {
	if s := strings.TrimSpace(e.Text); s != "" {
		*parts = append(*parts, s)
	}
	for _, child := range e.Children {
		child.collectText(parts)
		if s := strings.TrimSpace(child.Tail); s != "" {
			*parts = append(*parts, s)
		}
	}
}

// decodeElement baut den Teilbaum ab einem StartElement aus dem Token-Strom auf.
func decodeElement(d *xml.Decoder, start xml.StartElement) (*Element, error) {
	elem := &Element{Tag: start.Name.Local}
	if len(start.Attr) > 0 {
		elem.Attr = make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			elem.Attr[a.Name.Local] = a.Value
		}
	}

	var last *Element
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(d, t)
			if err != nil {
				return nil, err
			}
			elem.Children = append(elem.Children, child)
			last = child
		case xml.CharData:
			if last == nil {
				elem.Text += string(t)
			} else {
				last.Tail += string(t)
			}
		case xml.EndElement:
			return elem, nil
		}
	}
}

// StreamDocuments konsumiert den XML-Strom inkrementell und ruft fn für jedes
// Top-Level-Dokumentelement auf, dessen Tag in docTags enthalten ist. Es wird
// immer nur ein Dokument gleichzeitig im Speicher gehalten.
func StreamDocuments(r io.Reader, docTags []string, fn func(*Element) error) error {
	tagSet := make(map[string]bool, len(docTags))
	for _, t := range docTags {
		tagSet[strings.ToLower(t)] = true
	}

	decoder := xml.NewDecoder(r)
	decoder.Strict = false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("xml token stream: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || !tagSet[strings.ToLower(start.Name.Local)] {
			continue
		}
		elem, err := decodeElement(decoder, start)
		if err != nil {
			return fmt.Errorf("xml document decode: %w", err)
		}
		if err := fn(elem); err != nil {
			return err
		}
		// elem wird nach dem Callback nicht weiter referenziert und kann
		// vom GC freigegeben werden.
	}
}

// IsXMLFile prüft, ob der Pfad eine (ggf. komprimierte) XML-Datei ist.
func IsXMLFile(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xml") {
		return true
	}
	if strings.HasSuffix(lower, ".gz") || strings.HasSuffix(lower, ".zip") {
		return strings.Contains(lower, ".xml") || strings.HasSuffix(lower, ".zip")
	}
	return false
}

type zipEntryReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipEntryReader) Close() error {
	err := z.ReadCloser.Close()
	if cerr := z.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

type gzipFileReader struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFileReader) Close() error {
	err := g.Reader.Close()
	if cerr := g.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// OpenXMLFile öffnet eine XML-Datei und behandelt gz/zip-Kompression transparent.
func OpenXMLFile(path string) (io.ReadCloser, error) {
	lower := strings.ToLower(path)

	if strings.HasSuffix(lower, ".gz") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &gzipFileReader{Reader: gz, file: f}, nil
	}

	if strings.HasSuffix(lower, ".zip") {
		archive, err := zip.OpenReader(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range archive.File {
			if strings.HasSuffix(strings.ToLower(entry.Name), ".xml") {
				rc, err := entry.Open()
				if err != nil {
					archive.Close()
					return nil, err
				}
				return &zipEntryReader{ReadCloser: rc, archive: archive}, nil
			}
		}
		archive.Close()
		return nil, fmt.Errorf("no xml entry found in archive %s", path)
	}

	return os.Open(path)
}
