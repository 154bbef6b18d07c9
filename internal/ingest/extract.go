package ingest

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted text. Plain-text and DOCX sources produce a
// single page numbered 1.
type Page struct {
	Number int
	Text   string
}

// ExtractPages pulls text out of a document by extension: .pdf and .docx get
// dedicated extractors, everything else is read as UTF-8 text.
func ExtractPages(path string) ([]Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		text, err := extractDOCX(path)
		if err != nil {
			return nil, err
		}
		return []Page{{Number: 1, Text: text}}, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []Page{{Number: 1, Text: string(data)}}, nil
	}
}

// ExtractText flattens a document to one newline-joined string.
func ExtractText(path string) (string, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n"), nil
}

func extractPDF(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unextractable pages keep their slot so page numbers stay true.
			text = ""
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// docx stores body text in word/document.xml; paragraphs map to w:p elements
// and runs to w:t. Joining w:t per paragraph with newlines between paragraphs
// matches what a plain-text export produces.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return docxBodyText(xml.NewDecoder(rc))
	}
	return "", fmt.Errorf("docx has no word/document.xml")
}

func docxBodyText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
