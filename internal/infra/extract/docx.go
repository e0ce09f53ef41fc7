package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDocx joins the paragraphs of word/document.xml with newlines, in
// document order. Empty paragraphs are kept as empty lines.
func extractDocx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", extractionError("open docx", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", extractionError("docx", errors.New("word/document.xml not found in archive"))
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", extractionError("open document.xml", err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", extractionError("parse document.xml", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs walks w:p elements. Paragraphs nested in text boxes are
// emitted as their own entries, closed before the enclosing one.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var (
		out    []string
		open   []*strings.Builder
		inRun  bool
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				// w:tab outside a run is a tab stop definition in pPr
				if inRun && len(open) > 0 {
					open[len(open)-1].WriteByte('\t')
				}
			case "br", "cr":
				if inRun && len(open) > 0 {
					open[len(open)-1].WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText && len(open) > 0 {
				open[len(open)-1].Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				if len(open) == 0 {
					continue
				}
				out = append(out, open[len(open)-1].String())
				open = open[:len(open)-1]
			}
		}
	}
	return out, nil
}
