package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxResumeBytes caps résumé uploads
const maxResumeBytes = 10 << 20

// UnsupportedFormatError is returned for résumé files that are not text, Markdown, PDF or DOCX.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported résumé format %q (expected .txt, .md, .pdf or .docx)", e.Ext)
}

// ErrEmptyResume is returned when a file yields no text
var ErrEmptyResume = errors.New("no text found in résumé")

// ReadResume reads a résumé file and returns its cleaned text.
func ReadResume(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if info.Size() > maxResumeBytes {
		return "", fmt.Errorf("résumé file is too large (%d bytes, limit %d)", info.Size(), maxResumeBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return ResumeText(filepath.Base(path), data)
}

// ResumeText extracts résumé text from data, choosing the format by the file name's extension.
func ResumeText(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".text", ".md", ".markdown", "":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s is not valid UTF-8 text", name)
		}
		text = string(data)
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", name, err)
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrEmptyResume
	}
	return text, nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer func() { _ = rc.Close() }()
		return documentXMLText(rc)
	}
	return "", errors.New("word/document.xml not found")
}

// documentXMLText keeps character data and ends a line at every paragraph or break
func documentXMLText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid document XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				sb.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}
