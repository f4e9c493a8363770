package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoTextContent is returned when a PDF yields no extractable text,
// typically a scanned image rather than a text-based document.
var ErrNoTextContent = errors.New("no text content found in PDF")

type PDFParserService interface {
	ExtractText(filepath string) (string, error)
	ExtractContent(filepath string) (*DocumentContent, error)
}

// DocumentContent is the extracted text plus the lightweight metadata the
// ATS format scorer consumes.
type DocumentContent struct {
	Text       string
	PageCount  int
	FileSize   int64
	ImageCount int
	FilePath   string
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	content, err := p.ExtractContent(filePath)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

func (p *pdfParserService) ExtractContent(filePath string) (*DocumentContent, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()
	imageCount := 0

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		imageCount += countImageXObjects(page)

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Log error but continue with other pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoTextContent
	}

	return &DocumentContent{
		Text:       text,
		PageCount:  totalPage,
		FileSize:   info.Size(),
		ImageCount: imageCount,
		FilePath:   filePath,
	}, nil
}

// countImageXObjects counts the image resources referenced by a page. A
// graphics-heavy CV tends to confuse real ATS parsers, so the count feeds
// the format scorer.
func countImageXObjects(page pdf.Page) int {
	xobjects := page.V.Key("Resources").Key("XObject")
	if xobjects.IsNull() {
		return 0
	}

	count := 0
	for _, key := range xobjects.Keys() {
		obj := xobjects.Key(key)
		if obj.Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}

// CleanText normalizes extracted text: trims lines and drops empty ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
