package extract

import (
	"encoding/csv"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/otiai10/gosseract/v2"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	gmtext "github.com/yuin/goldmark/text"

	"estate-insights/internal/models"
)

// cellDelimiter joins the column values of one tabular row into a segment.
const cellDelimiter = " | "

// Extract converts an upload on disk into text segments. name is the original
// upload filename and decides the extractor; path is where the bytes live.
func Extract(path, name string) ([]models.TextSegment, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var (
		segments []models.TextSegment
		err      error
	)
	switch ext {
	case ".csv":
		segments, err = extractCSV(path, name)
	case ".xlsx":
		segments, err = extractXLSX(path, name)
	case ".ods":
		segments, err = extractODS(path, name)
	case ".pdf":
		segments, err = extractPDF(path, name)
	case ".docx":
		segments, err = extractDOCX(path, name)
	case ".md":
		segments, err = extractMarkdown(path, name)
	case ".png", ".jpg", ".jpeg":
		segments, err = extractImage(path, name)
	default:
		return nil, &models.UnsupportedFormatError{Format: ext}
	}
	if err != nil {
		return nil, &models.ExtractionError{Upload: name, Format: ext, Err: err}
	}
	return segments, nil
}

// extractCSV yields one segment per row, all column values joined in order.
func extractCSV(path, name string) ([]models.TextSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var segments []models.TextSegment
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		segments = append(segments, models.TextSegment{
			Text:   strings.Join(record, cellDelimiter),
			Source: name,
		})
	}
	return segments, nil
}

func extractXLSX(path, name string) ([]models.TextSegment, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}

	var segments []models.TextSegment
	for _, sheet := range f.Sheets {
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			if len(cells) == 0 {
				continue
			}
			segments = append(segments, models.TextSegment{
				Text:   strings.Join(cells, cellDelimiter),
				Source: name,
			})
		}
	}
	return segments, nil
}

func extractODS(path, name string) ([]models.TextSegment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var segments []models.TextSegment
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			segments = append(segments, models.TextSegment{
				Text:   strings.Join(row, cellDelimiter),
				Source: name,
			})
		}
	}
	return segments, nil
}

// extractPDF yields one segment per page in page order. Image-only pages come
// back as empty segments.
func extractPDF(path, name string) ([]models.TextSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var segments []models.TextSegment
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		segments = append(segments, models.TextSegment{Text: pageText, Source: name})
	}
	return segments, nil
}

func extractDOCX(path, name string) ([]models.TextSegment, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return docxSegments(r.Editable().GetContent(), name)
}

// docxSegments walks the WordprocessingML document content, collecting the
// text runs (w:t) and yielding one segment per paragraph (w:p). Markup never
// reaches the index.
func docxSegments(content, name string) ([]models.TextSegment, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		segments  []models.TextSegment
		paragraph strings.Builder
		inRun     bool
	)
	flush := func() {
		if p := strings.TrimSpace(paragraph.String()); p != "" {
			segments = append(segments, models.TextSegment{Text: p, Source: name})
		}
		paragraph.Reset()
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inRun {
				paragraph.Write(t)
			}
		}
	}
	flush()
	return segments, nil
}

// extractMarkdown walks the parsed document and yields one segment per
// top-level block.
func extractMarkdown(path, name string) ([]models.TextSegment, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(src))

	var segments []models.TextSegment
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		blockText := strings.TrimSpace(string(n.Text(src)))
		if blockText == "" {
			continue
		}
		segments = append(segments, models.TextSegment{Text: blockText, Source: name})
	}
	return segments, nil
}

// extractImage runs OCR over the whole image. A picture with no recognizable
// text yields a single empty segment, not an error.
func extractImage(path, name string) ([]models.TextSegment, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImage(path); err != nil {
		return nil, err
	}
	text, err := client.Text()
	if err != nil {
		return nil, err
	}
	return []models.TextSegment{{Text: text, Source: name}}, nil
}
