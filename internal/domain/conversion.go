package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ConversionType is the operation key sent as the conversion_type form field.
type ConversionType string

const (
	PDFToDocx  ConversionType = "pdf-to-docx"
	DocxToPDF  ConversionType = "docx-to-pdf"
	XlsxToPDF  ConversionType = "xlsx-to-pdf"
	PptxToPDF  ConversionType = "pptx-to-pdf"
	HTMLToPDF  ConversionType = "html-to-pdf"
	JPGToPNG   ConversionType = "jpg-to-png"
	PNGToJPG   ConversionType = "png-to-jpg"
	JPGToPDF   ConversionType = "jpg-to-pdf"
	PNGToPDF   ConversionType = "png-to-pdf"
	ImageToPDF ConversionType = "image-to-pdf"
	ImageToTxt ConversionType = "image-to-text"
	PDFToText  ConversionType = "pdf-to-text"
	PDFOCR     ConversionType = "pdf-ocr"
	ImageComp  ConversionType = "image-compress"
	PDFComp    ConversionType = "pdf-compress"
	PDFProtect ConversionType = "pdf-protect"
	PDFUnlock  ConversionType = "pdf-unlock"
	SplitPDF   ConversionType = "split-pdf"

	MergePDFs          ConversionType = "merge-pdfs"
	BatchCompress      ConversionType = "batch-compress"
	BatchCompressImage ConversionType = "batch-compress-images"
	BatchConvertToPDF  ConversionType = "batch-convert-to-pdf"
)

// IsBatch reports whether the conversion reads the multi-file "files" field.
func (t ConversionType) IsBatch() bool {
	return t == MergePDFs || strings.HasPrefix(string(t), "batch-")
}

// DefaultQuality is used when compression_level is omitted.
const DefaultQuality = 70

// ParseQuality parses the compression_level form field. An empty value yields
// def.
func ParseQuality(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidQuality
	}
	if err := ValidateQuality(q); err != nil {
		return 0, err
	}
	return q, nil
}

// ValidateQuality accepts 1..100 inclusive.
func ValidateQuality(q int) error {
	if q < 1 || q > 100 {
		return ErrInvalidQuality
	}
	return nil
}

// RenderScale maps a 1-100 quality to the page render scale used when
// rasterising PDFs for compression. It never drops below 0.2.
func RenderScale(quality int) float64 {
	return math.Max(0.2, float64(quality)/100)
}

// PageRange is a 1-based inclusive page span.
type PageRange struct {
	Start int
	End   int
}

func (r PageRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParsePageRanges parses strings like "1-3,5" into page ranges.
func ParsePageRanges(s string) ([]PageRange, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrMissingSplitRanges
	}

	var ranges []PageRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty range in %q", ErrInvalidSplitRanges, s)
		}

		startStr, endStr, isSpan := strings.Cut(part, "-")
		if !isSpan {
			endStr = startStr
		}
		start, err := parsePage(startStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSplitRanges, part)
		}
		end, err := parsePage(endStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSplitRanges, part)
		}
		if start > end {
			return nil, fmt.Errorf("%w: %q starts after it ends", ErrInvalidSplitRanges, part)
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
	}
	return ranges, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("page %d out of range", n)
	}
	return n, nil
}
