package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// MaxUploadBytes is the largest spreadsheet accepted for bulk processing (16 MiB).
const MaxUploadBytes int64 = 16 * 1024 * 1024

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UploadFile is a spreadsheet selected on the bulk page.
type UploadFile struct {
	Name string
	Size int64
	Data []byte
}

// CheckSelection applies the client-side constraints: extension in
// {.xlsx, .xls} and size at most MaxUploadBytes.
func CheckSelection(name string, size int64) error {
	if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
		return ErrInvalidFileType
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	return nil
}

// ReadUpload checks name and size, then reads at most MaxUploadBytes from r.
func ReadUpload(name string, size int64, r io.Reader) (UploadFile, error) {
	if err := CheckSelection(name, size); err != nil {
		return UploadFile{}, err
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return UploadFile{}, fmt.Errorf("read upload: %w", err)
	}
	// The declared size can lie; the bytes cannot.
	if err := CheckSelection(name, int64(len(data))); err != nil {
		return UploadFile{}, err
	}
	return UploadFile{Name: name, Size: int64(len(data)), Data: data}, nil
}

// WorkbookPreview is a best-effort peek at a selected workbook. It is shown
// next to the file name and never blocks selection.
type WorkbookPreview struct {
	ContentType string
	Readable    bool
	Sheet       string
	Headers     []string
	DataRows    int
}

// PreviewWorkbook sniffs the content type and, for .xlsx content, reads the
// first sheet's header row and counts non-empty data rows.
func PreviewWorkbook(file UploadFile) WorkbookPreview {
	mtype := mimetype.Detect(file.Data)
	preview := WorkbookPreview{ContentType: mtype.String()}
	// Sniffing only sees the head of the archive, so a generic zip may still
	// be an xlsx.
	if !mtype.Is(xlsxMIME) && !mtype.Is("application/zip") {
		return preview
	}

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		return preview
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return preview
	}

	preview.Readable = true
	preview.Sheet = sheetName
	if len(rows) == 0 {
		return preview
	}
	for _, h := range rows[0] {
		preview.Headers = append(preview.Headers, strings.TrimSpace(h))
	}
	for _, row := range rows[1:] {
		if !blankRow(row) {
			preview.DataRows++
		}
	}
	return preview
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
