// Package export renders the attendance table as CSV or a ZIP archive.
package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"absensi/internal/attendance"
)

// CSVName is the file name used for downloads and inside archives.
const CSVName = "absensi.csv"

var header = []string{"ID", "Name", "Class", "Status", "Timestamp", "Address"}

// WriteCSV writes the header row plus one row per record.
func WriteCSV(w io.Writer, records []attendance.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.Name,
			rec.Class,
			rec.Status,
			rec.SubmittedAt,
			rec.Address,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteArchive writes a ZIP containing the CSV and a small manifest.
func WriteArchive(w io.Writer, records []attendance.Record, generatedAt time.Time) error {
	zw := zip.NewWriter(w)

	f, err := zw.Create(CSVName)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, records); err != nil {
		return err
	}

	m, err := zw.Create("manifest.txt")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(m, "generated_at: %s\nrows: %d\n",
		generatedAt.Format(attendance.TimeLayout), len(records)); err != nil {
		return err
	}

	return zw.Close()
}
