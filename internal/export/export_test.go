package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"absensi/internal/attendance"
)

var sample = []attendance.Record{
	{ID: 1, Name: "Aiko", Class: "3A", Status: "Sakit", SubmittedAt: "2026-08-30 10:00:00", Address: "10.0.0.1"},
	{ID: 2, Name: "Budi", Class: "3B", Status: "Hadir", SubmittedAt: "2026-08-30 10:00:07", Address: "10.0.0.2"},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per record")
	require.Equal(t, []string{"ID", "Name", "Class", "Status", "Timestamp", "Address"}, rows[0])
	require.Equal(t, []string{"1", "Aiko", "3A", "Sakit", "2026-08-30 10:00:00", "10.0.0.1"}, rows[1])
	require.Equal(t, "2", rows[2][0])
}

func TestWriteCSV_EmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestWriteArchive(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)
	require.NoError(t, WriteArchive(&buf, sample, generated))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	contents := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[f.Name] = string(data)
	}

	require.Contains(t, contents, CSVName)
	require.True(t, strings.HasPrefix(contents[CSVName], "ID,Name,Class,Status,Timestamp,Address"))
	require.Contains(t, contents[CSVName], "Aiko")

	require.Contains(t, contents["manifest.txt"], "rows: 2")
	require.Contains(t, contents["manifest.txt"], "2026-08-30 12:00:00")
}
