package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
)

// Render writes the header line and one line per row:
// "<filename> <total> <short> <long>".
func Render(w io.Writer, rows []FileStats) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s %d %d %d\n", r.Filename, r.TotalAccepted, r.ShortOutliers, r.LongOutliers); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile renders the rows into path, replacing any existing file.
//
// The report is rendered in memory, written to a temporary file in the same
// directory and renamed over path, so readers never observe a half-written
// report.
func WriteFile(path string, rows []FileStats) error {
	var buf bytes.Buffer
	if err := Render(&buf, rows); err != nil {
		return apperrors.NewReportWriteError(path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.NewReportWriteError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewReportWriteError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewReportWriteError(path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return apperrors.NewReportWriteError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewReportWriteError(path, err)
	}
	return nil
}
