// Package export renders already filtered CV records for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"cvportal/internal/models"
)

var cvColumns = []string{
	"id", "name", "surname", "email", "phone", "position",
	"department", "experience", "status", "submittedAt",
}

// WriteCVRecords writes a header row plus one row per record, in order.
func WriteCVRecords(w io.Writer, records []models.CVRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cvColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Name,
			r.Surname,
			r.Email,
			r.Phone,
			r.Position,
			r.Department,
			strconv.Itoa(r.Experience),
			string(r.Status),
			r.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the attachment name for an export taken at t.
func Filename(t time.Time) string {
	return "cv-records-" + t.UTC().Format("20060102-150405") + ".csv"
}
