package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// journalDateRe matches the six-digit date code in journal file names
// (e.g. hj260114.pdf): two year digits, then month, then day. The year
// digits are ignored in favor of the configured session year.
var journalDateRe = regexp.MustCompile(`\d{2}(\d{2})(\d{2})`)

// ActMetadata derives chunk metadata for an act PDF. Acts are laid out one
// directory per bill (H.123/, S.45/), so the chamber and bill number come
// from the parent directory name.
func ActMetadata(path string, sessionYear int) map[string]any {
	billName := filepath.Base(filepath.Dir(path))

	chamber := "joint"
	switch {
	case strings.HasPrefix(billName, "H"):
		chamber = "house"
	case strings.HasPrefix(billName, "S"):
		chamber = "senate"
	}

	fileName := filepath.Base(path)
	lower := strings.ToLower(fileName)

	return map[string]any{
		"file_name":   fileName,
		"source_url":  fmt.Sprintf("https://legislature.vermont.gov/bill/status/%d/%s", sessionYear, billName),
		"chamber":     chamber,
		"bill_number": billName,
		"act_summary": strings.Contains(lower, "summary"),
		"as_enacted":  strings.Contains(lower, "enacted"),
	}
}

// JournalMetadata derives chunk metadata for a journal PDF and the sitting
// date parsed from its file name. Journal files are prefixed s/h/j for
// senate, house, and joint assembly.
func JournalMetadata(path string, sessionYear int) (map[string]any, *time.Time) {
	fileName := filepath.Base(path)
	lower := strings.ToLower(fileName)

	chamber := "house"
	sourceURL := fmt.Sprintf("https://legislature.vermont.gov/house/service/%d/journal", sessionYear)
	switch {
	case strings.HasPrefix(lower, "s"):
		chamber = "senate"
		sourceURL = fmt.Sprintf("https://legislature.vermont.gov/senate/service/%d/journal", sessionYear)
	case strings.HasPrefix(lower, "j"):
		chamber = "joint"
		sourceURL = fmt.Sprintf("https://legislature.vermont.gov/house/service/%d/joint-assembly", sessionYear)
	}

	var journalDate *time.Time
	if m := journalDateRe.FindStringSubmatch(fileName); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if d, err := civilDate(sessionYear, month, day); err == nil {
			journalDate = &d
		}
	}

	meta := map[string]any{
		"file_name":  fileName,
		"source_url": sourceURL,
		"chamber":    chamber,
	}
	if journalDate != nil {
		meta["journal_date"] = journalDate.Format("2006-01-02")
	}
	return meta, journalDate
}

// civilDate builds a UTC midnight date, rejecting impossible month/day
// combinations that time.Date would silently normalize.
func civilDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %d-%d-%d", year, month, day)
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %d-%d-%d", year, month, day)
	}
	return d, nil
}
