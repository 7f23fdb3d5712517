package ingest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActMetadata(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantChamber string
		wantBill    string
		wantSummary bool
		wantEnacted bool
	}{
		{
			name:        "house bill summary",
			path:        filepath.Join("corpus", "acts", "H.123", "ACT-042-summary.pdf"),
			wantChamber: "house",
			wantBill:    "H.123",
			wantSummary: true,
		},
		{
			name:        "senate bill as enacted",
			path:        filepath.Join("corpus", "acts", "S.45", "ACT-007-as-enacted.pdf"),
			wantChamber: "senate",
			wantBill:    "S.45",
			wantEnacted: true,
		},
		{
			name:        "joint resolution",
			path:        filepath.Join("corpus", "acts", "J.R.H.12", "text.pdf"),
			wantChamber: "joint",
			wantBill:    "J.R.H.12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ActMetadata(tt.path, 2026)

			assert.Equal(t, tt.wantChamber, meta["chamber"])
			assert.Equal(t, tt.wantBill, meta["bill_number"])
			assert.Equal(t, tt.wantSummary, meta["act_summary"])
			assert.Equal(t, tt.wantEnacted, meta["as_enacted"])
			assert.Equal(t, filepath.Base(tt.path), meta["file_name"])
			assert.Equal(t,
				"https://legislature.vermont.gov/bill/status/2026/"+tt.wantBill,
				meta["source_url"])
		})
	}
}

func TestJournalMetadata(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		wantChamber string
		wantURL     string
		wantDate    string
	}{
		{
			name:        "senate journal with date",
			file:        "sj260114.pdf",
			wantChamber: "senate",
			wantURL:     "https://legislature.vermont.gov/senate/service/2026/journal",
			wantDate:    "2026-01-14",
		},
		{
			name:        "house journal with date",
			file:        "hj260203.pdf",
			wantChamber: "house",
			wantURL:     "https://legislature.vermont.gov/house/service/2026/journal",
			wantDate:    "2026-02-03",
		},
		{
			name:        "joint assembly",
			file:        "ja260108.pdf",
			wantChamber: "joint",
			wantURL:     "https://legislature.vermont.gov/house/service/2026/joint-assembly",
			wantDate:    "2026-01-08",
		},
		{
			name:        "no date code",
			file:        "house-journal-index.pdf",
			wantChamber: "house",
			wantURL:     "https://legislature.vermont.gov/house/service/2026/journal",
		},
		{
			name:        "impossible date is dropped",
			file:        "hj261345.pdf",
			wantChamber: "house",
			wantURL:     "https://legislature.vermont.gov/house/service/2026/journal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, date := JournalMetadata(filepath.Join("corpus", "journals", tt.file), 2026)

			assert.Equal(t, tt.wantChamber, meta["chamber"])
			assert.Equal(t, tt.wantURL, meta["source_url"])
			assert.Equal(t, tt.file, meta["file_name"])

			if tt.wantDate == "" {
				assert.Nil(t, date)
				assert.NotContains(t, meta, "journal_date")
				return
			}
			require.NotNil(t, date)
			assert.Equal(t, tt.wantDate, date.Format("2006-01-02"))
			assert.Equal(t, tt.wantDate, meta["journal_date"])
		})
	}
}

func TestCivilDate(t *testing.T) {
	d, err := civilDate(2026, 2, 28)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = civilDate(2026, 2, 30)
	assert.Error(t, err)

	_, err = civilDate(2026, 13, 1)
	assert.Error(t, err)
}
