package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/cv-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acme_corp"},
		{"Senior  Software\tEngineer", "senior_software_engineer"},
		{"  Leading space", "_leading_space"},
		{"AT&T", "at&t"},
		{"R/D Lab", "r_d_lab"},
		{"", ""},
		{"Ünïcode Gmbh", "ünïcode_gmbh"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestFileName(t *testing.T) {
	fields := types.FormFields{CompanyName: "Acme Corp", PositionTitle: "Senior Engineer"}
	at := time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "cover_letter_acme_corp_2025-03-09.txt", FileName(types.ModeCoverLetter, fields, at))
	assert.Equal(t, "updated_cv_senior_engineer_2025-03-09.txt", FileName(types.ModeResumeUpdate, fields, at))
}

func TestFileName_UsesLocalCalendarDate(t *testing.T) {
	fields := types.FormFields{CompanyName: "Acme"}
	// 23:30 on the 9th in UTC-5 is already the 10th in UTC
	at := time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("EST", -5*60*60))

	assert.Equal(t, "cover_letter_acme_2025-03-09.txt", FileName(types.ModeCoverLetter, fields, at))
	assert.Equal(t, "cover_letter_acme_2025-03-10.txt", FileName(types.ModeCoverLetter, fields, at.UTC()))
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	fields := types.FormFields{CompanyName: "Acme"}
	out := &types.GeneratedText{Text: "Dear Hiring Manager,\n\nhttps://jane.dev\n"}
	at := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	path, err := Save(dir, types.ModeCoverLetter, fields, out, at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cover_letter_acme_2025-03-09.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out.Text, string(data), "text is written byte for byte")
}

func TestSave_NoOutput(t *testing.T) {
	_, err := Save(t.TempDir(), types.ModeResumeUpdate, types.FormFields{}, nil, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Updated CV output")
}
