package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intptr(v int) *int       { return &v }
func int64ptr(v int64) *int64 { return &v }

func testRegistrations() []Registration {
	return []Registration{
		{ID: 1, RunID: 10, Bib: 101, FirstName: "Anna", LastName: "Larsen", CategoryID: int64ptr(1)},
		{ID: 2, RunID: 10, Bib: 102, FirstName: "Ben", LastName: "Okafor", CategoryID: int64ptr(1)},
		{ID: 3, RunID: 10, Bib: 103, FirstName: "Carla", LastName: "Ruiz", CategoryID: int64ptr(2)},
		{ID: 4, RunID: 10, Bib: 0, FirstName: "Dee", LastName: "Nygaard", CategoryID: nil},
	}
}

func TestParseCSV_HeaderAliases(t *testing.T) {
	content := []byte("Bib Number,Runner,Chip Time,Status\n101,Anna Larsen,01:30:00,\n")

	rows, err := ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, 101, rows[0].Bib)
	assert.Equal(t, "Anna Larsen", rows[0].Name)
	assert.Equal(t, "01:30:00", rows[0].TimeRaw)
}

func TestParseCSV_SkipsEmptyLines(t *testing.T) {
	content := []byte("bib,time\n101,20:00\n,\n\"\",\"\"\n102,21:00\n")

	rows, err := ParseCSV(content)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseCSV_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"no recognized columns", "foo,bar\n1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestParseCSV_InvalidUTF8DoesNotAbort(t *testing.T) {
	content := append([]byte("bib,name\n101,An"), 0xff, 'a', '\n')

	rows, err := ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 101, rows[0].Bib)
}

func TestValidate_BibTakesPrecedenceOverName(t *testing.T) {
	// Bib of one participant, name of another: the bib wins.
	rows := []Row{{Line: 1, Bib: 101, Name: "Ben Okafor", TimeRaw: "20:00"}}

	report := Validate(rows, testRegistrations())
	require.Len(t, report.Valid, 1)
	assert.Equal(t, int64(1), report.Valid[0].RegistrationID)
}

func TestValidate_NameFallback(t *testing.T) {
	rows := []Row{{Line: 1, Name: "dee NYGAARD", TimeRaw: "25:00"}}

	report := Validate(rows, testRegistrations())
	require.Len(t, report.Valid, 1)
	assert.Equal(t, int64(4), report.Valid[0].RegistrationID)
}

func TestValidate_UnknownBibFallsBackToName(t *testing.T) {
	// An unknown bib with a known name still matches by name, since bib
	// lookup found nothing rather than conflicting.
	rows := []Row{{Line: 1, Bib: 999, Name: "Anna Larsen", TimeRaw: "20:00"}}

	report := Validate(rows, testRegistrations())
	require.Len(t, report.Valid, 1)
	assert.Equal(t, int64(1), report.Valid[0].RegistrationID)
}

func TestValidate_NoMatchIsError(t *testing.T) {
	rows := []Row{{Line: 1, Bib: 999, Name: "Nobody Known", TimeRaw: "20:00"}}

	report := Validate(rows, testRegistrations())
	assert.Empty(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, ReasonNoMatch, report.Errors[0].Reason)
}

func TestValidate_DuplicateBibFirstOccurrenceWins(t *testing.T) {
	rows := []Row{
		{Line: 1, Bib: 101, TimeRaw: "20:00"},
		{Line: 2, Bib: 101, TimeRaw: "21:00"},
	}

	report := Validate(rows, testRegistrations())
	require.Len(t, report.Valid, 1)
	assert.Equal(t, 1, report.Valid[0].Row.Line)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, ReasonDuplicateBib, report.Errors[0].Reason)
	assert.Equal(t, 2, report.Errors[0].Row.Line)
}

func TestValidate_DuplicateViaMixedMatching(t *testing.T) {
	// Same registration reached once by bib and once by name.
	rows := []Row{
		{Line: 1, Bib: 101, TimeRaw: "20:00"},
		{Line: 2, Name: "Anna Larsen", TimeRaw: "21:00"},
	}

	report := Validate(rows, testRegistrations())
	require.Len(t, report.Valid, 1)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, ReasonDuplicateName, report.Errors[0].Reason)
}

func TestValidate_MissingIdentityIsError(t *testing.T) {
	rows := []Row{{Line: 1, TimeRaw: "20:00"}}

	report := Validate(rows, testRegistrations())
	require.Len(t, report.Errors, 1)
	assert.Equal(t, ReasonMissingField, report.Errors[0].Reason)
}

func TestBuildValidRow_StatusDerivation(t *testing.T) {
	reg := Registration{ID: 1}

	tests := []struct {
		name        string
		row         Row
		wantStatus  Status
		wantSeconds *int
	}{
		{"parsable time means finished", Row{TimeRaw: "01:30:00"}, StatusFinished, intptr(5400)},
		{"minutes seconds form", Row{TimeRaw: "18:30"}, StatusFinished, intptr(1110)},
		{"unparsable time means dnf", Row{TimeRaw: "abandoned"}, StatusDNF, nil},
		{"empty time means dnf", Row{}, StatusDNF, nil},
		{"explicit status wins over time", Row{TimeRaw: "01:30:00", Status: "DSQ"}, StatusDSQ, nil},
		{"explicit dns", Row{Status: "did not start"}, StatusDNS, nil},
		{"finished status keeps time", Row{TimeRaw: "20:00", Status: "OK"}, StatusFinished, intptr(1200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := buildValidRow(tt.row, reg)
			assert.Equal(t, tt.wantStatus, v.Status)
			if tt.wantSeconds == nil {
				assert.Nil(t, v.FinishSeconds)
			} else {
				require.NotNil(t, v.FinishSeconds)
				assert.Equal(t, *tt.wantSeconds, *v.FinishSeconds)
			}
		})
	}
}

func TestReport_ValidAndErrorsDisjoint(t *testing.T) {
	rows := []Row{
		{Line: 1, Bib: 101, TimeRaw: "20:00"},
		{Line: 2, Bib: 999},
		{Line: 3, Name: "Carla Ruiz", TimeRaw: "22:00"},
	}

	report := Validate(rows, testRegistrations())
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, len(rows), len(report.Valid)+len(report.Errors))
}
