package parsers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"
)

const sampleRoster = `
StudentID,first_name,last_name,LAB WORK 1,LAB WORK 2,LAB WORK 3,PRELIM EXAM,ATTENDANCE GRADE
073900438,Osbourne,Wakenshaw,69,5,52,12,78
114924014,Albie,Gierardi,58,92,16,57,97

111901632,Eleen,Pentony,43,81,34,36,16
`

func collect[T any](records <-chan T, errors <-chan error) ([]T, []error) {
	var all []T
	var errs []error
	for records != nil || errors != nil {
		select {
		case r, ok := <-records:
			if !ok {
				records = nil
				continue
			}
			all = append(all, r)
		case err, ok := <-errors:
			if !ok {
				errors = nil
				continue
			}
			errs = append(errs, err)
		}
	}
	return all, errs
}

func TestParseRoster_HeaderWithNames(t *testing.T) {
	records := ParseRoster(sampleRoster)

	require.Len(t, records, 3, "one record per non-empty data line")
	assert.Equal(t, Record{ID: "073900438", Name: "Osbourne Wakenshaw", Grade: "43"}, records[0])
	assert.Equal(t, "Albie Gierardi", records[1].Name)
	assert.Equal(t, "64", records[1].Grade)
	assert.Equal(t, "Eleen Pentony", records[2].Name)
}

func TestParseRoster_SingleRow(t *testing.T) {
	raw := "StudentID,first_name,last_name,LAB WORK 1,LAB WORK 2,LAB WORK 3,PRELIM EXAM,ATTENDANCE GRADE\n" +
		"073900438,Osbourne,Wakenshaw,69,5,52,12,78"

	records := ParseRoster(raw)

	assert.Equal(t, []Record{{ID: "073900438", Name: "Osbourne Wakenshaw", Grade: "43"}}, records)
}

func TestParseRoster_Empty(t *testing.T) {
	assert.Empty(t, ParseRoster(""))
	assert.Empty(t, ParseRoster("\n  \r\n\t"))
	assert.Empty(t, ParseRoster("StudentID,first_name,last_name"), "header only")
}

func TestParseRoster_CRLF(t *testing.T) {
	records := ParseRoster("id,name,grade\r\n1,Ann,90\r\n2,Bo,80\r\n")

	assert.Equal(t, []Record{
		{ID: "1", Name: "Ann", Grade: "90"},
		{ID: "2", Name: "Bo", Grade: "80"},
	}, records)
}

func TestParseRoster_MalformedRowsDegrade(t *testing.T) {
	raw := `id,name,grade
,,,
lonely
3,"quoted, name",x`

	records := ParseRoster(raw)

	require.Len(t, records, 3)
	assert.Equal(t, Record{}, records[0])
	assert.Equal(t, Record{ID: "lonely"}, records[1])
	// no quote handling: the comma splits the field
	assert.Equal(t, Record{ID: "3", Name: `"quoted`, Grade: ""}, records[2])
}

func TestStreamRoster_MatchesParseRoster(t *testing.T) {
	defer goleak.VerifyNone(t)

	records, errors := StreamRoster(strings.NewReader(sampleRoster))
	all, errs := collect(records, errors)

	assert.Empty(t, errs)
	assert.Equal(t, ParseRoster(sampleRoster), all)
}

func TestStreamRoster_EmptyReader(t *testing.T) {
	defer goleak.VerifyNone(t)

	records, errors := StreamRoster(strings.NewReader(""))
	all, errs := collect(records, errors)

	assert.Len(t, all, 0)
	assert.Len(t, errs, 0, "empty file should not error")
}

func TestStreamRoster_LineTooLong(t *testing.T) {
	defer goleak.VerifyNone(t)

	raw := "id,name,grade\n" + strings.Repeat("x", maxLineSize+1) + "\n"
	records, errors := StreamRoster(strings.NewReader(raw))
	_, errs := collect(records, errors)

	assert.Len(t, errs, 1)
}

func TestParseNDJSON_ValidData(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := `{"id":"073900438","name":"Osbourne Wakenshaw","grade":43}
{"id":17,"name":" Ann ","grade":"88"}
{"id":"x","name":null}`

	records, errors := ParseNDJSON(strings.NewReader(data))
	all, errs := collect(records, errors)

	assert.Len(t, errs, 0)
	require.Len(t, all, 3)
	assert.Equal(t, Record{ID: "073900438", Name: "Osbourne Wakenshaw", Grade: "43"}, all[0])
	assert.Equal(t, Record{ID: "17", Name: "Ann", Grade: "88"}, all[1])
	assert.Equal(t, Record{ID: "x"}, all[2])
}

func TestParseNDJSON_InvalidLines(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := `{"id":"1","name":"Valid"}
{invalid json}

{"id":true}
{"id":"2","name":"Valid Again"}`

	records, errors := ParseNDJSON(strings.NewReader(data))
	all, errs := collect(records, errors)

	assert.Len(t, all, 2, "should keep valid records")
	require.Len(t, errs, 2, "one error per bad line")
	assert.Contains(t, errs[0].Error(), "line 2")
	assert.Contains(t, errs[1].Error(), "line 4")
}

func TestParseNDJSON_ReportsEveryBadLine(t *testing.T) {
	defer goleak.VerifyNone(t)

	bad := errorBuffer*4 + 3
	data := strings.Repeat("not json\n", bad) + `{"id":"1","name":"Last"}`

	records, errors := ParseNDJSON(strings.NewReader(data))
	time.Sleep(50 * time.Millisecond)
	all, errs := collect(records, errors)

	require.Len(t, all, 1)
	require.Len(t, errs, bad, "no error dropped once the buffer is full")
	assert.Contains(t, errs[bad-1].Error(), fmt.Sprintf("line %d", bad))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"StudentID", "first_name", "last_name", "LAB WORK 1", "LAB WORK 2"},
		{"073900438", "Osbourne", "Wakenshaw", 69, 5},
		{},
		{"114924014", " Albie ", "Gierardi", 58, 92},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ParseXLSX(buf)
	require.NoError(t, err)

	assert.Equal(t, []Record{
		{ID: "073900438", Name: "Osbourne Wakenshaw", Grade: "37"},
		{ID: "114924014", Name: "Albie Gierardi", Grade: "75"},
	}, records)
}

func TestParseXLSX_TrailingEmptyCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"id", "name", "grade"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"1", "Bob", ""}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ParseXLSX(buf)
	require.NoError(t, err)

	assert.Equal(t, ParseRoster("id,name,grade\n1,Bob,"), records,
		"a row with an empty last cell resolves as it does in CSV")
}

func TestParseRoster_ByteOrderMark(t *testing.T) {
	raw := "\uFEFFfirst_name,last_name,StudentID,score\nAnn,Lee,42,80"

	records := ParseRoster(raw)
	require.Len(t, records, 1)
	assert.Equal(t, Record{ID: "42", Name: "Ann Lee", Grade: "61"}, records[0])

	recs, errs := StreamRoster(strings.NewReader(raw))
	all, streamErrs := collect(recs, errs)
	assert.Empty(t, streamErrs)
	assert.Equal(t, records, all)
}

func TestParseNDJSON_ByteOrderMark(t *testing.T) {
	defer goleak.VerifyNone(t)

	records, errors := ParseNDJSON(strings.NewReader("\uFEFF{\"id\":\"1\",\"name\":\"Ann\"}"))
	all, errs := collect(records, errors)

	assert.Empty(t, errs)
	assert.Equal(t, []Record{{ID: "1", Name: "Ann"}}, all)
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("id,name\n1,Ann"))
	assert.Error(t, err)
}
