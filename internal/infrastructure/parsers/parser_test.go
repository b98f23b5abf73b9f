package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawRecord
	}{
		{
			name:  "person and child",
			input: `[{"kind": "person", "subject": "p1", "value": "Ada"}, {"kind": "child", "subject": "p1", "object": "p2"}]`,
			expected: []RawRecord{
				{Kind: "person", Subject: "p1", Value: "Ada", LineNum: 1},
				{Kind: "child", Subject: "p1", Object: "p2", LineNum: 2},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []RawRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_AllFields(t *testing.T) {
	input := `[{
		"kind": "media_attribute",
		"subject": "photos/wedding.jpg",
		"object": "",
		"key": "date",
		"value": "1962-06"
	}]`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	rec := result[0]
	assert.Equal(t, "media_attribute", rec.Kind)
	assert.Equal(t, "photos/wedding.jpg", rec.Subject)
	assert.Equal(t, "date", rec.Key)
	assert.Equal(t, "1962-06", rec.Value)
	assert.Equal(t, 1, rec.LineNum)
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	parser := &JSONParser{}
	_, err := parser.Parse(strings.NewReader("not json"))
	require.Error(t, err)
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawRecord
	}{
		{
			name:  "required columns only",
			input: "kind,subject\nmedia,photos/a.jpg\n",
			expected: []RawRecord{
				{Kind: "media", Subject: "photos/a.jpg", LineNum: 2},
			},
		},
		{
			name:  "all columns in a different order",
			input: "value,kind,key,subject,object\n1901,ATTRIBUTE,date of birth,p1,\n",
			expected: []RawRecord{
				{Kind: "attribute", Subject: "p1", Key: "date of birth", Value: "1901", LineNum: 2},
			},
		},
		{
			name:  "blank rows are skipped",
			input: "kind,subject,value\nperson,p1,Ada\n,,\nperson,p2,Grace\n",
			expected: []RawRecord{
				{Kind: "person", Subject: "p1", Value: "Ada", LineNum: 2},
				{Kind: "person", Subject: "p2", Value: "Grace", LineNum: 4},
			},
		},
		{
			name:  "quoted commas",
			input: "kind,subject,key,value\nmedia_attribute,photos/b.jpg,location,\"Halifax, Nova Scotia\"\n",
			expected: []RawRecord{
				{Kind: "media_attribute", Subject: "photos/b.jpg", Key: "location", Value: "Halifax, Nova Scotia", LineNum: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCSVParser_Parse_MissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing kind", "subject,value\np1,Ada\n"},
		{"missing subject", "kind,value\nperson,Ada\n"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected Parser
	}{
		{"json", &JSONParser{}},
		{"JSON", &JSONParser{}},
		{"csv", &CSVParser{}},
		{"CSV", &CSVParser{}},
		{"xml", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForFormat(tt.format))
		})
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		expected Parser
	}{
		{"family.json", &JSONParser{}},
		{"family.JSON", &JSONParser{}},
		{"family.csv", &CSVParser{}},
		{"/path/to/family.csv", &CSVParser{}},
		{"family.ged", nil},
		{"family", nil},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForFile(tt.filename))
		})
	}
}
