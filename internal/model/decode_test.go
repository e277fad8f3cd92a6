package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshot_WellFormed(t *testing.T) {
	raw := `{
		"name": "Jane Doe",
		"title": "Staff Engineer",
		"experience": [
			{"title": "Engineer", "company": "Acme", "startDate": "Jan 2020"},
			{"title": "Intern", "company": "Initech", "startDate": "Jun 2018", "endDate": "Dec 2019"}
		],
		"skills": [{"name": "Go", "level": "Expert"}, "SQL"],
		"languages": [{"name": "English", "level": "Native"}],
		"selectedTemplate": "hybrid"
	}`
	r, warnings, err := DecodeSnapshot([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "Jane Doe", r.Name)
	require.Len(t, r.Experience, 2)
	assert.Equal(t, "Engineer", r.Experience[0].Title)
	assert.Equal(t, "Initech", r.Experience[1].Company)
	assert.Equal(t, []Skill{{Name: "Go", Level: "Expert"}, {Name: "SQL"}}, r.Skills)
	assert.Equal(t, "hybrid", r.SelectedTemplate)
}

func TestDecodeSnapshot_NotAnObject(t *testing.T) {
	for _, raw := range []string{"", "[]", `"name"`, "{broken"} {
		_, _, err := DecodeSnapshot([]byte(raw))
		assert.ErrorIs(t, err, ErrNotObject, raw)
	}
}

func TestDecodeSnapshot_MalformedSectionDegradesToEmpty(t *testing.T) {
	raw := `{"name": "Jane", "experience": "ten years", "education": [42, {"degree": "BSc"}]}`
	r, warnings, err := DecodeSnapshot([]byte(raw))
	require.NoError(t, err)

	assert.Empty(t, r.Experience)
	require.Len(t, r.Education, 1)
	assert.Equal(t, "BSc", r.Education[0].Degree)

	joined := strings.Join(warnings, "\n")
	assert.Contains(t, joined, "experience: expected an array")
	assert.Contains(t, joined, "education[0]: expected an object")
	assert.Contains(t, joined, "schema:")
}

func TestDecodeSnapshot_ScalarCoercion(t *testing.T) {
	r, warnings, err := DecodeSnapshot([]byte(`{"name": "Jane", "phone": 5551234, "summary": {"x": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, "5551234", r.Phone)
	assert.Equal(t, "", r.Summary)
	assert.NotEmpty(t, warnings)
}

func TestDecodeSnapshot_OngoingWinsOverEndDate(t *testing.T) {
	raw := `{"experience": [{"title": "Lead", "startDate": "2021", "endDate": "2023", "current": true}]}`
	r, warnings, err := DecodeSnapshot([]byte(raw))
	require.NoError(t, err)
	require.Len(t, r.Experience, 1)
	assert.True(t, r.Experience[0].Current)
	assert.Equal(t, "", r.Experience[0].EndDate)
	assert.Contains(t, strings.Join(warnings, "\n"), "ongoing entry has an end date")
}

func TestResume_CloneDoesNotAlias(t *testing.T) {
	r := Resume{Skills: []Skill{{Name: "Go"}}}
	c := r.Clone()
	c.Skills[0].Name = "Rust"
	assert.Equal(t, "Go", r.Skills[0].Name)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Experience{Title: "  "}.IsEmpty())
	assert.False(t, Experience{Current: true}.IsEmpty())
	assert.True(t, Certification{}.IsEmpty())
	assert.False(t, Skill{Level: "Expert"}.IsEmpty())
}

func TestIssues(t *testing.T) {
	r := Resume{Experience: []Experience{{Title: "x", Current: true, EndDate: "2020"}, {}}}
	issues := r.Issues()
	assert.Contains(t, issues, "experience[0]: ongoing entry has an end date")
	assert.Contains(t, issues, "experience[1]: empty entry")
	assert.Contains(t, issues, "name: missing")
}
