package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-reader/internal/types"
)

func TestFourLineSegmenter(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		expected []Group
	}{
		{
			name:     "single group",
			section:  "a\nb\nc\nd",
			expected: []Group{{"a", "b", "c", "d"}},
		},
		{
			name:    "extra lines join the fourth field",
			section: "a\nb\nc\nd\ne\n\nh\ni\nj\nk",
			expected: []Group{
				{"a", "b", "c", "d\ne"},
				{"h", "i", "j", "k"},
			},
		},
		{
			name:     "short runs dropped",
			section:  "a\nb\n\nc\nd\ne\nf\n\ng",
			expected: []Group{{"c", "d", "e", "f"}},
		},
		{
			name:     "whitespace only lines separate runs",
			section:  "  a  \nb\nc\n \t \nd\ne\nf\ng\n",
			expected: []Group{{"d", "e", "f", "g"}},
		},
		{
			name:     "empty section",
			section:  "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FourLineSegmenter{}.Segment(tt.section))
		})
	}
}

func TestSectionLocator(t *testing.T) {
	loc := newSectionLocator([]string{"Work Experience"}, []string{"Education", "Skills"})

	t.Run("stops at terminator line", func(t *testing.T) {
		section, ok := loc.Locate("Intro\nWORK EXPERIENCE:\nAcme\n\n  education\nMIT")
		require.True(t, ok)
		assert.Equal(t, "Acme", section)
	})

	t.Run("runs to end of text", func(t *testing.T) {
		section, ok := loc.Locate("Work Experience\nAcme\nEngineer")
		require.True(t, ok)
		assert.Equal(t, "Acme\nEngineer", section)
	})

	t.Run("missing heading", func(t *testing.T) {
		_, ok := loc.Locate("Employment\nAcme")
		assert.False(t, ok)
	})
}

func TestExtractExperiences(t *testing.T) {
	t.Run("one group under heading", func(t *testing.T) {
		text := "Jane Doe\n\nWork Experience\nAcme Corp\nEngineer\n2019 - 2021\nBuilt billing\n\nEducation\nMIT\nBSc\nPhysics\n2015"

		entries := ExtractExperiences(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		assert.Equal(t, types.ExperienceEntry{
			Company:     "Acme Corp",
			Position:    "Engineer",
			Duration:    "2019 - 2021",
			Description: "Built billing",
		}, entries[0])
	})

	t.Run("several groups in order", func(t *testing.T) {
		text := "Professional Experience:\nA\nB\nC\nD\n\nE\nF\nG\nH\nI\n\nleftover\n\nSkills: Go"

		entries := ExtractExperiences(text, FourLineSegmenter{})
		require.Len(t, entries, 2)
		assert.Equal(t, "A", entries[0].Company)
		assert.Equal(t, "E", entries[1].Company)
		assert.Equal(t, "H\nI", entries[1].Description)
	})

	t.Run("whole document without heading", func(t *testing.T) {
		text := "Globex\nManager\n2010-2012\nRan things\n"

		entries := ExtractExperiences(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		assert.Equal(t, "Globex", entries[0].Company)
		assert.Equal(t, "Ran things", entries[0].Description)
	})

	t.Run("nothing to group", func(t *testing.T) {
		entries := ExtractExperiences("Work Experience\nAcme", FourLineSegmenter{})
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
}

func TestExtractEducations(t *testing.T) {
	t.Run("degree and year from later lines", func(t *testing.T) {
		text := "Education:\nMIT\nB.Tech in Computer Science\nComputer Science\n2015\n\n"

		entries := ExtractEducations(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		entry := entries[0]
		assert.Equal(t, "MIT", entry.Institution)
		assert.Equal(t, "Computer Science", entry.FieldOfStudy)
		require.NotNil(t, entry.Degree)
		assert.Contains(t, *entry.Degree, "B.Tech")
		require.NotNil(t, entry.Year)
		assert.Equal(t, "2015", *entry.Year)
	})

	t.Run("degree and year from institution line", func(t *testing.T) {
		text := "Academic Background\nStanford University, Bachelor of Science 2012\nHonours\nPhysics\nDean's list\n"

		entries := ExtractEducations(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].Degree)
		assert.Equal(t, "Bachelor in Science 2012", *entries[0].Degree)
		require.NotNil(t, entries[0].Year)
		assert.Equal(t, "2012", *entries[0].Year)
		assert.Equal(t, "Physics", entries[0].FieldOfStudy)
	})

	t.Run("unrecognised degree and year are nil", func(t *testing.T) {
		text := "Education\nSome School\nSome Place\nArt\nNothing here\n"

		entries := ExtractEducations(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		assert.Nil(t, entries[0].Degree)
		assert.Nil(t, entries[0].Year)
	})

	t.Run("stops at experience line", func(t *testing.T) {
		text := "Education\nMIT\nMBA\nFinance\n2010\nExperience\nAcme\nEngineer\n2011\nStuff"

		entries := ExtractEducations(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		assert.Equal(t, "Finance", entries[0].FieldOfStudy)
		require.NotNil(t, entries[0].Year)
		assert.Equal(t, "2010", *entries[0].Year)
	})

	t.Run("dotted institution is not a degree", func(t *testing.T) {
		text := "Education\nM.I.T.\nCambridge\nPhysics\n2011\n"

		entries := ExtractEducations(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		assert.Equal(t, "M.I.T.", entries[0].Institution)
		assert.Nil(t, entries[0].Degree)
		require.NotNil(t, entries[0].Year)
		assert.Equal(t, "2011", *entries[0].Year)
	})

	t.Run("positional fallback without heading", func(t *testing.T) {
		text := "Harvard\nMBA\nFinance\n2010\n"

		entries := ExtractEducations(text, FourLineSegmenter{})
		require.Len(t, entries, 1)
		assert.Equal(t, "Harvard", entries[0].Institution)
		require.NotNil(t, entries[0].Degree)
		assert.Equal(t, "MBA", *entries[0].Degree)
		assert.Equal(t, "Finance", entries[0].FieldOfStudy)
		require.NotNil(t, entries[0].Year)
		assert.Equal(t, "2010", *entries[0].Year)
	})
}

func TestNormalizeDegreeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Master  of\tArts", "Master in Arts"},
		{"B.Sc in Physics", "B.Sc in Physics"},
		{"Doctor of Philosophy of Science", "Doctor in Philosophy in Science"},
		{"office", "office"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDegreeText(tt.input))
		})
	}
}

func TestDegreePattern(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"B.Tech in Computer Science", "B.Tech in Computer Science"},
		{"M.Sc Physics", "M.Sc Physics"},
		{"PhD in Chemistry", "PhD in Chemistry"},
		{"Diploma", "Diploma"},
		{"MIT", ""},
		{"Mastercard Inc", ""},
		{"Associated Press", ""},
		{"M.I.T.", ""},
		{"B.A. Economics", "B.A. Economics"},
		{"Bsc Mathematics", "Bsc Mathematics"},
		{"BSC", "BSC"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, degreePattern.FindString(NormalizeDegreeText(tt.line)))
		})
	}
}

type fixedSegmenter struct{ groups []Group }

func (s fixedSegmenter) Segment(string) []Group { return s.groups }

func TestExtractExperiences_CustomSegmenter(t *testing.T) {
	seg := fixedSegmenter{groups: []Group{{"c", "p", "d", "x"}}}

	entries := ExtractExperiences("anything", seg)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].Company)
}
