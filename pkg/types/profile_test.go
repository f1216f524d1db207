package types

import (
	"testing"

	"schemebot/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWholeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{name: "empty", input: "", want: nil},
		{name: "whitespace", input: "   ", want: nil},
		{name: "words", input: "thirty", want: nil},
		{name: "negative", input: "-5", want: nil},
		{name: "decimal", input: "12.5", want: nil},
		{name: "trailing text", input: "12abc", want: nil},
		{name: "zero", input: "0", want: utils.IntPtr(0)},
		{name: "padded", input: " 70 ", want: utils.IntPtr(70)},
		{name: "large", input: "50000", want: utils.IntPtr(50000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseWholeNumber(tt.input))
		})
	}
}

func TestParseUserProfile(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		p, err := ParseUserProfile(UserProfileForm{
			Age:        "70",
			Income:     "50000",
			Gender:     "Female",
			Caste:      "General",
			Occupation: " Retired ",
		})
		require.NoError(t, err)

		assert.Equal(t, utils.IntPtr(70), p.Age)
		assert.Equal(t, utils.IntPtr(50000), p.Income)
		assert.Equal(t, GenderFemale, p.Gender)
		assert.Equal(t, CasteGeneral, p.Caste)
		assert.Equal(t, "Retired", p.Occupation)
	})

	t.Run("defaults", func(t *testing.T) {
		p, err := ParseUserProfile(DefaultUserProfileForm())
		require.NoError(t, err)

		assert.Nil(t, p.Age)
		assert.Nil(t, p.Income)
		assert.Equal(t, GenderMale, p.Gender)
		assert.Equal(t, CasteUnset, p.Caste)
	})

	t.Run("unparseable numbers are absent", func(t *testing.T) {
		p, err := ParseUserProfile(UserProfileForm{Age: "thirty", Income: "lots", Gender: "Other"})
		require.NoError(t, err)

		assert.Nil(t, p.Age)
		assert.Nil(t, p.Income)
	})

	t.Run("case insensitive enums", func(t *testing.T) {
		p, err := ParseUserProfile(UserProfileForm{Gender: "female", Caste: "obc"})
		require.NoError(t, err)

		assert.Equal(t, GenderFemale, p.Gender)
		assert.Equal(t, CasteOBC, p.Caste)
	})

	t.Run("invalid gender", func(t *testing.T) {
		_, err := ParseUserProfile(UserProfileForm{Gender: "Robot"})
		assert.ErrorIs(t, err, ErrInvalidGender)
	})

	t.Run("invalid caste", func(t *testing.T) {
		_, err := ParseUserProfile(UserProfileForm{Gender: "Male", Caste: "Brahmin-ish"})
		assert.ErrorIs(t, err, ErrInvalidCaste)
	})
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		input string
		want  Verdict
		ok    bool
	}{
		{input: "ELIGIBLE", want: VerdictEligible, ok: true},
		{input: "NOT_ELIGIBLE", want: VerdictNotEligible, ok: true},
		{input: "NOT ELIGIBLE", want: VerdictNotEligible, ok: true},
		{input: "not eligible", want: VerdictNotEligible, ok: true},
		{input: "MAYBE", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseVerdict(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestSchemeSummaryMatchPercent(t *testing.T) {
	assert.Equal(t, 92, SchemeSummary{Score: 0.92}.MatchPercent())
	assert.Equal(t, 100, SchemeSummary{Score: 1.3}.MatchPercent())
	assert.Equal(t, 0, SchemeSummary{Score: -0.2}.MatchPercent())
	assert.Equal(t, 57, SchemeSummary{Score: 0.566}.MatchPercent())
}
