package types

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidGender = errors.New("gender must be one of Male, Female, Other")
	ErrInvalidCaste  = errors.New("caste must be one of General, SC, ST, OBC, Minority")
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

type Caste string

const (
	CasteUnset    Caste = ""
	CasteGeneral  Caste = "General"
	CasteSC       Caste = "SC"
	CasteST       Caste = "ST"
	CasteOBC      Caste = "OBC"
	CasteMinority Caste = "Minority"
)

type CasteOption struct {
	Value Caste
	Label string
}

var CasteOptions = []CasteOption{
	{Value: CasteGeneral, Label: "General"},
	{Value: CasteSC, Label: "Scheduled Caste (SC)"},
	{Value: CasteST, Label: "Scheduled Tribe (ST)"},
	{Value: CasteOBC, Label: "Other Backward Class (OBC)"},
	{Value: CasteMinority, Label: "Minority"},
}

// UserProfile is the record sent to the verification endpoint. Age and
// Income stay nil unless the visitor typed a non-negative whole number.
type UserProfile struct {
	Age        *int   `json:"age,omitempty"`
	Income     *int   `json:"income,omitempty"`
	Gender     Gender `json:"gender"`
	Caste      Caste  `json:"caste"`
	Occupation string `json:"occupation"`
}

// UserProfileForm holds the raw text of the verification form.
type UserProfileForm struct {
	Age        string `form:"age"`
	Income     string `form:"income"`
	Gender     string `form:"gender"`
	Caste      string `form:"caste"`
	Occupation string `form:"occupation"`
}

func DefaultUserProfileForm() UserProfileForm {
	return UserProfileForm{Gender: string(GenderMale)}
}

func ParseUserProfile(f UserProfileForm) (UserProfile, error) {
	gender, err := parseGender(f.Gender)
	if err != nil {
		return UserProfile{}, err
	}

	caste, err := parseCaste(f.Caste)
	if err != nil {
		return UserProfile{}, err
	}

	return UserProfile{
		Age:        ParseWholeNumber(f.Age),
		Income:     ParseWholeNumber(f.Income),
		Gender:     gender,
		Caste:      caste,
		Occupation: strings.TrimSpace(f.Occupation),
	}, nil
}

// ParseWholeNumber returns nil for empty, non-numeric or negative input.
func ParseWholeNumber(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}

	return &n
}

func parseGender(raw string) (Gender, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return GenderMale, nil
	}
	for _, g := range Genders {
		if strings.EqualFold(raw, string(g)) {
			return g, nil
		}
	}
	return "", ErrInvalidGender
}

func parseCaste(raw string) (Caste, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CasteUnset, nil
	}
	for _, c := range CasteOptions {
		if strings.EqualFold(raw, string(c.Value)) {
			return c.Value, nil
		}
	}
	return "", ErrInvalidCaste
}
