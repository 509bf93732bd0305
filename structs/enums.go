package structs

import "strings"

// Gender is a closed enumeration stored by name.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender parses a gender name case-insensitively.
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToLower(s)) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

// BloodType is a closed enumeration stored by name.
type BloodType string

const (
	BloodONegative  BloodType = "onegative"
	BloodOPositive  BloodType = "opositive"
	BloodANegative  BloodType = "anegative"
	BloodAPositive  BloodType = "apositive"
	BloodBNegative  BloodType = "bnegative"
	BloodBPositive  BloodType = "bpositive"
	BloodABNegative BloodType = "abnegative"
	BloodABPositive BloodType = "abpositive"
)

var bloodTypes = map[BloodType]struct{}{
	BloodONegative:  {},
	BloodOPositive:  {},
	BloodANegative:  {},
	BloodAPositive:  {},
	BloodBNegative:  {},
	BloodBPositive:  {},
	BloodABNegative: {},
	BloodABPositive: {},
}

// ParseBloodType parses a blood type name case-insensitively.
func ParseBloodType(s string) (BloodType, bool) {
	bt := BloodType(strings.ToLower(s))
	if _, ok := bloodTypes[bt]; ok {
		return bt, true
	}
	return "", false
}
