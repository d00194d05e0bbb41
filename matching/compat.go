package matching

import (
	"math"
	"time"

	"github.com/adamstosho/HeartSyc/models"
)

// IsCompatible decides whether candidate should be suggested to viewer.
// Rules run in order and any failure rejects the candidate:
//
//  1. banned or unverified candidates are never suggested
//  2. same-gender pairs are never suggested
//  3. preferredGender, when set, must match the candidate's gender
//  4. preferredReligion, when set, must match the candidate's religion
//  5. preferredTribes, when non-empty, must contain the candidate's tribe
//  6. candidate's age must fall inside the viewer's age range (inclusive)
//  7. when the viewer prefers certain languages, the candidate must speak
//     at least one of them
func IsCompatible(viewer, candidate *models.User) bool {
	return IsCompatibleAt(viewer, candidate, time.Now())
}

// IsCompatibleAt is IsCompatible with an explicit clock for the age rule.
func IsCompatibleAt(viewer, candidate *models.User, now time.Time) bool {
	if candidate.IsBanned || !candidate.IsVerified {
		return false
	}
	if viewer.Gender == candidate.Gender {
		return false
	}
	if g := viewer.Preferences.PreferredGender; g != "" && g != candidate.Gender {
		return false
	}
	if r := viewer.Preferences.PreferredReligion; r != "" && r != candidate.Religion {
		return false
	}
	if tribes := viewer.Preferences.PreferredTribes; len(tribes) > 0 && !contains(tribes, candidate.Tribe) {
		return false
	}
	if ageRange := viewer.Preferences.AgeRange; ageRange.IsSet() {
		age := Age(candidate.DOB, now)
		if age < ageRange.Min || age > ageRange.Max {
			return false
		}
	}
	if langs := viewer.Preferences.SpokenLanguages; len(langs) > 0 && !sharesAny(langs, candidate.SpokenLanguages) {
		return false
	}
	return true
}

// Age computes full years lived as floor((now - dob) / 365.25 days).
func Age(dob, now time.Time) int {
	const hoursPerYear = 365.25 * 24
	return int(math.Floor(now.Sub(dob).Hours() / hoursPerYear))
}

// ConnectionRate is the percentage of profile views that converted into
// accepted matches: round(100 * accepted / views), 0 when there are no views.
func ConnectionRate(acceptedMatches, profileViews int64) int {
	if profileViews <= 0 {
		return 0
	}
	return int(math.Round(float64(acceptedMatches) / float64(profileViews) * 100))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sharesAny(a, b []string) bool {
	for _, v := range b {
		if contains(a, v) {
			return true
		}
	}
	return false
}
