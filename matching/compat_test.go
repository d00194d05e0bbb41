package matching_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamstosho/HeartSyc/matching"
	"github.com/adamstosho/HeartSyc/models"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// dobForAge yields a date of birth that makes Age return exactly years at
// the fixed test clock.
func dobForAge(years int) time.Time {
	return now.Add(-time.Duration(float64(years)*365.25*24+24) * time.Hour)
}

func baseViewer() *models.User {
	return &models.User{
		Gender:   models.GenderMale,
		Religion: "christian",
		Preferences: models.Preferences{
			PreferredGender: models.GenderFemale,
			AgeRange:        models.AgeRange{Min: 20, Max: 30},
		},
	}
}

func baseCandidate() *models.User {
	return &models.User{
		Gender:          models.GenderFemale,
		Religion:        "christian",
		Tribe:           "yoruba",
		DOB:             dobForAge(25),
		SpokenLanguages: []string{"english", "yoruba"},
		IsVerified:      true,
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		name      string
		viewer    func(*models.User)
		candidate func(*models.User)
		want      bool
	}{
		{
			name: "base pair is compatible",
			want: true,
		},
		{
			name:      "banned candidate always rejected",
			candidate: func(u *models.User) { u.IsBanned = true },
			want:      false,
		},
		{
			name:      "unverified candidate always rejected",
			candidate: func(u *models.User) { u.IsVerified = false },
			want:      false,
		},
		{
			name: "banned beats otherwise perfect profile",
			viewer: func(u *models.User) {
				u.Preferences = models.Preferences{}
			},
			candidate: func(u *models.User) { u.IsBanned = true },
			want:      false,
		},
		{
			name:      "same gender rejected",
			candidate: func(u *models.User) { u.Gender = models.GenderMale },
			want:      false,
		},
		{
			name: "same gender rejected even without gender preference",
			viewer: func(u *models.User) {
				u.Preferences.PreferredGender = ""
			},
			candidate: func(u *models.User) { u.Gender = models.GenderMale },
			want:      false,
		},
		{
			name: "religion preference mismatch rejected",
			viewer: func(u *models.User) {
				u.Preferences.PreferredReligion = "muslim"
			},
			want: false,
		},
		{
			name: "religion preference match accepted",
			viewer: func(u *models.User) {
				u.Preferences.PreferredReligion = "christian"
			},
			want: true,
		},
		{
			name:   "unset religion preference ignores candidate religion",
			viewer: func(u *models.User) { u.Preferences.PreferredReligion = "" },
			want:   true,
		},
		{
			name: "tribe not in preferred set rejected",
			viewer: func(u *models.User) {
				u.Preferences.PreferredTribes = []string{"igbo", "hausa"}
			},
			want: false,
		},
		{
			name: "tribe in preferred set accepted",
			viewer: func(u *models.User) {
				u.Preferences.PreferredTribes = []string{"igbo", "yoruba"}
			},
			want: true,
		},
		{
			name: "no common language rejected",
			viewer: func(u *models.User) {
				u.Preferences.SpokenLanguages = []string{"hausa"}
			},
			want: false,
		},
		{
			name: "one common language accepted",
			viewer: func(u *models.User) {
				u.Preferences.SpokenLanguages = []string{"hausa", "yoruba"}
			},
			want: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			viewer := baseViewer()
			candidate := baseCandidate()
			if tc.viewer != nil {
				tc.viewer(viewer)
			}
			if tc.candidate != nil {
				tc.candidate(candidate)
			}
			assert.Equal(t, tc.want, matching.IsCompatibleAt(viewer, candidate, now))
		})
	}
}

func TestIsCompatibleAgeBoundaries(t *testing.T) {
	viewer := baseViewer()
	viewer.Preferences.AgeRange = models.AgeRange{Min: 25, Max: 35}

	tests := []struct {
		age  int
		want bool
	}{
		{24, false},
		{25, true},
		{30, true},
		{35, true},
		{36, false},
	}

	for _, tc := range tests {
		candidate := baseCandidate()
		candidate.DOB = dobForAge(tc.age)
		require.Equal(t, tc.age, matching.Age(candidate.DOB, now))
		assert.Equalf(t, tc.want, matching.IsCompatibleAt(viewer, candidate, now),
			"age %d", tc.age)
	}
}

func TestIsCompatibleUnsetAgeRange(t *testing.T) {
	viewer := baseViewer()
	viewer.Preferences.AgeRange = models.AgeRange{}

	candidate := baseCandidate()
	candidate.DOB = dobForAge(70)

	assert.True(t, matching.IsCompatibleAt(viewer, candidate, now))
}

func TestAge(t *testing.T) {
	// 2000-06-01 to 2026-06-01 spans 9497 days, just past 26 duration years
	dob := time.Date(2000, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 26, matching.Age(dob, now))

	// born a day later and the 26th duration year has not elapsed yet
	assert.Equal(t, 25, matching.Age(dob.Add(24*time.Hour), now))

	// not born yet
	assert.Equal(t, -1, matching.Age(now.Add(24*time.Hour), now))
}

func TestConnectionRate(t *testing.T) {
	tests := []struct {
		accepted int64
		views    int64
		want     int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 4, 25},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{6, 4, 150},
	}

	for _, tc := range tests {
		assert.Equalf(t, tc.want, matching.ConnectionRate(tc.accepted, tc.views),
			"accepted=%d views=%d", tc.accepted, tc.views)
	}
}
