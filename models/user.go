package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// AgeRange is inclusive on both ends. A zero-valued range means "no age filter".
type AgeRange struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

// IsSet reports whether the range should be applied at all.
func (r AgeRange) IsSet() bool {
	return r.Min != 0 || r.Max != 0
}

type Preferences struct {
	PreferredGender   string   `bson:"preferredGender" json:"preferredGender"`
	PreferredReligion string   `bson:"preferredReligion,omitempty" json:"preferredReligion,omitempty"`
	PreferredTribes   []string `bson:"preferredTribes,omitempty" json:"preferredTribes,omitempty"`
	SpokenLanguages   []string `bson:"spokenLanguages,omitempty" json:"spokenLanguages,omitempty"`
	AgeRange          AgeRange `bson:"ageRange" json:"ageRange"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`

	Gender           string    `bson:"gender" json:"gender"` // male, female
	DOB              time.Time `bson:"dob" json:"dob"`
	Tribe            string    `bson:"tribe" json:"tribe"`
	Religion         string    `bson:"religion" json:"religion"`
	State            string    `bson:"state" json:"state"`
	SpokenLanguages  []string  `bson:"spokenLanguages" json:"spokenLanguages"`
	MaritalIntent    string    `bson:"maritalIntent" json:"maritalIntent"`
	Education        string    `bson:"education,omitempty" json:"education,omitempty"`
	EmploymentStatus string    `bson:"employmentStatus,omitempty" json:"employmentStatus,omitempty"`
	Bio              string    `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePhoto     string    `bson:"profilePhoto,omitempty" json:"profilePhoto,omitempty"`

	Preferences Preferences `bson:"preferences" json:"preferences"`

	IsVerified bool   `bson:"isVerified" json:"isVerified"`
	IsBanned   bool   `bson:"isBanned" json:"isBanned"`
	Role       string `bson:"role" json:"role"` // user, admin

	ProfileViews   int64 `bson:"profileViews" json:"profileViews"`
	ConnectionRate int   `bson:"connectionRate" json:"connectionRate"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// IsAdmin reports whether the user may hit admin-only endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
