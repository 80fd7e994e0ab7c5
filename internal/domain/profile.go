package domain

import "time"

// StructuredLocation holds the optional geocoded breakdown of a candidate's
// location. All fields are optional; deployments without the structured
// location columns never populate it.
type StructuredLocation struct {
	PlaceID  *string
	Lat      *float64
	Lng      *float64
	City     *string
	Province *string
	Country  *string
	Barangay *string
	Region   *string
}

// Profile is the authoritative record for a candidate's identity and
// public-facing attributes.
//
// FullName is derived: it is always the trimmed concatenation of FirstName and
// LastName and is never independently editable.
type Profile struct {
	Subject SubjectID

	Email     string
	FirstName string
	LastName  string
	FullName  string

	Location  *string
	AvatarURL *string
	Phone     *string
	Bio       *string
	Position  *string

	StructuredLocation StructuredLocation

	Gender       *string
	GenderCustom *string
	Username     *string
	Company      *string

	Birthday  *time.Time
	Completed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
