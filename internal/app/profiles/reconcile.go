package profiles

import (
	"strings"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
)

const birthdayLayout = "2006-01-02"

// reconcile merges a partial update into the existing record and returns the
// fully-resolved attribute set to write. It is a pure function of its inputs:
//
//   - a specified field overrides the existing value; an unspecified field
//     keeps it (tri-state: "not provided" != "provided as null")
//   - optional attributes absent from cols are silently dropped from the write
//   - a blank birthday resolves to "no value", never an empty string
//   - full_name is always recomputed from the resolved first/last names
func reconcile(existing profilerepo.Profile, in UpdateProfileInput, cols profilerepo.ColumnSet) (profilerepo.Profile, *Error) {
	out := cloneRecord(existing)

	if in.FirstName.IsSpecified() {
		if in.FirstName.IsNull() {
			return profilerepo.Profile{}, validationError("firstName", "cannot be null")
		}
		out.FirstName = domain.NormalizeHumanName(in.FirstName.Value())
	}
	if in.LastName.IsSpecified() {
		if in.LastName.IsNull() {
			return profilerepo.Profile{}, validationError("lastName", "cannot be null")
		}
		out.LastName = domain.NormalizeHumanName(in.LastName.Value())
	}

	// FullName is derived, never taken from the input even if a caller supplied
	// one at the edge. An all-empty recomputation keeps the existing value.
	if recomputed := domain.ComposeFullName(out.FirstName, out.LastName); recomputed != "" {
		out.FullName = recomputed
	}

	applyString(&out.Location, in.Location)
	applyString(&out.AvatarURL, in.AvatarURL)
	applyString(&out.Phone, in.Phone)
	applyString(&out.Bio, in.Bio)
	applyString(&out.Position, in.Position)

	applyString(&out.StructuredLocation.PlaceID, in.LocationPlaceID)
	applyFloat(&out.StructuredLocation.Lat, in.LocationLat)
	applyFloat(&out.StructuredLocation.Lng, in.LocationLng)
	applyString(&out.StructuredLocation.City, in.LocationCity)
	applyString(&out.StructuredLocation.Province, in.LocationProvince)
	applyString(&out.StructuredLocation.Country, in.LocationCountry)
	applyString(&out.StructuredLocation.Barangay, in.LocationBarangay)
	applyString(&out.StructuredLocation.Region, in.LocationRegion)

	applyString(&out.Gender, in.Gender)
	applyString(&out.GenderCustom, in.GenderCustom)
	applyString(&out.Username, in.Username)
	applyString(&out.Company, in.Company)

	if in.Birthday.IsSpecified() {
		bd, err := resolveBirthday(in.Birthday)
		if err != nil {
			return profilerepo.Profile{}, validationError("birthday", err.Error())
		}
		out.Birthday = bd
	}

	if in.Completed.IsSpecified() {
		if in.Completed.IsNull() {
			return profilerepo.Profile{}, validationError("completed", "cannot be null")
		}
		out.Completed = in.Completed.Value()
	}

	dropAbsentOptionalColumns(&out, cols)
	return out, nil
}

// resolveBirthday maps a specified birthday to a concrete date or "no value".
// Blank strings become nil to satisfy strict date-column typing.
func resolveBirthday(o Optional[string]) (*time.Time, error) {
	if o.IsNull() {
		return nil, nil
	}
	raw := strings.TrimSpace(o.Value())
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(birthdayLayout, raw)
	if err != nil {
		return nil, errInvalidDate
	}
	t = t.UTC()
	return &t, nil
}

// dropAbsentOptionalColumns clears every optional attribute whose column does
// not exist in the current deployment. Dropping is silent: it is not an error
// for a caller to supply an attribute this deployment cannot store.
func dropAbsentOptionalColumns(p *profilerepo.Profile, cols profilerepo.ColumnSet) {
	if !cols.Has("location_place_id") {
		p.StructuredLocation.PlaceID = nil
	}
	if !cols.Has("location_lat") {
		p.StructuredLocation.Lat = nil
	}
	if !cols.Has("location_lng") {
		p.StructuredLocation.Lng = nil
	}
	if !cols.Has("location_city") {
		p.StructuredLocation.City = nil
	}
	if !cols.Has("location_province") {
		p.StructuredLocation.Province = nil
	}
	if !cols.Has("location_country") {
		p.StructuredLocation.Country = nil
	}
	if !cols.Has("location_barangay") {
		p.StructuredLocation.Barangay = nil
	}
	if !cols.Has("location_region") {
		p.StructuredLocation.Region = nil
	}
	if !cols.Has("gender") {
		p.Gender = nil
	}
	if !cols.Has("gender_custom") {
		p.GenderCustom = nil
	}
	if !cols.Has("username") {
		p.Username = nil
	}
	if !cols.Has("company") {
		p.Company = nil
	}
	if !cols.Has("birthday") {
		p.Birthday = nil
	}
	if !cols.Has("completed_data") {
		p.Completed = false
	}
}

func applyString(dst **string, o Optional[string]) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value()
	*dst = &v
}

func applyFloat(dst **float64, o Optional[float64]) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value()
	*dst = &v
}

func validationError(field, problem string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: problem},
	}
}
