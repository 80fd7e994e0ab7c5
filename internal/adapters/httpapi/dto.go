package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/talentpoint-hq/candidate-profile-api/internal/app/profiles"
	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// profileUpdateRequest is the PATCH body. Every field is tri-state: omitted
// keeps the stored value, null clears it (where the attribute is clearable),
// a value replaces it. fullName is deliberately absent: it is derived.
type profileUpdateRequest struct {
	FirstName nullable.Nullable[string] `json:"firstName,omitempty"`
	LastName  nullable.Nullable[string] `json:"lastName,omitempty"`

	Location  nullable.Nullable[string] `json:"location,omitempty"`
	AvatarURL nullable.Nullable[string] `json:"avatarUrl,omitempty"`
	Phone     nullable.Nullable[string] `json:"phone,omitempty"`
	Bio       nullable.Nullable[string] `json:"bio,omitempty"`
	Position  nullable.Nullable[string] `json:"position,omitempty"`

	LocationPlaceID  nullable.Nullable[string]  `json:"locationPlaceId,omitempty"`
	LocationLat      nullable.Nullable[float64] `json:"locationLat,omitempty"`
	LocationLng      nullable.Nullable[float64] `json:"locationLng,omitempty"`
	LocationCity     nullable.Nullable[string]  `json:"locationCity,omitempty"`
	LocationProvince nullable.Nullable[string]  `json:"locationProvince,omitempty"`
	LocationCountry  nullable.Nullable[string]  `json:"locationCountry,omitempty"`
	LocationBarangay nullable.Nullable[string]  `json:"locationBarangay,omitempty"`
	LocationRegion   nullable.Nullable[string]  `json:"locationRegion,omitempty"`

	Gender       nullable.Nullable[string] `json:"gender,omitempty"`
	GenderCustom nullable.Nullable[string] `json:"genderCustom,omitempty"`
	Username     nullable.Nullable[string] `json:"username,omitempty"`
	Company      nullable.Nullable[string] `json:"company,omitempty"`

	Birthday  nullable.Nullable[string] `json:"birthday,omitempty"`
	Completed nullable.Nullable[bool]   `json:"completed,omitempty"`
}

func (req profileUpdateRequest) toInput() profiles.UpdateProfileInput {
	return profiles.UpdateProfileInput{
		FirstName:        toOptional(req.FirstName),
		LastName:         toOptional(req.LastName),
		Location:         toOptional(req.Location),
		AvatarURL:        toOptional(req.AvatarURL),
		Phone:            toOptional(req.Phone),
		Bio:              toOptional(req.Bio),
		Position:         toOptional(req.Position),
		LocationPlaceID:  toOptional(req.LocationPlaceID),
		LocationLat:      toOptional(req.LocationLat),
		LocationLng:      toOptional(req.LocationLng),
		LocationCity:     toOptional(req.LocationCity),
		LocationProvince: toOptional(req.LocationProvince),
		LocationCountry:  toOptional(req.LocationCountry),
		LocationBarangay: toOptional(req.LocationBarangay),
		LocationRegion:   toOptional(req.LocationRegion),
		Gender:           toOptional(req.Gender),
		GenderCustom:     toOptional(req.GenderCustom),
		Username:         toOptional(req.Username),
		Company:          toOptional(req.Company),
		Birthday:         toOptional(req.Birthday),
		Completed:        toOptional(req.Completed),
	}
}

func toOptional[T any](n nullable.Nullable[T]) profiles.Optional[T] {
	if !n.IsSpecified() {
		return profiles.Unspecified[T]()
	}
	if n.IsNull() {
		return profiles.Null[T]()
	}
	return profiles.Some(n.MustGet())
}

type profileDTO struct {
	ID        string              `json:"id"`
	Email     openapi_types.Email `json:"email"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	FullName  string              `json:"fullName"`

	Location  *string `json:"location"`
	AvatarURL *string `json:"avatarUrl"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio"`
	Position  *string `json:"position"`

	LocationPlaceID  *string  `json:"locationPlaceId,omitempty"`
	LocationLat      *float64 `json:"locationLat,omitempty"`
	LocationLng      *float64 `json:"locationLng,omitempty"`
	LocationCity     *string  `json:"locationCity,omitempty"`
	LocationProvince *string  `json:"locationProvince,omitempty"`
	LocationCountry  *string  `json:"locationCountry,omitempty"`
	LocationBarangay *string  `json:"locationBarangay,omitempty"`
	LocationRegion   *string  `json:"locationRegion,omitempty"`

	Gender       *string `json:"gender,omitempty"`
	GenderCustom *string `json:"genderCustom,omitempty"`
	Username     *string `json:"username,omitempty"`
	Company      *string `json:"company,omitempty"`

	Birthday  *openapi_types.Date `json:"birthday"`
	Completed bool                `json:"completed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type getProfileResponse struct {
	Profile profileDTO `json:"profile"`
}

type updateProfileResponse struct {
	Profile     profileDTO `json:"profile"`
	SlugChanged bool       `json:"slugChanged"`
	NewSlug     *string    `json:"newSlug,omitempty"`
}

func toProfileDTO(p domain.Profile) profileDTO {
	dto := profileDTO{
		ID:        string(p.Subject),
		Email:     openapi_types.Email(p.Email),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		FullName:  p.FullName,

		Location:  p.Location,
		AvatarURL: p.AvatarURL,
		Phone:     p.Phone,
		Bio:       p.Bio,
		Position:  p.Position,

		LocationPlaceID:  p.StructuredLocation.PlaceID,
		LocationLat:      p.StructuredLocation.Lat,
		LocationLng:      p.StructuredLocation.Lng,
		LocationCity:     p.StructuredLocation.City,
		LocationProvince: p.StructuredLocation.Province,
		LocationCountry:  p.StructuredLocation.Country,
		LocationBarangay: p.StructuredLocation.Barangay,
		LocationRegion:   p.StructuredLocation.Region,

		Gender:       p.Gender,
		GenderCustom: p.GenderCustom,
		Username:     p.Username,
		Company:      p.Company,

		Completed: p.Completed,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Birthday != nil {
		dto.Birthday = &openapi_types.Date{Time: *p.Birthday}
	}
	return dto
}
