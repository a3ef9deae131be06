package models

import (
	"time"

	"github.com/google/uuid"
)

// FacilityType — тип спортивного объекта.
type FacilityType string

const (
	FacilityTypeFlat        FacilityType = "Flat"
	FacilityTypeGym         FacilityType = "Gym"
	FacilityTypePool        FacilityType = "Pool"
	FacilityTypeSkatingRink FacilityType = "SkatingRink"
	FacilityTypeShooting    FacilityType = "Shooting"
	FacilityTypeOther       FacilityType = "Other"
	FacilityTypeOutdoor     FacilityType = "Outdoor"
)

// Valid сообщает, входит ли значение в перечисление.
func (t FacilityType) Valid() bool {
	switch t {
	case FacilityTypeFlat, FacilityTypeGym, FacilityTypePool, FacilityTypeSkatingRink,
		FacilityTypeShooting, FacilityTypeOther, FacilityTypeOutdoor:
		return true
	}
	return false
}

// PropertyForm — форма собственности.
type PropertyForm string

const (
	PropertyFormUnknown                  PropertyForm = "Unknown"
	PropertyFormRussianFederationSubject PropertyForm = "RussianFederationSubject"
	PropertyFormFederal                  PropertyForm = "Federal"
	PropertyFormMunicipal                PropertyForm = "Municipal"
	PropertyFormPrivate                  PropertyForm = "Private"
	PropertyFormOther                    PropertyForm = "Other"
)

func (p PropertyForm) Valid() bool {
	switch p {
	case PropertyFormUnknown, PropertyFormRussianFederationSubject, PropertyFormFederal,
		PropertyFormMunicipal, PropertyFormPrivate, PropertyFormOther:
		return true
	}
	return false
}

// CoveringType — тип покрытия.
type CoveringType string

const (
	CoveringTypePrinted       CoveringType = "Printed"
	CoveringTypeRubberBitumen CoveringType = "RubberBitumen"
	CoveringTypeRubberTile    CoveringType = "RubberTile"
	CoveringTypePolymer       CoveringType = "Polymer"
	CoveringTypeSynthetic     CoveringType = "Synthetic"
)

func (c CoveringType) Valid() bool {
	switch c {
	case CoveringTypePrinted, CoveringTypeRubberBitumen, CoveringTypeRubberTile,
		CoveringTypePolymer, CoveringTypeSynthetic:
		return true
	}
	return false
}

// PayingType — условия оплаты.
type PayingType string

const (
	PayingTypeFullFree   PayingType = "FullFree"
	PayingTypePartlyFree PayingType = "PartlyFree"
	PayingTypeNotFree    PayingType = "NotFree"
)

func (p PayingType) Valid() bool {
	switch p {
	case PayingTypeFullFree, PayingTypePartlyFree, PayingTypeNotFree:
		return true
	}
	return false
}

// FacilityFields — изменяемые поля спортивного объекта.
// Обязательны Name, X, Y и PayingType; остальное по наличию данных.
type FacilityFields struct {
	Name                    string        `json:"name"`
	X                       *float64      `json:"x"`
	Y                       *float64      `json:"y"`
	Type                    *FacilityType `json:"type,omitempty"`
	OwnerName               *string       `json:"owner_name,omitempty"`
	PropertyForm            *PropertyForm `json:"property_form,omitempty"`
	Length                  *float64      `json:"length,omitempty"`
	Width                   *float64      `json:"width,omitempty"`
	Area                    *float64      `json:"area,omitempty"`
	ActualWorkload          *int64        `json:"actual_workload,omitempty"`
	AnnualCapacity          *int64        `json:"annual_capacity,omitempty"`
	Notes                   *string       `json:"notes,omitempty"`
	Height                  *float64      `json:"height,omitempty"`
	Size                    *float64      `json:"size,omitempty"`
	Depth                   *float64      `json:"depth,omitempty"`
	ConvertingType          *CoveringType `json:"converting_type,omitempty"`
	IsAccessibleForDisabled *bool         `json:"is_accessible_for_disabled,omitempty"`
	PayingType              PayingType    `json:"paying_type"`
	WhoCanUse               *string       `json:"who_can_use,omitempty"`
	Link                    *string       `json:"link,omitempty"`
	PhoneNumber             *string       `json:"phone_number,omitempty"`
	OpenHours               *string       `json:"open_hours,omitempty"`
	EPS                     *int64        `json:"eps,omitempty"`
	Hidden                  bool          `json:"hidden"`
}

// Facility — спортивный объект.
type Facility struct {
	ID uuid.UUID `json:"id"`
	FacilityFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FacilityFilter — условие поиска по одному полю.
// Непустые Eq/Lt/Gt объединяются через AND; Lt и Gt включительные.
type FacilityFilter struct {
	Field string `json:"field"`
	Eq    any    `json:"eq,omitempty"`
	Lt    any    `json:"lt,omitempty"`
	Gt    any    `json:"gt,omitempty"`
}

// FacilitySearch — параметры поиска объектов.
type FacilitySearch struct {
	Query     string           `json:"q"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	OrderBy   string           `json:"order_by"`
	OrderDesc bool             `json:"order_desc"`
	Filters   []FacilityFilter `json:"filters"`
}
