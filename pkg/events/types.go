package events

import (
	"slices"
	"strings"
)

// Type is the closed set of event kinds a feed may contain.
type Type string

// Event types. TypeCongress is the only range-dated kind; every other type is
// a single-day deadline or window opening.
const (
	TypeCongress                    Type = "congress"
	TypeAbstractOpen                Type = "abstract_open"
	TypeAbstractDeadline            Type = "abstract_deadline"
	TypeLateBreakingDeadline        Type = "late_breaking_deadline"
	TypeAcceptanceNotification      Type = "acceptance_notification"
	TypePresenterConfirmation       Type = "presenter_confirmation"
	TypeSubstitutionDeadline        Type = "substitution_deadline"
	TypeEarlyBirdDeadline           Type = "early_bird_deadline"
	TypeRegularRegistrationDeadline Type = "regular_registration_deadline"
	TypeHousingDeadline             Type = "housing_deadline"
	TypeWorkshopDeadline            Type = "workshop_deadline"
	TypeOtherDeadline               Type = "other_deadline"
)

var allowedTypes = []Type{
	TypeCongress,
	TypeAbstractOpen,
	TypeAbstractDeadline,
	TypeLateBreakingDeadline,
	TypeAcceptanceNotification,
	TypePresenterConfirmation,
	TypeSubstitutionDeadline,
	TypeEarlyBirdDeadline,
	TypeRegularRegistrationDeadline,
	TypeHousingDeadline,
	TypeWorkshopDeadline,
	TypeOtherDeadline,
}

// Types returns the allowed event types in canonical order.
func Types() []Type {
	return slices.Clone(allowedTypes)
}

// ParseType lower-cases and trims s. The result may not be a valid type.
func ParseType(s string) Type {
	return Type(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the type name.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether t belongs to the allowed set.
func (t Type) Valid() bool {
	return slices.Contains(allowedTypes, t)
}

// Ranged reports whether events of this type carry a start and end date.
func (t Type) Ranged() bool {
	return t == TypeCongress
}

// MultiInstance reports whether a series may publish several distinct events
// of this type in one year, such as one workshop deadline per track.
func (t Type) MultiInstance() bool {
	return t == TypeWorkshopDeadline || t == TypeOtherDeadline
}
