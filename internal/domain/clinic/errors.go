package clinic

import "errors"

// ErrSettingsNotFound is returned when no settings row exists yet.
var ErrSettingsNotFound = errors.New("clinic settings not found")

// ErrPractitionerNotFound is returned when a practitioner lookup fails.
var ErrPractitionerNotFound = errors.New("practitioner not found")

// ErrSlugTaken is returned when creating a practitioner whose slug already
// exists. Get-or-create treats it as "someone else won the race" and
// re-fetches.
var ErrSlugTaken = errors.New("practitioner slug already taken")
