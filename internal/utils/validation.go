package utils

import (
	"errors"
	"math"
	"regexp"

	"editor.datatools.dev/internal/models"
)

// Feed ids are alphanumeric plus underscore, hyphen, dot and colon. Derived
// pattern ids use a colon between route and ordinal.
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateCoordinate checks both axes of c.
func ValidateCoordinate(c models.Coordinate) error {
	if err := ValidateLatitude(c.Lat); err != nil {
		return err
	}
	return ValidateLongitude(c.Lon)
}

// ValidateThreshold checks an explicit shape-fit distance in meters.
func ValidateThreshold(meters float64) error {
	if math.IsNaN(meters) || math.IsInf(meters, 0) || meters <= 0 {
		return errors.New("threshold must be a positive number of meters")
	}
	return nil
}
