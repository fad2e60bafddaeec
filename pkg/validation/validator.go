// Package validation checks request payloads and engine configuration before
// any analysis runs.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxOutageLines = 64
	MaxNameLength  = 100

	// Line and bus names: alphanumeric, underscore, hyphen.
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func init() {
	validate = validator.New()
}

// OutageRequest represents a request to simulate a line outage scenario
type OutageRequest struct {
	Lines  []string `json:"lines" validate:"required,min=1,max=64,dive,min=1,max=100"`
	Linear bool     `json:"linear"`
}

// WeatherRequest represents an ambient weather override for thermal rating
type WeatherRequest struct {
	AmbientC     float64 `json:"ambient_c" validate:"gte=-50,lte=60"`
	WindFtSec    float64 `json:"wind_ft_sec" validate:"gte=0,lte=200"`
	WindAngleDeg float64 `json:"wind_angle_deg" validate:"gte=0,lte=90"`
	SunHour      float64 `json:"sun_hour" validate:"gte=0,lte=24"`
	ElevationFt  float64 `json:"elevation_ft" validate:"gte=-1000,lte=20000"`
	LatitudeDeg  float64 `json:"latitude_deg" validate:"gte=-90,lte=90"`
}

// HourRequest represents a single-hour profile analysis request
type HourRequest struct {
	Hour int `json:"hour" validate:"gte=0,lte=23"`
}

// ValidateOutageRequest validates an outage simulation request
func ValidateOutageRequest(req *OutageRequest) error {
	if req == nil {
		return errors.New("outage request cannot be nil")
	}

	// Validate using struct tags
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	// Additional name validation
	seen := make(map[string]bool, len(req.Lines))
	for _, name := range req.Lines {
		if !namePattern.MatchString(name) {
			return fmt.Errorf("Lines: name '%s' contains invalid characters (only alphanumeric, underscore and hyphen allowed)", name)
		}
		if seen[name] {
			return fmt.Errorf("Lines: name '%s' appears more than once", name)
		}
		seen[name] = true
	}

	return nil
}

// ValidateWeatherRequest validates a weather override request
func ValidateWeatherRequest(req *WeatherRequest) error {
	if req == nil {
		return errors.New("weather request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateHourRequest validates a single-hour analysis request
func ValidateHourRequest(req *HourRequest) error {
	if req == nil {
		return errors.New("hour request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateName validates a line or bus name
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name '%s' exceeds maximum length of %d characters", name, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name '%s' is invalid (only alphanumeric, underscore and hyphen allowed)", name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "dive":
			// For array elements
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
