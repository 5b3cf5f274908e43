package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

type Settings struct {
	FontSize             string `json:"fontSize" validate:"oneof=small medium large"`
	AutoSave             bool   `json:"autoSave"`
	ConfirmDeleteEnabled bool   `json:"confirmDeleteEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		FontSize:             FontMedium,
		AutoSave:             true,
		ConfirmDeleteEnabled: true,
	}
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.TrimSpace(s)) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

var validate = validator.New()

// validateStruct checks validate tags and renders failures as one message.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidateSettings rejects unknown font sizes.
func ValidateSettings(s Settings) error {
	if err := validateStruct(s); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

// ValidateMemoryInput trims the text fields and checks them.
func ValidateMemoryInput(in *NewMemoryInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Date = strings.TrimSpace(in.Date)

	if err := validateStruct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMemory, err)
	}
	return nil
}
