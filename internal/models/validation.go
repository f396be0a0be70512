package models

// ValidationResult reports structural warnings about generated text.
// It is advisory: IsValid is always true and Errors never block display.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}
