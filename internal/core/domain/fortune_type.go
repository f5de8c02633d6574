package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

// FieldType is the typed constraint applied to one input field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldLocation FieldType = "location"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldSelect   FieldType = "select"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// FieldOption is one allowed value of a select field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// FieldSpec describes one input field of a request type.
type FieldSpec struct {
	Type      FieldType     `json:"type"`
	Label     string        `json:"label,omitempty"`
	MaxLength int           `json:"maxLength,omitempty"`
	Options   []FieldOption `json:"options,omitempty"`
}

// InputSchema declares which fields a request type accepts.
type InputSchema struct {
	Required []string             `json:"required"`
	Optional []string             `json:"optional,omitempty"`
	Fields   map[string]FieldSpec `json:"fields,omitempty"`
}

// RequestType is read-only reference data describing a purchasable report.
type RequestType struct {
	TypeID          string      `json:"typeID"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	RequiredCredits int64       `json:"requiredCredits"`
	IsActive        bool        `json:"isActive"`
	InputSchema     InputSchema `json:"inputSchema"`
	Timestamps
}

var fieldValidate = validator.New()

// Validate checks input against the schema. Every field is interpreted by
// its FieldSpec, regardless of which request type declares it. The returned
// error is an *apperrors.ValidationError carrying one message per field.
func (s InputSchema) Validate(input map[string]any) error {
	problems := map[string]string{}
	declared := make(map[string]bool, len(s.Required)+len(s.Optional))

	for _, name := range s.Required {
		declared[name] = true
		raw, ok := input[name]
		if !ok || raw == nil {
			problems[name] = "is required"
			continue
		}
		value, err := asString(raw)
		if err != nil {
			problems[name] = err.Error()
			continue
		}
		if strings.TrimSpace(value) == "" {
			problems[name] = "is required"
			continue
		}
		if msg := s.checkField(name, value); msg != "" {
			problems[name] = msg
		}
	}

	for _, name := range s.Optional {
		declared[name] = true
		raw, ok := input[name]
		if !ok || raw == nil {
			continue
		}
		value, err := asString(raw)
		if err != nil {
			problems[name] = err.Error()
			continue
		}
		if value == "" {
			continue
		}
		if msg := s.checkField(name, value); msg != "" {
			problems[name] = msg
		}
	}

	for name := range input {
		if !declared[name] {
			problems[name] = "is not accepted by this request type"
		}
	}

	if len(problems) > 0 {
		return apperrors.NewValidationError(problems)
	}
	return nil
}

func (s InputSchema) checkField(name, value string) string {
	spec, ok := s.Fields[name]
	if !ok {
		spec = FieldSpec{Type: FieldText}
	}

	switch spec.Type {
	case FieldDate:
		if err := fieldValidate.Var(value, "datetime="+dateLayout); err != nil {
			return "must be a date in YYYY-MM-DD format"
		}
	case FieldTime:
		if err := fieldValidate.Var(value, "datetime="+timeLayout); err != nil {
			return "must be a time in HH:MM format"
		}
	case FieldSelect:
		for _, opt := range spec.Options {
			if opt.Value == value {
				return ""
			}
		}
		return "must be one of " + optionList(spec.Options)
	case FieldText, FieldTextarea, FieldLocation, "":
		if spec.MaxLength > 0 {
			if err := fieldValidate.Var(value, "max="+strconv.Itoa(spec.MaxLength)); err != nil {
				return fmt.Sprintf("must be at most %d characters", spec.MaxLength)
			}
		}
	default:
		return "has unsupported field type " + string(spec.Type)
	}
	return ""
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("must be a string")
	}
	return s, nil
}

func optionList(opts []FieldOption) string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return strings.Join(values, ", ")
}
