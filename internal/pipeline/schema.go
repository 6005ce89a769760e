package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/davidbz/pressroom/internal/domain"
)

// ErrSchemaMismatch indicates a caller asked for a payload type the schema does not produce.
var ErrSchemaMismatch = errors.New("payload type does not match schema")

// Wire structs mirror the JSON contracts. Pointers distinguish a missing field
// from a zero value; constraints live in the validate tags.

type questionSetWire struct {
	Questions []questionWire `json:"questions" validate:"required,min=5,dive"`
}

type questionWire struct {
	ID               *string `json:"id"                validate:"required"`
	Question         *string `json:"question"          validate:"required,min=5"`
	IntentTag        *string `json:"intent_tag"        validate:"required"`
	Difficulty       *wholeNumber `json:"difficulty"        validate:"required,min=1,max=5"`
	GotchaLevel      *wholeNumber `json:"gotcha_level"      validate:"required,min=0,max=3"`
	ExpectedEvidence *string `json:"expected_evidence" validate:"required"`
	RiskArea         *string `json:"risk_area"         validate:"required"`
}

// wholeNumber accepts any JSON number with no fractional part, so 3 and 3.0 are both valid.
type wholeNumber int

func (n *wholeNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil || f != math.Trunc(f) ||
		f > math.MaxInt32 || f < math.MinInt32 {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: reflect.TypeOf(0)}
	}
	*n = wholeNumber(f)
	return nil
}

// jsonKind names the JSON type of a raw value for type violations.
func jsonKind(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "empty"
	}
	switch trimmed[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "number " + trimmed
	}
}

type followUpWire struct {
	FollowUpQuestion *string  `json:"follow_up_question" validate:"required,min=5,max=200"`
	RationaleTags    []string `json:"rationale_tags"     validate:"required,max=5"`
}

type simulationTurnWire struct {
	NextQuestion *string `json:"next_question" validate:"required,min=5,max=200"`
}

type riskSetWire struct {
	Risks []riskWire `json:"risks" validate:"required,dive"`
}

type riskWire struct {
	ID          *string `json:"id"          validate:"required"`
	Description *string `json:"description" validate:"required"`
	Severity    *string `json:"severity"    validate:"required,oneof=high medium low"`
}

type decodeFunc func(data []byte) (any, error)

// decoders is indexed by SchemaKind.
//
//nolint:gochecknoglobals // read-only dispatch table
var decoders = [...]decodeFunc{
	domain.SchemaQuestionSet:    decodeQuestionSet,
	domain.SchemaFollowUp:       decodeFollowUp,
	domain.SchemaSimulationTurn: decodeSimulationTurn,
	domain.SchemaRiskSet:        decodeRiskSet,
}

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate parses candidate and checks it against the schema for kind.
// It returns a *domain.ParseError for malformed JSON and a *domain.ValidationError
// listing every violated constraint otherwise.
func Validate(kind domain.SchemaKind, candidate string) (any, error) {
	if !kind.Valid() || int(kind) >= len(decoders) || decoders[kind] == nil {
		return nil, fmt.Errorf("unknown schema kind %d", kind)
	}
	return decoders[kind]([]byte(candidate))
}

// ValidateAs is Validate with a typed result.
func ValidateAs[T any](kind domain.SchemaKind, candidate string) (T, error) {
	var zero T

	payload, err := Validate(kind, candidate)
	if err != nil {
		return zero, err
	}

	typed, ok := payload.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s produces %T, not %T", ErrSchemaMismatch, kind, payload, zero)
	}
	return typed, nil
}

func decodeQuestionSet(data []byte) (any, error) {
	var wire questionSetWire
	if err := decodeWire(domain.SchemaQuestionSet, data, &wire); err != nil {
		return nil, err
	}

	set := &domain.QuestionSet{Questions: make([]domain.Question, 0, len(wire.Questions))}
	for _, q := range wire.Questions {
		set.Questions = append(set.Questions, domain.Question{
			ID:               *q.ID,
			Question:         *q.Question,
			IntentTag:        *q.IntentTag,
			Difficulty:       int(*q.Difficulty),
			GotchaLevel:      int(*q.GotchaLevel),
			ExpectedEvidence: *q.ExpectedEvidence,
			RiskArea:         *q.RiskArea,
		})
	}
	return set, nil
}

func decodeFollowUp(data []byte) (any, error) {
	var wire followUpWire
	if err := decodeWire(domain.SchemaFollowUp, data, &wire); err != nil {
		return nil, err
	}
	return &domain.FollowUp{
		FollowUpQuestion: *wire.FollowUpQuestion,
		RationaleTags:    wire.RationaleTags,
	}, nil
}

func decodeSimulationTurn(data []byte) (any, error) {
	var wire simulationTurnWire
	if err := decodeWire(domain.SchemaSimulationTurn, data, &wire); err != nil {
		return nil, err
	}
	return &domain.SimulationTurn{NextQuestion: *wire.NextQuestion}, nil
}

func decodeRiskSet(data []byte) (any, error) {
	var wire riskSetWire
	if err := decodeWire(domain.SchemaRiskSet, data, &wire); err != nil {
		return nil, err
	}

	set := &domain.RiskSet{Risks: make([]domain.Risk, 0, len(wire.Risks))}
	for _, r := range wire.Risks {
		set.Risks = append(set.Risks, domain.Risk{
			ID:          *r.ID,
			Description: *r.Description,
			Severity:    domain.Severity(*r.Severity),
		})
	}
	return set, nil
}

// decodeWire unmarshals data into wire and runs the struct constraints.
// Keys must match the JSON field names exactly; encoding/json alone would
// accept any casing.
func decodeWire(kind domain.SchemaKind, data []byte, wire any) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &domain.ParseError{Err: err}
	}

	if err := json.Unmarshal(data, wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &domain.ValidationError{Kind: kind, Violations: []domain.Violation{typeViolation(typeErr)}}
		}
		return &domain.ParseError{Err: err}
	}

	found := keyCaseViolations(raw, reflect.TypeOf(wire), "")
	if err := validate.Struct(wire); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate %s: %w", kind, err)
		}
		found = append(found, violations(fieldErrs)...)
	}

	if len(found) > 0 {
		return &domain.ValidationError{Kind: kind, Violations: found}
	}
	return nil
}

// keyCaseViolations reports wire fields that are present only under a
// differently cased key.
func keyCaseViolations(raw any, t reflect.Type, path string) []domain.Violation {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var out []domain.Violation
	switch t.Kind() {
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				continue
			}
			fieldPath := joinPath(path, name)
			if value, ok := obj[name]; ok {
				out = append(out, keyCaseViolations(value, field.Type, fieldPath)...)
				continue
			}
			for key := range obj {
				if strings.EqualFold(key, name) {
					out = append(out, domain.Violation{
						Path:     fieldPath,
						Rule:     "required",
						Expected: "present",
						Actual:   "missing (found " + strconv.Quote(key) + ")",
					})
					break
				}
			}
		}
	case reflect.Slice:
		items, ok := raw.([]any)
		if !ok {
			return nil
		}
		for i, item := range items {
			out = append(out, keyCaseViolations(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i))...)
		}
	}
	return out
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func typeViolation(err *json.UnmarshalTypeError) domain.Violation {
	path := err.Field
	if path == "" {
		path = "$"
	}
	return domain.Violation{
		Path:     path,
		Rule:     "type",
		Expected: err.Type.String(),
		Actual:   err.Value,
	}
}

func violations(errs validator.ValidationErrors) []domain.Violation {
	out := make([]domain.Violation, 0, len(errs))
	for _, fe := range errs {
		out = append(out, domain.Violation{
			Path:     fieldPath(fe.Namespace()),
			Rule:     fe.Tag(),
			Expected: expected(fe),
			Actual:   actual(fe.Value()),
		})
	}
	return out
}

// fieldPath drops the wire struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func expected(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "present"
	case "oneof":
		return "one of [" + strings.ReplaceAll(param, " ", ", ") + "]"
	case "min", "max":
		bound := ">="
		if fe.Tag() == "max" {
			bound = "<="
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s %s characters", bound, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s %s items", bound, param)
		default:
			return bound + " " + param
		}
	default:
		if param == "" {
			return fe.Tag()
		}
		return fe.Tag() + "=" + param
	}
}

func actual(value any) string {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return "missing"
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "missing"
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return "missing"
		}
		return fmt.Sprintf("%d items", v.Len())
	case reflect.String:
		s := v.String()
		return fmt.Sprintf("%q (%d characters)", s, utf8.RuneCountInString(s))
	default:
		return fmt.Sprint(v.Interface())
	}
}
