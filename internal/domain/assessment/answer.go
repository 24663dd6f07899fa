package assessment

import (
	"errors"
	"fmt"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidationError carries per-field messages. For answers the field is the
// question id.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// RequiredMessage is shown inline for an unanswered required question.
const RequiredMessage = "This question is required"

// IsAnswered reports whether value counts as an answer for required checks
// and progress.
func IsAnswered(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case map[string]any:
		name, _ := v["name"].(string)
		return strings.TrimSpace(name) != ""
	case FileAnswer:
		return strings.TrimSpace(v.Name) != ""
	default:
		return true
	}
}

type FileAnswer struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
	Type string  `json:"type"`
}

// ValidateAnswer checks a value against the question's type and
// constraints. An unanswered value is always accepted here; required-ness
// is enforced on navigation and submit.
func ValidateAnswer(q Question, value any) error {
	if !IsAnswered(value) {
		return nil
	}

	switch q.Type {
	case TypeSingleChoice:
		s, ok := value.(string)
		if !ok {
			return errors.New("Select one option")
		}
		if len(q.Options) > 0 && !containsString(q.Options, s) {
			return fmt.Errorf("%q is not one of the options", s)
		}
	case TypeMultiChoice:
		vals, ok := StringList(value)
		if !ok {
			return errors.New("Select one or more options")
		}
		for _, v := range vals {
			if len(q.Options) > 0 && !containsString(q.Options, v) {
				return fmt.Errorf("%q is not one of the options", v)
			}
		}
	case TypeShortText, TypeLongText:
		s, ok := value.(string)
		if !ok {
			return errors.New("Answer must be text")
		}
		limit := q.MaxLength
		if limit <= 0 {
			limit = DefaultShortTextMaxLength
			if q.Type == TypeLongText {
				limit = DefaultLongTextMaxLength
			}
		}
		if utf8.RuneCountInString(s) > limit {
			return fmt.Errorf("Maximum %d characters allowed", limit)
		}
	case TypeNumeric:
		n, ok := Number(value)
		if !ok {
			return errors.New("Please enter a valid number")
		}
		if q.Min != nil && n < *q.Min {
			return fmt.Errorf("Value must be at least %s", formatNumber(*q.Min))
		}
		if q.Max != nil && n > *q.Max {
			return fmt.Errorf("Value must be at most %s", formatNumber(*q.Max))
		}
		if q.Step != nil && *q.Step > 0 {
			base := 0.0
			if q.Min != nil {
				base = *q.Min
			}
			steps := (n - base) / *q.Step
			if math.Abs(steps-math.Round(steps)) > 1e-9 {
				return fmt.Errorf("Value must be in steps of %s", formatNumber(*q.Step))
			}
		}
	case TypeFileUpload:
		f, ok := File(value)
		if !ok {
			return errors.New("Invalid file")
		}
		if len(q.AcceptedFileTypes) > 0 && !acceptsFile(q.AcceptedFileTypes, f) {
			return fmt.Errorf("Accepted file types: %s", strings.Join(q.AcceptedFileTypes, ", "))
		}
		if q.MaxFileSize > 0 && f.Size > q.MaxFileSize*1024*1024 {
			return fmt.Errorf("File must be smaller than %sMB", formatNumber(q.MaxFileSize))
		}
	default:
		return fmt.Errorf("unsupported question type %q", q.Type)
	}
	return nil
}

// StringList converts a decoded JSON array into strings.
func StringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Number accepts JSON numbers and numeric strings.
func Number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func File(value any) (FileAnswer, bool) {
	switch v := value.(type) {
	case FileAnswer:
		return v, true
	case map[string]any:
		f := FileAnswer{}
		f.Name, _ = v["name"].(string)
		f.Type, _ = v["type"].(string)
		if n, ok := Number(v["size"]); ok {
			f.Size = n
		}
		if f.Name == "" {
			return FileAnswer{}, false
		}
		return f, true
	}
	return FileAnswer{}, false
}

func acceptsFile(accepted []string, f FileAnswer) bool {
	ext := strings.ToLower(path.Ext(f.Name))
	mime := strings.ToLower(f.Type)
	for _, a := range accepted {
		a = strings.ToLower(strings.TrimSpace(a))
		switch {
		case a == "":
			continue
		case strings.HasPrefix(a, "."):
			if ext == a {
				return true
			}
		case strings.HasSuffix(a, "/*"):
			if mime != "" && strings.HasPrefix(mime, strings.TrimSuffix(a, "*")) {
				return true
			}
		case strings.Contains(a, "/"):
			if mime == a {
				return true
			}
		default:
			if ext == "."+a {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, it := range list {
		if it == s {
			return true
		}
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RequiredErrors returns a message for every visible required question that
// is unanswered.
func RequiredErrors(answers Answers, questions []Question) map[string]string {
	out := map[string]string{}
	for _, q := range questions {
		if q.Required && !IsAnswered(answers[q.ID]) {
			out[q.ID] = RequiredMessage
		}
	}
	return out
}
