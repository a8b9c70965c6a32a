package portfolio

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Registration carries the admin form for creating a student login.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"pass" validate:"min=6"`
}

// FieldErrors maps a form path (e.g. "projects.0.projectDescription") to a message.
type FieldErrors map[string]string

// Has reports whether the given path failed validation.
func (fe FieldErrors) Has(path string) bool {
	_, ok := fe[path]
	return ok
}

// Paths returns the failing paths in sorted order.
func (fe FieldErrors) Paths() []string {
	paths := make([]string, 0, len(fe))
	for p := range fe {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ValidationError is returned when a record fails its schema.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields.Paths(), ", ")
}

// AsValidationError extracts field errors from err, if any.
func AsValidationError(err error) (FieldErrors, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}

var validate = newValidator()

// newValidator returns a validator that reports fields by their JSON names,
// which are also the form input names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a portfolio against the editor schema.
// POST: returns nil when every rule holds
func Validate(p Portfolio) FieldErrors {
	return collect(validate.Struct(p))
}

// ValidateRegistration checks the admin registration form.
func ValidateRegistration(r Registration) FieldErrors {
	return collect(validate.Struct(r))
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// collect converts validator output into form-path keyed messages.
func collect(err error) FieldErrors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		path := formPath(fe.Namespace())
		if _, seen := out[path]; seen {
			continue
		}
		out[path] = message(fe)
	}
	return out
}

// formPath turns "Portfolio.projects[0].projectName" into "projects.0.projectName".
func formPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func message(fe validator.FieldError) string {
	nested := strings.Contains(fe.Namespace(), "[")
	switch fe.StructField() {
	case "Email":
		return "Invalid email address."
	case "GithubProfile":
		return "GitHub Profile ID must be at least 2 characters."
	case "Name":
		if nested {
			return "Name is required."
		}
		return "Name must be at least 2 characters."
	case "Fluency":
		return "Select a fluency level."
	case "ProjectName":
		return "Project name must be at least 2 characters."
	case "ProjectDescription":
		return "Project description must be at least 10 characters."
	case "ProjectDuration":
		return "Project duration must be at least 2 characters."
	case "ProjectLink":
		return "Project link must be a valid URL."
	case "Password":
		return "Password must be at least 6 characters."
	}
	return fe.Field() + " is invalid."
}
