package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single finding. Path names the environment variable (without
// the prefix) the finding is about.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

var knownStores = map[string]struct{}{
	"memory": {}, "sqlite": {}, "postgres": {}, "mssql": {},
}

var structValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("env")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

// Validate lints cfg without mutating it. Field rules come from the struct
// tags; rules spanning several fields are checked here.
func Validate(cfg Config) []Issue {
	var issues []Issue

	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []Issue{{Severity: SeverityError, Path: "config", Message: err.Error()}}
		}
		for _, fe := range verrs {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fe.Field(),
				Message:  ruleMessage(fe),
			})
		}
	}

	kind := strings.TrimSpace(cfg.StorageKind)
	if kind != "" {
		if _, ok := knownStores[kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "STORAGE_KIND",
				Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching implementation is registered", kind),
			})
		}
		if kind != "memory" && strings.TrimSpace(cfg.StorageDSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "STORAGE_DSN",
				Message:  fmt.Sprintf("storage kind %q requires a DSN", kind),
			})
		}
	}

	if cfg.SessionTTL <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "SESSION_TTL",
			Message:  "must be a positive duration",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "SHUTDOWN_TIMEOUT",
			Message:  "must not be negative",
		})
	}

	switch cfg.MetricsBackend {
	case "pushgateway":
		if cfg.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "PUSHGATEWAY_URL",
				Message:  "required when METRICS_BACKEND is pushgateway",
			})
		}
	case "datadog":
		if cfg.DatadogAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "DATADOG_ADDR",
				Message:  "required when METRICS_BACKEND is datadog",
			})
		}
	}

	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins the error-severity issues into one error, or returns nil.
func Err(issues []Issue) error {
	var errs []error
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		}
	}
	return errors.Join(errs...)
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "url":
		return fmt.Sprintf("%q is not a valid URL", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
