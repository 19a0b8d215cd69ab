package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateConfig checks enumerated settings. Empty values mean "use the default".
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return nil
	}
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := configFieldName(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// configFieldName maps a validator namespace (GlobalConfig.TUI.Theme) to the
// key accepted by `memo config set` (tui.theme).
func configFieldName(ns string) string {
	ns = strings.TrimPrefix(ns, "GlobalConfig.")
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		switch p {
		case "TUI":
			parts[i] = "tui"
		case "DSN":
			parts[i] = "dsn"
		case "LogLevel":
			parts[i] = "logLevel"
		default:
			if p != "" {
				parts[i] = strings.ToLower(p[:1]) + p[1:]
			}
		}
	}
	return strings.Join(parts, ".")
}
