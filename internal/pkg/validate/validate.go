// Package validate wraps go-playground/validator with English messages keyed
// by JSON field name.
package validate

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/user"
)

var (
	v          *validator.Validate
	translator ut.Translator
)

const (
	notBlankTag     = "notblank"
	taskStatusTag   = "task_status"
	taskPriorityTag = "task_priority"
	skillStatusTag  = "skill_status"
	roleTag         = "role"
	feedbackKindTag = "feedback_kind"
)

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(taskStatusTag, stringIn(coaching.IsValidTaskStatus))
	_ = v.RegisterValidation(taskPriorityTag, stringIn(coaching.IsValidTaskPriority))
	_ = v.RegisterValidation(skillStatusTag, stringIn(coaching.IsValidSkillStatus))
	_ = v.RegisterValidation(roleTag, stringIn(user.IsValidRole))
	_ = v.RegisterValidation(feedbackKindTag, stringIn(func(s string) bool {
		return s == coaching.FeedbackKindRating || s == coaching.FeedbackKindText
	}))

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, taskStatusTag, taskPriorityTag, skillStatusTag, roleTag, feedbackKindTag} {
		_ = v.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case taskStatusTag:
		return fe.Field() + " must be one of open, in_progress, completed"
	case taskPriorityTag:
		return fe.Field() + " must be one of low, medium, high"
	case skillStatusTag:
		return fe.Field() + " must be one of in_pruefung, integrationsrelevant, validiert, abgelehnt"
	case roleTag:
		return fe.Field() + " must be one of user, coach, admin"
	case feedbackKindTag:
		return fe.Field() + " must be rating or text"
	default:
		return fe.Field() + " is invalid"
	}
}

func notBlank(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String:
		return strings.TrimSpace(fl.Field().String()) != ""
	default:
		return false
	}
}

func stringIn(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return ok(fl.Field().String())
	}
}

// FieldErrors maps JSON field names to a readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fe[k])
	}
	return strings.Join(parts, "; ")
}

// Struct validates s and returns FieldErrors for tag violations.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}
