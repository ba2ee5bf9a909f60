package params

import (
	stderrors "errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/palette"
)

const tagName = "query"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get(tagName), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("palette", func(fl validator.FieldLevel) bool {
		return palette.Has(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// DecodeChart decodes and validates chart parameters.
func DecodeChart(v Values) (Chart, error) {
	c := DefaultChart()
	if err := requirePointValues(v); err != nil {
		return Chart{}, err
	}
	if err := decode(v, &c); err != nil {
		return Chart{}, err
	}
	if gaps := float64(len(c.Data) - 1); gaps*c.BarMargin >= 1 {
		return Chart{}, errors.New(errors.ErrCodeInvalidInput,
			"barMargin %g leaves no room for %d bars (must be below %.4g)", c.BarMargin, len(c.Data), 1/gaps)
	}
	return c, nil
}

// DecodeAvatar decodes and validates mesh avatar parameters.
func DecodeAvatar(v Values) (Avatar, error) {
	a := DefaultAvatar()
	if err := decode(v, &a); err != nil {
		return Avatar{}, err
	}
	return a, nil
}

// DecodeOG decodes and validates OG card parameters.
func DecodeOG(v Values) (OG, error) {
	o := DefaultOG()
	if err := decode(v, &o); err != nil {
		return OG{}, err
	}
	return o, nil
}

// decode overlays v onto the defaults already in out, then validates.
func decode(v Values, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    tagName,
		DecodeHook: strictHook,
		MatchName:  func(mapKey, fieldName string) bool { return mapKey == fieldName },
		Result:     out,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build decoder")
	}
	if err := dec.Decode(map[string]any(dropEmpty(v))); err != nil {
		return decodeError(err)
	}
	if err := validate.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

// strictHook converts query strings into numbers and booleans. Unlike
// mapstructure's weak typing it rejects anything that is not a clean
// number or the literals "true" and "false".
func strictHook(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Float64, reflect.Float32:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("must be a number, got %q", s)
		}
		return f, nil
	case reflect.Bool:
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("must be \"true\" or \"false\", got %q", s)
	}
	return data, nil
}

// dropEmpty removes empty-string leaves so they fall back to defaults.
func dropEmpty(v Values) Values {
	out := make(Values, len(v))
	for k, val := range v {
		switch val := val.(type) {
		case string:
			if val == "" {
				continue
			}
		case map[string]any:
			out[k] = map[string]any(dropEmpty(val))
			continue
		case []any:
			list := make([]any, len(val))
			for i, item := range val {
				if m, ok := item.(map[string]any); ok {
					item = map[string]any(dropEmpty(m))
				}
				list[i] = item
			}
			out[k] = list
			continue
		}
		out[k] = val
	}
	return out
}

// requirePointValues checks that every data point carries a y value;
// a missing y would otherwise decode silently as zero.
func requirePointValues(v Values) error {
	list, ok := v["data"].([]any)
	if !ok {
		return nil
	}
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if y, ok := m["y"].(string); !ok || y == "" {
			return errors.New(errors.ErrCodeInvalidInput, "data[%d].y is required", i)
		}
	}
	return nil
}

func decodeError(err error) error {
	var de *mapstructure.DecodeError
	if stderrors.As(err, &de) {
		return errors.New(errors.ErrCodeInvalidInput, "%s %s", de.Name(), describeCause(de.Unwrap()))
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid parameters")
}

func describeCause(err error) string {
	var ut *mapstructure.UnconvertibleTypeError
	if stderrors.As(err, &ut) {
		return "has the wrong shape"
	}
	return err.Error()
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid parameters")
	}
	fe := verrs[0]
	return errors.New(errors.ErrCodeInvalidInput, "%s %s", fieldName(fe), describe(fe))
}

// fieldName strips the struct name from the namespace: "Chart.data[1].y"
// becomes "data[1].y".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "min":
		switch kind {
		case reflect.Slice:
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		switch kind {
		case reflect.Slice:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "palette":
		return fmt.Sprintf("must be a palette colour (%s)", strings.Join(palette.Names(), ", "))
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
