// Package inspector turns tagged component structs into display rows. It has
// no rendering dependency; the viewer draws the rows it returns.
package inspector

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Widget types for rendering fields.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetAngle
	WidgetBool
	WidgetVec
	WidgetSkip
)

var vecType = reflect.TypeOf(r2.Vec{})

// Field represents a component field with rendering hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// ParseTag parses an inspect struct tag.
// Format: `inspect:"widget[,option:value...]"`
// Examples:
//
//	`inspect:"bar"`
//	`inspect:"bar,max:200"`
//	`inspect:"vec"`
//	`inspect:"label,fmt:%.1f"`
//	`inspect:"skip"`
func ParseTag(tag string) (Widget, map[string]string) {
	options := make(map[string]string)

	if tag == "" {
		return WidgetAuto, options
	}

	parts := strings.Split(tag, ",")
	widgetStr := strings.TrimSpace(parts[0])

	var widget Widget
	switch widgetStr {
	case "label":
		widget = WidgetLabel
	case "bar":
		widget = WidgetBar
	case "angle":
		widget = WidgetAngle
	case "bool":
		widget = WidgetBool
	case "vec":
		widget = WidgetVec
	case "skip":
		widget = WidgetSkip
	default:
		widget = WidgetAuto
	}

	for _, part := range parts[1:] {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) == 2 {
			options[kv[0]] = kv[1]
		}
	}

	return widget, options
}

// ExtractFields uses reflection to extract all fields from a component.
func ExtractFields(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var fields []Field

	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)

		if !sf.IsExported() {
			continue
		}

		widget, options := ParseTag(sf.Tag.Get("inspect"))
		if widget == WidgetSkip {
			continue
		}
		if widget == WidgetAuto {
			widget = autoDetectWidget(fv)
		}

		fields = append(fields, Field{
			Name:    sf.Name,
			Value:   fv.Interface(),
			Widget:  widget,
			Options: options,
		})
	}

	return fields
}

// autoDetectWidget chooses a widget based on the field type.
func autoDetectWidget(v reflect.Value) Widget {
	if v.Type() == vecType {
		return WidgetVec
	}
	switch v.Kind() {
	case reflect.Bool:
		return WidgetBool
	case reflect.Array, reflect.Slice:
		return WidgetBar
	default:
		return WidgetLabel
	}
}

// FormatValue formats a field value as a string.
func FormatValue(value any, fmtStr string) string {
	if fmtStr == "" {
		switch v := value.(type) {
		case float32:
			return fmt.Sprintf("%.2f", v)
		case float64:
			return fmt.Sprintf("%.2f", v)
		case r2.Vec:
			return fmt.Sprintf("(%.1f, %.1f)", v.X, v.Y)
		case fmt.Stringer:
			return v.String()
		default:
			return fmt.Sprintf("%v", value)
		}
	}
	if v, ok := value.(r2.Vec); ok {
		return "(" + fmt.Sprintf(fmtStr, v.X) + ", " + fmt.Sprintf(fmtStr, v.Y) + ")"
	}
	return fmt.Sprintf(fmtStr, value)
}

// GetMax returns the max option as a float, defaulting to 1.0.
func GetMax(options map[string]string) float64 {
	if maxStr, ok := options["max"]; ok {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil && max != 0 {
			return max
		}
	}
	return 1.0
}

// GetFloatValue extracts a float64 from numeric types.
func GetFloatValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint32:
		return float64(v), true
	default:
		return 0, false
	}
}

// Row is one rendered line of a component section.
type Row struct {
	Label string
	Text  string
	// Ratio is the bar fill in [0, 1] for WidgetBar rows.
	Ratio float64
	// Angle is the heading in radians for WidgetVec and WidgetAngle rows.
	Angle  float64
	On     bool
	Widget Widget
}

// Section groups the rows of one component.
type Section struct {
	Title string
	Rows  []Row
}

// Describe builds a titled section for a component. Marker components with no
// exported fields produce a section with no rows.
func Describe(component any) Section {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	title := ""
	if t != nil {
		title = t.Name()
	}

	fields := ExtractFields(component)
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, describeField(f))
	}
	return Section{Title: title, Rows: rows}
}

func describeField(f Field) Row {
	row := Row{Label: f.Name, Widget: f.Widget}
	fmtStr := f.Options["fmt"]

	switch f.Widget {
	case WidgetBool:
		b, _ := f.Value.(bool)
		row.On = b
		row.Text = strconv.FormatBool(b)
	case WidgetBar:
		v, ok := GetFloatValue(f.Value)
		if !ok {
			row.Widget = WidgetLabel
			row.Text = FormatValue(f.Value, fmtStr)
			break
		}
		row.Ratio = clamp01(v / GetMax(f.Options))
		row.Text = FormatValue(f.Value, fmtStr)
	case WidgetVec:
		v, _ := f.Value.(r2.Vec)
		row.Angle = math.Atan2(v.Y, v.X)
		row.Text = FormatValue(v, fmtStr)
	case WidgetAngle:
		v, _ := GetFloatValue(f.Value)
		row.Angle = v
		row.Text = fmt.Sprintf("%.0f°", v*180/math.Pi)
	default:
		row.Text = FormatValue(f.Value, fmtStr)
	}
	return row
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
