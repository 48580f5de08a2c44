package inspector

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag     string
		widget  Widget
		options map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar", WidgetBar, map[string]string{}},
		{"bar,max:200", WidgetBar, map[string]string{"max": "200"}},
		{"label,fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"vec", WidgetVec, map[string]string{}},
		{"skip", WidgetSkip, map[string]string{}},
		{"bogus", WidgetAuto, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			widget, options := ParseTag(tt.tag)
			if widget != tt.widget {
				t.Errorf("widget = %v, want %v", widget, tt.widget)
			}
			if len(options) != len(tt.options) {
				t.Fatalf("options = %v, want %v", options, tt.options)
			}
			for k, v := range tt.options {
				if options[k] != v {
					t.Errorf("options[%q] = %q, want %q", k, options[k], v)
				}
			}
		})
	}
}

func TestExtractFieldsSkipsTagged(t *testing.T) {
	fields := ExtractFields(&components.Steering{Force: r2.Vec{X: 1}, HasSpeed: true})

	want := []struct {
		name   string
		widget Widget
	}{
		{"Force", WidgetVec},
		{"HasSpeed", WidgetBool},
		{"Avoiding", WidgetBool},
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for i, w := range want {
		if fields[i].Name != w.name || fields[i].Widget != w.widget {
			t.Errorf("field %d = %s/%v, want %s/%v", i, fields[i].Name, fields[i].Widget, w.name, w.widget)
		}
	}
}

func TestExtractFieldsNonStruct(t *testing.T) {
	if got := ExtractFields(42); got != nil {
		t.Errorf("ExtractFields(int) = %v, want nil", got)
	}
	var b *components.Boid
	if got := ExtractFields(b); got != nil {
		t.Errorf("ExtractFields(nil ptr) = %v, want nil", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		fmt   string
		want  string
	}{
		{"float default", 1.5, "", "1.50"},
		{"float fmt", 1.26, "%.1f", "1.3"},
		{"vec default", r2.Vec{X: 1, Y: -2}, "", "(1.0, -2.0)"},
		{"vec fmt", r2.Vec{X: 1, Y: 2}, "%.0f", "(1, 2)"},
		{"stringer", components.CosmeticTamed, "", "Tamed"},
		{"int", 7, "", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.value, tt.fmt); got != tt.want {
				t.Errorf("FormatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeBoid(t *testing.T) {
	boid := &components.Boid{
		ID:            7,
		Heading:       r2.Vec{Y: 1},
		Speed:         500,
		TurningSpeed:  2.5,
		Vision:        300,
		PersonalSpace: 40,
	}

	sec := Describe(boid)
	if sec.Title != "Boid" {
		t.Errorf("title = %q, want Boid", sec.Title)
	}
	if len(sec.Rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(sec.Rows))
	}

	byLabel := make(map[string]Row)
	for _, r := range sec.Rows {
		byLabel[r.Label] = r
	}

	if r := byLabel["ID"]; r.Text != "7" {
		t.Errorf("ID text = %q, want 7", r.Text)
	}
	if r := byLabel["Speed"]; r.Widget != WidgetBar || math.Abs(r.Ratio-0.5) > 1e-9 {
		t.Errorf("Speed row = %+v, want bar at 0.5", r)
	}
	if r := byLabel["TurningSpeed"]; r.Text != "2.5" {
		t.Errorf("TurningSpeed text = %q, want 2.5", r.Text)
	}
	if r := byLabel["Heading"]; math.Abs(r.Angle-math.Pi/2) > 1e-9 {
		t.Errorf("Heading angle = %v, want pi/2", r.Angle)
	}
}

func TestDescribeBarClamps(t *testing.T) {
	sec := Describe(components.Boid{Speed: 5000})
	for _, r := range sec.Rows {
		if r.Label == "Speed" && r.Ratio != 1 {
			t.Errorf("Speed ratio = %v, want 1", r.Ratio)
		}
	}
}

func TestDescribeMarker(t *testing.T) {
	sec := Describe(&components.Player{})
	if sec.Title != "Player" {
		t.Errorf("title = %q, want Player", sec.Title)
	}
	if len(sec.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(sec.Rows))
	}
}
