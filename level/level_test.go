package level

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/boundary"
)

const arena = `{
  "name": "arena",
  "bounds": {
    "type": "subtract",
    "shape": {"type": "box", "half": [2000, 2000]},
    "cut": {"type": "box", "half": [1000, 1000]}
  },
  "finish": {"type": "translate", "offset": [0, 1000], "shape": {"type": "box", "half": [200, 100]}},
  "start": [0, -800],
  "spawn_points": [[0, 0]],
  "agents_per_spawn": 4,
  "rescue_goal": 2
}`

func TestParseAndBuild(t *testing.T) {
	def, err := Parse([]byte(arena))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lvl, err := def.Build(boundary.DefaultEpsilon)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		name string
		p    r2.Vec
		open bool
	}{
		{"centre", r2.Vec{}, true},
		{"in wall ring", r2.Vec{X: 1500}, false},
		{"finish notch carved open", r2.Vec{Y: 1050}, true},
		{"wall beside notch", r2.Vec{X: 500, Y: 1050}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if open := lvl.Walls.DistanceToEdge(tt.p) > 0; open != tt.open {
				t.Errorf("open(%v) = %v, want %v", tt.p, open, tt.open)
			}
		})
	}

	if !lvl.InFinish(r2.Vec{Y: 1000}) {
		t.Error("finish centre should be inside finish")
	}
	if lvl.InFinish(r2.Vec{}) {
		t.Error("arena centre should not be inside finish")
	}
	if h := def.Heading(); h != (r2.Vec{Y: 1}) {
		t.Errorf("default heading = %v, want (0, 1)", h)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"missing bounds", `{"name":"x","finish":{"type":"circle","radius":1},"start":[0,0],"spawn_points":[],"agents_per_spawn":1}`},
		{"unknown shape", strings.Replace(arena, `"type": "subtract"`, `"type": "hexagon"`, 1)},
		{"box without half", strings.Replace(arena, `"shape": {"type": "box", "half": [2000, 2000]}`, `"shape": {"type": "box"}`, 1)},
		{"negative agents", strings.Replace(arena, `"agents_per_spawn": 4`, `"agents_per_spawn": -1`, 1)},
		{"short vector", strings.Replace(arena, `"start": [0, -800]`, `"start": [0]`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.json)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSpawnsDeterministic(t *testing.T) {
	def := &Def{SpawnPoints: []Vec{{0, 0}, {100, 0}}, AgentsPerSpawn: 4}
	spawns := def.Spawns(10)
	if len(spawns) != 8 {
		t.Fatalf("len = %d, want 8", len(spawns))
	}

	want := []r2.Vec{{X: 10}, {Y: 10}, {X: -10}, {Y: -10}}
	for i, w := range want {
		got := spawns[i].Pos
		if math.Abs(got.X-w.X) > 1e-9 || math.Abs(got.Y-w.Y) > 1e-9 {
			t.Errorf("spawn %d pos = %v, want %v", i, got, w)
		}
		if n := r2.Norm(spawns[i].Heading); math.Abs(n-1) > 1e-9 {
			t.Errorf("spawn %d heading not unit: %v", i, spawns[i].Heading)
		}
	}
	if got := spawns[4].Pos; math.Abs(got.X-110) > 1e-9 {
		t.Errorf("second point offset = %v, want x=110", got)
	}

	again := def.Spawns(10)
	for i := range spawns {
		if spawns[i] != again[i] {
			t.Fatalf("spawn %d differs between calls", i)
		}
	}
}

func TestBuiltinLevels(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	names := reg.Names()
	if len(names) < 3 {
		t.Fatalf("expected at least 3 builtin levels, got %v", names)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			def, _ := reg.Get(name)
			lvl, err := def.Build(boundary.DefaultEpsilon)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if d := lvl.Walls.DistanceToEdge(def.Start.R2()); d <= 0 {
				t.Errorf("start %v is not in open space (d=%v)", def.Start, d)
			}
			for i, s := range def.Spawns(60) {
				if d := lvl.Walls.DistanceToEdge(s.Pos); d <= 0 {
					t.Errorf("spawn %d at %v is inside a wall (d=%v)", i, s.Pos, d)
				}
			}
			if def.Next != "" {
				if _, ok := reg.Get(def.Next); !ok {
					t.Errorf("next level %q not registered", def.Next)
				}
			}
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "arena.json")
	if err := os.WriteFile(path, []byte(arena), 0644); err != nil {
		t.Fatal(err)
	}

	def, err := reg.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(path): %v", err)
	}
	if def.Name != "arena" {
		t.Errorf("name = %q", def.Name)
	}
	if again, err := reg.Resolve("arena"); err != nil || again != def {
		t.Errorf("Resolve(name) = %v, %v", again, err)
	}
	if _, err := reg.Resolve("nowhere"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := reg.Add(def); err == nil {
		t.Error("expected duplicate error")
	}
}

func TestShapeBuildErrors(t *testing.T) {
	tests := []Shape{
		{Type: "translate"},
		{Type: "subtract", Shape: &Shape{Type: "circle", Radius: 1}},
		{Type: "triangle", Points: []Vec{{0, 0}}},
		{Type: "union", Shapes: []Shape{{Type: "bogus"}}},
	}
	for _, s := range tests {
		if _, err := s.Build(); err == nil {
			t.Errorf("Build(%+v) should fail", s)
		}
	}
}
