// Package level loads level definitions and turns them into boundary fields
// and spawn parameters.
package level

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/boundary"
	"github.com/pthm-cable/herd/geom"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://herd.local/level.schema.json"

var schema = jsonschema.MustCompileString(schemaURL, schemaJSON)

// Def is a level as authored.
type Def struct {
	Name           string    `json:"name"`
	Title          string    `json:"title,omitempty"`
	Next           string    `json:"next,omitempty"`
	Bounds         Shape     `json:"bounds"`
	Finish         Shape     `json:"finish"`
	Start          Vec       `json:"start"`
	StartHeading   Vec       `json:"start_heading,omitempty"`
	SpawnPoints    []Vec     `json:"spawn_points"`
	AgentsPerSpawn int       `json:"agents_per_spawn"`
	RescueGoal     int       `json:"rescue_goal"`
	TimeGoal       float64   `json:"time_goal"` // Seconds; 0 disables the limit
	Wander         bool      `json:"wander"`
	Grid           *GridSpec `json:"grid,omitempty"`
}

// GridSpec asks for the walls to be sampled into a boundary.Grid.
type GridSpec struct {
	Min  Vec     `json:"min"`
	Max  Vec     `json:"max"`
	Cell float64 `json:"cell"`
}

// Level is a built, ready-to-simulate level. Its fields never change.
type Level struct {
	Def    *Def
	Walls  boundary.Field
	Finish boundary.Field
}

// Spawn is where one agent starts.
type Spawn struct {
	Pos     r2.Vec
	Heading r2.Vec
}

// Parse validates data against the level schema and decodes it.
func Parse(data []byte) (*Def, error) {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding level json: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("level validation failed: %w", err)
	}

	var def Def
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("unmarshaling level: %w", err)
	}
	return &def, nil
}

// LoadFile reads and parses a level file.
func LoadFile(path string) (*Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Build compiles the geometry. The finish area is carved out of the walls so
// the player can always enter it.
func (d *Def) Build(eps float64) (*Level, error) {
	bounds, err := d.Bounds.Build()
	if err != nil {
		return nil, fmt.Errorf("level %s bounds: %w", d.Name, err)
	}
	finish, err := d.Finish.Build()
	if err != nil {
		return nil, fmt.Errorf("level %s finish: %w", d.Name, err)
	}

	walls := boundary.Subtract(bounds, finish)
	lvl := &Level{
		Def:    d,
		Finish: boundary.NewWithEpsilon(finish, eps),
	}
	if d.Grid != nil {
		lvl.Walls = boundary.NewGrid(walls, d.Grid.Min.R2(), d.Grid.Max.R2(), d.Grid.Cell)
	} else {
		lvl.Walls = boundary.NewWithEpsilon(walls, eps)
	}
	return lvl, nil
}

// Heading returns the player's starting heading, defaulting to +Y.
func (d *Def) Heading() r2.Vec {
	h := geom.NormalizeOrZero(d.StartHeading.R2())
	if geom.IsZero(h) {
		return r2.Vec{Y: 1}
	}
	return h
}

// Spawns lays out AgentsPerSpawn agents around every spawn point. Agent i of
// n faces angle 2πi/n and sits radius units out along that heading, so the
// layout is the same on every load.
func (d *Def) Spawns(radius float64) []Spawn {
	n := d.AgentsPerSpawn
	out := make([]Spawn, 0, n*len(d.SpawnPoints))
	for _, sp := range d.SpawnPoints {
		centre := sp.R2()
		for i := 0; i < n; i++ {
			h := geom.FromAngle(2 * math.Pi * float64(i) / float64(n))
			out = append(out, Spawn{
				Pos:     r2.Add(centre, r2.Scale(radius, h)),
				Heading: h,
			})
		}
	}
	return out
}

// InFinish reports whether p is inside the finish area.
func (l *Level) InFinish(p r2.Vec) bool {
	return l.Finish.DistanceToEdge(p) < 0
}
