// Package systems contains ECS systems for the simulation.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/boundary"
	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/geom"
)

// Agent is a read-only view of one agent taken before any agent moves this
// tick.
type Agent struct {
	Entity        ecs.Entity
	Pos           r2.Vec
	Heading       r2.Vec
	Speed         float64
	Vision        float64
	PersonalSpace float64
	Player        bool
	Tamed         bool
}

// Breakdown holds the unweighted steering terms before normalization.
type Breakdown struct {
	Boundary   r2.Vec
	Separation r2.Vec
	Cohesion   r2.Vec
	Alignment  r2.Vec
}

// SteeringResult is the output of ComputeSteering.
type SteeringResult struct {
	Force    r2.Vec
	Speed    float64
	HasSpeed bool
	Avoiding bool
	Forces   Breakdown
}

// Probes holds the three boundary probe endpoints for an agent.
type Probes struct {
	Forward, Left, Right r2.Vec
}

// ProbePoints returns the probe endpoints cast from pos along heading.
func ProbePoints(pos, heading r2.Vec, vision float64, cfg *config.Config) Probes {
	v := r2.Scale(vision, heading)
	return Probes{
		Forward: r2.Add(pos, v),
		Left:    r2.Add(pos, cfg.Derived.LeftProbe.Apply(v)),
		Right:   r2.Add(pos, cfg.Derived.RightProbe.Apply(v)),
	}
}

// BoundaryForce returns the avoidance direction for an agent and whether any
// probe touched a wall. When both side probes are inside a wall the deeper one
// wins.
func BoundaryForce(pos, heading r2.Vec, vision float64, field boundary.Field, cfg *config.Config) (r2.Vec, bool) {
	probes := ProbePoints(pos, heading, vision, cfg)
	df := field.DistanceToEdge(probes.Forward)
	dl := field.DistanceToEdge(probes.Left)
	dr := field.DistanceToEdge(probes.Right)

	switch {
	case dl < 0 && dl < dr:
		return cfg.Derived.RightForce.Apply(heading), true
	case dr < 0:
		return cfg.Derived.LeftForce.Apply(heading), true
	case df < 0:
		return field.EdgeNormal(probes.Forward), true
	}
	return r2.Vec{}, false
}

// ComputeSteering derives the steering force and optional speed request for
// self from the pre-tick snapshot. all may be any subset of the snapshot that
// contains every agent within reach of self; self itself is skipped. player is
// nil when the level has no player.
func ComputeSteering(self Agent, all []Agent, player *Agent, field boundary.Field, cfg *config.Config, wander bool) SteeringResult {
	if self.Player {
		return SteeringResult{}
	}

	var res SteeringResult
	b := &cfg.Boids

	res.Forces.Boundary, res.Avoiding = BoundaryForce(self.Pos, self.Heading, self.Vision, field, cfg)

	for i := range all {
		other := &all[i]
		if other.Entity == self.Entity {
			continue
		}
		diff := r2.Sub(other.Pos, self.Pos)
		dist := r2.Norm(diff)

		maxSpace := math.Max(self.PersonalSpace, other.PersonalSpace)
		maxVision := math.Max(self.Vision, other.Vision)

		if dist < maxSpace {
			res.Forces.Separation = r2.Add(res.Forces.Separation, r2.Scale(-(1 - dist/maxSpace), diff))
			continue
		}
		if dist < maxVision {
			// Falloff is measured against self's own vision, so a neighbor seen
			// only through its wider vision aligns against its heading.
			factor, falloff := 1.0, 0.0
			if self.Vision > 0 {
				falloff = 1 - dist/self.Vision
			}
			if other.Player {
				factor, falloff = b.PlayerInfluence, 1
			}
			res.Forces.Cohesion = r2.Add(res.Forces.Cohesion, r2.Scale(factor, diff))
			res.Forces.Alignment = r2.Add(res.Forces.Alignment, r2.Scale(falloff*factor, other.Heading))
		}
	}

	if self.Tamed && player != nil {
		res.Speed, res.HasSpeed = predictSpeed(self, player, cfg)
	}

	alignWeight := 0.0
	if self.Tamed || wander {
		alignWeight = b.Alignment
	}

	sum := r2.Scale(b.Boundary, geom.NormalizeOrZero(res.Forces.Boundary))
	sum = r2.Add(sum, r2.Scale(b.Separation, geom.NormalizeOrZero(res.Forces.Separation)))
	sum = r2.Add(sum, r2.Scale(alignWeight, geom.NormalizeOrZero(res.Forces.Alignment)))
	sum = r2.Add(sum, r2.Scale(b.Cohesion, geom.NormalizeOrZero(res.Forces.Cohesion)))
	res.Force = geom.NormalizeOrZero(sum)

	return res
}

// predictSpeed compares where self would be after one step at max and at min
// speed against where the player will be, and asks for whichever speed keeps
// the follower from overshooting or falling behind.
func predictSpeed(self Agent, player *Agent, cfg *config.Config) (float64, bool) {
	b := &cfg.Boids
	maxDest := r2.Add(self.Pos, r2.Scale(b.MaxSpeed, self.Heading))
	minDest := r2.Add(self.Pos, r2.Scale(b.MinSpeed, self.Heading))
	playerDest := r2.Add(player.Pos, r2.Scale(player.Speed, player.Heading))

	maxDist := r2.Norm(r2.Sub(maxDest, playerDest))
	minDist := r2.Norm(r2.Sub(minDest, playerDest))
	spaces := self.PersonalSpace + player.PersonalSpace

	switch {
	case maxDist > minDist && maxDist > spaces:
		return b.MinSpeed, true
	case minDist > maxDist && minDist > spaces:
		return b.MaxSpeed, true
	}
	return 0, false
}

// SteeringSystem computes steering for every agent from a snapshot and stages
// the result on the Steering component. Nothing moves here.
type SteeringSystem struct {
	filter    ecs.Filter2[components.Transform, components.Boid]
	playerMap *ecs.Map[components.Player]
	tamedMap  *ecs.Map[components.Tamed]
	steerMap  *ecs.Map[components.Steering]

	grid       *SpatialGrid
	candidates []int
	neighbors  []Agent

	agents  []Agent
	results []SteeringResult
}

// NewSteeringSystem creates a new steering system.
func NewSteeringSystem(w *ecs.World) *SteeringSystem {
	return &SteeringSystem{
		filter:    *ecs.NewFilter2[components.Transform, components.Boid](w).With(ecs.C[components.Steering]()),
		playerMap: ecs.NewMap[components.Player](w),
		tamedMap:  ecs.NewMap[components.Tamed](w),
		steerMap:  ecs.NewMap[components.Steering](w),
		grid:      NewSpatialGrid(),
	}
}

// Update runs the steering system.
func (s *SteeringSystem) Update(w *ecs.World, field boundary.Field, cfg *config.Config, wander bool) {
	s.agents = s.agents[:0]
	playerIdx := -1

	// First pass: snapshot
	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		tr, boid := query.Get()
		a := Agent{
			Entity:        e,
			Pos:           tr.Pos,
			Heading:       boid.Heading,
			Speed:         boid.Speed,
			Vision:        boid.Vision,
			PersonalSpace: boid.PersonalSpace,
			Player:        s.playerMap.Has(e),
			Tamed:         s.tamedMap.Has(e),
		}
		if a.Player && playerIdx < 0 {
			playerIdx = len(s.agents)
		}
		s.agents = append(s.agents, a)
	}

	var player *Agent
	if playerIdx >= 0 {
		player = &s.agents[playerIdx]
	}

	// Every interaction is bounded by the larger of the two visions, so cells
	// of the widest vision hold all candidates.
	reach := 0.0
	for i := range s.agents {
		reach = max(reach, s.agents[i].Vision, s.agents[i].PersonalSpace)
	}
	s.grid.Rebuild(s.agents, reach)

	// Second pass: compute everything before writing anything
	s.results = s.results[:0]
	for i := range s.agents {
		s.candidates = s.grid.QueryInto(s.candidates[:0], s.agents[i].Pos, reach)
		s.neighbors = s.neighbors[:0]
		for _, j := range s.candidates {
			s.neighbors = append(s.neighbors, s.agents[j])
		}
		s.results = append(s.results, ComputeSteering(s.agents[i], s.neighbors, player, field, cfg, wander))
	}

	for i := range s.agents {
		r := &s.results[i]
		st := s.steerMap.Get(s.agents[i].Entity)
		st.Force = r.Force
		st.Speed = r.Speed
		st.HasSpeed = r.HasSpeed
		st.Avoiding = r.Avoiding
	}
}

// Snapshot returns the agents captured by the last Update. The slice is reused
// on the next call.
func (s *SteeringSystem) Snapshot() []Agent {
	return s.agents
}

// Results returns the results computed by the last Update, aligned with
// Snapshot.
func (s *SteeringSystem) Results() []SteeringResult {
	return s.results
}
