package game

// SetTurn sets the player's turn input: +1 turns left, -1 turns right, 0 flies
// straight. Values are clamped to that range.
func (g *Game) SetTurn(turn int) {
	switch {
	case turn > 0:
		g.turn = 1
	case turn < 0:
		g.turn = -1
	default:
		g.turn = 0
	}
}

// Turn returns the current turn input.
func (g *Game) Turn() int { return g.turn }

// ToggleBoost flips the player's boost.
func (g *Game) ToggleBoost() {
	g.SetBoost(!g.boosting)
}

// SetBoost switches the player between fast with wide turns and slow with
// tight turns. Tamed agents follow the boost flag from the next tick.
func (g *Game) SetBoost(on bool) {
	g.boosting = on
	if !g.world.Alive(g.player) {
		return
	}
	b := &g.tuning.Boids
	boid := g.boidMap.Get(g.player)
	if on {
		boid.Speed, boid.TurningSpeed = b.MaxSpeed, b.MinTurnSpeed
	} else {
		boid.Speed, boid.TurningSpeed = b.MinSpeed, b.MaxTurnSpeed
	}
}

// applyPlayerInput stages the player's force for this tick. The motion system
// blends it like any other steering force.
func (g *Game) applyPlayerInput() {
	if !g.world.Alive(g.player) {
		return
	}
	boid := g.boidMap.Get(g.player)
	st := g.steerMap.Get(g.player)
	st.Clear()

	switch g.turn {
	case 1:
		st.Force = g.cfg.Derived.LeftForce.Apply(boid.Heading)
	case -1:
		st.Force = g.cfg.Derived.RightForce.Apply(boid.Heading)
	}
}
