// Package dynamo simulates a point mass riding a frictionless vertical loop.
//
// The mass starts at the bottom of a circle of radius R with speed v0. While
// it is on the track its speed follows from energy conservation and the
// normal force per unit mass is
//
//	F = v²/R − g·cos θ
//
// The first step where F ≤ 0 detaches the mass: it keeps its position and
// tangential velocity and continues as a projectile until it reaches the
// ground (y = 0).
//
// That expression is the default [LegacyForce] model. [NewtonForce] uses the
// radial balance F = v²/R + g·cos θ instead, under which a mass launched
// below the critical speed leaves the track in the upper half of the loop.
// Where the energy term v0² − 2gR(1−cos θ) goes negative the speed is
// floored at zero and the sample is flagged Clamped.
//
//   - [Params]: immutable run parameters and the [Termination] rule
//   - [State]: the explicit state threaded through [Advance]
//   - [Sample]: one record per integration step
//   - [Simulator]: drives [Advance] and delivers samples to consumers
//
// # Delivery
//
// Samples can be consumed eagerly with [Simulator.Run], pulled one at a time
// with [Simulator.Next] (one per rendered frame), pushed through
// [Simulator.RunWithCallback], or received from [Simulator.Stream]. All four
// produce the same sequence for the same [Params].
//
// # Example
//
//	p := dynamo.DefaultParams()
//	sim, err := dynamo.New(p)
//	if err != nil {
//	    return err
//	}
//	result, err := sim.Run(ctx)
//
// # Thread Safety
//
// A Simulator is NOT safe for concurrent use. Run independent simulators in
// parallel instead; they share no state. The one exception is Reason and
// Done, which may be polled while a Stream is being drained.
package dynamo
