package dynamo_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/loopsim/internal/dynamo"
)

var _ = Describe("Loop ride", func() {
	var p dynamo.Params

	BeforeEach(func() {
		p = dynamo.DefaultParams()
	})

	run := func() *dynamo.Result {
		res, err := dynamo.Simulate(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Samples).NotTo(BeEmpty())
		return res
	}

	Context("with the radial balance force model", func() {
		BeforeEach(func() {
			p.Model = dynamo.NewtonForce
			p.Termination = dynamo.UntilLanded
		})

		It("leaves the track in the upper half and lands", func() {
			res := run()

			Expect(res.Launch).NotTo(BeNil())
			Expect(res.Launch.Theta).To(BeNumerically(">", math.Pi/2))
			Expect(res.Launch.Theta).To(BeNumerically("<", math.Pi))
			Expect(res.Launch.T).To(BeNumerically("~", 1.15, 1e-9))

			last, _ := res.Last()
			Expect(res.Reason).To(Equal(dynamo.GroundContact))
			Expect(last.Phase).To(Equal(dynamo.Landed))
			Expect(last.Y).To(BeZero())
			Expect(last.Speed).To(BeNumerically(">", 0))
			Expect(last.T).To(BeNumerically("~", 2.19, 1e-6))
		})

		It("stops on ground contact before a fixed duration elapses", func() {
			p.Termination = dynamo.FixedDuration
			res := run()
			Expect(res.Reason).To(Equal(dynamo.GroundContact))
			Expect(res.Samples).To(HaveLen(220))
		})

		It("keeps a mass at rest on the track", func() {
			p.V0 = 0
			p.MaxSteps = 100
			res := run()
			Expect(res.Reason).To(Equal(dynamo.StepLimit))
			Expect(res.Launch).To(BeNil())
			for _, s := range res.Samples {
				Expect(s.NormalForce).To(BeNumerically("~", p.Gravity, 1e-12))
			}
		})

		It("launches from the first falling step at the last contact point", func() {
			res := run()
			for i, s := range res.Samples {
				if s.Phase == dynamo.OnTrack {
					continue
				}
				prev := res.Samples[i-1]
				Expect(prev.Phase).To(Equal(dynamo.OnTrack))
				Expect(s.T - prev.T).To(BeNumerically("~", p.Dt, 1e-9))
				Expect(s.X).To(BeNumerically("~", res.Launch.X, 1e-12))
				Expect(s.Y).To(BeNumerically("~", res.Launch.Y, 1e-12))
				Expect(s.Speed).To(BeNumerically("~", res.Launch.Speed(), 1e-12))
				break
			}
		})
	})

	Context("with the default force model", func() {
		It("completes the first revolution above the critical speed", func() {
			p.V0 = 15.55
			p.Dt = 0.001
			p.Termination = dynamo.UntilLanded
			p.MaxSteps = 10000
			Expect(p.V0).To(BeNumerically(">", p.CriticalSpeed()))

			res := run()
			Expect(res.Reason).To(Equal(dynamo.StepLimit))
			Expect(res.Launch).To(BeNil())

			last, _ := res.Last()
			Expect(last.Theta).To(BeNumerically(">=", 2*math.Pi))
			for _, s := range res.Samples {
				Expect(s.Phase).To(Equal(dynamo.OnTrack))
				Expect(s.NormalForce).To(BeNumerically(">", 0))
			}
		})

		It("launches straight up when F is negative at the bottom", func() {
			p.V0 = 7
			p.Termination = dynamo.UntilLanded
			res := run()

			Expect(res.Launch).NotTo(BeNil())
			Expect(res.Launch.Theta).To(BeZero())
			Expect(res.Launch.VX).To(BeNumerically("~", 0, 1e-12))
			Expect(res.Launch.VY).To(BeNumerically("~", 7, 1e-12))
			Expect(res.Samples).To(HaveLen(144))

			last, _ := res.Last()
			Expect(last.X).To(BeNumerically("~", 0, 1e-9))
			Expect(last.Phase).To(Equal(dynamo.Landed))
		})

		It("flags the stalled samples below the top", func() {
			res := run()
			Expect(res.Reason).To(Equal(dynamo.DurationElapsed))
			Expect(res.Clamped).To(BeNumerically(">", 0))
			last, _ := res.Last()
			Expect(last.Clamped).To(BeTrue())
			Expect(last.Speed).To(BeZero())
		})
	})

	DescribeTable("sample invariants",
		func(v0 float64, model dynamo.ForceModel, term dynamo.Termination) {
			p.V0 = v0
			p.Model = model
			p.Termination = term
			p.MaxSteps = 5000
			res := run()

			Expect(res.Samples[0].T).To(BeZero())
			sawFalling := false
			for i, s := range res.Samples {
				if i > 0 {
					Expect(s.T).To(BeNumerically(">", res.Samples[i-1].T))
				}
				if s.Phase != dynamo.OnTrack {
					sawFalling = true
				}
				if sawFalling {
					Expect(s.Phase).NotTo(Equal(dynamo.OnTrack))
				}
				if s.Phase == dynamo.Landed {
					Expect(i).To(Equal(len(res.Samples) - 1))
					Expect(s.Y).To(BeZero())
				}
				if s.Phase == dynamo.OnTrack && !s.Clamped {
					r := math.Hypot(s.X, s.Y-p.Radius)
					Expect(r).To(BeNumerically("~", p.Radius, 1e-9))
				}
			}
			if term == dynamo.FixedDuration {
				last, _ := res.Last()
				Expect(last.T).To(BeNumerically("<", p.Duration))
			}
		},
		Entry("stall", 10.55, dynamo.LegacyForce, dynamo.FixedDuration),
		Entry("launch at bottom", 7.0, dynamo.LegacyForce, dynamo.UntilLanded),
		Entry("full loop", 20.0, dynamo.LegacyForce, dynamo.FixedDuration),
		Entry("upper half launch", 10.55, dynamo.NewtonForce, dynamo.UntilLanded),
		Entry("late launch", 12.5, dynamo.NewtonForce, dynamo.UntilLanded),
		Entry("from rest", 0.0, dynamo.LegacyForce, dynamo.UntilLanded),
	)
})
