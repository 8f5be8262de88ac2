package flow

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sequential", func() {
	var (
		layout Layout
		s      *Sequential
		up     *Endpoint
		down   *Endpoint
	)

	BeforeEach(func() {
		layout = NewLayout(Scalar("v", Unsigned(8)))

		s = NewSequential("Mul", layout, layout, 3,
			func(in Token) Token {
				return Token{"v": in["v"].(int64) * 2}
			})

		upProbe := newProbe("Up")
		up = upProbe.AddEndpoint(upProbe, Source, layout, "out")
		Expect(Connect(up, s.Endpoint(SinkName))).To(Succeed())

		downProbe := newProbe("Down")
		down = downProbe.AddEndpoint(downProbe, Sink, layout, "in")
		Expect(Connect(s.Endpoint(SourceName), down)).To(Succeed())
	})

	It("should reject a zero latency", func() {
		Expect(func() {
			NewSequential("Bad", layout, layout, 0, nil)
		}).To(Panic())
	})

	It("should accept an input when idle and pulse the trigger", func() {
		up.SetStb(true)
		up.SetPayload(Token{"v": int64(5)})

		settleAll(s)
		Expect(up.Fired()).To(BeTrue())

		stepCycle(s)
		Expect(s.Trigger()).To(BeTrue())
		Expect(s.Busy()).To(BeTrue())

		stepCycle(s)
		Expect(s.Trigger()).To(BeFalse(),
			"the trigger is a one-cycle pulse")
	})

	It("should produce the output exactly N cycles after acceptance",
		func() {
			up.SetStb(true)
			up.SetPayload(Token{"v": int64(5)})
			down.SetAck(true)

			stepCycle(s) // acceptance cycle

			up.SetStb(false)

			for cycle := 1; cycle < 3; cycle++ {
				settleAll(s)
				Expect(down.Stb()).To(BeFalse())
				stepCycle(s)
			}

			settleAll(s)
			Expect(down.Stb()).To(BeTrue())
			Expect(down.Payload()).To(Equal(Token{"v": int64(10)}))

			stepCycle(s)
			Expect(s.Busy()).To(BeFalse())
		})

	It("should not accept a new input while busy", func() {
		up.SetStb(true)
		up.SetPayload(Token{"v": int64(5)})

		stepCycle(s)

		for cycle := 0; cycle < 3; cycle++ {
			settleAll(s)
			Expect(up.Ack()).To(BeFalse())
			stepCycle(s)
		}
	})

	It("should hold the output stable across a stall", func() {
		up.SetStb(true)
		up.SetPayload(Token{"v": int64(5)})

		stepCycle(s)
		up.SetStb(false)
		stepCycle(s)
		stepCycle(s)

		for stall := 0; stall < 4; stall++ {
			settleAll(s)
			Expect(down.Stb()).To(BeTrue())
			Expect(down.Payload()).To(Equal(Token{"v": int64(10)}))
			stepCycle(s)
			Expect(s.Busy()).To(BeTrue())
		}

		down.SetAck(true)
		stepCycle(s)
		Expect(s.Busy()).To(BeFalse())
	})
})
