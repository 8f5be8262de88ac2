package flow

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pipelined", func() {
	var (
		layout Layout
		p      *Pipelined
		up     *Endpoint
		down   *Endpoint
	)

	BeforeEach(func() {
		layout = NewLayout(Scalar("v", Unsigned(8)))

		p = NewPipelined("Inc", layout, layout, 2,
			func(in Token) Token {
				return Token{"v": in["v"].(int64) + 1}
			})

		upProbe := newProbe("Up")
		up = upProbe.AddEndpoint(upProbe, Source, layout, "out")
		Expect(Connect(up, p.Endpoint(SinkName))).To(Succeed())

		downProbe := newProbe("Down")
		down = downProbe.AddEndpoint(downProbe, Sink, layout, "in")
		Expect(Connect(p.Endpoint(SourceName), down)).To(Succeed())
	})

	It("should reject a zero depth", func() {
		Expect(func() {
			NewPipelined("Bad", layout, layout, 0, nil)
		}).To(Panic())
	})

	It("should deliver one token per cycle at full throughput", func() {
		down.SetAck(true)
		up.SetStb(true)

		var outputs []int64
		for cycle := 0; cycle < 6; cycle++ {
			up.SetPayload(Token{"v": int64(cycle)})
			settleAll(p)

			if down.Fired() {
				outputs = append(outputs, down.Payload()["v"].(int64))
			}

			stepCycle(p)
		}

		// input of cycle t emerges at cycle t+2
		Expect(outputs).To(Equal([]int64{1, 2, 3, 4}))
	})

	It("should freeze all stages while stalled", func() {
		up.SetStb(true)
		up.SetPayload(Token{"v": int64(10)})
		stepCycle(p)

		up.SetPayload(Token{"v": int64(20)})
		stepCycle(p)

		up.SetStb(false)

		// output stage holds the first token, the stall must not drop
		// the second one behind it
		for stall := 0; stall < 3; stall++ {
			settleAll(p)
			Expect(down.Stb()).To(BeTrue())
			Expect(down.Payload()).To(Equal(Token{"v": int64(11)}))
			Expect(p.PipeCE()).To(BeFalse())
			Expect(up.Ack()).To(BeFalse())
			stepCycle(p)
		}

		down.SetAck(true)
		settleAll(p)
		Expect(down.Payload()).To(Equal(Token{"v": int64(11)}))
		stepCycle(p)

		settleAll(p)
		Expect(down.Payload()).To(Equal(Token{"v": int64(21)}))
		stepCycle(p)

		settleAll(p)
		Expect(down.Stb()).To(BeFalse())
		Expect(p.Busy()).To(BeFalse())
	})

	It("should report busy only while holding in-flight tokens", func() {
		Expect(p.Busy()).To(BeFalse())

		up.SetStb(true)
		up.SetPayload(Token{"v": int64(1)})
		stepCycle(p)
		up.SetStb(false)

		Expect(p.Busy()).To(BeTrue())

		down.SetAck(true)
		stepCycle(p)
		Expect(p.Busy()).To(BeTrue())

		stepCycle(p)
		Expect(p.Busy()).To(BeFalse())
	})
})
