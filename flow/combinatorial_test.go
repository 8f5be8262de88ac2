package flow

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Combinatorial", func() {
	var (
		layout Layout
		c      *Combinatorial
		up     *Endpoint
		down   *Endpoint
	)

	BeforeEach(func() {
		layout = NewLayout(Scalar("v", Unsigned(8)))

		c = NewCombinatorial("Inc", layout, layout,
			func(in Token) Token {
				return Token{"v": in["v"].(int64) + 1}
			})

		upProbe := newProbe("Up")
		up = upProbe.AddEndpoint(upProbe, Source, layout, "out")
		Expect(Connect(up, c.Endpoint(SinkName))).To(Succeed())

		downProbe := newProbe("Down")
		down = downProbe.AddEndpoint(downProbe, Sink, layout, "in")
		Expect(Connect(c.Endpoint(SourceName), down)).To(Succeed())
	})

	It("should never be busy", func() {
		Expect(c.Busy()).To(BeFalse())
	})

	It("should pass the strobe through and apply the datapath", func() {
		up.SetStb(true)
		up.SetPayload(Token{"v": int64(41)})
		settleAll(c)

		Expect(down.Stb()).To(BeTrue())
		Expect(down.Payload()).To(Equal(Token{"v": int64(42)}))
	})

	It("should pass the acknowledge through", func() {
		down.SetAck(true)
		settleAll(c)

		Expect(up.Ack()).To(BeTrue())

		down.SetAck(false)
		settleAll(c)

		Expect(up.Ack()).To(BeFalse())
	})

	It("should fire on both sides in the same cycle", func() {
		up.SetStb(true)
		up.SetPayload(Token{"v": int64(1)})
		down.SetAck(true)
		settleAll(c)

		Expect(up.Fired()).To(BeTrue())
		Expect(down.Fired()).To(BeTrue())
	})

	It("should stay idle without an input strobe", func() {
		settleAll(c)

		Expect(down.Stb()).To(BeFalse())
		Expect(up.Ack()).To(BeFalse())
	})
})
