package plumbing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flownetlab/flownet/flow"
)

var _ = Describe("Combinator", func() {
	var (
		c    *Combinator
		upA  *flow.Endpoint
		upB  *flow.Endpoint
		down *flow.Endpoint
	)

	BeforeEach(func() {
		sourceLayout := flow.NewLayout(
			flow.Scalar("a", flow.Unsigned(8)),
			flow.Scalar("b", flow.Unsigned(8)),
		)

		var err error
		c, err = NewCombinator("Comb", sourceLayout,
			[][]string{{"a"}, {"b"}})
		Expect(err).To(BeNil())

		upA = driveInto(c.Endpoint("sink0"))
		upB = driveInto(c.Endpoint("sink1"))
		down = drainFrom(c.Endpoint("source"))
	})

	It("should reject a subrecord naming an unknown field", func() {
		layout := flow.NewLayout(flow.Scalar("a", flow.Unsigned(8)))

		_, err := NewCombinator("Bad", layout, [][]string{{"missing"}})
		Expect(err).To(HaveOccurred())
		Expect(flow.IsKind(err, flow.ErrLayoutMismatch)).To(BeTrue())
	})

	It("should expose projected sink layouts", func() {
		Expect(c.Endpoint("sink0").Layout().FieldNames()).
			To(Equal([]string{"a"}))
		Expect(c.Endpoint("sink1").Layout().FieldNames()).
			To(Equal([]string{"b"}))
	})

	It("should not strobe until every sink strobes", func() {
		upA.SetStb(true)
		upA.SetPayload(flow.Token{"a": int64(1)})
		settleAll(c)

		Expect(down.Stb()).To(BeFalse())
		Expect(upA.Ack()).To(BeFalse())
	})

	It("should emit the union token when all sinks strobe", func() {
		upA.SetStb(true)
		upA.SetPayload(flow.Token{"a": int64(1)})
		upB.SetStb(true)
		upB.SetPayload(flow.Token{"b": int64(2)})
		settleAll(c)

		Expect(down.Stb()).To(BeTrue())
		Expect(down.Payload()).To(Equal(
			flow.Token{"a": int64(1), "b": int64(2)}))
	})

	It("should acknowledge all sinks in the same cycle", func() {
		upA.SetStb(true)
		upA.SetPayload(flow.Token{"a": int64(1)})
		upB.SetStb(true)
		upB.SetPayload(flow.Token{"b": int64(2)})
		down.SetAck(true)
		settleAll(c)

		Expect(upA.Fired()).To(BeTrue())
		Expect(upB.Fired()).To(BeTrue())
		Expect(down.Fired()).To(BeTrue())
	})

	It("should back-pressure all sinks while the downstream stalls",
		func() {
			upA.SetStb(true)
			upA.SetPayload(flow.Token{"a": int64(1)})
			upB.SetStb(true)
			upB.SetPayload(flow.Token{"b": int64(2)})
			settleAll(c)

			Expect(down.Stb()).To(BeTrue())
			Expect(upA.Ack()).To(BeFalse())
			Expect(upB.Ack()).To(BeFalse())
		})

	It("should never be busy", func() {
		Expect(c.Busy()).To(BeFalse())
	})
})
