package plumbing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flownetlab/flownet/flow"
)

var _ = Describe("Buffer", func() {
	var (
		b    *Buffer
		up   *flow.Endpoint
		down *flow.Endpoint
	)

	BeforeEach(func() {
		layout := flow.NewLayout(flow.Scalar("v", flow.Unsigned(8)))
		b = NewBuffer("Buf", layout)

		up = driveInto(b.Endpoint("sink"))
		down = drainFrom(b.Endpoint("source"))
	})

	It("should delay each token by one cycle", func() {
		down.SetAck(true)
		up.SetStb(true)
		up.SetPayload(flow.Token{"v": int64(7)})

		settleAll(b)
		Expect(down.Stb()).To(BeFalse())
		stepCycle(b)

		up.SetStb(false)
		settleAll(b)
		Expect(down.Stb()).To(BeTrue())
		Expect(down.Payload()).To(Equal(flow.Token{"v": int64(7)}))
	})

	It("should sustain one token per cycle", func() {
		down.SetAck(true)
		up.SetStb(true)

		var outputs []int64
		for cycle := 0; cycle < 5; cycle++ {
			up.SetPayload(flow.Token{"v": int64(cycle)})
			settleAll(b)

			if down.Fired() {
				outputs = append(outputs, down.Payload()["v"].(int64))
			}

			stepCycle(b)
		}

		Expect(outputs).To(Equal([]int64{0, 1, 2, 3}))
	})

	It("should hold the stored token across a stall", func() {
		up.SetStb(true)
		up.SetPayload(flow.Token{"v": int64(7)})
		stepCycle(b)
		up.SetStb(false)

		for stall := 0; stall < 3; stall++ {
			settleAll(b)
			Expect(down.Stb()).To(BeTrue())
			Expect(down.Payload()).To(Equal(flow.Token{"v": int64(7)}))
			Expect(up.Ack()).To(BeFalse())
			stepCycle(b)
		}

		down.SetAck(true)
		stepCycle(b)
		Expect(b.Busy()).To(BeFalse())
	})
})
