package actors

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flownetlab/flownet/flow"
	"github.com/flownetlab/flownet/flow/simflow"
)

func newParamSender(name string, layout flow.Layout, params []flow.Token,
) *simflow.Agent {
	idx := 0

	behavior := simflow.BehaviorFunc(
		func(_ []*simflow.TokenRequest) []*simflow.TokenRequest {
			if idx >= len(params) {
				return nil
			}

			req := simflow.Send("out", params[idx])
			idx++

			return []*simflow.TokenRequest{req}
		})

	return simflow.MakeAgentBuilder().
		WithSource("out", layout).
		WithBehavior(behavior).
		Build(name)
}

func newValueCollector(name string, layout flow.Layout, received *[]int64,
) *simflow.Agent {
	behavior := simflow.BehaviorFunc(
		func(completed []*simflow.TokenRequest) []*simflow.TokenRequest {
			for _, r := range completed {
				*received = append(*received, r.Payload["value"].(int64))
			}

			return []*simflow.TokenRequest{simflow.Receive("in")}
		})

	return simflow.MakeAgentBuilder().
		WithSink("in", layout).
		WithBehavior(behavior).
		Build(name)
}

var _ = Describe("IntSequence", func() {
	It("should expose the max parameter layout without an offset", func() {
		layout := IntSequenceSinkLayout(16, 0)
		Expect(layout.FieldNames()).To(Equal([]string{"max"}))
	})

	It("should expose the count and offset parameter layout", func() {
		layout := IntSequenceSinkLayout(16, 10)
		Expect(layout.FieldNames()).To(Equal([]string{"count", "offset"}))
	})

	It("should emit 0..max-1 for one parameter token", func() {
		var received []int64

		gen := NewIntSequence("Gen", 16, 0)
		sender := newParamSender("Sender",
			IntSequenceSinkLayout(16, 0),
			[]flow.Token{{"max": int64(5)}})
		collector := newValueCollector("Collector",
			IntSequenceSourceLayout(16), &received)

		Expect(flow.Connect(
			sender.Endpoint("out"), gen.Endpoint("sink"))).To(Succeed())
		Expect(flow.Connect(
			gen.Endpoint("source"), collector.Endpoint("in"),
		)).To(Succeed())

		e := simflow.NewEngine()
		e.Register(sender)
		e.Register(gen)
		e.Register(collector)

		done := e.RunUntil(func() bool {
			return len(received) == 5
		}, 100)

		Expect(done).To(BeTrue())
		Expect(received).To(Equal([]int64{0, 1, 2, 3, 4}))
	})

	It("should emit offset..offset+count-1 in offset mode", func() {
		var received []int64

		gen := NewIntSequence("Gen", 16, 16)
		sender := newParamSender("Sender",
			IntSequenceSinkLayout(16, 16),
			[]flow.Token{{"count": int64(3), "offset": int64(10)}})
		collector := newValueCollector("Collector",
			IntSequenceSourceLayout(16), &received)

		Expect(flow.Connect(
			sender.Endpoint("out"), gen.Endpoint("sink"))).To(Succeed())
		Expect(flow.Connect(
			gen.Endpoint("source"), collector.Endpoint("in"),
		)).To(Succeed())

		e := simflow.NewEngine()
		e.Register(sender)
		e.Register(gen)
		e.Register(collector)

		done := e.RunUntil(func() bool {
			return len(received) == 3
		}, 100)

		Expect(done).To(BeTrue())
		Expect(received).To(Equal([]int64{10, 11, 12}))
	})

	It("should accept a new parameter token after finishing a range",
		func() {
			var received []int64

			gen := NewIntSequence("Gen", 16, 0)
			sender := newParamSender("Sender",
				IntSequenceSinkLayout(16, 0),
				[]flow.Token{
					{"max": int64(2)},
					{"max": int64(3)},
				})
			collector := newValueCollector("Collector",
				IntSequenceSourceLayout(16), &received)

			Expect(flow.Connect(
				sender.Endpoint("out"), gen.Endpoint("sink"),
			)).To(Succeed())
			Expect(flow.Connect(
				gen.Endpoint("source"), collector.Endpoint("in"),
			)).To(Succeed())

			e := simflow.NewEngine()
			e.Register(sender)
			e.Register(gen)
			e.Register(collector)

			done := e.RunUntil(func() bool {
				return len(received) == 5
			}, 200)

			Expect(done).To(BeTrue())
			Expect(received).To(Equal([]int64{0, 1, 0, 1, 2}))
		})
})
