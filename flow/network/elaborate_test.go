package network

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flownetlab/flownet/flow"
)

func nodeNames(g *Graph) []string {
	var names []string
	for _, n := range g.Nodes() {
		names = append(names, n.Name())
	}

	return names
}

func countPrefix(names []string, prefix string) int {
	count := 0
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			count++
		}
	}

	return count
}

var _ = Describe("Elaborate", func() {
	var g *Graph

	BeforeEach(func() {
		g = New()
	})

	It("should leave a physical chain untouched", func() {
		layout := flow.NewLayout(flow.Scalar("v", flow.Unsigned(8)))

		a := g.AddActor(newSourceActor("A", layout))
		b := g.AddActor(newSinkActor("B", layout))
		Expect(g.Connect(a, b)).To(Succeed())

		Expect(g.Elaborate()).To(Succeed())

		Expect(g.Nodes()).To(HaveLen(2))
		Expect(g.Edges()).To(HaveLen(1))
	})

	It("should resolve subrecord fan-out with exactly one splitter",
		func() {
			wide := flow.NewLayout(
				flow.Scalar("a", flow.Unsigned(16)),
				flow.Scalar("b", flow.Unsigned(16)),
			)

			src := g.AddActor(newSourceActor("Producer", wide))
			snkA := g.AddActor(newSinkActor("ConsumerA",
				flow.NewLayout(flow.Scalar("a", flow.Unsigned(16)))))
			snkB := g.AddActor(newSinkActor("ConsumerB",
				flow.NewLayout(flow.Scalar("b", flow.Unsigned(16)))))

			Expect(g.AddConnection(Connection{
				From: src, To: snkA, FromFields: []string{"a"},
			})).To(Succeed())
			Expect(g.AddConnection(Connection{
				From: src, To: snkB, FromFields: []string{"b"},
			})).To(Succeed())

			Expect(g.Elaborate()).To(Succeed())

			Expect(g.IsAbstract()).To(BeFalse())
			Expect(countPrefix(nodeNames(g), "Splitter")).To(Equal(1))
			Expect(g.Nodes()).To(HaveLen(4))
			Expect(g.Edges()).To(HaveLen(3))
		})

	It("should resolve whole-record duplication with one splitter", func() {
		layout := flow.NewLayout(flow.Scalar("v", flow.Unsigned(8)))

		src := g.AddActor(newSourceActor("Producer", layout))
		snkA := g.AddActor(newSinkActor("ConsumerA", layout))
		snkB := g.AddActor(newSinkActor("ConsumerB", layout))

		Expect(g.Connect(src, snkA)).To(Succeed())
		Expect(g.Connect(src, snkB)).To(Succeed())

		Expect(g.Elaborate()).To(Succeed())

		Expect(g.IsAbstract()).To(BeFalse())
		Expect(countPrefix(nodeNames(g), "Splitter")).To(Equal(1))
	})

	It("should resolve fan-in with one combinator", func() {
		wide := flow.NewLayout(
			flow.Scalar("a", flow.Unsigned(8)),
			flow.Scalar("b", flow.Unsigned(8)),
		)

		srcA := g.AddActor(newSourceActor("ProducerA",
			flow.NewLayout(flow.Scalar("a", flow.Unsigned(8)))))
		srcB := g.AddActor(newSourceActor("ProducerB",
			flow.NewLayout(flow.Scalar("b", flow.Unsigned(8)))))
		snk := g.AddActor(newSinkActor("Consumer", wide))

		Expect(g.AddConnection(Connection{
			From: srcA, To: snk, ToFields: []string{"a"},
		})).To(Succeed())
		Expect(g.AddConnection(Connection{
			From: srcB, To: snk, ToFields: []string{"b"},
		})).To(Succeed())

		Expect(g.Elaborate()).To(Succeed())

		Expect(g.IsAbstract()).To(BeFalse())
		Expect(countPrefix(nodeNames(g), "Combinator")).To(Equal(1))
		Expect(g.Nodes()).To(HaveLen(4))
		Expect(g.Edges()).To(HaveLen(3))
	})

	It("should instantiate an abstract actor from its attachments",
		func() {
			layout := flow.NewLayout(flow.Scalar("v", flow.Unsigned(8)))

			src := g.AddActor(newSourceActor("Producer", layout))
			mid := g.AddAbstract("Identity", identityTemplate{}, nil)
			snk := g.AddActor(newSinkActor("Consumer", layout))

			Expect(g.Connect(src, mid)).To(Succeed())
			Expect(g.Connect(mid, snk)).To(Succeed())

			Expect(g.Elaborate()).To(Succeed())

			Expect(g.IsAbstract()).To(BeFalse())

			actor := g.Node(mid).Actor()
			Expect(actor).NotTo(BeNil())
			Expect(actor.Name()).To(Equal("Identity"))
			Expect(actor.Endpoint("sink").Layout().Equal(layout)).
				To(BeTrue())
		})

	It("should report an unresolvable abstract actor", func() {
		g.AddAbstract("Dangling", identityTemplate{}, nil)

		err := g.Elaborate()
		Expect(err).To(HaveOccurred())
		Expect(flow.IsKind(err, flow.ErrUnresolvedAbstractActor)).
			To(BeTrue())
	})

	It("should reject an edge between non-identical layouts", func() {
		narrow := flow.NewLayout(flow.Scalar("v", flow.Unsigned(8)))
		wideLayout := flow.NewLayout(flow.Scalar("v", flow.Unsigned(16)))

		a := g.AddActor(newSourceActor("A", narrow))
		b := g.AddActor(newSinkActor("B", wideLayout))
		Expect(g.Connect(a, b)).To(Succeed())

		err := g.Elaborate()
		Expect(err).To(HaveOccurred())
		Expect(flow.IsKind(err, flow.ErrLayoutMismatch)).To(BeTrue())
	})

	It("should be idempotent", func() {
		wide := flow.NewLayout(
			flow.Scalar("a", flow.Unsigned(16)),
			flow.Scalar("b", flow.Unsigned(16)),
		)

		src := g.AddActor(newSourceActor("Producer", wide))
		snkA := g.AddActor(newSinkActor("ConsumerA",
			flow.NewLayout(flow.Scalar("a", flow.Unsigned(16)))))
		snkB := g.AddActor(newSinkActor("ConsumerB",
			flow.NewLayout(flow.Scalar("b", flow.Unsigned(16)))))

		Expect(g.AddConnection(Connection{
			From: src, To: snkA, FromFields: []string{"a"},
		})).To(Succeed())
		Expect(g.AddConnection(Connection{
			From: src, To: snkB, FromFields: []string{"b"},
		})).To(Succeed())

		Expect(g.Elaborate()).To(Succeed())
		nodesAfterFirst := len(g.Nodes())
		edgesAfterFirst := len(g.Edges())

		Expect(g.Elaborate()).To(Succeed())
		Expect(g.Nodes()).To(HaveLen(nodesAfterFirst))
		Expect(g.Edges()).To(HaveLen(edgesAfterFirst))
	})

	It("should run registered passes", func() {
		layout := flow.NewLayout(flow.Scalar("v", flow.Unsigned(8)))

		a := g.AddActor(newSourceActor("A", layout))
		b := g.AddActor(newSinkActor("B", layout))
		Expect(g.Connect(a, b)).To(Succeed())

		invoked := 0
		g.RegisterPass(func(_ *Graph) error {
			invoked++
			return nil
		})

		Expect(g.Elaborate()).To(Succeed())
		Expect(invoked).To(BeNumerically(">", 0))
	})
})
