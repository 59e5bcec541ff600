package ir_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/types"
)

var _ = Describe("Builder", func() {
	It("allocates ValueExprIds monotonically with no reuse", func() {
		b := ir.NewBuilder()
		t := types.Signal(types.Float(), types.Scalar())
		id1 := b.Constant(1.0, t)
		id2 := b.Constant(2.0, t)
		Expect(id1).To(Equal(ir.ValueExprId(0)))
		Expect(id2).To(Equal(ir.ValueExprId(1)))
	})

	It("rejects named arithmetic kernels from the denylist", func() {
		Expect(func() { ir.Kernel("fieldAdd") }).To(Panic())
	})

	It("emits a kernelZip for a two-operand opcode", func() {
		b := ir.NewBuilder()
		t := types.Signal(types.Float(), types.Scalar())
		a := b.Constant(1.0, t)
		c := b.Constant(2.0, t)
		sum := b.KernelZip([]ir.ValueExprId{a, c}, b.Opcode(ir.OpAdd), t)
		expr := b.Expr(sum)
		Expect(expr.Kind).To(Equal(ir.ExprKernelZip))
		Expect(expr.Kernel.IsOpcode()).To(BeTrue())
		Expect(expr.Kernel.Opcode()).To(Equal(ir.OpAdd))
	})

	It("allocates state slots idempotently by stable id", func() {
		b := ir.NewBuilder()
		t := types.Signal(types.Float(), types.Scalar())
		s1 := b.AllocStateSlot("block3:delay", 0.0, t)
		s2 := b.AllocStateSlot("block3:delay", 0.0, t)
		Expect(s1).To(Equal(s2))
		Expect(b.StateSlots()).To(HaveLen(1))
	})

	It("validates that every referenced slot was registered", func() {
		b := ir.NewBuilder()
		t := types.Signal(types.Float(), types.Scalar())
		c := b.Constant(1.0, t)
		ref := b.AllocSlot(c, t, 0)
		Expect(b.ValidateSlotRegistration([]ir.SlotID{ref.Slot})).To(Succeed())
		Expect(b.ValidateSlotRegistration([]ir.SlotID{ref.Slot + 100})).To(HaveOccurred())
	})

	It("derives event slots for discrete-temporality allocations", func() {
		b := ir.NewBuilder()
		t := types.Event(types.Bool(), types.Scalar())
		c := b.Constant(true, t)
		ref := b.AllocSlot(c, t, 0)
		Expect(ref.EventSlot).NotTo(BeNil())
	})
})
