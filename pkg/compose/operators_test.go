package compose

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Operator Catalog", func() {
	Context("ResolveOperator", func() {
		It("should resolve known operators", func() {
			op, ok := ResolveOperator("equals")
			Expect(ok).To(BeTrue())
			Expect(op).To(Equal(OpEquals))
		})

		It("should be case and whitespace tolerant", func() {
			op, ok := ResolveOperator("  BETWEEN ")
			Expect(ok).To(BeTrue())
			Expect(op).To(Equal(OpBetween))
		})

		It("should reject unknown operators", func() {
			_, ok := ResolveOperator("matches")
			Expect(ok).To(BeFalse())
		})
	})

	Context("Arity", func() {
		It("should classify operators by value shape", func() {
			Expect(OpEquals.Arity()).To(Equal(ArityScalar))
			Expect(OpLike.Arity()).To(Equal(ArityScalar))
			Expect(OpGt.Arity()).To(Equal(ArityScalar))
			Expect(OpIn.Arity()).To(Equal(ArityList))
			Expect(OpBetween.Arity()).To(Equal(ArityRange))
		})

		It("should print arity names", func() {
			Expect(ArityScalar.String()).To(Equal("scalar"))
			Expect(ArityList.String()).To(Equal("list"))
			Expect(ArityRange.String()).To(Equal("range"))
		})
	})

	Context("Operators listing", func() {
		It("should return the full catalog in stable order", func() {
			ops := Operators()
			Expect(ops).To(HaveLen(8))
			Expect(ops[0]).To(Equal(OpEquals))
			Expect(ops).To(Equal(Operators()))
		})
	})

	Context("Selector types", func() {
		It("should resolve known types", func() {
			t, ok := ResolveSelectorType("multi_select")
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(SelectorMultiSelect))
		})

		It("should reject unknown types", func() {
			_, ok := ResolveSelectorType("slider")
			Expect(ok).To(BeFalse())
		})

		It("should pick a default operator per type", func() {
			Expect(SelectorDropdown.DefaultOperator()).To(Equal(OpEquals))
			Expect(SelectorMultiSelect.DefaultOperator()).To(Equal(OpIn))
			Expect(SelectorDateRange.DefaultOperator()).To(Equal(OpBetween))
			Expect(SelectorSingleDate.DefaultOperator()).To(Equal(OpEquals))
			Expect(SelectorText.DefaultOperator()).To(Equal(OpLike))
		})

		It("should only allow operators whose arity fits the type", func() {
			Expect(SelectorMultiSelect.AllowsOperator(OpIn)).To(BeTrue())
			Expect(SelectorMultiSelect.AllowsOperator(OpEquals)).To(BeFalse())
			Expect(SelectorDateRange.AllowsOperator(OpBetween)).To(BeTrue())
			Expect(SelectorDateRange.AllowsOperator(OpGt)).To(BeFalse())
			Expect(SelectorDropdown.AllowsOperator(OpEquals)).To(BeTrue())
			Expect(SelectorSingleDate.AllowsOperator(OpGte)).To(BeTrue())
			Expect(SelectorText.AllowsOperator(OpLike)).To(BeTrue())
			Expect(SelectorText.AllowsOperator(OpIn)).To(BeFalse())
		})

		It("should know which types carry dates and options", func() {
			Expect(SelectorDateRange.IsDate()).To(BeTrue())
			Expect(SelectorSingleDate.IsDate()).To(BeTrue())
			Expect(SelectorText.IsDate()).To(BeFalse())
			Expect(SelectorDropdown.HasOptions()).To(BeTrue())
			Expect(SelectorMultiSelect.HasOptions()).To(BeTrue())
			Expect(SelectorDateRange.HasOptions()).To(BeFalse())
		})
	})
})
