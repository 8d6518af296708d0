package store_test

import (
	"context"
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/internal/store/migrations"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

var _ = Describe("ChartStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)

		Expect(s.Dashboard().Create(ctx, &models.Dashboard{
			ID: "d-1", Name: "Sales", Slug: "sales", RefreshIntervalSeconds: 300,
		})).To(Succeed())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newChart := func(id, name string, sortOrder int) *models.Chart {
		return &models.Chart{
			ID:          id,
			DashboardID: "d-1",
			Name:        name,
			Query:       "SELECT stage, COUNT(*) AS c FROM deals GROUP BY stage",
			SortOrder:   sortOrder,
		}
	}

	Describe("Create and Get", func() {
		It("should round-trip a chart", func() {
			Expect(s.Chart().Create(ctx, newChart("c-1", "Deals by stage", 1))).To(Succeed())

			got, err := s.Chart().Get(ctx, "c-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.DashboardID).To(Equal("d-1"))
			Expect(got.Name).To(Equal("Deals by stage"))
			Expect(got.Query).To(ContainSubstring("GROUP BY stage"))
			Expect(got.SortOrder).To(Equal(1))
		})

		It("should return a typed error for an unknown chart", func() {
			_, err := s.Chart().Get(ctx, "nope")
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("ListByDashboard", func() {
		It("should order charts by sort order, then name", func() {
			Expect(s.Chart().Create(ctx, newChart("c-1", "Zebra", 2))).To(Succeed())
			Expect(s.Chart().Create(ctx, newChart("c-2", "Alpha", 2))).To(Succeed())
			Expect(s.Chart().Create(ctx, newChart("c-3", "First", 1))).To(Succeed())

			charts, err := s.Chart().ListByDashboard(ctx, "d-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(charts).To(HaveLen(3))
			Expect(charts[0].Name).To(Equal("First"))
			Expect(charts[1].Name).To(Equal("Alpha"))
			Expect(charts[2].Name).To(Equal("Zebra"))
		})

		It("should return nothing for a dashboard without charts", func() {
			charts, err := s.Chart().ListByDashboard(ctx, "d-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(charts).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("should overwrite mutable fields", func() {
			Expect(s.Chart().Create(ctx, newChart("c-1", "Deals", 1))).To(Succeed())

			updated := newChart("c-1", "Deals (renamed)", 5)
			updated.Query = "SELECT owner_id, COUNT(*) FROM deals GROUP BY owner_id"
			Expect(s.Chart().Update(ctx, updated)).To(Succeed())

			got, err := s.Chart().Get(ctx, "c-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Deals (renamed)"))
			Expect(got.Query).To(ContainSubstring("owner_id"))
			Expect(got.SortOrder).To(Equal(5))
		})

		It("should fail for an unknown chart", func() {
			err := s.Chart().Update(ctx, newChart("ghost", "Ghost", 0))
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should remove the chart and its mappings", func() {
			Expect(s.Chart().Create(ctx, newChart("c-1", "Deals", 1))).To(Succeed())
			Expect(s.Selector().Create(ctx, &models.Selector{
				ID: "s-1", DashboardID: "d-1", Name: "region", Type: "dropdown", DefaultOperator: "equals",
			})).To(Succeed())
			Expect(s.Mapping().Create(ctx, &models.Mapping{
				ID: "m-1", SelectorID: "s-1", ChartID: "c-1", TargetColumn: "region",
			})).To(Succeed())

			Expect(s.Chart().Delete(ctx, "c-1")).To(Succeed())

			_, err := s.Chart().Get(ctx, "c-1")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
			_, err = s.Mapping().Get(ctx, "m-1")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())

			// The selector itself must survive
			_, err = s.Selector().Get(ctx, "s-1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should fail for an unknown chart", func() {
			err := s.Chart().Delete(ctx, "ghost")
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})
})
