package services_test

import (
	"context"
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/services"
	"github.com/dashlite/dashlite/internal/store"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

var _ = Describe("Chart Service", func() {
	var (
		ctx       context.Context
		db        *sql.DB
		st        *store.Store
		svc       *services.ChartService
		dashboard *models.Dashboard
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, st = newTestStore()
		svc = services.NewChartService(st)
		dashboard = seedDashboard(st, "sales")
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("registering charts", func() {
		It("should accept a chart whose query probes cleanly", func() {
			chart, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Name:  "By stage",
				Query: "SELECT stage, COUNT(*) AS c FROM deals GROUP BY stage",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(chart.ID).NotTo(BeEmpty())

			query, err := svc.Query(ctx, chart.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(query).To(Equal("SELECT stage, COUNT(*) AS c FROM deals GROUP BY stage"))
		})

		It("should reject an empty name", func() {
			_, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Query: "SELECT 1",
			})
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should reject a statement that is not a SELECT", func() {
			_, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Name:  "Broken",
				Query: "DELETE FROM deals",
			})
			Expect(srvErrors.IsMalformedQueryError(err)).To(BeTrue())
		})

		// Given a syntactically plausible query over a column that does not exist
		// When we register it
		// Then the LIMIT 0 probe fails and the chart is refused
		It("should reject a query the database cannot run", func() {
			_, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Name:  "Broken",
				Query: "SELECT no_such_column FROM deals",
			})
			Expect(srvErrors.IsMalformedQueryError(err)).To(BeTrue())
		})

		It("should fail with a typed error for an unknown dashboard", func() {
			_, err := svc.Create(ctx, "no-such-dashboard", services.ChartParams{
				Name:  "By stage",
				Query: "SELECT 1",
			})
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("updating charts", func() {
		It("should revalidate the query and keep the old one on failure", func() {
			chart, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Name:  "By stage",
				Query: "SELECT stage FROM deals",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Update(ctx, chart.ID, services.ChartParams{
				Name:  "By stage",
				Query: "SELECT broken FROM deals",
			})
			Expect(srvErrors.IsMalformedQueryError(err)).To(BeTrue())

			loaded, err := svc.Get(ctx, chart.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Query).To(Equal("SELECT stage FROM deals"))
		})

		It("should persist new fields", func() {
			chart, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Name:  "By stage",
				Query: "SELECT stage FROM deals",
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := svc.Update(ctx, chart.ID, services.ChartParams{
				Name:      "By region",
				Query:     "SELECT region FROM deals",
				SortOrder: 3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("By region"))
			Expect(updated.SortOrder).To(Equal(3))
		})
	})

	Context("describing chart shape", func() {
		It("should probe result columns without running the full query", func() {
			chart, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Name:  "By stage",
				Query: "SELECT stage, COUNT(*) AS c FROM deals GROUP BY stage",
			})
			Expect(err).NotTo(HaveOccurred())

			columns, err := svc.Columns(ctx, chart.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(columns).To(Equal([]string{"stage", "c"}))
		})

		It("should list the tables a join query reads", func() {
			chart, err := svc.Create(ctx, dashboard.ID, services.ChartParams{
				Name:  "Owners",
				Query: "SELECT d.id, u.full_name FROM deals d JOIN users u ON u.id = d.owner_id",
			})
			Expect(err).NotTo(HaveOccurred())

			tables, err := svc.Tables(ctx, chart.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tables).To(Equal([]string{"deals", "users"}))
		})

		It("should list schema tables with their columns for autocomplete", func() {
			tables, err := svc.SchemaTables(ctx)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(tables))
			byName := make(map[string][]string, len(tables))
			for _, t := range tables {
				names = append(names, t.Name)
				byName[t.Name] = t.Columns
			}

			// dashlite's own metadata tables stay hidden
			Expect(names).To(Equal([]string{"deals", "users"}))
			Expect(byName["deals"]).To(Equal([]string{"id", "stage", "region", "owner_id", "amount"}))
		})
	})
})
