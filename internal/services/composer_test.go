package services_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/services"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

var _ = Describe("Composer Service", func() {
	var (
		ctx      context.Context
		db       *sql.DB
		st       *store.Store
		composer *services.ComposerService
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, st = newTestStore()
		composer = services.NewComposerService(st)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("previewing a mapping", func() {
		// Given a chart without a WHERE clause
		// When we preview an inline dropdown mapping
		// Then a new top-level WHERE is spliced in before the tail
		It("should inject a new WHERE clause into a chart without one", func() {
			// Arrange
			chart := seedChart(st, seedDashboard(st, "sales").ID, "Deal list",
				"SELECT id, stage FROM deals ORDER BY id", 0)

			// Act
			result, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorType: compose.SelectorDropdown,
				TargetColumn: "region",
				SampleValue:  "emea",
			})

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OriginalSQL).To(Equal("SELECT id, stage FROM deals ORDER BY id"))
			Expect(result.FilteredSQL).To(Equal("SELECT id, stage FROM deals WHERE (region = 'emea') ORDER BY id"))
			Expect(result.WhereClause).To(Equal("(region = 'emea')"))
		})

		// Given a chart that already filters and aggregates
		// When we preview a multi select mapping
		// Then the predicate is ANDed onto the existing WHERE
		It("should extend an existing WHERE clause", func() {
			// Arrange
			chart := seedChart(st, seedDashboard(st, "sales").ID, "By stage",
				"SELECT stage, COUNT(*) AS c FROM deals WHERE amount > 50 GROUP BY stage", 0)

			// Act
			result, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorType: compose.SelectorMultiSelect,
				TargetColumn: "stage",
				SampleValue:  []string{"WON", "LOST"},
			})

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FilteredSQL).To(Equal(
				"SELECT stage, COUNT(*) AS c FROM deals WHERE amount > 50 AND (stage IN ('WON', 'LOST')) GROUP BY stage"))
			Expect(result.WhereClause).To(Equal("(stage IN ('WON', 'LOST'))"))
		})

		It("should take type and operator from the saved selector", func() {
			dashboard := seedDashboard(st, "sales")
			chart := seedChart(st, dashboard.ID, "Deal list", "SELECT id FROM deals", 0)
			selector := seedSelector(st, dashboard.ID, "stage", compose.SelectorMultiSelect, false)

			result, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorID:   selector.ID,
				TargetColumn: "stage",
				SampleValue:  []string{"WON"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.WhereClause).To(Equal("(stage IN ('WON'))"))
		})

		It("should resolve the selector by name within the chart's dashboard", func() {
			dashboard := seedDashboard(st, "sales")
			chart := seedChart(st, dashboard.ID, "Deal list", "SELECT id FROM deals", 0)
			seedSelector(st, dashboard.ID, "stage", compose.SelectorMultiSelect, false)

			result, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorName: "stage",
				TargetColumn: "stage",
				SampleValue:  []string{"WON"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.WhereClause).To(Equal("(stage IN ('WON'))"))
		})

		It("should fail when the named selector does not exist", func() {
			chart := seedChart(st, seedDashboard(st, "sales").ID, "Deal list", "SELECT id FROM deals", 0)

			_, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorName: "stage",
				TargetColumn: "stage",
				SampleValue:  "WON",
			})

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should let an inline operator override the selector default", func() {
			dashboard := seedDashboard(st, "sales")
			chart := seedChart(st, dashboard.ID, "Deal list", "SELECT id FROM deals", 0)
			selector := seedSelector(st, dashboard.ID, "min_amount", compose.SelectorDropdown, false)

			result, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorID:   selector.ID,
				Operator:     compose.OpGte,
				TargetColumn: "amount",
				SampleValue:  50,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.WhereClause).To(Equal("(amount >= 50)"))
		})

		It("should render date values in DATE form", func() {
			chart := seedChart(st, seedDashboard(st, "sales").ID, "Deal list", "SELECT id FROM deals", 0)

			result, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorType: compose.SelectorDateRange,
				TargetColumn: "created_at",
				SampleValue:  map[string]any{"from": "2024-01-01", "to": "2024-02-01"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.WhereClause).To(Equal("(created_at BETWEEN '2024-01-01' AND '2024-02-01')"))
		})

		It("should reject an operator the selector type cannot carry", func() {
			chart := seedChart(st, seedDashboard(st, "sales").ID, "Deal list", "SELECT id FROM deals", 0)

			_, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorType: compose.SelectorMultiSelect,
				Operator:     compose.OpEquals,
				TargetColumn: "stage",
				SampleValue:  []string{"WON"},
			})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should reject a sample value with the wrong shape", func() {
			chart := seedChart(st, seedDashboard(st, "sales").ID, "Deal list", "SELECT id FROM deals", 0)

			_, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorType: compose.SelectorMultiSelect,
				TargetColumn: "stage",
				SampleValue:  "WON",
			})

			Expect(srvErrors.IsInvalidValueShapeError(err)).To(BeTrue())
		})

		// Given a chart whose stored query is not a SELECT
		// When we preview against it
		// Then the rewriter refuses instead of guessing an insertion point
		It("should refuse a query it cannot safely rewrite", func() {
			chart := seedChart(st, seedDashboard(st, "sales").ID, "Broken",
				"UPDATE deals SET stage = 'X'", 0)

			_, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorType: compose.SelectorDropdown,
				TargetColumn: "region",
				SampleValue:  "emea",
			})

			Expect(srvErrors.IsMalformedQueryError(err)).To(BeTrue())
		})

		It("should fail with a typed error for an unknown chart", func() {
			_, err := composer.Preview(ctx, "no-such-chart", services.PreviewParams{
				SelectorType: compose.SelectorDropdown,
				TargetColumn: "region",
				SampleValue:  "emea",
			})

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// The sample value is the editor's to choose. It is checked for shape,
		// never against the selector's option list.
		It("should not check the sample value against the selector's options", func() {
			dashboard := seedDashboard(st, "sales")
			chart := seedChart(st, dashboard.ID, "Deal list", "SELECT id FROM deals", 0)
			selector := &models.Selector{
				ID:              "sel-static",
				DashboardID:     dashboard.ID,
				Name:            "stage",
				Type:            compose.SelectorDropdown,
				DefaultOperator: compose.OpEquals,
				ValueSource: &models.ValueSource{
					Kind:  models.ValueSourceStatic,
					Items: []models.OptionItem{{Value: "WON", Label: "Won"}},
				},
			}
			Expect(st.Selector().Create(ctx, selector)).To(Succeed())

			result, err := composer.Preview(ctx, chart.ID, services.PreviewParams{
				SelectorID:   selector.ID,
				TargetColumn: "stage",
				SampleValue:  "nonsense",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.WhereClause).To(Equal("(stage = 'nonsense')"))
		})
	})

	Context("applying filter values to a dashboard", func() {
		var (
			dashboard *models.Dashboard
			byStage   *models.Chart
			dealList  *models.Chart
			total     *models.Chart
			stage     *models.Selector
			region    *models.Selector
		)

		at := func(sec int) time.Time {
			return time.Date(2024, 6, 1, 12, 0, sec, 0, time.UTC)
		}

		BeforeEach(func() {
			dashboard = seedDashboard(st, "sales")
			byStage = seedChart(st, dashboard.ID, "By stage",
				"SELECT stage, COUNT(*) AS c FROM deals GROUP BY stage", 0)
			dealList = seedChart(st, dashboard.ID, "Deal list",
				"SELECT id, stage, region FROM deals ORDER BY id", 1)
			total = seedChart(st, dashboard.ID, "Total",
				"SELECT COUNT(*) AS total FROM deals", 2)

			stage = seedSelector(st, dashboard.ID, "stage", compose.SelectorMultiSelect, false)
			region = seedSelector(st, dashboard.ID, "region", compose.SelectorDropdown, false)

			seedMapping(st, stage.ID, byStage.ID, "stage", "", "", at(0))
			seedMapping(st, stage.ID, dealList.ID, "stage", "", "", at(1))
			seedMapping(st, region.ID, dealList.ID, "region", "", "", at(2))
		})

		// Given one selector fanned out to two charts
		// When we apply a single active value
		// Then each mapped chart gets its own independent rewrite
		It("should fan one selector out to every mapped chart", func() {
			// Act
			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"stage": []string{"WON"},
			})

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[byStage.ID].WhereClause).To(Equal("(stage IN ('WON'))"))
			Expect(results[byStage.ID].FilteredSQL).To(Equal(
				"SELECT stage, COUNT(*) AS c FROM deals WHERE (stage IN ('WON')) GROUP BY stage"))
			Expect(results[dealList.ID].WhereClause).To(Equal("(stage IN ('WON'))"))
		})

		// Given two selectors fanned in on the same chart
		// When both are active
		// Then their predicates AND together in mapping creation order
		It("should fan two selectors into one chart in mapping order", func() {
			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"stage":  []string{"WON", "LOST"},
				"region": "emea",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(results[dealList.ID].WhereClause).To(Equal(
				"(stage IN ('WON', 'LOST')) AND (region = 'emea')"))
			Expect(results[dealList.ID].FilteredSQL).To(Equal(
				"SELECT id, stage, region FROM deals WHERE (stage IN ('WON', 'LOST')) AND (region = 'emea') ORDER BY id"))
		})

		It("should return charts without active mappings unchanged", func() {
			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"stage": []string{"WON"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(results[total.ID].FilteredSQL).To(Equal(results[total.ID].OriginalSQL))
			Expect(results[total.ID].WhereClause).To(BeEmpty())
		})

		It("should skip inactive values and ignore unknown names", func() {
			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"stage":    []string{},
				"region":   "",
				"ignored":  "x",
				"missing2": nil,
			})

			Expect(err).NotTo(HaveOccurred())
			for _, result := range results {
				Expect(result.FilteredSQL).To(Equal(result.OriginalSQL))
				Expect(result.WhereClause).To(BeEmpty())
			}
		})

		// Given a required selector without an active value
		// When we apply
		// Then the whole call fails, no partial composition comes back
		It("should fail the whole apply when a required filter is missing", func() {
			required := seedSelector(st, dashboard.ID, "fiscal_year", compose.SelectorDropdown, true)
			seedMapping(st, required.ID, byStage.ID, "fiscal_year", "", "", at(3))

			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"stage": []string{"WON"},
			})

			Expect(srvErrors.IsMissingRequiredFilterError(err)).To(BeTrue())
			Expect(results).To(BeNil())
		})

		It("should honor a mapping's operator override", func() {
			// dropdown defaults to equals, the mapping forces like
			override := seedSelector(st, dashboard.ID, "region_like", compose.SelectorDropdown, false)
			seedMapping(st, override.ID, total.ID, "region", "", compose.OpLike, at(4))

			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"region_like": "eme",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(results[total.ID].WhereClause).To(Equal(`(region LIKE '%eme%' ESCAPE '\')`))
		})

		// Two selectors may target the same column; both predicates are kept.
		It("should AND predicates from different selectors on the same column", func() {
			second := seedSelector(st, dashboard.ID, "stage_exact", compose.SelectorDropdown, false)
			seedMapping(st, second.ID, byStage.ID, "stage", "", "", at(5))

			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"stage":       []string{"WON"},
				"stage_exact": "LOST",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(results[byStage.ID].WhereClause).To(Equal(
				"(stage IN ('WON')) AND (stage = 'LOST')"))
		})

		It("should fail fast when a value does not fit its operator", func() {
			results, err := composer.Apply(ctx, dashboard.ID, models.FilterValues{
				"stage": "WON",
			})

			Expect(srvErrors.IsInvalidValueShapeError(err)).To(BeTrue())
			Expect(results).To(BeNil())
		})

		It("should fail with a typed error for an unknown dashboard", func() {
			_, err := composer.Apply(ctx, "no-such-dashboard", models.FilterValues{})
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})
})
