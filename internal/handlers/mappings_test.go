package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/dashlite/dashlite/api/v1"
	"github.com/dashlite/dashlite/internal/models"
)

var _ = Describe("Mapping Handlers", func() {
	var (
		api       *testAPI
		dashboard *models.Dashboard
		selector  *models.Selector
		chart     *models.Chart
	)

	BeforeEach(func() {
		api = newTestAPI()
		dashboard = seedDashboard(api.store, "sales")
		selector = seedSelector(api.store, dashboard.ID, "stage", "dropdown", false)
		chart = seedChart(api.store, dashboard.ID, "Deal list", "SELECT id FROM deals", 0)
	})

	AfterEach(func() {
		api.Close()
	})

	Describe("POST /selectors/:id/mappings", func() {
		It("should bind the selector to a chart column", func() {
			w := api.do(http.MethodPost, "/api/v1/selectors/"+selector.ID+"/mappings",
				`{"chart_id": "`+chart.ID+`", "target_column": "stage", "operator_override": "like"}`)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var mapping v1.Mapping
			Expect(json.Unmarshal(w.Body.Bytes(), &mapping)).To(Succeed())
			Expect(mapping.ID).NotTo(BeEmpty())
			Expect(mapping.SelectorID).To(Equal(selector.ID))
			Expect(mapping.ChartID).To(Equal(chart.ID))
			Expect(mapping.TargetColumn).To(Equal("stage"))
			Expect(mapping.OperatorOverride).To(Equal("like"))
			Expect(mapping.CreatedAt.IsZero()).To(BeFalse())
		})

		It("should reject a chart from another dashboard", func() {
			other := seedDashboard(api.store, "other")
			foreign := seedChart(api.store, other.ID, "Foreign", "SELECT 1", 0)

			w := api.do(http.MethodPost, "/api/v1/selectors/"+selector.ID+"/mappings",
				`{"chart_id": "`+foreign.ID+`", "target_column": "stage"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a target column that is not an identifier", func() {
			w := api.do(http.MethodPost, "/api/v1/selectors/"+selector.ID+"/mappings",
				`{"chart_id": "`+chart.ID+`", "target_column": "stage; DROP TABLE deals"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject an override that does not fit the selector type", func() {
			w := api.do(http.MethodPost, "/api/v1/selectors/"+selector.ID+"/mappings",
				`{"chart_id": "`+chart.ID+`", "target_column": "stage", "operator_override": "in"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should answer 404 for an unknown selector", func() {
			w := api.do(http.MethodPost, "/api/v1/selectors/nope/mappings",
				`{"chart_id": "`+chart.ID+`", "target_column": "stage"}`)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should answer 404 for an unknown chart", func() {
			w := api.do(http.MethodPost, "/api/v1/selectors/"+selector.ID+"/mappings",
				`{"chart_id": "nope", "target_column": "stage"}`)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should answer 409 for a duplicate binding", func() {
			seedMapping(api.store, selector.ID, chart.ID, "stage", "", "", time.Now())

			w := api.do(http.MethodPost, "/api/v1/selectors/"+selector.ID+"/mappings",
				`{"chart_id": "`+chart.ID+`", "target_column": "stage"}`)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("should reject a body without a chart id", func() {
			w := api.do(http.MethodPost, "/api/v1/selectors/"+selector.ID+"/mappings",
				`{"target_column": "stage"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /selectors/:id/mappings", func() {
		It("should list mappings in creation order", func() {
			second := seedChart(api.store, dashboard.ID, "By region", "SELECT region FROM deals", 1)
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			seedMapping(api.store, selector.ID, chart.ID, "stage", "", "", base)
			seedMapping(api.store, selector.ID, second.ID, "stage", "", "", base.Add(time.Second))

			w := api.do(http.MethodGet, "/api/v1/selectors/"+selector.ID+"/mappings", "")

			Expect(w.Code).To(Equal(http.StatusOK))

			var mappings []v1.Mapping
			Expect(json.Unmarshal(w.Body.Bytes(), &mappings)).To(Succeed())
			Expect(mappings).To(HaveLen(2))
			Expect(mappings[0].ChartID).To(Equal(chart.ID))
			Expect(mappings[1].ChartID).To(Equal(second.ID))
		})

		It("should answer 404 for an unknown selector", func() {
			w := api.do(http.MethodGet, "/api/v1/selectors/nope/mappings", "")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /mappings/:id", func() {
		It("should delete the mapping", func() {
			mapping := seedMapping(api.store, selector.ID, chart.ID, "stage", "", "", time.Now())

			w := api.do(http.MethodDelete, "/api/v1/mappings/"+mapping.ID, "")
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = api.do(http.MethodDelete, "/api/v1/mappings/"+mapping.ID, "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
