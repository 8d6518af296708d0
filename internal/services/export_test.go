package services_test

import (
	"bytes"
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/services"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
	"github.com/dashlite/dashlite/pkg/scheduler"
)

var _ = Describe("Export Service", func() {
	var (
		ctx       context.Context
		db        *sql.DB
		st        *store.Store
		sched     *scheduler.Scheduler
		svc       *services.ExportService
		dashboard *models.Dashboard
		dealList  *models.Chart
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, st = newTestStore()
		sched = scheduler.NewScheduler(1)
		executor := services.NewExecutorService(st, services.NewComposerService(st), sched, 1000, 30*time.Second)
		svc = services.NewExportService(executor)

		dashboard = seedDashboard(st, "sales")
		dealList = seedChart(st, dashboard.ID, "Deal list",
			"SELECT id, stage, region FROM deals ORDER BY id", 0)

		region := seedSelector(st, dashboard.ID, "region", compose.SelectorDropdown, false)
		seedMapping(st, region.ID, dealList.ID, "region", "",
			"", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	})

	AfterEach(func() {
		if sched != nil {
			sched.Close()
		}
		if db != nil {
			db.Close()
		}
	})

	Context("format resolution", func() {
		It("should default to xlsx and accept case-insensitive names", func() {
			format, err := services.ParseExportFormat("")
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal(services.ExportXLSX))

			format, err = services.ParseExportFormat("CSV")
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal(services.ExportCSV))
		})

		It("should reject unknown formats", func() {
			_, err := services.ParseExportFormat("pdf")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())

			var buf bytes.Buffer
			err = svc.ExportChart(ctx, &buf, dealList.ID, models.FilterValues{}, "pdf")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(buf.Len()).To(BeZero())
		})
	})

	Context("xlsx export", func() {
		It("should write a workbook with a header row and the filtered rows", func() {
			var buf bytes.Buffer
			err := svc.ExportChart(ctx, &buf, dealList.ID, models.FilterValues{
				"region": "amer",
			}, services.ExportXLSX)
			Expect(err).NotTo(HaveOccurred())

			workbook, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
			Expect(err).NotTo(HaveOccurred())
			defer workbook.Close()

			Expect(workbook.GetSheetList()).To(Equal([]string{"Deal list"}))

			rows, err := workbook.GetRows("Deal list")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal([][]string{
				{"id", "stage", "region"},
				{"3", "WON", "amer"},
				{"4", "OPEN", "amer"},
			}))
		})

		It("should sanitize chart names into legal sheet names", func() {
			chart := seedChart(st, dashboard.ID,
				"Q1: Sales/Review [draft] with an exceedingly long title",
				"SELECT id FROM deals", 1)

			var buf bytes.Buffer
			err := svc.ExportChart(ctx, &buf, chart.ID, models.FilterValues{}, services.ExportXLSX)
			Expect(err).NotTo(HaveOccurred())

			workbook, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
			Expect(err).NotTo(HaveOccurred())
			defer workbook.Close()

			sheets := workbook.GetSheetList()
			Expect(sheets).To(HaveLen(1))
			Expect(len([]rune(sheets[0]))).To(BeNumerically("<=", 31))
			Expect(sheets[0]).NotTo(ContainSubstring(":"))
			Expect(sheets[0]).NotTo(ContainSubstring("/"))
		})
	})

	Context("csv export", func() {
		It("should write the header and rows as comma separated lines", func() {
			var buf bytes.Buffer
			err := svc.ExportChart(ctx, &buf, dealList.ID, models.FilterValues{
				"region": "emea",
			}, services.ExportCSV)
			Expect(err).NotTo(HaveOccurred())

			Expect(buf.String()).To(Equal("id,stage,region\n1,WON,emea\n2,LOST,emea\n"))
		})
	})

	Context("failure paths", func() {
		It("should fail with a typed error for an unknown chart", func() {
			var buf bytes.Buffer
			err := svc.ExportChart(ctx, &buf, "no-such-chart", models.FilterValues{}, services.ExportCSV)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should enforce required filters", func() {
			seedSelector(st, dashboard.ID, "fiscal_year", compose.SelectorDropdown, true)

			var buf bytes.Buffer
			err := svc.ExportChart(ctx, &buf, dealList.ID, models.FilterValues{}, services.ExportCSV)
			Expect(srvErrors.IsMissingRequiredFilterError(err)).To(BeTrue())
		})
	})
})
