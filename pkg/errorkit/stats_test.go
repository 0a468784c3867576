package errorkit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tweetpress/tweetpress/pkg/errorkit"
)

var _ = Describe("Statistics", func() {
	var stats *errorkit.Statistics

	BeforeEach(func() {
		stats = errorkit.NewStatistics()
	})

	It("reports a zero recovery rate with no errors", func() {
		snapshot := stats.Snapshot()
		Expect(snapshot.TotalErrors).To(BeZero())
		Expect(snapshot.RecoveryRate).To(Equal("0.00%"))
	})

	It("counts errors by kind and severity", func() {
		stats.Record(errorkit.NewPipelineError("a", errorkit.KindNetwork, errorkit.SeverityMedium, nil))
		stats.Record(errorkit.NewPipelineError("b", errorkit.KindNetwork, errorkit.SeverityMedium, nil))
		stats.Record(errorkit.NewPipelineError("c", errorkit.KindAuth, errorkit.SeverityCritical, nil))

		snapshot := stats.Snapshot()
		Expect(snapshot.TotalErrors).To(Equal(uint64(3)))
		Expect(snapshot.CriticalErrors).To(Equal(uint64(1)))
		Expect(snapshot.ByKind).To(HaveKeyWithValue(errorkit.KindNetwork, uint64(2)))
		Expect(snapshot.ByKind).To(HaveKeyWithValue(errorkit.KindAuth, uint64(1)))
		Expect(snapshot.BySeverity).To(HaveKeyWithValue(errorkit.SeverityCritical, uint64(1)))
	})

	It("formats the recovery rate with two decimals", func() {
		for i := 0; i < 4; i++ {
			stats.Record(errorkit.NewPipelineError("x", errorkit.KindTranslation, errorkit.SeverityMedium, nil))
		}
		stats.RecordRecovery()

		Expect(stats.Snapshot().RecoveryRate).To(Equal("25.00%"))
		Expect(stats.Snapshot().RecoveredErrors).To(Equal(uint64(1)))
	})

	It("returns independent snapshot copies", func() {
		stats.Record(errorkit.NewPipelineError("a", errorkit.KindAPI, errorkit.SeverityHigh, nil))
		snapshot := stats.Snapshot()
		snapshot.ByKind[errorkit.KindAPI] = 99

		Expect(stats.Snapshot().ByKind).To(HaveKeyWithValue(errorkit.KindAPI, uint64(1)))
	})
})
