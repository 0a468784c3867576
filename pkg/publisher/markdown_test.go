package publisher_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/tweetpress/tweetpress/pkg/publisher"
)

var _ = Describe("TitleFromText", func() {
	It("uses the first line", func() {
		Expect(publisher.TitleFromText("Bitcoin hits $50k\nmore detail below")).To(Equal("Bitcoin hits $50k"))
	})

	It("truncates long titles on a word boundary", func() {
		long := "this headline keeps going and going well past any sensible length for a page title"
		title := publisher.TitleFromText(long)
		Expect(len(title)).To(BeNumerically("<=", 63))
		Expect(title).To(HaveSuffix("..."))
		Expect(title).NotTo(ContainSubstring("  "))
	})
})

var _ = Describe("Slug", func() {
	It("combines date and id", func() {
		date := time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)
		Expect(publisher.Slug("12345", date)).To(Equal("2026-08-25-12345.md"))
	})
})

var _ = Describe("RenderPage", func() {
	It("renders front matter and body", func() {
		page := publisher.Page{
			Title:       "Bitcoin hits $50k",
			Date:        time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC),
			Tags:        []string{"bitcoin", "price"},
			OriginalURL: "https://twitter.com/acct/status/1",
			Language:    "Japanese",
			Fingerprint: "abc123",
			Body:        "translated body",
		}

		out, err := publisher.RenderPage(page)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("---\n"))
		Expect(out).To(ContainSubstring(`title: "Bitcoin hits $50k"`))
		Expect(out).To(ContainSubstring("date: 2026-08-25T10:00:00Z"))
		Expect(out).To(ContainSubstring("  - bitcoin"))
		Expect(out).To(ContainSubstring("fingerprint: abc123"))
		Expect(out).To(ContainSubstring("translated body"))
		Expect(out).To(ContainSubstring("[Original post](https://twitter.com/acct/status/1)"))
	})
})

var _ = Describe("Writer", func() {
	var (
		primary  string
		fallback string
		logger   *logrus.Logger
	)

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "writer-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		primary = filepath.Join(dir, "content")
		fallback = filepath.Join(dir, "pending")

		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	})

	It("writes into the primary directory", func() {
		w, err := publisher.NewWriter(primary, fallback, logger)
		Expect(err).NotTo(HaveOccurred())

		path, primaryErr, err := w.Write("post.md", "content")
		Expect(err).NotTo(HaveOccurred())
		Expect(primaryErr).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(primary, "post.md")))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("content"))
	})

	It("falls back when the primary directory is unusable", func() {
		// A file where the directory should be makes MkdirAll fail
		Expect(os.WriteFile(primary, []byte("in the way"), 0o644)).To(Succeed())

		w, err := publisher.NewWriter(filepath.Join(primary, "posts"), fallback, logger)
		Expect(err).NotTo(HaveOccurred())

		path, primaryErr, err := w.Write("post.md", "content")
		Expect(err).NotTo(HaveOccurred())
		Expect(primaryErr).To(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(fallback, "post.md")))
	})

	It("fails when both directories are unusable", func() {
		Expect(os.WriteFile(primary, []byte("in the way"), 0o644)).To(Succeed())
		Expect(os.WriteFile(fallback, []byte("also in the way"), 0o644)).To(Succeed())

		w, err := publisher.NewWriter(filepath.Join(primary, "posts"), filepath.Join(fallback, "posts"), logger)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = w.Write("post.md", "content")
		Expect(err).To(HaveOccurred())
	})
})
