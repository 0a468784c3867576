package dedup_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tweetpress/tweetpress/pkg/dedup"
)

var _ = Describe("Normalize", func() {
	It("case-folds, strips URLs and collapses whitespace", func() {
		Expect(dedup.Normalize("Bitcoin  Hits   $50k https://x.co/a")).To(Equal("bitcoin hits $50k"))
	})

	It("is idempotent", func() {
		text := "Bitcoin Hits $50k   https://x.co/a"
		once := dedup.Normalize(text)
		Expect(dedup.Normalize(once)).To(Equal(once))
	})
})

var _ = Describe("Fingerprint", func() {
	It("returns a 64-character hex digest", func() {
		Expect(dedup.Fingerprint("hello world")).To(HaveLen(64))
		Expect(dedup.Fingerprint("hello world")).To(MatchRegexp(`^[0-9a-f]{64}$`))
	})

	It("ignores casing and whitespace runs", func() {
		Expect(dedup.Fingerprint("Bitcoin Hits $50k")).To(Equal(dedup.Fingerprint("bitcoin   hits $50k")))
	})

	It("ignores attached URLs", func() {
		a := dedup.Fingerprint("Bitcoin hits $50k https://x.co/a")
		b := dedup.Fingerprint("Bitcoin hits $50k https://x.co/b")
		c := dedup.Fingerprint("Bitcoin hits $50k")
		Expect(a).To(Equal(b))
		Expect(a).To(Equal(c))
	})

	It("equals the fingerprint of its own normalized form", func() {
		text := "Bitcoin HITS  $50k https://x.co/a"
		Expect(dedup.Fingerprint(text)).To(Equal(dedup.Fingerprint(dedup.Normalize(text))))
	})

	It("differs for different content", func() {
		Expect(dedup.Fingerprint("bitcoin hits $50k")).NotTo(Equal(dedup.Fingerprint("ethereum hits $5k")))
	})
})

var _ = Describe("Keywords", func() {
	It("drops stop words and short tokens, preserving order", func() {
		keywords := dedup.Keywords("The Bitcoin price is surging to new record highs")
		Expect(keywords).To(Equal([]string{"bitcoin", "price", "surging", "new", "record", "highs"}))
	})

	It("strips punctuation", func() {
		keywords := dedup.Keywords("Breaking: markets rally, again!")
		Expect(keywords).To(Equal([]string{"breaking", "markets", "rally", "again"}))
	})

	It("caps the sequence at twenty terms", func() {
		long := "alpha bravo charlie delta echo foxtrot golf hotel india juliett " +
			"kilo lima mike november oscar papa quebec romeo sierra tango " +
			"uniform victor whiskey xray yankee zulu"
		Expect(dedup.Keywords(long)).To(HaveLen(dedup.MaxKeywords))
	})

	It("returns nothing for all-stopword input", func() {
		Expect(dedup.Keywords("the and for but a of to")).To(BeEmpty())
	})
})

var _ = Describe("Jaccard", func() {
	It("is 1 for identical sets", func() {
		a := []string{"bitcoin", "price", "record"}
		Expect(dedup.Jaccard(a, a)).To(BeNumerically("==", 1))
	})

	It("is 0 for disjoint sets", func() {
		Expect(dedup.Jaccard([]string{"bitcoin"}, []string{"ethereum"})).To(BeZero())
	})

	It("is 0 when either side is empty", func() {
		Expect(dedup.Jaccard(nil, []string{"bitcoin"})).To(BeZero())
		Expect(dedup.Jaccard([]string{"bitcoin"}, nil)).To(BeZero())
		Expect(dedup.Jaccard(nil, nil)).To(BeZero())
	})

	It("computes intersection over union", func() {
		a := []string{"bitcoin", "price", "record", "highs"}
		b := []string{"bitcoin", "price", "record", "lows"}
		Expect(dedup.Jaccard(a, b)).To(BeNumerically("~", 3.0/5.0, 1e-9))
	})
})
