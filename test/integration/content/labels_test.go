// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

//go:build integration

package content_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/inkwellcms/inkwell/internal/label"
)

var _ = Describe("Label store", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		resetDatabase(ctx, env.pool)
	})

	It("normalizes raw strings before storing", func() {
		labels, err := env.Labels.GetOrCreate(ctx, []string{"  Sys  Public ", "<script>"})
		Expect(err).NotTo(HaveOccurred())
		Expect(labels).To(HaveLen(2))
		Expect(labels[0].Name).To(Equal("sys_public"))
		Expect(labels[1].Name).To(Equal("script"))
	})

	It("returns the existing row on repeated calls", func() {
		first, err := env.Labels.GetOrCreate(ctx, []string{"featured"})
		Expect(err).NotTo(HaveOccurred())

		second, err := env.Labels.GetOrCreate(ctx, []string{"Featured"})
		Expect(err).NotTo(HaveOccurred())
		Expect(second[0].ID).To(Equal(first[0].ID))
	})

	It("yields one row per name under concurrent creation", func() {
		const workers = 16

		ids := make([]int64, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				labels, err := env.Labels.GetOrCreate(ctx, []string{"contested", "news"})
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(HaveLen(2))
				ids[i] = labels[0].ID
			}(i)
		}
		wg.Wait()

		for _, id := range ids[1:] {
			Expect(id).To(Equal(ids[0]), "every worker should resolve the same label row")
		}

		var count int
		err := env.pool.QueryRow(ctx, `SELECT COUNT(*) FROM labels WHERE name = 'contested'`).Scan(&count)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})

	It("keeps duplicate raw inputs to a single row", func() {
		labels, err := env.Labels.GetOrCreate(ctx, []string{"News", "news ", "NEWS"})
		Expect(err).NotTo(HaveOccurred())
		Expect(labels).To(HaveLen(1))
		Expect(labels[0].Name).To(Equal(label.Canonical("News")))
	})
})
