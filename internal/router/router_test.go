package router_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ZhangYouJie-Major/AskIt/internal/router"
)

var _ = Describe("Router", func() {
	var r *router.Router

	BeforeEach(func() {
		r = router.Default()
	})

	Describe("default routes", func() {
		It("redirects the root to the knowledge view", func() {
			nav, err := r.Navigate("/")
			Expect(err).NotTo(HaveOccurred())
			Expect(nav.Path).To(Equal("/knowledge"))
			Expect(nav.Route.Name).To(Equal("Knowledge"))
			Expect(nav.Title).To(Equal("知识库查询 - 企业知识库"))
			Expect(r.Current()).To(Equal("/knowledge"))
			Expect(r.Title()).To(Equal("知识库查询 - 企业知识库"))
		})

		It("resolves the admin view", func() {
			nav, err := r.Navigate("/admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(nav.Route.View).To(Equal("AdminView"))
			Expect(nav.Title).To(Equal("管理后台 - 企业知识库"))
		})

		It("ignores trailing slashes, query strings and fragments", func() {
			nav, err := r.Navigate("/admin/?tab=docs#top")
			Expect(err).NotTo(HaveOccurred())
			Expect(nav.Path).To(Equal("/admin"))
		})

		It("records where navigation came from", func() {
			_, err := r.Navigate("/")
			Expect(err).NotTo(HaveOccurred())

			nav, err := r.Navigate("/admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(nav.From).To(Equal("/knowledge"))
		})

		It("lists routes sorted by path", func() {
			paths := []string{}
			for _, route := range r.Routes() {
				paths = append(paths, route.Path)
			}
			Expect(paths).To(Equal([]string{"/", "/admin", "/knowledge"}))
		})
	})

	Describe("unknown paths", func() {
		It("returns ErrNoRoute and keeps the current location", func() {
			_, err := r.Navigate("/admin")
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Navigate("/missing")
			Expect(errors.Is(err, router.ErrNoRoute)).To(BeTrue())
			Expect(r.Current()).To(Equal("/admin"))
		})
	})

	Describe("titles", func() {
		It("falls back to the default title", func() {
			r = router.New([]router.Route{{Path: "/plain", View: "Plain"}})

			nav, err := r.Navigate("/plain")
			Expect(err).NotTo(HaveOccurred())
			Expect(nav.Title).To(Equal("AskIt - 企业知识库"))
		})

		It("starts with the default title", func() {
			Expect(r.Title()).To(Equal(router.FormatTitle("")))
		})
	})

	Describe("redirects", func() {
		It("rejects redirect loops", func() {
			r = router.New([]router.Route{
				{Path: "/a", Redirect: "/b"},
				{Path: "/b", Redirect: "/a"},
			})

			_, err := r.Navigate("/a")
			Expect(errors.Is(err, router.ErrRedirectLoop)).To(BeTrue())
		})

		It("follows redirect chains", func() {
			r = router.New([]router.Route{
				{Path: "/a", Redirect: "/b"},
				{Path: "/b", Redirect: "/c"},
				{Path: "/c", View: "C", Meta: router.Meta{Title: "C"}},
			})

			nav, err := r.Navigate("/a")
			Expect(err).NotTo(HaveOccurred())
			Expect(nav.Path).To(Equal("/c"))
		})

		It("keeps the first route for a duplicated path", func() {
			r = router.New([]router.Route{
				{Path: "/x", View: "First"},
				{Path: "/x", View: "Second"},
			})

			route, err := r.Resolve("/x")
			Expect(err).NotTo(HaveOccurred())
			Expect(route.View).To(Equal("First"))
		})
	})

	Describe("before-each hooks", func() {
		It("runs on every navigation with the title already set", func() {
			var seen []string
			r = router.Default(router.WithBeforeEach(func(nav *router.Navigation) error {
				seen = append(seen, nav.Title)
				return nil
			}))

			_, err := r.Navigate("/")
			Expect(err).NotTo(HaveOccurred())
			_, err = r.Navigate("/admin")
			Expect(err).NotTo(HaveOccurred())

			Expect(seen).To(Equal([]string{"知识库查询 - 企业知识库", "管理后台 - 企业知识库"}))
		})

		It("aborts navigation when a hook fails", func() {
			denied := errors.New("admin only")
			r = router.Default(router.WithBeforeEach(func(nav *router.Navigation) error {
				if nav.Path == "/admin" {
					return denied
				}
				return nil
			}))

			_, err := r.Navigate("/")
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Navigate("/admin")
			Expect(errors.Is(err, denied)).To(BeTrue())
			Expect(r.Current()).To(Equal("/knowledge"))
			Expect(r.Title()).To(Equal("知识库查询 - 企业知识库"))
		})
	})
})
