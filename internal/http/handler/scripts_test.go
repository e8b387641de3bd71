package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"prodicity.app/engage/internal/http/handler"
)

var _ = Describe("ScriptsHandler", func() {
	var router *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		h := handler.NewScriptsHandler()
		sc := router.Group("/scripts")
		sc.GET("/initial-message", h.InitialMessage)
		sc.GET("/list", h.List)
		sc.GET("/:phase/:id", h.Get)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("serves the initial message template", func() {
		w := get("/scripts/initial-message")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["template"]).To(ContainSubstring("{name}"))
		Expect(resp["template"]).To(ContainSubstring("{school}"))
	})

	It("lists scripts for every phase", func() {
		w := get("/scripts/list")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveKey("building_rapport"))
		Expect(resp).To(HaveKey("doing_the_ask"))
		Expect(resp).To(HaveKey("post_selling"))

		ask := resp["doing_the_ask"]
		Expect(ask["templates"]).NotTo(BeEmpty())
	})

	It("fetches a single template", func() {
		w := get("/scripts/doing_the_ask/pricing")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		tpl := resp["template"].(map[string]any)
		Expect(tpl["text"]).To(ContainSubstring("$485/month"))
	})

	It("404s on an unknown template", func() {
		Expect(get("/scripts/doing_the_ask/nope").Code).To(Equal(http.StatusNotFound))
	})

	It("400s on an unknown phase", func() {
		Expect(get("/scripts/negotiating/pricing").Code).To(Equal(http.StatusBadRequest))
	})
})
