package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"prodicity.app/engage/internal/http/handler"
	"prodicity.app/engage/internal/knowledge"
)

var _ = Describe("KnowledgeHandler", func() {
	var (
		router      *gin.Engine
		store       *mockKnowledgeStore
		adminAPIKey string
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		store = &mockKnowledgeStore{}
		adminAPIKey = "test-admin-key"
		h := handler.NewKnowledgeHandler(store, adminAPIKey)

		kb := router.Group("/kb")
		kb.GET("/search", h.Search)
		kb.GET("/recent", h.Recent)
		kb.POST("/add", h.RequireAdminAPIKey(), h.Add)
	})

	Describe("Add", func() {
		It("creates an entry with a valid admin key", func() {
			store.addFn = func(_ context.Context, question, answer, source string, tags []string) (knowledge.Document, error) {
				return knowledge.Document{
					ID: "7001", Question: question, Answer: answer, Source: source, Tags: tags,
				}, nil
			}

			body, _ := json.Marshal(map[string]any{
				"question": "Is the application free?",
				"answer":   "Yes, applying is free.",
				"tags":     []string{"pricing"},
			})
			req := httptest.NewRequest(http.MethodPost, "/kb/add", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Admin-API-Key", adminAPIKey)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["ok"]).To(BeTrue())
			doc := resp["document"].(map[string]any)
			Expect(doc["source"]).To(Equal("manual"))
		})

		It("rejects a missing admin key", func() {
			body, _ := json.Marshal(map[string]any{"question": "q", "answer": "a"})
			req := httptest.NewRequest(http.MethodPost, "/kb/add", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts a bearer token", func() {
			store.addFn = func(_ context.Context, q, a, s string, tags []string) (knowledge.Document, error) {
				return knowledge.Document{ID: "1", Question: q, Answer: a, Source: s}, nil
			}
			body, _ := json.Marshal(map[string]any{"question": "q", "answer": "a"})
			req := httptest.NewRequest(http.MethodPost, "/kb/add", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+adminAPIKey)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
		})

		It("rejects a missing answer", func() {
			body, _ := json.Marshal(map[string]any{"question": "q"})
			req := httptest.NewRequest(http.MethodPost, "/kb/add", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Admin-API-Key", adminAPIKey)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Search", func() {
		It("requires the q parameter", func() {
			req := httptest.NewRequest(http.MethodGet, "/kb/search", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns items with a count", func() {
			store.searchFn = func(_ context.Context, query string, limit int) ([]knowledge.Snippet, error) {
				Expect(query).To(Equal("pricing"))
				Expect(limit).To(Equal(5))
				return []knowledge.Snippet{{ID: "1", Snippet: "applying is free"}}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/kb/search?q=pricing&k=5", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["count"]).To(BeNumerically("==", 1))
		})

		It("rejects a non-integer k", func() {
			req := httptest.NewRequest(http.MethodGet, "/kb/search?q=pricing&k=lots", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Recent", func() {
		It("lists recent entries with an empty-list default", func() {
			req := httptest.NewRequest(http.MethodGet, "/kb/recent", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["items"]).To(BeEmpty())
			Expect(resp["count"]).To(BeNumerically("==", 0))
		})
	})
})
