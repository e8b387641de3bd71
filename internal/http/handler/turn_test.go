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

	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/http/handler"
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/pipeline"
	"prodicity.app/engage/internal/threadstate"
)

var _ = Describe("TurnHandler", func() {
	var (
		router *gin.Engine
		pipe   *mockPipeline
		store  *mockThreads
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		pipe = &mockPipeline{}
		store = &mockThreads{}
		h := handler.NewTurnHandler(pipe, store)
		router.POST("/generate", h.Generate)
		router.POST("/analyze", h.Analyze)
	})

	post := func(path string, body map[string]any) *httptest.ResponseRecorder {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	validBody := func() map[string]any {
		return map[string]any{
			"thread_id":     "t-123",
			"prospect_name": "Alex",
			"messages": []map[string]any{
				{"sender": "you", "text": "hey, what are you working on?"},
				{"sender": "prospect", "text": "a robotics club!"},
			},
		}
	}

	Describe("Generate", func() {
		It("runs a turn and returns the generated message", func() {
			pipe.runTurnFn = func(_ context.Context, conv conversation.Conversation, current *phase.Phase, _ *bool) (pipeline.TurnResult, error) {
				Expect(conv.ProspectName()).To(Equal("Alex"))
				Expect(conv.Messages).To(HaveLen(2))
				return pipeline.TurnResult{
					Phase:       phase.BuildingRapport,
					Instruction: "ask about motivation",
					Reasoning:   "early rapport",
					Status:      pipeline.StatusOK,
					Message:     "nice, what got you into robotics?",
				}, nil
			}

			w := post("/generate", validBody())

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["response"]).To(Equal("nice, what got you into robotics?"))
			Expect(resp["phase"]).To(Equal("building_rapport"))
			Expect(resp["ready_for_ask"]).To(BeFalse())

			input := resp["input"].(map[string]any)
			Expect(input["thread_id"]).To(Equal("t-123"))
			Expect(input["message_count"]).To(BeNumerically("==", 2))
		})

		It("persists the resolved phase for the thread", func() {
			pipe.runTurnFn = func(context.Context, conversation.Conversation, *phase.Phase, *bool) (pipeline.TurnResult, error) {
				return pipeline.TurnResult{Phase: phase.DoingTheAsk, Status: pipeline.StatusOK}, nil
			}

			w := post("/generate", validBody())

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(store.setCount).To(Equal(1))
			Expect(store.lastSet).To(Equal(phase.DoingTheAsk))
		})

		It("does not persist the phase while approval is pending", func() {
			pipe.runTurnFn = func(context.Context, conversation.Conversation, *phase.Phase, *bool) (pipeline.TurnResult, error) {
				return pipeline.TurnResult{
					Phase:          phase.BuildingRapport,
					Status:         pipeline.StatusApprovalRequired,
					SuggestedPhase: phase.DoingTheAsk,
				}, nil
			}

			w := post("/generate", validBody())

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(store.setCount).To(Equal(0))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("approval_required"))
			Expect(resp["suggested_phase"]).To(Equal("doing_the_ask"))
		})

		It("resolves the current phase from the thread state store", func() {
			store.getFn = func(context.Context, string) (threadstate.State, error) {
				return threadstate.State{ThreadID: "t-123", Phase: phase.PostSelling}, nil
			}
			pipe.runTurnFn = func(_ context.Context, _ conversation.Conversation, current *phase.Phase, _ *bool) (pipeline.TurnResult, error) {
				Expect(current).NotTo(BeNil())
				Expect(*current).To(Equal(phase.PostSelling))
				return pipeline.TurnResult{Phase: phase.PostSelling, Status: pipeline.StatusOK}, nil
			}

			w := post("/generate", validBody())
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(pipe.runCount).To(Equal(1))
		})

		It("prefers an explicit current_phase over the store", func() {
			body := validBody()
			body["current_phase"] = "doing_the_ask"
			store.getFn = func(context.Context, string) (threadstate.State, error) {
				Fail("store should not be consulted")
				return threadstate.State{}, nil
			}
			pipe.runTurnFn = func(_ context.Context, _ conversation.Conversation, current *phase.Phase, _ *bool) (pipeline.TurnResult, error) {
				Expect(current).NotTo(BeNil())
				Expect(*current).To(Equal(phase.DoingTheAsk))
				return pipeline.TurnResult{Phase: phase.DoingTheAsk, Status: pipeline.StatusOK}, nil
			}

			w := post("/generate", body)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("passes confirm_phase_change through as a tri-state", func() {
			body := validBody()
			body["confirm_phase_change"] = true
			pipe.runTurnFn = func(_ context.Context, _ conversation.Conversation, _ *phase.Phase, confirm *bool) (pipeline.TurnResult, error) {
				Expect(confirm).NotTo(BeNil())
				Expect(*confirm).To(BeTrue())
				return pipeline.TurnResult{Phase: phase.DoingTheAsk, Status: pipeline.StatusOK}, nil
			}

			w := post("/generate", body)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("rejects a request without prospect_name", func() {
			body := validBody()
			delete(body, "prospect_name")

			w := post("/generate", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(pipe.runCount).To(Equal(0))
		})

		It("rejects an unknown sender role", func() {
			body := validBody()
			body["messages"] = []map[string]any{{"sender": "bot", "text": "hi"}}

			w := post("/generate", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(pipe.runCount).To(Equal(0))
		})

		It("accepts an empty message list for bootstrap", func() {
			body := validBody()
			body["messages"] = []map[string]any{}
			pipe.runTurnFn = func(_ context.Context, conv conversation.Conversation, _ *phase.Phase, _ *bool) (pipeline.TurnResult, error) {
				Expect(conv.Messages).To(BeEmpty())
				return pipeline.TurnResult{
					Phase:       phase.BuildingRapport,
					Instruction: pipeline.StartOutreachInstruction,
					Status:      pipeline.StatusOK,
				}, nil
			}

			w := post("/generate", body)
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Analyze", func() {
		It("returns the analysis without a message", func() {
			pipe.analyzeFn = func(context.Context, conversation.Conversation, *phase.Phase, *bool) (pipeline.TurnResult, error) {
				return pipeline.TurnResult{
					Phase:       phase.BuildingRapport,
					Instruction: "keep building rapport",
					Reasoning:   "not enough discovery",
					Status:      pipeline.StatusOK,
				}, nil
			}

			w := post("/analyze", validBody())

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["phase"]).To(Equal("building_rapport"))
			Expect(resp["instruction_for_writer"]).To(Equal("keep building rapport"))
			Expect(resp).NotTo(HaveKey("response"))
			Expect(pipe.analyzeRuns).To(Equal(1))
			Expect(pipe.runCount).To(Equal(0))
		})
	})
})
