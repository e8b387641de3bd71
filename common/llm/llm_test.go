package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"prodicity.app/engage/common/llm"
)

type schemaFixture struct {
	Reasoning string `json:"reasoning" jsonschema:"required"`
	Advance   bool   `json:"advance" jsonschema:"required"`
	Phase     string `json:"phase" jsonschema:"required,enum=building_rapport,enum=doing_the_ask"`
}

var _ = Describe("GenerateSchema", func() {
	It("produces a strict schema with no extra properties allowed", func() {
		schema := llm.GenerateSchema[schemaFixture]()

		data, err := json.Marshal(schema)
		Expect(err).NotTo(HaveOccurred())

		var m map[string]any
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		Expect(m["additionalProperties"]).To(BeFalse())

		props := m["properties"].(map[string]any)
		Expect(props).To(HaveKey("reasoning"))
		Expect(props).To(HaveKey("advance"))
		Expect(props).To(HaveKey("phase"))

		phaseProp := props["phase"].(map[string]any)
		Expect(phaseProp["enum"]).To(ContainElements("building_rapport", "doing_the_ask"))
	})

	It("inlines definitions instead of referencing them", func() {
		data, err := json.Marshal(llm.GenerateSchema[schemaFixture]())
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).NotTo(ContainSubstring("$ref"))
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	DescribeTable("error classification",
		func(err error, want bool) {
			Expect(llm.IsRetryable(ctx, err)).To(Equal(want))
		},
		Entry("nil error", nil, false),
		Entry("context cancelled", context.Canceled, false),
		Entry("deadline exceeded", fmt.Errorf("call: %w", context.DeadlineExceeded), false),
		Entry("rate limit", &openai.Error{StatusCode: 429}, true),
		Entry("server error", &openai.Error{StatusCode: 503}, true),
		Entry("auth failure", &openai.Error{StatusCode: 401}, false),
		Entry("bad request", &openai.Error{StatusCode: 400}, false),
		Entry("bare network error", errors.New("connection reset"), true),
	)
})

var _ = Describe("Temp", func() {
	It("returns a pointer to the given value", func() {
		p := llm.Temp(0.42)
		Expect(p).NotTo(BeNil())
		Expect(*p).To(Equal(0.42))
	})
})
