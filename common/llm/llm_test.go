package llm_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"storyloom.app/api/common/llm"
)

var _ = Describe("New", func() {
	It("rejects an empty API key", func() {
		_, err := llm.New(context.Background(), llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("rejects an unknown provider", func() {
		_, err := llm.New(context.Background(), llm.Config{Provider: "mystery", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("constructs an openai client with just an API key", func() {
		client, err := llm.New(context.Background(), llm.Config{Provider: llm.ProviderOpenAI, APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gpt-4o"))
	})

	It("uses the configured model name", func() {
		client, err := llm.New(context.Background(), llm.Config{
			Provider: llm.ProviderOpenAI,
			APIKey:   "k",
			Model:    "gpt-4o-mini",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gpt-4o-mini"))
	})
})

var _ = Describe("IsRetryable", func() {
	DescribeTable("classifies errors",
		func(err error, want bool) {
			Expect(llm.IsRetryable(err)).To(Equal(want))
		},
		Entry("nil error", nil, false),
		Entry("context canceled", context.Canceled, false),
		Entry("deadline exceeded", context.DeadlineExceeded, false),
		Entry("safety block", fmt.Errorf("wrapped: %w", llm.ErrSafetyBlocked), false),
		Entry("auth failure", fmt.Errorf("wrapped: %w", llm.ErrUnauthorized), false),
		Entry("generic transport error", errors.New("connection reset"), true),
	)
})

var _ = Describe("GenerateSchemaFrom", func() {
	type sample struct {
		Kind string `json:"kind" jsonschema:"required"`
		Note string `json:"note,omitempty"`
	}

	It("reflects an inline schema without references", func() {
		schema := llm.GenerateSchemaFrom(sample{})
		Expect(schema).NotTo(BeNil())
	})
})
