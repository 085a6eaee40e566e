package llm

import "context"

// Request purposes recorded in the request log.
const (
	PurposeQuestions     = "question-gen"
	PurposeMoreQuestions = "more-questions"
	purposeUnknown       = "unknown"
)

type purposeKey struct{}

// WithPurpose tags requests made with ctx. An empty purpose leaves ctx as is.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if purpose == "" {
		return ctx
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return purposeUnknown
}
