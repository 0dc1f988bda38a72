package extraction

import (
	"context"

	"github.com/yanqian/gopher-digest/pkg/util"
)

// Failure explains why a tier produced nothing.
type Failure string

const (
	FailureNone      Failure = ""
	FailureFetch     Failure = "fetch_failed"
	FailureStatus    Failure = "bad_status"
	FailureNotJSON   Failure = "not_json"
	FailureMalformed Failure = "malformed"
	FailureAbsent    Failure = "absent"
	FailureParse     Failure = "parse_failed"
	FailureTooShort  Failure = "too_short"
)

// Outcome is the result of one tier attempt. Content is set only when the tier accepted its text.
type Outcome struct {
	Content *ExtractedContent
	Failure Failure
	Err     error
}

// Tier is one extraction strategy. Attempt never returns an error; failures live in the Outcome.
type Tier interface {
	Name() string
	Attempt(ctx context.Context, rawURL string) Outcome
}

func accepted(content ExtractedContent) Outcome {
	content.Length = util.RuneLen(content.Text)
	return Outcome{Content: &content}
}

func failed(reason Failure, err error) Outcome {
	return Outcome{Failure: reason, Err: err}
}

// label is the metrics/log value for the outcome.
func (o Outcome) label() string {
	if o.Content != nil {
		return "accepted"
	}
	return string(o.Failure)
}

// acceptText applies the minimum length policy shared by every tier.
func acceptText(content ExtractedContent, minLength int) Outcome {
	if util.RuneLen(content.Text) <= minLength {
		return failed(FailureTooShort, nil)
	}
	return accepted(content)
}
