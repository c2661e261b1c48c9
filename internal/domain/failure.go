package domain

import "time"

type FailureCategory string

const (
	FailureSTTNoAudio    FailureCategory = "stt-no-audio"
	FailureSTTUnclear    FailureCategory = "stt-unclear"
	FailureSTTPartial    FailureCategory = "stt-partial"
	FailureInputEmpty    FailureCategory = "input-empty"
	FailureInputOffTopic FailureCategory = "input-off-topic"
	FailureMissingInfo   FailureCategory = "missing-info"
	FailureContradiction FailureCategory = "contradiction"
	FailureToolError     FailureCategory = "tool-error"
	FailureLLMError      FailureCategory = "llm-error"
	FailureSystemError   FailureCategory = "system-error"
	FailureRateLimit     FailureCategory = "rate-limit"
)

type FailureRecord struct {
	Category FailureCategory `json:"category"`
	At       time.Time       `json:"at"`
}
