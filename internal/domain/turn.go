package domain

import "github.com/Harshitk-cp/sahai/internal/statemachine"

// TurnRequest is what the transport layer hands to the orchestrator.
// A nil Confidence means the transcript confidence is unknown and is
// treated as certain. An explicit zero is the lowest confidence.
type TurnRequest struct {
	SessionID  string   `json:"session_id,omitempty"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// InputConfidence is the transcript confidence, 1 when none was given.
func (r TurnRequest) InputConfidence() float64 {
	if r.Confidence == nil {
		return 1
	}
	return *r.Confidence
}

type TurnResponse struct {
	Reply              string                    `json:"reply"`
	SessionID          string                    `json:"session_id"`
	Facts              Facts                     `json:"facts"`
	ToolsInvoked       []string                  `json:"tools_invoked"`
	NeedsClarification bool                      `json:"needs_clarification"`
	ClarificationField string                    `json:"clarification_field,omitempty"`
	Intent             Intent                    `json:"intent,omitempty"`
	Transitions        []statemachine.Transition `json:"-"`
}

// TurnContext is the scratch state of a single turn. It is discarded when
// the turn ends; only its effects on the Session persist.
type TurnContext struct {
	SessionID  string
	Input      string
	Confidence float64

	Machine    *statemachine.Machine
	Plan       *Plan
	Extracted  Facts
	Results    []ExecutionResult
	ToolTrace  []string
	Evaluation *Evaluation
	Retries    int
	Errors     int
}

func NewTurnContext(sessionID, input string, confidence float64, m *statemachine.Machine) *TurnContext {
	return &TurnContext{
		SessionID:  sessionID,
		Input:      input,
		Confidence: confidence,
		Machine:    m,
	}
}

// Phase is the turn's current phase.
func (tc *TurnContext) Phase() statemachine.Phase {
	return tc.Machine.Current()
}

// Move transitions the turn's state machine. Illegal moves panic.
func (tc *TurnContext) Move(to statemachine.Phase, reason string) {
	tc.Machine.Transition(to, reason)
}
