// Package statemachine holds the fixed phase graph a turn moves through.
package statemachine

import (
	"fmt"
	"time"
)

type Phase string

const (
	Idle                  Phase = "idle"
	ReceivingInput        Phase = "receiving-input"
	Planning              Phase = "planning"
	AnalyzingIntent       Phase = "analyzing-intent"
	SelectingTools        Phase = "selecting-tools"
	Executing             Phase = "executing"
	CallingTool           Phase = "calling-tool"
	WaitingForInfo        Phase = "waiting-for-info"
	Evaluating            Phase = "evaluating"
	CheckingCompleteness  Phase = "checking-completeness"
	HandlingContradiction Phase = "handling-contradiction"
	ClarificationNeeded   Phase = "clarification-needed"
	GeneratingResponse    Phase = "generating-response"
	Complete              Phase = "complete"
	ErrorRecovery         Phase = "error-recovery"
)

// Graph is an adjacency map of allowed transitions.
type Graph map[Phase][]Phase

// DefaultGraph returns the transition graph used by the orchestrator.
func DefaultGraph() Graph {
	g := Graph{
		Idle:                  {ReceivingInput},
		ReceivingInput:        {Planning, HandlingContradiction},
		Planning:              {AnalyzingIntent},
		AnalyzingIntent:       {SelectingTools, GeneratingResponse, ClarificationNeeded},
		SelectingTools:        {Executing, WaitingForInfo, GeneratingResponse},
		Executing:             {CallingTool, Evaluating},
		CallingTool:           {Executing, Evaluating, WaitingForInfo},
		WaitingForInfo:        {Evaluating, GeneratingResponse, ClarificationNeeded},
		Evaluating:            {CheckingCompleteness, HandlingContradiction, GeneratingResponse},
		CheckingCompleteness:  {GeneratingResponse, Executing, ClarificationNeeded},
		HandlingContradiction: {ClarificationNeeded, GeneratingResponse, Planning},
		ClarificationNeeded:   {GeneratingResponse},
		GeneratingResponse:    {Complete},
		Complete:              {Idle},
		ErrorRecovery:         {GeneratingResponse, Planning, ClarificationNeeded},
	}

	// Every working phase can abort into error recovery.
	for from := range g {
		switch from {
		case Idle, Complete, ErrorRecovery:
			continue
		}
		g[from] = append(g[from], ErrorRecovery)
	}
	return g
}

func (g Graph) Allows(from, to Phase) bool {
	for _, p := range g[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Transition is one logged phase change.
type Transition struct {
	From   Phase     `json:"from"`
	To     Phase     `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// IllegalTransitionError is raised (as a panic value) when a caller
// attempts an edge that is not in the graph.
type IllegalTransitionError struct {
	From Phase
	To   Phase
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// Machine tracks the phase of a single turn. It is not safe for
// concurrent use; each turn owns its own Machine.
type Machine struct {
	graph    Graph
	current  Phase
	previous Phase
	log      []Transition
	now      func() time.Time
}

func New(g Graph) *Machine {
	return &Machine{
		graph:   g,
		current: Idle,
		now:     time.Now,
	}
}

func (m *Machine) Current() Phase  { return m.current }
func (m *Machine) Previous() Phase { return m.previous }

// Log returns a copy of the transitions taken so far.
func (m *Machine) Log() []Transition {
	out := make([]Transition, len(m.log))
	copy(out, m.log)
	return out
}

func (m *Machine) CanTransition(to Phase) bool {
	return m.graph.Allows(m.current, to)
}

// Transition moves to the given phase or panics with *IllegalTransitionError.
func (m *Machine) Transition(to Phase, reason string) {
	if !m.graph.Allows(m.current, to) {
		panic(&IllegalTransitionError{From: m.current, To: to})
	}
	m.log = append(m.log, Transition{
		From:   m.current,
		To:     to,
		Reason: reason,
		At:     m.now(),
	})
	m.previous = m.current
	m.current = to
}
