// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"fmt"
	"sync"
)

// State is one phase of the diagnostic cycle.
type State string

const (
	// StateIdle means no analysis is in flight.
	StateIdle State = "IDLE"

	// StateAnalyzing covers snapshot capture and the inference
	// round-trip.
	StateAnalyzing State = "ANALYZING"

	// StateReporting covers printing the diagnosis and fix.
	StateReporting State = "REPORTING"

	// StateDriving covers confirmed autonomous command execution.
	StateDriving State = "DRIVING"
)

// AllStates returns every defined state.
func AllStates() []State {
	return []State{StateIdle, StateAnalyzing, StateReporting, StateDriving}
}

// StateMachine enforces valid transitions for the diagnostic cycle.
//
// The transition graph:
//
//	IDLE → ANALYZING        : "ai" action invoked
//	ANALYZING → REPORTING   : snapshot captured, diagnosis received
//	REPORTING → DRIVING     : diagnosis carries suggested commands
//	REPORTING → IDLE        : no suggested commands
//	DRIVING → IDLE          : command pass executed or skipped
//
// Thread Safety:
//
//	StateMachine is safe for concurrent use, though the cycle itself is
//	single-threaded by design.
type StateMachine struct {
	mu          sync.RWMutex
	current     State
	transitions map[State]map[State]bool
}

// NewStateMachine creates a machine in StateIdle.
func NewStateMachine() *StateMachine {
	sm := &StateMachine{
		current:     StateIdle,
		transitions: make(map[State]map[State]bool),
	}
	for _, state := range AllStates() {
		sm.transitions[state] = make(map[State]bool)
	}

	sm.addTransition(StateIdle, StateAnalyzing)
	sm.addTransition(StateAnalyzing, StateReporting)
	sm.addTransition(StateReporting, StateDriving)
	sm.addTransition(StateReporting, StateIdle)
	sm.addTransition(StateDriving, StateIdle)

	return sm
}

func (sm *StateMachine) addTransition(from, to State) {
	sm.transitions[from][to] = true
}

// Current returns the machine's current state.
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// CanTransition reports whether moving from the current state to target
// is valid.
func (sm *StateMachine) CanTransition(to State) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.transitions[sm.current][to]
}

// Transition moves the machine to target.
//
// Outputs:
//
//	error - Non-nil if the transition is not in the graph; the machine
//	        stays in its current state.
func (sm *StateMachine) Transition(to State) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.transitions[sm.current][to] {
		return fmt.Errorf("invalid state transition %s -> %s", sm.current, to)
	}
	sm.current = to
	return nil
}

// Reset forces the machine back to StateIdle regardless of its current
// state. Used when a cycle aborts partway through.
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.current = StateIdle
}
