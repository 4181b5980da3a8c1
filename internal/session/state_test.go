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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachine_StartsIdle(t *testing.T) {
	sm := NewStateMachine()
	assert.Equal(t, StateIdle, sm.Current())
}

func TestStateMachine_FullCycleWithDriving(t *testing.T) {
	sm := NewStateMachine()

	require.NoError(t, sm.Transition(StateAnalyzing))
	require.NoError(t, sm.Transition(StateReporting))
	require.NoError(t, sm.Transition(StateDriving))
	require.NoError(t, sm.Transition(StateIdle))
	assert.Equal(t, StateIdle, sm.Current())
}

func TestStateMachine_ReportingMayReturnDirectlyToIdle(t *testing.T) {
	sm := NewStateMachine()

	require.NoError(t, sm.Transition(StateAnalyzing))
	require.NoError(t, sm.Transition(StateReporting))
	require.NoError(t, sm.Transition(StateIdle))
}

func TestStateMachine_RejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		walk []State
		bad  State
	}{
		{"idle to reporting", nil, StateReporting},
		{"idle to driving", nil, StateDriving},
		{"analyzing to driving", []State{StateAnalyzing}, StateDriving},
		{"analyzing to idle", []State{StateAnalyzing}, StateIdle},
		{"driving to reporting", []State{StateAnalyzing, StateReporting, StateDriving}, StateReporting},
		{"reentrant analyzing", []State{StateAnalyzing}, StateAnalyzing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for _, s := range tt.walk {
				require.NoError(t, sm.Transition(s))
			}
			before := sm.Current()
			assert.False(t, sm.CanTransition(tt.bad))
			assert.Error(t, sm.Transition(tt.bad))
			assert.Equal(t, before, sm.Current(), "failed transition must not move the machine")
		})
	}
}

func TestStateMachine_Reset(t *testing.T) {
	sm := NewStateMachine()
	require.NoError(t, sm.Transition(StateAnalyzing))

	sm.Reset()

	assert.Equal(t, StateIdle, sm.Current())
}
