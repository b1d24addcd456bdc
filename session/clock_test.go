package session

import (
	"testing"

	"liveshop/entities"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSessionState(t *testing.T) {
	testCases := []struct {
		name      string
		lifecycle entities.ShowLifecycle
		phase     entities.StreamPhase
		expected  entities.SessionState
	}{
		{
			name:      "ended show exposes nothing",
			lifecycle: entities.ShowEnded,
			phase:     entities.StreamLive,
			expected:  entities.SessionState{},
		},
		{
			name:      "cancelled show exposes nothing",
			lifecycle: entities.ShowCancelled,
			phase:     entities.StreamLive,
			expected:  entities.SessionState{},
		},
		{
			name:      "scheduled without stream is preview only",
			lifecycle: entities.ShowScheduled,
			phase:     entities.StreamNone,
			expected:  entities.SessionState{},
		},
		{
			name:      "live stream permits buying",
			lifecycle: entities.ShowLive,
			phase:     entities.StreamLive,
			expected:  entities.SessionState{CanShowProducts: true, CanBuy: true, IsLive: true},
		},
		{
			name:      "scheduled show with live stream permits buying",
			lifecycle: entities.ShowScheduled,
			phase:     entities.StreamLive,
			expected:  entities.SessionState{CanShowProducts: true, CanBuy: true, IsLive: true},
		},
		{
			name:      "starting stream shows products but blocks buying",
			lifecycle: entities.ShowLive,
			phase:     entities.StreamStarting,
			expected:  entities.SessionState{CanShowProducts: true},
		},
		{
			name:      "live lifecycle without stream exposes nothing",
			lifecycle: entities.ShowLive,
			phase:     entities.StreamNone,
			expected:  entities.SessionState{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			show := entities.Show{
				LifecycleStatus: tc.lifecycle,
				StreamPhase:     tc.phase,
			}

			assert.Equal(t, tc.expected, DeriveSessionState(show))

			// no hidden state: a second evaluation of the same input
			// yields the same output
			assert.Equal(t, tc.expected, DeriveSessionState(show))
		})
	}
}

func TestDeriveSessionStateTerminalNeverBuyable(t *testing.T) {
	for _, lifecycle := range []entities.ShowLifecycle{entities.ShowEnded, entities.ShowCancelled} {
		for _, phase := range []entities.StreamPhase{entities.StreamNone, entities.StreamStarting, entities.StreamLive} {
			state := DeriveSessionState(entities.Show{
				LifecycleStatus: lifecycle,
				StreamPhase:     phase,
			})

			assert.False(t, state.CanBuy, "lifecycle %s phase %s", lifecycle, phase)
			assert.False(t, state.CanShowProducts, "lifecycle %s phase %s", lifecycle, phase)
		}
	}
}
