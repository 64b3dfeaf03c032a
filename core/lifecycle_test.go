package core

import (
	"testing"

	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleHappyPath(t *testing.T) {
	l := NewLifecycle()
	assert.Equal(t, schema.Installing, l.State())

	for _, next := range []schema.LifecycleState{schema.Installed, schema.Activating, schema.Activated} {
		require.NoError(t, l.Transition(next))
		assert.Equal(t, next, l.State())
	}
}

func TestLifecycleIllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []schema.LifecycleState
		bad  schema.LifecycleState
	}{
		{"skip install", nil, schema.Activating},
		{"jump to activated", nil, schema.Activated},
		{"repeat installed", []schema.LifecycleState{schema.Installed}, schema.Installed},
		{"rollback", []schema.LifecycleState{schema.Installed, schema.Activating}, schema.Installing},
		{"past activated", []schema.LifecycleState{schema.Installed, schema.Activating, schema.Activated}, schema.Installing},
		{"empty state", []schema.LifecycleState{schema.Installed, schema.Activating, schema.Activated}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle()
			for _, s := range tt.path {
				require.NoError(t, l.Transition(s))
			}
			before := l.State()
			err := l.Transition(tt.bad)
			assert.ErrorIs(t, err, ErrIllegalTransition)
			assert.Equal(t, before, l.State(), "a rejected transition leaves the state unchanged")
		})
	}
}
