package mob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasyFSMCreator(t *testing.T) {
	var log []string
	var c EasyFSMCreator

	c.NewState("second", 1)
	c.NewEvent(EvTimer)
	c.Run(recorder(&log, "first timer"))
	c.NewEvent(EvTimer)
	c.Run(recorder(&log, "second timer"))
	c.ChangeState("first")

	c.NewState("first", 0)
	c.NewEvent(EvEnter)
	c.ChangeState("second")

	states := c.Finish()
	require.Len(t, states, 2)
	assert.Equal(t, "first", states[0].Name, "states come back sorted by ID")
	assert.Equal(t, "second", states[1].Name)

	timer := states[1].Event(EvTimer)
	require.NotNil(t, timer)
	require.Len(t, timer.Actions, 2, "a repeated event keeps the last declaration")
	assert.Equal(t, EvTimer, timer.Actions[0].ParentEvent)

	first, errs := FixStates(states, "first", nil)
	assert.Empty(t, errs)
	assert.Equal(t, 0, first)
	assert.Equal(t, "0", timer.Actions[1].Args[0])
	assert.Equal(t, "1", states[0].Event(EvEnter).Actions[0].Args[0])
}

func TestFixStatesUnknownTarget(t *testing.T) {
	var c EasyFSMCreator
	c.NewState("only", 0)
	c.NewEvent(EvTimer)
	c.ChangeState("nowhere")
	states := c.Finish()

	first, errs := FixStates(states, "missing", NewType("t", CategoryCustom))
	assert.Equal(t, InvalidIndex, first)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `unknown state "nowhere"`)

	call := states[0].Event(EvTimer).Actions[0]
	assert.False(t, call.Valid)
	assert.Equal(t, "-1", call.Args[0])
}

func TestEasyFSMCreatorIgnoresOrphanEvents(t *testing.T) {
	var c EasyFSMCreator
	c.NewEvent(EvEnter)
	c.Run(func(*Mob, Payload, Payload) {})
	assert.Empty(t, c.Finish())
}
