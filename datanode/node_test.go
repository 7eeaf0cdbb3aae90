package datanode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `
// comment
first_state = idling
script {
	idling {
		on_enter {
			set_animation idling
			if $hp = 5
				print low
			end_if
		}
	}
	dying
	{
		on_enter {
			start_dying
		}
	}
}
`

func TestParseScript(t *testing.T) {
	root, err := ParseScript(sampleScript, "test.txt")
	require.NoError(t, err)

	fs := root.ChildByName("first_state", 0)
	assert.Equal(t, "idling", fs.Value)
	assert.Equal(t, 3, fs.Line)

	script := root.ChildByName("script", 0)
	require.Equal(t, 2, script.ChildCount())

	onEnter := script.ChildByName("idling", 0).ChildByName("on_enter", 0)
	require.Equal(t, 4, onEnter.ChildCount())
	assert.Equal(t, "set_animation idling", onEnter.Child(0).Name)
	assert.Equal(t, "if $hp = 5", onEnter.Child(1).Name, "action lines keep '=' in the name")
	assert.Equal(t, "", onEnter.Child(1).Value)
	assert.Equal(t, "test.txt:9", onEnter.Child(1).Location())

	dying := script.ChildByName("dying", 0)
	assert.Equal(t, "start_dying", dying.ChildByName("on_enter", 0).Child(0).Name)
}

func TestParseTextErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unmatched_close", "a\n}\n"},
		{"unclosed", "a {\n b\n"},
		{"orphan_open", "{\n}\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseString(c.src, "bad.txt")
			assert.Error(t, err)
		})
	}
}

func TestMissingChildrenAreEmpty(t *testing.T) {
	root, err := ParseString("a = 1\na = 2\n", "x")
	require.NoError(t, err)

	assert.Equal(t, 2, root.CountByName("a"))
	assert.Equal(t, "2", root.ChildByName("a", 1).Value)
	assert.True(t, root.ChildByName("a", 2).IsEmpty())
	assert.True(t, root.Child(9).IsEmpty())

	var nilNode *Node
	assert.Equal(t, 0, nilNode.ChildCount())
	assert.True(t, nilNode.ChildByName("x", 0).IsEmpty())
}

func TestFromYAML(t *testing.T) {
	src := []byte(`
first_state: idling
script:
  idling:
    on_enter:
      - set_animation idling
      - if $hp = 5
      - end_if
    on_timer:
      - set_state dying
  dying:
    on_enter: [start_dying]
`)
	root, err := FromYAML(src, "mob.yaml")
	require.NoError(t, err)

	assert.Equal(t, "idling", root.ChildByName("first_state", 0).Value)
	onEnter := root.ChildByName("script", 0).ChildByName("idling", 0).ChildByName("on_enter", 0)
	require.Equal(t, 3, onEnter.ChildCount())
	assert.Equal(t, "if $hp = 5", onEnter.Child(1).Name)
	assert.Equal(t, "mob.yaml", onEnter.Child(1).File)
	assert.Equal(t, 7, onEnter.Child(1).Line)

	dying := root.ChildByName("script", 0).ChildByName("dying", 0)
	assert.Equal(t, "start_dying", dying.ChildByName("on_enter", 0).Child(0).Name)
}

func TestStringRoundTrip(t *testing.T) {
	root := New("", "").Add(
		New("first_state", "idling"),
		New("script", "").Add(
			New("idling", "").Add(
				New("on_enter", "").Add(New("stop", "")),
			),
		),
	)
	back, err := ParseString(root.String(), "rt")
	require.NoError(t, err)
	assert.Equal(t, "stop", back.ChildByName("script", 0).ChildByName("idling", 0).ChildByName("on_enter", 0).Child(0).Name)
	assert.Equal(t, "idling", back.ChildByName("first_state", 0).Value)
}
