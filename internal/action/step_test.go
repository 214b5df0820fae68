package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepValidate(t *testing.T) {
	cases := []struct {
		name string
		step Step
		ok   bool
	}{
		{"open_app with path", NewOpenApp("/usr/bin/code"), true},
		{"open_app empty path", Step{Kind: KindOpenApp}, false},
		{"open_url absolute", NewOpenURL("https://example.com/x"), true},
		{"open_url relative", NewOpenURL("/just/a/path"), false},
		{"open_url garbage", NewOpenURL("not a url"), false},
		{"delay zero", NewDelay(0), true},
		{"delay positive", NewDelay(2.5), true},
		{"delay negative", NewDelay(-0.1), false},
		{"click left", NewClick(10, 20), true},
		{"click right", NewClickButton(10, 20, "right"), true},
		{"click bad button", NewClickButton(10, 20, "middle"), false},
		{"type_text", NewTypeText("hello"), true},
		{"type_text empty", NewTypeText(""), false},
		{"hotkey chord", NewHotkey("ctrl", "shift", "p"), true},
		{"hotkey single", NewHotkey("f5"), true},
		{"hotkey empty", Step{Kind: KindHotkey}, false},
		{"hotkey unknown key", NewHotkey("ctrl", "florp"), false},
		{"paste", NewPaste(), true},
		{"set_clipboard", NewSetClipboard("copied"), true},
		{"set_clipboard empty", NewSetClipboard(""), false},
		{"run command", NewRunCommand("notepad.exe"), true},
		{"run blank", NewRunCommand("   "), false},
		{"unknown kind", Step{Kind: "teleport"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.step.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStepJSONShape(t *testing.T) {
	data, err := json.Marshal(NewDelay(1.5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"delay","seconds":1.5}`, string(data))

	data, err = json.Marshal(NewClickButton(120, 240, "right"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"click","x":120,"y":240,"button":"right"}`, string(data))

	var s Step
	require.NoError(t, json.Unmarshal([]byte(`{"type":"hotkey","keys":["ctrl","c"]}`), &s))
	assert.Equal(t, NewHotkey("ctrl", "c"), s)
}

func TestStepDescribe(t *testing.T) {
	assert.Equal(t, "Click left at (10, 20)", NewClick(10, 20).Describe())
	assert.Equal(t, "Press ctrl+s", NewHotkey("ctrl", "s").Describe())
	assert.Equal(t, "Wait 1.5s", NewDelay(1.5).Describe())

	long := NewTypeText("0123456789012345678901234567890123456789")
	assert.Contains(t, long.Describe(), "...")
	assert.Contains(t, long.Describe(), "40 chars")
}

func TestDefinitionValidate(t *testing.T) {
	def := NewDefinition("demo", []Step{NewDelay(1)})
	require.NoError(t, def.Validate())
	assert.NotEmpty(t, def.ID)
	assert.True(t, def.Enabled)

	noSteps := NewDefinition("empty", nil)
	assert.Error(t, noSteps.Validate())

	noID := def
	noID.ID = ""
	assert.Error(t, noID.Validate())

	badStep := NewDefinition("bad", []Step{NewDelay(-1)})
	assert.Error(t, badStep.Validate())

	badHotkey := NewDefinition("chord", []Step{NewDelay(1)})
	badHotkey.Hotkey = "ctrl+"
	assert.Error(t, badHotkey.Validate())
}

func TestValidateSet(t *testing.T) {
	a := NewDefinition("a", []Step{NewDelay(1)})
	a.Hotkey = "ctrl+1"
	b := NewDefinition("b", []Step{NewDelay(1)})
	b.Hotkey = "ctrl+2"

	require.NoError(t, ValidateSet([]Definition{a, b}))

	dupID := b
	dupID.ID = a.ID
	dupID.Hotkey = ""
	assert.Error(t, ValidateSet([]Definition{a, dupID}))

	// Same chord under a different spelling still collides.
	dupChord := b
	dupChord.Hotkey = "Ctrl + 1"
	assert.Error(t, ValidateSet([]Definition{a, dupChord}))

	// A disabled definition releases its chord.
	disabled := a
	disabled.Enabled = false
	assert.NoError(t, ValidateSet([]Definition{disabled, dupChord}))
}

func TestRunResultStepEntries(t *testing.T) {
	res := RunResult{ActionID: "a"}
	res.Append(LevelInfo, "run started", 0)
	res.Append(LevelDebug, "step 1/2: Wait 1.0s", 1)
	res.Append(LevelInfo, "done", 1)
	res.Append(LevelError, "failed", 2)

	assert.Len(t, res.StepEntries(1), 2)
	assert.Len(t, res.StepEntries(2), 1)
	assert.Empty(t, res.StepEntries(3))
}
