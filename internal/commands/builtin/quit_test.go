package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelly/internal/testutils"
)

func TestQuit_RequestsExit(t *testing.T) {
	sh := testutils.NewMockShell(nil)
	cmd := Quit(`\`)

	assert.False(t, sh.ExitRequested)
	require.NoError(t, cmd.Run(sh, "ignored arguments"))
	assert.True(t, sh.ExitRequested)
	assert.Empty(t, sh.Out.String())
}

func TestQuit_UsageFollowsSigil(t *testing.T) {
	assert.Equal(t, `\quit`, Quit(`\`).Usage)
	assert.Equal(t, ":quit", Quit(":").Usage)
}

func TestCommands_Order(t *testing.T) {
	cmds := Commands(`\`)

	require.Len(t, cmds, 2)
	assert.Equal(t, "quit", cmds[0].Name)
	assert.Equal(t, "help", cmds[1].Name)
}
