package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryCmd_Use(t *testing.T) {
	assert.Equal(t, "history [doc-id]", historyCmd.Use)
}

func TestHistoryCmd_LimitDefault(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	assert.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
}

func TestHistoryCmd_HasClearSubcommand(t *testing.T) {
	commands := historyCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "clear")
}

func TestHistoryCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "What is the return policy?")
	assert.Contains(t, buf.String(), "Returns are accepted within 30 days.")
	assert.Contains(t, buf.String(), "Total: 1 turns")
}

func TestHistoryClearCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "clear", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Cleared conversation history for doc-1")
}

func TestHistoryCmd_ServiceNotConfigured(t *testing.T) {
	oldService := chatService
	chatService = nil
	defer func() {
		chatService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chat service not configured")
}
