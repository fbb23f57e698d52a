package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// mustExecute runs the root command and fails the test on error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, "actdb %v", args)
	return out
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "actdb.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "actdb", cmd.Use)
	assert.Contains(t, cmd.Short, "ActDB")
	assert.Contains(t, cmd.Long, "append-only log")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"store", "act", "query", "log", "replay", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"db", "config", "verify"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestActCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	actCmd, _, err := cmd.Find([]string{"act"})
	require.NoError(t, err)

	argsFlag := actCmd.Flags().Lookup("args")
	require.NotNil(t, argsFlag)
	assert.Equal(t, "null", argsFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "log", "--db", tempDB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestStoreActQuery(t *testing.T) {
	db := tempDB(t)

	assert.Equal(t, "id_0\n", mustExecute(t, "store", `{"bar": "baz"}`, "--db", db))
	assert.Equal(t, "id_1 seq=0\n", mustExecute(t, "act", "gather", "--args", `{"foo": "id_0"}`, "--db", db))

	out := mustExecute(t, "query", "--db", db)
	assert.Equal(t, `id_1 version=1 seq=0 action=gather args={"foo":"id_0"} value={"foo":{"bar":"baz"}}`+"\n", out)

	out = mustExecute(t, "query", "--id", "id_0", "--db", db)
	assert.Equal(t, `id_0 version=0 value={"bar":"baz"}`+"\n", out)
}

func TestQuery_Selectors(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, "act", "accumulate", "--args", "1", "--db", db)
	mustExecute(t, "store", `"x"`, "--db", db)
	mustExecute(t, "act", "accumulate", "--args", "2", "--db", db)
	mustExecute(t, "act", "count", "--db", db)

	out := mustExecute(t, "query", "--seq", "1", "--db", db)
	assert.Contains(t, out, "id_2 version=2 seq=1 action=accumulate args=2 value=[1,2]")

	out = mustExecute(t, "query", "--seq", "0", "--db", db)
	assert.Contains(t, out, "value=[1]")

	out = mustExecute(t, "query", "--version", "1", "--db", db)
	assert.Contains(t, out, "id_0 version=0 seq=0")

	out = mustExecute(t, "query", "--version", "2", "--id", "id_3", "--db", db)
	assert.Equal(t, "No entry found.\n", out)

	out = mustExecute(t, "query", "--db", db)
	assert.Contains(t, out, "action=count args=null value=3")

	out = mustExecute(t, "query", "--name", "accumulate", "--db", db)
	assert.Contains(t, out, "id_0 version=0")

	out = mustExecute(t, "query", "--all", "--name", "accumulate", "--no-values", "--db", db)
	assert.Equal(t, "id_0 version=0 seq=0 action=accumulate args=1\nid_2 version=2 seq=1 action=accumulate args=2\n", out)
}

func TestQuery_JSON(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, "store", "5", "--db", db)
	mustExecute(t, "act", "gather", "--args", `{"n": "id_0"}`, "--db", db)

	out := mustExecute(t, "query", "--all", "--format", "json", "--db", db)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Found bool             `json:"found"`
			Rows  []map[string]any `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Found)
	require.Len(t, resp.Data.Rows, 2)
	assert.Equal(t, "id_0", resp.Data.Rows[0]["id"])
	assert.Equal(t, float64(5), resp.Data.Rows[0]["value"])
	assert.Equal(t, "gather", resp.Data.Rows[1]["name"])
	assert.Equal(t, map[string]any{"n": float64(5)}, resp.Data.Rows[1]["value"])
}

func TestQuery_ConflictingSelectors(t *testing.T) {
	_, err := execute(t, "query", "--id", "id_0", "--seq", "0", "--db", tempDB(t))
	require.Error(t, err)
}

func TestStore_InvalidJSON(t *testing.T) {
	db := tempDB(t)
	out, err := execute(t, "store", `{"bar":`, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E201]")

	// Nothing was written.
	assert.Equal(t, "Log is empty.\n", mustExecute(t, "log", "--db", db))
}

func TestAct_UnknownAction(t *testing.T) {
	db := tempDB(t)
	out, err := execute(t, "act", "nope", "--format", "json", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownAction, resp.Error.Code)
}

func TestLog_ListsWithoutValues(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, "store", `{"a": 1}`, "--db", db)
	mustExecute(t, "act", "gather", "--args", `{"a": "id_0"}`, "--db", db)

	out := mustExecute(t, "log", "--db", db)
	assert.Equal(t, "id_0 version=0\n"+`id_1 version=1 seq=0 action=gather args={"a":"id_0"}`+"\n", out)

	out = mustExecute(t, "log", "--format", "json", "--db", db)
	var raw struct {
		Data struct {
			LogID   string           `json:"log_id"`
			Entries []map[string]any `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.NotEmpty(t, raw.Data.LogID)
	require.Len(t, raw.Data.Entries, 2)
	assert.NotContains(t, raw.Data.Entries[1], "value")
}

func TestReplay_Deterministic(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, "store", `"foo"`, "--db", db)
	mustExecute(t, "act", "accumulate", "--args", "1", "--db", db)
	mustExecute(t, "act", "accumulate", "--args", "2", "--db", db)

	out := mustExecute(t, "replay", "--db", db)
	assert.Contains(t, out, "Replayed 3 entries (2 actions)")
	assert.Contains(t, out, "Recorded 2 new result hash(es)")
	assert.Contains(t, out, "✓ deterministic")

	// A second run checks against the hashes recorded by the first.
	out = mustExecute(t, "replay", "--format", "json", "--db", db)
	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Deterministic)
	assert.Equal(t, 0, resp.Data.Recorded)
	assert.Equal(t, 2, resp.Data.Actions)
	assert.Empty(t, resp.Data.Divergences)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	cfg := filepath.Join(dir, "actdb.cue")
	require.NoError(t, os.WriteFile(cfg, []byte(`db: "`+filepath.ToSlash(db)+`"`+"\nverify: true\n"), 0644))

	mustExecute(t, "store", "1", "--config", cfg)
	_, err := os.Stat(db)
	require.NoError(t, err, "config db path should be used")

	// --db overrides the file.
	other := tempDB(t)
	assert.Equal(t, "id_0\n", mustExecute(t, "store", "2", "--config", cfg, "--db", other))
	assert.Equal(t, "id_1\n", mustExecute(t, "store", "3", "--config", cfg))
}

func TestConfigFile_Invalid(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(cfg, []byte(`log_level: "loud"`), 0644))

	_, err := execute(t, "log", "--config", cfg, "--db", tempDB(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestTestCommand(t *testing.T) {
	scenarios := filepath.Join("..", "harness", "testdata", "scenarios")
	golden := filepath.Join("..", "harness", "testdata", "golden")

	out := mustExecute(t, "test", scenarios, "--golden", golden)
	assert.Contains(t, out, "✓ gather")
	assert.Contains(t, out, "✓ accumulate")
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")

	out = mustExecute(t, "test", scenarios, "--filter", "gath*", "--format", "json")
	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "gather", resp.Data.Scenarios[0].Name)
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wrong.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`name: wrong
description: Expects the wrong value
steps:
  - store: 1
  - query: {id: id_0}
    expect:
      value: 2
`), 0644))

	out, err := execute(t, "test", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestTestCommand_UpdateGolden(t *testing.T) {
	golden := t.TempDir()
	scenarios := filepath.Join("..", "harness", "testdata", "scenarios")

	_, err := execute(t, "test", scenarios, "--update")
	require.Error(t, err, "--update without --golden")

	mustExecute(t, "test", scenarios, "--golden", golden, "--update")
	written, err := os.ReadFile(filepath.Join(golden, "gather.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "gather.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	mustExecute(t, "test", scenarios, "--golden", golden)
}
