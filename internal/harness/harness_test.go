package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actdb/internal/ir"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_StoreAndQuery(t *testing.T) {
	result, err := Run(mustParse(t, `
name: store
description: Store and read back
steps:
  - store: foo
  - store: {bar: 100}
  - query: {id: id_1}
    expect:
      id: id_1
      value: {bar: 100}
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	require.Len(t, result.Trace, 3)

	assert.Equal(t, OpStore, result.Trace[0].Op)
	assert.Equal(t, "id_0", result.Trace[0].ID)
	assert.Equal(t, ir.IRString("foo"), result.Trace[0].Value)
	assert.Equal(t, 1, result.Trace[1].Version)

	require.Len(t, result.Trace[2].Rows, 1)
	assert.Equal(t, "id_1", result.Trace[2].Rows[0].ID())
}

func TestRun_FailedExpectationsAreReported(t *testing.T) {
	result, err := Run(mustParse(t, `
name: failing
description: Every expectation is wrong
steps:
  - store: 1
  - query: {id: id_0}
    expect:
      found: false
      id: id_9
      value: 2
      ids: [id_3]
      count: 0
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 5)
}

func TestRun_DefaultQueryIsLatest(t *testing.T) {
	result, err := Run(mustParse(t, `
name: latest
description: A query without a selector returns the latest action
steps:
  - act: count
  - store: x
  - act: count
  - query: {}
    expect:
      id: id_2
      value: 2
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_VersionBoundAndWhereAll(t *testing.T) {
	result, err := Run(mustParse(t, `
name: bounds
description: Version bounds and filtered all
steps:
  - act: accumulate
    args: {k: a}
  - act: accumulate
    args: {k: b}
  - act: accumulate
    args: {k: a}
  - query: {all: true, where: {k: a}}
    expect: {ids: [id_0, id_2]}
  - query: {all: true, where: {k: a}, version: 1}
    expect: {ids: [id_0]}
  - query: {latest: true, version: 1}
    expect:
      id: id_1
      value: [{k: a}, {k: b}]
  - query: {id: id_2, version: 1}
    expect: {found: false}
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_NoValuesRowsAreNotHydrated(t *testing.T) {
	result, err := Run(mustParse(t, `
name: no-values
description: Unhydrated rows fail a value expectation
steps:
  - act: count
  - query: {latest: true, no_values: true}
    expect:
      value: 0
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "not hydrated")
}

func TestRun_UnknownAction(t *testing.T) {
	_, err := Run(mustParse(t, `
name: unknown
description: Unknown action names cannot run
steps:
  - act: nope
`))
	assert.Error(t, err)
}

func TestRun_Replay(t *testing.T) {
	result, err := Run(mustParse(t, `
name: replay
description: The saved log replays to the same values
replay: true
steps:
  - store: {a: 1}
  - act: gather
    args: {x: id_0}
  - act: count
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestMarshalTrace(t *testing.T) {
	result, err := Run(mustParse(t, `
name: tiny
description: One store
steps:
  - store: null
`))
	require.NoError(t, err)

	data, err := MarshalTrace("tiny", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario":"tiny","trace":[{"id":"id_0","op":"store","step":0,"value":null,"version":0}]}`,
		string(data))
}
