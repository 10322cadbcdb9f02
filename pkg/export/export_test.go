package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/starobs/core/multinight"
)

func solved(t *testing.T) *multinight.Solution {
	t.Helper()
	b := multinight.NewBuilder()
	b.SetNumberOfNights(2)
	b.SetNumberOfTargets(2)
	b.SetProfit(0, 10)
	b.SetProfit(1, 4)
	b.AddFixedObservable(0, 0, 0, 5, 10, 5)
	b.AddFixedObservable(1, 1, 0, 4, 8, 4)
	inst, err := b.Build()
	require.NoError(t, err)
	sol := multinight.NewSolution(inst)
	require.NoError(t, sol.AppendObservation(0, 0, 0, 0))
	require.NoError(t, sol.AppendObservation(1, 0, 0, 1))
	return sol
}

func TestNewReport(t *testing.T) {
	r := NewReport(solved(t))
	assert.Equal(t, 14.0, r.Profit)
	assert.Equal(t, 2, r.Observations)
	assert.Equal(t, []Entry{
		{Night: 0, Target: 0, Observable: 0, Start: 0, End: 5, Profit: 10},
		{Night: 1, Target: 1, Observable: 0, Start: 1, End: 5, Profit: 4},
	}, r.Entries)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "csv", NewReport(solved(t))))
	assert.Equal(t, "night,target,observable,mode,start,end,profit\n0,0,0,0,0,5,10\n1,1,0,0,1,5,4\n", buf.String())
}

func TestWriteJSONAndYAML(t *testing.T) {
	r := NewReport(solved(t))
	r.RunID = "run-1"
	r.Algorithm = "column-generation-greedy"
	r.Bound = 14

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", r))
	var fromJSON Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, r, fromJSON)

	buf.Reset()
	require.NoError(t, Write(&buf, "yaml", r))
	assert.Contains(t, buf.String(), "run_id: run-1")
	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, r, fromYAML)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", Report{})
	assert.ErrorContains(t, err, `unknown export format "xml"`)
}
