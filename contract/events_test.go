package contract_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridegov/contract"
)

// eventCodes pulls the evt field out of every json log line.
func eventCodes(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var codes []string
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		if evt, ok := line["evt"].(string); ok {
			codes = append(codes, evt)
		}
	}
	return codes
}

func TestLifecycleEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	gt := SetupGovernanceTest(t, contract.WithLogger(logger))

	prpsl := createParamsProposal(t, gt, alice)
	approveProposal(t, gt, prpsl)
	gt.at(prpsl.ExecutionTime)
	_, err := gt.engine.ExecuteProposal(bob, prpsl.ID)
	require.NoError(t, err)

	codes := eventCodes(t, &buf)
	assert.Equal(t, "gi", codes[0])
	assert.Contains(t, codes, "pc")
	assert.Contains(t, codes, "tl")
	assert.Contains(t, codes, "v")
	assert.Contains(t, codes, "ps")
	assert.Contains(t, codes, "px")
	assert.Contains(t, codes, "pm")
	assert.Contains(t, codes, "tr")
	assert.Equal(t, "pr", codes[len(codes)-1])
}

func TestNoEventsForRejectedCalls(t *testing.T) {
	var buf bytes.Buffer
	gt := SetupGovernanceTest(t, contract.WithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel)))
	prpsl := createGenericProposal(t, gt, alice)
	buf.Reset()

	_, err := gt.engine.CloseProposal(bob, prpsl.ID)
	require.ErrorIs(t, err, contract.ErrVotingPeriodNotEnded)
	_, err = gt.engine.Vote(alice, prpsl.ID, true)
	require.NoError(t, err)
	_, err = gt.engine.Vote(alice, prpsl.ID, true)
	require.ErrorIs(t, err, contract.ErrAlreadyVoted)

	assert.Equal(t, []string{"v"}, eventCodes(t, &buf))
}
