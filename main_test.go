package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridegov/contract"
)

var t0 = time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC)

type cliEnv struct {
	dir  string
	args []string
}

// newCLIEnv writes a config with short periods and a tiny supply so a single
// ballot meets quorum.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := `min_deposit = "0.000001"
total_supply = "0.00000001"
quorum_percentage = 10
review_period = "1h"
voting_period = "2h"
timelock = "1h"
max_voting_period = "24h"
max_timelock = "24h"
`
	path := filepath.Join(dir, "govctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return &cliEnv{dir: dir, args: []string{
		"--config", path,
		"--state", filepath.Join(dir, "state.db"),
		"--ledger", filepath.Join(dir, "ledger.db"),
		"--log-level", "off",
	}}
}

func (e *cliEnv) run(at time.Time, args ...string) (string, string, int) {
	var out, errOut bytes.Buffer
	full := append(append([]string{}, e.args...), "--now", at.Format(time.RFC3339))
	code := run(append(full, args...), &out, &errOut)
	return out.String(), errOut.String(), code
}

func (e *cliEnv) mustJSON(t *testing.T, at time.Time, args ...string) map[string]any {
	t.Helper()
	out, errOut, code := e.run(at, append(args, "-o", "json")...)
	require.Equal(t, 0, code, errOut)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	return got
}

func unixField(t *testing.T, m map[string]any, key string) time.Time {
	t.Helper()
	v, ok := m[key].(float64)
	require.True(t, ok, key)
	return time.Unix(int64(v), 0).UTC()
}

func TestGovctlParameterLifecycle(t *testing.T) {
	env := newCLIEnv(t)
	fee := filepath.Join(env.dir, "fee.toml")
	require.NoError(t, os.WriteFile(fee, []byte("platform_fee_percentage = 5\n"), 0o600))

	_, errOut, code := env.run(t0, "faucet", "user:alice", "0.00001")
	require.Equal(t, 0, code, errOut)
	_, errOut, code = env.run(t0, "init", "--as", "user:admin", "--max-ride-distance", "50000", "--policy", "free within 2 minutes")
	require.Equal(t, 0, code, errOut)

	prpsl := env.mustJSON(t, t0, "propose", "--as", "user:alice", "--title", "Lower fee", "--params", fee)
	assert.Equal(t, float64(0), prpsl["id"])
	assert.Equal(t, "params", prpsl["kind"])
	assert.Equal(t, float64(1000), prpsl["deposit"])
	pp := prpsl["proposed_params"].(map[string]any)
	assert.Equal(t, float64(5), pp["platform_fee_percentage"])
	assert.Equal(t, float64(50), pp["rider_cancellation_percentage"], "untouched keys keep the live value")

	votingEnds := unixField(t, prpsl, "voting_end_time")
	executable := unixField(t, prpsl, "execution_time")

	voted := env.mustJSON(t, t0.Add(10*time.Minute), "vote", "0", "--yes", "--as", "user:bob")
	assert.Equal(t, float64(1), voted["vote_yes"])

	_, errOut, code = env.run(votingEnds.Add(-time.Second), "close", "0", "--as", "user:bob")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, contract.ErrVotingPeriodNotEnded.Error())

	closed := env.mustJSON(t, votingEnds, "close", "0", "--as", "user:bob")
	assert.Equal(t, true, closed["is_approved"])
	assert.Equal(t, "approved", closed["phase"])

	_, errOut, code = env.run(executable.Add(-time.Second), "execute", "0", "--as", "user:bob")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, contract.ErrTimelockNotExpired.Error())

	done := env.mustJSON(t, executable, "execute", "0", "--as", "user:bob")
	assert.Equal(t, true, done["is_executed"])
	assert.Equal(t, "executed", done["phase"])

	params := env.mustJSON(t, executable, "show", "params")
	assert.Equal(t, float64(5), params["platform_fee_percentage"])
	assert.Equal(t, "system:governance", params["authority"])

	bal := env.mustJSON(t, executable, "balance", "user:alice")
	assert.Equal(t, float64(10000), bal["balance"], "deposit refunded")

	report := env.mustJSON(t, executable, "audit")
	assert.Equal(t, true, report["balanced"])
	assert.Equal(t, float64(0), report["total_locked"])

	out, errOut, code := env.run(executable, "list", "--phase", "executed", "-o", "yaml")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "title: Lower fee")
	assert.Contains(t, out, "phase: executed")
	assert.Contains(t, out, "kind: params")
}

func TestGovctlRejectedProposalForfeits(t *testing.T) {
	env := newCLIEnv(t)
	_, _, code := env.run(t0, "faucet", "user:alice", "0.00001")
	require.Equal(t, 0, code)
	_, _, code = env.run(t0, "init", "--as", "user:admin")
	require.Equal(t, 0, code)

	prpsl := env.mustJSON(t, t0, "propose", "--as", "user:alice", "--title", "Night surcharge",
		"--option", "yes please", "--option", "no thanks", "--voting-period", "30m")
	votingEnds := unixField(t, prpsl, "voting_end_time")
	assert.Equal(t, t0.Add(time.Hour+30*time.Minute), votingEnds)

	metrics := filepath.Join(env.dir, "govctl.prom")
	closed := env.mustJSON(t, votingEnds, "close", "0", "--as", "user:bob", "--metrics-file", metrics)
	assert.Equal(t, "rejected", closed["phase"])
	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `ridegov_proposals_closed_total{result="quorum_not_reached"} 1`)
	assert.Contains(t, string(prom), "ridegov_escrow_locked_units 0\n", "gauge reports the stored total, not a per-run delta")
	assert.Equal(t, contract.ErrQuorumNotReached.Error(), closed["reject_reason"])

	tr := env.mustJSON(t, votingEnds, "show", "treasury")
	assert.Equal(t, float64(0), tr["total_locked"])
	assert.Equal(t, float64(1000), tr["forfeited"])

	out, errOut, code := env.run(votingEnds, "show", "treasury")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "0.000001000 nmt")
}

func TestGovctlCallerRequired(t *testing.T) {
	env := newCLIEnv(t)
	_, errOut, code := env.run(t0, "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--as")

	_, errOut, code = env.run(t0, "show", "registry", "--as", "user:admin")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, contract.ErrNotInitialized.Error())
}

func TestGovctlRejectsBadFlags(t *testing.T) {
	env := newCLIEnv(t)
	_, _, code := env.run(t0, "vote", "0", "--yes", "--no", "--as", "user:bob")
	assert.Equal(t, 1, code)

	_, errOut, code := env.run(t0, "show", "1", "-o", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown output format")

	_, errOut, code = env.run(t0, "propose", "--as", "user:alice", "--title", "x", "--timelock", "1500ms")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "whole number of seconds")
}

func TestLoadParamsFileOverlay(t *testing.T) {
	dir := t.TempDir()
	base := contract.DefaultParams("system:governance")

	partial := filepath.Join(dir, "partial.toml")
	require.NoError(t, os.WriteFile(partial, []byte("min_ride_distance = 0\ndaily_subscription_fee = 750\n"), 0o600))
	got, err := loadParamsFile(partial, base)
	require.NoError(t, err)
	assert.Zero(t, got.MinRideDistance, "explicit zero is applied")
	assert.Equal(t, int64(750), got.DailySubscriptionFee)
	assert.Equal(t, base.PlatformFeePercentage, got.PlatformFeePercentage)
	assert.Empty(t, got.Authority)

	typo := filepath.Join(dir, "typo.toml")
	require.NoError(t, os.WriteFile(typo, []byte("platform_fees = 5\n"), 0o600))
	_, err = loadParamsFile(typo, base)
	assert.ErrorContains(t, err, "platform_fees")

	full := filepath.Join(dir, "full.json")
	require.NoError(t, os.WriteFile(full, []byte(`{"platform_fee_percentage": 7}`), 0o600))
	got, err = loadParamsFile(full, base)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), got.PlatformFeePercentage)
	assert.Zero(t, got.MinCancellationCharge, "json is taken as a complete set")
}
