package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"ridegov/contract"
	"ridegov/sdk"
)

// renderer prints records as a table, json (tinyjson, amounts in base units)
// or yaml.
type renderer struct {
	out    io.Writer
	format string
	// now is the instant phases are derived at.
	now int64
}

// proposalDoc adds the derived phase to the stored record for yaml output.
type proposalDoc struct {
	contract.Proposal `yaml:",inline"`
	Phase             contract.Phase `yaml:"phase"`
}

type balanceDoc struct {
	Address sdk.Address     `yaml:"address"`
	Balance contract.Amount `yaml:"balance"`
}

func (r *renderer) write(data []byte) error {
	_, err := fmt.Fprintln(r.out, strings.TrimRight(string(data), "\n"))
	return err
}

func (r *renderer) yaml(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return r.write(data)
}

func (r *renderer) json(v contract.JSONMarshaler) error {
	data, err := contract.ToJSON(v)
	if err != nil {
		return err
	}
	return r.write(data)
}

// kv renders a two column key/value table.
func (r *renderer) kv(title string, rows [][2]string) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.Style().Options.SeparateRows = false
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, Colors: text.Colors{text.Bold}},
		{Number: 2, Align: text.AlignLeft, WidthMax: 72},
	})
	for _, row := range rows {
		t.AppendRow(table.Row{row[0], row[1]})
	}
	return r.write([]byte(t.Render()))
}

func (r *renderer) proposal(p *contract.Proposal) error {
	phase := p.Phase(r.now)
	switch r.format {
	case "json":
		return r.json(contract.ProposalView{Proposal: p, Phase: phase})
	case "yaml":
		return r.yaml(proposalDoc{Proposal: *p, Phase: phase})
	}
	rows := [][2]string{
		{"id", contract.UInt64ToString(p.ID)},
		{"title", p.Title},
		{"kind", p.Kind.String()},
		{"phase", phase.String()},
		{"creator", p.Creator.String()},
		{"deposit", tokens(p.Deposit)},
		{"votes", fmt.Sprintf("%d yes / %d no", p.VoteYes, p.VoteNo)},
		{"created", formatUnix(p.CreatedAt)},
		{"review ends", formatUnix(p.ReviewEndTime)},
		{"voting ends", formatUnix(p.VotingEndTime)},
		{"executable", formatUnix(p.ExecutionTime)},
	}
	if p.Description != "" {
		rows = append(rows, [2]string{"description", p.Description})
	}
	if len(p.Options) > 0 {
		rows = append(rows, [2]string{"options", strings.Join(p.Options, ", ")})
	}
	if p.ProposedParams != nil {
		rows = append(rows, paramRows(p.ProposedParams)...)
	}
	if p.RejectReason != "" {
		rows = append(rows, [2]string{"rejected", p.RejectReason})
	}
	if p.ExecutedAt != 0 {
		rows = append(rows, [2]string{"executed", formatUnix(p.ExecutedAt)})
	}
	rows = append(rows, [2]string{"tx", p.Tx})
	return r.kv("Proposal "+contract.UInt64ToString(p.ID), rows)
}

func (r *renderer) proposals(list []*contract.Proposal) error {
	switch r.format {
	case "json":
		views := make([]contract.ProposalView, len(list))
		for i, p := range list {
			views[i] = contract.ProposalView{Proposal: p, Phase: p.Phase(r.now)}
		}
		data, err := contract.ListToJSON(views)
		if err != nil {
			return err
		}
		return r.write(data)
	case "yaml":
		docs := make([]proposalDoc, len(list))
		for i, p := range list {
			docs[i] = proposalDoc{Proposal: *p, Phase: p.Phase(r.now)}
		}
		return r.yaml(docs)
	}
	if len(list) == 0 {
		return r.write([]byte("No proposals found"))
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Kind", "Phase", "Yes", "No", "Deposit", "Voting Ends"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 40},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	for _, p := range list {
		t.AppendRow(table.Row{p.ID, p.Title, p.Kind, p.Phase(r.now), p.VoteYes, p.VoteNo, tokens(p.Deposit), formatUnix(p.VotingEndTime)})
	}
	return r.write([]byte(t.Render()))
}

func (r *renderer) closeResult(res *contract.CloseResult) error {
	if r.format != "table" {
		return r.proposal(res.Proposal)
	}
	d := res.Decision
	verdict := "approved"
	if reason := res.Reason; reason != nil {
		verdict = "rejected: " + reason.Error()
	}
	return r.kv("Proposal "+contract.UInt64ToString(res.Proposal.ID)+" closed", [][2]string{
		{"result", verdict},
		{"votes", fmt.Sprintf("%d yes / %d no", d.Yes, d.No)},
		{"quorum", fmt.Sprintf("%d of %d ballots", d.Yes+d.No, d.QuorumRequired)},
		{"executable", formatUnix(res.Proposal.ExecutionTime)},
	})
}

func (r *renderer) registry(reg *contract.Registry) error {
	switch r.format {
	case "json":
		return r.json(*reg)
	case "yaml":
		return r.yaml(reg)
	}
	return r.kv("Registry", [][2]string{
		{"id", reg.ID.String()},
		{"authority", reg.Authority.String()},
		{"max ride distance", contract.UInt64ToString(uint64(reg.MaxRideDistance))},
		{"cancellation policy", reg.CancellationPolicy},
		{"proposals", contract.UInt64ToString(reg.ProposalCount)},
	})
}

func (r *renderer) treasury(t *contract.Treasury) error {
	switch r.format {
	case "json":
		return r.json(*t)
	case "yaml":
		return r.yaml(t)
	}
	return r.kv("Treasury", [][2]string{
		{"account", t.Account.String()},
		{"authority", t.Authority.String()},
		{"locked", tokens(t.TotalLocked)},
		{"forfeited", tokens(t.Forfeited)},
		{"deposits", tokens(t.Deposits)},
	})
}

func (r *renderer) params(p *contract.ParameterSet) error {
	switch r.format {
	case "json":
		return r.json(*p)
	case "yaml":
		return r.yaml(p)
	}
	rows := append([][2]string{{"authority", p.Authority.String()}}, paramRows(p)...)
	return r.kv("Parameters", rows)
}

func paramRows(p *contract.ParameterSet) [][2]string {
	pct := func(v uint8) string { return strconv.Itoa(int(v)) + "%" }
	return [][2]string{
		{"min cancellation charge", strconv.FormatInt(p.MinCancellationCharge, 10)},
		{"rider cancellation", pct(p.RiderCancellationPercentage)},
		{"driver cancellation", pct(p.DriverCancellationPercentage)},
		{"platform cancellation", pct(p.PlatformCancellationPercentage)},
		{"platform fee", pct(p.PlatformFeePercentage)},
		{"daily subscription fee", strconv.FormatInt(p.DailySubscriptionFee, 10)},
		{"min ride distance", strconv.FormatInt(p.MinRideDistance, 10)},
	}
}

func (r *renderer) ballots(list []*contract.Ballot) error {
	switch r.format {
	case "json":
		data, err := contract.ListToJSON(list)
		if err != nil {
			return err
		}
		return r.write(data)
	case "yaml":
		return r.yaml(list)
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Voter", "Vote", "Cast At"})
	for _, b := range list {
		vote := "no"
		if b.Support {
			vote = "yes"
		}
		t.AppendRow(table.Row{b.Voter, vote, formatUnix(b.CastAt)})
	}
	return r.write([]byte(t.Render()))
}

func (r *renderer) escrowReport(rep *contract.EscrowReport) error {
	switch r.format {
	case "json":
		return r.json(*rep)
	case "yaml":
		return r.yaml(rep)
	}
	status := "balanced"
	if !rep.Balanced() {
		status = "MISMATCH"
	}
	ids := make([]string, len(rep.Holding))
	for i, id := range rep.Holding {
		ids[i] = contract.UInt64ToString(id)
	}
	return r.kv("Escrow audit", [][2]string{
		{"status", status},
		{"locked", tokens(rep.TotalLocked)},
		{"expected", tokens(rep.Expected)},
		{"holding", strings.Join(ids, ", ")},
		{"ledger balance", tokens(rep.LedgerBalance)},
		{"pool", tokens(rep.Pool)},
	})
}

func (r *renderer) balance(addr sdk.Address, bal contract.Amount) error {
	switch r.format {
	case "json":
		w := jwriter.Writer{}
		w.RawString(`{"address":`)
		w.String(addr.String())
		w.RawString(`,"balance":`)
		w.Int64(int64(bal))
		w.RawByte('}')
		data, err := w.BuildBytes()
		if err != nil {
			return err
		}
		return r.write(data)
	case "yaml":
		return r.yaml(balanceDoc{Address: addr, Balance: bal})
	}
	return r.kv("Balance", [][2]string{{"address", addr.String()}, {"balance", tokens(bal)}})
}

// tokens renders an amount with the token ticker for tables.
func tokens(a contract.Amount) string {
	return sdk.AssetNMT.Display(int64(a))
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
