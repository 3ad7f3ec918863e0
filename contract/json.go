package contract

import (
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"

	"ridegov/sdk"
)

// JSONMarshaler is implemented by every record that can be exported.
type JSONMarshaler interface {
	MarshalTinyJSON(w *jwriter.Writer)
}

// ToJSON renders a record as compact JSON; amounts stay in base units.
func ToJSON(v JSONMarshaler) ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalTinyJSON(&w)
	return w.BuildBytes()
}

// ListToJSON renders a JSON array of records.
func ListToJSON[T JSONMarshaler](items []T) ([]byte, error) {
	w := jwriter.Writer{}
	w.RawByte('[')
	for i, it := range items {
		if i > 0 {
			w.RawByte(',')
		}
		it.MarshalTinyJSON(&w)
	}
	w.RawByte(']')
	return w.BuildBytes()
}

// ParamsFromJSON decodes a candidate parameter set, as written by ToJSON or
// by hand. Unknown keys are skipped.
func ParamsFromJSON(data []byte) (*ParameterSet, error) {
	p := &ParameterSet{}
	l := jlexer.Lexer{Data: data}
	p.UnmarshalTinyJSON(&l)
	if err := l.Error(); err != nil {
		return nil, err
	}
	return p, nil
}

// jsonObject writes "key":value pairs and takes care of the commas.
type jsonObject struct {
	w     *jwriter.Writer
	first bool
}

func openObject(w *jwriter.Writer) *jsonObject {
	w.RawByte('{')
	return &jsonObject{w: w, first: true}
}

func (o *jsonObject) key(k string) *jwriter.Writer {
	if !o.first {
		o.w.RawByte(',')
	}
	o.first = false
	o.w.String(k)
	o.w.RawByte(':')
	return o.w
}

func (o *jsonObject) close() { o.w.RawByte('}') }

func (p ParameterSet) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key("authority").String(p.Authority.String())
	o.key("min_cancellation_charge").Int64(p.MinCancellationCharge)
	o.key("rider_cancellation_percentage").Uint8(p.RiderCancellationPercentage)
	o.key("driver_cancellation_percentage").Uint8(p.DriverCancellationPercentage)
	o.key("platform_cancellation_percentage").Uint8(p.PlatformCancellationPercentage)
	o.key("platform_fee_percentage").Uint8(p.PlatformFeePercentage)
	o.key("daily_subscription_fee").Int64(p.DailySubscriptionFee)
	o.key("min_ride_distance").Int64(p.MinRideDistance)
	o.close()
}

func (p *ParameterSet) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "authority":
			p.Authority = sdk.Address(in.String())
		case "min_cancellation_charge":
			p.MinCancellationCharge = in.Int64()
		case "rider_cancellation_percentage":
			p.RiderCancellationPercentage = in.Uint8()
		case "driver_cancellation_percentage":
			p.DriverCancellationPercentage = in.Uint8()
		case "platform_cancellation_percentage":
			p.PlatformCancellationPercentage = in.Uint8()
		case "platform_fee_percentage":
			p.PlatformFeePercentage = in.Uint8()
		case "daily_subscription_fee":
			p.DailySubscriptionFee = in.Int64()
		case "min_ride_distance":
			p.MinRideDistance = in.Int64()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (r Registry) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key("id").String(r.ID.String())
	o.key("authority").String(r.Authority.String())
	o.key("max_ride_distance").Uint32(r.MaxRideDistance)
	o.key("cancellation_policy").String(r.CancellationPolicy)
	o.key("proposal_count").Uint64(r.ProposalCount)
	o.close()
}

func (t Treasury) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key("authority").String(t.Authority.String())
	o.key("account").String(t.Account.String())
	o.key("total_locked").Int64(int64(t.TotalLocked))
	o.key("forfeited").Int64(int64(t.Forfeited))
	o.key("deposits").Int64(int64(t.Deposits))
	o.close()
}

func (b Ballot) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key("voter").String(b.Voter.String())
	o.key("support").Bool(b.Support)
	o.key("cast_at").Int64(b.CastAt)
	o.close()
}

// ProposalView pairs a proposal with its phase at a given instant, which is
// what the CLI and exports show.
type ProposalView struct {
	*Proposal
	Phase Phase
}

func (v ProposalView) MarshalTinyJSON(w *jwriter.Writer) {
	p := v.Proposal
	o := openObject(w)
	o.key("id").Uint64(p.ID)
	o.key("creator").String(p.Creator.String())
	o.key("kind").String(p.Kind.String())
	o.key("phase").String(v.Phase.String())
	o.key("title").String(p.Title)
	o.key("description").String(p.Description)
	if p.Kind == KindParameterUpdate && p.ProposedParams != nil {
		p.ProposedParams.MarshalTinyJSON(o.key("proposed_params"))
	} else {
		ow := o.key("options")
		ow.RawByte('[')
		for i, opt := range p.Options {
			if i > 0 {
				ow.RawByte(',')
			}
			ow.String(opt)
		}
		ow.RawByte(']')
	}
	o.key("created_at").Int64(p.CreatedAt)
	o.key("review_end_time").Int64(p.ReviewEndTime)
	o.key("voting_end_time").Int64(p.VotingEndTime)
	o.key("execution_time").Int64(p.ExecutionTime)
	o.key("vote_yes").Uint64(p.VoteYes)
	o.key("vote_no").Uint64(p.VoteNo)
	o.key("total_votes").Uint64(p.TotalVotes)
	o.key("is_active").Bool(p.IsActive)
	o.key("is_approved").Bool(p.IsApproved)
	o.key("is_executed").Bool(p.IsExecuted)
	o.key("deposit").Int64(int64(p.Deposit))
	o.key("deposit_released").Bool(p.DepositReleased)
	if p.RejectReason != "" {
		o.key("reject_reason").String(p.RejectReason)
	}
	if p.ClosedAt != 0 {
		o.key("closed_at").Int64(p.ClosedAt)
	}
	if p.ExecutedAt != 0 {
		o.key("executed_at").Int64(p.ExecutedAt)
	}
	o.key("tx").String(p.Tx)
	o.close()
}

func (r EscrowReport) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key("total_locked").Int64(int64(r.TotalLocked))
	o.key("expected").Int64(int64(r.Expected))
	hw := o.key("holding")
	hw.RawByte('[')
	for i, id := range r.Holding {
		if i > 0 {
			hw.RawByte(',')
		}
		hw.Uint64(id)
	}
	hw.RawByte(']')
	o.key("ledger_balance").Int64(int64(r.LedgerBalance))
	o.key("pool").Int64(int64(r.Pool))
	o.key("balanced").Bool(r.Balanced())
	o.close()
}
