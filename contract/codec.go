package contract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"ridegov/sdk"
)

// codecVersion leads every record so future layouts can be told apart.
const codecVersion byte = 1

var errUnexpectedEOF = errors.New("unexpected EOF")

type binWriter struct {
	buf bytes.Buffer
}

// newWriter spins up a fresh writer so we dont leak old bytes between encodes.
func newWriter() *binWriter {
	w := &binWriter{}
	w.buf.WriteByte(codecVersion)
	return w
}

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

// writeBool squashes bools into a single byte flag for deterministic payloads.
func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// writeUint64 writes big endian numbers so tooling can read them without guessing.
func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

// writeVarUint uses varints to keep counts and lens compact.
func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binWriter) writeAmount(v Amount) {
	w.writeInt64(int64(v))
}

// writeString prefixes its length then dumps UTF-8 directly.
func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *binWriter) writeAddress(a sdk.Address) {
	w.writeString(a.String())
}

type binReader struct {
	data []byte
	pos  int
}

// newReader checks the version byte and positions the cursor after it.
func newReader(data []byte) (*binReader, error) {
	if len(data) == 0 {
		return nil, errUnexpectedEOF
	}
	if data[0] != codecVersion {
		return nil, fmt.Errorf("unsupported record version %d", data[0])
	}
	return &binReader{data: data, pos: 1}, nil
}

func (r *binReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

// readUint64 decodes big endian integers for ids and totals.
func (r *binReader) readUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errUnexpectedEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val, nil
}

func (r *binReader) readInt64() (int64, error) {
	v, err := r.readUint64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func (r *binReader) readVarUint() (uint64, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varuint")
	}
	r.pos += n
	return val, nil
}

func (r *binReader) readAmount() (Amount, error) {
	val, err := r.readInt64()
	if err != nil {
		return 0, err
	}
	return Amount(val), nil
}

// readString reads the varint length then slices out the utf8 chunk.
func (r *binReader) readString() (string, error) {
	l, err := r.readVarUint()
	if err != nil {
		return "", err
	}
	if l > uint64(len(r.data)-r.pos) {
		return "", errUnexpectedEOF
	}
	s := string(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s, nil
}

func (r *binReader) readAddress() (sdk.Address, error) {
	s, err := r.readString()
	return sdk.Address(s), err
}

// done rejects trailing garbage so a half-overwritten record never decodes.
func (r *binReader) done() error {
	if r.pos != len(r.data) {
		return fmt.Errorf("%d trailing bytes", len(r.data)-r.pos)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

func EncodeRegistry(reg *Registry) []byte {
	w := newWriter()
	w.writeAddress(reg.ID)
	w.writeAddress(reg.Authority)
	w.writeUint64(uint64(reg.MaxRideDistance))
	w.writeString(reg.CancellationPolicy)
	w.writeUint64(reg.ProposalCount)
	return w.bytes()
}

func DecodeRegistry(data []byte) (*Registry, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	reg := &Registry{}
	if reg.ID, err = r.readAddress(); err != nil {
		return nil, err
	}
	if reg.Authority, err = r.readAddress(); err != nil {
		return nil, err
	}
	dist, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	reg.MaxRideDistance = uint32(dist)
	if reg.CancellationPolicy, err = r.readString(); err != nil {
		return nil, err
	}
	if reg.ProposalCount, err = r.readUint64(); err != nil {
		return nil, err
	}
	return reg, r.done()
}

// -----------------------------------------------------------------------------
// Treasury
// -----------------------------------------------------------------------------

func EncodeTreasury(t *Treasury) []byte {
	w := newWriter()
	w.writeAddress(t.Authority)
	w.writeAddress(t.Account)
	w.writeAmount(t.TotalLocked)
	w.writeAmount(t.Forfeited)
	w.writeAmount(t.Deposits)
	return w.bytes()
}

func DecodeTreasury(data []byte) (*Treasury, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	t := &Treasury{}
	if t.Authority, err = r.readAddress(); err != nil {
		return nil, err
	}
	if t.Account, err = r.readAddress(); err != nil {
		return nil, err
	}
	if t.TotalLocked, err = r.readAmount(); err != nil {
		return nil, err
	}
	if t.Forfeited, err = r.readAmount(); err != nil {
		return nil, err
	}
	if t.Deposits, err = r.readAmount(); err != nil {
		return nil, err
	}
	return t, r.done()
}

// -----------------------------------------------------------------------------
// ParameterSet
// -----------------------------------------------------------------------------

// encodeParams writes the fixed field order; the percentages go out as raw bytes.
func encodeParams(w *binWriter, p *ParameterSet) {
	w.writeAddress(p.Authority)
	w.writeInt64(p.MinCancellationCharge)
	w.buf.WriteByte(p.RiderCancellationPercentage)
	w.buf.WriteByte(p.DriverCancellationPercentage)
	w.buf.WriteByte(p.PlatformCancellationPercentage)
	w.buf.WriteByte(p.PlatformFeePercentage)
	w.writeInt64(p.DailySubscriptionFee)
	w.writeInt64(p.MinRideDistance)
}

func decodeParams(r *binReader) (*ParameterSet, error) {
	p := &ParameterSet{}
	var err error
	if p.Authority, err = r.readAddress(); err != nil {
		return nil, err
	}
	if p.MinCancellationCharge, err = r.readInt64(); err != nil {
		return nil, err
	}
	for _, dst := range []*uint8{
		&p.RiderCancellationPercentage,
		&p.DriverCancellationPercentage,
		&p.PlatformCancellationPercentage,
		&p.PlatformFeePercentage,
	} {
		if *dst, err = r.readByte(); err != nil {
			return nil, err
		}
	}
	if p.DailySubscriptionFee, err = r.readInt64(); err != nil {
		return nil, err
	}
	if p.MinRideDistance, err = r.readInt64(); err != nil {
		return nil, err
	}
	return p, nil
}

func EncodeParams(p *ParameterSet) []byte {
	w := newWriter()
	encodeParams(w, p)
	return w.bytes()
}

func DecodeParams(data []byte) (*ParameterSet, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	p, err := decodeParams(r)
	if err != nil {
		return nil, err
	}
	return p, r.done()
}

// -----------------------------------------------------------------------------
// Proposal
// -----------------------------------------------------------------------------

// EncodeProposal packs the whole proposal; the kind byte decides whether the
// options list or the params block follows.
func EncodeProposal(p *Proposal) []byte {
	w := newWriter()
	w.writeUint64(p.ID)
	w.writeAddress(p.Creator)
	w.buf.WriteByte(byte(p.Kind))
	w.writeString(p.Title)
	w.writeString(p.Description)
	switch p.Kind {
	case KindParameterUpdate:
		encodeParams(w, p.ProposedParams)
	default:
		w.writeVarUint(uint64(len(p.Options)))
		for _, opt := range p.Options {
			w.writeString(opt)
		}
	}
	w.writeInt64(p.CreatedAt)
	w.writeInt64(p.ReviewEndTime)
	w.writeInt64(p.VotingEndTime)
	w.writeInt64(p.ExecutionTime)
	w.writeUint64(p.VoteYes)
	w.writeUint64(p.VoteNo)
	w.writeUint64(p.TotalVotes)
	w.writeBool(p.IsActive)
	w.writeBool(p.IsApproved)
	w.writeBool(p.IsExecuted)
	w.writeAmount(p.Deposit)
	w.writeBool(p.DepositReleased)
	w.writeString(p.RejectReason)
	w.writeInt64(p.ClosedAt)
	w.writeInt64(p.ExecutedAt)
	w.writeString(p.Tx)
	return w.bytes()
}

func DecodeProposal(data []byte) (*Proposal, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	prpsl := &Proposal{}
	if prpsl.ID, err = r.readUint64(); err != nil {
		return nil, err
	}
	if prpsl.Creator, err = r.readAddress(); err != nil {
		return nil, err
	}
	kind, err := r.readByte()
	if err != nil {
		return nil, err
	}
	prpsl.Kind = ProposalKind(kind)
	if prpsl.Title, err = r.readString(); err != nil {
		return nil, err
	}
	if prpsl.Description, err = r.readString(); err != nil {
		return nil, err
	}
	switch prpsl.Kind {
	case KindParameterUpdate:
		if prpsl.ProposedParams, err = decodeParams(r); err != nil {
			return nil, err
		}
	case KindGeneric:
		count, err := r.readVarUint()
		if err != nil {
			return nil, err
		}
		if count > MaxOptions {
			return nil, fmt.Errorf("option count %d out of range", count)
		}
		for i := uint64(0); i < count; i++ {
			opt, err := r.readString()
			if err != nil {
				return nil, err
			}
			prpsl.Options = append(prpsl.Options, opt)
		}
	default:
		return nil, fmt.Errorf("unknown proposal kind %d", kind)
	}
	for _, dst := range []*int64{
		&prpsl.CreatedAt,
		&prpsl.ReviewEndTime,
		&prpsl.VotingEndTime,
		&prpsl.ExecutionTime,
	} {
		if *dst, err = r.readInt64(); err != nil {
			return nil, err
		}
	}
	for _, dst := range []*uint64{&prpsl.VoteYes, &prpsl.VoteNo, &prpsl.TotalVotes} {
		if *dst, err = r.readUint64(); err != nil {
			return nil, err
		}
	}
	for _, dst := range []*bool{&prpsl.IsActive, &prpsl.IsApproved, &prpsl.IsExecuted} {
		if *dst, err = r.readBool(); err != nil {
			return nil, err
		}
	}
	if prpsl.Deposit, err = r.readAmount(); err != nil {
		return nil, err
	}
	if prpsl.DepositReleased, err = r.readBool(); err != nil {
		return nil, err
	}
	if prpsl.RejectReason, err = r.readString(); err != nil {
		return nil, err
	}
	if prpsl.ClosedAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	if prpsl.ExecutedAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	if prpsl.Tx, err = r.readString(); err != nil {
		return nil, err
	}
	return prpsl, r.done()
}

// -----------------------------------------------------------------------------
// Ballot
// -----------------------------------------------------------------------------

func EncodeBallot(b *Ballot) []byte {
	w := newWriter()
	w.writeAddress(b.Voter)
	w.writeBool(b.Support)
	w.writeInt64(b.CastAt)
	return w.bytes()
}

func DecodeBallot(data []byte) (*Ballot, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	b := &Ballot{}
	if b.Voter, err = r.readAddress(); err != nil {
		return nil, err
	}
	if b.Support, err = r.readBool(); err != nil {
		return nil, err
	}
	if b.CastAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	return b, r.done()
}
