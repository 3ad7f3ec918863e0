package contract

import (
	"fmt"
	"strconv"

	"ridegov/sdk"
)

// DefaultParams is the ParameterSet a fresh deployment starts with, written
// by the bootstrap identity.
func DefaultParams(authority sdk.Address) ParameterSet {
	return ParameterSet{
		Authority:                      authority,
		MinCancellationCharge:          DefaultMinCancellationCharge,
		RiderCancellationPercentage:    DefaultRiderCancellationPercentage,
		DriverCancellationPercentage:   DefaultDriverCancellationPercentage,
		PlatformCancellationPercentage: DefaultPlatformCancellationPercentage,
		PlatformFeePercentage:          DefaultPlatformFeePercentage,
		DailySubscriptionFee:           DefaultDailySubscriptionFee,
		MinRideDistance:                DefaultMinRideDistance,
	}
}

// Validate checks ranges only; the authority field is not part of a
// candidate and gets overwritten on apply.
func (p *ParameterSet) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: missing parameter set", ErrInvalidParameters)
	}
	pcts := []struct {
		name string
		v    uint8
	}{
		{"rider_cancellation_percentage", p.RiderCancellationPercentage},
		{"driver_cancellation_percentage", p.DriverCancellationPercentage},
		{"platform_cancellation_percentage", p.PlatformCancellationPercentage},
		{"platform_fee_percentage", p.PlatformFeePercentage},
	}
	for _, f := range pcts {
		if f.v > 100 {
			return fmt.Errorf("%w: %s is %d, must be within 0..100", ErrInvalidParameters, f.name, f.v)
		}
	}
	split := int(p.RiderCancellationPercentage) + int(p.DriverCancellationPercentage) + int(p.PlatformCancellationPercentage)
	if split > 100 {
		return fmt.Errorf("%w: cancellation split sums to %d", ErrInvalidParameters, split)
	}
	nums := []struct {
		name string
		v    int64
	}{
		{"min_cancellation_charge", p.MinCancellationCharge},
		{"daily_subscription_fee", p.DailySubscriptionFee},
		{"min_ride_distance", p.MinRideDistance},
	}
	for _, f := range nums {
		if f.v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidParameters, f.name)
		}
	}
	return nil
}

// applyParams replaces the whole live set in one write. It returns the field
// diffs for the pm events.
func applyParams(st State, live *ParameterSet, candidate ParameterSet, authority sdk.Address) []paramChange {
	candidate.Authority = authority
	changes := diffParams(live, &candidate)
	saveParams(st, &candidate)
	*live = candidate
	return changes
}

type paramChange struct {
	Field string
	Old   string
	New   string
}

func diffParams(old, next *ParameterSet) []paramChange {
	var out []paramChange
	add := func(field, o, n string) {
		if o != n {
			out = append(out, paramChange{Field: field, Old: o, New: n})
		}
	}
	i64 := func(v int64) string { return strconv.FormatInt(v, 10) }
	u8 := func(v uint8) string { return strconv.Itoa(int(v)) }
	add("authority", old.Authority.String(), next.Authority.String())
	add("min_cancellation_charge", i64(old.MinCancellationCharge), i64(next.MinCancellationCharge))
	add("rider_cancellation_percentage", u8(old.RiderCancellationPercentage), u8(next.RiderCancellationPercentage))
	add("driver_cancellation_percentage", u8(old.DriverCancellationPercentage), u8(next.DriverCancellationPercentage))
	add("platform_cancellation_percentage", u8(old.PlatformCancellationPercentage), u8(next.PlatformCancellationPercentage))
	add("platform_fee_percentage", u8(old.PlatformFeePercentage), u8(next.PlatformFeePercentage))
	add("daily_subscription_fee", i64(old.DailySubscriptionFee), i64(next.DailySubscriptionFee))
	add("min_ride_distance", i64(old.MinRideDistance), i64(next.MinRideDistance))
	return out
}

// Params returns the live parameter set.
func (e *Engine) Params() (*ParameterSet, error) {
	var p *ParameterSet
	err := e.store.View(func(st State) error {
		var err error
		p, err = loadParams(st)
		return err
	})
	return p, err
}
