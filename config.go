package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ridegov/contract"
	"ridegov/sdk"
)

const envPrefix = "GOV"

// runtimeConfig is everything one govctl invocation needs, resolved from
// flags, GOV_* env vars, .env and the optional config file.
type runtimeConfig struct {
	StatePath   string
	LedgerPath  string
	Caller      sdk.Address
	Now         *time.Time
	Output      string
	LogLevel    string
	MetricsFile string
	Protocol    contract.Config
}

// globalFlags maps persistent flag names to viper keys.
var globalFlags = map[string]string{
	"state":        "state",
	"ledger":       "ledger",
	"as":           "as",
	"now":          "now",
	"output":       "output",
	"log-level":    "log_level",
	"metrics-file": "metrics_file",
}

func setupViper(flags *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	// a missing .env is normal; a broken one is not
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	def := contract.DefaultConfig()
	v.SetDefault("state", "govstate.db")
	v.SetDefault("ledger", "govledger.db")
	v.SetDefault("output", "table")
	v.SetDefault("min_deposit", def.MinProposalDeposit.String())
	v.SetDefault("review_period", def.ReviewPeriod.String())
	v.SetDefault("voting_period", def.VotingPeriod.String())
	v.SetDefault("timelock", def.Timelock.String())
	v.SetDefault("quorum_percentage", def.QuorumPercentage)
	v.SetDefault("total_supply", def.TotalSupply.String())
	v.SetDefault("treasury_address", def.TreasuryAddress.String())
	v.SetDefault("governance_address", def.GovernanceAddress.String())
	v.SetDefault("max_voting_period", def.MaxVotingPeriod.String())
	v.SetDefault("max_timelock", def.MaxTimelock.String())

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("govctl")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for name, key := range globalFlags {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

func loadRuntimeConfig(v *viper.Viper) (*runtimeConfig, error) {
	cfg := &runtimeConfig{
		StatePath:   v.GetString("state"),
		LedgerPath:  v.GetString("ledger"),
		Caller:      sdk.Address(strings.TrimSpace(v.GetString("as"))),
		Output:      strings.ToLower(v.GetString("output")),
		LogLevel:    v.GetString("log_level"),
		MetricsFile: v.GetString("metrics_file"),
	}
	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown output format %q (table, json, yaml)", cfg.Output)
	}
	if raw := strings.TrimSpace(v.GetString("now")); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("parse --now: %w", err)
		}
		cfg.Now = &at
	}

	p := contract.Config{
		TreasuryAddress:   sdk.Address(v.GetString("treasury_address")),
		GovernanceAddress: sdk.Address(v.GetString("governance_address")),
	}
	amounts := []struct {
		key string
		dst *contract.Amount
	}{
		{"min_deposit", &p.MinProposalDeposit},
		{"total_supply", &p.TotalSupply},
	}
	for _, a := range amounts {
		units, err := sdk.ParseUnits(v.GetString(a.key))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.key, err)
		}
		*a.dst = contract.Amount(units)
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"review_period", &p.ReviewPeriod},
		{"voting_period", &p.VotingPeriod},
		{"timelock", &p.Timelock},
		{"max_voting_period", &p.MaxVotingPeriod},
		{"max_timelock", &p.MaxTimelock},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	quorum := v.GetInt("quorum_percentage")
	if quorum < 0 || quorum > 100 {
		return nil, fmt.Errorf("%w: quorum_percentage %d", contract.ErrInvalidConfig, quorum)
	}
	p.QuorumPercentage = uint8(quorum)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg.Protocol = p
	return cfg, nil
}

func (c *runtimeConfig) clock() sdk.Clock {
	if c.Now != nil {
		return sdk.FixedClock(*c.Now)
	}
	return sdk.NewClock()
}

// caller returns the --as identity, for commands that act on someone's behalf.
func (c *runtimeConfig) caller() (sdk.Address, error) {
	if c.Caller == "" {
		return "", errors.New("no caller identity: pass --as or set GOV_AS")
	}
	if !c.Caller.IsValid() {
		return "", fmt.Errorf("invalid caller identity %q", c.Caller)
	}
	return c.Caller, nil
}
