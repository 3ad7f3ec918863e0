package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"ridegov/contract"
	"ridegov/sdk"
)

// cli owns the resources one invocation opens. They are created lazily in
// the root pre-run so help and completion never touch the state files.
type cli struct {
	out        io.Writer
	configFile string

	cfg     *runtimeConfig
	store   *contract.BoltStore
	ledger  *sdk.BoltLedger
	engine  *contract.Engine
	metrics *prometheus.Registry
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "govctl",
		Short: "Deposit-gated governance for the ride-hailing protocol parameters",
		Long: `govctl drives the governance engine against a local state file and a
local token ledger: create proposals, vote, close, and execute them after
the timelock.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return c.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg == nil || c.cfg.MetricsFile == "" {
				return nil
			}
			return prometheus.WriteToTextfile(c.cfg.MetricsFile, c.metrics)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default ./govctl.{toml,yaml,json} if present)")
	pf.String("state", "govstate.db", "governance state file")
	pf.String("ledger", "govledger.db", "token ledger file")
	pf.String("as", "", "caller identity, e.g. user:alice")
	pf.String("now", "", "pin the clock to an RFC3339 instant")
	pf.StringP("output", "o", "table", "output format: table, json, yaml")
	pf.String("log-level", "", "log level: debug, info, warn, error, off")
	pf.String("metrics-file", "", "write prometheus metrics to this textfile after the command")

	root.AddGroup(&cobra.Group{ID: "lifecycle", Title: "Proposal Lifecycle:"})
	root.AddGroup(&cobra.Group{ID: "admin", Title: "Administration:"})

	for _, cmd := range []*cobra.Command{
		c.proposeCmd(), c.voteCmd(), c.closeCmd(), c.executeCmd(), c.showCmd(), c.listCmd(),
	} {
		cmd.GroupID = "lifecycle"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		c.initCmd(), c.policyCmd(), c.depositCmd(), c.auditCmd(), c.faucetCmd(), c.balanceCmd(),
	} {
		cmd.GroupID = "admin"
		root.AddCommand(cmd)
	}
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	v, err := setupViper(cmd.Root().PersistentFlags(), c.configFile)
	if err != nil {
		return err
	}
	cfg, err := loadRuntimeConfig(v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	sdk.ConfigureRuntime()
	if cfg.LogLevel != "" {
		lvl, ok := sdk.ParseLevel(cfg.LogLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", cfg.LogLevel)
		}
		sdk.SetLogger(sdk.Logger().Level(lvl))
	}

	if cfg.StatePath == cfg.LedgerPath {
		return errors.New("state and ledger must be different files")
	}
	c.ledger, err = sdk.OpenBoltLedger(cfg.LedgerPath)
	if err != nil {
		return err
	}
	c.store, err = contract.OpenBoltStore(cfg.StatePath)
	if err != nil {
		return err
	}

	c.metrics = prometheus.NewRegistry()
	m, err := contract.NewMetrics(c.metrics)
	if err != nil {
		return err
	}
	c.engine, err = contract.NewEngine(c.store, c.ledger,
		contract.WithConfig(cfg.Protocol),
		contract.WithClock(cfg.clock()),
		contract.WithLogger(sdk.Logger()),
		contract.WithMetrics(m),
	)
	return err
}

func (c *cli) close() error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	if c.ledger != nil {
		errs = append(errs, c.ledger.Close())
	}
	return errors.Join(errs...)
}

func (c *cli) render() *renderer {
	now := time.Now()
	if c.cfg.Now != nil {
		now = *c.cfg.Now
	}
	return &renderer{out: c.out, format: c.cfg.Output, now: now.Unix()}
}

func (c *cli) initCmd() *cobra.Command {
	var (
		maxRide    uint32
		policy     string
		paramsFile string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the registry, treasury and parameter set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.cfg.caller()
			if err != nil {
				return err
			}
			initArgs := contract.InitArgs{MaxRideDistance: maxRide, CancellationPolicy: policy}
			if paramsFile != "" {
				base := contract.DefaultParams("")
				initArgs.Params, err = loadParamsFile(paramsFile, base)
				if err != nil {
					return err
				}
			}
			if err := c.engine.Initialize(caller, initArgs); err != nil {
				return err
			}
			reg, err := c.engine.Registry()
			if err != nil {
				return err
			}
			return c.render().registry(reg)
		},
	}
	cmd.Flags().Uint32Var(&maxRide, "max-ride-distance", 0, "maximum ride distance")
	cmd.Flags().StringVar(&policy, "policy", "", "cancellation policy text")
	cmd.Flags().StringVar(&paramsFile, "params", "", "initial parameters (toml or json), overlaid on the defaults")
	return cmd
}

func (c *cli) proposeCmd() *cobra.Command {
	var (
		title, desc string
		options     []string
		paramsFile  string
		votingFor   time.Duration
		timelock    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal and lock its deposit",
		Long: `Create a proposal. With --params it is a parameter update: the file is
overlaid on the live parameter set, so a toml file may name only the fields
that change. Without --params it is a generic proposal with optional --option
choices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.cfg.caller()
			if err != nil {
				return err
			}
			pa := contract.CreateProposalArgs{
				Title:       title,
				Description: desc,
				Options:     options,
			}
			if pa.VotingPeriodSecs, err = wholeSeconds("voting-period", votingFor); err != nil {
				return err
			}
			if pa.TimelockSecs, err = wholeSeconds("timelock", timelock); err != nil {
				return err
			}
			if paramsFile != "" {
				live, err := c.engine.Params()
				if err != nil {
					return err
				}
				if pa.ProposedParams, err = loadParamsFile(paramsFile, *live); err != nil {
					return err
				}
			}
			p, err := c.engine.CreateProposal(caller, pa)
			if err != nil {
				return err
			}
			return c.render().proposal(p)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "", "proposal title")
	f.StringVarP(&desc, "desc", "d", "", "proposal description")
	f.StringArrayVar(&options, "option", nil, "choice for a generic proposal (repeatable)")
	f.StringVar(&paramsFile, "params", "", "candidate parameter file (toml or json)")
	f.DurationVar(&votingFor, "voting-period", 0, "override the voting period")
	f.DurationVar(&timelock, "timelock", 0, "override the timelock")
	_ = cmd.MarkFlagRequired("title")
	cmd.MarkFlagsMutuallyExclusive("params", "option")
	return cmd
}

func (c *cli) voteCmd() *cobra.Command {
	var yes, no bool
	cmd := &cobra.Command{
		Use:   "vote <id>",
		Short: "Cast a yes or no vote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.cfg.caller()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.engine.Vote(caller, id, yes)
			if err != nil {
				return err
			}
			return c.render().proposal(p)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "vote in favour")
	cmd.Flags().BoolVar(&no, "no", false, "vote against")
	cmd.MarkFlagsMutuallyExclusive("yes", "no")
	cmd.MarkFlagsOneRequired("yes", "no")
	return cmd
}

func (c *cli) closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Decide a proposal once voting has ended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.cfg.caller()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := c.engine.CloseProposal(caller, id)
			if err != nil {
				return err
			}
			return c.render().closeResult(res)
		},
	}
}

func (c *cli) executeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "execute <id>",
		Short: "Apply an approved proposal after its timelock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.cfg.caller()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.engine.ExecuteProposal(caller, id)
			if err != nil {
				return err
			}
			return c.render().proposal(p)
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	var withBallots bool
	cmd := &cobra.Command{
		Use:   "show <id|registry|treasury|params>",
		Short: "Show a proposal or one of the singleton records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := c.render()
			switch args[0] {
			case "registry":
				reg, err := c.engine.Registry()
				if err != nil {
					return err
				}
				return r.registry(reg)
			case "treasury":
				t, err := c.engine.Treasury()
				if err != nil {
					return err
				}
				return r.treasury(t)
			case "params":
				p, err := c.engine.Params()
				if err != nil {
					return err
				}
				return r.params(p)
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.engine.GetProposal(id)
			if err != nil {
				return err
			}
			if !withBallots {
				return r.proposal(p)
			}
			ballots, err := c.engine.Ballots(id)
			if err != nil {
				return err
			}
			return r.ballots(ballots)
		},
	}
	cmd.Flags().BoolVar(&withBallots, "ballots", false, "list the ballots of the proposal instead")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var (
		creator string
		phases  []string
		kind    string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := contract.ProposalFilter{Creator: sdk.Address(creator)}
			for _, raw := range phases {
				ph, err := contract.ParsePhase(strings.ToLower(raw))
				if err != nil {
					return err
				}
				filter.Phases = append(filter.Phases, ph)
			}
			if kind != "" {
				k, err := contract.ParseProposalKind(strings.ToLower(kind))
				if err != nil {
					return err
				}
				filter.Kind = &k
			}
			list, err := c.engine.ListProposals(filter)
			if err != nil {
				return err
			}
			return c.render().proposals(list)
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "only proposals by this address")
	cmd.Flags().StringSliceVar(&phases, "phase", nil, "only proposals in these phases")
	cmd.Flags().StringVar(&kind, "kind", "", "only proposals of this kind (generic, params)")
	return cmd
}

func (c *cli) policyCmd() *cobra.Command {
	var (
		maxRide uint32
		policy  string
	)
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Update the registry ride policy (authority only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.cfg.caller()
			if err != nil {
				return err
			}
			cur, err := c.engine.Registry()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-ride-distance") {
				maxRide = cur.MaxRideDistance
			}
			if !cmd.Flags().Changed("policy") {
				policy = cur.CancellationPolicy
			}
			reg, err := c.engine.UpdatePolicy(caller, maxRide, policy)
			if err != nil {
				return err
			}
			return c.render().registry(reg)
		},
	}
	cmd.Flags().Uint32Var(&maxRide, "max-ride-distance", 0, "maximum ride distance")
	cmd.Flags().StringVar(&policy, "policy", "", "cancellation policy text")
	cmd.MarkFlagsOneRequired("max-ride-distance", "policy")
	return cmd
}

func (c *cli) depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Donate tokens to the treasury pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.cfg.caller()
			if err != nil {
				return err
			}
			units, err := sdk.ParseUnits(args[0])
			if err != nil {
				return err
			}
			t, err := c.engine.Deposit(caller, contract.Amount(units))
			if err != nil {
				return err
			}
			return c.render().treasury(t)
		},
	}
}

func (c *cli) auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Recompute the escrow books and compare them with the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, auditErr := c.engine.AuditEscrow()
			if report == nil {
				return auditErr
			}
			if err := c.render().escrowReport(report); err != nil {
				return err
			}
			return auditErr
		},
	}
}

func (c *cli) faucetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "faucet <address> <amount>",
		Short: "Mint test tokens on the local ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to := sdk.Address(args[0])
			units, err := sdk.ParseUnits(args[1])
			if err != nil {
				return err
			}
			if err := c.ledger.Mint(to, units); err != nil {
				return err
			}
			return c.printBalance(to)
		},
	}
}

func (c *cli) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show a ledger balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printBalance(sdk.Address(args[0]))
		},
	}
}

func (c *cli) printBalance(addr sdk.Address) error {
	bal, err := c.ledger.GetBalance(addr)
	if err != nil {
		return err
	}
	return c.render().balance(addr, contract.Amount(bal))
}

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q", raw)
	}
	return id, nil
}

func wholeSeconds(name string, d time.Duration) (int64, error) {
	if d < 0 || d%time.Second != 0 {
		return 0, fmt.Errorf("--%s must be a non-negative whole number of seconds, got %s", name, d)
	}
	return int64(d / time.Second), nil
}

// paramsDoc is the toml shape of a parameter file; the decode metadata tells
// which keys the file actually set.
type paramsDoc struct {
	MinCancellationCharge          int64 `toml:"min_cancellation_charge"`
	RiderCancellationPercentage    uint8 `toml:"rider_cancellation_percentage"`
	DriverCancellationPercentage   uint8 `toml:"driver_cancellation_percentage"`
	PlatformCancellationPercentage uint8 `toml:"platform_cancellation_percentage"`
	PlatformFeePercentage          uint8 `toml:"platform_fee_percentage"`
	DailySubscriptionFee           int64 `toml:"daily_subscription_fee"`
	MinRideDistance                int64 `toml:"min_ride_distance"`
}

// loadParamsFile reads a candidate parameter set. TOML files overlay base key
// by key; JSON files are taken as a complete set, the shape `show params -o
// json` prints.
func loadParamsFile(path string, base contract.ParameterSet) (*contract.ParameterSet, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read params: %w", err)
		}
		return contract.ParamsFromJSON(data)
	}

	var raw paramsDoc
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load params %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load params %s: unknown key %q", path, undecoded[0].String())
	}

	out := base
	out.Authority = ""
	if meta.IsDefined("min_cancellation_charge") {
		out.MinCancellationCharge = raw.MinCancellationCharge
	}
	if meta.IsDefined("rider_cancellation_percentage") {
		out.RiderCancellationPercentage = raw.RiderCancellationPercentage
	}
	if meta.IsDefined("driver_cancellation_percentage") {
		out.DriverCancellationPercentage = raw.DriverCancellationPercentage
	}
	if meta.IsDefined("platform_cancellation_percentage") {
		out.PlatformCancellationPercentage = raw.PlatformCancellationPercentage
	}
	if meta.IsDefined("platform_fee_percentage") {
		out.PlatformFeePercentage = raw.PlatformFeePercentage
	}
	if meta.IsDefined("daily_subscription_fee") {
		out.DailySubscriptionFee = raw.DailySubscriptionFee
	}
	if meta.IsDefined("min_ride_distance") {
		out.MinRideDistance = raw.MinRideDistance
	}
	return &out, nil
}
