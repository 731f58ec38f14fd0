package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccnfwd/ccnfwd/pkg/config"
	"github.com/ccnfwd/ccnfwd/pkg/core"
	"github.com/ccnfwd/ccnfwd/pkg/face"
	"github.com/ccnfwd/ccnfwd/pkg/fw"
	"github.com/ccnfwd/ccnfwd/pkg/mgmt"
	"github.com/ccnfwd/ccnfwd/pkg/table"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// cliModule tags the entry point's own log lines, the same String()-per-
// component idiom every other package in this tree uses with core.Log.
type cliModule struct{}

func (cliModule) String() string { return "cmd" }

var cfg = core.DefaultConfig()

var (
	tickInterval   time.Duration
	pitCapacity    int
	pitMaxLifetime uint64
	csCapacity     int
)

// CmdCcnfwd is the root command, grounded on fw/cmd/cmd.go's CmdYaNFD: one
// optional positional config-file argument, the same three profiling
// flags wired to pkg/core.Profiler.
var CmdCcnfwd = &cobra.Command{
	Use:   "ccnfwd [CONFIG-FILE]",
	Short: "Content-centric forwarding daemon",
	Args:  cobra.MaximumNArgs(1),
	Run:   run,
}

func init() {
	CmdCcnfwd.Flags().StringVar(&cfg.Core.CpuProfile, "cpu-profile", "", "Write CPU profile to file")
	CmdCcnfwd.Flags().StringVar(&cfg.Core.MemProfile, "mem-profile", "", "Write memory profile to file")
	CmdCcnfwd.Flags().StringVar(&cfg.Core.BlockProfile, "block-profile", "", "Write block profile to file")
	CmdCcnfwd.Flags().StringVar(&cfg.Core.LogLevel, "log-level", cfg.Core.LogLevel, "Minimum log level (TRACE, DEBUG, INFO, WARN, ERROR, FATAL)")
	CmdCcnfwd.Flags().DurationVar(&tickInterval, "tick", 100*time.Millisecond, "Reactor timer-wheel granularity")
	CmdCcnfwd.Flags().IntVar(&pitCapacity, "pit-capacity", 0, "Maximum distinct PIT fingerprints (0 = unbounded)")
	CmdCcnfwd.Flags().Uint64Var(&pitMaxLifetime, "pit-max-lifetime", 4000, "Maximum Interest lifetime, in ticks")
	CmdCcnfwd.Flags().IntVar(&csCapacity, "cs-capacity", 65536, "Content Store capacity, in entries (0 disables caching)")
}

// run wires the tables, the reactor, and the control-message handler, seeds
// startup state, and blocks until a termination signal arrives, per
// spec.md 6's exit codes: 1 on a fatal initialization failure, 0 on a
// clean shutdown.
func run(cmd *cobra.Command, args []string) {
	lvl, err := core.ParseLevel(cfg.Core.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ccnfwd: invalid log level:", err)
		os.Exit(1)
	}
	core.Log.SetLevel(lvl)

	configFile := ""
	if len(args) == 1 {
		configFile = args[0]
	}
	sf, err := config.Load(configFile)
	if err != nil {
		core.Log.Error(cliModule{}, "Failed to load startup file", "err", err)
		os.Exit(1)
	}

	cs, err := table.NewCs(csCapacity)
	if err != nil {
		core.Log.Error(cliModule{}, "Failed to open content store", "err", err)
		os.Exit(1)
	}

	d := fw.NewDispatcher(
		face.NewTable(),
		table.NewFib(),
		table.NewPit(types.Tick(pitMaxLifetime), pitCapacity),
		cs,
		table.NewStrategyRegistry(),
		tickInterval,
	)
	m := mgmt.NewManager(d, 0)
	d.SetControlHandler(m)

	if err := seed(m, sf); err != nil {
		core.Log.Error(cliModule{}, "Startup seed failed", "err", err)
		os.Exit(1)
	}

	profiler := core.NewProfiler(cfg)
	if err := profiler.Start(); err != nil {
		core.Log.Error(cliModule{}, "Failed to start profiler", "err", err)
		os.Exit(1)
	}

	go d.Run()
	core.Log.Info(cliModule{}, "Forwarder started", "routes", len(sf.Routes), "connections", len(sf.Connections))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	core.Log.Info(cliModule{}, "Received signal, shutting down", "signal", sig)

	d.Stop()
	profiler.Stop()
	if err := cs.Close(); err != nil {
		core.Log.Warn(cliModule{}, "Error closing content store", "err", err)
	}
}

// seed replays the startup file's connections then routes through the same
// control-command path a running forwarder is administered with, so
// startup state and runtime state never diverge in how they're applied.
// Connections are seeded before routes since AddRoute's next-hop names a
// connection id that AddConnection* only assigns once it runs.
func seed(m *mgmt.Manager, sf *config.StartupFile) error {
	var seq uint64

	for _, c := range sf.Connections {
		seq++
		verb := "AddConnectionIP"
		if err := dispatchCommand(m, seq, verb, map[string]string{
			"kind":          c.Kind,
			"peer":          c.Peer,
			"symbolic-name": c.SymbolicName,
		}); err != nil {
			return fmt.Errorf("seed connection %s: %w", c.SymbolicName, err)
		}
	}

	for _, r := range sf.Routes {
		seq++
		fields := map[string]string{
			"prefix":   r.Prefix,
			"next-hop": r.NextHop,
		}
		if r.Cost != 0 {
			fields["cost"] = strconv.FormatUint(r.Cost, 10)
		}
		if r.Strategy != "" {
			fields["strategy"] = r.Strategy
		}
		if err := dispatchCommand(m, seq, "AddRoute", fields); err != nil {
			return fmt.Errorf("seed route %s: %w", r.Prefix, err)
		}
	}

	return nil
}

// dispatchCommand builds a Control packet body for verb from fields and
// feeds it through the same Handle entry point a received Control packet
// would take, returning an error built from the NACK reason on failure.
func dispatchCommand(m *mgmt.Manager, seq uint64, verb string, fields map[string]string) error {
	var b strings.Builder
	b.WriteString(verb)
	b.WriteByte('\n')
	b.WriteString("seq=")
	b.WriteString(strconv.FormatUint(seq, 10))
	b.WriteByte('\n')
	for k, v := range fields {
		if v == "" {
			continue
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte('\n')
	}

	resp := m.Handle(wire.NewControl([]byte(b.String())).Build())
	if resp == nil {
		return nil
	}
	body := string(resp.ControlBody())
	if strings.HasPrefix(body, "NACK") {
		return fmt.Errorf("%s", strings.TrimSpace(strings.ReplaceAll(body, "\n", "; ")))
	}
	return nil
}
