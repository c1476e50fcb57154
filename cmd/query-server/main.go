// Command query-server wires the query core's component packages together
// against a live KV store, mempool tracker and header index, builds the
// Query facade, refreshes the mempool once and then runs until interrupted.
// It opens no listener: ListenAddr is validated and echoed only. It is
// built from a flag.FlagSet parsed into a
// config.Config, a testable run(args, stdout, stderr) entrypoint, and
// function-var hooks over anything an operator needs to substitute at
// startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"rubin.dev/query/chainhash"
	"rubin.dev/query/config"
	"rubin.dev/query/daemonrpc"
	"rubin.dev/query/headerindex"
	"rubin.dev/query/kvstore"
	"rubin.dev/query/mempool"
	"rubin.dev/query/metrics"
	"rubin.dev/query/queryd"
)

// newDaemonClientFn constructs the node daemon client. No concrete
// implementation lives in daemonrpc; an operator links one in by replacing
// this hook before calling run, or via a build that sets it in an init
// function.
var newDaemonClientFn = func(cfg config.Config) (daemonrpc.Client, error) {
	return nil, fmt.Errorf("query-server: no daemon RPC client wired for %s; see daemonrpc.Client", cfg.DaemonRPCURL)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defaults := config.DefaultConfig()
	cfg := defaults

	fs := newFlagSet(&cfg, defaults, stderr)
	dryRun := fs.Bool("dry-run", false, "print effective config and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}
	if cfg.PrefixLen != chainhash.PrefixLen {
		fmt.Fprintf(stderr, "prefix_len=%d does not match the row codec's compiled-in chainhash.PrefixLen=%d; "+
			"this must match whatever the indexer wrote, it cannot be changed at runtime\n", cfg.PrefixLen, chainhash.PrefixLen)
		return 2
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "invalid log level: %v\n", err)
		return 2
	}
	log.SetLevel(level)

	fmt.Fprintf(stdout, "config: network=%s kv_path=%s listen=%s prefix_len=%d max_tracked_txs=%d\n",
		cfg.Network, cfg.KVPath, cfg.ListenAddr, cfg.PrefixLen, cfg.MaxTrackedTx)
	if *dryRun {
		return 0
	}

	store, err := kvstore.Open(cfg.KVPath)
	if err != nil {
		fmt.Fprintf(stderr, "kvstore open failed: %v\n", err)
		return 2
	}
	defer store.Close()

	daemon, err := newDaemonClientFn(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "daemon client init failed: %v\n", err)
		return 2
	}

	tracker := mempool.NewWithLimit(cfg.MaxTrackedTx)
	headers := headerindex.New()
	latency := metrics.NewLatency(nil)

	q := queryd.New(store, tracker, headers, daemon, latency, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := q.UpdateMempool(ctx); err != nil {
		log.WithError(err).Warn("initial mempool refresh failed; serving a stale/empty mempool view")
	}

	fmt.Fprintln(stdout, "query-server running")
	<-ctx.Done()
	fmt.Fprintln(stdout, "query-server stopped")
	return 0
}

func newFlagSet(cfg *config.Config, defaults config.Config, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("query-server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Network, "network", defaults.Network, "network name")
	fs.StringVar(&cfg.KVPath, "kv-path", defaults.KVPath, "path to the indexer's bbolt KV file")
	fs.StringVar(&cfg.DaemonRPCURL, "daemon-rpc-url", defaults.DaemonRPCURL, "node daemon RPC endpoint")
	fs.StringVar(&cfg.ListenAddr, "listen", defaults.ListenAddr, "query-facade listen address host:port")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.IntVar(&cfg.PrefixLen, "prefix-len", defaults.PrefixLen, "txid prefix length used by the row codecs")
	fs.IntVar(&cfg.MaxTrackedTx, "max-tracked-txs", defaults.MaxTrackedTx, "mempool tracker eviction ceiling")
	return fs
}
