package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/0xpanoramix/flashbots-relay/pkg/log"
	"github.com/0xpanoramix/flashbots-relay/pkg/rpc"
	"github.com/0xpanoramix/flashbots-relay/pkg/sign"
)

const usage = `flashbots-relay

Usage:
  flashbots-relay user-stats <block>
  flashbots-relay bundle-stats <bundle-hash> <block>
  flashbots-relay send-private-tx <raw-tx> [--max-block=<n>] [--fast]
  flashbots-relay cancel-private-tx <tx-hash>
  flashbots-relay send-bundle (--file=<path> | --block=<n> <raw-tx>...)
  flashbots-relay call-bundle (--file=<path> | --block=<n> [--state-block=<tag>] <raw-tx>...)
  flashbots-relay history [--limit=<n>]
  flashbots-relay -h | --help

Options:
  -h --help            Show this screen.
  --max-block=<n>      Last block the relay tries to include the tx in.
  --fast               Send the tx to all builders.
  --block=<n>          Target block, decimal or 0x-prefixed hex.
  --state-block=<tag>  Block the simulation runs on top of [default: latest].
  --file=<path>        YAML bundle file.
  --limit=<n>          Number of journal entries to show [default: 20].

Configuration is read from the environment and from $RELAY_CONFIG_DIR_PATH/.env.
`

func main() {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	conf, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.NewZapLogger(conf.Log).WithName("flashbots-relay")
	if conf.dotEnvPath != "" {
		logger.Debug("loaded .env file", "path", conf.dotEnvPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.SetContextLogger(ctx, logger)

	app, err := NewApp(conf, os.Stdout)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	err = app.Run(ctx, opts)
	if closeErr := app.Close(); closeErr != nil {
		logger.Warn("failed to close app", "error", closeErr)
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// App runs one CLI command against the relay.
type App struct {
	conf    *Config
	client  *rpc.Client
	metrics *Metrics
	history *History
	out     io.Writer
}

func NewApp(conf *Config, out io.Writer) (*App, error) {
	metrics := NewMetrics()
	client := rpc.NewClient(rpc.ClientConfig{
		Endpoint: conf.Endpoint,
		Recorder: metrics,
	}, conf.NewTransport())

	history, err := OpenHistory(conf.History)
	if err != nil {
		return nil, err
	}

	return &App{
		conf:    conf,
		client:  client,
		metrics: metrics,
		history: history,
		out:     out,
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.conf.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.conf.MetricsTextfile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if err := a.history.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) Run(ctx context.Context, opts docopt.Opts) error {
	if isSet(opts, "history") {
		return a.runHistory(opts)
	}

	signer, err := a.conf.Signer()
	if err != nil {
		return err
	}
	logger := log.FromContext(ctx).WithKV("signer", signer.PublicKey().Address().String())
	ctx = log.SetContextLogger(ctx, logger)

	ctx, cancel := context.WithTimeout(ctx, a.conf.Timeout)
	defer cancel()

	switch {
	case isSet(opts, "user-stats"):
		return a.runUserStats(ctx, signer, opts)
	case isSet(opts, "bundle-stats"):
		return a.runBundleStats(ctx, signer, opts)
	case isSet(opts, "send-private-tx"):
		return a.runSendPrivateTx(ctx, signer, opts)
	case isSet(opts, "cancel-private-tx"):
		return a.runCancelPrivateTx(ctx, signer, opts)
	case isSet(opts, "send-bundle"):
		return a.runSendBundle(ctx, signer, opts)
	case isSet(opts, "call-bundle"):
		return a.runCallBundle(ctx, signer, opts)
	}
	return errors.New("unknown command")
}

func (a *App) runUserStats(ctx context.Context, signer sign.Signer, opts docopt.Opts) error {
	block, err := parseBlock(optString(opts, "<block>"))
	if err != nil {
		return err
	}

	stats, err := a.client.GetUserStats(ctx, signer, block)
	if err != nil {
		return a.relayFailure(rpc.GetUserStatsMethod, err)
	}
	renderUserStats(a.out, stats)
	return nil
}

func (a *App) runBundleStats(ctx context.Context, signer sign.Signer, opts docopt.Opts) error {
	block, err := normalizeBlock(optString(opts, "<block>"))
	if err != nil {
		return err
	}

	stats, err := a.client.GetBundleStats(ctx, signer, rpc.GetBundleStatsParams{
		BundleHash:  optString(opts, "<bundle-hash>"),
		BlockNumber: block,
	})
	if err != nil {
		return a.relayFailure(rpc.GetBundleStatsMethod, err)
	}
	renderBundleStats(a.out, stats)
	return nil
}

func (a *App) runSendPrivateTx(ctx context.Context, signer sign.Signer, opts docopt.Opts) error {
	params := rpc.SendPrivateTransactionParams{Tx: optString(opts, "<raw-tx>")}
	if maxBlock := optString(opts, "--max-block"); maxBlock != "" {
		block, err := normalizeBlock(maxBlock)
		if err != nil {
			return err
		}
		params.MaxBlockNumber = &block
	}
	if isSet(opts, "--fast") {
		params.Preferences = &rpc.PrivateTxPreferences{Fast: true}
	}

	res, err := a.client.SendPrivateTransaction(ctx, signer, params)
	a.journal(ctx, signer, rpc.SendPrivateTransactionMethod, derefOr(params.MaxBlockNumber, ""), res.Result, err)
	if err != nil {
		return a.relayFailure(rpc.SendPrivateTransactionMethod, err)
	}
	renderKV(a.out, "Private transaction", table.Row{"Tx hash", res.Result})
	return nil
}

func (a *App) runCancelPrivateTx(ctx context.Context, signer sign.Signer, opts docopt.Opts) error {
	txHash := optString(opts, "<tx-hash>")
	res, err := a.client.CancelPrivateTransaction(ctx, signer, rpc.CancelPrivateTransactionParams{TxHash: txHash})
	a.journal(ctx, signer, rpc.CancelPrivateTransactionMethod, "", txHash, err)
	if err != nil {
		return a.relayFailure(rpc.CancelPrivateTransactionMethod, err)
	}
	renderKV(a.out, "Cancellation", table.Row{"Tx hash", txHash}, table.Row{"Cancelled", res.Result})
	return nil
}

func (a *App) runSendBundle(ctx context.Context, signer sign.Signer, opts docopt.Opts) error {
	bundle, err := bundleFromOpts(opts)
	if err != nil {
		return err
	}

	params := bundle.SendBundleParams()
	res, err := a.client.SendBundle(ctx, signer, params)
	a.journal(ctx, signer, rpc.SendBundleMethod, params.BlockNumber, res.Result.BundleHash, err)
	if err != nil {
		return a.relayFailure(rpc.SendBundleMethod, err)
	}
	renderKV(a.out, "Bundle", table.Row{"Bundle hash", res.Result.BundleHash}, table.Row{"Block", params.BlockNumber})
	return nil
}

func (a *App) runCallBundle(ctx context.Context, signer sign.Signer, opts docopt.Opts) error {
	bundle, err := bundleFromOpts(opts)
	if err != nil {
		return err
	}

	params := bundle.CallBundleParams()
	res, err := a.client.CallBundle(ctx, signer, params)
	a.journal(ctx, signer, rpc.CallBundleMethod, params.BlockNumber, res.Result.BundleHash, err)
	if err != nil {
		return a.relayFailure(rpc.CallBundleMethod, err)
	}
	renderCallBundle(a.out, res.Result)
	return nil
}

func (a *App) runHistory(opts docopt.Opts) error {
	limit, err := strconv.Atoi(optString(opts, "--limit"))
	if err != nil {
		return fmt.Errorf("invalid --limit: %w", err)
	}

	entries, err := a.history.Recent(limit)
	if err != nil {
		return err
	}
	renderHistory(a.out, entries)
	return nil
}

// relayFailure counts relay-reported errors and passes err through.
func (a *App) relayFailure(method rpc.Method, err error) error {
	var relayErr *rpc.RelayError
	if errors.As(err, &relayErr) {
		a.metrics.RecordRelayError(method, relayErr)
	}
	return err
}

// journal records a submission. Calls rejected before reaching the relay are
// not journaled.
func (a *App) journal(ctx context.Context, signer sign.Signer, method rpc.Method, block, reference string, callErr error) {
	outcome := rpc.OutcomeOf(callErr)
	switch outcome {
	case rpc.OutcomeInvalidParams, rpc.OutcomeInvalidKey, rpc.OutcomeSigningFailure, rpc.OutcomeMarshalingError:
		return
	}

	entry := &SubmissionDTO{
		Method:    method.String(),
		Signer:    signer.PublicKey().Address().String(),
		Block:     block,
		Reference: reference,
		Outcome:   outcome,
	}
	var relayErr *rpc.RelayError
	if errors.As(callErr, &relayErr) {
		code := relayErr.Code()
		entry.ErrorCode = &code
		entry.ErrorMessage = relayErr.Message()
	} else if callErr != nil {
		entry.ErrorMessage = callErr.Error()
	}

	if err := a.history.Record(entry); err != nil {
		a.metrics.HistoryWrites.WithLabelValues("failed").Inc()
		log.FromContext(ctx).Warn("failed to journal submission", "error", err)
		return
	}
	a.metrics.HistoryWrites.WithLabelValues("ok").Inc()
}

func bundleFromOpts(opts docopt.Opts) (*BundleFile, error) {
	if path := optString(opts, "--file"); path != "" {
		return LoadBundleFile(path)
	}

	block, err := normalizeBlock(optString(opts, "--block"))
	if err != nil {
		return nil, err
	}
	return &BundleFile{
		Txs:        optStrings(opts, "<raw-tx>"),
		Block:      block,
		StateBlock: optString(opts, "--state-block"),
	}, nil
}

// parseBlock accepts a decimal or 0x-prefixed hex block number.
func parseBlock(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q: %w", s, err)
	}
	return n, nil
}

// normalizeBlock renders a block number in the relay's 0x hex form.
func normalizeBlock(s string) (string, error) {
	n, err := parseBlock(s)
	if err != nil {
		return "", err
	}
	return hexutil.EncodeUint64(n), nil
}

func isSet(opts docopt.Opts, key string) bool {
	b, _ := opts[key].(bool)
	return b
}

func optString(opts docopt.Opts, key string) string {
	s, _ := opts[key].(string)
	return s
}

func optStrings(opts docopt.Opts, key string) []string {
	s, _ := opts[key].([]string)
	return s
}

func derefOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
