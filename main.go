package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/TheMapleseed/LDPC-AVX512/channel"
	"github.com/TheMapleseed/LDPC-AVX512/compress"
	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
	"github.com/TheMapleseed/LDPC-AVX512/sim"
	"github.com/TheMapleseed/LDPC-AVX512/trace"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	mode := flag.String("mode", "demo", "one of demo, sim, payload")
	trials := flag.Int("trials", 0, "override simulation trial count")
	verbose := flag.Bool("verbose", false, "dump reports with spew")
	debug := flag.Bool("debug", false, "force debug logging")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ldpc: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *trials > 0 {
		cfg.Sim.Trials = *trials
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}

	log := initLogger(cfg.Logging.Level)
	if err := run(cfg, *mode, log, *verbose); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func initLogger(level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Str("app", "ldpc").Logger()
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

func run(cfg *Config, mode string, log zerolog.Logger, verbose bool) error {
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	obs := trace.Multi{trace.NewLogObserver(log)}
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		obs = append(obs, trace.NewMetricsObserver(reg))
		go serveMetrics(cfg.Metrics.Listen, reg, log)
	}

	opts := []ldpc.Option{ldpc.WithObserver(obs)}
	if cfg.Decoder.StrategyWeight > 0 {
		opts = append(opts, ldpc.WithStrategyWeight(cfg.Decoder.StrategyWeight))
	}
	if cfg.Decoder.AdaptiveWindow > 0 {
		opts = append(opts, ldpc.WithAdaptiveWindow(cfg.Decoder.AdaptiveWindow))
	}
	if cfg.Decoder.Crossover > 0 {
		opts = append(opts, ldpc.WithCrossoverProbability(cfg.Decoder.Crossover))
	}
	codec, err := ldpc.New(params, opts...)
	if err != nil {
		return err
	}
	defer codec.Close()

	log.Info().
		Int("n", params.N).
		Int("k", params.K).
		Int("wc", params.WC).
		Int("wr", params.WR).
		Uint64("seed", params.Seed).
		Stringer("algorithm", params.Algorithm).
		Msg("codec ready")

	switch mode {
	case "demo":
		return runDemo(codec, cfg, log, verbose)
	case "sim":
		return runSim(codec, cfg, log, verbose)
	case "payload":
		return runPayload(codec, cfg, log)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func serveMetrics(listen string, reg *prometheus.Registry, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Info().Str("listen", listen).Msg("metrics endpoint up")
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Error().Err(err).Msg("metrics endpoint failed")
	}
}

func buildChannel(cfg *Config) (channel.Model, error) {
	switch cfg.Channel.Model {
	case "", "bsc":
		return channel.NewBSC(cfg.Channel.Flips, cfg.Channel.Seed)
	case "awgn":
		return channel.NewAWGN(cfg.Channel.Sigma, cfg.Channel.Seed)
	default:
		return nil, fmt.Errorf("unknown channel model %q", cfg.Channel.Model)
	}
}

// runDemo pushes a single random message through encode, the channel,
// and decode, and logs the outcome.
func runDemo(codec *ldpc.Codec, cfg *Config, log zerolog.Logger, verbose bool) error {
	ch, err := buildChannel(cfg)
	if err != nil {
		return err
	}
	p := codec.Params()
	rng := rand.New(rand.NewSource(cfg.Sim.Seed))
	msg := randomMessage(p.K, rng)

	cw, err := codec.Encode(msg)
	if err != nil {
		return err
	}
	rcv := ch.Corrupt(cw)

	var decoded *ldpc.BitVector
	var rep ldpc.Report
	if rcv.Hard != nil {
		decoded, rep, err = codec.Decode(rcv.Hard)
	} else {
		decoded, rep, err = codec.DecodeSoft(rcv.Soft)
	}
	if err != nil && !errors.Is(err, ldpc.ErrConvergenceFailure) {
		return err
	}
	if verbose {
		spew.Dump(rep)
	}
	log.Info().
		Str("channel", ch.Name()).
		Stringer("algorithm", p.Algorithm).
		Bool("converged", rep.Converged).
		Int("iterations", rep.Iterations).
		Int("syndrome_weight", rep.SyndromeWeight).
		Bool("recovered", decoded.Equal(msg)).
		Msg("demo round trip")
	return nil
}

func runSim(codec *ldpc.Codec, cfg *Config, log zerolog.Logger, verbose bool) error {
	ch, err := buildChannel(cfg)
	if err != nil {
		return err
	}
	summary, _, err := sim.Run(sim.Config{
		Codec:   codec,
		Channel: ch,
		Trials:  cfg.Sim.Trials,
		Seed:    cfg.Sim.Seed,
	}, log)
	if err != nil {
		return err
	}
	if verbose {
		spew.Dump(summary)
	}
	return nil
}

// runPayload round-trips a byte payload: compress, frame into k-bit
// blocks, encode, corrupt, decode, reassemble, decompress, compare.
func runPayload(codec *ldpc.Codec, cfg *Config, log zerolog.Logger) error {
	p := codec.Params()
	if p.K%8 != 0 {
		return fmt.Errorf("payload mode needs a byte-aligned message length, k=%d", p.K)
	}
	comp, err := compress.ByName(cfg.Payload.Compression)
	if err != nil {
		return err
	}
	if z, ok := comp.(*compress.Zstd); ok {
		defer z.Close()
	}
	ch, err := buildChannel(cfg)
	if err != nil {
		return err
	}

	payload, err := loadPayload(cfg)
	if err != nil {
		return err
	}
	body, err := comp.Compress(payload)
	if err != nil {
		return err
	}

	blockBytes := p.K / 8
	blocks := frameBlocks(body, blockBytes)
	out := make([]byte, 0, len(blocks)*blockBytes)
	unconverged := 0
	for i, block := range blocks {
		msg, err := ldpc.BitVectorFromBytes(block, p.K)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		cw, err := codec.Encode(msg)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		rcv := ch.Corrupt(cw)
		var decoded *ldpc.BitVector
		if rcv.Hard != nil {
			decoded, _, err = codec.Decode(rcv.Hard)
		} else {
			decoded, _, err = codec.DecodeSoft(rcv.Soft)
		}
		if err != nil {
			if !errors.Is(err, ldpc.ErrConvergenceFailure) {
				return fmt.Errorf("block %d: %w", i, err)
			}
			unconverged++
		}
		out = append(out, decoded.Bytes()...)
	}

	recovered, err := deframe(out)
	if err != nil {
		return err
	}
	restored, err := comp.Decompress(recovered)
	if err != nil {
		return err
	}
	intact := bytes.Equal(restored, payload)
	log.Info().
		Str("compression", comp.Name()).
		Str("channel", ch.Name()).
		Int("payload_bytes", len(payload)).
		Int("compressed_bytes", len(body)).
		Int("blocks", len(blocks)).
		Int("unconverged_blocks", unconverged).
		Bool("payload_intact", intact).
		Msg("payload round trip")
	if !intact {
		return fmt.Errorf("payload mismatch after decode")
	}
	return nil
}

func loadPayload(cfg *Config) ([]byte, error) {
	if cfg.Payload.Input != "" {
		data, err := os.ReadFile(cfg.Payload.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return data, nil
	}
	// Synthetic payload from a small alphabet, so compression has
	// something to find.
	rng := rand.New(rand.NewSource(cfg.Payload.Seed))
	data := make([]byte, cfg.Payload.Size)
	for i := range data {
		data[i] = byte('a' + rng.Intn(16))
	}
	return data, nil
}

// frameBlocks prepends a big-endian length and zero-pads the result to
// a whole number of blocks.
func frameBlocks(body []byte, blockBytes int) [][]byte {
	framed := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(framed, uint32(len(body)))
	copy(framed[4:], body)
	if rem := len(framed) % blockBytes; rem != 0 {
		framed = append(framed, make([]byte, blockBytes-rem)...)
	}
	blocks := make([][]byte, 0, len(framed)/blockBytes)
	for off := 0; off < len(framed); off += blockBytes {
		blocks = append(blocks, framed[off:off+blockBytes])
	}
	return blocks
}

func deframe(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("framed payload too short: %d bytes", len(data))
	}
	size := binary.BigEndian.Uint32(data)
	if int(size) > len(data)-4 {
		return nil, fmt.Errorf("framed length %d exceeds payload of %d bytes", size, len(data)-4)
	}
	return data[4 : 4+size], nil
}

func randomMessage(k int, rng *rand.Rand) *ldpc.BitVector {
	msg := ldpc.NewBitVector(k)
	for i := 0; i < k; i++ {
		if rng.Intn(2) == 1 {
			msg.SetBit(i, 1)
		}
	}
	return msg
}
