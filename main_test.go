package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, size := range []int{0, 1, 27, 28, 29, 100} {
		body := make([]byte, size)
		rng.Read(body)

		blocks := frameBlocks(body, 32)
		require.NotEmpty(t, blocks, "size %d", size)
		var joined []byte
		for _, b := range blocks {
			assert.Len(t, b, 32, "size %d: every block is one message", size)
			joined = append(joined, b...)
		}

		recovered, err := deframe(joined)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, body, recovered, "size %d", size)
	}
}

func TestDeframeErrors(t *testing.T) {
	_, err := deframe([]byte{1, 2})
	assert.Error(t, err, "shorter than the length prefix")

	// Length prefix claiming more bytes than present.
	_, err = deframe([]byte{0, 0, 0, 9, 1, 2, 3})
	assert.Error(t, err)
}

func TestBuildChannel(t *testing.T) {
	cfg := DefaultConfig()
	ch, err := buildChannel(cfg)
	require.NoError(t, err)
	assert.Equal(t, "bsc-4", ch.Name())

	cfg.Channel.Model = "awgn"
	cfg.Channel.Sigma = 0.5
	ch, err = buildChannel(cfg)
	require.NoError(t, err)
	assert.Equal(t, "awgn-0.50", ch.Name())

	cfg.Channel.Model = "cauchy"
	_, err = buildChannel(cfg)
	assert.Error(t, err)
}

func TestInitLoggerLevels(t *testing.T) {
	assert.Equal(t, "info", initLogger("info").GetLevel().String())
	assert.Equal(t, "debug", initLogger("debug").GetLevel().String())
	assert.Equal(t, "info", initLogger("").GetLevel().String(), "empty level falls back to info")
	assert.Equal(t, "info", initLogger("shout").GetLevel().String(), "unknown level falls back to info")
}
