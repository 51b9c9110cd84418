// Command voicesender streams a WAV file as an RTP/Opus voice stream.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"voicestream/internal/codec"
	"voicestream/internal/colorpolicy"
	"voicestream/internal/config"
	"voicestream/internal/logging"
	"voicestream/internal/metrics"
	"voicestream/internal/netio"
	"voicestream/internal/sender"
	"voicestream/internal/wavsource"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseSender(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "voicesender:", err)
		return 1
	}

	colorEnabled := colorpolicy.Resolve(cfg.Color, isatty.IsTerminal(os.Stderr.Fd()), os.Getenv)
	logger := logging.New("sender", logging.LevelFromEnv(), colorEnabled)

	source, err := wavsource.Open(cfg.Input)
	if err != nil {
		logger.Error("failed to open input file", "err", err)
		return 1
	}
	defer source.Close()
	source.SetLoop(cfg.Loop)

	encoder, _, err := codec.New(wavsource.SampleRate, 1, wavsource.SamplesPerFrame)
	if err != nil {
		logger.Error("failed to construct encoder", "err", err)
		return 1
	}

	send, err := netio.ConnectTo(cfg.Remote)
	if err != nil {
		logger.Error("failed to connect send socket", "err", err)
		return 1
	}
	defer send.Close()

	reg := metrics.New("sender")
	metricsServer := metrics.NewServer(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	go metricsServer.Run(ctx, cfg.MetricsBind, func(err error) {
		logger.Error("metrics server error", "err", err)
	})

	ssrc := rand.Uint32()
	initialSeq := uint16(rand.Uint32())
	initialTS := rand.Uint32()

	pacer := sender.New(source, encoder, send, reg, logger,
		sender.Config{SSRC: ssrc, Interval: time.Duration(cfg.IntervalMS) * time.Millisecond},
		initialSeq, initialTS)

	logger.Info("streaming", "input", cfg.Input, "remote", cfg.Remote, "loop", cfg.Loop, "ssrc", ssrc)
	if err := pacer.Run(ctx); err != nil {
		logger.Error("pacer exited with error", "err", err)
		return 1
	}
	return 0
}
