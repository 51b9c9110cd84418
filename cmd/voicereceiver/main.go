// Command voicereceiver accepts an RTP/Opus voice stream and plays it out
// the default audio device.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/mattn/go-isatty"

	"voicestream/internal/audiosink"
	"voicestream/internal/codec"
	"voicestream/internal/colorpolicy"
	"voicestream/internal/config"
	"voicestream/internal/logging"
	"voicestream/internal/metrics"
	"voicestream/internal/netio"
	"voicestream/internal/receiver"
	"voicestream/internal/wavsource"
)

// maxJitterPackets bounds the jitter buffer independent of buffer-depth-ms
// so a misbehaving sender cannot grow it unbounded.
const maxJitterPackets = 256

// logInterval is how often the receiver emits a periodic stats summary.
const logInterval = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseReceiver(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "voicereceiver:", err)
		return 1
	}

	colorEnabled := colorpolicy.Resolve(cfg.Color, isatty.IsTerminal(os.Stderr.Fd()), os.Getenv)
	logger := logging.New("receiver", logging.LevelFromEnv(), colorEnabled)

	_, decoder, err := codec.New(wavsource.SampleRate, 1, wavsource.SamplesPerFrame)
	if err != nil {
		logger.Error("failed to construct decoder", "err", err)
		return 1
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Error("failed to initialize audio subsystem", "err", err)
		return 1
	}
	defer portaudio.Terminate()

	sink, err := audiosink.New(wavsource.SampleRate, wavsource.SamplesPerFrame)
	if err != nil {
		logger.Error("failed to open audio device", "err", err)
		return 1
	}
	defer sink.Close()

	recv, err := netio.Bind(cfg.Port)
	if err != nil {
		logger.Error("failed to bind receive socket", "err", err)
		return 1
	}
	defer recv.Close()

	reg := metrics.New("receiver")
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

	r := receiver.New(recv, receiver.Config{
		BufferDepthMS: cfg.BufferDepthMS,
		MaxPackets:    maxJitterPackets,
		SampleRate:    wavsource.SampleRate,
		LogInterval:   logInterval,
	}, decoder, sink, reg, logger)

	logger.Info("listening", "port", cfg.Port, "buffer_depth_ms", cfg.BufferDepthMS)
	if err := r.Run(ctx); err != nil {
		logger.Error("receiver exited with error", "err", err)
		return 1
	}
	return 0
}
