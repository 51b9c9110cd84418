// Package config parses the command-line surface for both binaries.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// validColorModes are the only values accepted for --color.
var validColorModes = map[string]bool{"auto": true, "always": true, "never": true}

func validateColor(mode string) error {
	if !validColorModes[mode] {
		return fmt.Errorf("invalid --color value %q (want auto, always, or never)", mode)
	}
	return nil
}

// Sender holds the parsed sender CLI flags.
type Sender struct {
	Input       string
	Remote      string
	IntervalMS  uint64
	Loop        bool
	MetricsBind string
	Color       string
}

// ParseSender parses args (excluding the program name) into a Sender
// configuration.
func ParseSender(args []string) (*Sender, error) {
	fs := pflag.NewFlagSet("voicesender", pflag.ContinueOnError)

	input := fs.String("input", "", "path to the WAV file to stream")
	remote := fs.String("remote", "127.0.0.1:5004", "receiver address as ip:port")
	intervalMS := fs.Uint64("interval-ms", 20, "pacer tick interval in milliseconds")
	noLoop := fs.Bool("no-loop", false, "disable looping playback of the input file")
	metricsBind := fs.String("metrics-bind", "127.0.0.1:9100", "metrics HTTP bind address")
	color := fs.String("color", "auto", "color mode: auto, always, or never")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *input == "" {
		return nil, fmt.Errorf("--input is required")
	}
	if err := validateColor(*color); err != nil {
		return nil, err
	}

	return &Sender{
		Input:       *input,
		Remote:      *remote,
		IntervalMS:  *intervalMS,
		Loop:        !*noLoop,
		MetricsBind: *metricsBind,
		Color:       *color,
	}, nil
}

// Receiver holds the parsed receiver CLI flags.
type Receiver struct {
	Port          uint16
	BufferDepthMS uint32
	MetricsBind   string
	Color         string
}

// ParseReceiver parses args (excluding the program name) into a Receiver
// configuration.
func ParseReceiver(args []string) (*Receiver, error) {
	fs := pflag.NewFlagSet("voicereceiver", pflag.ContinueOnError)

	port := fs.Uint16("port", 5004, "UDP port to listen on")
	bufferDepthMS := fs.Uint32("buffer-depth-ms", 60, "jitter buffer target depth in milliseconds")
	metricsBind := fs.String("metrics-bind", "127.0.0.1:9200", "metrics HTTP bind address")
	color := fs.String("color", "auto", "color mode: auto, always, or never")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := validateColor(*color); err != nil {
		return nil, err
	}

	return &Receiver{
		Port:          *port,
		BufferDepthMS: *bufferDepthMS,
		MetricsBind:   *metricsBind,
		Color:         *color,
	}, nil
}
