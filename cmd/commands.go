package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"

	"github.com/samaelod/netprobe/config"
	"github.com/samaelod/netprobe/engine"
	"github.com/samaelod/netprobe/logger"
	"github.com/samaelod/netprobe/probe"
	"github.com/samaelod/netprobe/script"
	"github.com/samaelod/netprobe/tui"
	"github.com/samaelod/netprobe/types"
)

func runCheck(ctx context.Context, cfg *config.Config, c *checkCmd) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = cfg.ConnectTimeout()
	}

	status := probe.Check(ctx, c.Host, c.Port, timeout)
	fmt.Printf("TCP port %d on %s is %s.\n", c.Port, c.Host, status)
	return nil
}

func runClient(ctx context.Context, p *arg.Parser, cfg *config.Config, c *clientCmd) error {
	log := logger.WithComponent("client")

	proto, err := types.ParseProtocol(c.Protocol)
	if err != nil {
		p.Fail(err.Error())
	}

	mode := types.InputModeFor(c.File)

	var input *os.File
	if mode == types.InputFile {
		input, err = os.Open(c.File)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open input file")
			return err
		}
		defer input.Close()
	}

	var transcript *engine.Transcript
	if c.Transcript || c.TUI {
		path := ""
		if c.Transcript {
			path = filepath.Join(cfg.LogsDir, fmt.Sprintf("%s-%s-%d.log", proto, sanitize(c.Host), c.Port))
		}
		transcript, err = engine.NewTranscript(path, cfg.LogLines)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open transcript")
			return err
		}
		defer transcript.Close()
	}

	client := engine.NewClient(engine.ClientOptions{
		Protocol:   proto,
		Host:       c.Host,
		Port:       c.Port,
		Out:        os.Stdout,
		Transcript: transcript,
		Log:        log,
	})
	if err := client.Dial(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}
	defer client.Close()

	switch {
	case mode == types.InputFile:
		return client.RunFile(ctx, input)
	case c.TUI:
		if err := tui.RunClient(client, transcript, string(proto)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return err
		}
		fmt.Println("Client exiting...")
		return nil
	default:
		return client.RunInteractive(ctx, os.Stdin)
	}
}

func runServer(ctx context.Context, p *arg.Parser, cfg *config.Config, s *serverCmd) error {
	log := logger.WithComponent("server")

	proto, err := types.ParseProtocol(s.Protocol)
	if err != nil {
		p.Fail(err.Error())
	}

	opts := engine.ServerOptions{
		Port:    s.Port,
		Mode:    types.SubModeScripted,
		Backlog: cfg.Backlog,
		Log:     log,
	}
	if s.Echo {
		opts.Mode = types.SubModeEcho
	}
	if s.PerPeer {
		if proto != types.ProtocolUDP {
			log.Warn().Msg("--per-peer only applies to udp; tcp scripts always restart per connection")
		}
		opts.Scope = types.CursorPerPeer
	}

	if opts.Mode == types.SubModeScripted {
		if s.File == "" {
			p.Fail(types.ErrMissingScript.Error())
		}
		seq, err := script.Load(s.File, script.Options{CaptureProtocol: proto})
		if err != nil {
			log.Error().Err(err).Msg("Failed to load response script")
			return err
		}
		log.Info().Int("responses", seq.Len()).Msgf("Loaded response script %s", s.File)
		opts.Responses = seq
	}

	srv, err := engine.NewServer(proto, opts)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		log.Error().Err(err).Msg("Failed to start server")
		return err
	}
	if err := srv.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped")
		return err
	}
	return nil
}

func runConvert(cfg *config.Config, c *convertCmd) error {
	log := logger.WithComponent("convert")

	proto, err := types.ParseProtocol(c.Protocol)
	if err != nil {
		log.Error().Err(err).Msg("Invalid capture protocol")
		return err
	}

	formatName := c.Format
	if formatName == "" && strings.EqualFold(filepath.Ext(c.Output), ".csv") {
		formatName = string(script.FormatCSV)
	}
	format, err := script.ParseFormat(formatName)
	if err != nil {
		log.Error().Err(err).Msg("Invalid output format")
		return err
	}

	seq, err := script.Load(c.Input, script.Options{CapturePort: c.Port, CaptureProtocol: proto})
	if err != nil {
		log.Error().Err(err).Msg("Failed to load input")
		return err
	}

	out := c.Output
	if out == "" {
		out, err = script.SaveToRecent(seq, cfg.RecentDir, c.Input, format)
	} else {
		err = script.WriteFile(out, seq, format)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write script")
		return err
	}

	fmt.Printf("Wrote %d responses to %s\n", seq.Len(), out)
	return nil
}

// sanitize keeps host names usable as file name parts (IPv6 colons).
func sanitize(host string) string {
	return strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(host)
}
