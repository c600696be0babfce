package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/samaelod/netprobe/config"
	"github.com/samaelod/netprobe/logger"
)

var version = "dev"

type checkCmd struct {
	Host    string        `arg:"positional,required" help:"host to check"`
	Port    int           `arg:"positional,required" help:"port to check"`
	Timeout time.Duration `arg:"--timeout" help:"connect timeout (default from config, 1s)"`
}

type clientCmd struct {
	Protocol   string `arg:"positional,required" help:"tcp or udp"`
	Host       string `arg:"positional,required" help:"server host"`
	Port       int    `arg:"positional,required" help:"server port"`
	File       string `arg:"-f" help:"file to read messages from, one per line"`
	User       bool   `arg:"-u" help:"read messages from user input (the default without -f)"`
	TUI        bool   `arg:"-t" help:"full-screen interactive session"`
	Transcript bool   `arg:"--transcript" help:"append the session to a log file in the logs directory"`
}

type serverCmd struct {
	Protocol string `arg:"positional,required" help:"tcp or udp"`
	Port     int    `arg:"positional,required" help:"port to listen on"`
	Echo     bool   `arg:"-e" help:"echo received data"`
	File     string `arg:"-f" help:"response script (csv, lua, pcap or pcapng)"`
	PerPeer  bool   `arg:"-p,--per-peer" help:"udp: track the script position per sender instead of globally"`
}

type convertCmd struct {
	Input    string `arg:"positional,required" help:"response script or capture to convert"`
	Output   string `arg:"-o" help:"output file (default: a new file in the recent directory)"`
	Format   string `arg:"--format" help:"lua or csv"`
	Port     int    `arg:"--port" help:"capture: server port whose payloads become responses"`
	Protocol string `arg:"--proto" default:"tcp" help:"capture: tcp or udp"`
}

type args struct {
	Check   *checkCmd   `arg:"subcommand:check" help:"check if a TCP port is open"`
	Client  *clientCmd  `arg:"subcommand:client" help:"run as a TCP/UDP client"`
	Server  *serverCmd  `arg:"subcommand:server" help:"run as a TCP/UDP server"`
	Convert *convertCmd `arg:"subcommand:convert" help:"convert a response script or capture to lua or csv"`

	Config   string `arg:"--config" help:"config file (json or ini)"`
	LogLevel string `arg:"--log-level" help:"debug, info, warn or error"`
}

func (args) Description() string {
	return "Network utility: port checks, TCP/UDP client, echo and scripted servers"
}

func (args) Version() string {
	return "netprobe " + version
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}

	cfg, err := loadConfig(a.Config)
	if err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if a.LogLevel != "" {
		level = a.LogLevel
	}
	logger.Init(level, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case a.Check != nil:
		err = runCheck(ctx, cfg, a.Check)
	case a.Client != nil:
		err = runClient(ctx, p, cfg, a.Client)
	case a.Server != nil:
		err = runServer(ctx, p, cfg, a.Server)
	case a.Convert != nil:
		err = runConvert(cfg, a.Convert)
	}

	if err != nil {
		stop()
		os.Exit(1)
	}
}
