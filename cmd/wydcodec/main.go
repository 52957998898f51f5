package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/danmuck/wydcodec/internal/logging"
	"github.com/danmuck/wydcodec/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: wydcodec [flags] enc|dec <input> [output]\n")
	fmt.Fprintf(out, "       wydcodec [flags] pcap <file-or-dir>\n\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	keys := flag.String("keys", "", "key table file (overrides key_file)")
	database := flag.String("db", "", "sqlite packet log (overrides database)")
	strict := flag.Bool("strict", false, "fail on trailing bytes that do not form a packet")
	charset := flag.String("charset", "", "password charset (overrides password_charset)")
	port := flag.Uint("port", 0, "capture TCP port (overrides capture_port)")
	metrics := flag.String("metrics", "", "prometheus textfile to write after the run")
	flag.Usage = usage
	flag.Parse()

	logger := observability.InitLogger("wydcodec", logging.Resolve(logging.ProfileRuntime))

	args := flag.Args()
	if len(args) < 2 || !knownCommand(args[0]) {
		flag.Usage()
		os.Exit(2)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg, err := resolveConfig(*configPath, overrides{
		keys:     flagValue(set, "keys", *keys),
		database: flagValue(set, "db", *database),
		charset:  flagValue(set, "charset", *charset),
		metrics:  flagValue(set, "metrics", *metrics),
		strict:   set["strict"] && *strict,
		port:     *port,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if os.Getenv(logging.EnvLogLevel) == "" {
		if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd := args[0]; cmd {
	case "enc", "dec":
		out := ""
		if len(args) > 2 {
			out = args[2]
		}
		err = a.runFile(ctx, cmd, args[1], out)
	case "pcap":
		err = a.runPcap(ctx, args[1])
	}
	if mErr := a.writeMetrics(); mErr != nil {
		logger.Warn().Err(mErr).Msg("metrics textfile not written")
	}
	if err != nil {
		logger.Error().Err(err).Str("cmd", args[0]).Msg("run failed")
		a.Close()
		stop()
		os.Exit(1)
	}
}

func flagValue(set map[string]bool, name, value string) *string {
	if !set[name] {
		return nil
	}
	return &value
}

func knownCommand(cmd string) bool {
	switch cmd {
	case "enc", "dec", "pcap":
		return true
	}
	return false
}
