package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/danmuck/wydcodec/internal/capture"
	"github.com/danmuck/wydcodec/internal/codec"
	"github.com/danmuck/wydcodec/internal/config"
	"github.com/danmuck/wydcodec/internal/crypt"
	"github.com/danmuck/wydcodec/internal/dump"
	"github.com/danmuck/wydcodec/internal/keytable"
	"github.com/danmuck/wydcodec/internal/observability"
	"github.com/danmuck/wydcodec/internal/protocol/dispatch"
	"github.com/danmuck/wydcodec/internal/protocol/frame"
	"github.com/danmuck/wydcodec/internal/store"
	"github.com/rs/zerolog"
)

type app struct {
	cfg         config.Config
	fingerprint string
	codec       *codec.Codec
	db          *store.DB
	logger      zerolog.Logger
}

// newApp loads the key table before anything else so a bad key file stops
// the run before any packet is touched.
func newApp(cfg config.Config, logger zerolog.Logger) (*app, error) {
	keys, err := keytable.LoadFile(cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, fingerprint: keys.Fingerprint(), logger: logger}
	logger.Info().Str("key_file", cfg.KeyFile).Str("fingerprint", a.fingerprint).Msg("key table loaded")

	lock, err := dispatch.NewLockPasswordHandler(cfg.PasswordCharset, logger, nil)
	if err != nil {
		return nil, err
	}
	d, err := dispatch.NewDefault(lock)
	if err != nil {
		return nil, err
	}
	observability.RegisterMetrics()
	a.codec = codec.New(crypt.New(keys), d, codec.Options{Strict: cfg.StrictFraming, Logger: logger})

	if cfg.Database != "" {
		db, err := store.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
	}
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *app) pass(ctx context.Context, dir crypt.Direction, buf []byte) (codec.Result, error) {
	if dir == crypt.Encrypt {
		return a.codec.Encode(ctx, buf)
	}
	return a.codec.Decode(ctx, buf)
}

// runFile handles enc and dec. out defaults to encoded.bin or decoded.bin in
// the configured output directory.
func (a *app) runFile(ctx context.Context, cmd, in, out string) error {
	dir, name := crypt.Decrypt, "decoded.bin"
	if cmd == "enc" {
		dir, name = crypt.Encrypt, "encoded.bin"
	}
	if out == "" {
		out = filepath.Join(a.cfg.OutputDir, name)
	}

	buf, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	res, err := a.pass(ctx, dir, buf)
	if err != nil && !errors.Is(err, frame.ErrIncompleteFrame) {
		return err
	}
	if wErr := os.WriteFile(out, res.Out, 0o644); wErr != nil {
		return fmt.Errorf("write output: %w", wErr)
	}
	a.record(in, res)
	a.logger.Info().
		Str("cmd", cmd).
		Str("input", in).
		Str("output", out).
		Int("packets", len(res.Packets)).
		Int("handled", res.Handled()).
		Msg("pass written")
	return err
}

// runPcap decodes a capture file, or every capture in a directory, and
// writes <stem>_decoded.bin and <stem>_decoded.txt next to each input.
func (a *app) runPcap(ctx context.Context, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return a.decodeCapture(ctx, target)
	}

	files, err := captureFiles(target)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		a.logger.Warn().Str("dir", target).Msg("no capture files found")
		return nil
	}
	var errs []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.decodeCapture(ctx, path); err != nil {
			a.logger.Error().Err(err).Str("capture", path).Msg("capture failed")
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func captureFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pcap", ".pcapng":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func (a *app) decodeCapture(ctx context.Context, path string) error {
	s, err := capture.ReadFile(path, a.cfg.CapturePort)
	if err != nil {
		return err
	}
	if len(s.Segments) == 0 {
		a.logger.Warn().Str("capture", path).Uint16("port", a.cfg.CapturePort).Msg("no matching segments")
		return nil
	}

	res, err := a.codec.Decode(ctx, s.Data)
	if err != nil && !errors.Is(err, frame.ErrIncompleteFrame) {
		return err
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	if wErr := os.WriteFile(stem+"_decoded.bin", res.Out, 0o644); wErr != nil {
		return fmt.Errorf("write decoded stream: %w", wErr)
	}
	f, wErr := os.Create(stem + "_decoded.txt")
	if wErr != nil {
		return fmt.Errorf("create dump: %w", wErr)
	}
	if wErr := dump.Write(f, res, s); wErr != nil {
		f.Close()
		return fmt.Errorf("write dump: %w", wErr)
	}
	if wErr := f.Close(); wErr != nil {
		return fmt.Errorf("close dump: %w", wErr)
	}

	a.record(path, res)
	a.logger.Info().
		Str("capture", path).
		Int("segments", len(s.Segments)).
		Int("packets", len(res.Packets)).
		Int("handled", res.Handled()).
		Msg("capture decoded")
	return err
}

// record stores the pass when a database is configured. Storage failures do
// not fail the pass.
func (a *app) record(source string, res codec.Result) {
	if a.db == nil {
		return
	}
	id, err := a.db.RecordRun(source, a.fingerprint, res)
	if err != nil {
		a.logger.Error().Err(err).Str("source", source).Msg("packet log write failed")
		return
	}
	a.logger.Debug().Int64("run", id).Str("source", source).Msg("packet log written")
}

func (a *app) writeMetrics() error {
	if a.cfg.MetricsTextfile == "" {
		return nil
	}
	return observability.WriteTextfile(a.cfg.MetricsTextfile)
}
