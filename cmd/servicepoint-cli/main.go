package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/pior/servicepoint"
	"github.com/pior/servicepoint/protocol"
)

// display is the subset of *servicepoint.Client and *servicepoint.Connection
// the REPL needs.
type display interface {
	Send(ctx context.Context, s servicepoint.Sendable) error
}

type session struct {
	target      display
	client      *servicepoint.Client // nil for websocket targets
	canvas      *servicepoint.Bitmap
	compression servicepoint.CompressionCode
	out         io.Writer
}

func main() {
	cfg := defaultConfig()

	flags := pflag.NewFlagSet("servicepoint-cli", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a servicepoint.toml file")
	addr := flags.String("addr", "", "display address (host[:port])")
	ws := flags.String("websocket", "", "websocket URL, replaces --addr")
	compression := flags.String("compression", "", "bitmap compression: none, bzip2, zlib, lzma, zstd")
	logLevel := flags.String("log-level", "", "trace, debug, info, warn, error, disabled")
	_ = flags.Parse(os.Args[1:])

	if *configPath != "" {
		var err error
		cfg, err = loadConfigFile(*configPath, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	applyEnv(&cfg)
	if err := applyFlags(&cfg, *addr, *ws, *compression, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(cfg.LogLevel).
		With().Timestamp().Logger()

	s, closeFn, err := newSession(context.Background(), cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect")
		os.Exit(1)
	}
	defer closeFn()

	fmt.Println("Service Point CLI")
	fmt.Println("=================")
	fmt.Println("Commands: clear, reset, fadeout, brightness <0-11>, text <x> <y> <text>, fill on|off, pixel <x> <y> on|off, stats, quit")
	fmt.Println()

	s.run(os.Stdin)
}

func applyFlags(cfg *cliConfig, addr, ws, compression, logLevel string) error {
	if addr != "" {
		cfg.Addr = addr
	}
	if ws != "" {
		cfg.WebSocket = ws
	}
	if compression != "" {
		code, err := protocol.ParseCompressionName(compression)
		if err != nil {
			return err
		}
		cfg.Compression = code
	}
	if logLevel != "" {
		lvl, ok := parseLevel(logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		cfg.LogLevel = lvl
	}
	return nil
}

func newSession(ctx context.Context, cfg cliConfig, logger zerolog.Logger) (*session, func(), error) {
	s := &session{
		canvas:      servicepoint.NewMaxSizedBitmap(),
		compression: cfg.Compression,
		out:         os.Stdout,
	}

	if cfg.WebSocket != "" {
		conn, err := servicepoint.OpenWebSocket(ctx, cfg.WebSocket, servicepoint.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		s.target = conn
		return s, func() { _ = conn.Close() }, nil
	}

	client, err := servicepoint.NewClient([]string{cfg.Addr}, servicepoint.Config{
		FramePacing:       cfg.FramePacing,
		SkipUnchanged:     cfg.SkipUnchanged,
		NewCircuitBreaker: servicepoint.NewCircuitBreakerConfig(1, 10*time.Second, 5*time.Second),
		Logger:            logger,
	})
	if err != nil {
		return nil, nil, err
	}
	s.target = client
	s.client = client
	return s, client.Close, nil
}

func (s *session) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !s.exec(context.Background(), line) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(s.out, "Error reading input: %v\n", err)
	}
}

// exec runs one REPL line. It returns false when the session should end.
func (s *session) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case "clear":
		if err := s.canvas.Fill(false); err != nil {
			s.fail(err)
			return true
		}
		s.send(ctx, servicepoint.NewClear())

	case "reset":
		s.send(ctx, servicepoint.NewHardReset())

	case "fadeout":
		s.send(ctx, servicepoint.NewFadeOut())

	case "brightness":
		if len(parts) != 2 {
			fmt.Fprintln(s.out, "Usage: brightness <0-11>")
			return true
		}
		v, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid brightness: %v\n", err)
			return true
		}
		cmd, err := servicepoint.NewBrightness(byte(v))
		if err != nil {
			s.fail(err)
			return true
		}
		s.send(ctx, cmd)

	case "text":
		if len(parts) < 4 {
			fmt.Fprintln(s.out, "Usage: text <x> <y> <text>")
			return true
		}
		x, errX := strconv.Atoi(parts[1])
		y, errY := strconv.Atoi(parts[2])
		if errX != nil || errY != nil {
			fmt.Fprintln(s.out, "Usage: text <x> <y> <text>")
			return true
		}
		text := strings.Join(parts[3:], " ")
		cmd, err := servicepoint.NewUtf8Data(x, y, servicepoint.LoadCharGrid(text))
		if err != nil {
			s.fail(err)
			return true
		}
		s.send(ctx, cmd)

	case "fill":
		on, ok := parseOnOff(parts, 1)
		if !ok {
			fmt.Fprintln(s.out, "Usage: fill on|off")
			return true
		}
		if err := s.canvas.Fill(on); err != nil {
			s.fail(err)
			return true
		}
		s.sendCanvas(ctx)

	case "pixel":
		if len(parts) != 4 {
			fmt.Fprintln(s.out, "Usage: pixel <x> <y> on|off")
			return true
		}
		x, errX := strconv.Atoi(parts[1])
		y, errY := strconv.Atoi(parts[2])
		on, ok := parseOnOff(parts, 3)
		if errX != nil || errY != nil || !ok {
			fmt.Fprintln(s.out, "Usage: pixel <x> <y> on|off")
			return true
		}
		if _, err := s.canvas.Set(x, y, on); err != nil {
			s.fail(err)
			return true
		}
		s.sendCanvas(ctx)

	case "stats":
		s.printStats()

	case "help":
		fmt.Fprintln(s.out, "Commands:")
		fmt.Fprintln(s.out, "  clear                     - Turn every pixel off")
		fmt.Fprintln(s.out, "  reset                     - Hard reset the display")
		fmt.Fprintln(s.out, "  fadeout                   - Fade the display out")
		fmt.Fprintln(s.out, "  brightness <0-11>         - Set the brightness of every tile")
		fmt.Fprintln(s.out, "  text <x> <y> <text>       - Write text at a tile position")
		fmt.Fprintln(s.out, "  fill on|off               - Fill the pixel canvas")
		fmt.Fprintln(s.out, "  pixel <x> <y> on|off      - Set one pixel of the canvas")
		fmt.Fprintln(s.out, "  stats                     - Show send statistics")
		fmt.Fprintln(s.out, "  quit                      - Exit the CLI")

	case "quit", "exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s. Type 'help' for available commands.\n", command)
	}
	return true
}

func parseOnOff(parts []string, i int) (on, ok bool) {
	if len(parts) <= i {
		return false, false
	}
	switch strings.ToLower(parts[i]) {
	case "on", "1", "true":
		return true, true
	case "off", "0", "false":
		return false, true
	}
	return false, false
}

// sendCanvas sends a copy of the canvas; the canvas itself stays editable.
func (s *session) sendCanvas(ctx context.Context) {
	frame, err := s.canvas.Clone()
	if err != nil {
		s.fail(err)
		return
	}
	cmd, err := servicepoint.NewBitmapLinearWin(0, 0, frame, s.compression)
	if err != nil {
		s.fail(err)
		return
	}
	s.send(ctx, cmd)
}

func (s *session) send(ctx context.Context, cmd *servicepoint.Command) {
	start := time.Now()
	desc := cmd.String()
	err := s.target.Send(ctx, cmd)
	duration := time.Since(start)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v (took %v)\n", err, duration)
		return
	}
	fmt.Fprintf(s.out, "Sent %s (took %v)\n", desc, duration)
}

func (s *session) fail(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *session) printStats() {
	if s.client == nil {
		fmt.Fprintln(s.out, "No statistics available")
		return
	}

	st := s.client.Stats()
	fmt.Fprintf(s.out, "Frames: sent=%d skipped=%d failed=%d bytes=%d\n", st.Sent, st.Skipped, st.Errors, st.Bytes)
	for _, d := range s.client.AllDisplayStats() {
		fmt.Fprintf(s.out, "Display %s:\n", d.Addr)
		fmt.Fprintf(s.out, "  Connections: total=%d active=%d idle=%d\n",
			d.PoolStats.TotalConns, d.PoolStats.ActiveConns, d.PoolStats.IdleConns)
		fmt.Fprintf(s.out, "  Created: %d, Destroyed: %d, Acquire errors: %d\n",
			d.PoolStats.CreatedConns, d.PoolStats.DestroyedConns, d.PoolStats.AcquireErrors)
		fmt.Fprintf(s.out, "  Circuit breaker: %s\n", d.CircuitBreakerState)
	}
}
