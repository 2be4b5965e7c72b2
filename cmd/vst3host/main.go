// Command vst3host is the process entry point: it binds a loopback
// listener, announces its port on stdout, accepts exactly one client,
// and runs the protocol dispatch loop until that client disconnects or
// sends a shutdown command.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/rack-audio/vst3host/pkg/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultPortBase = 47100
	defaultPortMax  = 47199
)

func main() {
	log := newLogger()
	defer log.Sync()

	portBase, portMax := portRange(log)

	listener, port, err := bindFirstFreePort(portBase, portMax)
	if err != nil {
		log.Error("no free port in range", zap.Int("base", portBase), zap.Int("max", portMax), zap.Error(err))
		os.Exit(1)
	}
	defer listener.Close()

	fmt.Printf("PORT=%d\n", port)
	os.Stdout.Sync()
	log.Info("listening", zap.Int("port", port))

	conn, err := listener.Accept()
	if err != nil {
		log.Error("accept failed", zap.Error(err))
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	server := protocol.NewServer(log)
	if err := server.Serve(conn); err != nil {
		log.Error("session loop exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("session loop exited cleanly")
}

// newLogger builds the development-encoder zap logger this process
// threads down through every package: stderr only, since stdout is
// reserved for the PORT= handshake.
func newLogger() *zap.Logger {
	level := parseLevel(os.Getenv("VST3HOST_LOG_LEVEL"))

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(level)

	log, err := cfg.Build()
	if err != nil {
		// zap construction failing means stderr itself is unusable;
		// there is nothing left to log to, so fall back to a no-op
		// logger rather than panicking the host over logging.
		return zap.NewNop()
	}
	return log
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// portRange reads VST3HOST_PORT_BASE/VST3HOST_PORT_MAX, falling back to
// the 47100-47199 range spec.md §4.9 names. A malformed override is
// logged and ignored rather than treated as fatal.
func portRange(log *zap.Logger) (base, max int) {
	base, max = defaultPortBase, defaultPortMax
	if v := os.Getenv("VST3HOST_PORT_BASE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			base = n
		} else {
			log.Warn("ignoring malformed VST3HOST_PORT_BASE", zap.String("value", v))
		}
	}
	if v := os.Getenv("VST3HOST_PORT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			max = n
		} else {
			log.Warn("ignoring malformed VST3HOST_PORT_MAX", zap.String("value", v))
		}
	}
	return base, max
}

// bindFirstFreePort tries every port in [base, max] in order and binds
// the first one that accepts a loopback TCP listener. Failure across
// the entire range is fatal, per spec.md §4.9 step 2.
func bindFirstFreePort(base, max int) (net.Listener, int, error) {
	// net.Listen does not expose a backlog knob; "listen with backlog 1"
	// is enforced behaviorally instead, by accepting exactly once and
	// never calling Accept again.
	for port := base; port <= max; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			return ln, port, nil
		}
	}
	return nil, 0, fmt.Errorf("no free port in [%d, %d]", base, max)
}
