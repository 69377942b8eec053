package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/logging"
	"github.com/moondogdev/reup-allotment-calculator/internal/server"

	"github.com/spf13/cobra"
)

type serverRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Config    string    `json:"config"`
}

var (
	flagServeAddr         string
	flagServeSchedule     string
	flagServeDetach       bool
	flagServePIDFile      string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the plan server with HTTP/SSE endpoints",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "reupd.pid")
	defaultLog := filepath.Join(config.DataDir(), "reupd.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config, 127.0.0.1:8788)")
	serveCmd.PersistentFlags().StringVar(&flagServeSchedule, "schedule", "", "Cron schedule for re-checking the plan (default @midnight)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "server-log", defaultLog, "Log file path for detached mode")
	serveCmd.PersistentFlags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

// serverConfig merges serve flags over the [server] config section.
func serverConfig() server.Config {
	sc := run.cfg.Server
	if flagServeAddr != "" {
		sc.Addr = flagServeAddr
	}
	if flagServeSchedule != "" {
		sc.Schedule = flagServeSchedule
	}
	if flagServeEventsBuffer > 0 {
		sc.EventsBuffer = flagServeEventsBuffer
	}
	return server.Config{
		Addr:           sc.Addr,
		EventsBuffer:   sc.EventsBuffer,
		Schedule:       sc.Schedule,
		Allotment:      run.cfg.Plan.Allotment,
		StartDate:      run.cfg.Plan.StartDate,
		AllowedOrigins: sc.AllowedOrigins,
		Planner:        run.planner,
	}
}

func serveAddr() string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	if run.cfg.Server.Addr != "" {
		return run.cfg.Server.Addr
	}
	return "127.0.0.1:8788"
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid server launch mode")
	}

	if flagServeDetach {
		return startServerDetached()
	}

	return runServerForeground()
}

func startServerDetached() error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}

	//nolint:gosec // server log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  API: http://%s/v1/plan\n", serveAddr())
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServerForeground() error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(flagServePIDFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagServePIDFile) }()

	cfg := serverConfig()
	state := serverRuntimeState{
		PID:       pid,
		Addr:      cfg.Addr,
		StartedAt: time.Now(),
		Config:    run.cfgPath,
	}
	_ = writeState(statePath(flagServePIDFile), state)
	defer func() { _ = os.Remove(statePath(flagServePIDFile)) }()

	// The server reports requests and schedule runs at info unless the
	// user asked for something else.
	level := run.cfg.Log.Level
	if level == config.DefaultConfig().Log.Level {
		level = "info"
	}
	cfg.Logger = logging.New(logging.Config{Level: level, Pretty: !flagServeChild}).With().Int("pid", pid).Logger()
	svc := server.New(cfg)

	fmt.Printf("  reup server listening on http://%s\n", cfg.Addr)
	fmt.Printf("  Re-checking the plan on %q\n", cfg.Schedule)
	fmt.Printf("  Stop with: reup serve stop --pid-file %s\n", flagServePIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		fmt.Printf("  Server: not running (pid file not found)\n")
		return nil
	}

	alive := processAlive(pid)
	if !alive {
		fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := serveAddr()
	if st, err := readState(statePath(flagServePIDFile)); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Instance: %s (up since %s)\n", st.InstanceID, st.StartedAt.Local().Format(time.RFC3339))
	if st.LastCheckAt.IsZero() {
		fmt.Printf("  Last check: pending\n")
	} else {
		fmt.Printf("  Last check: %s\n", st.LastCheckAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Check count: %d (%s)\n", st.CheckCount, st.Schedule)
	fmt.Printf("  Allotment: %s oz\n", st.Allotment)
	if st.Current.Error != "" {
		fmt.Printf("  Plan: %s\n", st.Current.Error)
	} else {
		fmt.Printf("  Cycle: %s to %s\n", st.Current.CycleStart, st.Current.CycleEnd)
		if st.Current.CurrentWeek > 0 {
			fmt.Printf("  This week: week %d, %d eighths\n", st.Current.CurrentWeek, st.Current.UnitsThisWeek)
		} else {
			fmt.Printf("  This week: outside the cycle\n")
		}
	}
	fmt.Printf("  Events: %d, subscribers: %d\n", st.EventCount, st.SubscriberCount)
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagServePIDFile)
			_ = os.Remove(statePath(flagServePIDFile))
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureServerNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // server pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st serverRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (serverRuntimeState, error) {
	var st serverRuntimeState
	//nolint:gosec // server state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
