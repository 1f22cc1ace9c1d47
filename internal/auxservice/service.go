// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auxservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tombee/zenlaunch/internal/config"
	"github.com/tombee/zenlaunch/internal/lifecycle"
	"github.com/tombee/zenlaunch/internal/toolchain"
)

const (
	// stopTimeout bounds the SIGTERM phase of Stop before SIGKILL.
	stopTimeout = 5 * time.Second

	pidFileName     = "redis.pid"
	logFileName     = "redis.log"
	historyFileName = "lifecycle.log"
)

// ErrNotStarted is returned by Stop when no PID file records a service this
// tool started.
var ErrNotStarted = errors.New("no auxiliary service started by zenlaunch")

// Status is the outcome of Ensure or Check.
type Status string

const (
	// StatusRunning means the service answered the first probe.
	StatusRunning Status = "running"

	// StatusStarted means the service was spawned and then answered.
	StatusStarted Status = "started"

	// StatusDegraded means the service is unavailable; the launch continues
	// without conversation memory.
	StatusDegraded Status = "degraded"

	// StatusDisabled means the service was turned off by configuration.
	StatusDisabled Status = "disabled"
)

// Result describes the service after Ensure or Check.
type Result struct {
	Status Status `json:"status"`
	Addr   string `json:"addr"`
	PID    int    `json:"pid,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Degraded reports whether the launch proceeds without the service.
func (r Result) Degraded() bool {
	return r.Status == StatusDegraded || r.Status == StatusDisabled
}

// Spawner starts a detached process. *lifecycle.Spawner implements it.
type Spawner interface {
	SpawnDetached(binary string, args []string, logPath string) (int, error)
}

// Service probes and, when needed, starts the auxiliary cache.
type Service struct {
	cfg      config.AuxSettings
	stateDir string

	lookPath toolchain.LookPathFunc
	spawner  Spawner
	poller   *lifecycle.Poller
	pidfile  *lifecycle.PIDFile
	history  *lifecycle.HistoryLogger
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLookPath replaces PATH lookup of the server binary.
func WithLookPath(lookPath toolchain.LookPathFunc) Option {
	return func(s *Service) { s.lookPath = lookPath }
}

// WithSpawner replaces the detached process spawner.
func WithSpawner(spawner Spawner) Option {
	return func(s *Service) { s.spawner = spawner }
}

// WithPoller replaces the readiness poller.
func WithPoller(poller *lifecycle.Poller) Option {
	return func(s *Service) { s.poller = poller }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a Service for the given settings. Runtime files (PID, server
// log, lifecycle history) live under stateDir.
func New(cfg config.AuxSettings, stateDir string, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		stateDir: stateDir,
		spawner:  lifecycle.NewSpawner().WithDir(stateDir),
		poller:   lifecycle.NewPoller(),
		pidfile:  lifecycle.NewPIDFile(filepath.Join(stateDir, pidFileName)),
		history:  lifecycle.NewHistoryLogger(filepath.Join(stateDir, historyFileName)),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lookPath == nil {
		s.lookPath = toolchain.NewResolver(nil).Find
	}
	s.logger = s.logger.With(slog.String("component", "auxservice"))
	return s
}

// Addr returns the probed host:port.
func (s *Service) Addr() string {
	return s.cfg.Addr()
}

// Probe sends a single PING bounded by the probe timeout.
func (s *Service) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:         s.Addr(),
		DialTimeout:  s.cfg.ProbeTimeout,
		ReadTimeout:  s.cfg.ProbeTimeout,
		WriteTimeout: s.cfg.ProbeTimeout,
		MaxRetries:   -1,
		PoolSize:     1,
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping %s: %w", s.Addr(), err)
	}
	return nil
}

// Check probes without starting anything.
func (s *Service) Check(ctx context.Context) Result {
	if s.cfg.Disabled {
		return Result{Status: StatusDisabled, Addr: s.Addr(), Reason: "auxiliary service disabled"}
	}
	if err := s.Probe(ctx); err != nil {
		s.logger.Debug("probe failed", slog.Any("error", err))
		return Result{Status: StatusDegraded, Addr: s.Addr(), Reason: "not reachable"}
	}
	return Result{Status: StatusRunning, Addr: s.Addr()}
}

// Ensure makes the service reachable if it can. It never returns an error:
// every failure becomes a degraded Result.
//
//  1. A successful probe means running; nothing is started.
//  2. A remote host or a missing server binary means degraded.
//  3. Otherwise the binary is spawned detached and probed until the settle
//     delay runs out.
//
// A concurrent start by another launch is indistinguishable from our own once
// the port answers, so whichever server answers is accepted.
func (s *Service) Ensure(ctx context.Context) Result {
	if s.cfg.Disabled {
		return Result{Status: StatusDisabled, Addr: s.Addr(), Reason: "auxiliary service disabled"}
	}

	err := s.Probe(ctx)
	if err == nil {
		s.logger.Debug("auxiliary service already running", slog.String("addr", s.Addr()))
		return Result{Status: StatusRunning, Addr: s.Addr()}
	}
	s.logger.Debug("initial probe failed", slog.Any("error", err))

	if !isLocalHost(s.cfg.Host) {
		return s.degraded(fmt.Sprintf("%s is not reachable and is not a local address", s.Addr()))
	}

	binary, err := s.lookPath(s.cfg.Binary)
	if err != nil {
		return s.degraded(fmt.Sprintf("%s not found, running with no auxiliary memory", s.cfg.Binary))
	}

	args := []string{"--port", strconv.Itoa(s.cfg.Port)}
	logPath := filepath.Join(s.stateDir, logFileName)
	pid, err := s.spawner.SpawnDetached(binary, args, logPath)
	if err != nil && pid == 0 {
		s.logger.Debug("spawn failed", slog.String("binary", binary), slog.Any("error", err))
		s.recordStartFailure(0, err)
		return s.degraded(fmt.Sprintf("failed to start %s: %v", s.cfg.Binary, err))
	}
	s.logger.Debug("spawned auxiliary service",
		slog.Int("pid", pid),
		slog.String("binary", binary),
		slog.String("log", logPath))

	if err := s.pidfile.Write(pid); err != nil {
		s.logger.Debug("failed to record PID", slog.Any("error", err))
	}

	if err := s.poller.WaitUntil(ctx, s.cfg.SettleDelay, s.Probe); err != nil {
		s.recordStartFailure(pid, err)
		result := s.degraded(fmt.Sprintf("started %s but %s did not answer (see %s)", s.cfg.Binary, s.Addr(), logPath))
		result.PID = pid
		return result
	}

	if err := s.history.LogAuxStart(pid, s.Addr()); err != nil {
		s.logger.Debug("failed to write lifecycle history", slog.Any("error", err))
	}
	return Result{Status: StatusStarted, Addr: s.Addr(), PID: pid}
}

func (s *Service) degraded(reason string) Result {
	return Result{Status: StatusDegraded, Addr: s.Addr(), Reason: reason}
}

func (s *Service) recordStartFailure(pid int, cause error) {
	if err := s.history.LogAuxStartFailure(pid, cause); err != nil {
		s.logger.Debug("failed to write lifecycle history", slog.Any("error", err))
	}
}

// StartedPID returns the PID recorded by the last start and whether that
// process is still running.
func (s *Service) StartedPID() (int, bool) {
	pid, err := s.pidfile.Read()
	if err != nil {
		return 0, false
	}
	return pid, lifecycle.IsProcessRunning(pid)
}

// Stop terminates a service previously started by Ensure. Services started by
// anything else are left alone; a PID that no longer belongs to the server
// binary is never signalled.
func (s *Service) Stop(ctx context.Context) (int, error) {
	pid, err := s.pidfile.Read()
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotStarted
		}
		return 0, err
	}

	if err := lifecycle.VerifyOwner(pid, s.cfg.Binary); err != nil {
		_ = s.pidfile.Remove()
		if errors.Is(err, lifecycle.ErrProcessNotRunning) {
			return pid, fmt.Errorf("stale PID file: %w", err)
		}
		return pid, err
	}

	start := time.Now()
	err = lifecycle.Terminate(ctx, pid, stopTimeout)
	if histErr := s.history.LogAuxStop(pid, time.Since(start), err); histErr != nil {
		s.logger.Debug("failed to write lifecycle history", slog.Any("error", histErr))
	}
	if err != nil {
		return pid, fmt.Errorf("failed to stop %s (PID %d): %w", s.cfg.Binary, pid, err)
	}

	if err := s.pidfile.Remove(); err != nil {
		s.logger.Debug("failed to remove PID file", slog.Any("error", err))
	}
	return pid, nil
}

// isLocalHost reports whether host names this machine.
func isLocalHost(host string) bool {
	switch host {
	case "", "localhost":
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
