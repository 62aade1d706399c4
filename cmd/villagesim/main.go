// Command villagesim runs the villagefolk behavior engine against a
// small generated demo world and records the run to SQLite.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/selwood/villagefolk/internal/decision"
	"github.com/selwood/villagefolk/internal/entropy"
	"github.com/selwood/villagefolk/internal/idletask"
	"github.com/selwood/villagefolk/internal/needs"
	"github.com/selwood/villagefolk/internal/sim"
	"github.com/selwood/villagefolk/internal/telemetry"
	"github.com/selwood/villagefolk/internal/village"
	"github.com/selwood/villagefolk/internal/work"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("villagefolk — autonomous NPC behavior engine")

	seed := envInt64("VILLAGESIM_SEED", 42)
	maxTicks := uint64(envInt64("VILLAGESIM_TICKS", 0)) // 0 = run until interrupted
	speed := envFloat("VILLAGESIM_SPEED", 20)           // sim-seconds per wall second
	dbPath := os.Getenv("VILLAGESIM_DB")
	if dbPath == "" {
		dbPath = "data/villagesim.db"
	}

	// ── Telemetry ─────────────────────────────────────────────────────
	os.MkdirAll("data", 0o755)
	recorder, err := telemetry.Open(dbPath)
	if err != nil {
		slog.Error("failed to open telemetry database", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()
	slog.Info("telemetry database opened", "path", dbPath)

	// ── World ─────────────────────────────────────────────────────────
	rng := entropy.NewSeeded(seed)
	cfg := village.DefaultGenConfig()
	cfg.Seed = seed
	world := village.Generate(cfg, rng)
	slog.Info("village generated",
		"seed", seed,
		"buildings", len(world.Buildings()),
		"villagers", len(world.Agents()),
	)
	for _, b := range world.Buildings() {
		slog.Debug("building",
			"id", b.ID, "type", b.Type.String(),
			"capacity", b.Properties.NPCCapacity,
		)
	}

	// ── Behavior components ───────────────────────────────────────────
	tracker := needs.NewTracker()
	tasks := idletask.NewManager(idletask.DefaultConfig(), rng, world)
	decider := decision.NewEngine(tracker, tasks, decision.WithRandom(rng))
	assignment := work.NewAssignment(world, world)

	simulation := sim.NewSimulation(world, tracker, tasks, decider, assignment)

	// Staff the village before the first tick.
	placed := assignment.AutoAssign()
	slog.Info("initial staffing", "placed", placed)

	// ── Engine ────────────────────────────────────────────────────────
	eng := sim.NewEngine()
	eng.Speed = speed
	eng.OnTick = func(tick uint64) {
		simulation.TickSecond(tick)
		recorder.Flush(simulation.Stats, simulation.DrainDecisions())
	}
	eng.OnMinute = simulation.TickMinute
	eng.OnHour = simulation.TickHour

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%d villagers settle in around %d buildings. (Ctrl+C to stop)\n\n",
		len(world.Agents()), len(world.Buildings()))

	began := time.Now()
	eng.Run(maxTicks)

	// ── Summary ───────────────────────────────────────────────────────
	dstats := decider.GetStatistics()
	tstats := tasks.GetStatistics()
	wstats := assignment.GetStatistics()
	recorded, _ := recorder.DecisionCount()

	fmt.Printf("\nRun finished after %s of sim time (%s wall clock).\n",
		sim.SimTime(eng.Tick), humanize.RelTime(began, time.Now(), "", ""))
	fmt.Printf("Decisions made: %s (%.1f%% emergencies, %.1f%% work refusals)\n",
		humanize.Comma(int64(dstats.Total)), dstats.EmergencyRate, dstats.WorkRefusalRate)
	fmt.Printf("Idle tasks completed: %s, cancelled: %s\n",
		humanize.Comma(int64(tstats.Completed)), humanize.Comma(int64(tstats.Cancelled)))
	fmt.Printf("Workers placed: %d across %d buildings, %d idle.\n",
		wstats.AssignedWorkers, wstats.BuildingsStaffed, wstats.IdleAgents)
	fmt.Printf("Telemetry: %s decisions recorded in %s.\n",
		humanize.Comma(recorded), dbPath)
}

func logLevel() slog.Level {
	switch os.Getenv("VILLAGESIM_LOG") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("ignoring malformed env value", "key", key, "value", v)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring malformed env value", "key", key, "value", v)
	}
	return fallback
}
