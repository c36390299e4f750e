package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amala/channel/internal/config"
	"github.com/amala/channel/internal/data"
	"github.com/amala/channel/internal/handler"
	gonet "github.com/amala/channel/internal/net"
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/scripting"
	"github.com/amala/channel/internal/system"
	"github.com/amala/channel/internal/work"
	"github.com/amala/channel/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("CHANNELD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("channel starting",
		zap.String("name", cfg.Server.Name),
		zap.Int("id", cfg.Server.ID))

	// 3. Connect to PostgreSQL and run migrations
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// 4. Repositories and the background saver
	accountRepo := persist.NewAccountRepo(db)
	charRepo := persist.NewCharacterRepo(db)
	saver := persist.NewSaver(db, cfg.Database.SaveQueueSize, log)

	// 5. Load definition tables and populate zones
	defs, err := data.Load(cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("load data tables: %w", err)
	}
	log.Info("definition tables loaded",
		zap.Int("items", defs.Items.Count()),
		zap.Int("devils", defs.Devils.Count()),
		zap.Int("zones", defs.Zones.Count()))

	worldState := world.NewState()
	spawned := spawnZones(worldState, defs.Zones)
	log.Info("zones populated", zap.Int("entities", spawned))

	// 6. Lua scripting engine
	luaEngine, err := scripting.NewEngine(cfg.Server.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()

	// 7. Work queue and game systems
	queue := work.NewQueue(cfg.Game.Workers, cfg.Game.WorkQueueSize, log)
	mgr := system.NewManager(worldState, defs, saver, log)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	mgr.StartEquipExpiryLoop(sweepCtx, cfg.Game.EquipExpiryInterval)

	// 8. Packet handler registry
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		World:      worldState,
		Defs:       defs,
		Store:      saver,
		Mgr:        mgr,
		Queue:      queue,
		Script:     luaEngine,
		Accounts:   accountRepo,
		Characters: charRepo,
		Cfg:        cfg,
		Log:        log,
	}
	handler.RegisterAll(pktReg, deps)

	// 9. Network server
	pktPerSec := 0
	if cfg.RateLimit.Enabled {
		pktPerSec = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		pktPerSec,
		cfg.Network.WriteTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	netServer.SetOnAccept(func(sess *gonet.Session) {
		sid := sess.SessionID()
		sess.SetOnClose(func() {
			// Teardown runs on the work queue so it serializes with any
			// still-queued tasks for this client.
			queue.Submit(func() {
				mgr.HandleDisconnect(worldState.ClientBySession(sid))
			})
		})
		go sess.DispatchLoop(pktReg)
	})
	go netServer.AcceptLoop()

	log.Info("channel ready", zap.String("addr", netServer.Addr().String()))

	// 10. Wait for shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	netServer.Shutdown()
	stopSweep()
	for _, st := range worldState.Clients() {
		st.Conn.Close()
	}
	queue.Stop()
	saver.Stop()
	log.Info("channel stopped")
	return nil
}

// spawnZones creates the static zone population from the zone table.
func spawnZones(ws *world.State, zones *data.ZoneTable) int {
	total := 0
	for _, def := range zones.All() {
		z := ws.Zone(def.ID)
		for _, n := range def.NPCs {
			z.AddNPC(&world.NPCState{
				ActiveEntityState: world.ActiveEntityState{
					EntityID: world.NextEntityID(),
					X:        n.X,
					Y:        n.Y,
				},
				DefinitionID: n.DefinitionID,
				Actions:      toActions(n.Actions),
			})
			total++
		}
		for _, o := range def.Objects {
			z.AddObject(&world.ObjectState{
				ActiveEntityState: world.ActiveEntityState{
					EntityID: world.NextEntityID(),
					X:        o.X,
					Y:        o.Y,
				},
				DefinitionID: o.DefinitionID,
				Actions:      toActions(o.Actions),
			})
			total++
		}
		for _, p := range def.Plasmas {
			z.AddPlasma(world.NewPlasmaState(world.NextEntityID(), p.X, p.Y, p.Points))
			total++
		}
	}
	return total
}

func toActions(defs []data.ActionDef) []world.Action {
	out := make([]world.Action, 0, len(defs))
	for _, a := range defs {
		out = append(out, world.Action{Function: a.Function, Args: a.Args})
	}
	return out
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
