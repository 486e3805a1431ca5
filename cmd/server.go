package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"talentflow/internal/api"
	"talentflow/internal/chaos"
	"talentflow/internal/engine"
	"talentflow/internal/seed"
	"talentflow/internal/storage"
)

// AppConfig 应用配置。
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Chaos    ChaosConfig    `yaml:"chaos"`
	Seed     seed.Config    `yaml:"seed"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ChaosConfig 控制延迟与随机失败注入；Seed 非零时随机序列可复现。
type ChaosConfig struct {
	Disabled bool  `yaml:"disabled"`
	Seed     int64 `yaml:"seed"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("load config error: %v", err)
		return
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "talentflow.db"
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		log.Printf("init store error: %v", err)
		return
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rngSeed := cfg.Chaos.Seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	seeder := seed.New(store, rand.New(rand.NewSource(rngSeed)), log.New(os.Stdout, "[seed] ", log.LstdFlags), cfg.Seed)
	if err := seeder.Run(ctx); err != nil {
		log.Printf("seed error: %v", err)
		return
	}

	jobs, err := engine.NewJobs(ctx, store)
	if err != nil {
		log.Printf("load jobs error: %v", err)
		return
	}
	cands, err := engine.NewCandidates(ctx, store, jobs)
	if err != nil {
		log.Printf("load candidates error: %v", err)
		return
	}
	asmts, err := engine.NewAssessments(ctx, store)
	if err != nil {
		log.Printf("load assessments error: %v", err)
		return
	}

	var policy chaos.Policy = chaos.NewRandom(rand.New(rand.NewSource(rngSeed)))
	if cfg.Chaos.Disabled {
		policy = chaos.None{}
	}

	handler := api.NewHandler(jobs, cands, asmts, policy, log.New(os.Stdout, "[api] ", log.LstdFlags))

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	log.Printf("listening on %s", addr)
	if err := runServer(ctx, &http.Server{Addr: addr, Handler: handler}, 5*time.Second); err != nil {
		log.Printf("server error: %v", err)
	}
}

// httpServer 抽象 http.Server，便于测试替换。
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// runServer 运行服务器直到上下文取消，然后在给定超时内优雅关闭。
func runServer(ctx context.Context, srv httpServer, shutdownTimeout time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loadConfig() (AppConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AppConfig{}, nil
		}
		return AppConfig{}, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
