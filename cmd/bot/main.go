package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LiquiMind/internal/cache"
	"LiquiMind/internal/chain"
	"LiquiMind/internal/checkpoint"
	"LiquiMind/internal/collector"
	"LiquiMind/internal/config"
	"LiquiMind/internal/forge"
	"LiquiMind/internal/gate"
	"LiquiMind/internal/generator"
	"LiquiMind/internal/model"
	"LiquiMind/internal/notifier"
	"LiquiMind/internal/recorder"
	"LiquiMind/internal/reward"
	"LiquiMind/internal/scheduler"
	"LiquiMind/internal/sealer"
	"LiquiMind/internal/storage"
	"LiquiMind/internal/strategy"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] LiquiMind starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chainClient := chain.NewHTTPClient(cfg.Chain.RPCURL, cfg.Chain.APIToken, cfg.Proxy)

	seal, err := sealer.FromBase64(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("[FATAL] init sealer: %v", err)
	}

	gen, closeGen := newGenerator(ctx, cfg)
	defer closeGen()
	log.Printf("[INFO] generator: %s", gen.Name())

	store, err := newContentStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[FATAL] init content store: %v", err)
	}
	log.Printf("[INFO] content store: %s", store.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init notifier
	var notify notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notify = tn
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	// Course cache
	lister := collector.NewChainGPTClient(cfg.Courses.BaseURL, cfg.Courses.APIKey, cfg.Proxy, cfg.Courses.MinInterval)
	courses := cache.New(lister, newCacheStore(cfg), cache.Config{
		TTL:     cfg.Courses.Cache.TTL,
		Grace:   cfg.Courses.Cache.Grace,
		Timeout: cfg.Courses.Timeout,
	})

	// Reward path
	metaForge := forge.New(gen, store, forge.Timeouts{Generate: cfg.Generator.Timeout, Store: cfg.Storage.Timeout})
	submitter := reward.NewSubmitter(metaForge, seal, chainClient, rec, reward.Config{
		Signer:  cfg.Chain.Signer,
		Timeout: cfg.Chain.Timeout,
	})
	subGate := gate.New(chainClient, cfg.Chain.Timeout)

	var tasks []scheduler.ActivityTask
	for _, e := range cfg.Activity.Activities {
		tasks = append(tasks, scheduler.ActivityTask{Activity: e.Activity(), Count: e.Count})
	}
	activitySchedule, _ := config.ParseSchedule(cfg.Activity.Schedule)
	activity := scheduler.NewActivityScheduler(scheduler.ActivityConfig{
		Wallets:            cfg.Chain.Wallets,
		Schedule:           activitySchedule,
		RunOnStart:         *cfg.Activity.RunOnStart,
		DedupeWindow:       cfg.Activity.DedupeWindow,
		Activities:         tasks,
		FailureNoticeEvery: time.Hour,
	}, subGate, submitter, courses, rec, notify)

	// Retrain path
	checkpoints, created, err := checkpoint.NewManager(cfg.Retrain.CheckpointPath, func() *model.PolicyCheckpoint {
		return strategy.NewPolicy(model.FeatureCount).Checkpoint(time.Now())
	})
	if err != nil {
		log.Fatalf("[FATAL] init checkpoint: %v", err)
	}
	if created {
		log.Println("[INFO] no checkpoint found, starting from a fresh policy")
	}
	trainer := strategy.NewTrainer(strategy.TrainOptions{LearningRate: cfg.Retrain.LearningRate, Epochs: cfg.Retrain.Epochs})
	defer trainer.Stop()

	retrainSchedule, _ := config.ParseSchedule(cfg.Retrain.Schedule)
	trades := collector.NewTradeCollector(chainClient, cfg.Retrain.TradeLimit, cfg.Retrain.Timeout)
	retrain, err := scheduler.NewRetrainScheduler(retrainSchedule, trades, checkpoints, trainer, rec, notify)
	if err != nil {
		log.Fatalf("[FATAL] init retrain scheduler: %v", err)
	}

	orch := scheduler.NewOrchestrator(activity, retrain, courses, rec, notify)
	if tn != nil {
		if err := orch.RegisterDigest(cfg.Telegram.DigestCron); err != nil {
			log.Fatalf("[FATAL] register digest: %v", err)
		}
		go tn.Listen(ctx, orch.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	done := make(chan error, 1)
	go func() { done <- orch.Run(ctx) }()

	log.Println("[INFO] LiquiMind is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-done:
		log.Printf("[ERROR] orchestrator exited: %v", err)
	}
	cancel()
	<-done
	log.Println("[INFO] LiquiMind stopped")
}

func newGenerator(ctx context.Context, cfg *config.Config) (generator.Generator, func()) {
	switch cfg.Generator.Provider {
	case "gemini":
		g, err := generator.NewGeminiClient(ctx, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.MaxTokens)
		if err != nil {
			log.Fatalf("[FATAL] init gemini: %v", err)
		}
		return g, func() { g.Close() }
	case "template":
		return generator.Template{}, func() {}
	default:
		return generator.NewChatClient(generator.ChatConfig{
			APIKey:      cfg.Generator.APIKey,
			BaseURL:     cfg.Generator.BaseURL,
			Model:       cfg.Generator.Model,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
		}), func() {}
	}
}

func newContentStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "minio":
		m := cfg.Storage.Minio
		ms, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			Region:    m.Region,
			Secure:    m.Secure,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	case "memory":
		log.Println("[WARN] memory content store: metadata will not survive a restart")
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewIPFSStore(cfg.Storage.IPFSAPI), nil
	}
}

func newCacheStore(cfg *config.Config) cache.Store {
	c := cfg.Courses.Cache
	if c.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		return cache.NewRedisStore(client, c.RedisKey, 0)
	}
	return cache.NewFileStore(c.File)
}
