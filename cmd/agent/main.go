package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/onboard/internal/config"
	"github.com/zhouzirui/onboard/internal/handler"
	"github.com/zhouzirui/onboard/internal/service/ai"
	"github.com/zhouzirui/onboard/internal/service/onboarding"
	"github.com/zhouzirui/onboard/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	repo, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer repo.Close()

	// LLM extraction is optional; the rule validators cover every step.
	var extractor onboarding.Extractor
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with rule-based validation - 请检查 Ark 模型相关环境变量")
		} else {
			extractor = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，使用规则校验")
	}

	svc := onboarding.NewService(repo, extractor)
	router := handler.NewRouter(svc, repo)

	startServer(ctx, cfg.Server, router)
}

func openStore(cfg config.StoreConfig) (store.Repository, error) {
	if cfg.DBPath == "" {
		log.Println("DB_PATH not set, keeping sessions in memory")
		return store.NewMemory(), nil
	}
	log.Printf("using sqlite store at %s", cfg.DBPath)
	return store.NewSQLite(cfg.DBPath)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// websocket 连接被劫持后不受 Shutdown 管理，请求上下文随进程信号取消。
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	log.Printf("onboarding agent listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
