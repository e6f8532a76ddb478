package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/onboard/internal/channel"
	"github.com/zhouzirui/onboard/internal/config"
	"github.com/zhouzirui/onboard/internal/session"
	"github.com/zhouzirui/onboard/internal/tui"
)

func parseFlags(cfg *config.ClientConfig) {
	handshake := int(cfg.HandshakeTimeout / time.Second)
	write := int(cfg.WriteTimeout / time.Second)

	flag.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "Onboarding agent websocket URL")
	flag.IntVar(&handshake, "handshake-timeout", handshake, "Websocket handshake timeout seconds")
	flag.IntVar(&write, "write-timeout", write, "Per-frame write timeout seconds")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path")
	flag.BoolVar(&cfg.AltScreen, "alt-screen", cfg.AltScreen, "Use alternate screen buffer")
	flag.Parse()

	cfg.HandshakeTimeout = time.Duration(handshake) * time.Second
	cfg.WriteTimeout = time.Duration(write) * time.Second
}

func main() {
	// 终端界面占用 stdout，.env 缺失时静默继续。
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile(cfg.LogFile, "onboard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	opts := channel.DefaultOptions()
	opts.HandshakeTimeout = cfg.HandshakeTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	conn := channel.New(cfg.Endpoint, opts)
	defer conn.Close()

	updates := tui.NewUpdateFeed()
	ctrl := session.New(conn, session.WithObserver(updates.Observe))
	defer ctrl.Close()

	log.Printf("starting onboarding client endpoint=%s", cfg.Endpoint)

	var programOpts []tea.ProgramOption
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	programOpts = append(programOpts, tea.WithMouseCellMotion())

	p := tea.NewProgram(tui.New(conn, ctrl, updates), programOpts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "onboard fatal error: %v\n", err)
		os.Exit(1)
	}
}
