package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/app"
	"github.com/abrezinsky/dinnerroulette/internal/browser"
	"github.com/abrezinsky/dinnerroulette/internal/config"
	"github.com/abrezinsky/dinnerroulette/internal/logger"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	bold      = "\033[1m"
)

var (
	version = "dev"
)

// showBanner prints the logo and, unless skipped, spins a little wheel
// through the default categories
func showBanner(categories []string, skipSpin bool) {
	width := 46
	border := strings.Repeat("═", width)

	logo := []string{
		"   ___  _                     ",
		"  |   \\(_)_ _  _ _  ___ _ _   ",
		"  | |) | | ' \\| ' \\/ -_) '_|  ",
		"  |___/|_|_||_|_||_\\___|_|    ",
		"          R O U L E T T E     ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s%-*s%s║%s\n", cyan, yellow, width, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	if skipSpin || len(categories) == 0 {
		fmt.Print("\n")
		return
	}

	frames := 12 + rand.IntN(len(categories))
	for i := 0; i < frames; i++ {
		label := categories[i%len(categories)]
		fmt.Printf("%s  %s▶ %s%s\r", clearLine, cyan, label, reset)
		time.Sleep(time.Duration(40+i*10) * time.Millisecond)
	}
	fmt.Printf("%s  %s▶ %s%s%s\n\n", clearLine, green, bold, categories[(frames-1)%len(categories)], reset)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	next := logger.NextLevel(appLog.GetLevel())
	appLog.SetLevel(next)
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sa%s      - Open the app in browser\n", cyan, reset)
	fmt.Printf("    %sb%s      - Write a backup now\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	configPath := flag.String("config", "", "Path to YAML config (default: CONFIG_PATH or ./local.yaml)")
	logLevel := flag.String("loglevel", "", "Log level override (debug, info, warn, error)")
	openBrowser := flag.Bool("open", false, "Open the app in a browser once started")
	noAnimate := flag.Bool("noanimate", false, "Show logo only, skip the spin animation")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Dinner Roulette - pick where the household eats tonight

Usage:
  dinnerroulette [options]

Options:
  -config string   Path to YAML config (default: CONFIG_PATH or ./local.yaml)
  -loglevel str    Log level override: debug, info, warn, error
  -open            Open the app in a browser once started
  -noanimate       Show logo only, skip the spin animation
  -nokeyboard      Disable keyboard shortcuts
  -version         Show version and exit
  -help            Show this help message

Every setting can also come from the environment, e.g. HTTP_PORT,
STORE_BACKEND, REDIS_URL, SQLITE_PATH, GOOGLE_PLACES_API_KEY.

Keyboard Shortcuts (when enabled):
  a                Open the app in browser
  b                Write a backup now
  h                Toggle HTTP request logging
  l                Cycle log level (debug → info → warn → error)
  q                Quit server
  ?                Show keyboard help

Examples:
  dinnerroulette                                  # Redis on localhost, port 8000
  STORE_BACKEND=sqlite dinnerroulette             # Single-file store, no Redis
  dinnerroulette -config /etc/dinnerroulette.yaml

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("dinnerroulette %s\n", version)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	showBanner(cfg.Categories.Defaults, *noAnimate)

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.Log.Level))

	a, err := app.New(cfg, appLog)
	if err != nil {
		appLog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(ctx)
	}()

	appURL := a.BaseURL()
	appLog.Info("Open on any phone on the network", "url", appURL)

	if *openBrowser {
		if err := browser.Open(appURL); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	if !*noKeyboard {
		printKeyboardHelp()
		restore := listenForKeyboard(ctx, &console{
			appURL: appURL,
			log:    appLog,
			backup: a.Backup,
			quit:   stop,
		})
		defer restore()
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	if err := <-serverErr; err != nil {
		appLog.Error("Server stopped", "error", err)
		exitCode = 1
	}
	return exitCode
}
