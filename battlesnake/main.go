// Package main serves the hunting engine over the Battlesnake webhook API.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/logging"
)

func main() {
	defaults := arbiter.DefaultConfig()

	listen := flag.String("listen", defaultListen(), "HTTP listen address")
	logLevel := flag.String("log-level", getEnvOrDefault("LOG_LEVEL", "info"), "debug, info, warn or error")
	logPretty := flag.Bool("log-pretty", getEnvBoolOrDefault("LOG_PRETTY", false), "Indent JSON log lines")
	fallback := flag.String("fallback", getEnvOrDefault("FALLBACK", defaults.Fallback.String()), "Move when nothing is safe")
	huntMinSpace := flag.Int("hunt-min-space", getEnvIntOrDefault("HUNT_MIN_SPACE", defaults.HuntMinSpace), "Reachable cells a hunt move must keep")
	foodMinSpace := flag.Int("food-min-space", getEnvIntOrDefault("FOOD_MIN_SPACE", defaults.FoodMinSpace), "Reachable cells a food move must keep")
	strategies := flag.String("strategies", getEnvOrDefault("STRATEGIES", strings.Join(defaults.Strategies, ",")), "Ordered strategy names")
	allowTails := flag.Bool("allow-tails", getEnvBoolOrDefault("ALLOW_TAILS", defaults.AllowTails), "Treat vacating enemy tails as safe")
	author := flag.String("author", getEnvOrDefault("AUTHOR", "snekhunt"), "Battlesnake author")
	color := flag.String("color", getEnvOrDefault("COLOR", "#c0392b"), "Battlesnake color")
	head := flag.String("head", getEnvOrDefault("HEAD", "fang"), "Battlesnake head")
	tail := flag.String("tail", getEnvOrDefault("TAIL", "sharp"), "Battlesnake tail")

	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("log level: %v", err)
	}
	logger := logging.New(os.Stdout, level, *logPretty)

	cfg := defaults
	if cfg.Fallback, err = game.ParseDirection(*fallback); err != nil {
		log.Fatalf("fallback: %v", err)
	}
	cfg.HuntMinSpace = *huntMinSpace
	cfg.FoodMinSpace = *foodMinSpace
	cfg.AllowTails = *allowTails
	cfg.Strategies = splitList(*strategies)

	a, err := arbiter.New(cfg, logger)
	if err != nil {
		log.Fatalf("arbiter: %v", err)
	}

	server := NewServer(a, BattlesnakeInfoResponse{
		Author:  *author,
		Color:   *color,
		Head:    *head,
		Tail:    *tail,
		Version: "1.0.0",
	}, logger)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("Battlesnake server listening on http://%s (strategies: %s)", *listen, strings.Join(cfg.Strategies, ","))
	log.Fatal(srv.ListenAndServe())
}

// defaultListen prefers LISTEN, then PORT as set by most hosts.
func defaultListen() string {
	if v := os.Getenv("LISTEN"); v != "" {
		return v
	}
	if v := os.Getenv("PORT"); v != "" {
		return ":" + v
	}
	return ":8000"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
