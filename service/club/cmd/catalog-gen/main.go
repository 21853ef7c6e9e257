package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"Futbotchi/service/club/internal/app"
	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/random"
)

// Aggiunge carte generate a un catalogo e scrive il risultato su file.
func main() {
	logger := app.NewLogger()

	in := flag.String("in", "", "catalogo di partenza (vuoto = incorporato)")
	out := flag.String("out", "players.json", "file di output")
	counts := flag.String("counts", "common=10,rare=5,epic=3,legendary=1", "carte da generare per fascia")
	seed := flag.Uint64("seed", 0, "seed del generatore (0 = casuale)")
	flag.Parse()

	if err := run(*in, *out, *counts, *seed, logger); err != nil {
		logger.Error("generazione fallita", "error", err)
		os.Exit(1)
	}
}

func run(in, out, rawCounts string, seed uint64, logger *slog.Logger) error {
	// 1) Catalogo di partenza.
	base := catalog.Default()
	if in != "" {
		loaded, err := catalog.Load(in)
		if err != nil {
			return err
		}
		base = loaded
	}

	counts, err := parseCounts(rawCounts)
	if err != nil {
		return err
	}

	// 2) Generatore.
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}
	rng := random.New(seed)

	// 3) Nuove carte dopo l'id piu' alto.
	cards, err := catalog.Generate(rng, base.MaxID(), counts, catalog.DefaultStatRanges())
	if err != nil {
		return err
	}
	grown, err := base.Extend(cards)
	if err != nil {
		return err
	}

	// 4) Scrittura.
	data, err := grown.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("catalogo scritto", "path", out, "added", len(cards), "total", len(grown.Cards()), "seed", seed)
	return nil
}

// parseCounts legge "common=10,rare=5".
func parseCounts(raw string) (map[catalog.Rarity]int, error) {
	counts := make(map[catalog.Rarity]int)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid count %q", part)
		}
		rarity, err := catalog.ParseRarity(name)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid count %q", part)
		}
		counts[rarity] = n
	}
	return counts, nil
}
