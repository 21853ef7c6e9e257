package catalog

import (
	"fmt"
	"math/rand/v2"
)

// StatRange e' l'intervallo chiuso delle statistiche per una fascia.
type StatRange struct {
	Min int
	Max int
}

// DefaultStatRanges sono gli intervalli usati dal catalogo incorporato.
func DefaultStatRanges() map[Rarity]StatRange {
	return map[Rarity]StatRange{
		Common:    {Min: 40, Max: 60},
		Rare:      {Min: 55, Max: 72},
		Epic:      {Min: 68, Max: 84},
		Legendary: {Min: 80, Max: 95},
	}
}

var (
	firstNames = []string{
		"Alessandro", "Marco", "Luca", "Matteo", "Davide",
		"Mikhail", "Daniil", "Maxim", "Artem", "Ivan",
		"Diego", "Rafael", "Joao", "Thiago", "Kenji",
		"Youssef", "Adnan", "Samuel", "Oliver", "Erik",
	}
	lastNames = []string{
		"Rossi", "Bianchi", "Esposito", "Romano", "Colombo",
		"Smirnov", "Ivanov", "Kuznetsov", "Sokolov", "Volkov",
		"Fernandes", "Silva", "Moreno", "Tanaka", "Haddad",
		"Okafor", "Lindqvist", "Murphy", "Novak", "Keller",
	}
)

// Generate crea nuove carte a partire da startID+1 con le quantita' richieste per fascia.
// Almeno una statistica di ogni carta e' portata al massimo della fascia.
func Generate(rng *rand.Rand, startID int, counts map[Rarity]int, ranges map[Rarity]StatRange) ([]Card, error) {
	var order []Rarity
	for _, r := range Rarities {
		n := counts[r]
		if n < 0 {
			return nil, fmt.Errorf("negative count for %s", r)
		}
		if n == 0 {
			continue
		}
		sr, ok := ranges[r]
		if !ok || sr.Min <= 0 || sr.Max < sr.Min {
			return nil, fmt.Errorf("invalid stat range for %s", r)
		}
		for i := 0; i < n; i++ {
			order = append(order, r)
		}
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	cards := make([]Card, 0, len(order))
	for i, r := range order {
		cards = append(cards, Card{
			ID:     startID + i + 1,
			Name:   generateName(rng),
			Rarity: r,
			Stats:  generateStats(rng, ranges[r]),
		})
	}
	return cards, nil
}

func generateName(rng *rand.Rand) string {
	return firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))]
}

func generateStats(rng *rand.Rand, sr StatRange) Stats {
	roll := func() int { return sr.Min + rng.IntN(sr.Max-sr.Min+1) }
	s := Stats{Speed: roll(), Mentality: roll(), Finishing: roll(), Defense: roll()}
	switch rng.IntN(4) {
	case 0:
		s.Speed = sr.Max
	case 1:
		s.Mentality = sr.Max
	case 2:
		s.Finishing = sr.Max
	default:
		s.Defense = sr.Max
	}
	return s
}
