package roster

import (
	"math"

	"Futbotchi/service/club/internal/catalog"
)

// headcountBonus premia chi schiera la formazione completa.
var headcountBonus = map[int]float64{
	1: 1.00,
	2: 1.10,
	3: 1.25,
}

// Pesi del rating: il tiro conta di piu' perche' guida i gol.
const (
	weightSpeed     = 0.25
	weightMentality = 0.20
	weightFinishing = 0.35
	weightDefense   = 0.20
)

// TeamPower somma le statistiche dei soli titolari e applica il bonus per numero di titolari.
func TeamPower(r *Roster) catalog.Stats {
	var sum catalog.Stats
	active := r.Active()
	for _, card := range active {
		sum = sum.Add(card.Stats)
	}
	mult, ok := headcountBonus[len(active)]
	if !ok {
		return sum
	}
	scale := func(v int) int { return int(math.Round(float64(v) * mult)) }
	return catalog.Stats{
		Speed:     scale(sum.Speed),
		Mentality: scale(sum.Mentality),
		Finishing: scale(sum.Finishing),
		Defense:   scale(sum.Defense),
	}
}

// TeamRating e' la somma pesata della forza, arrotondata a un decimale.
func TeamRating(p catalog.Stats) float64 {
	rating := float64(p.Speed)*weightSpeed +
		float64(p.Mentality)*weightMentality +
		float64(p.Finishing)*weightFinishing +
		float64(p.Defense)*weightDefense
	return math.Round(rating*10) / 10
}

// PowerChange confronta la forza prima e dopo un cambio di formazione.
type PowerChange struct {
	Before       catalog.Stats `json:"before"`
	After        catalog.Stats `json:"after"`
	Delta        catalog.Stats `json:"delta"`
	RatingBefore float64       `json:"rating_before"`
	RatingAfter  float64       `json:"rating_after"`
	RatingDelta  float64       `json:"rating_delta"`
}

// ComparePower calcola le differenze per statistica e di rating.
func ComparePower(before, after catalog.Stats) PowerChange {
	rb, ra := TeamRating(before), TeamRating(after)
	return PowerChange{
		Before: before,
		After:  after,
		Delta: catalog.Stats{
			Speed:     after.Speed - before.Speed,
			Mentality: after.Mentality - before.Mentality,
			Finishing: after.Finishing - before.Finishing,
			Defense:   after.Defense - before.Defense,
		},
		RatingBefore: rb,
		RatingAfter:  ra,
		RatingDelta:  math.Round((ra-rb)*10) / 10,
	}
}
