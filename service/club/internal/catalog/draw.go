package catalog

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrEmptyPool indica una fascia senza carte: con un catalogo valido non deve mai succedere.
var ErrEmptyPool = errors.New("catalog: no cards for rarity")

// weightTolerance e' lo scarto ammesso sulla somma dei pesi.
const weightTolerance = 0.01

// Validate controlla che i pesi siano non negativi, su rarita' note e con somma ~1.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return errors.New("rarity weights are empty")
	}
	var total float64
	for rarity, weight := range w {
		if !rarity.Valid() {
			return fmt.Errorf("unknown rarity %q in weights", rarity)
		}
		if weight < 0 || math.IsNaN(weight) {
			return fmt.Errorf("weight for %s must be >= 0", rarity)
		}
		total += weight
	}
	if math.Abs(total-1) > weightTolerance {
		return fmt.Errorf("rarity weights sum to %.3f, expected 1", total)
	}
	return nil
}

// DrawRarity estrae una rarita' con una singola estrazione pesata.
func DrawRarity(rng *rand.Rand, weights Weights) Rarity {
	var total float64
	for _, r := range Rarities {
		total += weights[r]
	}
	roll := rng.Float64() * total
	last := Common
	for _, r := range Rarities {
		weight := weights[r]
		if weight <= 0 {
			continue
		}
		last = r
		if roll < weight {
			return r
		}
		roll -= weight
	}
	// Solo per arrotondamenti sull'ultima fascia.
	return last
}

// DrawCard sceglie uniformemente una carta della rarita' data.
func (c *Catalog) DrawCard(rng *rand.Rand, rarity Rarity) (Card, error) {
	pool := c.byRarity[rarity]
	if len(pool) == 0 {
		return Card{}, fmt.Errorf("%w: %s", ErrEmptyPool, rarity)
	}
	return pool[rng.IntN(len(pool))], nil
}

// Draw estrae prima la rarita' e poi la carta.
func (c *Catalog) Draw(rng *rand.Rand, weights Weights) (Card, error) {
	return c.DrawCard(rng, DrawRarity(rng, weights))
}

// DrawExcluding estrae come Draw ma salta le carte per cui owned ritorna true.
// Se la fascia estratta e' esaurita ripiega sulle altre fasce con peso positivo, nell'ordine di Rarities.
func (c *Catalog) DrawExcluding(rng *rand.Rand, weights Weights, owned func(id int) bool) (Card, error) {
	drawn := DrawRarity(rng, weights)
	if pool := c.available(drawn, owned); len(pool) > 0 {
		return pool[rng.IntN(len(pool))], nil
	}
	for _, r := range Rarities {
		if r == drawn || weights[r] <= 0 {
			continue
		}
		if pool := c.available(r, owned); len(pool) > 0 {
			return pool[rng.IntN(len(pool))], nil
		}
	}
	return Card{}, fmt.Errorf("%w: every card is already owned", ErrEmptyPool)
}

func (c *Catalog) available(r Rarity, owned func(id int) bool) []Card {
	var pool []Card
	for _, card := range c.byRarity[r] {
		if owned == nil || !owned(card.ID) {
			pool = append(pool, card)
		}
	}
	return pool
}
