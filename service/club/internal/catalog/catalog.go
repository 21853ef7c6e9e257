// Package catalog contiene il pool statico di carte acquistabili e le estrazioni per rarita'.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidCatalog raggruppa gli errori di integrita' del catalogo.
var ErrInvalidCatalog = errors.New("catalog: invalid")

//go:embed players.json
var defaultCatalog []byte

// Catalog e' il pool di carte, raggruppato per rarita'.
type Catalog struct {
	cards    []Card
	chances  map[Rarity]int
	byRarity map[Rarity][]Card
	byID     map[int]Card
}

// file mappa il formato su disco (players + rarity_chances in percentuale).
type file struct {
	Players       []Card         `json:"players"`
	RarityChances map[Rarity]int `json:"rarity_chances"`
}

// New costruisce e valida un catalogo a partire dalle carte.
func New(cards []Card, chances map[Rarity]int) (*Catalog, error) {
	c := &Catalog{
		cards:    append([]Card(nil), cards...),
		chances:  chances,
		byRarity: make(map[Rarity][]Card),
		byID:     make(map[int]Card, len(cards)),
	}
	for _, card := range c.cards {
		c.byRarity[card.Rarity] = append(c.byRarity[card.Rarity], card)
		c.byID[card.ID] = card
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse legge un catalogo in formato JSON.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	return New(f.Players, f.RarityChances)
}

// Load legge il catalogo da file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Default ritorna il catalogo incorporato nel binario.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Validate verifica id univoci, nomi, statistiche e che ogni fascia abbia carte.
func (c *Catalog) Validate() error {
	if len(c.cards) == 0 {
		return fmt.Errorf("%w: no players", ErrInvalidCatalog)
	}
	seen := make(map[int]struct{}, len(c.cards))
	for _, card := range c.cards {
		if card.ID <= 0 {
			return fmt.Errorf("%w: card id %d must be positive", ErrInvalidCatalog, card.ID)
		}
		if _, dup := seen[card.ID]; dup {
			return fmt.Errorf("%w: duplicate card id %d", ErrInvalidCatalog, card.ID)
		}
		seen[card.ID] = struct{}{}
		if strings.TrimSpace(card.Name) == "" {
			return fmt.Errorf("%w: card %d has no name", ErrInvalidCatalog, card.ID)
		}
		if !card.Rarity.Valid() {
			return fmt.Errorf("%w: card %d has rarity %q", ErrInvalidCatalog, card.ID, card.Rarity)
		}
		if !card.Stats.Positive() {
			return fmt.Errorf("%w: card %d has non-positive stats", ErrInvalidCatalog, card.ID)
		}
	}
	for rarity, pct := range c.chances {
		if pct > 0 && len(c.byRarity[rarity]) == 0 {
			return fmt.Errorf("%w: rarity %s has chance %d%% but no cards", ErrInvalidCatalog, rarity, pct)
		}
	}
	return nil
}

// CheckWeights verifica che ogni fascia con peso positivo abbia almeno una carta.
func (c *Catalog) CheckWeights(w Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	for _, r := range Rarities {
		if w[r] > 0 && len(c.byRarity[r]) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyPool, r)
		}
	}
	return nil
}

// Cards ritorna una copia di tutte le carte.
func (c *Catalog) Cards() []Card {
	return append([]Card(nil), c.cards...)
}

// ByRarity ritorna una copia delle carte della fascia.
func (c *Catalog) ByRarity(r Rarity) []Card {
	return append([]Card(nil), c.byRarity[r]...)
}

// Card cerca una carta per id.
func (c *Catalog) Card(id int) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Weights converte le percentuali del file in pesi; senza tabella usa i default.
func (c *Catalog) Weights() Weights {
	if len(c.chances) == 0 {
		return DefaultWeights()
	}
	var total int
	for _, pct := range c.chances {
		total += pct
	}
	if total <= 0 {
		return DefaultWeights()
	}
	w := make(Weights, len(c.chances))
	for r, pct := range c.chances {
		w[r] = float64(pct) / float64(total)
	}
	return w
}

// MaxID e' l'id piu' alto presente, usato dal generatore.
func (c *Catalog) MaxID() int {
	max := 0
	for _, card := range c.cards {
		if card.ID > max {
			max = card.ID
		}
	}
	return max
}

// Marshal serializza il catalogo nel formato su disco.
func (c *Catalog) Marshal() ([]byte, error) {
	return json.MarshalIndent(file{Players: c.cards, RarityChances: c.chances}, "", "    ")
}

// Extend ritorna un nuovo catalogo con le carte aggiunte e la stessa tabella di probabilita'.
func (c *Catalog) Extend(cards []Card) (*Catalog, error) {
	all := make([]Card, 0, len(c.cards)+len(cards))
	all = append(all, c.cards...)
	all = append(all, cards...)
	return New(all, c.chances)
}
