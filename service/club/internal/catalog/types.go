package catalog

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rarity e' la fascia di qualita' di una carta.
type Rarity string

const (
	Common    Rarity = "common"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

// Rarities elenca le fasce in ordine crescente; l'ordine e' quello usato dalle estrazioni.
var Rarities = []Rarity{Common, Rare, Epic, Legendary}

// Valid indica se la rarita' e' una delle fasce note.
func (r Rarity) Valid() bool {
	switch r {
	case Common, Rare, Epic, Legendary:
		return true
	}
	return false
}

// Label ritorna il nome leggibile (es. "Legendary").
func (r Rarity) Label() string {
	return cases.Title(language.English).String(string(r))
}

// ParseRarity converte una stringa in Rarity.
func ParseRarity(value string) (Rarity, error) {
	r := Rarity(value)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rarity %q", value)
	}
	return r, nil
}

// Stats e' il blocco statistiche di una carta (o la forza aggregata di una squadra).
type Stats struct {
	Speed     int `json:"speed"`
	Mentality int `json:"mentality"`
	Finishing int `json:"finishing"`
	Defense   int `json:"defense"`
}

// Add somma due blocchi statistiche.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Speed:     s.Speed + o.Speed,
		Mentality: s.Mentality + o.Mentality,
		Finishing: s.Finishing + o.Finishing,
		Defense:   s.Defense + o.Defense,
	}
}

// Mean e' la media delle quattro statistiche.
func (s Stats) Mean() float64 {
	return float64(s.Speed+s.Mentality+s.Finishing+s.Defense) / 4
}

// Positive indica se tutte le statistiche sono > 0.
func (s Stats) Positive() bool {
	return s.Speed > 0 && s.Mentality > 0 && s.Finishing > 0 && s.Defense > 0
}

// Card e' una voce immutabile del catalogo; nelle rose viene copiata per valore.
type Card struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
	Stats  Stats  `json:"stats"`
}

// Weights associa a ogni rarita' la probabilita' di estrazione (somma ~1).
type Weights map[Rarity]float64

// DefaultWeights e' la tabella standard 60/25/10/5.
func DefaultWeights() Weights {
	return Weights{
		Common:    0.60,
		Rare:      0.25,
		Epic:      0.10,
		Legendary: 0.05,
	}
}
