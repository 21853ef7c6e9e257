package roster

import "sort"

// Entry lega una rosa al suo utente.
type Entry struct {
	UserID string
	Roster *Roster
}

// Rank ordina per punti decrescenti; a parita' vince l'user_id minore.
// Non modifica lo slice in ingresso.
func Rank(entries []Entry) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Roster.Points != ranked[j].Roster.Points {
			return ranked[i].Roster.Points > ranked[j].Roster.Points
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	return ranked
}
