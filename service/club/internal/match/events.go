package match

// eventTemplate e' una voce della tabella cronaca; %s e' il nome del giocatore.
type eventTemplate struct {
	Text string
	Goal bool
}

var positiveEvents = []eventTemplate{
	{Text: "%s curls one into the top corner!", Goal: true},
	{Text: "%s slots it home after a quick one-two.", Goal: true},
	{Text: "%s heads in from the corner kick!", Goal: true},
	{Text: "%s wins the ball back in midfield.", Goal: false},
	{Text: "%s beats two defenders but the keeper saves.", Goal: false},
	{Text: "%s threads a perfect pass through the lines.", Goal: false},
}

var negativeEvents = []eventTemplate{
	{Text: "%s misses an open goal."},
	{Text: "%s is booked for a late tackle."},
	{Text: "%s loses the ball on the edge of the box."},
	{Text: "%s hits the post."},
}
