// Package preload bundles demo sentences that form distinct semantic groups.
package preload

// Group is a named set of sentences about one topic.
type Group struct {
	Name      string
	Sentences []string
}

var groups = []Group{
	{"Animals", []string{
		"The dog chased the ball across the park.",
		"A lion rested in the shade of an acacia tree.",
		"Dolphins swim in pods and communicate with clicks.",
		"The eagle circled high above the valley.",
		"My cat sleeps on the windowsill every afternoon.",
	}},
	{"Food", []string{
		"Fresh pasta tastes best with a simple tomato sauce.",
		"She baked a chocolate cake for the party.",
		"Sushi is made with vinegared rice and raw fish.",
		"The bakery sells warm bread every morning.",
		"A crisp apple makes a good afternoon snack.",
	}},
	{"Weather", []string{
		"Heavy rain is expected throughout the weekend.",
		"The forecast calls for snow in the mountains tonight.",
		"A thunderstorm knocked out power across the city.",
		"It was sunny and warm with a light breeze.",
		"Thick fog delayed flights at the airport.",
	}},
	{"Technology", []string{
		"The compiler reported a type error on line twelve.",
		"We migrated the database to a new server cluster.",
		"The browser cached the page to load it faster.",
		"Encryption keeps messages private in transit.",
		"The network switch dropped packets under heavy load.",
	}},
	{"Sports", []string{
		"The striker scored in the final minute of the match.",
		"She won the tennis tournament in straight sets.",
		"The cycling race climbed three mountain passes.",
		"He swam the hundred metres in under a minute.",
		"The basketball team practiced free throws for an hour.",
	}},
	{"Music", []string{
		"The pianist played a quiet nocturne to close the concert.",
		"The band tuned their guitars before the show.",
		"Jazz musicians often improvise over chord changes.",
		"The orchestra rehearsed the symphony all week.",
		"A drummer keeps the tempo steady for the band.",
	}},
}

// Groups returns the demo sentences grouped by topic.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Sentences: append([]string(nil), g.Sentences...)}
	}
	return out
}

// Sentences returns every demo sentence in group order.
func Sentences() []string {
	var sentences []string
	for _, g := range groups {
		sentences = append(sentences, g.Sentences...)
	}
	return sentences
}
