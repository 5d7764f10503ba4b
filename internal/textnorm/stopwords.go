package textnorm

// stopwords holds function words that carry no grading signal. Entries are
// listed in their normalized form (lowercase, no diacritics).
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"le", "la", "les", "un", "une", "des", "de", "du", "d",
		"a", "au", "aux", "et", "ou", "est", "sont", "etait", "etaient",
		"ete", "etre", "avoir", "ont", "avait", "dans", "sur", "pour",
		"par", "avec", "sans", "sous", "que", "qui", "quoi", "dont",
		"ne", "pas", "plus", "ce", "cette", "ces", "cet", "se", "sa",
		"son", "ses", "leur", "leurs", "il", "elle", "ils", "elles",
		"on", "nous", "vous", "je", "tu", "en", "y", "l", "s", "c",
		"mais", "donc", "or", "ni", "car", "si", "tres", "tout",
		"toute", "tous", "toutes", "comme", "aussi", "alors", "ainsi",
	} {
		stopwords[w] = struct{}{}
	}
}
