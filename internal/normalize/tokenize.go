package normalize

import (
	"strings"
	"unicode"
)

// CountTokens counts the words of text that are purely alphabetic and not
// stop words, compared case-insensitively.
func CountTokens(text string, stopWords map[string]struct{}) int {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})

	n := 0
	for _, f := range fields {
		if !isAlpha(f) {
			continue
		}
		if _, stop := stopWords[strings.ToLower(f)]; stop {
			continue
		}
		n++
	}
	return n
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// StopWords returns the stop-word set for a language name. Unknown names and
// "none" yield an empty set.
func StopWords(language string) map[string]struct{} {
	var words []string
	switch strings.ToLower(language) {
	case "spanish", "es":
		words = spanishStopWords
	case "english", "en":
		words = englishStopWords
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var spanishStopWords = strings.Fields(`
de la que el en y a los del se las por un para con no una su al lo como más
pero sus le ya o este sí porque esta entre cuando muy sin sobre también me hasta
hay donde quien desde todo nos durante todos uno les ni contra otros ese eso ante
ellos e esto mí antes algunos qué unos yo otro otras otra él tanto esa estos mucho
quienes nada muchos cual poco ella estar estas algunas algo nosotros mi mis tú te
ti tu tus ellas nosotras vosotros vosotras os mío mía míos mías tuyo tuya tuyos
tuyas suyo suya suyos suyas nuestro nuestra nuestros nuestras vuestro vuestra
vuestros vuestras esos esas estoy estás está estamos estáis están esté estés
estemos estéis estén estaré estarás estará estaremos estaréis estarán estaba
estabas estábamos estabais estaban estuve estuvo estuvimos estuvieron he has ha
hemos habéis han haya hayas hayamos hayan había habías habíamos habían hubo soy
eres es somos sois son sea seas seamos sean será serán era eras éramos eran fue
fueron fui fuimos tengo tienes tiene tenemos tenéis tienen tenga tengan tenía
tenían tuvo tuvieron
`)

var englishStopWords = strings.Fields(`
i me my myself we our ours ourselves you your yours yourself yourselves he him
his himself she her hers herself it its itself they them their theirs themselves
what which who whom this that these those am is are was were be been being have
has had having do does did doing a an the and but if or because as until while of
at by for with about against between into through during before after above below
to from up down in out on off over under again further then once here there when
where why how all any both each few more most other some such no nor not only own
same so than too very s t can will just don should now
`)
