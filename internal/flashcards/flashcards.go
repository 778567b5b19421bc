// Package flashcards turns extracted document text into question/answer
// pairs with a few sentence heuristics.
package flashcards

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Card is a single question/answer pair.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Options struct {
	MaxCards int
	MinWords int
}

const (
	defaultMaxCards = 10
	defaultMinWords = 5
	// topicWords is how many leading words of a chunk name its topic.
	topicWords = 6
	// maxSubjectWords bounds the X in "X is Y".
	maxSubjectWords = 8
)

var definition = regexp.MustCompile(`(?i)^(.+?)\s+(is|are|was|were|means|refers to)\s+(.+)$`)

// pronoun subjects make useless questions ("What is it?").
var pronouns = map[string]bool{
	"it": true, "this": true, "that": true, "these": true, "those": true,
	"there": true, "he": true, "she": true, "they": true, "we": true,
	"which": true, "what": true, "here": true,
}

// Generate builds at most opts.MaxCards cards from text.
func Generate(text string, opts Options) []Card {
	if opts.MaxCards <= 0 {
		opts.MaxCards = defaultMaxCards
	}
	if opts.MinWords <= 0 {
		opts.MinWords = defaultMinWords
	}

	var (
		cards   []Card
		pending []string
	)
	flush := func() {
		if len(pending) == 0 || len(cards) >= opts.MaxCards {
			pending = nil
			return
		}
		chunk := strings.Join(pending, " ")
		cards = append(cards, Card{
			Question: fmt.Sprintf("What does the text say about %q?", topic(chunk)),
			Answer:   chunk,
		})
		pending = nil
	}

	for _, s := range Sentences(text) {
		if len(cards) >= opts.MaxCards {
			break
		}
		if len(strings.Fields(s)) < opts.MinWords {
			continue
		}
		if c, ok := define(s); ok {
			cards = append(cards, c)
			continue
		}
		pending = append(pending, s)
		if len(pending) == 2 {
			flush()
		}
	}
	flush()
	return cards
}

func define(sentence string) (Card, bool) {
	m := definition.FindStringSubmatch(sentence)
	if m == nil {
		return Card{}, false
	}
	subject := strings.TrimSpace(m[1])
	words := strings.Fields(subject)
	if len(words) == 0 || len(words) > maxSubjectWords || pronouns[strings.ToLower(words[0])] {
		return Card{}, false
	}
	answer := strings.TrimSpace(m[3])
	if answer == "" {
		return Card{}, false
	}
	return Card{
		Question: "What is " + strings.TrimRight(subject, ",;:") + "?",
		Answer:   upperFirst(answer),
	}, true
}

// Sentences normalises whitespace and splits text after '.', '!' or '?'
// when followed by a space or the end of the text.
func Sentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func topic(chunk string) string {
	words := strings.Fields(chunk)
	if len(words) > topicWords {
		words = words[:topicWords]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,;:!?")
}

func upperFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
