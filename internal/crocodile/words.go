package crocodile

import "math/rand"

// WordSource supplies the word choices offered to a drawer. Word-list
// content and selection policy live outside the engine; deployments plug
// in their own source.
type WordSource interface {
	Choices(n int) []string
}

// StaticWords is a WordSource over a fixed list, sampled without
// replacement per call. It exists so the engine can run (and be tested)
// without an external list wired in.
type StaticWords struct {
	words []string
	rng   *rand.Rand
}

func NewStaticWords(words []string, seed int64) *StaticWords {
	return &StaticWords{
		words: append([]string{}, words...),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (w *StaticWords) Choices(n int) []string {
	if n > len(w.words) {
		n = len(w.words)
	}
	idx := w.rng.Perm(len(w.words))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, w.words[i])
	}
	return out
}
