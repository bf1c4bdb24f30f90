package poster

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// wrapText greedily breaks text into lines no wider than maxWidth when
// measured with face. A single word wider than the limit gets its own
// line rather than being split mid-word.
func wrapText(text string, face font.Face, maxWidth fixed.Int26_6) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate) > maxWidth {
			lines = append(lines, current)
			current = word

			continue
		}

		current = candidate
	}

	return append(lines, current)
}

// visualOrder reorders a logical-order line into visual order using
// the Unicode bidirectional algorithm, so right-to-left runs paint
// correctly with a left-to-right drawer.
func visualOrder(line string) string {
	var p bidi.Paragraph
	p.SetString(line)

	ordering, err := p.Order()
	if err != nil {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))

	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)

		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			text = bidi.ReverseString(text)
		}

		b.WriteString(text)
	}

	return b.String()
}
