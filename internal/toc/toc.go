// Package toc вставляет слайды оглавления в план презентации.
package toc

import (
	"fmt"
	"strings"
	"unicode"

	"deck-server/internal/domain"
)

const (
	// EntriesPerSlide - сколько пунктов помещается на один слайд оглавления.
	EntriesPerSlide = 10
	previewRunes    = 100
	header          = "Table of Contents\n\n"
)

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func titleOffset(includeTitle bool, n int) int {
	if includeTitle && n > 0 {
		return 1
	}
	return 0
}

// PlanOutlineCount возвращает, сколько outline нужно запросить у модели,
// чтобы вместе со слайдами оглавления получилось nSlides слайдов.
// Для некоторых nSlides точного ответа нет, тогда колода выходит на слайд короче.
func PlanOutlineCount(nSlides int, includeTitle, includeTOC bool) int {
	if !includeTOC || nSlides <= 0 {
		return nSlides
	}
	for m := nSlides; m > 1; m-- {
		if deckSize(m, includeTitle) <= nSlides {
			return m
		}
	}
	return 1
}

// deckSize - размер колоды из m outline вместе с оглавлением.
func deckSize(m int, includeTitle bool) int {
	return m + ceilDiv(m-titleOffset(includeTitle, m), EntriesPerSlide)
}

var (
	tocTokens  = []string{"toc", "agenda", "contents"}
	listTokens = []string{"list", "bullet"}
)

// SelectTOCLayout возвращает индекс слота, подходящего для оглавления, или -1.
func SelectTOCLayout(template domain.LayoutTemplate) int {
	for i, l := range template.Slides {
		text := layoutText(l)
		if strings.Contains(text, "table of contents") {
			return i
		}
		for _, w := range words(text) {
			for _, tok := range tocTokens {
				if w == tok {
					return i
				}
			}
		}
	}
	for i, l := range template.Slides {
		text := layoutText(l)
		for _, tok := range listTokens {
			if strings.Contains(text, tok) {
				return i
			}
		}
	}
	return -1
}

// layoutText не учитывает префикс ID с именем шаблона.
func layoutText(l domain.SlideLayout) string {
	id := l.ID
	if i := strings.LastIndex(id, ":"); i >= 0 {
		id = id[i+1:]
	}
	return strings.ToLower(id + " " + l.Name + " " + l.Description)
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Inject вставляет слайды оглавления сразу после титульного слайда.
// Возвращает новые outline и структуру, а также число вставленных слайдов.
// Входные значения не изменяются.
func Inject(outline domain.Outline, structure domain.PresentationStructure, template domain.LayoutTemplate, includeTitle bool) (domain.Outline, domain.PresentationStructure, int) {
	outSlides := append([]domain.OutlineEntry(nil), outline.Slides...)
	outStructure := append([]int(nil), structure.Slides...)

	layoutIdx := SelectTOCLayout(template)
	offset := titleOffset(includeTitle, len(outSlides))
	content := len(outSlides) - offset
	if layoutIdx < 0 || content <= 0 {
		return domain.Outline{Slides: outSlides}, domain.PresentationStructure{Slides: outStructure}, 0
	}

	nTOC := ceilDiv(content, EntriesPerSlide)
	tocEntries := make([]domain.OutlineEntry, nTOC)
	tocLayouts := make([]int, nTOC)
	for i := 0; i < nTOC; i++ {
		var b strings.Builder
		b.WriteString(header)
		from := i * EntriesPerSlide
		to := min(from+EntriesPerSlide, content)
		for j := from; j < to; j++ {
			original := j + offset
			page := original + nTOC + 1
			fmt.Fprintf(&b, "Slide page number: %d\n Slide Content: %s\n\n", page, preview(outSlides[original].Content))
		}
		tocEntries[i] = domain.OutlineEntry{Content: b.String()}
		tocLayouts[i] = layoutIdx
	}

	slides := make([]domain.OutlineEntry, 0, len(outSlides)+nTOC)
	slides = append(slides, outSlides[:offset]...)
	slides = append(slides, tocEntries...)
	slides = append(slides, outSlides[offset:]...)

	var indices []int
	if len(outStructure) >= offset {
		indices = make([]int, 0, len(outStructure)+nTOC)
		indices = append(indices, outStructure[:offset]...)
		indices = append(indices, tocLayouts...)
		indices = append(indices, outStructure[offset:]...)
	}

	return domain.Outline{Slides: slides}, domain.PresentationStructure{Slides: indices}, nTOC
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewRunes {
		return string(r[:previewRunes])
	}
	return s
}
