package export

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"deck-server/internal/domain"
)

var (
	titleColor = &props.Color{Red: 30, Green: 41, Blue: 59}
	noteColor  = &props.Color{Red: 100, Green: 116, Blue: 139}
)

// PDFRenderer рисует по странице на слайд: заголовок, текст и заметку докладчика.
type PDFRenderer struct{}

// Render строит PDF документ.
func (PDFRenderer) Render(ctx context.Context, deck Deck) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{Family: fontfamily.Arial, Size: 11}).
		Build()

	m := maroto.New(cfg)
	for _, slide := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddPages(slidePage(deck.Presentation, slide))
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return document.GetBytes(), nil
}

func slidePage(p domain.Presentation, slide domain.Slide) core.Page {
	st := extractText(slide.Content)
	title := st.Title
	if title == "" && slide.Index == 0 {
		title = p.Title
	}

	pg := page.New()
	if title != "" {
		pg.Add(row.New(16).Add(
			col.New(12).Add(text.New(title, props.Text{
				Family: fontfamily.Arial,
				Size:   18,
				Style:  fontstyle.Bold,
				Align:  align.Left,
				Color:  titleColor,
			})),
		))
	}
	for _, line := range st.Lines {
		pg.Add(row.New().Add(col.New(12).Add(text.New(line, props.Text{Size: 11, Top: 1}))))
	}
	if slide.SpeakerNote != "" {
		pg.Add(row.New(6))
		pg.Add(row.New().Add(col.New(12).Add(text.New(slide.SpeakerNote, props.Text{
			Size:  9,
			Style: fontstyle.Italic,
			Color: noteColor,
		}))))
	}
	return pg
}
