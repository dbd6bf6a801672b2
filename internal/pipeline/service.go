// Package pipeline собирает презентацию из outline, структуры и содержимого слайдов.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/llm"
	"deck-server/internal/outline"
	"deck-server/internal/repository"
	"deck-server/internal/structure"
	"deck-server/internal/toc"
)

// Сообщения о ходе генерации.
const (
	MessageGeneratingOutlines = "Generating presentation outlines"
	MessageSelectingLayouts   = "Selecting layout for each slide"
	MessageGeneratingSlides   = "Generating slides"
	MessageFetchingAssets     = "Fetching assets for slides"
	MessageExporting          = "Exporting presentation"
)

// Значения запроса по умолчанию.
const (
	DefaultLanguage = "English"
	DefaultTemplate = "general"
	// MinSlidesWithTOC - меньше слайдов оглавление не имеет смысла.
	MinSlidesWithTOC = 3
)

// GenerateRequest - параметры генерации презентации.
// Files содержит уже извлечённый текст приложенных документов.
type GenerateRequest struct {
	Content                string
	SlidesMarkdown         []string
	Files                  []string
	NSlides                int
	Language               string
	Template               string
	Tone                   domain.Tone
	Verbosity              domain.Verbosity
	Instructions           string
	IncludeTitleSlide      bool
	IncludeTableOfContents bool
	ExportAs               domain.ExportFormat
}

// FromMarkdown показывает, что слайды переданы готовым markdown.
func (r GenerateRequest) FromMarkdown() bool {
	return len(r.SlidesMarkdown) > 0
}

// TemplateCatalog отдаёт шаблоны по имени.
type TemplateCatalog interface {
	Get(name string) (domain.LayoutTemplate, error)
}

// OutlineGenerator генерирует описания слайдов.
type OutlineGenerator interface {
	Generate(ctx context.Context, req outline.Request, onChunk llm.ChunkHandler) (domain.Outline, error)
}

// StructureAssigner выбирает слот шаблона для каждого описания.
type StructureAssigner interface {
	Assign(ctx context.Context, o domain.Outline, t domain.LayoutTemplate, hints structure.Hints) (domain.PresentationStructure, error)
}

// Exporter сохраняет готовую презентацию в файл.
type Exporter interface {
	Supports(format domain.ExportFormat) bool
	Export(ctx context.Context, p domain.Presentation, slides []domain.Slide, format domain.ExportFormat) (domain.PresentationPathAndEditPath, error)
}

// Notifier рассылает вебхуки. Notify не блокирует.
type Notifier interface {
	Notify(userID string, event domain.WebhookEvent, payload any)
}

// Deps - зависимости сервиса.
type Deps struct {
	Templates     TemplateCatalog
	Outlines      OutlineGenerator
	Structure     StructureAssigner
	Orchestrator  *Orchestrator
	Exporter      Exporter
	Presentations repository.PresentationRepository
	Slides        repository.SlideRepository
	Notifier      Notifier
}

// Service выполняет генерацию и перегенерацию презентаций.
type Service struct {
	Deps
	logger *zap.Logger
}

// NewService создаёт сервис генерации.
func NewService(deps Deps, logger *zap.Logger) *Service {
	return &Service{
		Deps:   deps,
		logger: logger.Named("PipelineService"),
	}
}

// FailedPayload - полезная нагрузка вебхука о неудачной генерации.
type FailedPayload struct {
	PresentationID string           `json:"presentation_id"`
	Error          *domain.JobError `json:"error"`
}

// Validate проверяет запрос и заполняет значения по умолчанию.
func (s *Service) Validate(req *GenerateRequest) error {
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && !req.FromMarkdown() && len(req.Files) == 0 {
		return fmt.Errorf("%w: content, slides_markdown or files are required", domain.ErrInvalidInput)
	}

	if req.FromMarkdown() {
		n := outline.FromMarkdown(req.SlidesMarkdown).Len()
		if n == 0 {
			return fmt.Errorf("%w: slides_markdown contains only empty slides", domain.ErrInvalidInput)
		}
		req.NSlides = n
		req.IncludeTableOfContents = false
	}
	if req.NSlides <= 0 {
		return fmt.Errorf("%w: n_slides must be greater than 0", domain.ErrInvalidInput)
	}
	if req.IncludeTableOfContents && req.NSlides < MinSlidesWithTOC {
		return fmt.Errorf("%w: n_slides must be at least %d to include a table of contents",
			domain.ErrInvalidInput, MinSlidesWithTOC)
	}

	if req.Language = strings.TrimSpace(req.Language); req.Language == "" {
		req.Language = DefaultLanguage
	}
	if req.Template = strings.TrimSpace(req.Template); req.Template == "" {
		req.Template = DefaultTemplate
	}
	if req.Tone == "" {
		req.Tone = domain.ToneDefault
	}
	if req.Verbosity == "" {
		req.Verbosity = domain.VerbosityStandard
	}
	if req.ExportAs == "" {
		req.ExportAs = domain.ExportFormatPPTX
	}
	if !req.Tone.IsValid() {
		return fmt.Errorf("%w: unknown tone %q", domain.ErrInvalidInput, req.Tone)
	}
	if !req.Verbosity.IsValid() {
		return fmt.Errorf("%w: unknown verbosity %q", domain.ErrInvalidInput, req.Verbosity)
	}
	if _, err := s.Templates.Get(req.Template); err != nil {
		return err
	}
	if !s.Exporter.Supports(req.ExportAs) {
		return fmt.Errorf("%w: export format %q is not available", domain.ErrInvalidInput, req.ExportAs)
	}
	return nil
}

// StreamOutlines генерирует описания слайдов, передавая фрагменты ответа в onChunk.
// Запрос должен быть проверен Validate.
func (s *Service) StreamOutlines(ctx context.Context, req GenerateRequest, onChunk llm.ChunkHandler) (domain.Outline, error) {
	if req.FromMarkdown() {
		o := outline.FromMarkdown(req.SlidesMarkdown)
		if onChunk != nil {
			for _, entry := range o.Slides {
				if err := onChunk(entry.Content); err != nil {
					return domain.Outline{}, err
				}
			}
		}
		return o, nil
	}
	return s.Outlines.Generate(ctx, outlineRequest(req), onChunk)
}

// Generate выполняет полный цикл генерации. Пустой presentationID заменяется новым.
// Результат или ошибка дополнительно отправляются вебхуком; отмена вебхук не вызывает.
func (s *Service) Generate(ctx context.Context, userID, presentationID string, req GenerateRequest, progress func(string)) (domain.PresentationPathAndEditPath, error) {
	if presentationID == "" {
		presentationID = uuid.NewString()
	}
	if progress == nil {
		progress = func(string) {}
	}
	log := s.logger.With(zap.String("presentation_id", presentationID), zap.String("user_id", userID))

	result, err := s.generate(ctx, log, userID, presentationID, req, progress)
	s.notify(ctx, log, userID, presentationID, result, err)
	return result, err
}

func (s *Service) generate(ctx context.Context, log *zap.Logger, userID, presentationID string, req GenerateRequest, progress func(string)) (domain.PresentationPathAndEditPath, error) {
	tmpl, err := s.Templates.Get(req.Template)
	if err != nil {
		return domain.PresentationPathAndEditPath{}, err
	}

	p := &domain.Presentation{
		ID:                     presentationID,
		UserID:                 userID,
		Content:                req.Content,
		NSlides:                req.NSlides,
		Language:               req.Language,
		Tone:                   req.Tone,
		Verbosity:              req.Verbosity,
		Instructions:           req.Instructions,
		IncludeTitleSlide:      req.IncludeTitleSlide,
		IncludeTableOfContents: req.IncludeTableOfContents,
		Layout:                 tmpl,
	}

	progress(MessageGeneratingOutlines)
	started := time.Now()
	var o domain.Outline
	if req.FromMarkdown() {
		o = outline.FromMarkdown(req.SlidesMarkdown)
	} else {
		planned := outlineRequest(req)
		o, err = s.Outlines.Generate(ctx, planned, nil)
		if err != nil {
			return domain.PresentationPathAndEditPath{}, fmt.Errorf("generate outlines: %w", err)
		}
	}
	observePhase(phaseOutline, started)
	if o.Len() == 0 {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("%w: no outlines were generated", domain.ErrInvalidInput)
	}

	progress(MessageSelectingLayouts)
	started = time.Now()
	st, err := s.Structure.Assign(ctx, o, tmpl, structure.Hints{
		Instructions: req.Instructions,
		FromMarkdown: req.FromMarkdown(),
	})
	if err != nil {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("assign layouts: %w", err)
	}
	if req.IncludeTableOfContents && !req.FromMarkdown() {
		var nTOC int
		o, st, nTOC = toc.Inject(o, st, tmpl, req.IncludeTitleSlide)
		log.Debug("Table of contents injected", zap.Int("toc_slides", nTOC), zap.Int("total_slides", o.Len()))
	}
	observePhase(phaseStructure, started)

	p.Outlines = o
	p.Structure = st
	p.Title = outline.Title(o)

	slides, err := s.buildSlides(ctx, p, progress)
	if err != nil {
		return domain.PresentationPathAndEditPath{}, err
	}

	started = time.Now()
	if err := s.Presentations.CreateWithSlides(ctx, p, slides); err != nil {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("save presentation: %w", err)
	}
	observePhase(phasePersist, started)

	result, err := s.export(ctx, p, slides, req.ExportAs, progress)
	if err != nil {
		s.discard(ctx, log, p.ID)
		return domain.PresentationPathAndEditPath{}, err
	}
	log.Info("Presentation generated", zap.Int("slides", len(slides)), zap.String("path", result.Path))
	return result, nil
}

// Regenerate заново генерирует содержимое слайдов по сохранённым описаниям и структуре.
// Старые слайды заменяются только после успешной генерации и экспорта всех новых.
func (s *Service) Regenerate(ctx context.Context, userID, presentationID string, format domain.ExportFormat, progress func(string)) (domain.PresentationPathAndEditPath, error) {
	if progress == nil {
		progress = func(string) {}
	}
	log := s.logger.With(zap.String("presentation_id", presentationID), zap.String("user_id", userID))

	result, err := s.regenerate(ctx, userID, presentationID, format, progress)
	s.notify(ctx, log, userID, presentationID, result, err)
	return result, err
}

func (s *Service) regenerate(ctx context.Context, userID, presentationID string, format domain.ExportFormat, progress func(string)) (domain.PresentationPathAndEditPath, error) {
	if format == "" {
		format = domain.ExportFormatPPTX
	}
	if !s.Exporter.Supports(format) {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("%w: export format %q is not available", domain.ErrInvalidInput, format)
	}
	p, err := s.owned(ctx, userID, presentationID)
	if err != nil {
		return domain.PresentationPathAndEditPath{}, err
	}

	slides, err := s.buildSlides(ctx, p, progress)
	if err != nil {
		return domain.PresentationPathAndEditPath{}, err
	}

	result, err := s.export(ctx, p, slides, format, progress)
	if err != nil {
		return domain.PresentationPathAndEditPath{}, err
	}

	started := time.Now()
	if err := s.Slides.ReplaceForPresentation(ctx, p.ID, slides); err != nil {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("replace slides: %w", err)
	}
	if err := s.Presentations.Update(ctx, p); err != nil {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("update presentation: %w", err)
	}
	observePhase(phasePersist, started)
	return result, nil
}

func (s *Service) buildSlides(ctx context.Context, p *domain.Presentation, progress func(string)) ([]domain.Slide, error) {
	progress(MessageGeneratingSlides)
	started := time.Now()
	slides, err := s.Orchestrator.Run(ctx, Plan{
		PresentationID: p.ID,
		Template:       p.Layout,
		Outline:        p.Outlines,
		Structure:      p.Structure,
		Language:       p.Language,
		Tone:           p.Tone,
		Verbosity:      p.Verbosity,
		Instructions:   p.Instructions,
	}, progress)
	if err != nil {
		return nil, fmt.Errorf("generate slides: %w", err)
	}
	observePhase(phaseSlides, started)
	return slides, nil
}

func (s *Service) export(ctx context.Context, p *domain.Presentation, slides []domain.Slide, format domain.ExportFormat, progress func(string)) (domain.PresentationPathAndEditPath, error) {
	progress(MessageExporting)
	started := time.Now()
	result, err := s.Exporter.Export(ctx, *p, slides, format)
	if err != nil {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("export presentation: %w", err)
	}
	observePhase(phaseExport, started)
	return result, nil
}

// discard удаляет недособранную презентацию, чтобы не оставлять частичный результат.
func (s *Service) discard(ctx context.Context, log *zap.Logger, presentationID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.Presentations.Delete(cleanupCtx, presentationID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn("Failed to discard incomplete presentation", zap.Error(err))
	}
}

// notify отправляет вебхук о результате. Если задачу отменили уже после
// последней проверки контекста, completed не отправляется.
func (s *Service) notify(ctx context.Context, log *zap.Logger, userID, presentationID string, result domain.PresentationPathAndEditPath, err error) {
	switch {
	case s.Notifier == nil:
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		log.Info("Generation cancelled, webhook skipped")
	case err == nil:
		s.Notifier.Notify(userID, domain.WebhookEventGenerationCompleted, result)
	default:
		log.Error("Presentation generation failed", zap.Error(err))
		s.Notifier.Notify(userID, domain.WebhookEventGenerationFailed, FailedPayload{
			PresentationID: presentationID,
			Error:          domain.NewJobError(err),
		})
	}
}

func outlineRequest(req GenerateRequest) outline.Request {
	return outline.Request{
		Content:           req.Content,
		NSlides:           toc.PlanOutlineCount(req.NSlides, req.IncludeTitleSlide, req.IncludeTableOfContents),
		Language:          req.Language,
		Tone:              req.Tone,
		Verbosity:         req.Verbosity,
		Instructions:      req.Instructions,
		IncludeTitleSlide: req.IncludeTitleSlide,
		AdditionalContext: strings.Join(req.Files, "\n\n"),
	}
}
