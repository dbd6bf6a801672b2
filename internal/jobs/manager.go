// Package jobs управляет асинхронными задачами генерации презентаций.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"deck-server/internal/domain"
)

// ErrShuttingDown - менеджер остановлен и не принимает задачи.
var ErrShuttingDown = errors.New("job manager is shutting down")

var (
	jobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_generation_jobs_total",
			Help: "Total number of finished generation jobs by final status.",
		},
		[]string{"status"},
	)
	jobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deck_generation_jobs_active",
		Help: "Number of pending or running generation jobs.",
	})
)

// Progress обновляет сообщение о ходе выполнения задачи.
type Progress func(message string)

// Func - тело задачи. Результат попадает в поле data задачи.
type Func func(ctx context.Context, progress Progress) (any, error)

// Callback вызывается асинхронно при каждом изменении задачи.
type Callback func(job domain.GenerationJob)

// Notifier доставляет обновления задач владельцу (websocket).
type Notifier interface {
	SendToUser(userID, messageType string, payload any)
}

// Store - внешнее хранилище состояния задач.
type Store interface {
	Save(ctx context.Context, job domain.GenerationJob) error
	Get(ctx context.Context, id uuid.UUID) (domain.GenerationJob, error)
}

// Config - ограничения менеджера.
type Config struct {
	MaxActive int
}

type entry struct {
	job    domain.GenerationJob
	cancel context.CancelFunc
	// seq растёт с каждым изменением job, меняется под Manager.mu.
	seq uint64

	// pubMu упорядочивает сохранение и рассылку снимков одной задачи.
	pubMu     sync.Mutex
	published uint64
}

// Manager запускает задачи в горутинах и хранит их состояние.
// Каждый переход сохраняется в Store и отправляется владельцу через Notifier.
type Manager struct {
	mu        sync.RWMutex
	jobs      map[uuid.UUID]*entry
	callbacks map[uuid.UUID][]Callback
	maxActive int
	store     Store
	notifier  Notifier
	closed    bool
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewManager создаёт менеджер. store может быть nil.
func NewManager(cfg Config, store Store) *Manager {
	maxActive := cfg.MaxActive
	if maxActive <= 0 {
		maxActive = 10
	}
	return &Manager{
		jobs:      make(map[uuid.UUID]*entry),
		callbacks: make(map[uuid.UUID][]Callback),
		maxActive: maxActive,
		store:     store,
		now:       time.Now,
	}
}

// SetNotifier задаёт получателя обновлений задач.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// Submit регистрирует задачу в статусе pending и запускает её.
// Контекст задачи не зависит от ctx запроса, из ctx берётся только логгер.
func (m *Manager) Submit(ctx context.Context, userID, presentationID string, fn Func) (domain.GenerationJob, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.GenerationJob{}, ErrShuttingDown
	}
	if m.activeLocked() >= m.maxActive {
		m.mu.Unlock()
		return domain.GenerationJob{}, domain.ErrTooManyJobs
	}

	now := m.now()
	jobCtx, cancel := context.WithCancel(context.Background())
	jobCtx = log.Ctx(ctx).WithContext(jobCtx)

	e := &entry{
		job: domain.GenerationJob{
			ID:             uuid.New(),
			UserID:         userID,
			PresentationID: presentationID,
			Status:         domain.JobStatusPending,
			Message:        "Queued",
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		cancel: cancel,
		seq:    1,
	}
	m.jobs[e.job.ID] = e
	snapshot := e.job
	m.wg.Add(1)
	m.mu.Unlock()

	jobsActive.Inc()
	m.publishOrdered(jobCtx, e, 1, snapshot)

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.run(jobCtx, snapshot.ID, fn)
	}()
	return snapshot, nil
}

func (m *Manager) run(ctx context.Context, id uuid.UUID, fn Func) {
	logger := log.Ctx(ctx).With().Str("job_id", id.String()).Logger()
	ctx = logger.WithContext(ctx)

	m.transition(ctx, id, func(j *domain.GenerationJob) bool {
		started := m.now()
		j.Status = domain.JobStatusRunning
		j.Message = "Job started"
		j.StartedAt = &started
		return true
	})
	if ctx.Err() != nil {
		// отменена до старта
		m.finish(ctx, id, domain.JobStatusCancelled, "Job cancelled", nil, nil)
		return
	}

	result, err := fn(ctx, func(message string) { m.UpdateMessage(id, message) })

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		logger.Info().Msg("job context cancelled")
		m.finish(ctx, id, domain.JobStatusCancelled, "Job cancelled", nil, nil)
	case err != nil:
		logger.Error().Err(err).Msg("job failed")
		m.finish(ctx, id, domain.JobStatusFailed, "Presentation generation failed", nil, domain.NewJobError(err))
	default:
		logger.Info().Msg("job completed")
		m.finish(ctx, id, domain.JobStatusCompleted, "Presentation generation completed", result, nil)
	}
}

// finish переводит задачу в терминальный статус, если она ещё не в нём.
func (m *Manager) finish(ctx context.Context, id uuid.UUID, status domain.JobStatus, message string, result any, jobErr *domain.JobError) {
	changed := m.transition(ctx, id, func(j *domain.GenerationJob) bool {
		done := m.now()
		j.Status = status
		j.Message = message
		j.Result = result
		j.Error = jobErr
		j.CompletedAt = &done
		return true
	})
	if changed {
		jobsActive.Dec()
		jobsFinished.WithLabelValues(string(status)).Inc()
	}
}

// transition применяет изменение к нетерминальной задаче, затем сохраняет и рассылает её.
// apply возвращает false, если менять нечего.
func (m *Manager) transition(ctx context.Context, id uuid.UUID, apply func(*domain.GenerationJob) bool) bool {
	m.mu.Lock()
	e, ok := m.jobs[id]
	if !ok || e.job.Status.IsTerminal() || !apply(&e.job) {
		m.mu.Unlock()
		return false
	}
	e.job.UpdatedAt = m.now()
	e.seq++
	seq := e.seq
	snapshot := e.job
	m.mu.Unlock()

	m.publishOrdered(ctx, e, seq, snapshot)
	return true
}

// publishOrdered публикует снимок, только если более новый ещё не опубликован.
// Иначе устаревший running мог бы перезаписать в Store уже сохранённый cancelled.
func (m *Manager) publishOrdered(ctx context.Context, e *entry, seq uint64, job domain.GenerationJob) {
	e.pubMu.Lock()
	defer e.pubMu.Unlock()
	if seq <= e.published {
		return
	}
	e.published = seq
	m.publish(ctx, job)
}

// publish сохраняет снимок задачи и уведомляет подписчиков. Ошибки хранилища не фатальны.
func (m *Manager) publish(ctx context.Context, job domain.GenerationJob) {
	if m.store != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := m.store.Save(saveCtx, job); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("job_id", job.ID.String()).Msg("failed to persist job state")
		}
		cancel()
	}

	m.mu.RLock()
	callbacks := append([]Callback(nil), m.callbacks[job.ID]...)
	notifier := m.notifier
	m.mu.RUnlock()

	for _, cb := range callbacks {
		go cb(job)
	}
	if notifier != nil && job.UserID != "" {
		notifier.SendToUser(job.UserID, "job_update", job)
	}

	log.Ctx(ctx).Debug().
		Str("job_id", job.ID.String()).
		Str("status", string(job.Status)).
		Str("message", job.Message).
		Msg("job state updated")
}

// UpdateMessage меняет сообщение о прогрессе выполняющейся задачи.
func (m *Manager) UpdateMessage(id uuid.UUID, message string) {
	m.transition(context.Background(), id, func(j *domain.GenerationJob) bool {
		if j.Status != domain.JobStatusRunning || j.Message == message {
			return false
		}
		j.Message = message
		return true
	})
}

// Get возвращает задачу из памяти, а если её там нет, из Store.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (domain.GenerationJob, error) {
	m.mu.RLock()
	e, ok := m.jobs[id]
	var job domain.GenerationJob
	if ok {
		job = e.job
	}
	m.mu.RUnlock()
	if ok {
		return job, nil
	}
	if m.store == nil {
		return domain.GenerationJob{}, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	return m.store.Get(ctx, id)
}

// Cancel отменяет pending/running задачу. Тело задачи останавливается кооперативно
// через контекст; статус cancelled выставляется сразу.
func (m *Manager) Cancel(ctx context.Context, id uuid.UUID) error {
	m.mu.RLock()
	e, ok := m.jobs[id]
	var status domain.JobStatus
	if ok {
		status = e.job.Status
	}
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if status.IsTerminal() {
		return fmt.Errorf("job %s is %s: %w", id, status, domain.ErrJobNotCancellable)
	}

	m.finish(ctx, id, domain.JobStatusCancelled, "Job cancelled by user", nil, nil)
	e.cancel()
	return nil
}

// RegisterCallback добавляет обработчик изменений задачи.
func (m *Manager) RegisterCallback(id uuid.UUID, cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	m.callbacks[id] = append(m.callbacks[id], cb)
	return nil
}

// UnregisterCallbacks удаляет все обработчики задачи.
func (m *Manager) UnregisterCallbacks(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.callbacks, id)
}

// Cleanup удаляет из памяти завершённые задачи старше age.
// Store хранит их до истечения TTL.
func (m *Manager) Cleanup(age time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.jobs {
		if e.job.Status.IsTerminal() && now.Sub(e.job.UpdatedAt) > age {
			delete(m.jobs, id)
			delete(m.callbacks, id)
			removed++
		}
	}
	return removed
}

// RunJanitor периодически вызывает Cleanup, пока ctx не отменён.
func (m *Manager) RunJanitor(ctx context.Context, interval, age time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Cleanup(age); n > 0 {
				log.Ctx(ctx).Debug().Int("removed", n).Msg("finished jobs cleaned up")
			}
		}
	}
}

// Shutdown перестаёт принимать задачи и ждёт завершения текущих.
// По истечении ctx оставшиеся задачи отменяются.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		m.mu.RLock()
		for _, e := range m.jobs {
			if !e.job.Status.IsTerminal() {
				e.cancel()
			}
		}
		m.mu.RUnlock()
		return fmt.Errorf("timeout waiting for jobs to finish: %w", ctx.Err())
	}
}

func (m *Manager) activeLocked() int {
	n := 0
	for _, e := range m.jobs {
		if !e.job.Status.IsTerminal() {
			n++
		}
	}
	return n
}
