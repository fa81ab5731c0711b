package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"comercial-backend/internal/config"
	"comercial-backend/internal/shared"
	"comercial-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerActualizarEstadosDescuentosJob()
}

// El barrido corre cada media hora por defecto. Los cupones expiran por
// fecha_fin y los inactivos en ventana vuelven a activo; media hora de
// retraso máximo es aceptable para el negocio.
func (s *Scheduler) registerActualizarEstadosDescuentosJob() error {
	payload, err := json.Marshal(shared.ActualizarEstadosPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeActualizarEstadosDescuentos, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.EstadoSweepCron,
		task,
		asynq.Queue(shared.QueueDescuento),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register ActualizarEstadosDescuentos job", err)
		return err
	}

	logger.Info("✓ Registered ActualizarEstadosDescuentos", map[string]interface{}{
		"cron": s.jobConfig.EstadoSweepCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	logger.Info("Starting job scheduler...", map[string]interface{}{})
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	logger.Info("Shutting down job scheduler...", map[string]interface{}{})
	s.scheduler.Shutdown()
}
