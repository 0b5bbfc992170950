package scheduler

import (
	"github.com/rs/zerolog"
)

// AlertChecker evaluates every active price alert once.
type AlertChecker interface {
	CheckAll() (int, error)
}

// AlertCheckJob fires due price alerts. Each alert triggers at most once;
// the service deactivates it before sending the notification.
type AlertCheckJob struct {
	log    zerolog.Logger
	alerts AlertChecker
}

// NewAlertCheckJob creates a new alert check job
func NewAlertCheckJob(alerts AlertChecker, log zerolog.Logger) *AlertCheckJob {
	return &AlertCheckJob{
		log:    log.With().Str("job", "alert_check").Logger(),
		alerts: alerts,
	}
}

// Name returns the job name
func (j *AlertCheckJob) Name() string {
	return "alert_check"
}

// Run checks all active alerts against current prices
func (j *AlertCheckJob) Run() error {
	fired, err := j.alerts.CheckAll()
	if err != nil {
		return err
	}
	if fired > 0 {
		j.log.Info().Int("fired", fired).Msg("Price alerts triggered")
	}
	return nil
}
