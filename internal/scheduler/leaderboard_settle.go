package scheduler

import (
	"github.com/rs/zerolog"
)

// ReturnSettler recomputes stored portfolio returns for every user.
type ReturnSettler interface {
	Settle() error
}

// LeaderboardSettleJob refreshes the nightly leaderboard standings.
type LeaderboardSettleJob struct {
	log     zerolog.Logger
	settler ReturnSettler
}

// NewLeaderboardSettleJob creates a new leaderboard settlement job
func NewLeaderboardSettleJob(settler ReturnSettler, log zerolog.Logger) *LeaderboardSettleJob {
	return &LeaderboardSettleJob{
		log:     log.With().Str("job", "leaderboard_settle").Logger(),
		settler: settler,
	}
}

// Name returns the job name
func (j *LeaderboardSettleJob) Name() string {
	return "leaderboard_settle"
}

// Run settles every user's total return
func (j *LeaderboardSettleJob) Run() error {
	return j.settler.Settle()
}
