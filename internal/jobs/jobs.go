package jobs

import (
	"context"
	"time"

	"gymweb/booking-api/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Start schedules the background maintenance jobs and returns the running
// scheduler so the caller can stop it on shutdown.
//
// The Mongo TTL monitor already reaps expired OTP documents, but it only runs
// about once a minute and offers no logging; the periodic sweep keeps the
// collection bounded and observable.
func Start(otpRepo repository.OTPRepository, logger *zap.Logger) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("@every 10m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		deleted, err := otpRepo.DeleteExpired(ctx, time.Now())
		if err != nil {
			logger.Error("expired otp cleanup failed", zap.Error(err))
			return
		}
		if deleted > 0 {
			logger.Info("expired otps cleaned", zap.Int64("deleted", deleted))
		}
	})
	if err != nil {
		logger.Error("failed to schedule otp cleanup", zap.Error(err))
	}

	c.Start()
	logger.Info("background jobs started")
	return c
}
