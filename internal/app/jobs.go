package app

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err := a.sched.AddFunc("@daily", func() {
		a.SchedDailySalesSummary()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}

// SchedDailySalesSummary logs the day's takings: bill count, sum, mean and
// median. The till's end-of-day report, driven by the stored bill rows
// rather than any separate audit trail.
func (a *Application) SchedDailySalesSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	totals, err := a.ledgerRepo.TotalsSince(ctx, midnight)
	if err != nil {
		zap.L().Error("daily sales summary failed", zap.Error(err))
		return
	}
	if len(totals) == 0 {
		zap.L().Info("daily sales summary: no bills today")
		return
	}

	sum, _ := stats.Sum(totals)
	mean, _ := stats.Mean(totals)
	median, _ := stats.Median(totals)

	zap.L().Info("daily sales summary",
		zap.Int("bills", len(totals)),
		zap.Float64("sum", sum),
		zap.Float64("mean", mean),
		zap.Float64("median", median),
	)
}
