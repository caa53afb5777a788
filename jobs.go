package solaris

import "github.com/robfig/cron"

const (
	SnapshotSpec = "0 * * * * *"
	DigestSpec   = "0 0 7 * * *"
	SweepSpec    = "0 */5 * * * *"
)

func (d *Dashboard) Run() {
	d.lg.Info().Msg("Starting Dashboard jobs")
	c := cron.New()

	for _, enrolled := range d.enrolledJobs {
		if enrolled.schedule == "" {
			continue
		}
		c.AddFunc(enrolled.schedule, func() {
			if enrolled.IsActive {
				enrolled.Job(Auto)
			}
		})
	}

	c.Start()
	d.lg.Info().Msg("Dashboard jobs scheduled")
}

type EnrolledJob struct {
	Id          uint
	Title       string
	Description string
	IsActive    bool
	schedule    string
	Job         func(WayOfLaunch)
}

type WayOfLaunch bool

const (
	Manual WayOfLaunch = true
	Auto   WayOfLaunch = false
)

func (d *Dashboard) registerJobs() {
	d.enrolledJobs = []*EnrolledJob{
		{
			Id:          1,
			Title:       "Power snapshot",
			Description: "Persist the latest power reading every minute so the chart window has history behind it.",
			IsActive:    true,
			schedule:    SnapshotSpec,
			Job:         d.runPowerSnapshot,
		},
		{
			Id:          2,
			Title:       "Divergence digest",
			Description: "Daily 7am reminder of settlements where the chain moved tokens but the backend record did not follow.",
			IsActive:    true,
			schedule:    DigestSpec,
			Job:         d.runDivergenceDigest,
		},
		{
			Id:          3,
			Title:       "Mpesa sweep",
			Description: "Re-confirm provisional mobile-money purchases every five minutes until the payment lands or is cancelled.",
			IsActive:    true,
			schedule:    SweepSpec,
			Job:         d.runMpesaSweep,
		},
	}
}
