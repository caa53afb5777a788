// Package solaris ties the dashboard's background work together: the
// scheduled jobs that persist power history and push settlement
// divergence digests to the resident.
package solaris

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
	"github.com/trevor-gituru/solaris-conexus/power"
)

type storage interface {
	SavePowerSample(sample *m.PowerSample) error
	RetrieveDivergences(unresolvedOnly bool) ([]m.Divergence, error)
}

type powerSource interface {
	Latest() (power.Sample, bool)
}

type sessionSource interface {
	Sessions() []*gateway.AuthSession
}

type purchaseService interface {
	Purchases(ctx context.Context, sess *gateway.AuthSession) ([]m.Purchase, error)
	ConfirmMpesa(ctx context.Context, sess *gateway.AuthSession) (*m.Purchase, error)
}

type Dashboard struct {
	stg       storage
	feed      powerSource
	sessions  sessionSource
	purchases purchaseService
	ch        chan<- string

	enrolledJobs []*EnrolledJob
	lg           zerolog.Logger
}

type DashboardConfig struct {
	Storage   storage
	Feed      powerSource
	Sessions  sessionSource
	Purchases purchaseService
	Channel   chan<- string
}

func NewDashboard(conf DashboardConfig) *Dashboard {

	d := &Dashboard{
		stg:       conf.Storage,
		feed:      conf.Feed,
		sessions:  conf.Sessions,
		purchases: conf.Purchases,
		ch:        conf.Channel,
		lg:        zerolog.New(os.Stdout).With().Str("Module", "Dashboard").Timestamp().Logger(),
	}
	d.registerJobs()
	return d
}

func (d *Dashboard) Jobs() []*EnrolledJob {
	return d.enrolledJobs
}

func (d *Dashboard) SetJobStatus(id uint, active bool) error {
	d.lg.Info().Uint("id", id).Bool("active", active).Msg("Changing job status")

	for _, job := range d.enrolledJobs {
		if job.Id == id {
			job.IsActive = active
			return nil
		}
	}
	return fmt.Errorf("no job with id %d", id)
}

func (d *Dashboard) LaunchJob(id uint) error {
	d.lg.Info().Uint("id", id).Msg("Launching job")

	for _, job := range d.enrolledJobs {
		if job.Id == id {
			if !job.IsActive {
				return fmt.Errorf("job %d is inactive", id)
			}
			job.Job(Manual)
			return nil
		}
	}
	return fmt.Errorf("no job with id %d", id)
}

// runPowerSnapshot persists the newest feed sample. The live window only
// holds the last 20 readings; history beyond that lives in the database.
func (d *Dashboard) runPowerSnapshot(isManual WayOfLaunch) {

	sample, ok := d.feed.Latest()
	if !ok {
		d.lg.Debug().Msg("No power sample to persist yet")
		return
	}

	err := d.stg.SavePowerSample(&m.PowerSample{Power: sample.Power, At: sample.At})
	if err != nil {
		d.lg.Error().Err(err).Msg("Power snapshot save failed")
	}
}

// runMpesaSweep re-confirms stuck provisional mobile-money purchases for
// every signed-in resident. The backend resolves a provisional purchase
// once the payment lands; a resident at most has one in flight, so one
// confirm call per affected session is enough.
func (d *Dashboard) runMpesaSweep(isManual WayOfLaunch) {

	if d.sessions == nil || d.purchases == nil {
		return
	}

	ctx := context.Background()
	for _, sess := range d.sessions.Sessions() {
		purchases, err := d.purchases.Purchases(ctx, sess)
		if err != nil {
			d.lg.Warn().Err(err).Str("email", sess.Email).Msg("Mpesa sweep purchase listing failed")
			continue
		}

		for _, p := range purchases {
			if p.PaymentMethod != m.PayMpesa || p.Status != m.PurchaseProcessing {
				continue
			}
			if _, err := d.purchases.ConfirmMpesa(ctx, sess); err != nil {
				d.lg.Warn().Err(err).Str("email", sess.Email).Msg("Mpesa re-confirmation failed")
			}
			break
		}
	}
}

// runDivergenceDigest reminds the resident of unresolved settlement
// divergences. Silent when the journal is clean.
func (d *Dashboard) runDivergenceDigest(isManual WayOfLaunch) {

	divergences, err := d.stg.RetrieveDivergences(true)
	if err != nil {
		d.lg.Error().Err(err).Msg("Divergence digest retrieval failed")
		return
	}
	if len(divergences) == 0 {
		if isManual {
			d.ch <- "no unresolved divergences"
		}
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d unresolved settlement divergence(s):\n", len(divergences))
	for _, div := range divergences {
		fmt.Fprintf(&b, "#%d %s tx %s: %s\n", div.ID, div.Flow, div.TxHash, div.Detail)
	}
	d.ch <- b.String()
}
