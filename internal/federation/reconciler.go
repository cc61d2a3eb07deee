package federation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ecomstore/passport/accounts"
	"github.com/ecomstore/passport/internal/metrics"
)

// Reconciler keeps the registry in sync with store-custom OAuth apps. Every
// interval it lists all stores and, with a small per-store stagger to stay
// under upstream rate limits, fetches each store's custom provider
// credentials and (re)registers changed ones. A pass only reschedules after
// every per-store fetch finished, but registry lookups stay lock-free
// enough to interleave with in-progress registrations.
type Reconciler struct {
	registry *Registry
	accounts accounts.Service
	interval time.Duration
	stagger  time.Duration
}

// NewReconciler creates a reconciler for the given registry.
func NewReconciler(registry *Registry, svc accounts.Service, interval, stagger time.Duration) *Reconciler {
	return &Reconciler{
		registry: registry,
		accounts: svc,
		interval: interval,
		stagger:  stagger,
	}
}

// Run drives the reconciliation cycle until ctx is canceled. Each pass runs
// under a panic guard: a fault is logged and the cycle restarts on the next
// interval instead of silently stopping.
func (r *Reconciler) Run(ctx context.Context) {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		r.supervisedPass(ctx)
		timer.Reset(r.interval)
	}
}

func (r *Reconciler) supervisedPass(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Msg("reconcile pass panicked, cycle will restart on next interval")
		}
	}()
	r.RunOnce(ctx)
}

// RunOnce executes a single reconciliation pass. It only returns once every
// per-store fetch completed.
func (r *Reconciler) RunOnce(ctx context.Context) {
	start := time.Now()

	stores, err := r.accounts.ListStores(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconcile: listing stores failed, skipping pass")
		metrics.ReconcileFailureTotal.Inc()
		return
	}

	var g errgroup.Group
	for i, store := range stores {
		delay := time.Duration(i) * r.stagger
		storeID := store.ID

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			r.reconcileStore(ctx, storeID)
			return nil
		})
	}
	// Fan-in: the next pass is only scheduled once every store finished.
	_ = g.Wait()

	metrics.ReconcilePassTotal.Inc()
	log.Debug().
		Int("stores", len(stores)).
		Dur("elapsed", time.Since(start)).
		Msg("reconcile pass complete")
}

// reconcileStore fetches one store's custom apps and converges the registry
// on them. A fetch failure is logged and skipped; the store keeps its
// current registrations and the rest of the pass is unaffected.
func (r *Reconciler) reconcileStore(ctx context.Context, storeID int) {
	apps, err := r.accounts.ProviderApps(ctx, storeID)
	if err != nil {
		log.Warn().Err(err).Int("store_id", storeID).Msg("reconcile: fetching provider apps failed, store skipped")
		metrics.ReconcileStoreFailureTotal.Inc()
		return
	}

	seen := make(map[string]bool, len(apps))
	for provider, app := range apps {
		creds := Credentials{ClientID: app.ClientID, ClientSecret: app.ClientSecret}
		if creds.Empty() {
			continue
		}

		registered, err := r.registry.Register(provider, storeID, creds)
		if err != nil {
			log.Warn().Err(err).
				Str("provider", provider).
				Int("store_id", storeID).
				Msg("reconcile: registering strategy failed")
			continue
		}
		seen[provider] = true
		if registered {
			metrics.StrategiesRegisteredTotal.Inc()
		}
	}

	r.registry.PruneStore(storeID, seen)
}
