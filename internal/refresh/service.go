package refresh

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"orgchart/internal/engine/directory"
	"orgchart/internal/engine/hierarchy"
	"orgchart/internal/engine/lifecycle"
	"orgchart/internal/platform/config"
	"orgchart/internal/platform/graph"
	"orgchart/internal/platform/ledger"
	"orgchart/internal/platform/models"
	"orgchart/internal/platform/settings"
	"orgchart/internal/platform/snapshot"
)

// ErrRefreshInFlight is returned when a refresh is triggered while another
// cycle is still running. Callers retry later; two cycles never overlap.
var ErrRefreshInFlight = errors.New("a refresh cycle is already running")

// Status describes the most recent refresh cycle.
type Status struct {
	Running   bool       `json:"running"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

// Service runs the reconciliation pipeline: fetch, classify, build the
// hierarchy, audit it, merge the disabled ledger and persist every report
// snapshot. A single-flight guard serializes cycles regardless of whether
// the scheduler or a manual trigger starts them.
type Service struct {
	client    *graph.Client
	snapshots *snapshot.Store
	settings  *settings.Store
	ledger    *ledger.Repository
	cfg       config.RefreshConfig

	mu      sync.Mutex
	running bool
	lastRun *time.Time
	lastErr string
}

func NewService(client *graph.Client, snapshots *snapshot.Store, settingsStore *settings.Store, ledgerRepo *ledger.Repository, cfg config.RefreshConfig) *Service {
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = 365
	}
	return &Service{
		client:    client,
		snapshots: snapshots,
		settings:  settingsStore,
		ledger:    ledgerRepo,
		cfg:       cfg,
	}
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Running: s.running, LastRun: s.lastRun, LastError: s.lastErr}
}

// Run executes one refresh cycle synchronously. Returns ErrRefreshInFlight
// if a cycle is already running.
func (s *Service) Run(ctx context.Context) error {
	if !s.acquire() {
		return ErrRefreshInFlight
	}
	err := s.run(ctx)
	s.finish(err)
	return err
}

// Trigger starts a refresh cycle in the background. Returns
// ErrRefreshInFlight without starting anything if a cycle is running.
func (s *Service) Trigger() error {
	if !s.acquire() {
		return ErrRefreshInFlight
	}
	go func() {
		s.finish(s.run(context.Background()))
	}()
	return nil
}

func (s *Service) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) finish(err error) {
	now := time.Now().UTC()
	s.mu.Lock()
	s.running = false
	s.lastRun = &now
	s.lastErr = ""
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
}

func (s *Service) run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := log.With().Str("run_id", runID).Logger()
	now := time.Now().UTC()

	logger.Info().Msg("starting directory refresh cycle")

	st := s.settings.Load()
	rules := directory.NewRules(st)

	token, err := s.client.AccessToken(ctx)
	if err != nil {
		// Existing snapshots stay in place, so readers keep stale data
		// rather than losing the reports entirely.
		logger.Error().Err(err).Msg("unable to refresh: access token retrieval failed")
		return err
	}

	skuMap, err := s.client.FetchSubscribedSKUs(ctx, token)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load subscribed SKUs; license labels fall back to raw ids")
		skuMap = map[string]string{}
	}

	raw, fetchErr := s.client.FetchUsers(ctx, token, rules.HideDisabledUsers, rules.HideGuestUsers)
	if fetchErr != nil {
		logger.Error().Err(fetchErr).Msg("error fetching directory members")
	}

	employees, excluded := directory.Classify(raw, skuMap, rules, now)

	if fetchErr != nil || len(employees) == 0 {
		cachedEmployees, cachedExcluded := s.loadCachedClassification(logger)
		if len(cachedEmployees) > 0 {
			logger.Warn().Int("count", len(cachedEmployees)).
				Msg("using cached employee data after provider fetch failure")
			employees = cachedEmployees
			if len(cachedExcluded) > 0 {
				excluded = cachedExcluded
			}
		} else if fetchErr != nil {
			logger.Warn().Msg("provider fetch failed and no cached employee data is available")
		}
	}

	if len(employees) > 0 {
		// The flat list is cached before tree assembly so it carries no
		// children; per-request rebuilds start from it.
		s.write(logger, snapshot.EmployeeList, employees)

		opts := hierarchy.Options{
			EnvTopEmail:      s.cfg.TopUserEmail,
			SettingsTopEmail: st.TopUserEmail,
		}
		root := hierarchy.Build(employees, opts)
		hierarchy.UpdateNewEmployeeFlags(root, st.NewEmployeeMonths, now)
		missing := hierarchy.CollectMissingManagers(employees, root, opts.EffectiveTopEmail())

		s.write(logger, snapshot.HierarchyTree, root)
		s.write(logger, snapshot.MissingManager, missing)
		s.write(logger, snapshot.RecentlyHired, lifecycle.RecentlyHired(employees, s.cfg.RecentDays, now))

		logger.Info().Int("employees", len(employees)).Int("missing_managers", len(missing)).
			Msg("hierarchy rebuilt")
	} else {
		logger.Error().Msg("no directory members available; keeping previous hierarchy snapshots")
	}

	s.write(logger, snapshot.ExcludedUsers, excluded)
	s.write(logger, snapshot.ExcludedWithLicense, excludedLicensed(excluded))

	s.refreshDisabled(ctx, token, skuMap, logger, now)
	s.refreshSignIns(ctx, token, skuMap, logger, now)

	logger.Info().Msg("directory refresh cycle complete")
	return nil
}

func (s *Service) refreshDisabled(ctx context.Context, token string, skuMap map[string]string, logger zerolog.Logger, now time.Time) {
	raw, err := s.client.FetchDisabledUsers(ctx, token)
	if err != nil {
		logger.Error().Err(err).Msg("error fetching disabled users; ledger left untouched")
		return
	}

	records := directory.NormalizeDisabled(raw, skuMap, now)

	previous, err := s.ledger.All()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load disabled ledger; treating as empty")
		previous = map[string]time.Time{}
	}
	if len(previous) == 0 {
		// Older deployments kept ledger state only inside the snapshot.
		var cached []models.DisabledUserRecord
		if readErr := s.snapshots.Read(snapshot.DisabledUsers, &cached); readErr == nil {
			previous = lifecycle.LedgerFromRecords(cached)
			if len(previous) > 0 {
				logger.Info().Int("entries", len(previous)).Msg("seeded disabled ledger from cached snapshot")
			}
		} else if !os.IsNotExist(readErr) {
			logger.Warn().Err(readErr).Msg("unable to read previous disabled users snapshot")
		}
	}

	next := lifecycle.Merge(records, previous, now)
	if err := s.ledger.Replace(next, now); err != nil {
		logger.Error().Err(err).Msg("failed to persist disabled ledger")
	}

	s.write(logger, snapshot.DisabledUsers, records)
	s.write(logger, snapshot.DisabledWithLicense, lifecycle.LicensedOnly(records))
	s.write(logger, snapshot.RecentlyDisabled, lifecycle.RecentlyDisabled(records, s.cfg.RecentDays, now))

	logger.Info().Int("disabled", len(records)).Msg("disabled user reports updated")
}

func (s *Service) refreshSignIns(ctx context.Context, token string, skuMap map[string]string, logger zerolog.Logger, now time.Time) {
	raw, err := s.client.FetchSignInActivity(ctx, token)
	if err != nil {
		logger.Warn().Err(err).Msg("error fetching sign-in activity; keeping previous snapshot")
		return
	}

	records := directory.NormalizeSignIns(raw, skuMap, now)
	s.write(logger, snapshot.SignInActivity, records)
	logger.Info().Int("records", len(records)).Msg("sign-in activity report updated")
}

// loadCachedClassification reloads the last good employee and excluded
// snapshots. Corrupt documents degrade to empty collections with a warning.
func (s *Service) loadCachedClassification(logger zerolog.Logger) ([]*models.Employee, []models.ExcludedRecord) {
	var employees []*models.Employee
	if err := s.snapshots.Read(snapshot.EmployeeList, &employees); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("unable to load cached employee list")
		employees = nil
	}

	var excluded []models.ExcludedRecord
	if err := s.snapshots.Read(snapshot.ExcludedUsers, &excluded); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("unable to load cached excluded users")
		excluded = nil
	}

	return employees, excluded
}

func (s *Service) write(logger zerolog.Logger, name string, v interface{}) {
	if err := s.snapshots.Write(name, v); err != nil {
		logger.Error().Err(err).Str("snapshot", name).Msg("failed to write report snapshot")
	}
}

func excludedLicensed(records []models.ExcludedRecord) []models.ExcludedRecord {
	var licensed []models.ExcludedRecord
	for _, record := range records {
		if record.LicenseCount > 0 {
			licensed = append(licensed, record)
		}
	}
	return licensed
}
