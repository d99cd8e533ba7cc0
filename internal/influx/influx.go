package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/pkg/core"
)

// MeasurementBattle is the measurement name for resolved battles.
const MeasurementBattle = "battle"

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx disabled")

// Manager writes battle points to InfluxDB, or to a gzipped line-protocol
// backup file when the server is unreachable.
type Manager struct {
	Client influxdb2.Client
	Writer influxdb2_api.WriteAPI

	cfg    config.InfluxConfig
	logger zerolog.Logger

	mu           sync.Mutex
	backupFile   *os.File
	backupWriter *gzip.Writer
	isValid      bool
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: log.With().Str("component", "influx").Logger(),
	}
}

// Connect establishes a connection to InfluxDB. A failed ping switches the
// manager to the backup file instead of returning an error.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.cfg.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.logger.Info().Err(err).Str("backupPath", m.cfg.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		return m.OpenBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}

	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())

	m.mu.Lock()
	m.isValid = true
	m.mu.Unlock()
	m.logger.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

// OpenBackup routes all writes to the gzipped backup file.
func (m *Manager) OpenBackup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backupWriter = gzip.NewWriter(file)
	m.isValid = false
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := m.Client.OrganizationsAPI()

	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %s: %w", m.cfg.Org, err)
		}
	}

	if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %s: %w", m.cfg.Bucket, err)
		}
	}
	return nil
}

// BattlePoint builds the point written for one resolved battle.
func BattlePoint(b core.Battle) *influxdb2_write.Point {
	chosen, _ := b.Chosen()
	return influxdb2.NewPoint(
		MeasurementBattle,
		map[string]string{
			"owner":   b.Owner.String(),
			"outcome": b.Outcome.String(),
			"zombie":  strconv.Itoa(int(b.ZombieID)),
		},
		map[string]interface{}{
			"battle_id":  b.ID.String(),
			"selection":  int64(b.Selection),
			"chosen":     chosen,
			"tick":       b.Tick,
			"spawn_slot": int64(b.SpawnSlot),
		},
		time.Unix(b.ResolvedAt, 0).UTC(),
	)
}

// WriteBattle writes the battle point to InfluxDB or the backup file.
func (m *Manager) WriteBattle(b core.Battle) error {
	return m.WritePoint(BattlePoint(b))
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isValid {
		m.Writer.WritePoint(point)
		return nil
	}
	if m.backupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Second)
	if _, err := m.backupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the client or backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.backupWriter != nil {
		if err := m.backupWriter.Close(); err != nil {
			return err
		}
		m.backupWriter = nil
		return m.backupFile.Close()
	}
	return nil
}
