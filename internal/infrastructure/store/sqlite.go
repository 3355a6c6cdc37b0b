package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/barterfeed/backend/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	dbFile = "barterfeed.db"

	// createdAtLayout is fixed-width so created_at sorts lexically in time order.
	createdAtLayout = "2006-01-02T15:04:05.000000000Z"
)

var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
}

// Store keeps profiles, offers and the taxonomy as JSON documents in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the document store under dir, creating it when needed, and brings
// its schema up to date. dir may be ":memory:".
func Open(dir string) (*Store, error) {
	dsn := ":memory:"
	if dir != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		dsn = filepath.Join(dir, dbFile)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// one connection, or every pool member would get its own :memory: database
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := s.migrate(); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs every embedded migration whose version is not in schema_version yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return err
	}

	applied, err := s.AppliedMigrations()
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		version, err := migrationVersion(path.Base(file))
		if err != nil {
			return err
		}
		if done[version] {
			continue
		}
		if err := s.apply(version, file); err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, file string) error {
	script, err := migrations.ReadFile(file)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(script)); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// migrationVersion reads the numeric prefix of names like "001_documents.sql".
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %q has no version prefix", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration %q: %w", name, err)
	}
	return version, nil
}

// AppliedMigrations lists recorded schema versions, lowest first.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Profiles ---

// GetProfile returns the profile with the given ID, or domain.ErrProfileNotFound.
func (s *Store) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM profiles WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading profile %s: %v", domain.ErrStoreFailure, id, err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, fmt.Errorf("%w: decoding profile %s: %v", domain.ErrStoreFailure, id, err)
	}
	return &profile, nil
}

// SaveProfile inserts or replaces a profile.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.ID == "" {
		return domain.ErrInvalidRequest
	}

	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		profile.ID, string(doc), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: saving profile %s: %v", domain.ErrStoreFailure, profile.ID, err)
	}
	return nil
}

// --- Offers ---

// GetOffer returns the offer with the given ID, or domain.ErrOfferNotFound.
func (s *Store) GetOffer(ctx context.Context, id string) (*domain.BarterOffer, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM offers WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading offer %s: %v", domain.ErrStoreFailure, id, err)
	}

	var offer domain.BarterOffer
	if err := json.Unmarshal([]byte(doc), &offer); err != nil {
		return nil, fmt.Errorf("%w: decoding offer %s: %v", domain.ErrStoreFailure, id, err)
	}
	return &offer, nil
}

// ListOffers returns offers with the given status, newest first.
// An empty status lists every offer.
func (s *Store) ListOffers(ctx context.Context, status domain.OfferStatus) ([]domain.BarterOffer, error) {
	query := `SELECT doc FROM offers ORDER BY created_at DESC, id ASC`
	args := []any{}
	if status != "" {
		query = `SELECT doc FROM offers WHERE status = ? ORDER BY created_at DESC, id ASC`
		args = append(args, string(status))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing offers: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	offers := []domain.BarterOffer{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: scanning offer: %v", domain.ErrStoreFailure, err)
		}
		var offer domain.BarterOffer
		if err := json.Unmarshal([]byte(doc), &offer); err != nil {
			return nil, fmt.Errorf("%w: decoding offer: %v", domain.ErrStoreFailure, err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing offers: %v", domain.ErrStoreFailure, err)
	}
	return offers, nil
}

// SaveOffer inserts or replaces an offer. A zero CreatedAt keeps the stored
// creation time of an existing offer, or is stamped with the current time.
func (s *Store) SaveOffer(ctx context.Context, offer *domain.BarterOffer) error {
	if offer == nil || offer.ID == "" {
		return domain.ErrInvalidRequest
	}
	if !offer.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, offer.Status)
	}
	if offer.CreatedAt.IsZero() {
		createdAt, err := s.offerCreatedAt(ctx, offer.ID)
		if err != nil {
			return err
		}
		offer.CreatedAt = createdAt
	}

	doc, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("encoding offer: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO offers (id, profile_id, status, doc, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile_id = excluded.profile_id,
			status = excluded.status,
			doc = excluded.doc,
			created_at = excluded.created_at`,
		offer.ID, offer.ProfileID, string(offer.Status), string(doc),
		offer.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("%w: saving offer %s: %v", domain.ErrStoreFailure, offer.ID, err)
	}
	return nil
}

// --- Taxonomy ---

// GetTaxonomy returns the stored taxonomy. A database with no taxonomy yields an
// empty one, since absence means no tag carries meaning.
func (s *Store) GetTaxonomy(ctx context.Context) (*domain.SystemTaxonomy, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM taxonomy WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SystemTaxonomy{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading taxonomy: %v", domain.ErrStoreFailure, err)
	}

	var taxonomy domain.SystemTaxonomy
	if err := json.Unmarshal([]byte(doc), &taxonomy); err != nil {
		return nil, fmt.Errorf("%w: decoding taxonomy: %v", domain.ErrStoreFailure, err)
	}
	return &taxonomy, nil
}

// SaveTaxonomy replaces the stored taxonomy.
func (s *Store) SaveTaxonomy(ctx context.Context, taxonomy *domain.SystemTaxonomy) error {
	if taxonomy == nil {
		return domain.ErrInvalidRequest
	}

	doc, err := json.Marshal(taxonomy)
	if err != nil {
		return fmt.Errorf("encoding taxonomy: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO taxonomy (id, doc, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(doc), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: saving taxonomy: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

// offerCreatedAt returns the stored creation time of an offer, or now for a new one.
func (s *Store) offerCreatedAt(ctx context.Context, id string) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT created_at FROM offers WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Now().UTC(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reading offer %s: %v", domain.ErrStoreFailure, id, err)
	}
	createdAt, err := time.Parse(createdAtLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: offer %s has malformed created_at %q", domain.ErrStoreFailure, id, raw)
	}
	return createdAt, nil
}
