package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nick/grantlink/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const profileCols = `id, email, organization_name, organization_type, state, city, zip,
	focus_areas, keywords, min_amount, max_amount, preferred_sources,
	notification_frequency, notifications_enabled, last_notification_sent,
	created_at, updated_at`

func scanProfile(scan func(dest ...interface{}) error) (models.Profile, error) {
	var p models.Profile
	var preferred []string

	err := scan(
		&p.ID, &p.Email, &p.OrganizationName, &p.OrganizationType, &p.State, &p.City, &p.Zip,
		&p.FocusAreas, &p.Keywords, &p.MinAmount, &p.MaxAmount, &preferred,
		&p.NotificationFrequency, &p.NotificationsEnabled, &p.LastNotificationSent,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	for _, s := range preferred {
		p.PreferredSources = append(p.PreferredSources, models.Source(s))
	}
	return p, nil
}

// UpsertProfile inserts or updates a profile keyed by email and returns
// the stored row.
func (s *Store) UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	preferred := make([]string, 0, len(p.PreferredSources))
	for _, src := range p.PreferredSources {
		preferred = append(preferred, string(src))
	}
	if p.FocusAreas == nil {
		p.FocusAreas = []string{}
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}

	sql := fmt.Sprintf(`
		INSERT INTO profiles (email, organization_name, organization_type, state, city, zip,
			focus_areas, keywords, min_amount, max_amount, preferred_sources,
			notification_frequency, notifications_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (email) DO UPDATE SET
			organization_name = EXCLUDED.organization_name,
			organization_type = EXCLUDED.organization_type,
			state = EXCLUDED.state,
			city = EXCLUDED.city,
			zip = EXCLUDED.zip,
			focus_areas = EXCLUDED.focus_areas,
			keywords = EXCLUDED.keywords,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			preferred_sources = EXCLUDED.preferred_sources,
			notification_frequency = EXCLUDED.notification_frequency,
			notifications_enabled = EXCLUDED.notifications_enabled,
			updated_at = NOW()
		RETURNING %s`, profileCols)

	row := s.pool.QueryRow(ctx, sql,
		p.Email, p.OrganizationName, p.OrganizationType, p.State, p.City, p.Zip,
		p.FocusAreas, p.Keywords, p.MinAmount, p.MaxAmount, preferred,
		p.NotificationFrequency, p.NotificationsEnabled,
	)

	stored, err := scanProfile(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}
	return &stored, nil
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	sql := fmt.Sprintf("SELECT %s FROM profiles WHERE email = $1", profileCols)
	row := s.pool.QueryRow(ctx, sql, email)

	p, err := scanProfile(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// ListProfilesForMatching returns profiles with notifications enabled,
// optionally narrowed to one digest frequency.
func (s *Store) ListProfilesForMatching(ctx context.Context, frequency string) ([]models.Profile, error) {
	where := "WHERE notifications_enabled = TRUE AND notification_frequency != 'none'"
	var args []interface{}
	if frequency != "" {
		where += " AND notification_frequency = $1"
		args = append(args, frequency)
	}

	sql := fmt.Sprintf("SELECT %s FROM profiles %s ORDER BY created_at", profileCols, where)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) DeleteProfile(ctx context.Context, email string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM profiles WHERE email = $1", email)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const matchCols = `id, profile_id, source, source_record_id, score, reasons,
	grant_title, grant_agency, grant_amount, grant_deadline, grant_link, grant_description,
	status, created_at, updated_at`

func scanMatch(scan func(dest ...interface{}) error) (models.Match, error) {
	var m models.Match
	var source string

	err := scan(
		&m.ID, &m.ProfileID, &source, &m.SourceRecordID, &m.Score, &m.Reasons,
		&m.GrantTitle, &m.GrantAgency, &m.GrantAmount, &m.GrantDeadline, &m.GrantLink, &m.GrantDescription,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return m, err
	}
	m.Source = models.Source(source)
	return m, nil
}

// UpsertMatches writes matches idempotently on (profile_id, source,
// source_record_id). Re-scored matches keep their status; only score,
// reasons, and the grant snapshot are refreshed.
func (s *Store) UpsertMatches(ctx context.Context, matches []models.Match) (int, error) {
	stored := 0
	for _, m := range matches {
		if m.Reasons == nil {
			m.Reasons = []string{}
		}
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO matches (profile_id, source, source_record_id, score, reasons,
				grant_title, grant_agency, grant_amount, grant_deadline, grant_link, grant_description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (profile_id, source, source_record_id) DO UPDATE SET
				score = EXCLUDED.score,
				reasons = EXCLUDED.reasons,
				grant_title = EXCLUDED.grant_title,
				grant_agency = EXCLUDED.grant_agency,
				grant_amount = EXCLUDED.grant_amount,
				grant_deadline = EXCLUDED.grant_deadline,
				grant_link = EXCLUDED.grant_link,
				grant_description = EXCLUDED.grant_description,
				updated_at = NOW()`,
			m.ProfileID, string(m.Source), m.SourceRecordID, m.Score, m.Reasons,
			m.GrantTitle, m.GrantAgency, m.GrantAmount, m.GrantDeadline, m.GrantLink, m.GrantDescription,
		)
		if err != nil {
			return stored, fmt.Errorf("upserting match %s/%s: %w", m.Source, m.SourceRecordID, err)
		}
		stored += int(tag.RowsAffected())
	}
	return stored, nil
}

// ListMatches returns a profile's matches, best score first. An empty
// status matches all statuses; limit <= 0 means no limit.
func (s *Store) ListMatches(ctx context.Context, profileID uuid.UUID, status string, limit int) ([]models.Match, error) {
	where := "WHERE profile_id = $1"
	args := []interface{}{profileID}
	argIdx := 2

	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	sql := fmt.Sprintf("SELECT %s FROM matches %s ORDER BY score DESC, created_at DESC", matchCols, where)
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	if matches == nil {
		matches = []models.Match{}
	}
	return matches, rows.Err()
}

// MarkMatchesSent flips the given matches to "sent" and stamps the
// profile's last notification time.
func (s *Store) MarkMatchesSent(ctx context.Context, profileID uuid.UUID, matchIDs []uuid.UUID) error {
	if len(matchIDs) == 0 {
		return nil
	}

	if _, err := s.pool.Exec(ctx, `
		UPDATE matches SET status = $1, updated_at = NOW()
		WHERE profile_id = $2 AND id = ANY($3)`,
		models.MatchStatusSent, profileID, matchIDs,
	); err != nil {
		return fmt.Errorf("marking matches sent: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		"UPDATE profiles SET last_notification_sent = NOW(), updated_at = NOW() WHERE id = $1",
		profileID,
	); err != nil {
		return fmt.Errorf("stamping profile notification time: %w", err)
	}
	return nil
}

// LogNotification records one sent digest for auditability.
func (s *Store) LogNotification(ctx context.Context, profileID uuid.UUID, matchCount int, subject string) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO notification_log (profile_id, match_count, subject) VALUES ($1, $2, $3)",
		profileID, matchCount, subject,
	)
	if err != nil {
		return fmt.Errorf("logging notification: %w", err)
	}
	return nil
}

// LastNotification returns when the profile last received a digest, or
// nil if it never has.
func (s *Store) LastNotification(ctx context.Context, profileID uuid.UUID) (*time.Time, error) {
	var sentAt *time.Time
	err := s.pool.QueryRow(ctx,
		"SELECT MAX(sent_at) FROM notification_log WHERE profile_id = $1",
		profileID,
	).Scan(&sentAt)
	if err != nil {
		return nil, fmt.Errorf("querying last notification: %w", err)
	}
	return sentAt, nil
}

// InsertLead records a signup and returns the stored row.
func (s *Store) InsertLead(ctx context.Context, l models.Lead) (*models.Lead, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO leads (email, first_name, last_name, company, referrer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, first_name, last_name, company, referrer, created_at`,
		l.Email, l.FirstName, l.LastName, l.Company, l.Referrer,
	)

	var stored models.Lead
	if err := row.Scan(&stored.ID, &stored.Email, &stored.FirstName, &stored.LastName,
		&stored.Company, &stored.Referrer, &stored.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting lead: %w", err)
	}
	return &stored, nil
}

// Stats summarizes stored rows for the status endpoint.
func (s *Store) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var profiles int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM profiles").Scan(&profiles)
	stats["profiles"] = profiles

	var matches int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM matches").Scan(&matches)
	stats["matches"] = matches

	var leads int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads").Scan(&leads)
	stats["leads"] = leads

	statusCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT status, COUNT(*) FROM matches GROUP BY status")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr == nil {
				statusCounts[status] = count
			}
		}
	}
	stats["match_status_counts"] = statusCounts

	return stats, nil
}
