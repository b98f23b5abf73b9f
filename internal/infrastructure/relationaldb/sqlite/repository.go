// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection of an in-memory database is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("connecting to sqlite database", err)
	}

	return &Repository{
		db:     db,
		path:   cfg.Path,
		logger: log.New(io.Discard),
	}, nil
}

// dsn appends the per-connection pragmas. Transactions start with BEGIN
// IMMEDIATE so check-then-insert sequences hold the write lock throughout.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")    // referential integrity
	q.Add("_pragma", "journal_mode(WAL)")  // concurrent readers during writes
	q.Add("_pragma", "busy_timeout(5000)") // avoid "database is locked"
	q.Set("_txlock", "immediate")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// unavailable tags a driver failure as a collaborator outage.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ports.ErrCollaboratorUnavailable, err)
}

// insertedOrDuplicate checks an INSERT ... ON CONFLICT DO NOTHING result.
// No affected row means the conflict clause fired.
func insertedOrDuplicate(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return unavailable("reading affected rows", err)
	}
	if n == 0 {
		return ports.ErrDuplicate
	}
	return nil
}

// SetLogger replaces the repository's logger.
func (r *Repository) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- People (names are not unique)
	CREATE TABLE IF NOT EXISTS persons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_persons_name ON persons(name);

	CREATE TABLE IF NOT EXISTS person_attributes (
		person_id INTEGER NOT NULL REFERENCES persons(id),
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (person_id, key)
	);

	-- Notes and references, kept in insertion order
	CREATE TABLE IF NOT EXISTS annotations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_id INTEGER NOT NULL REFERENCES persons(id),
		kind TEXT NOT NULL CHECK (kind IN ('note', 'reference')),
		text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_annotations_person ON annotations(person_id);

	-- Parent -> child edges
	CREATE TABLE IF NOT EXISTS parent_child (
		parent_id INTEGER NOT NULL REFERENCES persons(id),
		child_id INTEGER NOT NULL REFERENCES persons(id),
		PRIMARY KEY (parent_id, child_id),
		CHECK (parent_id <> child_id)
	);
	CREATE INDEX IF NOT EXISTS idx_parent_child_child ON parent_child(child_id);

	-- Marriage/divorce history; person_a < person_b, latest seq wins
	CREATE TABLE IF NOT EXISTS partner_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		person_a INTEGER NOT NULL REFERENCES persons(id),
		person_b INTEGER NOT NULL REFERENCES persons(id),
		type TEXT NOT NULL CHECK (type IN ('marriage', 'divorce')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK (person_a < person_b)
	);
	CREATE INDEX IF NOT EXISTS idx_partner_events_pair ON partner_events(person_a, person_b);

	-- Media archive
	CREATE TABLE IF NOT EXISTS media_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS media_attributes (
		media_id INTEGER NOT NULL REFERENCES media_files(id),
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (media_id, key)
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS media_tags (
		media_id INTEGER NOT NULL REFERENCES media_files(id),
		tag_id INTEGER NOT NULL REFERENCES tags(id),
		PRIMARY KEY (media_id, tag_id)
	);
	CREATE INDEX IF NOT EXISTS idx_media_tags_tag ON media_tags(tag_id);

	CREATE TABLE IF NOT EXISTS person_media (
		media_id INTEGER NOT NULL REFERENCES media_files(id),
		person_id INTEGER NOT NULL REFERENCES persons(id),
		PRIMARY KEY (media_id, person_id)
	);
	CREATE INDEX IF NOT EXISTS idx_person_media_person ON person_media(person_id);

	-- Audit log (tracks all mutations)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		subject TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_subject ON audit_log(subject);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return unavailable("creating schema", err)
	}
	r.logger.Debug("schema ready", "path", r.path)
	return nil
}

// Person methods.

// SavePerson inserts a person and assigns its id.
func (r *Repository) SavePerson(ctx context.Context, person *entities.Person) error {
	if person.CreatedAt.IsZero() {
		person.CreatedAt = timeNow()
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO persons (name, created_at) VALUES (?, ?)`,
		person.Name, person.CreatedAt,
	)
	if err != nil {
		return unavailable("saving person", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return unavailable("reading person id", err)
	}
	person.ID = id
	return nil
}

// FindPersonByID finds a person by id. Returns nil if absent.
func (r *Repository) FindPersonByID(ctx context.Context, personID int64) (*entities.Person, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM persons WHERE id = ?`, personID)

	var p entities.Person
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("scanning person", err)
	}
	return &p, nil
}

// FindPersonsByName returns every person with exactly this name, by id.
func (r *Repository) FindPersonsByName(ctx context.Context, name string) ([]entities.Person, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM persons WHERE name = ? ORDER BY id`, name)
	if err != nil {
		return nil, unavailable("querying persons", err)
	}
	defer rows.Close()

	var people []entities.Person
	for rows.Next() {
		var p entities.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, unavailable("scanning person", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating persons", err)
	}
	return people, nil
}

// SavePersonAttributes upserts attributes by key in one transaction.
func (r *Repository) SavePersonAttributes(ctx context.Context, personID int64, attrs []entities.Attribute) error {
	return r.upsertAttributes(ctx, "person_attributes", "person_id", personID, attrs)
}

// FindPersonAttributes lists a person's attributes ordered by key.
func (r *Repository) FindPersonAttributes(ctx context.Context, personID int64) ([]entities.Attribute, error) {
	return r.queryAttributes(ctx, "person_attributes", "person_id", personID)
}

// SaveAnnotation appends a note or reference.
func (r *Repository) SaveAnnotation(ctx context.Context, a *entities.Annotation) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = timeNow()
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO annotations (person_id, kind, text, created_at) VALUES (?, ?, ?, ?)`,
		a.PersonID, string(a.Kind), a.Text, a.CreatedAt,
	)
	if err != nil {
		return unavailable("saving annotation", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return unavailable("reading annotation id", err)
	}
	a.ID = id
	return nil
}

// FindAnnotations lists a person's notes and references in insertion order.
func (r *Repository) FindAnnotations(ctx context.Context, personID int64) ([]entities.Annotation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, person_id, kind, text, created_at
		FROM annotations
		WHERE person_id = ?
		ORDER BY id
	`, personID)
	if err != nil {
		return nil, unavailable("querying annotations", err)
	}
	defer rows.Close()

	result := []entities.Annotation{}
	for rows.Next() {
		var a entities.Annotation
		var kind string
		if err := rows.Scan(&a.ID, &a.PersonID, &kind, &a.Text, &a.CreatedAt); err != nil {
			return nil, unavailable("scanning annotation", err)
		}
		a.Kind = entities.AnnotationKind(kind)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating annotations", err)
	}
	return result, nil
}

// Graph methods.

// ResolveParents returns the ids of a person's parents.
func (r *Repository) ResolveParents(ctx context.Context, personID int64) ([]int64, error) {
	return r.queryIDs(ctx, "resolving parents",
		`SELECT parent_id FROM parent_child WHERE child_id = ? ORDER BY parent_id`, personID)
}

// ResolveChildren returns the ids of a person's children.
func (r *Repository) ResolveChildren(ctx context.Context, personID int64) ([]int64, error) {
	return r.queryIDs(ctx, "resolving children",
		`SELECT child_id FROM parent_child WHERE parent_id = ? ORDER BY child_id`, personID)
}

// AddParentChildEdge checks and inserts an edge inside one immediate
// transaction, so concurrent writers cannot both pass the parent-count or
// cycle checks.
func (r *Repository) AddParentChildEdge(ctx context.Context, edge entities.ParentChildEdge) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, unavailable("beginning transaction", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parent_child WHERE parent_id = ? AND child_id = ?`,
		edge.ParentID, edge.ChildID,
	).Scan(&exists)
	if err != nil {
		return false, unavailable("checking existing edge", err)
	}
	if exists > 0 {
		return false, nil
	}

	var parents int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parent_child WHERE child_id = ?`, edge.ChildID,
	).Scan(&parents)
	if err != nil {
		return false, unavailable("counting parents", err)
	}
	if parents >= entities.MaxParents {
		r.logger.Debug("edge rejected", "parent", edge.ParentID, "child", edge.ChildID, "reason", "too many parents")
		return false, ports.ErrTooManyParents
	}

	// The child may not be the parent or one of the parent's ancestors.
	var cycle int
	err = tx.QueryRowContext(ctx, `
		WITH RECURSIVE ancestors(id) AS (
			SELECT ?
			UNION
			SELECT pc.parent_id
			FROM parent_child pc
			JOIN ancestors a ON pc.child_id = a.id
		)
		SELECT COUNT(*) FROM ancestors WHERE id = ?
	`, edge.ParentID, edge.ChildID).Scan(&cycle)
	if err != nil {
		return false, unavailable("checking ancestry", err)
	}
	if cycle > 0 {
		r.logger.Debug("edge rejected", "parent", edge.ParentID, "child", edge.ChildID, "reason", "cycle")
		return false, ports.ErrCycle
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO parent_child (parent_id, child_id) VALUES (?, ?)`,
		edge.ParentID, edge.ChildID,
	); err != nil {
		return false, unavailable("inserting edge", err)
	}

	if err := tx.Commit(); err != nil {
		return false, unavailable("committing edge", err)
	}
	return true, nil
}

// Partner methods.

// SavePartnerEvent appends a partner event and assigns its sequence.
func (r *Repository) SavePartnerEvent(ctx context.Context, event *entities.PartnerEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = timeNow()
	}
	a, b := entities.NormalizePair(event.PersonA, event.PersonB)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO partner_events (person_a, person_b, type, created_at) VALUES (?, ?, ?, ?)`,
		a, b, string(event.Type), event.CreatedAt,
	)
	if err != nil {
		return unavailable("saving partner event", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return unavailable("reading partner event sequence", err)
	}
	event.PersonA, event.PersonB, event.Sequence = a, b, seq
	return nil
}

// LatestPartnerEventType returns the type of the most recent event for the pair.
func (r *Repository) LatestPartnerEventType(ctx context.Context, a, b int64) (*entities.PartnerEventType, error) {
	low, high := entities.NormalizePair(a, b)
	var typ string
	err := r.db.QueryRowContext(ctx, `
		SELECT type FROM partner_events
		WHERE person_a = ? AND person_b = ?
		ORDER BY seq DESC
		LIMIT 1
	`, low, high).Scan(&typ)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("finding partner status", err)
	}
	t := entities.PartnerEventType(typ)
	return &t, nil
}

// Media methods.

// SaveMediaFile inserts a media file. Returns ErrDuplicate if the location
// is already archived.
func (r *Repository) SaveMediaFile(ctx context.Context, file *entities.MediaFile) error {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = timeNow()
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO media_files (location, created_at) VALUES (?, ?)
		ON CONFLICT(location) DO NOTHING
	`, file.Location, file.CreatedAt)
	if err != nil {
		return unavailable("saving media file", err)
	}
	if err := insertedOrDuplicate(result); err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return unavailable("reading media id", err)
	}
	file.ID = id
	return nil
}

// FindMediaFileByLocation finds a media file by exact location. Returns nil if absent.
func (r *Repository) FindMediaFileByLocation(ctx context.Context, location string) (*entities.MediaFile, error) {
	return r.findMediaFile(ctx, `SELECT id, location, created_at FROM media_files WHERE location = ?`, location)
}

// FindMediaFileByID finds a media file by id. Returns nil if absent.
func (r *Repository) FindMediaFileByID(ctx context.Context, mediaID int64) (*entities.MediaFile, error) {
	return r.findMediaFile(ctx, `SELECT id, location, created_at FROM media_files WHERE id = ?`, mediaID)
}

func (r *Repository) findMediaFile(ctx context.Context, query string, arg any) (*entities.MediaFile, error) {
	var m entities.MediaFile
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&m.ID, &m.Location, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("scanning media file", err)
	}
	return &m, nil
}

// SaveMediaAttributes upserts media attributes by key.
func (r *Repository) SaveMediaAttributes(ctx context.Context, mediaID int64, attrs []entities.Attribute) error {
	return r.upsertAttributes(ctx, "media_attributes", "media_id", mediaID, attrs)
}

// FindMediaAttributes lists a media file's attributes ordered by key.
func (r *Repository) FindMediaAttributes(ctx context.Context, mediaID int64) ([]entities.Attribute, error) {
	return r.queryAttributes(ctx, "media_attributes", "media_id", mediaID)
}

// TagMedia links a tag to a media file, creating the tag if needed.
func (r *Repository) TagMedia(ctx context.Context, mediaID int64, tag string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, tag,
	); err != nil {
		return unavailable("saving tag", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO media_tags (media_id, tag_id)
		SELECT ?, id FROM tags WHERE name = ?
		ON CONFLICT(media_id, tag_id) DO NOTHING
	`, mediaID, tag); err != nil {
		return unavailable("tagging media", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing tag", err)
	}
	return nil
}

// LinkPeopleToMedia records that people appear in a media file.
func (r *Repository) LinkPeopleToMedia(ctx context.Context, mediaID int64, personIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO person_media (media_id, person_id) VALUES (?, ?)
		ON CONFLICT(media_id, person_id) DO NOTHING
	`)
	if err != nil {
		return unavailable("preparing link statement", err)
	}
	defer stmt.Close()

	for _, id := range personIDs {
		if _, err := stmt.ExecContext(ctx, mediaID, id); err != nil {
			return unavailable("linking person to media", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing links", err)
	}
	return nil
}

// ListTags lists the tag vocabulary ordered by name.
func (r *Repository) ListTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, unavailable("querying tags", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("scanning tag", err)
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating tags", err)
	}
	return tags, nil
}

// MediaByTag returns ids of media carrying the tag.
func (r *Repository) MediaByTag(ctx context.Context, tag string) ([]int64, error) {
	return r.queryIDs(ctx, "finding media by tag", `
		SELECT mt.media_id
		FROM media_tags mt
		JOIN tags t ON t.id = mt.tag_id
		WHERE t.name = ?
		ORDER BY mt.media_id
	`, tag)
}

// MediaByLocationSubstring returns ids of media whose location attribute
// contains text. LIKE wildcards in text are matched literally.
func (r *Repository) MediaByLocationSubstring(ctx context.Context, text string) ([]int64, error) {
	return r.queryIDs(ctx, "finding media by location", `
		SELECT media_id
		FROM media_attributes
		WHERE key = ? AND value LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY media_id
	`, entities.LocationAttributeKey, escapeLike(text))
}

// MediaForPerson returns ids of media the person appears in.
func (r *Repository) MediaForPerson(ctx context.Context, personID int64) ([]int64, error) {
	return r.queryIDs(ctx, "finding media for person",
		`SELECT media_id FROM person_media WHERE person_id = ? ORDER BY media_id`, personID)
}

// MediaDateAttribute returns the parsed "date" attribute, or nil if the file
// has none. A stored value that no longer parses is a data integrity error.
func (r *Repository) MediaDateAttribute(ctx context.Context, mediaID int64) (*entities.PartialDate, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM media_attributes WHERE media_id = ? AND key = ?`,
		mediaID, entities.DateAttributeKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("reading media date", err)
	}

	d, err := entities.ParsePartialDate(value)
	if err != nil {
		return nil, fmt.Errorf("%w: media %d: %w", ports.ErrDataIntegrity, mediaID, err)
	}
	return &d, nil
}

// MediaLocation returns the file location of a media file.
func (r *Repository) MediaLocation(ctx context.Context, mediaID int64) (string, error) {
	var location string
	err := r.db.QueryRowContext(ctx,
		`SELECT location FROM media_files WHERE id = ?`, mediaID,
	).Scan(&location)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: media file %d does not exist", ports.ErrDataIntegrity, mediaID)
	}
	if err != nil {
		return "", unavailable("reading media location", err)
	}
	return location, nil
}

// Audit log methods.

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, subject string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var subjectPtr sql.NullString
	if subject != "" {
		subjectPtr = sql.NullString{String: subject, Valid: true}
	}

	query := `INSERT INTO audit_log (action, subject, details, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, subjectPtr, detailsJSON, timeNow())
	if err != nil {
		return unavailable("logging action", err)
	}
	return nil
}

// FindAuditLogByAction finds audit log entries by action type, newest
// first. An empty action matches every entry.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, subject, details, created_at
		FROM audit_log
		WHERE ? = '' OR action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("querying audit log", err)
	}
	defer rows.Close()

	// Use limit parameter as capacity hint if available
	var entries []entities.AuditEntry
	if len(args) > 0 {
		if limit, ok := args[len(args)-1].(int); ok && limit > 0 {
			entries = make([]entities.AuditEntry, 0, limit)
		}
	}

	for rows.Next() {
		var entry entities.AuditEntry
		var subject, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&subject,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, unavailable("scanning audit entry", err)
		}

		entry.Subject = subject.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating audit log", err)
	}
	return entries, nil
}

// queryIDs runs a query returning a single integer column.
func (r *Repository) queryIDs(ctx context.Context, op, query string, args ...any) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, unavailable(op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return ids, nil
}

// upsertAttributes writes attributes for one owner row in a transaction.
// table and ownerCol are fixed by the callers.
func (r *Repository) upsertAttributes(ctx context.Context, table, ownerCol string, ownerID int64, attrs []entities.Attribute) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, key, value) VALUES (?, ?, ?)
		ON CONFLICT(%s, key) DO UPDATE SET value = excluded.value
	`, table, ownerCol, ownerCol)
	for _, a := range attrs {
		if _, err := tx.ExecContext(ctx, query, ownerID, a.Key, a.Value); err != nil {
			return unavailable("saving attribute "+a.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing attributes", err)
	}
	return nil
}

// queryAttributes reads and types the attributes of one owner row.
func (r *Repository) queryAttributes(ctx context.Context, table, ownerCol string, ownerID int64) ([]entities.Attribute, error) {
	query := fmt.Sprintf(`SELECT key, value FROM %s WHERE %s = ? ORDER BY key`, table, ownerCol)
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, unavailable("querying attributes", err)
	}
	defer rows.Close()

	attrs := []entities.Attribute{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, unavailable("scanning attribute", err)
		}
		attr, err := entities.NewAttribute(key, value)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q: %w", ports.ErrDataIntegrity, key, err)
		}
		attrs = append(attrs, attr)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating attributes", err)
	}
	return attrs, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
