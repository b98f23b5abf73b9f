package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// RelationalDB is an in-memory implementation of ports.RelationalDB.
// Setting Err makes every call fail with it; DetailErr fails only the media
// detail lookups used by the query engine.
type RelationalDB struct {
	Err       error
	DetailErr error

	mu          sync.Mutex
	persons     map[int64]entities.Person
	parents     map[int64][]int64
	children    map[int64][]int64
	personAttrs map[int64]map[string]entities.Attribute
	annotations []entities.Annotation
	partners    []entities.PartnerEvent
	media       map[int64]entities.MediaFile
	mediaAttrs  map[int64]map[string]entities.Attribute
	tags        map[string]map[int64]bool
	appearances map[int64]map[int64]bool
	audit       []entities.AuditEntry
	nextID      int64

	// ParentLookups counts ResolveParents calls per person.
	ParentLookups map[int64]int
}

// NewRelationalDB creates a new empty in-memory store.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		persons:       make(map[int64]entities.Person),
		parents:       make(map[int64][]int64),
		children:      make(map[int64][]int64),
		personAttrs:   make(map[int64]map[string]entities.Attribute),
		media:         make(map[int64]entities.MediaFile),
		mediaAttrs:    make(map[int64]map[string]entities.Attribute),
		tags:          make(map[string]map[int64]bool),
		appearances:   make(map[int64]map[int64]bool),
		ParentLookups: make(map[int64]int),
	}
}

func (m *RelationalDB) id() int64 {
	m.nextID++
	return m.nextID
}

// EnsureSchema is a no-op.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close is a no-op.
func (m *RelationalDB) Close() error {
	return nil
}

// LinkUnchecked inserts a parent-child edge without any validation, which
// lets tests build graphs the real store would refuse.
func (m *RelationalDB) LinkUnchecked(parentID, childID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parents[childID] = append(m.parents[childID], parentID)
	m.children[parentID] = append(m.children[parentID], childID)
}

// Graph methods.

// ResolveParents returns the ids of a person's parents.
func (m *RelationalDB) ResolveParents(_ context.Context, personID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.ParentLookups[personID]++
	return append([]int64(nil), m.parents[personID]...), nil
}

// ResolveChildren returns the ids of a person's children.
func (m *RelationalDB) ResolveChildren(_ context.Context, personID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]int64(nil), m.children[personID]...), nil
}

// FindPersonByID finds a person by id.
func (m *RelationalDB) FindPersonByID(_ context.Context, personID int64) (*entities.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.persons[personID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// LatestPartnerEventType returns the most recent event type for the pair.
func (m *RelationalDB) LatestPartnerEventType(_ context.Context, a, b int64) (*entities.PartnerEventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	low, high := entities.NormalizePair(a, b)
	var latest *entities.PartnerEvent
	for i := range m.partners {
		e := &m.partners[i]
		if e.PersonA == low && e.PersonB == high && (latest == nil || e.Sequence > latest.Sequence) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	t := latest.Type
	return &t, nil
}

// Media catalog methods.

// MediaByTag returns ids of media carrying the tag.
func (m *RelationalDB) MediaByTag(_ context.Context, tag string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return sortedKeys(m.tags[tag]), nil
}

// MediaByLocationSubstring matches the location attribute case-insensitively.
func (m *RelationalDB) MediaByLocationSubstring(_ context.Context, text string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	needle := strings.ToLower(text)
	var ids []int64
	for id, attrs := range m.mediaAttrs {
		loc, ok := attrs[entities.LocationAttributeKey]
		if ok && strings.Contains(strings.ToLower(loc.Value), needle) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MediaForPerson returns ids of media the person appears in.
func (m *RelationalDB) MediaForPerson(_ context.Context, personID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var ids []int64
	for mediaID, people := range m.appearances {
		if people[personID] {
			ids = append(ids, mediaID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MediaDateAttribute returns the "date" attribute of a media file.
func (m *RelationalDB) MediaDateAttribute(_ context.Context, mediaID int64) (*entities.PartialDate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DetailErr != nil {
		return nil, m.DetailErr
	}
	attr, ok := m.mediaAttrs[mediaID][entities.DateAttributeKey]
	if !ok || attr.Date == nil {
		return nil, nil
	}
	d := *attr.Date
	return &d, nil
}

// MediaLocation returns the file location of a media file.
func (m *RelationalDB) MediaLocation(_ context.Context, mediaID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.DetailErr != nil {
		return "", m.DetailErr
	}
	f, ok := m.media[mediaID]
	if !ok {
		return "", ports.ErrDataIntegrity
	}
	return f.Location, nil
}

// Directory methods.

// SavePerson inserts a person and assigns its id.
func (m *RelationalDB) SavePerson(_ context.Context, person *entities.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	person.ID = m.id()
	m.persons[person.ID] = *person
	return nil
}

// FindPersonsByName returns every person with exactly this name.
func (m *RelationalDB) FindPersonsByName(_ context.Context, name string) ([]entities.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Person
	for _, p := range m.persons {
		if p.Name == name {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SavePersonAttributes upserts attributes by key.
func (m *RelationalDB) SavePersonAttributes(_ context.Context, personID int64, attrs []entities.Attribute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	upsert(m.personAttrs, personID, attrs)
	return nil
}

// FindPersonAttributes lists a person's attributes ordered by key.
func (m *RelationalDB) FindPersonAttributes(_ context.Context, personID int64) ([]entities.Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return attributeList(m.personAttrs[personID]), nil
}

// SaveAnnotation appends a note or reference.
func (m *RelationalDB) SaveAnnotation(_ context.Context, a *entities.Annotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	a.ID = m.id()
	m.annotations = append(m.annotations, *a)
	return nil
}

// FindAnnotations lists a person's annotations in insertion order.
func (m *RelationalDB) FindAnnotations(_ context.Context, personID int64) ([]entities.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := []entities.Annotation{}
	for _, a := range m.annotations {
		if a.PersonID == personID {
			result = append(result, a)
		}
	}
	return result, nil
}

// AddParentChildEdge checks and inserts an edge under the store lock.
func (m *RelationalDB) AddParentChildEdge(_ context.Context, edge entities.ParentChildEdge) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}

	existing := m.parents[edge.ChildID]
	for _, p := range existing {
		if p == edge.ParentID {
			return false, nil
		}
	}
	if len(existing) >= entities.MaxParents {
		return false, ports.ErrTooManyParents
	}
	if m.isAncestor(edge.ChildID, edge.ParentID) {
		return false, ports.ErrCycle
	}

	m.parents[edge.ChildID] = append(existing, edge.ParentID)
	m.children[edge.ParentID] = append(m.children[edge.ParentID], edge.ChildID)
	return true, nil
}

// isAncestor reports whether candidate is person or one of their ancestors.
func (m *RelationalDB) isAncestor(candidate, person int64) bool {
	seen := map[int64]bool{person: true}
	stack := []int64{person}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == candidate {
			return true
		}
		for _, p := range m.parents[id] {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return false
}

// SavePartnerEvent appends an event and assigns its sequence.
func (m *RelationalDB) SavePartnerEvent(_ context.Context, event *entities.PartnerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	event.Sequence = m.id()
	m.partners = append(m.partners, *event)
	return nil
}

// SaveMediaFile inserts a media file with a unique location.
func (m *RelationalDB) SaveMediaFile(_ context.Context, file *entities.MediaFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, f := range m.media {
		if f.Location == file.Location {
			return ports.ErrDuplicate
		}
	}
	file.ID = m.id()
	m.media[file.ID] = *file
	return nil
}

// FindMediaFileByLocation finds a media file by exact location.
func (m *RelationalDB) FindMediaFileByLocation(_ context.Context, location string) (*entities.MediaFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, f := range m.media {
		if f.Location == location {
			return &f, nil
		}
	}
	return nil, nil
}

// FindMediaFileByID finds a media file by id.
func (m *RelationalDB) FindMediaFileByID(_ context.Context, mediaID int64) (*entities.MediaFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	f, ok := m.media[mediaID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// SaveMediaAttributes upserts media attributes by key.
func (m *RelationalDB) SaveMediaAttributes(_ context.Context, mediaID int64, attrs []entities.Attribute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	upsert(m.mediaAttrs, mediaID, attrs)
	return nil
}

// FindMediaAttributes lists a media file's attributes ordered by key.
func (m *RelationalDB) FindMediaAttributes(_ context.Context, mediaID int64) ([]entities.Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return attributeList(m.mediaAttrs[mediaID]), nil
}

// TagMedia links a tag to a media file.
func (m *RelationalDB) TagMedia(_ context.Context, mediaID int64, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.tags[tag] == nil {
		m.tags[tag] = make(map[int64]bool)
	}
	m.tags[tag][mediaID] = true
	return nil
}

// LinkPeopleToMedia records that people appear in a media file.
func (m *RelationalDB) LinkPeopleToMedia(_ context.Context, mediaID int64, personIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.appearances[mediaID] == nil {
		m.appearances[mediaID] = make(map[int64]bool)
	}
	for _, id := range personIDs {
		m.appearances[mediaID][id] = true
	}
	return nil
}

// ListTags lists the tag vocabulary ordered by name.
func (m *RelationalDB) ListTags(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	tags := make([]string, 0, len(m.tags))
	for t := range m.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

// Audit log methods.

// LogAction appends an audit entry.
func (m *RelationalDB) LogAction(_ context.Context, action string, subject string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.audit = append(m.audit, entities.AuditEntry{
		ID:        int64(len(m.audit) + 1),
		Action:    action,
		Subject:   subject,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLogByAction returns entries newest first.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.audit) - 1; i >= 0 && len(result) < limit; i-- {
		if action == "" || m.audit[i].Action == action {
			result = append(result, m.audit[i])
		}
	}
	return result, nil
}

func upsert(store map[int64]map[string]entities.Attribute, id int64, attrs []entities.Attribute) {
	if store[id] == nil {
		store[id] = make(map[string]entities.Attribute)
	}
	for _, a := range attrs {
		store[id][a.Key] = a
	}
}

func attributeList(attrs map[string]entities.Attribute) []entities.Attribute {
	result := make([]entities.Attribute, 0, len(attrs))
	for _, a := range attrs {
		result = append(result, a)
	}
	entities.SortAttributes(result)
	return result
}

func sortedKeys(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
