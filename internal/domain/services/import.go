package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool // Validate without saving
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	BatchID  string
	Imported int
	Skipped  int // links that were already recorded
	Errors   []ImportError
}

// ImportService applies parsed dataset records through the directory.
type ImportService struct {
	directory *DirectoryService
	validate  *validator.Validate
	logger    *log.Logger
}

// NewImportService creates a new import service.
func NewImportService(directory *DirectoryService, logger *log.Logger) *ImportService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &ImportService{
		directory: directory,
		validate:  v,
		logger:    logger,
	}
}

// Import validates every record, then applies the valid ones in file order.
// Records that fail validation or application are reported in the result;
// only a storage failure aborts the import.
func (s *ImportService) Import(ctx context.Context, records []parsers.RawRecord, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{BatchID: uuid.New().String()}

	valid, validationErrors, err := s.validateRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	result.Errors = validationErrors

	s.logger.Debug("validated import records", "batch", result.BatchID,
		"records", len(records), "valid", len(valid), "invalid", len(validationErrors))

	if opts.DryRun || len(valid) == 0 {
		if opts.DryRun {
			result.Imported = len(valid)
		}
		return result, nil
	}

	ctx = WithBatchID(ctx, result.BatchID)
	a := &applier{
		directory: s.directory,
		people:    make(map[string]entities.Person),
		media:     make(map[string]entities.MediaFile),
	}
	for i := range valid {
		rec := &valid[i]
		skipped, err := a.apply(ctx, rec)
		switch {
		case err == nil && skipped:
			result.Skipped++
		case err == nil:
			result.Imported++
		case errors.Is(err, ports.ErrCollaboratorUnavailable):
			return nil, fmt.Errorf("line %d: %w", rec.LineNum, err)
		default:
			result.Errors = append(result.Errors, ImportError{
				Line:    rec.LineNum,
				Field:   "kind",
				Value:   rec.Kind,
				Message: err.Error(),
			})
		}
	}

	s.logger.Info("import finished", "batch", result.BatchID,
		"imported", result.Imported, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}

// validateRecords checks each record's shape and references. Person keys
// must be declared earlier in the file; media must be declared in the file
// or already archived.
func (s *ImportService) validateRecords(ctx context.Context, records []parsers.RawRecord) ([]parsers.RawRecord, []ImportError, error) {
	valid := make([]parsers.RawRecord, 0, len(records))
	var errs []ImportError

	personKeys := make(map[string]bool)
	mediaKeys := make(map[string]bool)

	for i := range records {
		raw := records[i]
		if raw.LineNum == 0 {
			raw.LineNum = i + 1
		}
		raw.Kind = strings.ToLower(strings.TrimSpace(raw.Kind))
		raw.Subject = strings.TrimSpace(raw.Subject)
		raw.Object = strings.TrimSpace(raw.Object)

		ie, err := s.validateRecord(ctx, &raw, personKeys, mediaKeys)
		if err != nil {
			return nil, nil, err
		}
		if ie != nil {
			errs = append(errs, *ie)
			continue
		}

		switch raw.Kind {
		case parsers.KindPerson:
			personKeys[raw.Subject] = true
		case parsers.KindMedia:
			mediaKeys[raw.Subject] = true
		}
		valid = append(valid, raw)
	}

	return valid, errs, nil
}

// validateRecord returns an ImportError for an invalid record, or an error
// if a lookup needed for validation failed.
func (s *ImportService) validateRecord(ctx context.Context, raw *parsers.RawRecord, personKeys, mediaKeys map[string]bool) (*ImportError, error) {
	if err := s.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ImportError{
				Line:    raw.LineNum,
				Field:   fe.Field(),
				Value:   fmt.Sprint(fe.Value()),
				Message: validationMessage(fe),
			}, nil
		}
		return &ImportError{Line: raw.LineNum, Message: err.Error()}, nil
	}

	missing := func(field string) *ImportError {
		return &ImportError{Line: raw.LineNum, Field: field,
			Message: fmt.Sprintf("missing required field for %s: %s", raw.Kind, field)}
	}
	unknownPerson := func(field, key string) *ImportError {
		return &ImportError{Line: raw.LineNum, Field: field, Value: key,
			Message: fmt.Sprintf("unknown person key %q", key)}
	}

	switch raw.Kind {
	case parsers.KindPerson:
		if personKeys[raw.Subject] {
			return &ImportError{Line: raw.LineNum, Field: "subject", Value: raw.Subject,
				Message: fmt.Sprintf("person key %q declared twice", raw.Subject)}, nil
		}
		if entities.IsBlank(raw.Value) {
			return missing("value"), nil
		}

	case parsers.KindChild, parsers.KindMarriage, parsers.KindDivorce:
		if raw.Object == "" {
			return missing("object"), nil
		}
		if !personKeys[raw.Subject] {
			return unknownPerson("subject", raw.Subject), nil
		}
		if !personKeys[raw.Object] {
			return unknownPerson("object", raw.Object), nil
		}

	case parsers.KindMedia:
		if mediaKeys[raw.Subject] {
			return &ImportError{Line: raw.LineNum, Field: "subject", Value: raw.Subject,
				Message: fmt.Sprintf("media file %q declared twice", raw.Subject)}, nil
		}

	case parsers.KindTag, parsers.KindAppears, parsers.KindMediaAttribute:
		known, err := s.mediaKnown(ctx, raw.Subject, mediaKeys)
		if err != nil {
			return nil, err
		}
		if !known {
			return &ImportError{Line: raw.LineNum, Field: "subject", Value: raw.Subject,
				Message: fmt.Sprintf("unknown media file %q", raw.Subject)}, nil
		}
		switch raw.Kind {
		case parsers.KindTag:
			if entities.IsBlank(raw.Value) {
				return missing("value"), nil
			}
		case parsers.KindAppears:
			if raw.Object == "" {
				return missing("object"), nil
			}
			if !personKeys[raw.Object] {
				return unknownPerson("object", raw.Object), nil
			}
		default:
			if ie := validateAttributeRecord(raw); ie != nil {
				return ie, nil
			}
		}

	case parsers.KindAttribute:
		if !personKeys[raw.Subject] {
			return unknownPerson("subject", raw.Subject), nil
		}
		if ie := validateAttributeRecord(raw); ie != nil {
			return ie, nil
		}

	case parsers.KindNote, parsers.KindReference:
		if !personKeys[raw.Subject] {
			return unknownPerson("subject", raw.Subject), nil
		}
		if entities.IsBlank(raw.Value) {
			return missing("value"), nil
		}
	}

	return nil, nil
}

func (s *ImportService) mediaKnown(ctx context.Context, location string, mediaKeys map[string]bool) (bool, error) {
	if mediaKeys[location] {
		return true, nil
	}
	_, err := s.directory.FindMediaFile(ctx, location)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ports.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("looking up media file %q: %w", location, err)
	}
}

func validateAttributeRecord(raw *parsers.RawRecord) *ImportError {
	if entities.IsBlank(raw.Key) {
		return &ImportError{Line: raw.LineNum, Field: "key",
			Message: fmt.Sprintf("missing required field for %s: key", raw.Kind)}
	}
	if entities.IsBlank(raw.Value) {
		return &ImportError{Line: raw.LineNum, Field: "value",
			Message: fmt.Sprintf("missing required field for %s: value", raw.Kind)}
	}
	if _, err := entities.NewAttribute(raw.Key, raw.Value); err != nil {
		return &ImportError{Line: raw.LineNum, Field: "value", Value: raw.Value, Message: err.Error()}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field: " + fe.Field()
	case "oneof":
		return fmt.Sprintf("invalid %s %q (valid: %s)", fe.Field(), fe.Value(),
			strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// applier carries the file-local key bindings while records are applied.
type applier struct {
	directory *DirectoryService
	people    map[string]entities.Person
	media     map[string]entities.MediaFile
}

// apply records one validated record. It reports true when the record was
// already present and nothing changed.
func (a *applier) apply(ctx context.Context, rec *parsers.RawRecord) (bool, error) {
	switch rec.Kind {
	case parsers.KindPerson:
		p, err := a.directory.AddPerson(ctx, rec.Value)
		if err != nil {
			return false, err
		}
		a.people[rec.Subject] = *p
		return false, nil

	case parsers.KindMedia:
		m, err := a.directory.AddMediaFile(ctx, rec.Subject)
		if err != nil {
			return false, err
		}
		a.media[rec.Subject] = *m
		return false, nil

	case parsers.KindChild:
		parent, child, err := a.pair(rec)
		if err != nil {
			return false, err
		}
		added, err := a.directory.RecordChild(ctx, parent, child)
		return !added && err == nil, err

	case parsers.KindMarriage, parsers.KindDivorce:
		x, y, err := a.pair(rec)
		if err != nil {
			return false, err
		}
		if rec.Kind == parsers.KindMarriage {
			return false, a.directory.RecordPartnering(ctx, x, y)
		}
		return false, a.directory.RecordDissolution(ctx, x, y)

	case parsers.KindAttribute:
		p, err := a.person(rec.Subject)
		if err != nil {
			return false, err
		}
		return false, a.directory.RecordAttributes(ctx, p, map[string]string{rec.Key: rec.Value})

	case parsers.KindNote, parsers.KindReference:
		p, err := a.person(rec.Subject)
		if err != nil {
			return false, err
		}
		if rec.Kind == parsers.KindNote {
			return false, a.directory.RecordNote(ctx, p, rec.Value)
		}
		return false, a.directory.RecordReference(ctx, p, rec.Value)

	case parsers.KindTag, parsers.KindAppears, parsers.KindMediaAttribute:
		m, err := a.mediaFile(ctx, rec.Subject)
		if err != nil {
			return false, err
		}
		switch rec.Kind {
		case parsers.KindTag:
			return false, a.directory.TagMedia(ctx, m, rec.Value)
		case parsers.KindAppears:
			p, err := a.person(rec.Object)
			if err != nil {
				return false, err
			}
			return false, a.directory.PeopleInMedia(ctx, m, []entities.Person{p})
		default:
			return false, a.directory.RecordMediaAttributes(ctx, m, map[string]string{rec.Key: rec.Value})
		}
	}

	return false, fmt.Errorf("%w: unsupported record kind %q", ports.ErrInvalidArgument, rec.Kind)
}

func (a *applier) person(key string) (entities.Person, error) {
	p, ok := a.people[key]
	if !ok {
		return entities.Person{}, fmt.Errorf("%w: person %q was not imported", ports.ErrInvalidArgument, key)
	}
	return p, nil
}

func (a *applier) pair(rec *parsers.RawRecord) (entities.Person, entities.Person, error) {
	x, err := a.person(rec.Subject)
	if err != nil {
		return entities.Person{}, entities.Person{}, err
	}
	y, err := a.person(rec.Object)
	if err != nil {
		return entities.Person{}, entities.Person{}, err
	}
	return x, y, nil
}

func (a *applier) mediaFile(ctx context.Context, location string) (entities.MediaFile, error) {
	if m, ok := a.media[location]; ok {
		return m, nil
	}
	m, err := a.directory.FindMediaFile(ctx, location)
	if err != nil {
		return entities.MediaFile{}, err
	}
	a.media[location] = *m
	return *m, nil
}
