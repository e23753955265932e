package risk

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/riskwatch/core"
)

type (
	// Repository loads and saves the whole Document; it is the only writer of persisted state.
	Repository interface {
		// Load returns an error caused by ErrCorruptData when the persisted payload does not parse.
		Load(ctx context.Context) (Document, error)
		Save(ctx context.Context, doc Document) error
	}

	// Service keeps the cached risk of every student it hands out consistent with the active Configuration.
	// Every operation is a full load -> compute -> save cycle; concurrent writers are not coordinated.
	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// load substitutes an empty document for a corrupt one; recovered reports the substitution.
// A recovered document must never be saved: it would overwrite the persisted data.
func (svc *Service) load(ctx context.Context) (doc Document, recovered bool, err error) {
	doc, err = svc.repo.Load(ctx)
	if err != nil {
		if errors.Cause(err) == ErrCorruptData {
			svc.logger.Warn("student data is corrupt; serving an empty collection", err)
			return NewDocument(), true, nil
		}
		return Document{}, false, errors.Wrap(err, "loading students")
	}
	return doc, false, nil
}

// fill evaluates every student whose cached risk can not be trusted and returns how many were filled.
func fill(students []Student, conf Configuration) int {
	var filled int
	for i := range students {
		if students[i].NeedsEvaluation(conf) {
			students[i].SetRisk(Evaluate(students[i], conf), conf)
			filled++
		}
	}
	return filled
}

// Query returns the filtered and sorted students, lazily filling missing or stale risks.
// The collection is saved once if anything was filled.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	doc, _, err := svc.load(ctx)
	if err != nil {
		return nil, err
	}
	if n := fill(doc.Students, doc.Config); n > 0 {
		svc.logger.Debug("filled student risks", map[string]interface{}{"count": n})
		if err := svc.repo.Save(ctx, doc); err != nil {
			return nil, errors.Wrap(err, "saving students")
		}
	}
	return filter.Apply(doc.Students), nil
}

// Get returns a single student, lazily filling its risk. The whole collection is saved only if it was filled.
func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	doc, _, err := svc.load(ctx)
	if err != nil {
		return Student{}, err
	}
	idx, ok := doc.Find(id)
	if !ok {
		return Student{}, ErrNotFound
	}
	if fill(doc.Students[idx:idx+1], doc.Config) > 0 {
		if err := svc.repo.Save(ctx, doc); err != nil {
			return Student{}, errors.Wrap(err, "saving students")
		}
	}
	return doc.Students[idx], nil
}

// Evaluate always re-evaluates one student and saves the collection.
func (svc *Service) Evaluate(ctx context.Context, id string) (Student, error) {
	doc, _, err := svc.load(ctx)
	if err != nil {
		return Student{}, err
	}
	idx, ok := doc.Find(id)
	if !ok {
		return Student{}, ErrNotFound
	}
	s := &doc.Students[idx]
	s.SetRisk(Evaluate(*s, doc.Config), doc.Config)
	if err := svc.repo.Save(ctx, doc); err != nil {
		return Student{}, errors.Wrap(err, "saving students")
	}
	return *s, nil
}

// Config returns the active Configuration (defaults applied).
func (svc *Service) Config(ctx context.Context) (Configuration, error) {
	doc, _, err := svc.load(ctx)
	if err != nil {
		return Configuration{}, err
	}
	return doc.Config, nil
}

// UpdateThresholds applies upd, bumps the configuration version, re-evaluates every student and saves everything.
// A legacy document is promoted to the wrapped shape. Nothing is saved when the persisted data is corrupt.
func (svc *Service) UpdateThresholds(ctx context.Context, upd ThresholdsUpdate) (Configuration, []Student, error) {
	doc, recovered, err := svc.load(ctx)
	if err != nil {
		return Configuration{}, nil, err
	}
	if upd.IsEmpty() {
		svc.logger.Debug("no thresholds given; re-evaluating under the current ones")
	}

	conf := upd.Apply(doc.Config)
	conf.Version = doc.Config.Version + 1
	if doc.Shape != ShapeWrapped {
		svc.logger.Debug("promoting student data", map[string]interface{}{"from": doc.Shape.String(), "to": ShapeWrapped.String()})
	}
	doc.SetConfig(conf)

	for i := range doc.Students {
		doc.Students[i].SetRisk(Evaluate(doc.Students[i], conf), conf)
	}
	if recovered {
		svc.logger.Warn("student data is corrupt; thresholds update not saved")
		return conf, doc.Students, nil
	}
	if err := svc.repo.Save(ctx, doc); err != nil {
		return Configuration{}, nil, errors.Wrap(err, "saving students")
	}

	svc.logger.Info("risk thresholds updated", map[string]interface{}{
		"attendanceRateThreshold": conf.AttendanceRateThreshold,
		"assignmentRateThreshold": conf.AssignmentRateThreshold,
		"failedContactsThreshold": conf.FailedContactsThreshold,
		"version":                 conf.Version,
		"students":                len(doc.Students),
	})
	return conf, doc.Students, nil
}
