// Package inmem keeps the student Document in memory, encoded exactly as the file store would write it.
package inmem

import (
	"context"
	"sync"

	"github.com/trezcool/riskwatch/core/risk"
)

type StudentRepository struct {
	mutex sync.RWMutex
	data  []byte // nil means "nothing persisted yet"
	saves int
}

var _ risk.Repository = (*StudentRepository)(nil)

func NewStudentRepository() *StudentRepository {
	return &StudentRepository{}
}

// NewStudentRepositoryFrom starts with data as the persisted payload (not validated).
func NewStudentRepositoryFrom(data []byte) *StudentRepository {
	return &StudentRepository{data: append([]byte(nil), data...)}
}

func (repo *StudentRepository) Load(_ context.Context) (risk.Document, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	if repo.data == nil {
		return risk.NewDocument(), nil
	}
	return risk.DecodeDocument(repo.data)
}

func (repo *StudentRepository) Save(_ context.Context, doc risk.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.data = data
	repo.saves++
	return nil
}

// Data returns a copy of the persisted payload.
func (repo *StudentRepository) Data() []byte {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return append([]byte(nil), repo.data...)
}

// Saves returns how many times the document has been saved.
func (repo *StudentRepository) Saves() int {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return repo.saves
}
