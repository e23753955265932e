package storage

import (
	"github.com/pkg/errors"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
	"github.com/trezcool/riskwatch/storage/inmem"
	"github.com/trezcool/riskwatch/storage/jsonfile"
)

// NewStudentRepository returns the risk.Repository selected by conf.Store.Driver.
func NewStudentRepository(conf *core.Config) (risk.Repository, error) {
	switch conf.Store.Driver {
	case core.StoreDriverFile, "":
		if conf.Store.Path == "" {
			return nil, errors.New("store.path is required by the file store")
		}
		return jsonfile.NewStudentRepository(conf.Store.Path), nil
	case core.StoreDriverMemory:
		return inmem.NewStudentRepository(), nil
	default:
		return nil, errors.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}
