// Package adapter exposes one backend-agnostic repository per entity family.
// Each call asks the flag resolver which backend is authoritative, runs the
// query there and returns the canonical entity.
package adapter

import (
	"time"

	"go-recruitment-datalayer/internal/featureflag"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/pkg/logger"
	"go-recruitment-datalayer/pkg/validation"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const defaultFanOut = 8

// Deps is shared by every adapter. Legacy and Next may be nil when the
// process never routes to that backend.
type Deps struct {
	Flags    featureflag.Resolver
	Legacy   *gorm.DB
	Next     baas.Client
	Log      *logger.Logger
	Validate *validator.Validate
	// FanOut bounds concurrent backend calls issued by a single operation.
	FanOut int
	Now    func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Flags == nil {
		d.Flags = featureflag.NewStatic()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Validate == nil {
		d.Validate = validation.New()
	}
	if d.FanOut < 1 {
		d.FanOut = defaultFanOut
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// now is truncated to the precision both backends store.
func (d Deps) now() time.Time {
	return d.Now().UTC().Truncate(time.Microsecond)
}
