package tile

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/pspoerri/tilewarp/internal/coord"
	"github.com/pspoerri/tilewarp/internal/pyramid"
	"github.com/pspoerri/tilewarp/internal/raster"
)

// Status is the result of one tile.
type Status string

const (
	StatusConverted Status = "converted"
	StatusFailed    Status = "failed"
)

// Failure kinds, stable strings for retry tooling.
const (
	KindInvalidGrid      = "invalid_grid"
	KindProjectionDomain = "projection_domain"
	KindIORead           = "io_read"
	KindIOWrite          = "io_write"
	KindUnknown          = "unknown"
)

// Outcome records what happened to one tile.
type Outcome struct {
	Address pyramid.Address `json:"-" yaml:"-"`
	Tile    string          `json:"tile" yaml:"tile"`
	Status  Status          `json:"status" yaml:"status"`
	Err     string          `json:"error,omitempty" yaml:"error,omitempty"`
	Kind    string          `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Classify maps a tile error to its failure kind.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, raster.ErrInvalidGrid):
		return KindInvalidGrid
	case errors.Is(err, coord.ErrOutOfDomain):
		return KindProjectionDomain
	case errors.Is(err, ErrRead):
		return KindIORead
	case errors.Is(err, ErrWrite):
		return KindIOWrite
	default:
		return KindUnknown
	}
}

// Summary is the final account of a run.
type Summary struct {
	Total      int           `json:"total" yaml:"total"`
	Converted  int           `json:"converted" yaml:"converted"`
	Failed     int           `json:"failed" yaml:"failed"`
	OutputRoot string        `json:"output_root" yaml:"output_root"`
	Elapsed    time.Duration `json:"-" yaml:"-"`
	Outcomes   []Outcome     `json:"outcomes" yaml:"outcomes"`
}

// FailedAddresses lists the tiles that did not convert.
func (s Summary) FailedAddresses() []pyramid.Address {
	var out []pyramid.Address
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o.Address)
		}
	}
	return out
}

// Tracker collects tile outcomes. It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	outcomes  []Outcome
	converted int
	failed    int
	start     time.Time
	observer  func(Outcome)
}

// NewTracker returns a tracker that calls observer (if non-nil) for every
// recorded outcome. Observer calls are serialized.
func NewTracker(observer func(Outcome)) *Tracker {
	return &Tracker{start: time.Now(), observer: observer}
}

// Record stores the outcome of addr: converted when err is nil, failed otherwise.
func (t *Tracker) Record(addr pyramid.Address, err error) Outcome {
	o := Outcome{Address: addr, Tile: addr.String(), Status: StatusConverted}
	if err != nil {
		o.Status = StatusFailed
		o.Err = err.Error()
		o.Kind = Classify(err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = append(t.outcomes, o)
	if err != nil {
		t.failed++
	} else {
		t.converted++
	}
	if t.observer != nil {
		t.observer(o)
	}
	return o
}

// Finalize returns a summary of everything recorded so far, outcomes in
// zoom, x, y order.
func (t *Tracker) Finalize(outputRoot string) Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	outcomes := make([]Outcome, len(t.outcomes))
	copy(outcomes, t.outcomes)
	sort.Slice(outcomes, func(i, j int) bool {
		a, b := outcomes[i].Address, outcomes[j].Address
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Ext < b.Ext
	})

	return Summary{
		Total:      len(outcomes),
		Converted:  t.converted,
		Failed:     t.failed,
		OutputRoot: outputRoot,
		Elapsed:    time.Since(t.start),
		Outcomes:   outcomes,
	}
}
