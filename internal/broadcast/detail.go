package broadcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/nanovote/votewatch/internal/election"
	"github.com/nanovote/votewatch/internal/overview"
	"github.com/nanovote/votewatch/internal/reps"
)

// ErrNotFound is returned when detail is requested for a hash the
// election store has never seen.
var ErrNotFound = errors.New("no election data found")

// Detail is the external detail-formatter's contract: HTML templating and
// single-block formatting proper live outside this package, but this is
// the data they are handed.
type Detail struct {
	overview.Entry
	Votes        []election.Vote `json:"votes"`
	ExplorerLink string          `json:"explorer_link,omitempty"`
}

// DetailFormatter renders a Detail, e.g. into an HTML page. The core only
// depends on this interface; concrete HTML/JSON rendering is an external
// collaborator.
type DetailFormatter interface {
	Format(d Detail) (any, error)
}

// JSONFormatter is the minimal, in-scope default: it returns the Detail
// value itself, letting the caller's encoder serialize it directly. The
// httpapi handlers encode Detail and Record values themselves and do not
// call it.
type JSONFormatter struct{}

func (JSONFormatter) Format(d Detail) (any, error) { return d, nil }

// DetailSource builds Detail values for the single-block endpoints.
type DetailSource struct {
	store         *election.Store
	registry      *reps.Registry
	blockExplorer string
}

// NewDetailSource wires the election store and representative registry
// the on-demand endpoint reads.
func NewDetailSource(store *election.Store, registry *reps.Registry, blockExplorer string) *DetailSource {
	return &DetailSource{store: store, registry: registry, blockExplorer: blockExplorer}
}

// Get reads the election store and the current representative snapshot
// for hash, returning ErrNotFound if the hash is unknown.
func (d *DetailSource) Get(ctx context.Context, hash string) (Detail, error) {
	record, ok, err := d.store.Get(ctx, hash)
	if err != nil {
		return Detail{}, fmt.Errorf("broadcast: fetch %s: %w", hash, err)
	}
	if !ok {
		return Detail{}, ErrNotFound
	}

	snap := d.registry.Current()
	entry := overview.Transform(record, snap, d.registry.Aliases(), overview.DefaultTopFinalVoters)

	link := ""
	if d.blockExplorer != "" {
		link = d.blockExplorer + "/block/" + hash
	}

	return Detail{Entry: entry, Votes: record.Detail, ExplorerLink: link}, nil
}
