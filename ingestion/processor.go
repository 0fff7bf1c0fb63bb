// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/packvault/catalog"
	"github.com/poiesic/packvault/compose"
	"github.com/poiesic/packvault/core"
)

// State is the lifecycle position of one reference inside a run.
type State int

const (
	StatePending State = iota
	StateFetching
	StateSkipped
	StateComposing
	StateEmbedding
	StatePublishing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StatePending:    "pending",
	StateFetching:   "fetching",
	StateSkipped:    "skipped",
	StateComposing:  "composing",
	StateEmbedding:  "embedding",
	StatePublishing: "publishing",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// outcome is the terminal result of one reference or document.
type outcome int

const (
	outcomeNew outcome = iota
	outcomeExisting
	outcomeFetchFailed
	outcomePublishFailed
)

func (s *Stats) record(o outcome) {
	switch o {
	case outcomeNew:
		s.addNew()
	case outcomeExisting:
		s.addExisting()
	case outcomeFetchFailed:
		s.addFetchFailed()
	default:
		s.addPublishFailed()
	}
}

func (o *Outcomes) record(r outcome) {
	switch r {
	case outcomeNew:
		o.New++
	case outcomeExisting:
		o.Existing++
	default:
		o.Failed++
	}
}

// processor drives a single reference from fetch to publish. It is shared by
// every worker of a run; all of its state is read-only or synchronized.
type processor struct {
	fetcher   *catalog.Fetcher
	publisher *Publisher
	index     *DedupIndex
	order     []string
	logger    *slog.Logger
}

// tracker logs the transitions of one reference and remembers the current
// state for panic accounting.
type tracker struct {
	state  State
	logger *slog.Logger
}

func (t *tracker) to(next State) {
	t.logger.Debug("state transition", "from", t.state, "to", next)
	t.state = next
}

// failure maps the state a failure happened in to the counter it belongs to.
func (t *tracker) failure() outcome {
	if t.state <= StateFetching {
		return outcomeFetchFailed
	}
	return outcomePublishFailed
}

// process never panics and never returns an error: every failure becomes a
// terminal state and an outcome.
func (p *processor) process(ctx context.Context, ref core.ComponentReference) (result outcome) {
	t := &tracker{state: StatePending, logger: p.logger.With("project", ref.ProjectID, "file", ref.FileID)}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("recovered panic while processing reference", "state", t.state, "panic", r)
			result = t.failure()
			t.to(StateFailed)
		}
	}()

	t.to(StateFetching)
	record, err := p.fetcher.Fetch(ctx, ref, p.order)
	if err != nil {
		t.logger.Warn("reference failed", "err", fmt.Errorf("%w: %w", ErrFetchFailed, err))
		t.to(StateFailed)
		return outcomeFetchFailed
	}

	return p.publishIfAbsent(ctx, t, compose.ModID(record), func() core.CanonicalDocument {
		return compose.Mod(record)
	})
}

// processDocument publishes an already composed document unless the index
// has it. Used for pack overviews and overrides.
func (p *processor) processDocument(ctx context.Context, doc core.CanonicalDocument) (result outcome) {
	t := &tracker{state: StatePending, logger: p.logger.With("document", doc.ID)}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("recovered panic while publishing document", "state", t.state, "panic", r)
			result = outcomePublishFailed
			t.to(StateFailed)
		}
	}()

	return p.publishIfAbsent(ctx, t, doc.ID, func() core.CanonicalDocument { return doc })
}

func (p *processor) publishIfAbsent(ctx context.Context, t *tracker, id core.DocumentID, build func() core.CanonicalDocument) outcome {
	unlock := p.index.Lock(id)
	defer unlock()

	if p.index.Contains(id) {
		t.to(StateSkipped)
		return outcomeExisting
	}

	t.to(StateComposing)
	doc := build()

	t.to(StateEmbedding)
	vector, err := p.publisher.Embed(ctx, doc)
	if err != nil {
		t.logger.Warn("document failed", "id", id, "err", err)
		t.to(StateFailed)
		return outcomePublishFailed
	}

	t.to(StatePublishing)
	if err := p.publisher.Upsert(ctx, doc, vector); err != nil {
		t.logger.Warn("document failed", "id", id, "err", err)
		t.to(StateFailed)
		return outcomePublishFailed
	}

	p.index.RecordPublished(id)
	t.to(StateDone)
	return outcomeNew
}
