// Package ingestion turns the component references of a modpack into
// published vector documents.
//
// A Pipeline run:
//   - takes one dedup snapshot of the store
//   - fetches each reference's metadata on a bounded worker pool
//   - skips references whose document id is already stored
//   - composes, embeds and upserts the rest
//
// Every reference ends in exactly one counter of the run's Stats: new,
// existing, fetch failed or publish failed. Per-reference errors never stop
// the run.
package ingestion
