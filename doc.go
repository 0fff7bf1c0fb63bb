// Package packvault ingests modpack manifests into a vector store.
//
// A Vault opens the configured store, embedding provider and metadata
// catalogs. Its ingestion pipeline fetches metadata for every mod a pack
// references, skips mods the store already holds, and publishes the rest as
// embedded documents. Its searcher answers free-text queries over them.
//
//	vault, err := packvault.Open(cfg)
//	pipeline, err := vault.NewIngestionPipeline()
//	stats, err := pipeline.RunPack(ctx, manifest, archive)
package packvault
