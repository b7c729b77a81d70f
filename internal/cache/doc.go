// Package cache implements the session cache: a content-addressed,
// crash-resumable on-disk store for one crawl session's pages and
// metadata, plus a doctor routine that reconciles the filesystem against
// a secondary SQLite index so corruption or partial writes are found
// before they surface as a broken resume or a missing page in assembled
// output.
//
// A session lives under <root>/sessions/<id>/: session.json holds
// SessionMetadata, seed.json holds the SeedContext it was created from,
// and pages/ holds one file per appended page, named by a strictly
// increasing index so resume can read them back in fetch order.
// Compression is opt-in per CacheConfig; when enabled, page files carry
// a .gz suffix and loaders detect it automatically so a session created
// with compression on can still be read after the setting is flipped
// off, and vice versa.
package cache
