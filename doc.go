// Package notesearch ranks personal notes by semantic similarity to a query.
//
// A search tokenizes text with a WordPiece vocabulary into fixed-length
// model inputs, embeds the query and each note through a pluggable provider,
// and orders notes by the dot product of their unit vectors. Failures never
// reach the caller: an empty or unembeddable query keeps the input order,
// and notes that cannot be embedded are left out.
//
// Engine is the entry point:
//
//	engine, err := notesearch.NewEngine("vocab.txt",
//	    notesearch.WithCacheDir("/var/cache/notesearch"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	ranked := engine.Search(ctx, "grocery list", notes)
//
// The subpackages can be used directly: vocab and tokenizer for model input,
// rank for similarity, search for orchestration, storage for the embedding
// cache (badger locally, redis when shared), warm for precomputing it and
// metrics for Prometheus instrumentation of searches.
package notesearch
