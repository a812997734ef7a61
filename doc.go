// Package rag implements retrieval-augmented generation over learning
// notes and other document collections.
//
// The root package wires the building blocks from pkg/ into a single
// pipeline: documents are loaded, split into chunks, embedded, and stored
// in a vector index; questions retrieve the nearest chunks and an LLM
// generates an answer grounded in them.
//
// # Basic Usage
//
// Create a client from an LLM, an embedder, and a vector store:
//
//	llm, err := nlp.NewOpenAIClient(apiKey, nlp.Config{
//		Model:   "deepseek-chat",
//		BaseURL: "https://api.deepseek.com/v1",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	emb, err := embedder.NewEmbedEverythingClient(&embedder.Config{
//		Model: "BAAI/bge-small-zh-v1.5",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client := rag.NewClient(llm, emb, store, nil)
//	defer client.Close()
//
// # Indexing
//
// Index documents directly or through a loader:
//
//	stats, err := client.IndexFrom(ctx, loader.NewDirectoryLoader("./notes", nil, true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("indexed %d chunks from %d documents\n", stats.Chunks, stats.Documents)
//
// # Asking Questions
//
// Answer retrieves the most relevant chunks and generates a grounded
// answer, returning the sources alongside the text:
//
//	answer, err := client.Answer(ctx, "什么是向量数据库？", &types.SearchConfig{TopK: 5})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(answer.Text)
//
// # Architecture
//
//   - pkg/loader: file, directory, PDF, and web document loaders
//   - pkg/splitter: character, recursive, sentence-window, semantic, and code splitters
//   - pkg/embedder: local and OpenAI-compatible embedding clients with caching
//   - pkg/vectorstore: flat, IVF-flat, and Qdrant vector indexes
//   - pkg/retriever: BM25, dense, hybrid RRF, and LLM reranking
//   - pkg/prequery: query rewriting, expansion, fusion, and routing
//   - pkg/cypher, pkg/sqlgen, pkg/selfquery: query construction against graph, SQL, and metadata
//   - pkg/icd10: NER-assisted ICD-10 code search
//
// Swap any building block through Config: a hybrid retriever, a semantic
// splitter, or a hosted Qdrant collection slot in without changing the
// pipeline.
package rag
