// Package openai provides an embedding provider using OpenAI-compatible APIs.
//
// This package implements ai.Embedder using the langchaingo library to
// communicate with OpenAI or OpenAI-compatible services (such as Ollama,
// LocalAI, or vLLM). Those services accept text rather than token ids, so the
// tokenized input is decoded first; truncation and lowercasing applied by the
// tokenizer therefore carry over to the remote model.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderOpenAI),
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithEmbeddingModel("all-minilm"),
//	)
//
//	embedder, err := openai.NewEmbedder(config, tok)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vec, err := embedder.Embed(ctx, tok.Tokenize("sample text"))
package openai
