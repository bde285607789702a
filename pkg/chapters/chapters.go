// Package chapters holds the guide's content: ten chapters in reading order,
// each a pure function returning its content tree.
package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/catalog"
)

// Catalog returns the guide's chapters in reading order.
func Catalog() *catalog.Catalog {
	return catalog.MustNew(
		catalog.Chapter{ID: "overview", Title: "How LLMs Work", Icon: "🧠", Render: overview},
		catalog.Chapter{ID: "tokenizer", Title: "Tokenization (BPE)", Icon: "🔤", Render: tokenizer},
		catalog.Chapter{ID: "embeddings", Title: "Embeddings & Positional Encoding", Icon: "📐", Render: embeddings},
		catalog.Chapter{ID: "attention", Title: "Self-Attention", Icon: "👁", Render: attention},
		catalog.Chapter{ID: "transformer", Title: "Transformer Block", Icon: "🧱", Render: transformer},
		catalog.Chapter{ID: "gpt-model", Title: "The Full GPT Model", Icon: "🏗", Render: gptModel},
		catalog.Chapter{ID: "training", Title: "Training & Optimization", Icon: "⚡", Render: training},
		catalog.Chapter{ID: "inference", Title: "Inference & Generation", Icon: "💬", Render: inference},
		catalog.Chapter{ID: "run-project", Title: "Run nanochat Yourself", Icon: "🚀", Render: runProject},
		catalog.Chapter{ID: "serving", Title: "Serving & API Design", Icon: "🌐", Render: serving},
	)
}

// Links are shown under every chapter.
var Links = []catalog.Link{
	{Label: "nanochat on GitHub", URL: "https://github.com/karpathy/nanochat"},
	{Label: "DeepWiki", URL: "https://deepwiki.com/karpathy/nanochat"},
}
