package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
)

func overview() content.Tree {
	return content.Tree{
		h("How LLMs Work Under the Hood"),
		p("*An interactive journey through a real LLM codebase: Karpathy's nanochat.*"),
		p("Large Language Models (LLMs) like ChatGPT, Claude and Gemini can write essays, answer questions and code.",
			"But how do they actually work? This guide walks through **every single piece** of the machinery,",
			"using real code from `nanochat`, an open-source, minimal implementation that trains an LLM from scratch for under $100."),
		note(content.KeyConcept,
			"An LLM is fundamentally a **next-token predictor**. Given a sequence of tokens (words or subwords),",
			"it predicts the probability distribution over what token comes next. That's it.",
			"All the \"intelligence\" emerges from doing this prediction really well over billions of training examples."),

		h("The Big Picture"),
		p("Here's the full pipeline from raw text to a chatbot you can talk to:"),
		diagram("The LLM Pipeline",
			"1  Tokenization        Raw text → integer token IDs                  tokenizer.py",
			"2  Embedding           Token IDs → dense vectors + positional info   gpt.py (wte + RoPE)",
			"3  Transformer Layers  Self-attention + MLP, repeated N times        gpt.py (Block)",
			"4  Output Head         Final vectors → vocabulary probabilities      gpt.py (lm_head)",
			"5  Training            Cross-entropy loss, backprop, Muon + AdamW    base_train.py + optim.py",
			"6  Inference           Autoregressive token-by-token generation      engine.py",
		),

		h("nanochat at a Glance"),
		p("nanochat by Andrej Karpathy is \"the simplest experimental harness for training LLMs\".",
			"It trains a GPT-2 level model in about 3 hours on 8×H100 GPUs for about $72,",
			"a task that cost roughly $43,000 in 2019."),
		diagram("Key facts",
			"Architecture  GPT + RoPE       Attention  Flash Attn 3",
			"Optimizer     Muon + AdamW     Tokenizer  BPE (32K)",
			"Activation    ReLU²            Norm       RMSNorm",
			"Position      Rotary (RoPE)    Training   ~3h / 8×H100",
		),
		note(content.InNanochat,
			"The full model is defined in `nanochat/gpt.py`: only about 450 lines of code for the entire GPT architecture.",
			"The training loop is in `scripts/base_train.py`. This is what makes it great for learning!"),

		content.Quiz{
			Question: "What is the fundamental task that an LLM is trained to do?",
			Options: []string{
				"Understand human language deeply",
				"Predict the next token in a sequence",
				"Memorize all the text it has seen",
				"Generate random creative text",
			},
			Correct: 1,
			Explanation: "LLMs are trained with a simple objective: given all the previous tokens, predict the next one. " +
				"This is called next-token prediction or causal language modeling. The apparent intelligence emerges " +
				"from this simple task applied at massive scale.",
		},

		h("How to Use This Guide"),
		content.Prose{Markdown: `Each chapter focuses on one piece of the LLM pipeline. You'll see:

- **Concepts**, explained with diagrams
- **Real code**, actual snippets from nanochat with line numbers
- **Interactive demos** to try things out yourself (press ` + "`tab`" + ` to focus one)
- **Quizzes** to test your understanding (answer with ` + "`a`–`d`" + `)
- **Math**, the essential equations explained step by step

Read the chapters in order from the side panel, or jump to any topic that interests you.
Next up: how raw text becomes numbers a model can understand.`},
	}
}
