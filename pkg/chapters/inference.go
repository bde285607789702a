package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

func inference() content.Tree {
	return content.Tree{
		h("Inference & Generation"),
		p("*How the model generates text token by token.*"),
		p("After training, inference is conceptually simple: feed tokens in, get a probability distribution out,",
			"sample a token, feed it back in, repeat. Making this fast takes clever engineering."),

		h("Autoregressive Generation"),
		demo("Watch autoregressive generation", demos.NewAutoregressive),
		code("nanochat/gpt.py", 426, `
@torch.inference_mode()
def generate(self, tokens, max_tokens, temperature=1.0, top_k=None, seed=42):
    """Naive autoregressive streaming inference."""
    ids = torch.tensor([tokens], dtype=torch.long, device=device)
    for _ in range(max_tokens):
        logits = self.forward(ids)       # full forward pass
        logits = logits[:, -1, :]        # take last position only
        if top_k is not None and top_k > 0:
            v, _ = torch.topk(logits, min(top_k, logits.size(-1)))
            logits[logits < v[:, [-1]]] = -float('Inf')
        if temperature > 0:
            logits = logits / temperature
            probs = F.softmax(logits, dim=-1)
            next_ids = torch.multinomial(probs, num_samples=1, generator=rng)
        else:
            next_ids = torch.argmax(logits, dim=-1, keepdim=True)
        ids = torch.cat((ids, next_ids), dim=1)
        yield next_ids.item()
`),

		h("Sampling Strategies"),
		p("How we pick the next token from the probability distribution dramatically affects the output:"),
		demo("Explore Sampling Parameters", demos.NewSampling),
		note(content.KeyConcept,
			"**Temperature** controls randomness. At T=0 the highest-probability token always wins (greedy).",
			"At T=1 we sample proportionally, and above 1 the distribution flattens.",
			"**Top-K** limits sampling to the K most likely tokens so a very unlikely token is never picked."),

		h("KV Cache: Making Inference Fast"),
		p("The naive approach recomputes attention over ALL tokens at every step.",
			"With a KV Cache we only compute the new token and reuse cached keys and values:"),
		diagram("KV Cache: avoid redundant computation",
			"Without:  [The] [sky] [is] [blue] [and] [NEW]   recompute ALL 6 tokens every step",
			"With KV$: (The) (sky) (is) (blue) (and) [NEW]   only compute NEW, reuse cached K,V",
		),
		code("nanochat/engine.py", 83, `
class KVCache:
    """KV Cache for Flash Attention 3's flash_attn_with_kvcache API."""
    def __init__(self, batch_size, num_heads, seq_len, head_dim, num_layers, device, dtype):
        # Pre-allocate cache tensors: (n_layers, B, T, H, D)
        self.k_cache = torch.zeros(num_layers, batch_size, seq_len, num_heads, head_dim, ...)
        self.v_cache = torch.zeros(num_layers, batch_size, seq_len, num_heads, head_dim, ...)
        # Current position per batch element
        self.cache_seqlens = torch.zeros(batch_size, dtype=torch.int32, device=device)
`),
		note(content.Info,
			"The KV cache stores key and value tensors for every previously processed token.",
			"Each step computes Q, K and V for the *new* token only, appends K and V to the cache,",
			"and attends from the new Q to all cached K/V. Per-step work drops from O(T²) to O(T)."),

		h("Tool Use During Inference"),
		p("nanochat's engine handles **tool use**: the model can invoke a Python calculator by generating special tokens:"),
		code("nanochat/engine.py", 252, `
if next_token == python_start:
    state.in_python_block = True
    state.python_expr_tokens = []
elif next_token == python_end and state.in_python_block:
    state.in_python_block = False
    if state.python_expr_tokens:
        expr = self.tokenizer.decode(state.python_expr_tokens)
        result = use_calculator(expr)
        if result is not None:
            # Force inject the result tokens
            state.forced_tokens.append(output_start)
            state.forced_tokens.extend(self.tokenizer.encode(str(result)))
            state.forced_tokens.append(output_end)
`),
		diagram("Tool Use Flow",
			"<|python_start|> 2 + 2 * 3 <|python_end|>",
			"        ↓ engine intercepts, evaluates",
			"<|output_start|> 8 <|output_end|>",
			"        ↓ model continues generating with the result",
		),

		content.Quiz{
			Question: "Why does the KV cache dramatically speed up autoregressive generation?",
			Options: []string{
				"It reduces the model size",
				"It avoids recomputing keys and values for all previous tokens at each step",
				"It allows the model to generate multiple tokens at once",
				"It compresses the model weights",
			},
			Correct: 1,
			Explanation: "Without a KV cache, generating token N recomputes attention inputs for all N previous tokens from scratch. " +
				"With it, K and V for tokens 1...N-1 are stored and reused.",
		},
		content.Quiz{
			Question: "What happens when temperature = 0 during generation?",
			Options: []string{
				"The model generates nothing",
				"The model always selects the token with the highest probability (greedy decoding)",
				"All tokens become equally likely",
				"The model generates random tokens",
			},
			Correct: 1,
			Explanation: "At temperature 0 sampling is skipped and the most likely token (argmax) is always picked. " +
				"Outputs are deterministic and 'safe' but can be repetitive.",
		},
	}
}
