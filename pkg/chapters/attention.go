package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

func attention() content.Tree {
	return content.Tree{
		h("Self-Attention"),
		p("*The mechanism that lets tokens \"talk to each other\".*"),
		p("Self-attention is the core innovation that makes Transformers work. It allows each token to look at",
			"*all previous tokens* and decide which ones are relevant for predicting what comes next."),
		content.Callout{Kind: content.KeyConcept, Body: `**Self-attention** computes three things for each token:

- **Query (Q)**: "What am I looking for?"
- **Key (K)**: "What do I contain?"
- **Value (V)**: "What information do I provide?"

The attention score between tokens is Q·K (dot product). High scores mean "pay attention".
The output is a weighted sum of V, where the weights come from softmax(Q·K).`},

		h("The Q, K, V Projections"),
		code("nanochat/gpt.py", 69, `
self.c_q = nn.Linear(self.n_embd, self.n_head * self.head_dim, bias=False)
self.c_k = nn.Linear(self.n_embd, self.n_kv_head * self.head_dim, bias=False)
self.c_v = nn.Linear(self.n_embd, self.n_kv_head * self.head_dim, bias=False)
self.c_proj = nn.Linear(self.n_embd, self.n_embd, bias=False)
`),
		p("Each input vector is projected three times to create Q, K and V.",
			"They are then reshaped into multiple \"heads\" (6 query heads and 6 key/value heads in nanochat):"),
		code("nanochat/gpt.py", 80, `
# Project the input to get queries, keys, and values
# Shape: (B, T, H, D) - Flash Attention's native layout
q = self.c_q(x).view(B, T, self.n_head, self.head_dim)
k = self.c_k(x).view(B, T, self.n_kv_head, self.head_dim)
v = self.c_v(x).view(B, T, self.n_kv_head, self.head_dim)
# Apply Rotary Embeddings to queries and keys
q, k = apply_rotary_emb(q, cos, sin), apply_rotary_emb(k, cos, sin)
q, k = norm(q), norm(k) # QK norm
`),
		diagram("Self-Attention Computation",
			"            Input x (B, T, 768)",
			"       ┌────────────┼────────────┐",
			"       Q            K            V",
			"  (B,T,6,128)  (B,T,6,128)  (B,T,6,128)",
			"       └────────────┼────────────┘",
			"        Attention Output (B, T, 768)",
		),

		h("Causal Masking"),
		p("In language modeling, a token can only attend to *previous* tokens (and itself).",
			"It must not \"see the future\", otherwise it would be cheating!",
			"This is enforced by a **causal mask** that sets future attention scores to -∞ before softmax."),
		demo("Visualize Causal Attention Weights", demos.NewHeatmap),

		h("Multi-Head Attention"),
		p("Instead of one big attention computation, we split into multiple **heads**.",
			"Each head operates on a slice of the embedding dimensions and can learn different patterns:"),
		demo("Explore Attention Head Patterns", demos.NewMultiHead),
		note(content.Math,
			"`Attention(Q, K, V) = softmax(Q·Kᵀ / √d_k) · V`, where `d_k = 128` (head_dim = n_embd / n_head = 768/6).",
			"The √d_k scaling keeps the dot products from growing too large and saturating the softmax."),

		h("Flash Attention"),
		p("The naive computation materializes the full T×T attention matrix, which is very expensive in memory.",
			"nanochat uses **Flash Attention**, which computes attention in *tiles* without materializing the full matrix:"),
		code("nanochat/gpt.py", 98, `
# Flash Attention (FA3 on Hopper+, PyTorch SDPA fallback elsewhere)
if kv_cache is None:
    # Training: causal attention with optional sliding window
    y = flash_attn.flash_attn_func(q, k, v, causal=True, window_size=window_size)
`),
		note(content.Info,
			"Flash Attention doesn't change the math: the output is identical.",
			"It's a **hardware-aware algorithm** that uses GPU SRAM tiling to avoid memory bottlenecks.",
			"nanochat uses FA3 on Hopper GPUs (H100) and falls back to PyTorch's SDPA elsewhere."),

		h("Sliding Window Attention"),
		p("nanochat also uses **sliding window attention** in some layers. Instead of attending to the full context,",
			"a layer only attends to the nearest N tokens. This saves compute while keeping quality (the final layer uses full attention):"),
		code("nanochat/gpt.py", 37, `
# Sliding window attention pattern string, tiled across layers
# Characters: L=long (full context), S=short (half context)
# Examples: "L"=all full, "SL"=alternating, "SSL"=two short then one long
window_pattern: str = "SSSL"  # 3 short + 1 long, tiled
`),

		content.Quiz{
			Question: "Why does nanochat apply QK-norm (normalizing Q and K) before computing attention?",
			Options: []string{
				"It makes the attention computation faster",
				"It ensures attention weights are always positive",
				"It prevents the dot products from exploding or vanishing, improving training stability",
				"It reduces the number of parameters",
			},
			Correct: 2,
			Explanation: "QK-norm keeps the scale of dot products consistent. Without it, Q and K can grow large during training, " +
				"pushing attention logits to extremes where gradients vanish.",
		},
		content.Quiz{
			Question: "In the 'SSSL' window pattern, what happens at the final layer?",
			Options: []string{
				"It uses a short sliding window",
				"It always uses full context attention regardless of the pattern",
				"It skips attention entirely",
				"It uses the pattern letter assigned to it",
			},
			Correct: 1,
			Explanation: "The final layer always gets full context attention (L), regardless of the pattern string, so the output can " +
				"attend to the entire input. Earlier layers can use shorter windows.",
		},
	}
}
