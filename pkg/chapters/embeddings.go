package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

func embeddings() content.Tree {
	return content.Tree{
		h("Embeddings & Positional Encoding"),
		p("*Giving meaning and position to tokens.*"),
		p("Token IDs are just integers: they carry no information about meaning or relationships.",
			"The **embedding layer** converts each token ID into a dense vector that the network can work with."),

		h("Token Embedding"),
		p("The embedding is simply a big lookup table: a matrix of shape `(vocab_size, n_embd)`,",
			"for example `(32768, 768)` in a common d12 setup. Each row is an n_embd-dimensional vector representing one token."),
		code("nanochat/gpt.py", 163, `
self.transformer = nn.ModuleDict({
    "wte": nn.Embedding(padded_vocab_size, config.n_embd),
    "h": nn.ModuleList([Block(config, layer_idx) for layer_idx in range(config.n_layer)]),
})
`),
		demo("Explore the Embedding Table", demos.NewEmbedding),
		note(content.Math,
			"Given a token ID `t`, the embedding lookup is `x = W_e[t] ∈ ℝ^n_embd`:",
			"just indexing row `t` of the embedding matrix W_e. After embedding, nanochat applies RMSNorm: `x = RMSNorm(x)`."),
		code("nanochat/gpt.py", 400, `
# Forward the trunk of the Transformer
x = self.transformer.wte(idx) # embed current token
x = norm(x)
x0 = x  # save initial normalized embedding for x0 residual
`),

		h("Rotary Positional Embeddings (RoPE)"),
		p("The model needs to know token **positions**: \"the\" at position 0 and at position 100 should behave differently.",
			"nanochat uses **Rotary Position Embeddings (RoPE)**, which encode position by *rotating* the query and key vectors in pairs of dimensions."),
		note(content.KeyConcept,
			"**RoPE** rotates pairs of dimensions at different frequencies.",
			"Low-frequency rotations capture coarse position while high-frequency rotations encode fine-grained position.",
			"The key property: the dot product of two rotated vectors depends only on their **relative distance**, not absolute position."),
		code("nanochat/gpt.py", 51, `
def apply_rotary_emb(x, cos, sin):
    assert x.ndim == 4  # multihead attention
    d = x.shape[3] // 2
    x1, x2 = x[..., :d], x[..., d:] # split up last dim into two halves
    y1 = x1 * cos + x2 * sin        # rotate pairs of dims
    y2 = x1 * (-sin) + x2 * cos
    return torch.cat([y1, y2], 3)
`),
		diagram("RoPE: Rotating dimension pairs",
			"Before rotation:  [x₁, x₂]",
			"After rotation:   [x₁·cos(θ) + x₂·sin(θ), -x₁·sin(θ) + x₂·cos(θ)]",
			"",
			"θ = position × frequency, where frequency = 1/10000^(2i/d) for dimension pair i",
		),
		demo("Explore RoPE frequencies", demos.NewRoPE),

		h("Pre-computing Rotary Embeddings"),
		p("Since the cos/sin values only depend on position and dimension (not on the data), they are pre-computed once and cached:"),
		code("nanochat/gpt.py", 243, `
def _precompute_rotary_embeddings(self, seq_len, head_dim, base=10000):
    # stride the channels
    channel_range = torch.arange(0, head_dim, 2, dtype=torch.float32)
    inv_freq = 1.0 / (base ** (channel_range / head_dim))
    # stride the time steps
    t = torch.arange(seq_len, dtype=torch.float32)
    # calculate the rotation frequencies at each (time, channel) pair
    freqs = torch.outer(t, inv_freq)
    cos, sin = freqs.cos(), freqs.sin()
`),
		note(content.Info,
			"nanochat pre-computes RoPE for 10× the sequence length as a buffer. This is tiny in memory and avoids recomputation.",
			"The embeddings are stored as registered buffers, not saved in checkpoints."),

		content.Quiz{
			Question: "Why does nanochat use Rotary Positional Embeddings instead of learned position embeddings?",
			Options: []string{
				"They are faster to compute",
				"They allow the model to generalize to longer sequences and encode relative positions naturally",
				"They use less memory",
				"They are simpler to implement",
			},
			Correct: 1,
			Explanation: "The dot product between two rotated vectors depends only on their relative distance, not absolute position. " +
				"This gives the model a natural sense of how far apart tokens are and generalizes better to unseen sequence lengths.",
		},
	}
}
