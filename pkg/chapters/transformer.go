package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

func transformer() content.Tree {
	return content.Tree{
		h("The Transformer Block"),
		p("*Attention + MLP + residual connections: the building block of LLMs.*"),
		p("A Transformer is just a stack of identical blocks. Each block has two sub-layers:",
			"**self-attention** (tokens communicate) and an **MLP** (each token thinks independently).",
			"Both are wrapped in residual connections."),

		h("The Block"),
		code("nanochat/gpt.py", 134, `
class Block(nn.Module):
    def __init__(self, config, layer_idx):
        super().__init__()
        self.attn = CausalSelfAttention(config, layer_idx)
        self.mlp = MLP(config)

    def forward(self, x, ve, cos_sin, window_size, kv_cache):
        x = x + self.attn(norm(x), ve, cos_sin, window_size, kv_cache)
        x = x + self.mlp(norm(x))
        return x
`),
		note(content.KeyConcept,
			"Notice the pattern `x = x + sublayer(norm(x))`, the **Pre-Norm residual connection**.",
			"The norm is applied *before* the sublayer and the output is *added* back to the input.",
			"This creates a \"residual stream\" that information flows through, with each layer making incremental additions."),
		diagram("Inside a Transformer Block",
			"Input x",
			"  ├─► RMSNorm ─► Self-Attention ─┐",
			"  x = x + attn(norm(x)) ◄────────┘",
			"  ├─► RMSNorm ─► MLP (ReLU²) ────┐",
			"  x = x + mlp(norm(x)) ◄─────────┘",
			"Output x",
		),

		h("RMSNorm"),
		p("nanochat uses a parameter-free RMSNorm: it just divides by the root mean square of the vector. No learnable scale or bias:"),
		code("nanochat/gpt.py", 42, `
def norm(x):
    # Purely functional rmsnorm with no learnable params
    return F.rms_norm(x, (x.size(-1),))
`),
		note(content.Math,
			"`RMSNorm(x) = x / √(mean(x²) + ε)`. This normalizes the magnitude of each vector to roughly 1, which stabilizes training.",
			"Unlike LayerNorm there are no learned γ/β parameters."),

		h("The MLP"),
		p("The MLP (Multi-Layer Perceptron) is where the model does its \"thinking\": it processes each token independently",
			"through two linear layers with a ReLU² activation:"),
		code("nanochat/gpt.py", 121, `
class MLP(nn.Module):
    def __init__(self, config):
        super().__init__()
        self.c_fc = nn.Linear(config.n_embd, 4 * config.n_embd, bias=False)
        self.c_proj = nn.Linear(4 * config.n_embd, config.n_embd, bias=False)

    def forward(self, x):
        x = self.c_fc(x)       # 768 → 3072 (expand 4×)
        x = F.relu(x).square() # ReLU² activation
        x = self.c_proj(x)     # 3072 → 768 (project back)
        return x
`),
		demo("Explore ReLU² Activation", demos.NewActivation),
		content.Callout{Kind: content.InNanochat, Title: "Why ReLU²?", Body: "ReLU² has sparser activations than GELU (the standard choice): " +
			"more neurons are exactly zero, so the model focuses its capacity on fewer, more meaningful features. " +
			"The squaring also creates stronger gradients for large activations."},

		h("The Residual Stream"),
		p("nanochat adds a twist: per-layer learnable scalars that control the residual stream:"),
		code("nanochat/gpt.py", 403, `
for i, block in enumerate(self.transformer.h):
    x = self.resid_lambdas[i] * x + self.x0_lambdas[i] * x0
    ve = self.value_embeds[str(i)](idx) if str(i) in self.value_embeds else None
    x = block(x, ve, cos_sin, self.window_sizes[i], kv_cache)
`),
		note(content.KeyConcept,
			"**resid_lambdas** scale the current residual (initialized to 1.0) and **x0_lambdas** blend in the *original embedding* at each layer (initialized to 0.1).",
			"This x0 residual, inspired by ResFormer, gives every layer a direct path from the input, helping gradients flow in deep networks."),
		demo("Visualize the Residual Stream", demos.NewResidual),

		content.Quiz{
			Question: "Why is the MLP's hidden dimension 4× the model dimension (768 → 3072 → 768)?",
			Options: []string{
				"It's just a convention with no particular reason",
				"It gives the MLP more capacity to represent complex functions before projecting back",
				"It reduces the number of parameters",
				"It makes the computation faster",
			},
			Correct: 1,
			Explanation: "Expanding to 4× gives the MLP a much larger space to combine features, and projecting back down forces it " +
				"to compress that into the most useful information.",
		},
		content.Quiz{
			Question: "What is the purpose of the x0 skip connection (blending the original embedding back in at each layer)?",
			Options: []string{
				"It saves memory by reusing the original embeddings",
				"It prevents the model from forgetting the original token information as it passes through many layers",
				"It makes training faster",
				"It is required for the attention mechanism to work",
			},
			Correct: 1,
			Explanation: "Information can degrade as it passes through many layers. The x0 skip gives each layer direct access to the " +
				"original token embedding, preventing representation collapse.",
		},
	}
}
