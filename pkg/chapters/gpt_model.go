package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

func gptModel() content.Tree {
	return content.Tree{
		h("The Full GPT Model"),
		p("*Putting all the pieces together.*"),
		p("Now that we understand each component, let's see how they combine into the complete model.",
			"The GPT class in nanochat ties together the embedding, transformer layers, and output head."),

		h("Model Configuration"),
		code("nanochat/gpt.py", 28, `
@dataclass
class GPTConfig:
    sequence_len: int = 2048
    vocab_size: int = 32768
    n_layer: int = 12
    n_head: int = 6       # number of query heads
    n_kv_head: int = 6    # number of key/value heads (GQA)
    n_embd: int = 768
    window_pattern: str = "SSSL"
`),
		note(content.KeyConcept,
			"nanochat's design philosophy: **one dial, depth**. The number of layers determines all other hyperparameters automatically.",
			"Deeper means wider, more heads and longer training. Experimenting is just a matter of changing `--depth`."),
		demo("Explore Model Scaling", demos.NewParamCounter),

		h("The Forward Pass"),
		p("Here's the complete forward pass, how input tokens become output probabilities:"),
		code("nanochat/gpt.py", 388, `
def forward(self, idx, targets=None, kv_cache=None, loss_reduction='mean'):
    B, T = idx.size()

    # 1. Get rotary embeddings for the sequence
    cos_sin = self.cos[:, T0:T0+T], self.sin[:, T0:T0+T]

    # 2. Embed tokens + normalize
    x = self.transformer.wte(idx)  # (B, T) → (B, T, 768)
    x = norm(x)
    x0 = x  # save for x0 residual

    # 3. Pass through all transformer layers
    for i, block in enumerate(self.transformer.h):
        x = self.resid_lambdas[i] * x + self.x0_lambdas[i] * x0
        ve = self.value_embeds[str(i)](idx) if str(i) in self.value_embeds else None
        x = block(x, ve, cos_sin, self.window_sizes[i], kv_cache)
    x = norm(x)

    # 4. Compute logits (un-embed)
    softcap = 15
    logits = self.lm_head(x)  # (B, T, 768) → (B, T, vocab_size)
    logits = logits[..., :self.config.vocab_size]
    logits = logits.float()
    logits = softcap * torch.tanh(logits / softcap)  # squash to [-15, 15]

    # 5. Compute loss if training
    if targets is not None:
        loss = F.cross_entropy(logits.view(-1, logits.size(-1)), targets.view(-1))
        return loss
    else:
        return logits
`),
		diagram("Complete Forward Pass",
			"idx: [464, 6766, 318, 4171]  (token IDs)",
			"        │",
			"Token Embeddings (B, T, 768) + RMSNorm",
			"        │",
			"┌─ × n_layer ─────────────────────────┐",
			"│ x = λ_r·x + λ_0·x₀                  │",
			"│ Self-Attention + Value Embedding    │",
			"│ MLP (ReLU²)                         │",
			"└─────────────────────────────────────┘",
			"        │",
			"lm_head: Linear(768 → 32768)",
			"        │",
			"logits: (B, T, 32768)  next-token scores",
			"   ├─► Training:  cross_entropy(logits, targets)",
			"   └─► Inference: sample from softmax(logits)",
		),

		h("Logit Softcapping"),
		p("Before computing the loss, nanochat \"softcaps\" the logits to the range [-15, 15] using tanh:"),
		note(content.Math,
			"`logits = 15 · tanh(logits / 15)`.",
			"This keeps any single logit from becoming astronomically large.",
			"Without it one overconfident prediction could dominate the loss and destabilize training."),

		h("Weight Initialization"),
		p("How weights are initialized matters enormously. nanochat initializes each layer type carefully:"),
		code("nanochat/gpt.py", 188, `
@torch.no_grad()
def init_weights(self):
    # Embedding: normal, std=1.0
    torch.nn.init.normal_(self.transformer.wte.weight, mean=0.0, std=1.0)

    # LM head: normal, std=0.001 (very small, starts near uniform)
    torch.nn.init.normal_(self.lm_head.weight, mean=0.0, std=0.001)

    # Transformer blocks
    s = 3**0.5 * n_embd**-0.5  # Uniform to match Normal std
    for block in self.transformer.h:
        torch.nn.init.uniform_(block.attn.c_q.weight, -s, s)
        torch.nn.init.uniform_(block.attn.c_k.weight, -s, s)
        torch.nn.init.uniform_(block.attn.c_v.weight, -s, s)
        torch.nn.init.zeros_(block.attn.c_proj.weight)  # output projections start at zero!
        torch.nn.init.uniform_(block.mlp.c_fc.weight, -s, s)
        torch.nn.init.zeros_(block.mlp.c_proj.weight)   # MLP output also zero
`),
		content.Callout{Kind: content.KeyConcept, Title: "Zero-init output projections",
			Body: "Both `c_proj` in attention and MLP start at zero, so at initialization each Block is an identity function " +
				"that adds nothing to the residual stream. The model starts as \"do nothing\" and learns to add useful information gradually."},

		h("Value Embeddings (ResFormer)"),
		p("nanochat includes a ResFormer-inspired feature: **value embeddings**.",
			"On alternating layers the model adds a learnable embedding, looked up from the input token, directly to the value vectors:"),
		code("nanochat/gpt.py", 86, `
# Value residual (ResFormer): mix in value embedding with input-dependent gate
if ve is not None:
    ve = ve.view(B, T, self.n_kv_head, self.head_dim)
    gate = 2 * torch.sigmoid(self.ve_gate(x[..., :self.ve_gate_channels]))
    v = v + gate.unsqueeze(-1) * ve
`),
		note(content.Info,
			"The gate starts at sigmoid(0) = 0.5, scaled by 2 to 1.0 (neutral).",
			"At initialization the value embedding is added with weight 1.0: it is on by default and can learn to be amplified or suppressed."),

		content.Quiz{
			Question: "Why are the output projection weights (c_proj) initialized to zero?",
			Options: []string{
				"It reduces the number of effective parameters",
				"It makes each Block start as identity, adding nothing to the residual stream",
				"Zero initialization is simpler to implement",
				"It prevents overfitting in early training",
			},
			Correct: 1,
			Explanation: "With c_proj at zero the attention and MLP sublayers output zero vectors, so x + 0 = x and the block starts as identity. " +
				"The model begins from a well-defined state (embedding straight to lm_head) and gradually learns useful transformations.",
		},
		content.Quiz{
			Question: "What does the logit softcap (15 · tanh(logits/15)) do?",
			Options: []string{
				"Makes all logits positive",
				"Converts logits to probabilities",
				"Smoothly limits logits to [-15, 15] to prevent extreme predictions",
				"Speeds up the softmax computation",
			},
			Correct: 2,
			Explanation: "tanh smoothly squashes logits into [-15, 15]. Values near 0 are barely affected while extreme values are compressed, " +
				"which keeps the model from becoming too confident about any single prediction.",
		},
	}
}
