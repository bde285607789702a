package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

func training() content.Tree {
	return content.Tree{
		h("Training & Optimization"),
		p("*How the model learns from data.*"),
		p("Training an LLM means showing it billions of tokens and adjusting its weights to get better at predicting the next token.",
			"That takes a loss function, an optimizer and a data pipeline."),

		h("The Training Objective"),
		note(content.Math,
			"`Loss = -Σ log P(t_i | t_1, ..., t_{i-1})`.",
			"For each position i the model predicts a probability distribution over all 32,768 tokens.",
			"We compare it to the actual next token using **cross-entropy loss**. Lower loss means better predictions."),
		p("In practice we feed a batch of sequences and compute loss on all positions simultaneously.",
			"The dataloader packs multiple documents into each row for efficiency:"),
		code("nanochat/dataloader.py", 73, `
def tokenizing_distributed_data_loader_with_state_bos_bestfit(
    tokenizer, B, T, split, ...):
    """
    BOS-aligned dataloader with Best-Fit Cropping.

    Algorithm for each row:
    1. From buffered docs, pick the LARGEST doc that fits entirely
    2. Repeat until no doc fits
    3. When nothing fits, crop a doc to fill remaining space exactly

    Key properties:
    - Every row starts with BOS
    - 100% utilization (no padding, every token is trained on)
    - ~35% of all tokens are discarded due to cropping
    """
`),
		content.Callout{Kind: content.Info, Title: "BOS-aligned packing",
			Body: "Every training row starts with a BOS token, so the model always sees proper document boundaries. " +
				"Documents are packed together with a best-fit algorithm that minimizes waste."},
		demo("Training Loss Curve", demos.NewLossCurve),

		h("The Optimizer: Muon + AdamW"),
		p("nanochat uses a **hybrid optimizer**: different parameter groups get different optimizers."),
		diagram("Optimizer Assignment",
			"AdamW  lr 0.2    Token Embeddings (wte)       lookup tables, not matrices",
			"AdamW  lr 0.2    Value Embeddings             same as regular embeddings",
			"AdamW  lr 0.004  LM Head                      output layer, very sensitive",
			"AdamW  lr 0.005  resid_lambdas                scalars, small LR",
			"AdamW  lr 0.5    x0_lambdas                   scalars, larger LR, higher β₁",
			"Muon   lr 0.02   Transformer Matrices         2D matrices, where Muon excels",
		),

		h("What is Muon?"),
		p("**Muon** (MomentUm Orthogonalized by Newton-schulz) orthogonalizes the gradient updates for 2D weight matrices:"),
		code("nanochat/optim.py", 109, `
# Nesterov momentum
momentum_buffer.lerp_(stacked_grads, 1 - momentum)
g = stacked_grads.lerp_(momentum_buffer, momentum)

# Polar Express: orthogonalize the update
X = g.bfloat16()
X = X / (X.norm(dim=(-2, -1), keepdim=True) * 1.02 + 1e-6)
if g.size(-2) > g.size(-1):  # Tall matrix
    for a, b, c in polar_express_coeffs[:ns_steps]:
        A = X.mT @ X
        B = b * A + c * (A @ A)
        X = a * X + X @ B
`),
		content.Callout{Kind: content.KeyConcept, Title: "Why orthogonalize?",
			Body: "An orthogonalized gradient gives each neuron an update of similar magnitude. " +
				"Without it some neurons get huge updates while others get tiny ones, and learning becomes inefficient."},

		h("Learning Rate Schedule"),
		p("The learning rate follows a **linear warmup, constant hold, linear warmdown** schedule:"),
		demo("Learning Rate Schedule", demos.NewLRSchedule),

		h("Distributed Training"),
		p("Training on 8 GPUs uses a distributed optimizer with a 3-phase async communication pattern:"),
		diagram("Distributed Training Communication",
			"Phase 1: launch all async reduce_scatter ops (average gradients across GPUs)",
			"Phase 2: wait for reduce, compute update, launch all_gather",
			"Phase 3: wait for gathers, copy updated params back to all GPUs",
		),
		note(content.Info,
			"The distributed optimizer uses **ZeRO-2 style sharding** for AdamW params:",
			"each GPU only stores optimizer state for its own shard of parameters."),

		h("FLOPs Estimation"),
		p("nanochat carefully estimates the compute used per token:"),
		code("nanochat/gpt.py", 292, `
def estimate_flops(self):
    """
    Return the estimated FLOPs per token (forward + backward).
    Each matmul parameter: 2 FLOPs forward (multiply + accumulate),
    and 2X that in backward => 2+4=6 FLOPs per parameter per token.
    Plus 12 * h * q * effective_seq_len for attention QK matmul.
    """
    nparams = sum(p.numel() for p in self.parameters())
    nparams_exclude = ...  # embeddings, scalars (not matmuls)
    num_flops_per_token = 6 * (nparams - nparams_exclude) + attn_flops
    return num_flops_per_token
`),

		content.Quiz{
			Question: "Why does nanochat use different optimizers for different parameter types?",
			Options: []string{
				"To make the code more complex and educational",
				"Because different parameter shapes have different optimization landscapes",
				"To reduce the total number of parameters",
				"Because AdamW is deprecated and being replaced by Muon",
			},
			Correct: 1,
			Explanation: "2D weight matrices benefit from orthogonalized updates (Muon), which keep update magnitudes uniform across neurons. " +
				"1D parameters such as embeddings and scalars lack that geometric structure, and AdamW works better for them.",
		},
		content.Quiz{
			Question: "What does 'BPB' (bits per byte) measure?",
			Options: []string{
				"The number of parameters in the model",
				"The speed of training in bytes per second",
				"How well the model compresses text, lower is better",
				"The size of the vocabulary in bits",
			},
			Correct: 2,
			Explanation: "BPB is the average number of bits the model needs to predict each byte of text. " +
				"Lower BPB means the model is better at predicting, and therefore compressing, text.",
		},
	}
}
