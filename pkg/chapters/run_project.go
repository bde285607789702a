package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
)

func runProject() content.Tree {
	return content.Tree{
		h("Run nanochat Yourself"),
		p("*From setup to chatting with your own LLM.*"),
		p("Ready to train your own LLM? Here's how to get nanochat running on your machine.",
			"There are options for everything from a CPU laptop to an 8×H100 GPU node."),

		h("Prerequisites"),
		diagram("You will need",
			"Python 3.10+                       python --version",
			"uv (fast Python package manager)   curl -LsSf https://astral.sh/uv/install.sh | sh",
			"Git                                git --version",
		),

		h("Step 1: Clone & Install"),
		shell("Terminal", `
# Clone the repo
git clone https://github.com/karpathy/nanochat.git
cd nanochat

# Install with uv (creates a virtual environment automatically)
# For CPU only (Mac, laptop, no GPU):
uv sync --extra cpu

# For GPU (CUDA 12.8):
uv sync --extra gpu

# Activate the virtual environment
source .venv/bin/activate
`),

		h("Step 2: Choose Your Path"),
		diagram("Training Options",
			"CPU / Apple Silicon (quick test)   ~30-40 min",
			"  Train a tiny model on your laptop to see the full pipeline.",
			"  $ bash runs/runcpu.sh",
			"",
			"Single GPU (experiments)           ~5 min for d12",
			"  Quick experiments with a 12-layer model for research iteration.",
			"  $ python -m scripts.base_train -- --depth=12 --run=\"d12\"",
			"",
			"8×H100 GPUs (full GPT-2)           ~3 hours / ~$72",
			"  Train a GPT-2 capability model and talk to it in a ChatGPT-like web UI.",
			"  $ bash runs/speedrun.sh",
		),

		h("Step 3: The Speedrun (Full Pipeline)"),
		p("The speedrun script runs the complete LLM pipeline end-to-end:"),
		shell("runs/speedrun.sh (simplified)", `
#!/bin/bash

# 1. Download and prepare the pretraining data (FineWeb-Edu)
python -m nanochat.dataset

# 2. Train the tokenizer (BPE, 32K vocab)
python -m scripts.tok_train

# 3. Pretrain the base model (8 GPUs, ~3 hours for d26)
OMP_NUM_THREADS=1 torchrun --standalone --nproc_per_node=8 \
    -m scripts.base_train -- --depth=26 --run="speedrun"

# 4. Evaluate the base model (CORE score, samples)
python -m scripts.base_eval

# 5. Fine-tune for chat (SFT on SmolTalk + SpellingBee + ...)
torchrun --standalone --nproc_per_node=8 \
    -m scripts.chat_sft -- --run="speedrun_sft"

# 6. (Optional) Reinforcement Learning from tasks
torchrun --standalone --nproc_per_node=8 \
    -m scripts.chat_rl -- --run="speedrun_rl"

# 7. Launch the chat web UI!
python -m scripts.chat_web
`),

		h("Step 4: Talk to Your Model"),
		shell("Terminal", `
# Launch the ChatGPT-like web UI
python -m scripts.chat_web

# Or use the CLI
python -m scripts.chat_cli
`),
		note(content.Info,
			"The web UI serves a ChatGPT-like interface. On a remote GPU server, open `http://YOUR_SERVER_IP:8000/`.",
			"The model streams responses token by token, just like ChatGPT."),

		h("Running on CPU / Apple Silicon"),
		p("For a quick test without a GPU, the `runcpu.sh` script trains a very small model:"),
		shell("runs/runcpu.sh (key parts)", `
# Install CPU-only dependencies
uv sync --extra cpu

# Download data
python -m nanochat.dataset

# Train tokenizer
python -m scripts.tok_train

# Train a tiny model (d6 = 6 layers, very small)
python -m scripts.base_train \
    --depth=6 \
    --head-dim=64 \
    --window-pattern=L \
    --max-seq-len=512 \
    --device-batch-size=32 \
    --total-batch-size=16384 \
    --eval-every=100 \
    --eval-tokens=524288 \
    --core-metric-every=-1 \
    --sample-every=100 \
    --num-iterations=5000 \
    --run=$WANDB_RUN

# Fine-tune for chat
python -m scripts.chat_sft \
    --max-seq-len=512 \
    --device-batch-size=32 \
    --total-batch-size=16384 \
    --eval-every=200 \
    --eval-tokens=524288 \
    --num-iterations=1500 \
    --run=$WANDB_RUN

# Chat!
python -m scripts.chat_web
`),
		content.Callout{Kind: content.KeyConcept, Title: "What to expect on CPU",
			Body: "A d6 model is tiny. It produces somewhat coherent text but won't be \"smart\"; the point is to watch the pipeline " +
				"work end-to-end. Meaningful results need at least one decent GPU (A100, 4090)."},

		h("Key Metrics to Watch"),
		diagram("Metrics",
			"val_bpb      Validation bits per byte. Lower = better compression = better model. GPT-2 achieves ~0.75.",
			"core_metric  DCLM CORE score. GPT-2 = 0.2565. Higher = better on diverse benchmarks.",
			"train/mfu    Model FLOPs Utilization. How efficiently you use the GPU. Higher = faster training.",
		),

		h("Recap: What You've Learned"),
		diagram("Recap",
			"1  Tokenization       BPE converts text into integer IDs using learned merge rules",
			"2  Embeddings         Token IDs become dense vectors; RoPE encodes position through rotation",
			"3  Self-Attention     Q·K scores determine how tokens attend to each other",
			"4  Transformer Block  Attention + MLP with residual connections, pre-norm, ReLU², x0 skip",
			"5  GPT Model          Stack of N blocks + embedding + output head; one dial controls everything",
			"6  Training           Cross-entropy loss + Muon/AdamW hybrid optimizer, distributed across GPUs",
			"7  Inference          Autoregressive generation with KV cache; temperature and top-k control randomness",
		),
		content.Callout{Kind: content.InNanochat, Title: "Next steps",
			Body: "- Read the actual source code, starting with `nanochat/gpt.py` (450 lines)\n" +
				"- Run a d12 experiment and watch the loss curve in wandb\n" +
				"- Modify something (the activation function, the number of heads) and see what happens\n" +
				"- Read the [Discussions](https://github.com/karpathy/nanochat/discussions) for deep dives\n" +
				"- Ask questions about the codebase on [DeepWiki](https://deepwiki.com/karpathy/nanochat)"},

		h("Congratulations!"),
		p("You now understand how an LLM works from the ground up, from raw text to a chatbot.",
			"The same fundamental architecture powers ChatGPT, Claude, Gemini and all modern LLMs.",
			"The difference is just scale: more layers, more data, more compute."),
	}
}
