package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

const apiComparison = `| Field | OpenAI | nanochat |
|---|---|---|
| Endpoint | ` + "`POST /v1/chat/completions`" + ` | ` + "`POST /chat/completions`" + ` |
| Auth | Bearer token (API key) | None (local server) |
| model | Required (e.g. "gpt-4o") | Not needed (single model) |
| messages | system / user / assistant / tool | user / assistant |
| temperature | 0.0–2.0 (default 1.0) | 0.0–2.0 (default 0.8) |
| token limit | max_completion_tokens (legacy: max_tokens) | max_tokens (1–4096) |
| top_k | Not supported (uses top_p) | 0–200 (0 = disabled) |
| top_p | 0.0–1.0 (nucleus sampling) | Not supported |
| stream | true/false (SSE chunks) | Always streaming (SSE) |
| Stop signal | ` + "`data: [DONE]`" + ` | ` + "`data: {\"done\":true}`" + ` |
| Response ID | chatcmpl-xxx (unique per request) | Not included |
| Usage stats | prompt_tokens + completion_tokens | Not included |
| n (num choices) | Multiple choices per request | Single completion only |
| Rate limiting | Per-key RPM/TPM limits | Input validation only |`

func serving() content.Tree {
	return content.Tree{
		h("Serving & API Design"),
		p("*From trained model to production API: deployment, multi-GPU serving, and real-world API design.*"),
		p("You have trained a model, evaluated it, and run inference locally. But a model sitting on disk is useless until users can reach it.",
			"This chapter covers how nanochat wraps the trained GPT model into a web API, how that API is designed,",
			"and how it compares to the industry-standard OpenAI Chat Completions API."),

		h("1. The Serving Stack"),
		p("Serving an LLM requires a different architecture than training. Training maximizes GPU utilization with large batches;",
			"serving handles concurrent user requests with low latency. Here is nanochat's serving stack:"),
		diagram("nanochat Serving Architecture",
			"Web Framework  FastAPI + uvicorn (ASGI, async I/O)",
			"API Layer      Pydantic validation, CORS middleware, SSE streaming",
			"Worker Pool    asyncio.Queue, one worker per GPU, request-level parallelism",
			"Engine         KV cache, prefill/decode loop, tool-use (calculator)",
			"Model          GPT weights on GPU(s), autocast to bfloat16",
		),
		note(content.KeyConcept,
			"nanochat uses **data parallelism for serving**: each GPU loads a full copy of the model",
			"and incoming requests go to available workers through an async queue.",
			"No tensor or pipeline parallelism, just N independent replicas."),
		code("scripts/chat_web.py", 98, `
class WorkerPool:
    """Pool of workers, each with a model replica on a different GPU."""

    def __init__(self, num_gpus: Optional[int] = None):
        if num_gpus is None:
            if device_type == "cuda":
                num_gpus = torch.cuda.device_count()
            else:
                num_gpus = 1  # e.g. cpu|mps
        self.num_gpus = num_gpus
        self.workers: List[Worker] = []
        self.available_workers: asyncio.Queue = asyncio.Queue()

    async def acquire_worker(self) -> Worker:
        """Get an available worker from the pool."""
        return await self.available_workers.get()

    async def release_worker(self, worker: Worker):
        """Return a worker to the pool."""
        await self.available_workers.put(worker)
`),
		p("`asyncio.Queue` acts as a semaphore: if all GPUs are busy, the next request awaits until a worker is freed.",
			"There is no request batching and no scheduler beyond that queue."),

		h("2. Request Lifecycle"),
		p("Every chat request flows through a well-defined pipeline. Select each step below to see what happens:"),
		demo("Request Flow: Client → Response", demos.NewFlow),
		p("The key design decision is **streaming by default**. Instead of waiting for the entire response,",
			"nanochat uses Server-Sent Events (SSE) to push each token as it is generated, so the user sees output immediately."),
		code("scripts/chat_web.py", 262, `
async def generate_stream(
    worker: Worker,
    tokens,
    temperature=None,
    max_new_tokens=None,
    top_k=None
) -> AsyncGenerator[str, None]:
    """Generate assistant response with streaming."""
    # ...
    with worker.autocast_ctx:
        for token_column, token_masks in worker.engine.generate(
            tokens, num_samples=1, max_tokens=max_new_tokens,
            temperature=temperature, top_k=top_k,
            seed=random.randint(0, 2**31 - 1)
        ):
            token = token_column[0]
            if token == assistant_end or token == bos:
                break
            accumulated_tokens.append(token)
            current_text = worker.tokenizer.decode(accumulated_tokens)
            # Only emit when we have complete UTF-8 characters
            if not current_text.endswith('�'):
                new_text = current_text[len(last_clean_text):]
                if new_text:
                    yield f"data: {json.dumps({'token': new_text, 'gpu': worker.gpu_id})}\n\n"
                    last_clean_text = current_text
    yield f"data: {json.dumps({'done': True})}\n\n"
`),
		note(content.Info,
			"Some tokens are fragments of multi-byte characters such as emoji.",
			"The server accumulates tokens and only emits text once the decoded string no longer ends with the replacement character `U+FFFD`,",
			"so clients never see garbled output."),

		h("3. Chat Template: Turning Messages into Tokens"),
		p("A chat API accepts structured messages (`role` + `content`), but the model only understands token IDs.",
			"The chat template bridges the gap with special tokens the model learned during SFT (supervised fine-tuning):"),
		diagram("Chat Template Encoding",
			"BOS <|user_start|> What is 2+2? <|user_end|> <|assistant_start|> ...",
		),
		code("scripts/chat_web.py", 330, `
# Build conversation tokens
bos = worker.tokenizer.get_bos_token_id()
user_start = worker.tokenizer.encode_special("<|user_start|>")
user_end = worker.tokenizer.encode_special("<|user_end|>")
assistant_start = worker.tokenizer.encode_special("<|assistant_start|>")
assistant_end = worker.tokenizer.encode_special("<|assistant_end|>")

conversation_tokens = [bos]
for message in request.messages:
    if message.role == "user":
        conversation_tokens.append(user_start)
        conversation_tokens.extend(worker.tokenizer.encode(message.content))
        conversation_tokens.append(user_end)
    elif message.role == "assistant":
        conversation_tokens.append(assistant_start)
        conversation_tokens.extend(worker.tokenizer.encode(message.content))
        conversation_tokens.append(assistant_end)

conversation_tokens.append(assistant_start)  # prompt the model to respond
`),
		note(content.KeyConcept,
			"The final `<|assistant_start|>` tells the model \"now it's your turn to speak\".",
			"Generation stops when the model produces `<|assistant_end|>` or the BOS token."),

		h("4. API Design: nanochat vs OpenAI"),
		p("OpenAI exposes both `POST /v1/completions` (legacy prompt-based) and `POST /v1/chat/completions` (message-based).",
			"nanochat is closer to Chat Completions in structure, with a smaller parameter surface:"),
		content.Prose{Markdown: apiComparison},
		code("openai_completions_example.py", 0, `
import openai

client = openai.OpenAI()
resp = client.completions.create(
    model="gpt-3.5-turbo-instruct",
    prompt="Write one sentence about KV cache.",
    temperature=0.7,
    max_tokens=64
)
print(resp.choices[0].text)
`),
		code("openai_example.py", 0, `
import openai

client = openai.OpenAI()
response = client.chat.completions.create(
    model="gpt-4o",
    messages=[
        {"role": "system", "content": "You are a helpful assistant."},
        {"role": "user", "content": "What is the capital of France?"}
    ],
    temperature=0.8,
    max_completion_tokens=512,
    stream=True
)
for chunk in response:
    delta = chunk.choices[0].delta
    if delta.content:
        print(delta.content, end="", flush=True)
`),
		content.Code{Filename: "openai_stream_chunk.json", Language: "json", Source: `{
  "id": "chatcmpl-abc123",
  "object": "chat.completion.chunk",
  "created": 1709123456,
  "model": "gpt-4o",
  "choices": [
    {
      "index": 0,
      "delta": {
        "content": "Paris"
      },
      "finish_reason": null
    }
  ]
}`},
		content.Code{Filename: "nanochat_stream.txt", Language: "text", Source: `data: {"token": "Paris", "gpu": 0}
data: {"token": " is", "gpu": 0}
data: {"token": " the", "gpu": 0}
data: {"token": " capital", "gpu": 0}
data: {"done": true}`},
		note(content.Info,
			"nanochat's stream is flat JSON with just the token text and GPU id, which helps when debugging multi-GPU setups.",
			"OpenAI wraps everything in a `choices` array to support several completions per request (`n > 1`)",
			"and adds metadata like model name, usage stats and finish reasons."),

		h("5. Input Validation & Abuse Prevention"),
		p("LLM APIs have a unique concern: a malicious user can exhaust GPU time with extremely long conversations",
			"or requests for thousands of output tokens. nanochat enforces hard limits:"),
		diagram("Limits",
			"Max messages        500 per request",
			"Max message length  8,000 chars each",
			"Max conversation    32,000 chars total",
			"Temperature         0.0 – 2.0",
			"Top-k               0 – 200",
			"Max tokens          1 – 4,096",
		),
		code("scripts/chat_web.py", 160, `
def validate_chat_request(request: ChatRequest):
    """Validate chat request to prevent abuse."""
    if len(request.messages) == 0:
        raise HTTPException(status_code=400, detail="At least one message is required")
    if len(request.messages) > MAX_MESSAGES_PER_REQUEST:
        raise HTTPException(status_code=400,
            detail=f"Too many messages. Maximum {MAX_MESSAGES_PER_REQUEST} allowed")

    total_length = 0
    for i, message in enumerate(request.messages):
        msg_length = len(message.content)
        if msg_length > MAX_MESSAGE_LENGTH:
            raise HTTPException(status_code=400,
                detail=f"Message {i} too long. Max {MAX_MESSAGE_LENGTH} chars")
        total_length += msg_length

    if total_length > MAX_TOTAL_CONVERSATION_LENGTH:
        raise HTTPException(status_code=400,
            detail=f"Conversation too long. Max {MAX_TOTAL_CONVERSATION_LENGTH} chars")
`),
		note(content.ThinkAbout,
			"OpenAI goes further with per-key rate limits (requests and tokens per minute), usage tiers and spending caps.",
			"nanochat skips authentication entirely because it targets local or trusted-network use.",
			"A public deployment would need authentication and rate limiting."),

		h("6. CORS, Health Checks & Operational Endpoints"),
		diagram("Endpoints",
			"GET   /                  built-in chat UI (ui.html), no separate frontend deploy",
			"POST  /chat/completions  the main chat API, streaming SSE response",
			"GET   /health            worker pool status: ready state, GPU count, available workers",
			"GET   /stats             total/available/busy workers, per-GPU device info",
			"GET   /logo.svg          NanoChat logo for favicon and header",
		),
		code("scripts/chat_web.py", 384, `
@app.get("/health")
async def health():
    """Health check endpoint."""
    worker_pool = getattr(app.state, 'worker_pool', None)
    return {
        "status": "ok",
        "ready": worker_pool is not None and len(worker_pool.workers) > 0,
        "num_gpus": worker_pool.num_gpus if worker_pool else 0,
        "available_workers": worker_pool.available_workers.qsize() if worker_pool else 0
    }
`),
		note(content.Info,
			"**CORS is wide open** (`allow_origins=[\"*\"]`) because nanochat targets local development.",
			"A production API would restrict origins to known domains and require authentication headers."),

		h("7. Launching the Server"),
		p("The server is launched as a Python module. A `lifespan` context manager loads models on startup and keeps them in GPU memory:"),
		shell("terminal", `
# Single GPU (default)
python -m scripts.chat_web

# 4 GPUs with custom settings
python -m scripts.chat_web --num-gpus 4 --temperature 0.7 --top-k 40 --max-tokens 1024

# CPU/MPS (no CUDA required)
python -m scripts.chat_web --device-type cpu
python -m scripts.chat_web --device-type mps  # Apple Silicon

# Custom model and port
python -m scripts.chat_web --model-tag my_experiment --step 5000 --port 3000
`),
		code("scripts/chat_web.py", 223, `
@asynccontextmanager
async def lifespan(app: FastAPI):
    """Load models on all GPUs on startup."""
    print("Loading nanochat models across GPUs...")
    app.state.worker_pool = WorkerPool(num_gpus=args.num_gpus)
    await app.state.worker_pool.initialize(
        args.source, model_tag=args.model_tag, step=args.step
    )
    print(f"Server ready at http://localhost:{args.port}")
    yield  # server runs here

app = FastAPI(lifespan=lifespan)
`),
		note(content.KeyConcept,
			"FastAPI's `lifespan` pattern replaces the older `@app.on_event(\"startup\")`.",
			"Everything before `yield` runs on startup and everything after runs on shutdown,",
			"so models are loaded before the server accepts a request."),

		h("8. Try It: Build Your Own Request"),
		p("Adjust the messages and parameters, then copy the generated curl command or Python code to test against a running nanochat server:"),
		demo("API Request Builder", demos.NewAPIBuilder),

		h("9. What a Production API Adds"),
		p("nanochat's API is intentionally minimal. Here is what it does *not* implement and why production systems need it:"),
		diagram("Missing in nanochat",
			"✗ Authentication & API Keys  track usage per customer, billing and access control",
			"✗ Rate Limiting              stop one user from monopolizing GPU time (RPM/TPM limits)",
			"✗ Usage Tracking             count prompt and completion tokens for billing",
			"✗ Model Selection            route requests to different models",
			"✗ Function/Tool Calling      structured JSON tool invocation in the API protocol",
			"✗ Content Filtering          safety classifiers on inputs and outputs",
			"✗ Multiple Choices (n)       N completions per request, needs the choices[] wrapper",
			"✗ Request Batching           continuous batching of requests (vLLM, TGI)",
		),
		content.Callout{Kind: content.Math, Title: "Decode-time cost (with KV cache)",
			Body: "Each new token reuses past K/V, so per-layer compute is dominated by projections and MLP (roughly O(B×d²)) " +
				"plus attention against cached context (roughly O(B×C×d)). Cache memory grows as O(B×C×d), " +
				"which often becomes the serving bottleneck before raw FLOPs."},

		h("Knowledge Check"),
		content.Quiz{
			Question: "Why does nanochat use asyncio.Queue for its worker pool instead of a thread pool?",
			Options: []string{
				"Because Python threads cannot use GPUs",
				"Because asyncio.Queue integrates naturally with FastAPI's async request handling, so a request awaits a worker without blocking the event loop",
				"Because asyncio.Queue is faster than threading.Queue",
				"Because CUDA requires async operations",
			},
			Correct: 1,
			Explanation: "FastAPI runs on an async event loop. asyncio.Queue lets the server handle many concurrent connections while waiting for " +
				"GPU workers without blocking threads; the GPU work itself runs synchronously inside the acquired worker.",
		},
		content.Quiz{
			Question: "What is the key difference between nanochat's streaming format and OpenAI's?",
			Options: []string{
				"nanochat uses WebSocket while OpenAI uses SSE",
				"nanochat sends raw text while OpenAI sends JSON",
				"nanochat sends flat {token, gpu} objects and ends with {done: true}, while OpenAI wraps tokens in choices[].delta.content and ends with [DONE]",
				"There is no difference, they use the same format",
			},
			Correct: 2,
			Explanation: "Each nanochat SSE event carries {token, gpu} directly. OpenAI nests content inside choices[0].delta.content to support n > 1, " +
				"adds metadata like model name and finish_reason, and terminates with the literal [DONE].",
		},
		content.Quiz{
			Question: "Why does the server check for the Unicode replacement character (U+FFFD) before emitting tokens?",
			Options: []string{
				"To filter out invalid tokens from the model",
				"To ensure multi-byte characters (like emoji) are fully decoded before sending to the client",
				"To compress the output stream",
				"To detect when the model is hallucinating",
			},
			Correct: 1,
			Explanation: "BPE can split a multi-byte UTF-8 character across tokens, and decoding a partial sequence yields U+FFFD. " +
				"Waiting until the decoded text is clean guarantees clients receive valid UTF-8.",
		},
	}
}
