package chapters

import (
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/demos"
)

func tokenizer() content.Tree {
	return content.Tree{
		h("Tokenization"),
		p("*Converting raw text into numbers the model can process.*"),
		p("Computers work with numbers, not text. The first step is converting text into a sequence of integer **token IDs**.",
			"nanochat uses **Byte Pair Encoding (BPE)**, following a GPT-4-style approach with one deliberate split-pattern deviation."),
		note(content.KeyConcept,
			"**BPE** starts with individual characters (or bytes), then iteratively merges the most frequent adjacent pairs.",
			"Common words become single tokens, while rare words are split into subwords.",
			"Common patterns stay efficient, yet any text can be represented."),
		demo("Watch BPE in action", demos.NewBPE),

		h("The Split Pattern"),
		p("Before BPE merging, the text is pre-split using a GPT-4-style regex pattern",
			"(with one deliberate difference: numbers are split as 1-2 digits here).",
			"This prevents merges across word boundaries:"),
		code("nanochat/tokenizer.py", 30, `
SPLIT_PATTERN = r"""'(?i:[sdmt]|ll|ve|re)|[^\r\n\p{L}\p{N}]?+\p{L}+|\p{N}{1,2}| ?[^\s\p{L}\p{N}]++[\r\n]*|\s*[\r\n]|\s+(?!\S)|\s+"""
`),
		p("This regex splits text into contractions (`'ll`, `'ve`), words, numbers (1-2 digits), punctuation and whitespace,",
			"keeping the tokenizer from creating odd cross-boundary tokens."),

		h("Special Tokens"),
		p("Beyond regular text tokens, nanochat defines special control tokens for structuring conversations:"),
		code("nanochat/tokenizer.py", 13, `
SPECIAL_TOKENS = [
    "<|bos|>",              # Beginning of Sequence, delimits documents
    "<|user_start|>",       # User message start
    "<|user_end|>",         # User message end
    "<|assistant_start|>",  # Assistant message start
    "<|assistant_end|>",    # Assistant message end
    "<|python_start|>",     # Python REPL tool call start
    "<|python_end|>",       # Python REPL tool call end
    "<|output_start|>",     # Python output start
    "<|output_end|>",       # Python output end
]
`),
		note(content.Info,
			"The `<|bos|>` token is prepended at the start of every document during training.",
			"During chat, the conversation structure tokens let the model learn turn-taking between user and assistant."),

		h("Vocabulary Size"),
		p("nanochat uses a vocabulary of **32,768 tokens**. Every piece of text is encoded as a sequence of integers from 0 to 32,767."),
		diagram("From text to model input",
			"Text:        \"The sky is blue\"",
			"↓ split:     [\"The\", \" sky\", \" is\", \" blue\"]",
			"↓ lookup:    [464, 6766, 318, 4171]",
			"↓ tensor:    torch.tensor([[464, 6766, 318, 4171]])",
		),
		demo("Try tokenizing text", demos.NewTokenizer),

		content.Quiz{
			Question: "Why does BPE use subword tokenization instead of just whole words?",
			Options: []string{
				"It's faster to process subwords",
				"It provides a fixed vocabulary that can handle any text, including rare/unseen words",
				"Subwords are easier for the model to learn",
				"Whole word tokenization uses less memory",
			},
			Correct: 1,
			Explanation: "BPE provides a fixed-size vocabulary that can represent any text: common words become single tokens, " +
				"while rare or unknown words are broken into known subword pieces. This eliminates the unknown-token problem of whole-word approaches.",
		},
		content.Quiz{
			Question: "In nanochat's tokenizer, what does the <|bos|> token do?",
			Options: []string{
				"It marks the end of a sentence",
				"It signals that a Python tool is being called",
				"It marks the beginning of a new document/sequence",
				"It separates user and assistant messages",
			},
			Correct: 2,
			Explanation: "<|bos|> stands for Beginning of Sequence. It's prepended at the start of every document during training, " +
				"telling the model that a new context is starting so it shouldn't attend to content from a previous document.",
		},
	}
}
