package demos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// ChatEndpoint is where nanochat's web server listens by default.
const ChatEndpoint = "http://localhost:8000/chat/completions"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat/completions.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopK        int       `json:"top_k"`
}

// withoutEmpty drops messages with no content. Never nil, so it encodes as [].
func (r ChatRequest) withoutEmpty() ChatRequest {
	r.Messages = lo.Filter(r.Messages, func(m Message, _ int) bool { return m.Content != "" })
	if r.Messages == nil {
		r.Messages = []Message{}
	}
	return r
}

// NextRole alternates user and assistant after the last message.
func NextRole(msgs []Message) string {
	if len(msgs) > 0 && msgs[len(msgs)-1].Role == "user" {
		return "assistant"
	}
	return "user"
}

// CurlCommand renders the request as a shell command. Single quotes in the
// body are escaped for the single-quoted -d argument.
func CurlCommand(r ChatRequest) (string, error) {
	body, err := json.MarshalIndent(r.withoutEmpty(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	escaped := strings.ReplaceAll(string(body), "'", `'\''`)
	return "curl -X POST " + ChatEndpoint + " \\\n" +
		"  -H \"Content-Type: application/json\" \\\n" +
		"  -d '" + escaped + "'", nil
}

// PythonSnippet renders the request as a streaming requests call.
func PythonSnippet(r ChatRequest) (string, error) {
	r = r.withoutEmpty()
	msgs, err := json.MarshalIndent(r.Messages, "        ", "    ")
	if err != nil {
		return "", fmt.Errorf("encode messages: %w", err)
	}
	var b strings.Builder
	b.WriteString("import requests\nimport json\n\n")
	b.WriteString("response = requests.post(\n")
	b.WriteString("    \"" + ChatEndpoint + "\",\n")
	b.WriteString("    json={\n")
	b.WriteString("        \"messages\": " + string(msgs) + ",\n")
	b.WriteString("        \"temperature\": " + strconv.FormatFloat(r.Temperature, 'f', -1, 64) + ",\n")
	b.WriteString("        \"max_tokens\": " + strconv.Itoa(r.MaxTokens) + ",\n")
	b.WriteString("        \"top_k\": " + strconv.Itoa(r.TopK) + "\n")
	b.WriteString("    },\n    stream=True\n)\n\n")
	b.WriteString("for line in response.iter_lines():\n")
	b.WriteString("    if line:\n")
	b.WriteString("        data = json.loads(line.decode().removeprefix(\"data: \"))\n")
	b.WriteString("        if \"token\" in data:\n")
	b.WriteString("            print(data[\"token\"], end=\"\", flush=True)\n")
	b.WriteString("        elif data.get(\"done\"):\n")
	b.WriteString("            print()  # newline at end")
	return b.String(), nil
}

var builderKeys = struct {
	Add, Role, Delete, Output key.Binding
}{
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add message")),
	Role:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "switch role")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove message")),
	Output: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "curl/python")),
}

// APIBuilder composes a chat completion request. Rows are the messages
// followed by the three sampling parameters.
type APIBuilder struct {
	messages    []Message
	temperature *widget.Slider
	maxTokens   *widget.Slider
	topK        *widget.Slider
	cursor      int
	python      bool
	input       textinput.Model
}

func NewAPIBuilder() widget.Interactive {
	ti := textinput.New()
	ti.Placeholder = "Message content..."
	ti.Prompt = ""
	ti.CharLimit = 500
	return &APIBuilder{
		messages:    []Message{{Role: "user", Content: "What is the capital of France?"}},
		temperature: widget.NewSlider(0, 2, 0.1, 0.8),
		maxTokens:   widget.NewSlider(1, 4096, 1, 512),
		topK:        widget.NewSlider(0, 200, 1, 50),
		input:       ti,
	}
}

// Request is the request described by the current state.
func (d *APIBuilder) Request() ChatRequest {
	return ChatRequest{
		Messages:    append([]Message(nil), d.messages...),
		Temperature: d.temperature.Value(),
		MaxTokens:   d.maxTokens.Int(),
		TopK:        d.topK.Int(),
	}
}

func (d *APIBuilder) Editing() bool { return d.input.Focused() }

func (d *APIBuilder) rows() int { return len(d.messages) + 3 }

// slider returns the parameter under the cursor, nil on a message row.
func (d *APIBuilder) slider() *widget.Slider {
	switch d.cursor - len(d.messages) {
	case 0:
		return d.temperature
	case 1:
		return d.maxTokens
	case 2:
		return d.topK
	}
	return nil
}

// AddMessage appends an empty message with the alternating role.
func (d *APIBuilder) AddMessage() {
	d.messages = append(d.messages, Message{Role: NextRole(d.messages)})
}

// RemoveMessage deletes message i. The last remaining message stays.
func (d *APIBuilder) RemoveMessage(i int) {
	if len(d.messages) <= 1 || i < 0 || i >= len(d.messages) {
		return
	}
	d.messages = append(d.messages[:i], d.messages[i+1:]...)
	d.cursor = lo.Clamp(d.cursor, 0, d.rows()-1)
}

func (d *APIBuilder) Update(msg tea.KeyMsg) bool {
	if d.input.Focused() {
		if key.Matches(msg, keys.Done) {
			d.input.Blur()
			return true
		}
		d.input, _ = d.input.Update(msg)
		d.messages[d.cursor].Content = d.input.Value()
		return true
	}

	onMessage := d.cursor < len(d.messages)
	switch {
	case key.Matches(msg, keys.Up):
		if d.cursor == 0 {
			return false
		}
		d.cursor--
	case key.Matches(msg, keys.Down):
		if d.cursor == d.rows()-1 {
			return false
		}
		d.cursor++
	case key.Matches(msg, keys.Edit) && onMessage:
		d.input.SetValue(d.messages[d.cursor].Content)
		d.input.Focus()
		d.input.CursorEnd()
	case key.Matches(msg, builderKeys.Add):
		d.AddMessage()
		d.cursor = len(d.messages) - 1
	case key.Matches(msg, builderKeys.Role) && onMessage:
		m := &d.messages[d.cursor]
		m.Role = lo.Ternary(m.Role == "user", "assistant", "user")
	case key.Matches(msg, builderKeys.Delete) && onMessage:
		d.RemoveMessage(d.cursor)
	case key.Matches(msg, builderKeys.Output):
		d.python = !d.python
	case key.Matches(msg, keys.Left) && !onMessage:
		d.slider().Dec()
	case key.Matches(msg, keys.Right) && !onMessage:
		d.slider().Inc()
	case key.Matches(msg, keys.CoarseLeft) && !onMessage:
		s := d.slider()
		s.Set(s.Value() - 10*s.Step())
	case key.Matches(msg, keys.CoarseRight) && !onMessage:
		s := d.slider()
		s.Set(s.Value() + 10*s.Step())
	default:
		return false
	}
	return true
}

func (d *APIBuilder) Keys() []key.Binding {
	if d.input.Focused() {
		return []key.Binding{keys.Done}
	}
	if d.cursor < len(d.messages) {
		return []key.Binding{keys.Up, keys.Down, keys.Edit, builderKeys.Role, builderKeys.Add, builderKeys.Delete, builderKeys.Output}
	}
	return []key.Binding{keys.Up, keys.Down, keys.Left, keys.Right, builderKeys.Add, builderKeys.Output}
}

func (d *APIBuilder) View(th theme.Theme, width int) string {
	row := func(i int, body string) string {
		marker := "  "
		if i == d.cursor {
			marker = th.Fg(th.Accent).Render("▸ ")
		}
		return marker + body + "\n"
	}

	var b strings.Builder
	b.WriteString(th.Fg(th.Subtext).Bold(true).Render("Messages"))
	b.WriteString("\n")
	d.input.Width = lo.Clamp(width-20, 10, 60)
	for i, m := range d.messages {
		content := m.Content
		if d.input.Focused() && i == d.cursor {
			content = d.input.View()
		} else if content == "" {
			content = th.Fg(th.Muted).Render("(empty, skipped)")
		}
		role := th.Fg(th.Secondary).Render(padRight(m.Role, 10))
		b.WriteString(row(i, role+content))
	}
	b.WriteString("\n")

	sliders := []struct {
		label string
		s     *widget.Slider
		text  string
	}{
		{"temperature", d.temperature, fmt.Sprintf("%.1f", d.temperature.Value())},
		{"max_tokens", d.maxTokens, strconv.Itoa(d.maxTokens.Int())},
		{"top_k", d.topK, strconv.Itoa(d.topK.Int())},
	}
	trackW := lo.Clamp(width-32, 10, 30)
	for i, s := range sliders {
		body := th.Fg(th.Subtext).Render(padRight(s.label, 12)) + track(th, s.s.Fraction(), trackW) +
			"  " + th.Fg(th.Primary).Bold(true).Render(s.text)
		b.WriteString(row(len(d.messages)+i, body))
	}
	b.WriteString("\n")

	title := "curl"
	snippet, err := CurlCommand(d.Request())
	if d.python {
		title = "python"
		snippet, err = PythonSnippet(d.Request())
	}
	if err != nil {
		snippet = err.Error()
	}
	b.WriteString(th.Fg(th.Muted).Render(title + " (v to switch)"))
	b.WriteString("\n")
	b.WriteString(th.Style().Foreground(th.Code).Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(th.Border).PaddingLeft(1).Render(snippet))
	return b.String()
}

// FlowStep is one stage of serving a request.
type FlowStep struct {
	ID    string
	Label string
	Desc  string
}

// RequestFlow is the life of a chat request inside nanochat's server.
var RequestFlow = []FlowStep{
	{"client", "Client", "Browser, curl or Python sends a POST request with messages and parameters"},
	{"validate", "Validate", "FastAPI validates message count, lengths, temperature range and top_k bounds"},
	{"tokenize", "Tokenize", "Messages become token ids with special tokens: <|user_start|>, <|user_end|>, <|assistant_start|>"},
	{"acquire", "Acquire GPU", "The WorkerPool hands out an available GPU worker (async queue, waits while all are busy)"},
	{"generate", "Generate", "The Engine runs prefill, then a decode loop with the KV cache, sampling with temperature and top_k"},
	{"stream", "Stream SSE", `Each token goes out as an SSE event: data: {"token": "...", "gpu": 0}`},
	{"done", "Done", `Final event: data: {"done": true}. The GPU worker returns to the pool.`},
}

// Flow is the clickable request-flow diagram: a cursor over the steps and at
// most one expanded step.
type Flow struct {
	cursor *widget.Choice
	open   *widget.Toggle
	opened int
}

func NewFlow() widget.Interactive {
	return &Flow{cursor: widget.NewChoice(len(RequestFlow), 0), open: widget.NewToggle(false)}
}

// Expanded returns the step whose details are shown.
func (d *Flow) Expanded() (FlowStep, bool) {
	if !d.open.On() {
		return FlowStep{}, false
	}
	return RequestFlow[d.opened], true
}

func (d *Flow) Update(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Left):
		d.cursor.Select(d.cursor.Index() - 1)
	case key.Matches(msg, keys.Right):
		d.cursor.Select(d.cursor.Index() + 1)
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Toggle):
		if d.open.On() && d.opened == d.cursor.Index() {
			d.open.Set(false)
		} else {
			d.opened = d.cursor.Index()
			d.open.Set(true)
		}
	case key.Matches(msg, keys.Reset):
		d.cursor.Reset()
		d.open.Reset()
	default:
		return false
	}
	return true
}

func (d *Flow) Keys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "move")),
		key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "show details")),
	}
}

func (d *Flow) View(th theme.Theme, width int) string {
	exp, expanded := d.Expanded()
	chips := make([]string, len(RequestFlow))
	for i, s := range RequestFlow {
		style := th.Style().Foreground(th.Subtext)
		if expanded && s.ID == exp.ID {
			style = th.Style().Foreground(th.Text).Background(th.Highlight).Bold(true)
		}
		if i == d.cursor.Index() {
			style = style.Underline(true).Foreground(th.Accent)
		}
		c := chip(style, s.Label)
		if i < len(RequestFlow)-1 {
			c += th.Fg(th.Border).Render(" →")
		}
		chips[i] = c
	}

	var b strings.Builder
	b.WriteString(flow(chips, width))
	b.WriteString("\n\n")
	if expanded {
		b.WriteString(th.Style().Foreground(th.Text).Border(lipgloss.RoundedBorder()).BorderForeground(th.Border).
			Padding(0, 1).Width(lo.Clamp(width-4, 20, 80)).Render(exp.Desc))
		b.WriteString("\n")
	}
	b.WriteString(caption(th, "Select a step to see what happens there."))
	return b.String()
}
