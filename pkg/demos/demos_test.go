package demos

import (
	"io"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

func plainTheme() theme.Theme {
	return theme.Default(lipgloss.NewRenderer(io.Discard))
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestEveryDemoRendersAndAcceptsKeys(t *testing.T) {
	constructors := map[string]func() widget.Interactive{
		"sampling":       NewSampling,
		"autoregressive": NewAutoregressive,
		"tokenizer":      NewTokenizer,
		"bpe":            NewBPE,
		"embedding":      NewEmbedding,
		"rope":           NewRoPE,
		"heatmap":        NewHeatmap,
		"multihead":      NewMultiHead,
		"residual":       NewResidual,
		"activation":     NewActivation,
		"params":         NewParamCounter,
		"loss":           NewLossCurve,
		"lr":             NewLRSchedule,
		"api":            NewAPIBuilder,
		"flow":           NewFlow,
	}
	th := plainTheme()
	for name, ctor := range constructors {
		d := ctor()
		if d.View(th, 80) == "" {
			t.Errorf("%s: expected a non-empty view", name)
		}
		if len(d.Keys()) == 0 {
			t.Errorf("%s: expected key help", name)
		}
		for _, msg := range []tea.KeyMsg{keyRight, keyLeft, keyDown, keyUp, keyRunes("r")} {
			d.Update(msg)
		}
		if d.View(th, 20) == "" {
			t.Errorf("%s: expected a view at narrow width", name)
		}
	}
}

func TestDistributionMatchesSoftmax(t *testing.T) {
	logits := make([]float64, len(SkyLogits))
	for i, l := range SkyLogits {
		logits[i] = l.Value
	}
	p := Distribution(logits, 1, 0)
	want := []float64{0.5797, 0.1930, 0.1059, 0.0526}
	for i, w := range want {
		if !almostEqual(p[i], w, 1e-4) {
			t.Errorf("p[%d] = %.4f, want %.4f", i, p[i], w)
		}
	}
}

func TestDistributionTopKMasks(t *testing.T) {
	p := Distribution([]float64{3.2, 2.1, 1.5, 0.8}, 1, 2)
	if p[2] != 0 || p[3] != 0 {
		t.Errorf("Expected masked tail, got %v", p)
	}
	if !almostEqual(p[0]+p[1], 1, 1e-12) {
		t.Errorf("Expected kept mass 1, got %v", p[0]+p[1])
	}
}

func TestDistributionZeroTemperatureIsGreedy(t *testing.T) {
	p := Distribution([]float64{3.2, 2.1}, 0, 0)
	if p[0] < 0.999999 {
		t.Errorf("Expected near-certain top token, got %v", p)
	}
}

func TestDistributionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfNDistinct(rapid.IntRange(-100, 100), 1, 12, rapid.ID[int]).Draw(t, "logits")
		logits := make([]float64, len(raw))
		for i, v := range raw {
			logits[i] = float64(v) / 10
		}
		temp := rapid.Float64Range(0, 3).Draw(t, "temp")
		k := rapid.IntRange(0, 12).Draw(t, "k")

		p := Distribution(logits, temp, k)
		sum, nonzero := 0.0, 0
		for _, v := range p {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("probability out of range: %v", p)
			}
			sum += v
			if v > 0 {
				nonzero++
			}
		}
		if !almostEqual(sum, 1, 1e-9) {
			t.Fatalf("probabilities sum to %v", sum)
		}
		if k > 0 && k < len(logits) && nonzero > k {
			t.Fatalf("top-%d left %d tokens", k, nonzero)
		}

		again := Distribution(logits, temp, k)
		for i := range p {
			if p[i] != again[i] {
				t.Fatalf("recomputation differs at %d", i)
			}
		}
	})
}

func TestTemperatureLabelAndFormat(t *testing.T) {
	tests := map[float64]string{0: "Greedy (always pick the best)", 0.3: "Very focused", 1: "Balanced", 1.5: "Creative", 2.5: "Very random"}
	for temp, want := range tests {
		if got := TemperatureLabel(temp); got != want {
			t.Errorf("TemperatureLabel(%v) = %q, want %q", temp, got, want)
		}
	}
	if FormatProbability(0.0004) != "~0%" || FormatProbability(0.5797) != "58.0%" {
		t.Errorf("Unexpected formatting: %s %s", FormatProbability(0.0004), FormatProbability(0.5797))
	}
}

func TestSamplingSlidersClamp(t *testing.T) {
	d := NewSampling().(*Sampling)
	for i := 0; i < 50; i++ {
		d.Update(keyRight)
	}
	if d.temperature.Value() != 3 {
		t.Errorf("Expected temperature clamped to 3, got %v", d.temperature.Value())
	}
	d.Update(keyDown)
	d.Update(keyRight)
	d.Update(keyRight)
	if d.topK.Int() != 2 {
		t.Errorf("Expected top-k 2, got %d", d.topK.Int())
	}
	nonzero := 0
	for _, p := range d.Probabilities() {
		if p > 0 {
			nonzero++
		}
	}
	if nonzero != 2 {
		t.Errorf("Expected 2 candidates under top-2, got %d", nonzero)
	}
	if !strings.Contains(d.View(plainTheme(), 80), "Only consider top 2 tokens") {
		t.Error("Expected the top-k hint in the view")
	}
}

func TestAutoregressiveWalk(t *testing.T) {
	d := NewAutoregressive().(*Autoregressive)
	for i := 0; i < 10; i++ {
		d.Update(keyRight)
	}
	_, gen, next := d.Frame()
	if len(gen) != 5 || next != "white" {
		t.Errorf("Expected last frame, got %v next=%s", gen, next)
	}
	if !d.Update(keyRight) {
		t.Error("Expected arrows to be consumed at the end")
	}
	d.Update(keyRunes("r"))
	if _, gen, _ := d.Frame(); len(gen) != 0 {
		t.Errorf("Expected reset to the first frame, got %v", gen)
	}
}

func TestTokenizeDefaultInput(t *testing.T) {
	got := Tokenize(DefaultTokenizerInput)
	want := []Token{{"Hello", 15496}, {",", 11}, {" world", 995}, {"!", 0}, {" How", 1374}, {" are", 389}, {" you", 345}, {"?", 30}}
	if len(got) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTokenizeUnknownFallsBackToCodePoint(t *testing.T) {
	got := Tokenize("Zé")
	if len(got) != 2 || got[0].ID != 'Z' || got[1].ID != 'é' || got[1].Text != "é" {
		t.Errorf("Unexpected tokens: %+v", got)
	}
	if len(Tokenize("")) != 0 {
		t.Error("Expected no tokens for empty input")
	}
}

func TestTokenizeRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		var b strings.Builder
		for _, tok := range Tokenize(s) {
			if tok.Text == "" {
				t.Fatal("empty token")
			}
			b.WriteString(tok.Text)
		}
		if b.String() != s {
			t.Fatalf("round trip %q -> %q", s, b.String())
		}
	})
}

func TestTokenizerEditing(t *testing.T) {
	d := NewTokenizer().(*Tokenizer)
	if d.Editing() {
		t.Fatal("Expected not editing initially")
	}
	d.Update(keyEnter)
	if !d.Editing() {
		t.Fatal("Expected enter to start editing")
	}
	if !d.Update(keyRunes("q")) {
		t.Error("Expected typed keys to be consumed while editing")
	}
	if !strings.HasSuffix(d.Text(), "q") {
		t.Errorf("Expected typed rune appended, got %q", d.Text())
	}
	d.Update(keyEsc)
	if d.Editing() {
		t.Error("Expected esc to stop editing")
	}
	d.Update(keyRunes("r"))
	if d.Text() != DefaultTokenizerInput {
		t.Errorf("Expected reset text, got %q", d.Text())
	}
}

func TestBPEFrames(t *testing.T) {
	d := NewBPE().(*BPE)
	if len(d.Frame().Tokens) != 12 {
		t.Fatalf("Expected 12 character tokens, got %d", len(d.Frame().Tokens))
	}
	for i := 0; i < 10; i++ {
		d.Update(keyRight)
	}
	last := d.Frame()
	if strings.Join(last.Tokens, "") != "lower lowest" {
		t.Errorf("Expected merges to preserve the text, got %q", strings.Join(last.Tokens, ""))
	}
	for _, f := range MergeFrames {
		if strings.Join(f.Tokens, "") != "lower lowest" {
			t.Errorf("frame %q does not spell the text", f.Title)
		}
		for _, h := range f.Highlight {
			if h < 0 || h >= len(f.Tokens) {
				t.Errorf("frame %q highlights %d out of range", f.Title, h)
			}
		}
	}
}

func TestEmbeddingValuesAreStable(t *testing.T) {
	got := EmbeddingValues(464)
	want := []float64{-0.680, 0.264, -0.178, -0.547, -0.724, -0.098, 0.343, -0.503}
	for i := range want {
		if !almostEqual(got[i], want[i], 0.0005) {
			t.Errorf("value %d = %.4f, want %.3f", i, got[i], want[i])
		}
	}
}

func TestEmbeddingValuesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.IntRange(-100, 40000).Draw(t, "id")
		a, b := EmbeddingValues(id), EmbeddingValues(id)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("id %d not deterministic at %d", id, i)
			}
			if a[i] < -1 || a[i] > 1 {
				t.Fatalf("id %d value %v out of [-1,1]", id, a[i])
			}
		}
	})
}

func TestEmbeddingTypedIDIsClamped(t *testing.T) {
	d := NewEmbedding().(*Embedding)
	d.Update(keyEnter)
	for _, r := range "99999" {
		d.Update(keyRunes(string(r)))
	}
	d.Update(keyEnter)
	if d.TokenID() != MaxTokenID {
		t.Errorf("Expected id clamped to %d, got %d", MaxTokenID, d.TokenID())
	}
	d.Update(keyRunes("r"))
	if d.TokenID() != 464 {
		t.Errorf("Expected reset to 464, got %d", d.TokenID())
	}
}

func TestRope(t *testing.T) {
	rows := Rope(0)
	if len(rows) != 4 {
		t.Fatalf("Expected 4 pairs, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Angle != 0 || r.Cos != 1 || r.Sin != 0 {
			t.Errorf("Expected identity rotation at position 0, got %+v", r)
		}
	}
	rows = Rope(100)
	if rows[0].Dims != "0,1" || rows[0].Freq != 1 || rows[0].Angle != 100 {
		t.Errorf("Unexpected first pair %+v", rows[0])
	}
	if !almostEqual(rows[3].Freq, 1/math.Pow(10000, 0.75), 1e-15) {
		t.Errorf("Unexpected last frequency %v", rows[3].Freq)
	}
}

func TestFormatExp(t *testing.T) {
	tests := map[float64]string{1: "1.00e+0", 0.1: "1.00e-1", 0.001: "1.00e-3", 12345: "1.23e+4"}
	for v, want := range tests {
		if got := FormatExp(v); got != want {
			t.Errorf("FormatExp(%v) = %s, want %s", v, got, want)
		}
	}
}

func TestCausalWeights(t *testing.T) {
	w := CausalWeights(HeatmapTokens)
	if !almostEqual(w[2][1], 0.3333, 1e-4) {
		t.Errorf("Expected sat→cat 0.3333, got %.4f", w[2][1])
	}
	if !almostEqual(w[5][5], 0.2667, 1e-4) {
		t.Errorf("Expected mat→mat 0.2667, got %.4f", w[5][5])
	}
}

func TestCausalWeightsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tokens := rapid.SliceOfN(rapid.SampledFrom([]string{"The", "cat", "sat", "on", "mat"}), 1, 10).Draw(t, "tokens")
		w := CausalWeights(tokens)
		for i, row := range w {
			sum := 0.0
			for j, v := range row {
				if j > i && v != 0 {
					t.Fatalf("future weight w[%d][%d] = %v", i, j, v)
				}
				sum += v
			}
			if !almostEqual(sum, 1, 1e-12) {
				t.Fatalf("row %d sums to %v", i, sum)
			}
		}
	})
}

func TestHeatmapInspect(t *testing.T) {
	d := NewHeatmap().(*Heatmap)
	if got := d.Inspect(); got != `"cat" attends to "The" with weight 0.385` {
		t.Errorf("Unexpected inspection %q", got)
	}
	d.Update(keyRight)
	d.Update(keyRight)
	if !strings.Contains(d.Inspect(), "masked") {
		t.Errorf("Expected future cell to be masked, got %q", d.Inspect())
	}
	for i := 0; i < 10; i++ {
		d.Update(keyDown)
	}
	if r, _ := d.Cell(); r != len(HeatmapTokens)-1 {
		t.Errorf("Expected cursor clamped to last row, got %d", r)
	}
}

func TestMultiHeadSelection(t *testing.T) {
	d := NewMultiHead().(*MultiHead)
	d.Update(keyLeft)
	if d.Active().Pattern != "Induction" {
		t.Errorf("Expected wrap to Induction, got %s", d.Active().Pattern)
	}
	d.Update(keyRunes("3"))
	if d.Active().Pattern != "Semantic" {
		t.Errorf("Expected Semantic, got %s", d.Active().Pattern)
	}
}

func TestResidualStream(t *testing.T) {
	d := NewResidual().(*Residual)
	stream := d.Stream()
	if len(stream) != 2+4*2+1 {
		t.Fatalf("Expected 11 stages for 4 layers, got %d", len(stream))
	}
	if !strings.Contains(stream[2], "λ₀·x₀") {
		t.Errorf("Expected x0 skip shown by default, got %q", stream[2])
	}
	d.Update(keyRunes("x"))
	if strings.Contains(d.Stream()[2], "λ₀·x₀") {
		t.Error("Expected x0 skip hidden after toggle")
	}
	for i := 0; i < 20; i++ {
		d.Update(keyRight)
	}
	if got := len(d.Stream()); got != 2+12*2+1 {
		t.Errorf("Expected layers clamped at 12, got %d stages", got)
	}
}

func TestActivations(t *testing.T) {
	if ReLU(-1) != 0 || ReLU(1.5) != 1.5 {
		t.Error("ReLU wrong")
	}
	if ReLUSquared(-2) != 0 || ReLUSquared(2) != 4 {
		t.Error("ReLU² wrong")
	}
	if !strings.Contains(NewActivation().View(plainTheme(), 80), "ReLU²(0.5) = 0.250") {
		t.Error("Expected the default readout in the view")
	}
}

func TestCountParams(t *testing.T) {
	tests := []struct {
		depth      int
		dim, heads int
		total      int64
		formatted  string
	}{
		{4, 256, 2, 19922944, "19.9M"},
		{12, 512, 4, 71303168, "71.3M"},
		{20, 640, 5, 140247040, "140.2M"},
		{26, 768, 6, 234356736, "234.4M"},
		{40, 896, 7, 444071936, "444.1M"},
	}
	for _, tt := range tests {
		p := CountParams(tt.depth)
		if p.ModelDim != tt.dim || p.Heads != tt.heads || p.HeadDim != 128 {
			t.Errorf("depth %d: shape %d/%d/%d", tt.depth, p.ModelDim, p.Heads, p.HeadDim)
		}
		if p.Total != tt.total {
			t.Errorf("depth %d: total %d, want %d", tt.depth, p.Total, tt.total)
		}
		if FormatCount(p.Total) != tt.formatted {
			t.Errorf("depth %d: formatted %s, want %s", tt.depth, FormatCount(p.Total), tt.formatted)
		}
	}
}

func TestCountParamsMonotoneProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := rapid.IntRange(4, 39).Draw(t, "depth")
		if CountParams(d+1).Total <= CountParams(d).Total {
			t.Fatalf("params did not grow from depth %d", d)
		}
	})
}

func TestFormatCountAndNotes(t *testing.T) {
	if FormatCount(999) != "999" || FormatCount(1500) != "1.5K" || FormatCount(2_500_000_000) != "2.5B" {
		t.Error("Unexpected FormatCount output")
	}
	if ScaleNote(12) == "" || ScaleNote(25) == "" || ScaleNote(30) == "" {
		t.Error("Expected notes at 12, 25 and 30")
	}
	if ScaleNote(16) != "" {
		t.Error("Expected no note at 16")
	}
}

func TestLossCurve(t *testing.T) {
	if Loss(0) != 4.75 {
		t.Errorf("Expected loss 4.75 at step 0, got %v", Loss(0))
	}
	if !almostEqual(BitsPerByte(4.75), 1.6316, 1e-4) {
		t.Errorf("Unexpected BPB %v", BitsPerByte(4.75))
	}
	series := LossSeries()
	if len(series) != TrainingSteps || series[199] >= series[0] {
		t.Errorf("Expected a falling curve of %d points", TrainingSteps)
	}
	d := NewLossCurve()
	d.Update(keyRunes("L"))
	if !strings.Contains(d.View(plainTheme(), 80), "Step: 10") {
		t.Error("Expected coarse step to move 10 steps")
	}
}

func TestLearningRate(t *testing.T) {
	if WarmupSteps(0.1) != 20 {
		t.Errorf("Expected 20 warmup steps, got %d", WarmupSteps(0.1))
	}
	if LearningRate(0, 0.1) != 0 || LearningRate(10, 0.1) != 0.5 || LearningRate(20, 0.1) != 1 {
		t.Error("Unexpected warmup values")
	}
	if LearningRate(0, 0) != 1 {
		t.Errorf("Expected full LR with no warmup, got %v", LearningRate(0, 0))
	}
	rapid.Check(t, func(t *rapid.T) {
		step := rapid.IntRange(0, TrainingSteps-1).Draw(t, "step")
		w := rapid.Float64Range(0, 0.3).Draw(t, "warmup")
		lr := LearningRate(step, w)
		if lr < 0 || lr > 1 {
			t.Fatalf("lr %v out of [0,1] at step %d warmup %v", lr, step, w)
		}
	})
}

func TestPlotMarksCurrentPoint(t *testing.T) {
	lines := plot([]float64{0, 1, 2, 3}, 3, 2, 4, 4)
	if len(lines) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(lines))
	}
	if []rune(lines[1])[2] != '●' {
		t.Errorf("Expected marker at row 1 col 2, got %q", lines[1])
	}
	if []rune(lines[0])[3] != ' ' {
		t.Error("Expected points after upto to be hidden")
	}
}
