package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"arthagpt/internal/domain"
	"arthagpt/internal/service"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
	Ask(ctx context.Context, req service.AskRequest) (service.Answer, error)
}

type mode int

const (
	modeSearch mode = iota
	modeAsk
)

func (md mode) String() string {
	if md == modeAsk {
		return "ask"
	}
	return "search"
}

const (
	searchTopK = 10
	askTimeout = 2 * time.Minute
)

type searchMsg struct {
	query   string
	results []domain.SearchResult
	err     error
}

type answerMsg struct {
	question string
	answer   service.Answer
	err      error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service   RAGPort
	input     textinput.Model
	viewport  viewport.Model
	mode      mode
	results   []domain.SearchResult
	answer    *service.Answer
	summary   string
	status    string
	cursor    int
	ready     bool
	busy      bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(service RAGPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Search your documents and press Enter (Tab to ask)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, status: "Loaded. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case searchMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else {
			m.status = fmt.Sprintf("%d results for %q", len(msg.results), msg.query)
			m.results = msg.results
			m.cursor = 0
			m.lastQuery = msg.query
		}
		m.answer = nil
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer = nil
		} else {
			a := msg.answer
			m.answer = &a
			m.lastQuery = msg.question
			if a.Fallback {
				m.status = "Model unavailable, showing fallback"
			} else {
				m.status = "Answered by " + a.Provider
			}
		}
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == modeSearch {
				m.mode = modeAsk
				m.input.Placeholder = "Ask a question and press Enter (Tab to search)"
			} else {
				m.mode = modeSearch
				m.input.Placeholder = "Search your documents and press Enter (Tab to ask)"
			}
			m.status = "Mode: " + m.mode.String()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			if m.mode == modeAsk {
				m.status = "Thinking..."
				return m, m.askCmd(q)
			}
			m.status = "Searching..."
			return m, m.searchCmd(q)
		case "down":
			if m.answer == nil && len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		case "up":
			if m.answer == nil && len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) searchCmd(q string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		res, err := svc.Search(context.Background(), q, searchTopK)
		return searchMsg{query: q, results: res, err: err}
	}
}

func (m Model) askCmd(q string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()
		ans, err := svc.Ask(ctx, service.AskRequest{Question: q})
		return answerMsg{question: q, answer: ans, err: err}
	}
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ArthaGPT") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("  ["+m.mode.String()+"]")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderBody() string {
	if m.answer != nil {
		return renderAnswer(*m.answer)
	}
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s  score=%.3f", m.cursor+1, len(m.results), r.Chunk.Metadata.Source, r.Score)
	body := highlightBestSentence(r.Chunk.Content, m.lastQuery)
	return title + "\n\n" + body
}

func renderAnswer(a service.Answer) string {
	var b strings.Builder
	b.WriteString(a.Text)
	if len(a.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceStyle.Render("Sources: " + strings.Join(a.Sources, ", ")))
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
