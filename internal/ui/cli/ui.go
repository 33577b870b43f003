package cli

import (
	"fmt"
	"time"

	"reqcheck/internal/core/ports"
	"reqcheck/internal/engine/checker"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	selfDupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	ancestorDupStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FBBF24")).
				Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	conflictList list.Model
	dir          string
	conflicts    []checker.Conflict
	delta        *ports.Delta
	lastUpdate   time.Time
	fileCount    int
	moduleCount  int
	selfDups     int
	ancestorDups int
}

type updateMsg struct {
	conflicts    []checker.Conflict
	delta        *ports.Delta
	fileCount    int
	moduleCount  int
	selfDups     int
	ancestorDups int
	scannedAt    time.Time
}

func newUpdateMsg(result ports.ScanResult) updateMsg {
	return updateMsg{
		conflicts:    result.Check.Conflicts,
		delta:        result.Delta,
		fileCount:    len(result.Tree),
		moduleCount:  result.Tree.ModuleCount(),
		selfDups:     result.Check.Count(checker.KindSelf),
		ancestorDups: result.Check.Count(checker.KindAncestor),
		scannedAt:    result.ScannedAt,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.conflictList.FilterState() != list.Filtering {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.conflictList.SetSize(msg.Width-h, height)
	case updateMsg:
		m.conflicts = msg.conflicts
		m.delta = msg.delta
		m.fileCount = msg.fileCount
		m.moduleCount = msg.moduleCount
		m.selfDups = msg.selfDups
		m.ancestorDups = msg.ancestorDups
		m.lastUpdate = msg.scannedAt
		if m.lastUpdate.IsZero() {
			m.lastUpdate = time.Now()
		}

		items := make([]list.Item, 0, len(m.conflicts))
		for _, c := range m.conflicts {
			items = append(items, item{
				title: c.File,
				desc:  c.Message(),
			})
		}
		m.conflictList.SetItems(items)
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("%s | Last update: %v | %d files | %d modules",
		m.dir, m.lastUpdate.Local().Format("15:04:05"), m.fileCount, m.moduleCount))

	var summary string
	if len(m.conflicts) == 0 {
		summary = successStyle.Render("No duplicates")
	} else {
		summary = fmt.Sprintf("%s | %s",
			selfDupStyle.Render(fmt.Sprintf("%d in same file", m.selfDups)),
			ancestorDupStyle.Render(fmt.Sprintf("%d inherited", m.ancestorDups)))
	}
	if m.delta != nil && m.delta.Previous != nil {
		summary += statusStyle.Render(fmt.Sprintf(" | %+d since last scan", m.delta.Conflicts))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Requirements Duplicate Monitor"), status, summary)
	help := statusStyle.Render("Keys: / filter | q quit")

	return docStyle.Render(header + "\n" + help + "\n\n" + m.conflictList.View())
}

func initialModel(dir string) model {
	conflictList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	conflictList.Title = "Duplicate Declarations"
	conflictList.SetShowStatusBar(false)
	conflictList.SetFilteringEnabled(true)

	return model{
		conflictList: conflictList,
		dir:          dir,
		lastUpdate:   time.Now(),
	}
}
