package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// Editor styles
var (
	listNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	previewBorder   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

const (
	previewMinWidth  = 24
	previewMinHeight = 8
	defaultStep      = 1.0
)

// =============================================================================
// EditorModel - Interactive chart editing
// =============================================================================

type rowKind int

const (
	rowCategory rowKind = iota
	rowValue
	rowYCategory
)

// editorRow is one editable number: a category value, a subcategory value
// within a category, or a y-category value.
type editorRow struct {
	kind rowKind
	cat  *mosaic.Category
	sub  *mosaic.SubCategory
	y    *mosaic.YCategory
}

func (r editorRow) label() string {
	switch r.kind {
	case rowCategory:
		return r.cat.Name()
	case rowValue:
		name := r.sub.Name()
		if name == "" {
			name = r.sub.ID()
		}
		return "  " + name
	default:
		return "y: " + r.y.Name()
	}
}

func (r editorRow) value() float64 {
	switch r.kind {
	case rowCategory:
		return r.cat.Value()
	case rowValue:
		v, _ := r.cat.SubCategoryValue(r.sub)
		return v
	default:
		return r.y.Value()
	}
}

func (r editorRow) set(v float64) {
	switch r.kind {
	case rowCategory:
		r.cat.SetValue(v)
	case rowValue:
		r.cat.SetSubCategoryValue(r.sub, v)
	default:
		r.y.SetValue(v)
	}
}

// SaveFunc persists an edited definition.
type SaveFunc func(mosaic.Definition) error

// EditorModel is the bubbletea model behind the edit command. Every change
// goes through the chart operations, so the preview always shows the
// recomputed layout.
type EditorModel struct {
	Chart  *mosaic.Chart
	Rows   []editorRow
	Cursor int
	Step   float64
	Width  int
	Height int
	Dirty  bool
	Status string

	save SaveFunc
}

// NewEditorModel creates an editor over c. save is called on "w".
func NewEditorModel(c *mosaic.Chart, save SaveFunc) EditorModel {
	m := EditorModel{Chart: c, Step: defaultStep, Width: 80, Height: 24, save: save}
	for _, cat := range c.Categories() {
		m.Rows = append(m.Rows, editorRow{kind: rowCategory, cat: cat})
		for _, sub := range c.SubCategories() {
			m.Rows = append(m.Rows, editorRow{kind: rowValue, cat: cat, sub: sub})
		}
	}
	for _, y := range c.YCategories() {
		m.Rows = append(m.Rows, editorRow{kind: rowYCategory, y: y})
	}
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
			}
		case "+", "=", "right", "l":
			m.adjust(m.Step)
		case "-", "_", "left", "h":
			m.adjust(-m.Step)
		case "]":
			m.Step = math.Min(m.Step*10, 1000)
			m.Status = fmt.Sprintf("step %g", m.Step)
		case "[":
			m.Step = math.Max(m.Step/10, 0.01)
			m.Status = fmt.Sprintf("step %g", m.Step)
		case "w":
			m.write()
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

// adjust changes the selected value by delta, clamped at zero.
func (m *EditorModel) adjust(delta float64) {
	if len(m.Rows) == 0 {
		return
	}
	row := m.Rows[m.Cursor]
	next := math.Max(0, math.Round((row.value()+delta)*100)/100)
	if next == row.value() {
		return
	}
	row.set(next)
	m.Dirty = true
	m.Status = ""
}

func (m *EditorModel) write() {
	if m.save == nil {
		m.Status = "read-only"
		return
	}
	if err := m.save(m.Chart.Definition()); err != nil {
		m.Status = "save failed: " + err.Error()
		return
	}
	m.Dirty = false
	m.Status = "saved"
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := m.Chart.Title()
	if title == "" {
		title = "Untitled chart"
	}
	if m.Dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  +/- change  [/] step  w save  q quit"))
	b.WriteString("\n\n")

	pw, ph := m.previewSize()
	left := m.renderRows(ph + 2)
	right := previewBorder.Render(renderPreview(m.Chart.Layout(), pw, ph, m.selectedCategory()))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")
	b.WriteString(renderLegend(m.Chart.Layout()))
	b.WriteString("\n")

	status := fmt.Sprintf("step %g", m.Step)
	if m.Status != "" {
		status = m.Status
	}
	b.WriteString(listDimStyle.Render(status))
	return b.String()
}

func (m EditorModel) selectedCategory() string {
	if len(m.Rows) == 0 {
		return ""
	}
	if cat := m.Rows[m.Cursor].cat; cat != nil {
		return cat.Name()
	}
	return ""
}

func (m EditorModel) previewSize() (int, int) {
	w := max(previewMinWidth, m.Width/2-4)
	h := max(previewMinHeight, m.Height-10)
	return w, h
}

// renderRows draws the value table, scrolled to keep the cursor visible.
func (m EditorModel) renderRows(height int) string {
	visible := max(1, height-4)
	offset := 0
	if m.Cursor >= visible {
		offset = m.Cursor - visible + 1
	}
	end := min(len(m.Rows), offset+visible)

	rows := [][]string{}
	for i := offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.label(), fmt.Sprintf("%g", r.value())})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Item", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := offset + row
			if idx == m.Cursor {
				return StyleSelected
			}
			if idx < len(m.Rows) && m.Rows[idx].kind == rowValue {
				if col == 2 {
					return StyleNumber
				}
				return listDimStyle
			}
			return listNormalStyle
		})
	return t.Render()
}

// renderPreview draws the layout as a w x h character grid. Each cell takes
// the fill of the rectangle under its centre; rectangles of the selected
// category use a denser block.
func renderPreview(l mosaic.Layout, w, h int, selected string) string {
	var b strings.Builder
	for cy := 0; cy < h; cy++ {
		y := 100 - (float64(cy)+0.5)*100/float64(h)
		for cx := 0; cx < w; cx++ {
			x := (float64(cx) + 0.5) * 100 / float64(w)
			r, ok := rectAt(l, x, y)
			if !ok {
				b.WriteByte(' ')
				continue
			}
			glyph := "▒"
			if r.Category == selected {
				glyph = "█"
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(r.Fill)).Render(glyph))
		}
		if cy < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func rectAt(l mosaic.Layout, x, y float64) (mosaic.Rect, bool) {
	for _, r := range l.Rects {
		if x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height {
			return r, true
		}
	}
	return mosaic.Rect{}, false
}

func renderLegend(l mosaic.Layout) string {
	parts := make([]string, 0, len(l.Legend))
	for _, e := range l.Legend {
		name := e.Name
		if name == "" {
			name = e.ID
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Fill)).Render("■")
		parts = append(parts, swatch+" "+StyleDim.Render(name))
	}
	return strings.Join(parts, "   ")
}
