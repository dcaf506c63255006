package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// categoriesModel manages the listing taxonomy: categories on one pane,
// property types on the other.
type categoriesModel struct {
	client *api.Client

	categories    []api.Category
	propertyTypes []api.PropertyType
	pane          int // 0 categories, 1 property types
	cursor        int
	errText       string
	info          string

	promptingName bool
	renaming      bool
	name          textinput.Model

	width  int
	height int
}

type taxonomyLoadedMsg struct {
	categories    []api.Category
	propertyTypes []api.PropertyType
	err           error
}

type taxonomyActionMsg struct {
	err  error
	info string
}

func newCategoriesModel(client *api.Client) categoriesModel {
	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 60
	return categoriesModel{client: client, name: name}
}

func (m categoriesModel) Init() tea.Cmd {
	return m.fetch
}

func (m categoriesModel) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	categories, err := m.client.ListCategories(ctx)
	if err != nil {
		return taxonomyLoadedMsg{err: err}
	}
	propertyTypes, err := m.client.ListPropertyTypes(ctx)
	return taxonomyLoadedMsg{categories: categories, propertyTypes: propertyTypes, err: err}
}

func (m categoriesModel) action(info string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			return taxonomyActionMsg{err: err}
		}
		return taxonomyActionMsg{info: info}
	}
}

func (m categoriesModel) rowCount() int {
	if m.pane == 0 {
		return len(m.categories)
	}
	return len(m.propertyTypes)
}

func (m categoriesModel) Update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case taxonomyLoadedMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Failed to load taxonomy")
			return m, nil
		}
		m.errText = ""
		m.categories = msg.categories
		m.propertyTypes = msg.propertyTypes
		m.cursor = clampCursor(m.cursor, m.rowCount())
		return m, nil

	case taxonomyActionMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Action failed")
			return m, nil
		}
		m.errText = ""
		m.info = msg.info
		return m, m.fetch

	case tea.KeyMsg:
		if m.promptingName {
			return m.updateNamePrompt(msg)
		}
		switch msg.String() {
		case "up", "k":
			m.cursor = clampCursor(m.cursor-1, m.rowCount())
		case "down", "j":
			m.cursor = clampCursor(m.cursor+1, m.rowCount())
		case "left", "right", "h", "l":
			m.pane = 1 - m.pane
			m.cursor = clampCursor(m.cursor, m.rowCount())
		case "r":
			return m, m.fetch
		case "n":
			m.promptingName = true
			m.renaming = false
			m.name.SetValue("")
			m.name.Focus()
			return m, textinput.Blink
		case "e":
			if m.rowCount() > 0 {
				m.promptingName = true
				m.renaming = true
				if m.pane == 0 {
					m.name.SetValue(m.categories[m.cursor].Name)
				} else {
					m.name.SetValue(m.propertyTypes[m.cursor].Name)
				}
				m.name.Focus()
				return m, textinput.Blink
			}
		case "x":
			return m.deleteSelected()
		}
	}
	return m, nil
}

func (m categoriesModel) deleteSelected() (categoriesModel, tea.Cmd) {
	if m.rowCount() == 0 {
		return m, nil
	}
	if m.pane == 0 {
		id := m.categories[m.cursor].ID
		return m, m.action("category deleted", func(ctx context.Context) error {
			return m.client.DeleteCategory(ctx, id)
		})
	}
	id := m.propertyTypes[m.cursor].ID
	return m, m.action("property type deleted", func(ctx context.Context) error {
		return m.client.DeletePropertyType(ctx, id)
	})
}

func (m categoriesModel) updateNamePrompt(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptingName = false
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.name.Value())
		if name == "" {
			m.errText = "A name is required"
			return m, nil
		}
		m.promptingName = false
		m.errText = ""

		switch {
		case m.renaming && m.pane == 0:
			id := m.categories[m.cursor].ID
			return m, m.action("category renamed", func(ctx context.Context) error {
				return m.client.UpdateCategory(ctx, id, name)
			})
		case m.renaming:
			id := m.propertyTypes[m.cursor].ID
			return m, m.action("property type renamed", func(ctx context.Context) error {
				return m.client.UpdatePropertyType(ctx, id, name)
			})
		case m.pane == 0:
			return m, m.action("category created", func(ctx context.Context) error {
				_, err := m.client.CreateCategory(ctx, name, "")
				return err
			})
		default:
			return m, m.action("property type created", func(ctx context.Context) error {
				return m.client.CreatePropertyType(ctx, name)
			})
		}
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m *categoriesModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m categoriesModel) View() string {
	pane := "Categories"
	if m.pane == 1 {
		pane = "Property Types"
	}
	out := titleStyle.Render(pane) + "\n"
	if m.errText != "" {
		out += errorStyle.Render(m.errText) + "\n"
	}
	if m.info != "" {
		out += successStyle.Render(m.info) + "\n"
	}

	var rows [][]string
	if m.pane == 0 {
		byID := make(map[string]string, len(m.categories))
		for _, c := range m.categories {
			byID[c.ID] = c.Name
		}
		for _, c := range m.categories {
			rows = append(rows, []string{c.Name, byID[c.ParentID]})
		}
		out += renderTable([]string{"Name", "Parent"}, []int{28, 20}, rows, m.cursor)
	} else {
		for _, t := range m.propertyTypes {
			rows = append(rows, []string{t.Name})
		}
		out += renderTable([]string{"Name"}, []int{28}, rows, m.cursor)
	}

	if m.promptingName {
		out += "\n" + labelStyle.Render("Name") + m.name.View() +
			"\n" + helpStyle.Render("enter save · esc cancel")
	} else {
		out += "\n" + helpStyle.Render("←/→ switch pane · n new · e rename · x delete · r refresh")
	}
	return out
}
