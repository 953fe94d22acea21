package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/campusware/regpos/internal/config"
	"github.com/campusware/regpos/internal/database/repository"
	"github.com/campusware/regpos/internal/export"
	"github.com/campusware/regpos/internal/service"
)

const logTail = 15

// App drives the operation menu and streams progress from running jobs.
type App struct {
	ctx      context.Context
	cfg      config.Config
	services Services
	repos    Repos
	tz       *time.Location

	state   appState
	cursor  int
	status  string
	opName  string
	running bool
	percent float64
	logs    []string
	bar     progress.Model
	events  chan opEvent

	runs      []repository.Run
	runCursor int

	// date range prompt for charge exports, filter prompt for syncs
	pendingType  string
	pendingPop   service.Population
	inputStage   int
	inputBuffer  string
	begin        string
	updatedAfter string
}

type Repos struct {
	Runs *repository.RunRepo
}

type Services struct {
	Sync    *service.SyncService
	Export  *service.ExportService
	Journal *service.Journal
}

type appState string

const (
	viewMenu    appState = "menu"
	viewRun     appState = "run"
	viewHistory appState = "history"
	viewDates   appState = "dates"
	viewFilters appState = "filters"
)

type menuItem struct {
	label string
	start func(a *App) tea.Cmd
}

func menu() []menuItem {
	return []menuItem{
		{"Sync students", func(a *App) tea.Cmd { return a.promptFilters(service.PopulationStudents) }},
		{"Sync facstaff", func(a *App) tea.Cmd { return a.promptFilters(service.PopulationFacStaff) }},
		{"Deletion sweep", func(a *App) tea.Cmd { return a.startSweep() }},
		{"Export charges: Student", func(a *App) tea.Cmd { return a.promptDates(service.PopulationStudents.CustomerType) }},
		{"Export charges: FacStaff", func(a *App) tea.Cmd { return a.promptDates(service.PopulationFacStaff.CustomerType) }},
		{"Export balances: Student", func(a *App) tea.Cmd { return a.startBalances(service.PopulationStudents.CustomerType) }},
		{"Export balances: FacStaff", func(a *App) tea.Cmd { return a.startBalances(service.PopulationFacStaff.CustomerType) }},
		{"Clear balances: Student", func(a *App) tea.Cmd { return a.startClear(service.PopulationStudents.CustomerType) }},
		{"Clear balances: FacStaff", func(a *App) tea.Cmd { return a.startClear(service.PopulationFacStaff.CustomerType) }},
		{"Run history", func(a *App) tea.Cmd { a.state = viewHistory; return a.loadRuns() }},
	}
}

func New(ctx context.Context, cfg config.Config, repos Repos, services Services) *App {
	tz, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		tz = time.Local
	}
	return &App{
		ctx:      ctx,
		cfg:      cfg,
		repos:    repos,
		services: services,
		tz:       tz,
		state:    viewMenu,
		bar:      progress.New(progress.WithDefaultGradient()),
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.bar.Width = m.Width - 4
	case tea.KeyMsg:
		switch a.state {
		case viewDates:
			return a.handleDatesKey(m)
		case viewFilters:
			return a.handleFiltersKey(m)
		case viewRun:
			if a.running {
				return a, nil
			}
			switch m.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			default:
				a.state = viewMenu
				a.status = ""
			}
		case viewHistory:
			return a.handleHistoryKey(m)
		default:
			return a.handleMenuKey(m)
		}
	case opEventMsg:
		ev := opEvent(m)
		if ev.line != "" {
			a.logs = append(a.logs, ev.line)
		}
		if ev.percent > 0 {
			a.percent = float64(ev.percent) / 100
		}
		if ev.done {
			a.running = false
			a.percent = 1
			if ev.err != nil {
				a.status = "error: " + ev.err.Error()
			} else {
				a.status = ev.summary
			}
			return a, nil
		}
		return a, a.waitForEvent()
	case runsMsg:
		a.runs = []repository.Run(m)
		if a.runCursor >= len(a.runs) {
			a.runCursor = 0
		}
	case runEventsMsg:
		a.logs = nil
		for _, ev := range m {
			a.logs = append(a.logs, fmt.Sprintf("[%s] %s", ev.Level, ev.Message))
		}
		a.state = viewRun
		a.running = false
		a.percent = 1
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleMenuKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := menu()
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(items)-1 {
			a.cursor++
		}
	case "enter":
		return a, items[a.cursor].start(a)
	}
	return a, nil
}

func (a *App) handleHistoryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewMenu
	case "up", "k":
		if a.runCursor > 0 {
			a.runCursor--
		}
	case "down", "j":
		if a.runCursor < len(a.runs)-1 {
			a.runCursor++
		}
	case "enter":
		if len(a.runs) > 0 {
			run := a.runs[a.runCursor]
			a.opName = run.Kind + " (" + run.StartedAt.In(a.tz).Format("2006-01-02 15:04") + ")"
			return a, a.loadRunEvents(run.ID)
		}
	}
	return a, nil
}

func (a *App) handleDatesKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewMenu
		a.status = ""
	case "enter":
		if a.inputStage == 0 {
			a.begin = a.inputBuffer
			a.inputStage = 1
			a.inputBuffer = time.Now().Format("2006-01-02")
			return a, nil
		}
		return a, a.startCharges(a.pendingType, a.begin, a.inputBuffer)
	case "backspace":
		if len(a.inputBuffer) > 0 {
			a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
		}
	default:
		if len(m.String()) == 1 {
			a.inputBuffer += m.String()
		}
	}
	return a, nil
}

func (a *App) handleFiltersKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewMenu
		a.status = ""
	case "enter":
		if a.inputStage == 0 && a.pendingPop.Name == service.PopulationStudents.Name {
			a.updatedAfter = a.inputBuffer
			a.inputStage = 1
			a.inputBuffer = ""
			return a, nil
		}
		if a.inputStage == 0 {
			a.updatedAfter = a.inputBuffer
			a.inputBuffer = ""
		}
		return a, a.startSync(a.pendingPop, a.updatedAfter, a.inputBuffer)
	case "backspace":
		if len(a.inputBuffer) > 0 {
			a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
		}
	default:
		if len(m.String()) == 1 {
			a.inputBuffer += m.String()
		}
	}
	return a, nil
}

// commands

func (a *App) loadRuns() tea.Cmd {
	return func() tea.Msg {
		runs, err := a.repos.Runs.List(a.ctx, 50)
		if err != nil {
			return errMsg{err}
		}
		return runsMsg(runs)
	}
}

func (a *App) loadRunEvents(runID string) tea.Cmd {
	return func() tea.Msg {
		events, err := a.repos.Runs.Events(a.ctx, runID)
		if err != nil {
			return errMsg{err}
		}
		return runEventsMsg(events)
	}
}

func (a *App) promptDates(customerType string) tea.Cmd {
	a.state = viewDates
	a.pendingType = customerType
	a.inputStage = 0
	now := time.Now()
	a.inputBuffer = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	return nil
}

func (a *App) promptFilters(population service.Population) tea.Cmd {
	a.state = viewFilters
	a.pendingPop = population
	a.inputStage = 0
	a.inputBuffer = ""
	a.updatedAfter = ""
	return nil
}

// opFunc runs one operation to completion and returns its summary line.
type opFunc func(ctx context.Context, sink service.Sink) (string, error)

func (a *App) startOp(name string, fn opFunc) tea.Cmd {
	ch := make(chan opEvent, 256)
	a.events = ch
	a.state = viewRun
	a.opName = name
	a.running = true
	a.percent = 0
	a.logs = nil
	a.status = ""

	go func() {
		var sink service.Sink = channelSink{ch}
		var runSink *service.RunSink
		if a.services.Journal != nil {
			if rs, err := a.services.Journal.Begin(a.ctx, name); err == nil {
				runSink = rs
				sink = service.MultiSink{channelSink{ch}, rs}
			}
		}
		summary, err := fn(a.ctx, sink)
		if runSink != nil {
			outcome := summary
			if err != nil {
				outcome = "error: " + err.Error()
			}
			_ = a.services.Journal.Finish(a.ctx, runSink.RunID(), outcome)
		}
		ch <- opEvent{done: true, summary: summary, err: err}
		close(ch)
	}()
	return a.waitForEvent()
}

func (a *App) waitForEvent() tea.Cmd {
	ch := a.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return opEventMsg(ev)
	}
}

func (a *App) startSync(population service.Population, updatedAfter, gradeLevel string) tea.Cmd {
	return a.startOp("sync "+population.Name, func(ctx context.Context, sink service.Sink) (string, error) {
		result, err := a.services.Sync.WithSink(sink).Run(ctx, service.SyncOptions{
			Population:   population,
			UpdatedAfter: updatedAfter,
			GradeLevel:   gradeLevel,
			Force:        a.cfg.Sync.Force,
		})
		if err != nil {
			return "", err
		}
		return result.String(), nil
	})
}

func (a *App) startSweep() tea.Cmd {
	label := "deletion sweep"
	if a.cfg.Sync.SimulateDelete {
		label += " (simulate)"
	}
	return a.startOp(label, func(ctx context.Context, sink service.Sink) (string, error) {
		result, err := a.services.Sync.WithSink(sink).DeleteSweep(ctx, service.SweepOptions{
			Simulate: a.cfg.Sync.SimulateDelete,
		})
		if err != nil {
			return "", err
		}
		return result.String(), nil
	})
}

func (a *App) startCharges(customerType, begin, end string) tea.Cmd {
	return a.startOp("export charges "+customerType, func(ctx context.Context, sink service.Sink) (string, error) {
		svc := a.services.Export.WithSink(sink)
		rows, err := svc.ChargeRows(ctx, service.ChargeOptions{
			ShopName:     a.cfg.Export.Shop,
			CustomerType: customerType,
			Begin:        begin,
			End:          end,
		})
		if err != nil {
			return "", err
		}
		path, err := a.writeRows("charges", customerType, rows)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d rows written to %s", len(rows)-1, path), nil
	})
}

func (a *App) startBalances(customerType string) tea.Cmd {
	return a.startOp("export balances "+customerType, func(ctx context.Context, sink service.Sink) (string, error) {
		svc := a.services.Export.WithSink(sink)
		rows, err := svc.BalanceRows(ctx, service.BalanceOptions{CustomerType: customerType})
		if err != nil {
			return "", err
		}
		path, err := a.writeRows("balances", customerType, rows)
		if err != nil {
			return "", err
		}
		summary := fmt.Sprintf("%d rows written to %s", len(rows)-1, path)
		if a.cfg.Export.ClearCharges {
			cleared, err := svc.ClearBalances(ctx, service.ClearOptions{
				CustomerType: customerType,
				EmployeeID:   a.cfg.Export.EmployeeID,
			})
			if err != nil {
				return "", err
			}
			summary += "; " + cleared.String()
		}
		return summary, nil
	})
}

func (a *App) startClear(customerType string) tea.Cmd {
	return a.startOp("clear balances "+customerType, func(ctx context.Context, sink service.Sink) (string, error) {
		result, err := a.services.Export.WithSink(sink).ClearBalances(ctx, service.ClearOptions{
			CustomerType: customerType,
			EmployeeID:   a.cfg.Export.EmployeeID,
		})
		if err != nil {
			return "", err
		}
		return result.String(), nil
	})
}

func (a *App) writeRows(prefix, customerType string, rows [][]string) (string, error) {
	sink, err := export.ByFormat(a.cfg.Export.Format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.cfg.Export.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(a.cfg.Export.Dir, export.Filename(prefix, customerType, sink, time.Now()))
	if err := sink.Write(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

func (a *App) View() string {
	switch a.state {
	case viewRun:
		return a.renderRun()
	case viewHistory:
		return a.renderHistory()
	case viewDates:
		return a.renderDates()
	case viewFilters:
		return a.renderFilters()
	default:
		return a.renderMenu()
	}
}

func (a *App) renderMenu() string {
	out := titleStyle.Render("Registry / POS Connector") + "\n"
	for i, item := range menu() {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %s\n", marker, item.label)
	}
	out += "[enter] Run  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderRun() string {
	out := titleStyle.Render(a.opName) + "\n"
	out += a.bar.ViewAs(a.percent) + "\n"
	logs := a.logs
	if len(logs) > logTail {
		logs = logs[len(logs)-logTail:]
	}
	out += strings.Join(logs, "\n")
	if a.running {
		out += "\nworking..."
	} else {
		out += "\n" + a.status + "\n[any key] Back  [q] Quit"
	}
	return out
}

func (a *App) renderHistory() string {
	out := titleStyle.Render("Run History") + "\n"
	if len(a.runs) == 0 {
		out += "(no runs yet)\n"
	}
	for i, run := range a.runs {
		marker := " "
		if i == a.runCursor {
			marker = "▶"
		}
		summary := "(running)"
		if run.Summary != nil {
			summary = *run.Summary
		}
		out += fmt.Sprintf("%s %s  %-28s %s\n", marker, run.StartedAt.In(a.tz).Format("2006-01-02 15:04"), run.Kind, summary)
	}
	out += "[enter] View log  [esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderDates() string {
	out := titleStyle.Render("Export charges: "+a.pendingType) + "\n"
	if a.inputStage == 0 {
		out += fmt.Sprintf("Begin date (yyyy-mm-dd): %s\n", a.inputBuffer)
	} else {
		out += fmt.Sprintf("Begin date: %s\nEnd date (yyyy-mm-dd): %s\n", a.begin, a.inputBuffer)
	}
	out += "[enter] Next  [esc] Cancel"
	return out
}

func (a *App) renderFilters() string {
	out := titleStyle.Render("Sync "+a.pendingPop.Name) + "\n"
	if a.inputStage == 0 {
		out += fmt.Sprintf("Updated after (yyyy-mm-dd, blank for all): %s\n", a.inputBuffer)
	} else {
		out += fmt.Sprintf("Updated after: %s\nGrade level (blank for all, Other for 20-29): %s\n", a.updatedAfter, a.inputBuffer)
	}
	out += "[enter] Next  [esc] Cancel"
	return out
}

// messages
type opEventMsg opEvent

type runsMsg []repository.Run

type runEventsMsg []repository.RunEvent

type errMsg struct{ error }

type opEvent struct {
	percent int
	line    string
	done    bool
	summary string
	err     error
}

// channelSink forwards sink output into the bubbletea event loop. Sends
// never block; a full buffer drops progress lines rather than stalling the
// operation.
type channelSink struct {
	ch chan opEvent
}

func (s channelSink) Notify(percent int) {
	select {
	case s.ch <- opEvent{percent: percent}:
	default:
	}
}

func (s channelSink) Log(level service.Level, msg string) {
	if level == service.LevelDebug {
		return
	}
	select {
	case s.ch <- opEvent{line: fmt.Sprintf("[%s] %s", level, msg)}:
	default:
	}
}

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
