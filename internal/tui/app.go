// Package tui provides the interactive Bubble Tea dashboard for pmdash.
package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/model"
	"github.com/pmdash/pmdash/internal/query"
	"github.com/pmdash/pmdash/internal/session"
	"github.com/pmdash/pmdash/internal/tui/components"
	"github.com/pmdash/pmdash/internal/tui/theme"
)

// slot identifies which subscription a cache update belongs to. Slots
// line up with tab indices for the list tabs.
type slot int

const (
	slotStats slot = iota
	slotClients
	slotProjects
	slotPayments
	slotExpenses
	slotCount
)

// bootMsg kicks off auth and subscriptions after the program starts.
type bootMsg struct{}

// queryMsg carries a cache state change into the Bubble Tea loop.
type queryMsg struct {
	slot slot
	gen  int // subscription generation; stale after a page change
	res  query.Result
}

// loginMsg reports the outcome of a sign-in attempt.
type loginMsg struct {
	user *model.User
	err  error
}

// mutationMsg reports the outcome of a create/update/delete. The cache
// invalidation already happened; subscriptions push the refreshed data.
type mutationMsg struct {
	err error
}

// App is the root Bubble Tea model.
type App struct {
	cache     *query.Cache
	sess      *session.Store
	pageLimit int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Auth. loginVals is shared by pointer so the form's bindings
	// survive model copies.
	loggedIn  bool
	loginForm *huh.Form
	loginVals *loginValues
	authErr   string

	// One subscription per slot. gens guards against updates from a
	// subscription that was replaced by a page change.
	subs [slotCount]*query.Subscription
	gens [slotCount]int
	res  [slotCount]query.Result

	// Decoded data per slot
	stats    *model.DashboardStats
	clients  *api.ClientList
	projects *api.ProjectList
	payments *api.PaymentList
	expenses *api.ExpenseList

	// Per-list-tab cursor and page (indexed by slot)
	cursors [slotCount]int
	pages   [slotCount]int

	// Create-entity modal. formVals is shared by pointer for the same
	// reason as loginVals.
	modal     *huh.Form
	modalKind formKind
	formVals  *formValues

	spinner spinner.Model
	lastErr string
}

const (
	minTerminalWidth = 70
	compactWidth     = 110
	maxContentWidth  = 170
	minContentHeight = 5
)

// NewApp creates the root TUI model.
func NewApp(cache *query.Cache, sess *session.Store, pageLimit int) App {
	if pageLimit <= 0 {
		pageLimit = 10
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	a := App{
		cache:     cache,
		sess:      sess,
		pageLimit: pageLimit,
		spinner:   sp,
	}
	for i := range a.pages {
		a.pages[i] = 1
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		func() tea.Msg { return bootMsg{} },
	)
}

// listOptions builds the option set for a list slot from its current page.
func (a App) clientOpts() api.ClientListOptions {
	return api.ClientListOptions{Page: a.pages[slotClients], Limit: a.pageLimit}
}

func (a App) projectOpts() api.ProjectListOptions {
	return api.ProjectListOptions{Page: a.pages[slotProjects], Limit: a.pageLimit}
}

func (a App) paymentOpts() api.PaymentListOptions {
	return api.PaymentListOptions{Page: a.pages[slotPayments], Limit: a.pageLimit}
}

func (a App) expenseOpts() api.ExpenseListOptions {
	return api.ExpenseListOptions{Page: a.pages[slotExpenses], Limit: a.pageLimit}
}

// openSubscriptions attaches all five tab subscriptions and returns the
// commands that pump their updates into the program.
func (a App) openSubscriptions() (App, []tea.Cmd) {
	a.subs[slotStats] = a.cache.WatchDashboardStats(model.DateRange{})
	a.subs[slotClients] = a.cache.WatchClients(a.clientOpts())
	a.subs[slotProjects] = a.cache.WatchProjects(a.projectOpts())
	a.subs[slotPayments] = a.cache.WatchPayments(a.paymentOpts())
	a.subs[slotExpenses] = a.cache.WatchExpenses(a.expenseOpts())

	var cmds []tea.Cmd
	for i := range a.subs {
		a.gens[i]++
		cmds = append(cmds, waitCmd(a.subs[i], slot(i), a.gens[i]))
	}
	return a, cmds
}

// closeSubscriptions detaches everything, e.g. when auth is lost.
func (a App) closeSubscriptions() App {
	for i, sub := range a.subs {
		if sub != nil {
			sub.Close()
			a.subs[i] = nil
		}
		a.gens[i]++
	}
	return a
}

// reopenSlot replaces one slot's subscription after its page changed.
func (a App) reopenSlot(s slot) (App, tea.Cmd) {
	if a.subs[s] != nil {
		a.subs[s].Close()
	}
	switch s {
	case slotClients:
		a.subs[s] = a.cache.WatchClients(a.clientOpts())
	case slotProjects:
		a.subs[s] = a.cache.WatchProjects(a.projectOpts())
	case slotPayments:
		a.subs[s] = a.cache.WatchPayments(a.paymentOpts())
	case slotExpenses:
		a.subs[s] = a.cache.WatchExpenses(a.expenseOpts())
	default:
		return a, nil
	}
	a.gens[s]++
	a.cursors[s] = 0
	return a, waitCmd(a.subs[s], s, a.gens[s])
}

// waitCmd blocks on the subscription's update channel and forwards the
// next state change. It re-arms itself via the Update handler.
func waitCmd(sub *query.Subscription, s slot, gen int) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-sub.Updates()
		if !ok {
			return nil
		}
		return queryMsg{slot: s, gen: gen, res: res}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.loginForm != nil {
			a.loginForm = a.loginForm.WithWidth(formWidth(msg.Width))
		}
		if a.modal != nil {
			a.modal = a.modal.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case bootMsg:
		if a.sess.LoggedIn() {
			a.loggedIn = true
			var cmds []tea.Cmd
			a, cmds = a.openSubscriptions()
			return a, tea.Batch(cmds...)
		}
		var cmd tea.Cmd
		a, cmd = a.startLogin()
		return a, cmd

	case queryMsg:
		if msg.gen != a.gens[msg.slot] {
			return a, nil
		}
		var cmd tea.Cmd
		a, cmd = a.applyResult(msg.slot, msg.res)
		if a.subs[msg.slot] == nil {
			return a, cmd
		}
		return a, tea.Batch(cmd, waitCmd(a.subs[msg.slot], msg.slot, msg.gen))

	case loginMsg:
		if msg.err != nil {
			a.authErr = msg.err.Error()
			var cmd tea.Cmd
			a, cmd = a.startLogin()
			return a, cmd
		}
		a.loggedIn = true
		a.loginForm = nil
		a.authErr = ""
		var cmds []tea.Cmd
		a, cmds = a.openSubscriptions()
		return a, tea.Batch(cmds...)

	case projectRefsMsg:
		if msg.err != nil {
			a.lastErr = msg.err.Error()
			return a, nil
		}
		var cmd tea.Cmd
		a, cmd = a.openPaymentForm(msg.refs)
		return a, cmd

	case mutationMsg:
		if msg.err != nil {
			a.lastErr = msg.err.Error()
		} else {
			a.lastErr = ""
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Cursor blinks and other component messages go to the active form.
	if a.loginForm != nil {
		return a.updateLoginForm(msg)
	}
	if a.modal != nil {
		return a.updateModalForm(msg)
	}
	return a, nil
}

// applyResult decodes a cache result into the slot's typed field.
func (a App) applyResult(s slot, res query.Result) (App, tea.Cmd) {
	a.res[s] = res

	if res.Err != nil {
		if api.IsUnauthorized(res.Err) {
			a = a.closeSubscriptions()
			a.loggedIn = false
			a.authErr = "session expired, sign in again"
			return a.startLogin()
		}
		a.lastErr = res.Err.Error()
		return a, nil
	}

	switch v := res.Value.(type) {
	case *model.DashboardStats:
		a.stats = v
	case *api.ClientList:
		a.clients = v
	case *api.ProjectList:
		a.projects = v
	case *api.PaymentList:
		a.payments = v
	case *api.ExpenseList:
		a.expenses = v
	}

	// Clamp the cursor when a list shrank under it.
	if n := a.listLen(s); a.cursors[s] >= n {
		a.cursors[s] = n - 1
	}
	if a.cursors[s] < 0 {
		a.cursors[s] = 0
	}
	return a, nil
}

// listLen returns the row count for a list slot.
func (a App) listLen(s slot) int {
	switch s {
	case slotClients:
		if a.clients != nil {
			return len(a.clients.Clients)
		}
	case slotProjects:
		if a.projects != nil {
			return len(a.projects.Projects)
		}
	case slotPayments:
		if a.payments != nil {
			return len(a.payments.Payments)
		}
	case slotExpenses:
		if a.expenses != nil {
			return len(a.expenses.Expenses)
		}
	}
	return 0
}

// pagination returns the active slot's pagination, or zero for stats.
func (a App) pagination(s slot) model.Pagination {
	switch s {
	case slotClients:
		if a.clients != nil {
			return a.clients.Pagination
		}
	case slotProjects:
		if a.projects != nil {
			return a.projects.Pagination
		}
	case slotPayments:
		if a.payments != nil {
			return a.payments.Pagination
		}
	case slotExpenses:
		if a.expenses != nil {
			return a.expenses.Pagination
		}
	}
	return model.Pagination{}
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loggedIn || a.showHelp || a.modal != nil {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if s := slot(a.activeTab); s != slotStats && a.cursors[s] > 0 {
			a.cursors[s]--
		}
		return a, nil

	case tea.MouseButtonWheelDown:
		if s := slot(a.activeTab); s != slotStats && a.cursors[s] < a.listLen(s)-1 {
			a.cursors[s]++
		}
		return a, nil

	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil
	}
	return a, nil
}

// tabAtX returns the tab index at the given X coordinate, or -1.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator column
		}
	}
	return -1
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// Sign-in form intercepts all keys until auth succeeds.
	if !a.loggedIn {
		if a.loginForm == nil {
			var cmd tea.Cmd
			a, cmd = a.startLogin()
			return a, cmd
		}
		return a.updateLoginForm(msg)
	}

	// Create modal intercepts all keys.
	if a.modal != nil {
		if key == "esc" {
			a.modal = nil
			a.modalKind = formNone
			return a, nil
		}
		return a.updateModalForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if key == "q" {
		return a, tea.Quit
	}

	// Manual refetch of the active tab.
	if key == "r" {
		if sub := a.subs[slot(a.activeTab)]; sub != nil {
			sub.Refetch()
		}
		return a, nil
	}

	// Create on the entity tabs.
	if key == "n" {
		return a.startCreate(slot(a.activeTab))
	}

	// Tab navigation
	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}
	switch key {
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	// List navigation on the entity tabs.
	s := slot(a.activeTab)
	if s != slotStats {
		switch key {
		case "j", "down":
			if a.cursors[s] < a.listLen(s)-1 {
				a.cursors[s]++
			}
			return a, nil
		case "k", "up":
			if a.cursors[s] > 0 {
				a.cursors[s]--
			}
			return a, nil
		case "g":
			a.cursors[s] = 0
			return a, nil
		case "G":
			if n := a.listLen(s); n > 0 {
				a.cursors[s] = n - 1
			}
			return a, nil
		case "]":
			p := a.pagination(s)
			if a.pages[s] < p.TotalPages() {
				a.pages[s]++
				var cmd tea.Cmd
				a, cmd = a.reopenSlot(s)
				return a, cmd
			}
			return a, nil
		case "[":
			if a.pages[s] > 1 {
				a.pages[s]--
				var cmd tea.Cmd
				a, cmd = a.reopenSlot(s)
				return a, cmd
			}
			return a, nil
		}
	}

	return a, nil
}

// mutateCmd runs fn off the UI loop and reports the outcome.
func mutateCmd(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return mutationMsg{err: fn(ctx)}
	}
}

// loginCmd signs in through the session store.
func loginCmd(sess *session.Store, apiClient *api.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		user, err := sess.Login(ctx, apiClient, email, password)
		return loginMsg{user: user, err: err}
	}
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loggedIn {
		return a.viewLogin()
	}
	if a.modal != nil {
		return a.viewModal()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := "\n  Terminal too narrow.\n\n  pmdash needs at least " +
		strconv.Itoa(minTerminalWidth) + " columns.\n"
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"o c p a e", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Navigate lists"},
		{"g G", "First / Last row"},
		{"[ ]", "Previous / Next page"},
		{"n", "New record on this tab"},
		{"r", "Refetch active tab"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		b.WriteString("  ")
		b.WriteString(keyStyle.Render(pad(bind.key, 10)))
		b.WriteString("  ")
		b.WriteString(descStyle.Render(bind.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	user := ""
	if u := a.sess.CurrentUser(); u != nil {
		user = u.Email
	}
	syncing := a.res[slot(a.activeTab)].Status == query.Fetching
	statusBar := components.RenderStatusBar(w, user, syncing, a.lastErr)

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch slot(a.activeTab) {
	case slotStats:
		content = a.renderOverviewTab(cw)
	case slotClients:
		content = a.renderClientsTab(cw, contentH)
	case slotProjects:
		content = a.renderProjectsTab(cw, contentH)
	case slotPayments:
		content = a.renderPaymentsTab(cw, contentH)
	case slotExpenses:
		content = a.renderExpensesTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

