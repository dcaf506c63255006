package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"propadmin/internal/api"
	"propadmin/internal/guard"
	"propadmin/internal/session"
)

// Page targets mirror the admin panel's route paths.
const (
	pageLogin          = "/admin/login"
	pageMFAVerify      = "/admin/mfa-verify"
	pageMFASetup       = "/admin/mfa-setup"
	pageChangePassword = "/admin/change-password"
	pageDashboard      = "/admin"
	pageUsers          = "/admin/users"
	pageProperties     = "/admin/properties"
	pageCategories     = "/admin/categories"
	pageLeads          = "/admin/leads"
	pageReports        = "/admin/reports"
)

// pageRequirements lists what each protected page needs beyond a session.
var pageRequirements = map[string]guard.Requirement{
	pageReports: {MinRoleLevel: 40},
}

// protectedPages are the targets behind the route guard, in nav order.
var protectedPages = []string{
	pageDashboard, pageUsers, pageProperties, pageCategories, pageLeads, pageReports,
}

var pageTitles = map[string]string{
	pageDashboard:  "Dashboard",
	pageUsers:      "Users",
	pageProperties: "Properties",
	pageCategories: "Categories",
	pageLeads:      "Leads",
	pageReports:    "Reports",
}

// App is the root model. It owns routing: every navigation goes through the
// guard, and session changes can force a route change at any time.
type App struct {
	client  *api.Client
	manager *session.Manager

	page string
	// from remembers the blocked target across the login and MFA pages so
	// a successful authentication lands where the user was headed.
	from string

	login          loginModel
	mfaVerify      mfaVerifyModel
	mfaSetup       mfaSetupModel
	changePassword changePasswordModel
	dashboard      dashboardModel
	users          usersModel
	properties     propertiesModel
	categories     categoriesModel
	leads          leadsModel
	reports        reportsModel

	toast    string
	toastSty lipgloss.Style
	toastSeq int

	width  int
	height int
}

// NewApp builds the root model. The session manager must not be started yet;
// Init kicks off the initial auth check.
func NewApp(client *api.Client, manager *session.Manager) App {
	return App{
		client:         client,
		manager:        manager,
		page:           pageDashboard,
		login:          newLoginModel(client),
		mfaVerify:      newMFAVerifyModel(client),
		mfaSetup:       newMFASetupModel(client),
		changePassword: newChangePasswordModel(client),
		dashboard:      newDashboardModel(client),
		users:          newUsersModel(client),
		properties:     newPropertiesModel(client),
		categories:     newCategoriesModel(client),
		leads:          newLeadsModel(client),
		reports:        newReportsModel(client),
	}
}

func (a App) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.client.FetchCSRFToken(ctx)
		return authCheckedMsg{ok: a.manager.Start(ctx)}
	}
}

// navigate routes to target through the guard. Unauthenticated navigation
// falls back to the login page with the target remembered.
func (a *App) navigate(target string) tea.Cmd {
	decision := guard.Evaluate(a.manager.Snapshot(), target, pageRequirements[target])
	switch decision.Action {
	case guard.ActionWait:
		// Stay put; the pending session change re-routes.
		return nil
	case guard.ActionRedirectLogin:
		a.from = decision.From
		a.page = pageLogin
		return a.login.focusCmd()
	case guard.ActionDeny:
		return a.showToast(toastError, "You do not have permission to access this resource.")
	}
	a.page = target
	return a.initPage(target)
}

func (a *App) initPage(target string) tea.Cmd {
	switch target {
	case pageDashboard:
		return a.dashboard.Init()
	case pageUsers:
		return a.users.Init()
	case pageProperties:
		return a.properties.Init()
	case pageCategories:
		return a.categories.Init()
	case pageLeads:
		return a.leads.Init()
	case pageReports:
		return a.reports.Init()
	}
	return nil
}

func (a *App) showToast(kind toastKind, text string) tea.Cmd {
	a.toastSeq++
	seq := a.toastSeq
	a.toast = text
	switch kind {
	case toastError:
		a.toastSty = errorStyle
	case toastSuccess:
		a.toastSty = successStyle
	default:
		a.toastSty = statusBarStyle
	}
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// landingTarget picks where to go after authentication settles.
func (a *App) landingTarget() string {
	if a.from != "" && a.from != pageLogin {
		target := a.from
		a.from = ""
		return target
	}
	return pageDashboard
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentH := max(a.height-4, 1)
		a.dashboard.SetSize(a.width, contentH)
		a.users.SetSize(a.width, contentH)
		a.properties.SetSize(a.width, contentH)
		a.categories.SetSize(a.width, contentH)
		a.leads.SetSize(a.width, contentH)
		a.reports.SetSize(a.width, contentH)
		return a, nil

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case toastMsg:
		return a, a.showToast(msg.kind, msg.text)

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil

	case sessionChangedMsg:
		// A forced invalidation (401 from any request) bounces protected
		// pages back to login; everything else just re-renders.
		if msg.snapshot.Status == session.StatusUnauthenticated && a.onProtectedPage() {
			return a, a.navigate(a.page)
		}
		return a, nil

	case authCheckedMsg:
		if msg.ok {
			return a, a.navigate(a.landingTarget())
		}
		return a, a.navigate(pageDashboard) // guard redirects to login

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case mfaVerifyMsg:
		return a.handleMFAVerify(msg)

	case mfaConfirmedMsg:
		if msg.err != nil {
			var cmd tea.Cmd
			a.mfaSetup, cmd = a.mfaSetup.Update(msg)
			return a, cmd
		}
		// Enrollment done. Re-run the auth check from scratch; the session
		// manager stays the single source of truth.
		return a, tea.Batch(
			a.showToast(toastSuccess, "Authenticator enrolled."),
			func() tea.Msg { return authCheckedMsg{ok: a.manager.CheckAuth(context.Background())} },
		)

	case passwordChangedMsg:
		if msg.err != nil {
			var cmd tea.Cmd
			a.changePassword, cmd = a.changePassword.Update(msg)
			return a, cmd
		}
		// Force a clean re-login with the new password.
		a.manager.Logout(context.Background())
		a.from = ""
		return a, tea.Batch(
			a.showToast(toastSuccess, "Password changed. Please log in again."),
			a.navigate(pageDashboard),
		)

	case navigateMsg:
		return a, a.navigate(msg.target)
	}

	return a.updatePage(msg)
}

func (a App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "ctrl+q":
		a.manager.Logout(context.Background())
		return tea.Quit, true
	}

	if !a.onProtectedPage() {
		return nil, false
	}
	switch msg.String() {
	case "1", "2", "3", "4", "5", "6":
		idx := int(msg.String()[0] - '1')
		if idx < len(protectedPages) {
			target := protectedPages[idx]
			return func() tea.Msg { return navigateMsg{target: target} }, true
		}
	case "ctrl+l":
		a.manager.Logout(context.Background())
		return func() tea.Msg { return navigateMsg{target: pageDashboard} }, true
	}
	return nil, false
}

func (a App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	switch msg.result.Outcome {
	case api.OutcomeMFARequired:
		a.page = pageMFAVerify
		a.mfaVerify = a.mfaVerify.reset()
		return a, a.mfaVerify.focusCmd()

	case api.OutcomeMFASetupRequired:
		a.page = pageMFASetup
		a.mfaSetup = a.mfaSetup.reset()
		return a, a.mfaSetup.Init()
	}

	a.manager.Login(context.Background(), msg.result.Admin)
	if msg.result.MustChangePassword {
		a.page = pageChangePassword
		a.changePassword = a.changePassword.reset()
		return a, tea.Batch(
			a.showToast(toastInfo, "You must change your password before continuing."),
			a.changePassword.focusCmd(),
		)
	}
	return a, a.navigate(a.landingTarget())
}

func (a App) handleMFAVerify(msg mfaVerifyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var cmd tea.Cmd
		a.mfaVerify, cmd = a.mfaVerify.Update(msg)
		return a, cmd
	}
	a.manager.Login(context.Background(), msg.admin)
	return a, a.navigate(a.landingTarget())
}

func (a *App) onProtectedPage() bool {
	switch a.page {
	case pageLogin, pageMFAVerify, pageMFASetup:
		return false
	}
	return true
}

func (a App) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.page {
	case pageLogin:
		a.login, cmd = a.login.Update(msg)
	case pageMFAVerify:
		a.mfaVerify, cmd = a.mfaVerify.Update(msg)
	case pageMFASetup:
		a.mfaSetup, cmd = a.mfaSetup.Update(msg)
	case pageChangePassword:
		a.changePassword, cmd = a.changePassword.Update(msg)
	case pageDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case pageUsers:
		a.users, cmd = a.users.Update(msg)
	case pageProperties:
		a.properties, cmd = a.properties.Update(msg)
	case pageCategories:
		a.categories, cmd = a.categories.Update(msg)
	case pageLeads:
		a.leads, cmd = a.leads.Update(msg)
	case pageReports:
		a.reports, cmd = a.reports.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.manager.IsLoading() && a.onProtectedPage() {
		return boxStyle.Render("Checking session...")
	}

	var body string
	switch a.page {
	case pageLogin:
		body = a.login.View()
	case pageMFAVerify:
		body = a.mfaVerify.View()
	case pageMFASetup:
		body = a.mfaSetup.View()
	case pageChangePassword:
		body = a.changePassword.View()
	case pageDashboard:
		body = a.dashboard.View()
	case pageUsers:
		body = a.users.View()
	case pageProperties:
		body = a.properties.View()
	case pageCategories:
		body = a.categories.View()
	case pageLeads:
		body = a.leads.View()
	case pageReports:
		body = a.reports.View()
	}

	var parts []string
	if a.onProtectedPage() {
		parts = append(parts, a.navBar())
	}
	parts = append(parts, body)
	if a.toast != "" {
		parts = append(parts, a.toastSty.Render(a.toast))
	}
	parts = append(parts, a.statusBar())
	return strings.Join(parts, "\n")
}

func (a App) navBar() string {
	items := make([]string, 0, len(protectedPages))
	for _, page := range protectedPages {
		label := pageTitles[page]
		if page == a.page {
			items = append(items, tableSelectedStyle.Render(" "+label+" "))
		} else {
			items = append(items, helpStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(items, "")
}

func (a App) statusBar() string {
	snap := a.manager.Snapshot()
	who := "not signed in"
	if snap.IsAuthenticated() {
		who = snap.Admin.Email + " (" + snap.Admin.Role.DisplayName + ")"
	} else if snap.IsLoading() {
		who = "checking session..."
	}
	help := "1-6 pages · ctrl+l logout · ctrl+c quit"
	if !a.onProtectedPage() {
		help = "ctrl+c quit"
	}
	return statusBarStyle.Render(who + "  " + helpStyle.Render(help))
}
