package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/entity/identity"
	"max.ks1230/expenses-app/internal/model/customerr"
	"max.ks1230/expenses-app/internal/model/ledger"
)

const dateLayout = "02.01.2006 15:04"

const (
	helloMessage          = "Hello! I keep track of your expenses 💸"
	dontUnderstandMessage = "I don't understand that command. Try /help"
	needLoginMessage      = "You need to /login first"
	okLogoutMessage       = "Logged out. See you!"
	noEntriesMessage      = "You have no entries yet"
	emptyPageMessage      = "Nothing on that page"
	noMatchMessage        = "Nothing matches"
	nothingTodayMessage   = "No entries created by you today"

	incorrectUsageMessage    = "That is an incorrect command usage"
	invalidCredsMessage      = "Invalid username or password"
	usernameTakenMessage     = "That username is already taken"
	cannotSignupMessage      = "Can't create your account atm. Try later"
	cannotFetchMessage       = "Can't fetch your entries atm. Try later"
	cannotSaveMessage        = "Can't save your entry atm. Try later"
	cannotDeleteMessage      = "Can't delete that entry atm. Try later"
	invalidEntryMessagePfx   = "That entry is invalid: "
	helpMessage              = "Commands:\n" +
		"/login <user> <password>\n" +
		"/signup <user> <password> [name]\n" +
		"/logout\n" +
		"/fetch — reload entries from the server\n" +
		"/add <income|expense> <category> <amount> <title> [-- notes]\n" +
		"/update <id> <income|expense> <category> <amount> <title> [-- notes]\n" +
		"/delete <id>\n" +
		"/list [page] — newest first, 10 per page\n" +
		"/find <text> — search titles\n" +
		"/today — your entries created today\n" +
		"/balance\n" +
		"/report — totals by category"
)

type sessionStore interface {
	Login(ctx context.Context, username, password string) error
	Signup(ctx context.Context, username, password, displayName string) error
	Logout()
	User() (identity.Record, bool)
	IsAuthenticated() bool
}

type ledgerStore interface {
	FetchAll(ctx context.Context) error
	Add(ctx context.Context, draft entry.Draft, username string) (entry.Record, error)
	Update(ctx context.Context, id string, draft entry.Draft) (entry.Record, error)
	Delete(ctx context.Context, id string) error
	Entries() []entry.Record
	Sorted() []entry.Record
	TotalBalance() float64
	TotalIncome() float64
	TotalExpenses() float64
}

type config interface {
	PageSize() int
}

type handler func(ctx context.Context, arg string) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	session     sessionStore
	ledger      ledgerStore
	pageSize    int
}

func newHandler(session sessionStore, ledger ledgerStore, config config) *HandlerService {
	res := &HandlerService{
		handlersMap: nil,
		session:     session,
		ledger:      ledger,
		pageSize:    config.PageSize(),
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleCommand(ctx context.Context, text string) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg)
	}
	return dontUnderstandMessage, nil
}

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", 2)

	if len(split) == 2 {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m["/start"] = s.handleStart
	m["/help"] = s.handleStart
	m["/login"] = s.handleLogin
	m["/signup"] = s.handleSignup
	m["/logout"] = s.handleLogout
	m["/fetch"] = s.handleFetch
	m["/add"] = s.handleAdd
	m["/update"] = s.handleUpdate
	m["/delete"] = s.handleDelete
	m["/list"] = s.handleList
	m["/find"] = s.handleFind
	m["/today"] = s.handleToday
	m["/balance"] = s.handleBalance
	m["/report"] = s.handleReport

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) handleStart(_ context.Context, _ string) (string, error) {
	return helloMessage + "\n\n" + helpMessage, nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string) (string, error) {
	return dontUnderstandMessage, nil
}

func (s *HandlerService) handleLogin(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 2 {
		return incorrectUsageMessage, nil
	}
	err := s.session.Login(ctx, args[0], args[1])
	var authErr *customerr.AuthError
	if errors.As(err, &authErr) {
		return invalidCredsMessage, nil
	}
	if err != nil {
		return invalidCredsMessage, errors.Wrap(err, "handle login")
	}

	user, _ := s.session.User()
	return fmt.Sprintf("Welcome back, %s!", user.DisplayName()), nil
}

func (s *HandlerService) handleSignup(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 2 {
		return incorrectUsageMessage, nil
	}
	name := ""
	if len(args) > 2 {
		name = strings.Join(args[2:], " ")
	}

	err := s.session.Signup(ctx, args[0], args[1], name)
	var dupErr *customerr.DuplicateError
	if errors.As(err, &dupErr) {
		return usernameTakenMessage, nil
	}
	if err != nil {
		return cannotSignupMessage, errors.Wrap(err, "handle signup")
	}

	user, _ := s.session.User()
	return fmt.Sprintf("Welcome, %s!", user.DisplayName()), nil
}

func (s *HandlerService) handleLogout(_ context.Context, _ string) (string, error) {
	s.session.Logout()
	return okLogoutMessage, nil
}

func (s *HandlerService) handleFetch(ctx context.Context, _ string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	if err := s.ledger.FetchAll(ctx); err != nil {
		return cannotFetchMessage, errors.Wrap(err, "handle fetch")
	}
	return fmt.Sprintf("Fetched %d entries", len(s.ledger.Entries())), nil
}

func (s *HandlerService) handleAdd(ctx context.Context, arg string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	draft, ok := parseDraft(arg)
	if !ok {
		return incorrectUsageMessage, nil
	}

	user, _ := s.session.User()
	rec, err := s.ledger.Add(ctx, draft, user.Username)
	var valErr *customerr.ValidationError
	if errors.As(err, &valErr) {
		return invalidEntryMessagePfx + valErr.Field + " " + valErr.Err, nil
	}
	if err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle add")
	}
	return "Saved as " + rec.ID, nil
}

func (s *HandlerService) handleUpdate(ctx context.Context, arg string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	split := strings.SplitN(strings.TrimSpace(arg), " ", 2)
	if len(split) != 2 {
		return incorrectUsageMessage, nil
	}
	id, rest := split[0], split[1]
	draft, ok := parseDraft(rest)
	if !ok {
		return incorrectUsageMessage, nil
	}

	rec, err := s.ledger.Update(ctx, id, draft)
	var valErr *customerr.ValidationError
	if errors.As(err, &valErr) {
		return invalidEntryMessagePfx + valErr.Field + " " + valErr.Err, nil
	}
	if err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle update")
	}
	return "Updated " + rec.ID, nil
}

func (s *HandlerService) handleDelete(ctx context.Context, arg string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	id := strings.TrimSpace(arg)
	if id == "" {
		return incorrectUsageMessage, nil
	}
	if err := s.ledger.Delete(ctx, id); err != nil {
		return cannotDeleteMessage, errors.Wrap(err, "handle delete")
	}
	return "Deleted " + id, nil
}

func (s *HandlerService) handleList(_ context.Context, arg string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	page := 1
	if arg = strings.TrimSpace(arg); arg != "" {
		var err error
		page, err = strconv.Atoi(arg)
		if err != nil || page < 1 {
			return incorrectUsageMessage, nil
		}
	}

	sorted := s.ledger.Sorted()
	if len(sorted) == 0 {
		return noEntriesMessage, nil
	}
	revealed := ledger.Reveal(sorted, page, s.pageSize)
	if len(revealed) == 0 {
		return emptyPageMessage, nil
	}
	return formatEntries(revealed), nil
}

func (s *HandlerService) handleFind(_ context.Context, arg string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	matched := ledger.SearchByTitle(s.ledger.Sorted(), arg)
	if len(matched) == 0 {
		return noMatchMessage, nil
	}
	return formatEntries(matched), nil
}

func (s *HandlerService) handleToday(_ context.Context, _ string) (string, error) {
	user, ok := s.session.User()
	if !ok {
		return needLoginMessage, nil
	}
	todays := ledger.CreatedToday(s.ledger.Sorted(), user.Username, time.Now())
	if len(todays) == 0 {
		return nothingTodayMessage, nil
	}
	return formatEntries(todays), nil
}

func (s *HandlerService) handleBalance(_ context.Context, _ string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	return fmt.Sprintf("Balance: %.2f\nIncome: %.2f\nExpenses: %.2f",
		s.ledger.TotalBalance(), s.ledger.TotalIncome(), s.ledger.TotalExpenses()), nil
}

func (s *HandlerService) handleReport(_ context.Context, _ string) (string, error) {
	if !s.session.IsAuthenticated() {
		return needLoginMessage, nil
	}
	entries := s.ledger.Entries()
	if len(entries) == 0 {
		return noEntriesMessage, nil
	}
	return formatReport(entries), nil
}

// parseDraft reads "<income|expense> <category> <amount> <title> [-- notes]".
func parseDraft(arg string) (entry.Draft, bool) {
	arg, notes := splitNotes(arg)
	args := strings.Fields(arg)
	if len(args) < 4 {
		return entry.Draft{}, false
	}

	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return entry.Draft{}, false
	}

	return entry.Draft{
		Title:    strings.Join(args[3:], " "),
		Amount:   amount,
		Type:     entry.Type(args[0]),
		Category: entry.NormalizeCategory(args[1]),
		Notes:    notes,
	}, true
}

func splitNotes(arg string) (rest, notes string) {
	split := strings.SplitN(arg, " -- ", 2)
	if len(split) == 2 {
		return split[0], strings.TrimSpace(split[1])
	}
	return arg, ""
}

func formatEntries(recs []entry.Record) string {
	lines := make([]string, 0, len(recs))
	for _, e := range recs {
		sign := "+"
		if e.Type == entry.TypeExpense {
			sign = "-"
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s%.2f  %s (%s)",
			e.ID, e.CreatedAt.Format(dateLayout), sign, e.Amount, e.Title, e.Category))
	}
	return strings.Join(lines, "\n")
}

func formatReport(recs []entry.Record) string {
	m := make(map[entry.Category]float64)
	for _, e := range recs {
		m[e.Category] += e.Signed()
	}
	type catTotal struct {
		cat   entry.Category
		total float64
	}
	totals := make([]catTotal, 0, len(m))
	for cat, total := range m {
		totals = append(totals, catTotal{cat, total})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].total > totals[j].total
	})

	balance := 0.0
	res := make([]string, 0, len(totals)+2)
	for _, t := range totals {
		res = append(res, fmt.Sprintf("%s: %.2f", t.cat, t.total))
		balance += t.total
	}
	res = append(res, "", fmt.Sprintf("Balance: %.2f", balance))
	return strings.Join(res, "\n")
}
